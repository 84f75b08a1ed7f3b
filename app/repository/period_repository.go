package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/finaccosolutions/Business-Management-Application-sub013/app/models"
)

// periodRepository implements the PeriodRepository interface
type periodRepository struct {
	db *gorm.DB
}

// NewPeriodRepository creates a new period repository instance
func NewPeriodRepository(db *gorm.DB) PeriodRepository {
	return &periodRepository{db: db}
}

// CreateWithTasks inserts the period and its tasks atomically. The period
// insert ignores the (work_id, due_date) unique conflict; when another
// caller won the race the transaction writes nothing and created is false.
func (r *periodRepository) CreateWithTasks(period *models.Period, tasks []models.Task) (bool, error) {
	created := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "work_id"},
				{Name: "due_date"},
			},
			DoNothing: true,
		}).Create(period)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		created = true

		for i := range tasks {
			tasks[i].PeriodID = &period.ID
			tasks[i].WorkID = period.WorkID
		}
		if len(tasks) > 0 {
			if err := tx.Create(&tasks).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return created, err
}

// GetByID retrieves a period by its ID
func (r *periodRepository) GetByID(id uint) (*models.Period, error) {
	var period models.Period
	if err := r.db.First(&period, id).Error; err != nil {
		return nil, err
	}
	return &period, nil
}

// ListByWork retrieves all periods of a work, most recent due date first
func (r *periodRepository) ListByWork(workID uint) ([]models.Period, error) {
	var periods []models.Period
	err := r.db.Where("work_id = ?", workID).
		Order("due_date DESC").Find(&periods).Error
	return periods, err
}

// LatestByWork returns the period with the maximum due date, or nil when
// the work has no periods yet.
func (r *periodRepository) LatestByWork(workID uint) (*models.Period, error) {
	var period models.Period
	err := r.db.Where("work_id = ?", workID).
		Order("due_date DESC").First(&period).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &period, nil
}

// ExistsByWorkAndDue reports whether a period with this due date already exists
func (r *periodRepository) ExistsByWorkAndDue(workID uint, due time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&models.Period{}).
		Where("work_id = ? AND due_date = ?", workID, due).Count(&count).Error
	return count > 0, err
}

// Update saves all fields of an existing period
func (r *periodRepository) Update(period *models.Period) error {
	return r.db.Save(period).Error
}

// UpdateNotes updates only the notes column. This is the single mutation
// allowed on a billed period.
func (r *periodRepository) UpdateNotes(id uint, notes string) error {
	return r.db.Model(&models.Period{}).Where("id = ?", id).
		Update("notes", notes).Error
}
