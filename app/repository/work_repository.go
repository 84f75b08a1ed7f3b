package repository

import (
	"github.com/finaccosolutions/Business-Management-Application-sub013/app/models"
	"gorm.io/gorm"
)

// workRepository implements the WorkRepository interface
type workRepository struct {
	db *gorm.DB
}

// NewWorkRepository creates a new work repository instance
func NewWorkRepository(db *gorm.DB) WorkRepository {
	return &workRepository{db: db}
}

// Create creates a new work in the database
func (r *workRepository) Create(work *models.Work) error {
	return r.db.Create(work).Error
}

// GetByID retrieves a work with its customer and service preloaded
func (r *workRepository) GetByID(id uint) (*models.Work, error) {
	var work models.Work
	err := r.db.Preload("Customer").Preload("Service").First(&work, id).Error
	if err != nil {
		return nil, err
	}
	return &work, nil
}

// Update saves all fields of an existing work
func (r *workRepository) Update(work *models.Work) error {
	return r.db.Save(work).Error
}

// ListByCustomer retrieves all works of a customer, newest first
func (r *workRepository) ListByCustomer(customerID uint) ([]models.Work, error) {
	var works []models.Work
	err := r.db.Where("customer_id = ?", customerID).
		Order("created_at DESC").Find(&works).Error
	return works, err
}

// ListRecurringIDs returns the IDs of all recurring works that are not yet
// completed. The reconcile sweep iterates this set.
func (r *workRepository) ListRecurringIDs() ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Work{}).
		Where("is_recurring = ? AND status <> ?", true, models.StatusCompleted).
		Order("id").Pluck("id", &ids).Error
	return ids, err
}
