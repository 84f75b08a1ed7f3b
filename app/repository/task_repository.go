package repository

import (
	"github.com/finaccosolutions/Business-Management-Application-sub013/app/models"
	"gorm.io/gorm"
)

// taskRepository implements the TaskRepository interface
type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository instance
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

// Create creates a new task in the database
func (r *taskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// GetByID retrieves a task by its ID
func (r *taskRepository) GetByID(id uint) (*models.Task, error) {
	var task models.Task
	if err := r.db.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByPeriod retrieves the tasks of a period ordered by sort_order
func (r *taskRepository) ListByPeriod(periodID uint) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Where("period_id = ?", periodID).
		Order("sort_order, id").Find(&tasks).Error
	return tasks, err
}

// ListDirectByWork retrieves tasks attached directly to a work (no period)
func (r *taskRepository) ListDirectByWork(workID uint) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Where("work_id = ? AND period_id IS NULL", workID).
		Order("sort_order, id").Find(&tasks).Error
	return tasks, err
}

// CountByPeriod returns total and still-open task counts for a period
func (r *taskRepository) CountByPeriod(periodID uint) (int64, int64, error) {
	var total, open int64
	if err := r.db.Model(&models.Task{}).
		Where("period_id = ?", periodID).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	err := r.db.Model(&models.Task{}).
		Where("period_id = ? AND status <> ?", periodID, models.StatusCompleted).
		Count(&open).Error
	return total, open, err
}

// CountDirectByWork returns total and open counts for a work's direct tasks
func (r *taskRepository) CountDirectByWork(workID uint) (int64, int64, error) {
	var total, open int64
	if err := r.db.Model(&models.Task{}).
		Where("work_id = ? AND period_id IS NULL", workID).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	err := r.db.Model(&models.Task{}).
		Where("work_id = ? AND period_id IS NULL AND status <> ?", workID, models.StatusCompleted).
		Count(&open).Error
	return total, open, err
}

// Update saves all fields of an existing task
func (r *taskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}
