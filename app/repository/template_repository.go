package repository

import (
	"github.com/finaccosolutions/Business-Management-Application-sub013/app/models"
	"gorm.io/gorm"
)

// templateRepository implements the TemplateRepository interface
type templateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository creates a new task template repository instance
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

// Create creates a new task template in the database
func (r *templateRepository) Create(template *models.TaskTemplate) error {
	return r.db.Create(template).Error
}

// GetByID retrieves a task template by its ID
func (r *templateRepository) GetByID(id uint) (*models.TaskTemplate, error) {
	var template models.TaskTemplate
	if err := r.db.First(&template, id).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

// ListByWork retrieves the template snapshot for a work ordered by
// display_order. Period generation copies exactly this snapshot.
func (r *templateRepository) ListByWork(workID uint) ([]models.TaskTemplate, error) {
	var templates []models.TaskTemplate
	err := r.db.Where("work_id = ?", workID).
		Order("display_order, id").Find(&templates).Error
	return templates, err
}
