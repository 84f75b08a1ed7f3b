package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// TaskTemplate is a reusable task blueprint scoped to one work. Every new
// period copies the work's templates into concrete tasks. Templates are
// authored by users and read-only from the engine's side; editing a
// template never touches tasks that were already generated from it.
type TaskTemplate struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	WorkID            uint           `gorm:"not null;index" json:"work_id" validate:"required"`
	Title             string         `gorm:"type:varchar(200);not null" json:"title" validate:"required,min=2,max=200"`
	Description       string         `gorm:"type:text" json:"description" validate:"max=2000"`
	Priority          Priority       `gorm:"type:varchar(10);not null;default:'medium'" json:"priority" validate:"oneof=low medium high"`
	DueDateOffsetDays int            `gorm:"default:0" json:"due_date_offset_days"`
	EstimatedHours    float64        `gorm:"type:decimal(6,2);default:0" json:"estimated_hours" validate:"min=0"`
	DisplayOrder      int            `gorm:"default:0" json:"display_order"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *TaskTemplate) Validate() error {
	return validator.New().Struct(t)
}
