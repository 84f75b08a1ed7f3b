package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Task is a concrete task instance. Period-scoped tasks carry a PeriodID
// and usually a TemplateID (nil means manually added); tasks on
// non-recurring works have a nil PeriodID and hang directly off the work.
// DueDate is fixed at creation time and never recomputed when the source
// template changes afterwards.
type Task struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	WorkID         uint           `gorm:"not null;index" json:"work_id" validate:"required"`
	PeriodID       *uint          `gorm:"index;default:null" json:"period_id,omitempty"`
	TemplateID     *uint          `gorm:"default:null" json:"template_id,omitempty"`
	Title          string         `gorm:"type:varchar(200);not null" json:"title" validate:"required,min=2,max=200"`
	Description    string         `gorm:"type:text" json:"description" validate:"max=2000"`
	Priority       Priority       `gorm:"type:varchar(10);not null;default:'medium'" json:"priority" validate:"oneof=low medium high"`
	DueDate        *time.Time     `gorm:"type:date;default:null" json:"due_date,omitempty"`
	Status         Status         `gorm:"type:varchar(20);not null;default:'pending';index" json:"status" validate:"omitempty,oneof=pending in_progress completed"`
	AssignedTo     *uint          `gorm:"index;default:null" json:"assigned_to,omitempty"`
	EstimatedHours float64        `gorm:"type:decimal(6,2);default:0" json:"estimated_hours" validate:"min=0"`
	ActualHours    float64        `gorm:"type:decimal(6,2);default:0" json:"actual_hours" validate:"min=0"`
	CompletedAt    *time.Time     `gorm:"type:timestamp;default:null" json:"completed_at,omitempty"`
	SortOrder      int            `gorm:"default:0" json:"sort_order"`
	CreatedBy      uint           `gorm:"default:0" json:"created_by"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *Task) Validate() error {
	return validator.New().Struct(t)
}
