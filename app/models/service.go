package models

import (
	"time"

	"gorm.io/gorm"
)

// Service is the catalog entry a work is rendered under (GST filing,
// bookkeeping, audit...). Its name feeds the invoice line description.
type Service struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"type:varchar(200);not null" json:"name" validate:"required,min=2,max=200"`
	Description  string         `gorm:"type:text" json:"description" validate:"max=2000"`
	DefaultPrice *float64       `gorm:"type:decimal(12,2);default:null" json:"default_price,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
