package models

import (
	"time"

	"gorm.io/gorm"
)

// Customer is the client account that owns works and receives invoices.
// Customer CRUD lives outside the engine; the engine only reads customers
// for invoice numbering and notification addressing.
type Customer struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(200);not null" json:"name" validate:"required,min=2,max=200"`
	Email     string         `gorm:"type:varchar(200);index" json:"email" validate:"omitempty,email,max=200"`
	Phone     string         `gorm:"type:varchar(30)" json:"phone" validate:"max=30"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
