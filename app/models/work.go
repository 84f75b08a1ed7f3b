package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/finaccosolutions/Business-Management-Application-sub013/internal/pkg/recurrence"
)

// Work is one unit of client engagement, either one-off or recurring.
// Recurring works are expanded into periods by the scheduling service;
// the engine mutates status and billing fields but never deletes a work.
type Work struct {
	ID                uint               `gorm:"primaryKey" json:"id"`
	CustomerID        uint               `gorm:"not null;index" json:"customer_id" validate:"required"`
	ServiceID         uint               `gorm:"not null;index" json:"service_id" validate:"required"`
	Title             string             `gorm:"type:varchar(200);not null" json:"title" validate:"required,min=2,max=200"`
	Description       string             `gorm:"type:text" json:"description" validate:"max=2000"`
	IsRecurring       bool               `gorm:"default:false" json:"is_recurring"`
	RecurrencePattern recurrence.Pattern `gorm:"type:varchar(20);default:null" json:"recurrence_pattern,omitempty" validate:"omitempty,oneof=monthly quarterly half_yearly yearly"`
	RecurrenceDay     int                `gorm:"default:1" json:"recurrence_day" validate:"min=0,max=31"`
	BillingAmount     *float64           `gorm:"type:decimal(12,2);default:null" json:"billing_amount,omitempty"`
	AutoBill          bool               `gorm:"default:false" json:"auto_bill"`
	Status            Status             `gorm:"type:varchar(20);not null;default:'pending';index" json:"status" validate:"omitempty,oneof=pending in_progress completed"`
	CompletedAt       *time.Time         `gorm:"type:timestamp;default:null" json:"completed_at,omitempty"`
	IsBilled          bool               `gorm:"default:false" json:"is_billed"`
	InvoiceID         *uint              `gorm:"default:null" json:"invoice_id,omitempty"`
	CreatedBy         uint               `gorm:"default:0" json:"created_by"`
	CreatedAt         time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt     `gorm:"index" json:"-"`

	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Service  *Service  `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
}

func (w *Work) Validate() error {
	v := validator.New()
	if err := v.Struct(w); err != nil {
		return err
	}
	if w.IsRecurring {
		if _, err := recurrence.ParsePattern(string(w.RecurrencePattern)); err != nil {
			return err
		}
	}
	return nil
}
