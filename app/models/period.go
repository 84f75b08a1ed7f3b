package models

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// ErrPeriodSpanInverted rejects periods whose end precedes their start.
var ErrPeriodSpanInverted = errors.New("period end date precedes start date")

// Period is one time-boxed instantiation of a recurring work's obligation.
// The unique index on (work_id, due_date) is what makes period generation
// idempotent under concurrent callers: the losing insert is ignored.
// Once IsBilled is set the period is immutable except for Notes.
type Period struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	WorkID        uint           `gorm:"not null;index:ux_periods_work_due,unique,priority:1" json:"work_id" validate:"required"`
	Name          string         `gorm:"type:varchar(100);not null" json:"name" validate:"required,max=100"`
	StartDate     time.Time      `gorm:"type:date;not null" json:"start_date"`
	EndDate       time.Time      `gorm:"type:date;not null" json:"end_date"`
	DueDate       time.Time      `gorm:"type:date;not null;index:ux_periods_work_due,unique,priority:2" json:"due_date"`
	Status        Status         `gorm:"type:varchar(20);not null;default:'pending';index" json:"status" validate:"omitempty,oneof=pending in_progress completed"`
	CompletedAt   *time.Time     `gorm:"type:timestamp;default:null" json:"completed_at,omitempty"`
	BillingAmount *float64       `gorm:"type:decimal(12,2);default:null" json:"billing_amount,omitempty"`
	IsBilled      bool           `gorm:"default:false;index" json:"is_billed"`
	InvoiceID     *uint          `gorm:"default:null" json:"invoice_id,omitempty"`
	Notes         string         `gorm:"type:text" json:"notes"`
	CreatedBy     uint           `gorm:"default:0" json:"created_by"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Work *Work `gorm:"foreignKey:WorkID" json:"work,omitempty"`
}

func (p *Period) Validate() error {
	v := validator.New()
	if err := v.Struct(p); err != nil {
		return err
	}
	if p.EndDate.Before(p.StartDate) {
		return ErrPeriodSpanInverted
	}
	return nil
}
