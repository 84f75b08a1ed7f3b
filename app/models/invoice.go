package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

const (
	InvoiceStatusIssued = "issued"
	InvoiceStatusPaid   = "paid"
	InvoiceStatusVoid   = "void"
)

// Invoice is the billing artifact produced when a period (or a
// non-recurring work) completes with auto-bill enabled. Exactly one invoice
// exists per billed period/work; the is_billed compare-and-set on the
// source row enforces that.
type Invoice struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	PublicID    string         `gorm:"type:varchar(36);uniqueIndex" json:"public_id"`
	CustomerID  uint           `gorm:"not null;index:ux_invoices_customer_seq,unique,priority:1" json:"customer_id"`
	WorkID      uint           `gorm:"not null;index" json:"work_id"`
	PeriodID    *uint          `gorm:"index;default:null" json:"period_id,omitempty"`
	SequenceNo  int            `gorm:"not null;index:ux_invoices_customer_seq,unique,priority:2" json:"sequence_no"`
	Number      string         `gorm:"type:varchar(50);not null;index" json:"number"`
	InvoiceDate time.Time      `gorm:"type:date;not null" json:"invoice_date"`
	DueDate     time.Time      `gorm:"type:date;not null" json:"due_date"`
	Subtotal    float64        `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	TaxRate     float64        `gorm:"type:decimal(5,2);not null" json:"tax_rate"`
	TaxAmount   float64        `gorm:"type:decimal(12,2);not null" json:"tax_amount"`
	TotalAmount float64        `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Status      string         `gorm:"type:varchar(20);not null;default:'issued'" json:"status"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
}

// InvoiceItem is one line on an invoice.
type InvoiceItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	InvoiceID   uint      `gorm:"not null;index" json:"invoice_id"`
	Description string    `gorm:"type:varchar(255);not null" json:"description"`
	Quantity    int       `gorm:"not null;default:1" json:"quantity"`
	UnitPrice   float64   `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Amount      float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// InvoiceNumber renders the per-customer sequential display number.
func InvoiceNumber(customerID uint, sequenceNo int) string {
	return fmt.Sprintf("INV-%d-%05d", customerID, sequenceNo)
}
