package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/finaccosolutions/Business-Management-Application-sub013/app/models"
)

// ErrAlreadyBilled signals that the period or work was billed by a
// concurrent caller. The transaction that observes it writes nothing; the
// caller treats it as a successful no-op.
var ErrAlreadyBilled = errors.New("entity is already billed")

// invoiceRepository implements the InvoiceRepository interface
type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository instance
func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

// CreateForPeriod persists invoice + item and flips the period's is_billed
// flag in one transaction. The flag update is a compare-and-set on
// is_billed = false; losing the race rolls the whole transaction back, so
// a period can never end up billed twice or billed without an invoice.
func (r *invoiceRepository) CreateForPeriod(invoice *models.Invoice, item *models.InvoiceItem, periodID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := createNumbered(tx, invoice, item); err != nil {
			return err
		}
		res := tx.Model(&models.Period{}).
			Where("id = ? AND is_billed = ?", periodID, false).
			Updates(map[string]interface{}{
				"is_billed":  true,
				"invoice_id": invoice.ID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyBilled
		}
		return nil
	})
}

// CreateForWork is the work-level counterpart used for non-recurring works.
func (r *invoiceRepository) CreateForWork(invoice *models.Invoice, item *models.InvoiceItem, workID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := createNumbered(tx, invoice, item); err != nil {
			return err
		}
		res := tx.Model(&models.Work{}).
			Where("id = ? AND is_billed = ?", workID, false).
			Updates(map[string]interface{}{
				"is_billed":  true,
				"invoice_id": invoice.ID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyBilled
		}
		return nil
	})
}

// createNumbered allocates the next per-customer sequence number and inserts
// invoice + item. The unique index on (customer_id, sequence_no) turns a
// concurrent allocation into a retryable duplicate-key error.
func createNumbered(tx *gorm.DB, invoice *models.Invoice, item *models.InvoiceItem) error {
	var maxSeq int
	err := tx.Model(&models.Invoice{}).
		Where("customer_id = ?", invoice.CustomerID).
		Select("COALESCE(MAX(sequence_no), 0)").Scan(&maxSeq).Error
	if err != nil {
		return err
	}
	invoice.SequenceNo = maxSeq + 1
	invoice.Number = models.InvoiceNumber(invoice.CustomerID, invoice.SequenceNo)

	if err := tx.Create(invoice).Error; err != nil {
		return err
	}
	item.InvoiceID = invoice.ID
	return tx.Create(item).Error
}

// GetByID retrieves an invoice with its items preloaded
func (r *invoiceRepository) GetByID(id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.db.Preload("Items").First(&invoice, id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// GetByPublicID retrieves an invoice by its public UUID
func (r *invoiceRepository) GetByPublicID(publicID string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.Preload("Items").Where("public_id = ?", publicID).First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// ListByCustomer retrieves all invoices of a customer, newest first
func (r *invoiceRepository) ListByCustomer(customerID uint) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.Where("customer_id = ?", customerID).
		Order("sequence_no DESC").Find(&invoices).Error
	return invoices, err
}
