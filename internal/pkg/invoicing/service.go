package invoicing

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/finaccosolutions/Business-Management-Application-sub013/app/models"
	"github.com/finaccosolutions/Business-Management-Application-sub013/app/repository"
)

// ErrBillingSkipped signals that a completed entity could not be billed
// because neither the period nor the work carries a billing amount. The
// completion stands; a user has to raise the invoice manually.
var ErrBillingSkipped = errors.New("no billing amount available, invoice must be raised manually")

// DefaultTaxRatePercent applies when no TAX_RATE_PERCENT is configured.
const DefaultTaxRatePercent = 18.0

// invoiceDueDays is the payment term granted on generated invoices.
const invoiceDueDays = 30

// Service synthesizes invoices from completed periods and works.
type Service struct {
	repos   *repository.Repositories
	taxRate float64
	now     func() time.Time
	notify  func(invoice *models.Invoice, customer *models.Customer)
}

// NewService creates an invoicing service with the default tax rate.
func NewService(repos *repository.Repositories) *Service {
	return &Service{
		repos:   repos,
		taxRate: DefaultTaxRatePercent,
		now:     time.Now,
	}
}

// WithTaxRate overrides the tax rate percentage.
func (s *Service) WithTaxRate(percent float64) *Service {
	s.taxRate = percent
	return s
}

// WithClock overrides the service clock. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithNotifier installs a hook invoked after an invoice is persisted,
// typically to mail the customer. Notification failures never affect the
// billing transaction.
func (s *Service) WithNotifier(fn func(invoice *models.Invoice, customer *models.Customer)) *Service {
	s.notify = fn
	return s
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// MaybeBillPeriod bills a completed, unbilled period of an auto-bill work.
// Anything else is a silent no-op returning (nil, nil): not-yet-completed
// periods, already-billed periods and works with auto-bill off. The invoice
// insert and the is_billed flip share one transaction, so a concurrent
// double completion produces exactly one invoice.
func (s *Service) MaybeBillPeriod(periodID uint) (*models.Invoice, error) {
	period, err := s.repos.Period.GetByID(periodID)
	if err != nil {
		return nil, err
	}
	if period.Status != models.StatusCompleted || period.IsBilled {
		return nil, nil
	}
	work, err := s.repos.Work.GetByID(period.WorkID)
	if err != nil {
		return nil, err
	}
	if !work.AutoBill {
		return nil, nil
	}

	subtotal := period.BillingAmount
	if subtotal == nil {
		subtotal = work.BillingAmount
	}
	if subtotal == nil {
		return nil, ErrBillingSkipped
	}

	description := fmt.Sprintf("%s - %s", serviceName(work), period.Name)
	invoice, item := s.buildInvoice(work, *subtotal, description)
	invoice.PeriodID = &period.ID

	if err := s.repos.Invoice.CreateForPeriod(invoice, item, period.ID); err != nil {
		if errors.Is(err, repository.ErrAlreadyBilled) {
			return nil, nil
		}
		return nil, err
	}

	s.sendNotification(invoice, work.CustomerID)
	return invoice, nil
}

// MaybeBillWork bills a completed, unbilled non-recurring work. Recurring
// works bill per period and are never billed at the work level.
func (s *Service) MaybeBillWork(workID uint) (*models.Invoice, error) {
	work, err := s.repos.Work.GetByID(workID)
	if err != nil {
		return nil, err
	}
	if work.IsRecurring {
		return nil, nil
	}
	if work.Status != models.StatusCompleted || work.IsBilled || !work.AutoBill {
		return nil, nil
	}
	if work.BillingAmount == nil {
		return nil, ErrBillingSkipped
	}

	invoice, item := s.buildInvoice(work, *work.BillingAmount, work.Title)

	if err := s.repos.Invoice.CreateForWork(invoice, item, work.ID); err != nil {
		if errors.Is(err, repository.ErrAlreadyBilled) {
			return nil, nil
		}
		return nil, err
	}

	s.sendNotification(invoice, work.CustomerID)
	return invoice, nil
}

// buildInvoice assembles the invoice and its single line item. The
// sequence number and display number are allocated later, inside the
// repository transaction.
func (s *Service) buildInvoice(work *models.Work, subtotal float64, description string) (*models.Invoice, *models.InvoiceItem) {
	taxAmount := roundMoney(subtotal * s.taxRate / 100)
	total := roundMoney(subtotal + taxAmount)
	invoiceDate := dateOnly(s.now())

	invoice := &models.Invoice{
		PublicID:    uuid.NewString(),
		CustomerID:  work.CustomerID,
		WorkID:      work.ID,
		InvoiceDate: invoiceDate,
		DueDate:     invoiceDate.AddDate(0, 0, invoiceDueDays),
		Subtotal:    subtotal,
		TaxRate:     s.taxRate,
		TaxAmount:   taxAmount,
		TotalAmount: total,
		Status:      models.InvoiceStatusIssued,
	}
	item := &models.InvoiceItem{
		Description: description,
		Quantity:    1,
		UnitPrice:   subtotal,
		Amount:      total,
	}
	return invoice, item
}

func serviceName(work *models.Work) string {
	if work.Service != nil && work.Service.Name != "" {
		return work.Service.Name
	}
	return work.Title
}

func (s *Service) sendNotification(invoice *models.Invoice, customerID uint) {
	if s.notify == nil {
		return
	}
	customer, err := s.repos.Customer.GetByID(customerID)
	if err != nil {
		return
	}
	s.notify(invoice, customer)
}
