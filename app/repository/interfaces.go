package repository

import (
	"time"

	"github.com/finaccosolutions/Business-Management-Application-sub013/app/models"
)

// CustomerRepository defines the interface for customer-related database operations
type CustomerRepository interface {
	Create(customer *models.Customer) error
	GetByID(id uint) (*models.Customer, error)
}

// WorkRepository defines the interface for work-related database operations
type WorkRepository interface {
	Create(work *models.Work) error
	GetByID(id uint) (*models.Work, error)
	Update(work *models.Work) error
	ListByCustomer(customerID uint) ([]models.Work, error)
	ListRecurringIDs() ([]uint, error)
}

// TemplateRepository defines the interface for task template database operations.
// The engine only reads templates; authoring them is CRUD outside the engine.
type TemplateRepository interface {
	Create(template *models.TaskTemplate) error
	GetByID(id uint) (*models.TaskTemplate, error)
	ListByWork(workID uint) ([]models.TaskTemplate, error)
}

// PeriodRepository defines the interface for period database operations
type PeriodRepository interface {
	// CreateWithTasks inserts a period plus its generated tasks in one
	// transaction. The insert ignores the (work_id, due_date) conflict and
	// reports created=false when another caller already generated the same
	// period; in that case nothing is written at all.
	CreateWithTasks(period *models.Period, tasks []models.Task) (created bool, err error)
	GetByID(id uint) (*models.Period, error)
	ListByWork(workID uint) ([]models.Period, error)
	LatestByWork(workID uint) (*models.Period, error)
	ExistsByWorkAndDue(workID uint, due time.Time) (bool, error)
	Update(period *models.Period) error
	UpdateNotes(id uint, notes string) error
}

// TaskRepository defines the interface for task database operations
type TaskRepository interface {
	Create(task *models.Task) error
	GetByID(id uint) (*models.Task, error)
	ListByPeriod(periodID uint) ([]models.Task, error)
	ListDirectByWork(workID uint) ([]models.Task, error)
	CountByPeriod(periodID uint) (total int64, open int64, err error)
	CountDirectByWork(workID uint) (total int64, open int64, err error)
	Update(task *models.Task) error
}

// InvoiceRepository defines the interface for invoice database operations
type InvoiceRepository interface {
	// CreateForPeriod persists the invoice with its line item and flips the
	// period's is_billed flag in the same transaction. It returns
	// ErrAlreadyBilled without side effects when the flag was already set
	// by a concurrent caller.
	CreateForPeriod(invoice *models.Invoice, item *models.InvoiceItem, periodID uint) error
	// CreateForWork is the non-recurring counterpart of CreateForPeriod.
	CreateForWork(invoice *models.Invoice, item *models.InvoiceItem, workID uint) error
	GetByID(id uint) (*models.Invoice, error)
	GetByPublicID(publicID string) (*models.Invoice, error)
	ListByCustomer(customerID uint) ([]models.Invoice, error)
}
