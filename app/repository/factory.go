package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Repositories bundles all repository instances
type Repositories struct {
	Customer CustomerRepository
	Work     WorkRepository
	Template TemplateRepository
	Period   PeriodRepository
	Task     TaskRepository
	Invoice  InvoiceRepository
}

// NewRepositories creates all repositories from one DB handle
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Customer: NewCustomerRepository(db),
		Work:     NewWorkRepository(db),
		Template: NewTemplateRepository(db),
		Period:   NewPeriodRepository(db),
		Task:     NewTaskRepository(db),
		Invoice:  NewInvoiceRepository(db),
	}
}

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{db: db}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

// GetWorkRepository returns the work repository instance
func (f *Factory) GetWorkRepository() WorkRepository {
	return f.GetRepositories().Work
}

// GetPeriodRepository returns the period repository instance
func (f *Factory) GetPeriodRepository() PeriodRepository {
	return f.GetRepositories().Period
}

// GetTaskRepository returns the task repository instance
func (f *Factory) GetTaskRepository() TaskRepository {
	return f.GetRepositories().Task
}

// GetTemplateRepository returns the task template repository instance
func (f *Factory) GetTemplateRepository() TemplateRepository {
	return f.GetRepositories().Template
}

// GetInvoiceRepository returns the invoice repository instance
func (f *Factory) GetInvoiceRepository() InvoiceRepository {
	return f.GetRepositories().Invoice
}

// GetCustomerRepository returns the customer repository instance
func (f *Factory) GetCustomerRepository() CustomerRepository {
	return f.GetRepositories().Customer
}

// Global factory instance
var globalFactory *Factory
var factoryOnce sync.Once

// InitializeFactory initializes the global repository factory
func InitializeFactory(db *gorm.DB) {
	factoryOnce.Do(func() {
		globalFactory = NewFactory(db)
	})
}

// GetGlobalFactory returns the global repository factory
func GetGlobalFactory() *Factory {
	if globalFactory == nil {
		panic("repository factory not initialized - call InitializeFactory first")
	}
	return globalFactory
}
