package scheduling_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/finaccosolutions/Business-Management-Application-sub013/app/models"
	"github.com/finaccosolutions/Business-Management-Application-sub013/app/repository"
	"github.com/finaccosolutions/Business-Management-Application-sub013/internal/pkg/invoicing"
	"github.com/finaccosolutions/Business-Management-Application-sub013/internal/pkg/recurrence"
	"github.com/finaccosolutions/Business-Management-Application-sub013/internal/pkg/scheduling"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Customer{},
		&models.Service{},
		&models.Work{},
		&models.TaskTemplate{},
		&models.Period{},
		&models.Task{},
		&models.Invoice{},
		&models.InvoiceItem{},
	))
	return db
}

type testEnv struct {
	db    *gorm.DB
	repos *repository.Repositories
	sched *scheduling.Service
	now   time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	repos := repository.NewRepositories(db)
	now := time.Date(2024, time.September, 15, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	biller := invoicing.NewService(repos).WithClock(clock)
	sched := scheduling.NewService(repos, biller).WithClock(clock)
	return &testEnv{db: db, repos: repos, sched: sched, now: now}
}

func fptr(v float64) *float64 { return &v }

// seedWork persists customer, service and work directly through the
// repositories, bypassing CreateWork so no bootstrap period is seeded.
func (e *testEnv) seedWork(t *testing.T, mutate func(*models.Work)) *models.Work {
	t.Helper()
	customer := &models.Customer{Name: "Acme Traders", Email: "billing@acme.test"}
	require.NoError(t, e.repos.Customer.Create(customer))
	service := &models.Service{Name: "GST Filing"}
	require.NoError(t, e.db.Create(service).Error)

	work := &models.Work{
		CustomerID:        customer.ID,
		ServiceID:         service.ID,
		Title:             "Monthly GST Filing",
		IsRecurring:       true,
		RecurrencePattern: recurrence.PatternMonthly,
		RecurrenceDay:     15,
		Status:            models.StatusPending,
	}
	if mutate != nil {
		mutate(work)
	}
	require.NoError(t, e.repos.Work.Create(work))
	return work
}

func (e *testEnv) seedTemplate(t *testing.T, workID uint, title string, offsetDays, order int) *models.TaskTemplate {
	t.Helper()
	tpl := &models.TaskTemplate{
		WorkID:            workID,
		Title:             title,
		Priority:          models.PriorityMedium,
		DueDateOffsetDays: offsetDays,
		DisplayOrder:      order,
	}
	require.NoError(t, e.repos.Template.Create(tpl))
	return tpl
}

func (e *testEnv) seedPeriod(t *testing.T, workID uint, due time.Time, status models.Status) *models.Period {
	t.Helper()
	start, end, name, err := recurrence.PeriodBounds(due, recurrence.PatternMonthly)
	require.NoError(t, err)
	period := &models.Period{
		WorkID:    workID,
		Name:      name,
		StartDate: start,
		EndDate:   end,
		DueDate:   due,
		Status:    status,
	}
	created, err := e.repos.Period.CreateWithTasks(period, nil)
	require.NoError(t, err)
	require.True(t, created)
	return period
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreateWorkSeedsBootstrapPeriod(t *testing.T) {
	env := newTestEnv(t)
	customer := &models.Customer{Name: "Acme Traders"}
	require.NoError(t, env.repos.Customer.Create(customer))
	service := &models.Service{Name: "GST Filing"}
	require.NoError(t, env.db.Create(service).Error)

	work := &models.Work{
		CustomerID:        customer.ID,
		ServiceID:         service.ID,
		Title:             "Monthly GST Filing",
		IsRecurring:       true,
		RecurrencePattern: recurrence.PatternMonthly,
		RecurrenceDay:     20,
	}
	require.NoError(t, env.sched.CreateWork(work, 7))
	assert.Equal(t, uint(7), work.CreatedBy)

	periods, err := env.repos.Period.ListByWork(work.ID)
	require.NoError(t, err)
	require.Len(t, periods, 1)
	assert.Equal(t, "September 2024", periods[0].Name)
	assert.True(t, periods[0].DueDate.Equal(date(2024, time.September, 20)))
	assert.Equal(t, models.StatusPending, periods[0].Status)

	// The bootstrap period is current and open, so nothing more generates.
	period, err := env.sched.EnsureNextPeriod(work.ID, 7)
	require.NoError(t, err)
	assert.Nil(t, period)
}

func TestCreateWorkNonRecurringSeedsNothing(t *testing.T) {
	env := newTestEnv(t)
	customer := &models.Customer{Name: "One Off Ltd"}
	require.NoError(t, env.repos.Customer.Create(customer))
	service := &models.Service{Name: "Company Registration"}
	require.NoError(t, env.db.Create(service).Error)

	work := &models.Work{
		CustomerID: customer.ID,
		ServiceID:  service.ID,
		Title:      "Company Registration",
	}
	require.NoError(t, env.sched.CreateWork(work, 1))

	periods, err := env.repos.Period.ListByWork(work.ID)
	require.NoError(t, err)
	assert.Empty(t, periods)

	period, err := env.sched.EnsureNextPeriod(work.ID, 1)
	require.NoError(t, err)
	assert.Nil(t, period)
}

func TestEnsureNextPeriodHealsMissingBootstrap(t *testing.T) {
	env := newTestEnv(t)
	work := env.seedWork(t, nil)
	env.seedTemplate(t, work.ID, "File GSTR-1", 10, 1)
	env.seedTemplate(t, work.ID, "Collect documents", -5, 0)

	period, err := env.sched.EnsureNextPeriod(work.ID, 3)
	require.NoError(t, err)
	require.NotNil(t, period)
	assert.Equal(t, "September 2024", period.Name)
	assert.True(t, period.DueDate.Equal(date(2024, time.September, 15)))
	assert.True(t, period.StartDate.Equal(date(2024, time.September, 1)))
	assert.True(t, period.EndDate.Equal(date(2024, time.September, 30)))

	tasks, err := env.repos.Task.ListByPeriod(period.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	// Listed by sort order: the offset -5 template comes first.
	assert.Equal(t, "Collect documents", tasks[0].Title)
	require.NotNil(t, tasks[0].DueDate)
	assert.True(t, tasks[0].DueDate.Equal(date(2024, time.September, 25)))
	assert.Equal(t, "File GSTR-1", tasks[1].Title)
	require.NotNil(t, tasks[1].DueDate)
	assert.True(t, tasks[1].DueDate.Equal(date(2024, time.October, 10)))
	require.NotNil(t, tasks[0].TemplateID)
	assert.Equal(t, uint(3), tasks[0].CreatedBy)

	// Idempotent: a second call finds the period and generates nothing.
	again, err := env.sched.EnsureNextPeriod(work.ID, 3)
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestEnsureNextPeriodAdvancesAfterCompletion(t *testing.T) {
	env := newTestEnv(t)
	work := env.seedWork(t, nil)
	env.seedPeriod(t, work.ID, date(2024, time.September, 15), models.StatusCompleted)

	period, err := env.sched.EnsureNextPeriod(work.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, period)
	assert.Equal(t, "October 2024", period.Name)
	assert.True(t, period.DueDate.Equal(date(2024, time.October, 15)))
}

func TestEnsureNextPeriodAdvancesPastDue(t *testing.T) {
	env := newTestEnv(t)
	work := env.seedWork(t, nil)
	// Still open but overdue: the next slot opens regardless.
	env.seedPeriod(t, work.ID, date(2024, time.August, 15), models.StatusPending)

	period, err := env.sched.EnsureNextPeriod(work.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, period)
	assert.True(t, period.DueDate.Equal(date(2024, time.September, 15)))
}

func TestEnsureNextPeriodClampsAnchorDay(t *testing.T) {
	env := newTestEnv(t)
	work := env.seedWork(t, func(w *models.Work) {
		w.RecurrenceDay = 31
	})
	env.seedPeriod(t, work.ID, date(2024, time.January, 31), models.StatusCompleted)

	period, err := env.sched.EnsureNextPeriod(work.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, period)
	// 2024 is a leap year.
	assert.True(t, period.DueDate.Equal(date(2024, time.February, 29)))
}

func TestEnsureNextPeriodQuarterlyBounds(t *testing.T) {
	env := newTestEnv(t)
	work := env.seedWork(t, func(w *models.Work) {
		w.RecurrencePattern = recurrence.PatternQuarterly
	})
	seed := &models.Period{
		WorkID:    work.ID,
		Name:      "Q2 2024",
		StartDate: date(2024, time.April, 1),
		EndDate:   date(2024, time.June, 30),
		DueDate:   date(2024, time.May, 15),
		Status:    models.StatusCompleted,
	}
	created, err := env.repos.Period.CreateWithTasks(seed, nil)
	require.NoError(t, err)
	require.True(t, created)

	period, err := env.sched.EnsureNextPeriod(work.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, period)
	assert.Equal(t, "Q3 2024", period.Name)
	assert.True(t, period.DueDate.Equal(date(2024, time.August, 15)))
	assert.True(t, period.StartDate.Equal(date(2024, time.July, 1)))
	assert.True(t, period.EndDate.Equal(date(2024, time.September, 30)))
}

func TestReconcileAllSkipsOpenWorks(t *testing.T) {
	env := newTestEnv(t)
	dueWork := env.seedWork(t, nil)
	env.seedPeriod(t, dueWork.ID, date(2024, time.September, 15), models.StatusCompleted)

	currentWork := env.seedWork(t, func(w *models.Work) {
		w.Title = "Quarterly VAT Filing"
	})
	env.seedPeriod(t, currentWork.ID, date(2024, time.September, 15), models.StatusPending)

	generated, err := env.sched.ReconcileAll(0)
	require.NoError(t, err)
	assert.Equal(t, []uint{dueWork.ID}, generated)
}

func TestSweepRecurringVisitsOpenRecurringWorks(t *testing.T) {
	env := newTestEnv(t)
	first := env.seedWork(t, nil)
	second := env.seedWork(t, func(w *models.Work) {
		w.Title = "Quarterly VAT Filing"
	})
	env.seedWork(t, func(w *models.Work) {
		w.Title = "Finished Engagement"
		w.Status = models.StatusCompleted
	})
	env.seedWork(t, func(w *models.Work) {
		w.Title = "Company Registration"
		w.IsRecurring = false
		w.RecurrencePattern = ""
	})

	var visited []uint
	queued, err := env.sched.SweepRecurring(func(workID uint) bool {
		visited = append(visited, workID)
		return workID == first.ID
	})
	require.NoError(t, err)
	assert.Equal(t, 1, queued)
	assert.Equal(t, []uint{first.ID, second.ID}, visited)
}

func TestTaskCompletionPropagatesToPeriod(t *testing.T) {
	env := newTestEnv(t)
	work := env.seedWork(t, func(w *models.Work) {
		w.AutoBill = true
		w.BillingAmount = fptr(1000)
	})
	env.seedTemplate(t, work.ID, "Collect documents", -5, 0)
	env.seedTemplate(t, work.ID, "Prepare return", 0, 1)
	env.seedTemplate(t, work.ID, "File return", 10, 2)

	period, err := env.sched.EnsureNextPeriod(work.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, period)
	tasks, err := env.repos.Task.ListByPeriod(period.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	for i := 0; i < 2; i++ {
		result, err := env.sched.SetTaskStatus(tasks[i].ID, models.StatusCompleted, 1)
		require.NoError(t, err)
		assert.False(t, result.PeriodCompleted)
		assert.Nil(t, result.Invoice)
	}

	result, err := env.sched.SetTaskStatus(tasks[2].ID, models.StatusCompleted, 1)
	require.NoError(t, err)
	assert.True(t, result.PeriodCompleted)
	assert.False(t, result.BillingSkipped)
	require.NotNil(t, result.Invoice)
	assert.Equal(t, 1000.0, result.Invoice.Subtotal)
	assert.Equal(t, 180.0, result.Invoice.TaxAmount)
	assert.Equal(t, 1180.0, result.Invoice.TotalAmount)
	assert.Equal(t, models.InvoiceNumber(work.CustomerID, 1), result.Invoice.Number)

	reloaded, err := env.repos.Period.GetByID(period.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, reloaded.Status)
	require.NotNil(t, reloaded.CompletedAt)
	assert.True(t, reloaded.IsBilled)
	require.NotNil(t, reloaded.InvoiceID)
	assert.Equal(t, result.Invoice.ID, *reloaded.InvoiceID)

	invoice, err := env.repos.Invoice.GetByID(result.Invoice.ID)
	require.NoError(t, err)
	require.Len(t, invoice.Items, 1)
	assert.Equal(t, "GST Filing - September 2024", invoice.Items[0].Description)
}

func TestTaskCompletionSkipsBillingWithoutAmount(t *testing.T) {
	env := newTestEnv(t)
	work := env.seedWork(t, func(w *models.Work) {
		w.AutoBill = true
	})
	env.seedTemplate(t, work.ID, "File return", 0, 0)

	period, err := env.sched.EnsureNextPeriod(work.ID, 1)
	require.NoError(t, err)
	tasks, err := env.repos.Task.ListByPeriod(period.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	result, err := env.sched.SetTaskStatus(tasks[0].ID, models.StatusCompleted, 1)
	require.NoError(t, err)
	assert.True(t, result.PeriodCompleted)
	assert.True(t, result.BillingSkipped)
	assert.Nil(t, result.Invoice)

	// The completion stands even though no invoice could be raised.
	reloaded, err := env.repos.Period.GetByID(period.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, reloaded.Status)
	assert.False(t, reloaded.IsBilled)
}

func TestZeroTaskPeriodCompletesOnlyManually(t *testing.T) {
	env := newTestEnv(t)
	work := env.seedWork(t, func(w *models.Work) {
		w.AutoBill = true
		w.BillingAmount = fptr(750)
	})

	period, err := env.sched.EnsureNextPeriod(work.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, period)

	result, err := env.sched.SetPeriodStatus(period.ID, models.StatusCompleted, 1)
	require.NoError(t, err)
	require.NotNil(t, result.Invoice)
	assert.Equal(t, 885.0, result.Invoice.TotalAmount)
}

func TestManualPeriodCompletionOverridesOpenTasks(t *testing.T) {
	env := newTestEnv(t)
	work := env.seedWork(t, func(w *models.Work) {
		w.AutoBill = true
		w.BillingAmount = fptr(1000)
	})
	env.seedTemplate(t, work.ID, "File return", 0, 0)

	period, err := env.sched.EnsureNextPeriod(work.ID, 1)
	require.NoError(t, err)

	result, err := env.sched.SetPeriodStatus(period.ID, models.StatusCompleted, 1)
	require.NoError(t, err)
	require.NotNil(t, result.Invoice)

	// The open task survives the override untouched.
	tasks, err := env.repos.Task.ListByPeriod(period.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, models.StatusPending, tasks[0].Status)
}

func TestPeriodBillingAmountOverridesWork(t *testing.T) {
	env := newTestEnv(t)
	work := env.seedWork(t, func(w *models.Work) {
		w.AutoBill = true
		w.BillingAmount = fptr(1000)
	})
	period := env.seedPeriod(t, work.ID, date(2024, time.September, 15), models.StatusPending)
	period.BillingAmount = fptr(600)
	require.NoError(t, env.repos.Period.Update(period))

	result, err := env.sched.SetPeriodStatus(period.ID, models.StatusCompleted, 1)
	require.NoError(t, err)
	require.NotNil(t, result.Invoice)
	assert.Equal(t, 600.0, result.Invoice.Subtotal)
	assert.Equal(t, 708.0, result.Invoice.TotalAmount)
}

func TestSetTaskStatusTransitionRules(t *testing.T) {
	env := newTestEnv(t)
	work := env.seedWork(t, nil)
	env.seedTemplate(t, work.ID, "File return", 0, 0)
	period, err := env.sched.EnsureNextPeriod(work.ID, 1)
	require.NoError(t, err)
	tasks, err := env.repos.Task.ListByPeriod(period.ID)
	require.NoError(t, err)
	task := tasks[0]

	result, err := env.sched.SetTaskStatus(task.ID, models.StatusInProgress, 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, result.Task.Status)

	// Backwards is not a transition the graph knows.
	_, err = env.sched.SetTaskStatus(task.ID, models.StatusPending, 1)
	assert.ErrorIs(t, err, scheduling.ErrInvalidTransition)

	_, err = env.sched.SetTaskStatus(task.ID, models.StatusCompleted, 1)
	require.NoError(t, err)

	_, err = env.sched.SetTaskStatus(task.ID, models.StatusInProgress, 1)
	assert.ErrorIs(t, err, scheduling.ErrCompletedImmutable)
}

func TestBilledPeriodIsFrozenExceptNotes(t *testing.T) {
	env := newTestEnv(t)
	work := env.seedWork(t, func(w *models.Work) {
		w.AutoBill = true
		w.BillingAmount = fptr(1000)
	})
	period := env.seedPeriod(t, work.ID, date(2024, time.September, 15), models.StatusPending)

	_, err := env.sched.SetPeriodStatus(period.ID, models.StatusCompleted, 1)
	require.NoError(t, err)

	_, err = env.sched.SetPeriodStatus(period.ID, models.StatusInProgress, 1)
	assert.ErrorIs(t, err, scheduling.ErrPeriodBilled)

	_, err = env.sched.CreateManualTask(period.ID, scheduling.ManualTaskInput{Title: "Late addition"}, 1)
	assert.ErrorIs(t, err, scheduling.ErrPeriodBilled)

	require.NoError(t, env.sched.UpdatePeriodNotes(period.ID, "paid in cash"))
	reloaded, err := env.repos.Period.GetByID(period.ID)
	require.NoError(t, err)
	assert.Equal(t, "paid in cash", reloaded.Notes)
}

func TestCreateManualPeriodDuplicateDueDate(t *testing.T) {
	env := newTestEnv(t)
	work := env.seedWork(t, nil)
	env.seedPeriod(t, work.ID, date(2024, time.September, 15), models.StatusPending)

	_, err := env.sched.CreateManualPeriod(work.ID, scheduling.ManualPeriodInput{
		Name:      "September 2024 (manual)",
		StartDate: date(2024, time.September, 1),
		EndDate:   date(2024, time.September, 30),
		DueDate:   date(2024, time.September, 15),
	}, 1)
	assert.ErrorIs(t, err, scheduling.ErrDuplicatePeriod)

	created, err := env.sched.CreateManualPeriod(work.ID, scheduling.ManualPeriodInput{
		Name:      "Special audit window",
		StartDate: date(2024, time.October, 1),
		EndDate:   date(2024, time.October, 31),
		DueDate:   date(2024, time.October, 20),
		Notes:     "requested by client",
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, "Special audit window", created.Name)
	assert.Equal(t, "requested by client", created.Notes)
}

func TestCreateManualPeriodRejectsInvertedSpan(t *testing.T) {
	env := newTestEnv(t)
	work := env.seedWork(t, nil)

	_, err := env.sched.CreateManualPeriod(work.ID, scheduling.ManualPeriodInput{
		Name:      "Broken window",
		StartDate: date(2024, time.October, 31),
		EndDate:   date(2024, time.October, 1),
		DueDate:   date(2024, time.October, 20),
	}, 1)
	assert.ErrorIs(t, err, models.ErrPeriodSpanInverted)
}

func TestManualTaskJoinsPeriodCompletionSet(t *testing.T) {
	env := newTestEnv(t)
	work := env.seedWork(t, nil)
	env.seedTemplate(t, work.ID, "File return", 0, 0)
	period, err := env.sched.EnsureNextPeriod(work.ID, 1)
	require.NoError(t, err)

	manual, err := env.sched.CreateManualTask(period.ID, scheduling.ManualTaskInput{
		Title:    "Chase missing bank statement",
		Priority: models.PriorityHigh,
	}, 2)
	require.NoError(t, err)
	assert.Nil(t, manual.TemplateID)
	require.NotNil(t, manual.PeriodID)
	assert.Equal(t, period.ID, *manual.PeriodID)

	tasks, err := env.repos.Task.ListByPeriod(period.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	// Completing only the generated task is not enough anymore.
	var generated *models.Task
	for i := range tasks {
		if tasks[i].TemplateID != nil {
			generated = &tasks[i]
		}
	}
	require.NotNil(t, generated)
	result, err := env.sched.SetTaskStatus(generated.ID, models.StatusCompleted, 1)
	require.NoError(t, err)
	assert.False(t, result.PeriodCompleted)

	result, err = env.sched.SetTaskStatus(manual.ID, models.StatusCompleted, 1)
	require.NoError(t, err)
	assert.True(t, result.PeriodCompleted)
}

func TestDirectTaskCompletionCompletesWork(t *testing.T) {
	env := newTestEnv(t)
	work := env.seedWork(t, func(w *models.Work) {
		w.Title = "Company Registration"
		w.IsRecurring = false
		w.RecurrencePattern = ""
		w.AutoBill = true
		w.BillingAmount = fptr(500)
	})

	one := &models.Task{WorkID: work.ID, Title: "Draft incorporation papers", Priority: models.PriorityMedium, Status: models.StatusPending}
	two := &models.Task{WorkID: work.ID, Title: "Submit to registrar", Priority: models.PriorityMedium, Status: models.StatusPending}
	require.NoError(t, env.repos.Task.Create(one))
	require.NoError(t, env.repos.Task.Create(two))

	result, err := env.sched.SetTaskStatus(one.ID, models.StatusCompleted, 1)
	require.NoError(t, err)
	assert.False(t, result.WorkCompleted)

	result, err = env.sched.SetTaskStatus(two.ID, models.StatusCompleted, 1)
	require.NoError(t, err)
	assert.True(t, result.WorkCompleted)
	require.NotNil(t, result.Invoice)
	assert.Equal(t, 590.0, result.Invoice.TotalAmount)

	reloaded, err := env.repos.Work.GetByID(work.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, reloaded.Status)
	require.NotNil(t, reloaded.CompletedAt)
	assert.True(t, reloaded.IsBilled)
}

func TestSetWorkStatusBillsNonRecurringOnly(t *testing.T) {
	env := newTestEnv(t)
	oneOff := env.seedWork(t, func(w *models.Work) {
		w.Title = "Annual Audit"
		w.IsRecurring = false
		w.RecurrencePattern = ""
		w.AutoBill = true
		w.BillingAmount = fptr(2000)
	})

	result, err := env.sched.SetWorkStatus(oneOff.ID, models.StatusCompleted, 1)
	require.NoError(t, err)
	require.NotNil(t, result.Invoice)
	assert.Equal(t, 2360.0, result.Invoice.TotalAmount)

	_, err = env.sched.SetWorkStatus(oneOff.ID, models.StatusInProgress, 1)
	assert.ErrorIs(t, err, scheduling.ErrCompletedImmutable)

	recurring := env.seedWork(t, func(w *models.Work) {
		w.Title = "Monthly Bookkeeping"
		w.AutoBill = true
		w.BillingAmount = fptr(300)
	})
	result, err = env.sched.SetWorkStatus(recurring.ID, models.StatusCompleted, 1)
	require.NoError(t, err)
	assert.Nil(t, result.Invoice)
	assert.False(t, result.BillingSkipped)
}

func TestInvalidatorFiresOnMutations(t *testing.T) {
	env := newTestEnv(t)
	var invalidated []uint
	env.sched.WithInvalidator(func(workID uint) {
		invalidated = append(invalidated, workID)
	})

	work := env.seedWork(t, nil)
	env.seedTemplate(t, work.ID, "File return", 0, 0)

	period, err := env.sched.EnsureNextPeriod(work.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, period)
	assert.Equal(t, []uint{work.ID}, invalidated)

	tasks, err := env.repos.Task.ListByPeriod(period.ID)
	require.NoError(t, err)
	_, err = env.sched.SetTaskStatus(tasks[0].ID, models.StatusInProgress, 1)
	require.NoError(t, err)
	assert.Len(t, invalidated, 2)

	// Note edits land in the cached listing payload too.
	require.NoError(t, env.sched.UpdatePeriodNotes(period.ID, "waiting on client"))
	assert.Len(t, invalidated, 3)
	assert.Equal(t, work.ID, invalidated[2])

	// Completing the last task mutates the period after the task-level
	// invalidation, so the listing is dropped once more.
	result, err := env.sched.SetTaskStatus(tasks[0].ID, models.StatusCompleted, 1)
	require.NoError(t, err)
	assert.True(t, result.PeriodCompleted)
	assert.Len(t, invalidated, 5)
}

func TestInvalidatorFiresAfterBilling(t *testing.T) {
	env := newTestEnv(t)
	var invalidated []uint
	env.sched.WithInvalidator(func(workID uint) {
		invalidated = append(invalidated, workID)
	})

	work := env.seedWork(t, func(w *models.Work) {
		w.AutoBill = true
		w.BillingAmount = fptr(1000)
	})
	period := env.seedPeriod(t, work.ID, date(2024, time.September, 15), models.StatusPending)

	result, err := env.sched.SetPeriodStatus(period.ID, models.StatusCompleted, 1)
	require.NoError(t, err)
	require.NotNil(t, result.Invoice)
	// Once for the status update, once after is_billed flipped.
	assert.Equal(t, []uint{work.ID, work.ID}, invalidated)
}

func TestTemplateEditsLeaveExistingTasksAlone(t *testing.T) {
	env := newTestEnv(t)
	work := env.seedWork(t, nil)
	tpl := env.seedTemplate(t, work.ID, "File return", 0, 0)

	period, err := env.sched.EnsureNextPeriod(work.ID, 1)
	require.NoError(t, err)

	// Edit the template after generation.
	tpl.Title = "File return (revised)"
	tpl.DueDateOffsetDays = 5
	require.NoError(t, env.db.Save(tpl).Error)

	tasks, err := env.repos.Task.ListByPeriod(period.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "File return", tasks[0].Title)
	assert.True(t, tasks[0].DueDate.Equal(date(2024, time.September, 30)))
}
