package scheduling

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/finaccosolutions/Business-Management-Application-sub013/app/models"
	"github.com/finaccosolutions/Business-Management-Application-sub013/app/repository"
	"github.com/finaccosolutions/Business-Management-Application-sub013/internal/pkg/invoicing"
	"github.com/finaccosolutions/Business-Management-Application-sub013/internal/pkg/recurrence"
)

var (
	// ErrInvalidTransition rejects a status change the state machine does
	// not permit.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrCompletedImmutable rejects changes to an entity that already
	// reached completed; reopening is an administrative operation, not a
	// regular transition.
	ErrCompletedImmutable = errors.New("completed entities cannot change status")
	// ErrPeriodBilled rejects mutations of a billed period. Only notes stay
	// editable after billing.
	ErrPeriodBilled = errors.New("billed periods are immutable except notes")
	// ErrDuplicatePeriod is returned from manual period creation when the
	// (work, due date) slot is already taken.
	ErrDuplicatePeriod = errors.New("a period with this due date already exists for the work")
)

// Biller is the slice of the invoicing service the state machine invokes
// when a period or work reaches completed.
type Biller interface {
	MaybeBillPeriod(periodID uint) (*models.Invoice, error)
	MaybeBillWork(workID uint) (*models.Invoice, error)
}

// Service owns period generation and the period/task/work state machine.
// The clock is injected so date-dependent behavior is deterministic under
// test; invalidate is an optional hook the app wires to the period cache.
type Service struct {
	repos      *repository.Repositories
	biller     Biller
	now        func() time.Time
	invalidate func(workID uint)
}

// NewService creates a scheduling service.
func NewService(repos *repository.Repositories, biller Biller) *Service {
	return &Service{
		repos:  repos,
		biller: biller,
		now:    time.Now,
	}
}

// WithClock overrides the service clock. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithInvalidator installs a cache invalidation hook called after every
// period or task mutation of a work.
func (s *Service) WithInvalidator(fn func(workID uint)) *Service {
	s.invalidate = fn
	return s
}

func (s *Service) invalidateWork(workID uint) {
	if s.invalidate != nil {
		s.invalidate(workID)
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// CreateWork validates and persists a new work. Recurring works get their
// bootstrap period seeded immediately so EnsureNextPeriod has an anchor to
// advance from.
func (s *Service) CreateWork(work *models.Work, actorID uint) error {
	work.CreatedBy = actorID
	if work.Status == "" {
		work.Status = models.StatusPending
	}
	if err := work.Validate(); err != nil {
		return err
	}
	if err := s.repos.Work.Create(work); err != nil {
		return err
	}
	if !work.IsRecurring {
		return nil
	}

	due := recurrence.BootstrapDueDate(dateOnly(s.now()), work.RecurrenceDay)
	if _, err := s.generatePeriod(work, due, actorID); err != nil {
		return fmt.Errorf("seed bootstrap period: %w", err)
	}
	return nil
}

// EnsureNextPeriod decides whether a recurring work is due for a new
// period and creates it together with its template tasks. The operation is
// idempotent: repeated or concurrent calls for the same due date create at
// most one period, and callers that lose the race get a nil period with no
// error. Safe to invoke from a request handler, the cron sweep or a queue
// consumer alike.
func (s *Service) EnsureNextPeriod(workID uint, actorID uint) (*models.Period, error) {
	work, err := s.repos.Work.GetByID(workID)
	if err != nil {
		return nil, err
	}
	if !work.IsRecurring {
		return nil, nil
	}

	latest, err := s.repos.Period.LatestByWork(workID)
	if err != nil {
		return nil, err
	}

	today := dateOnly(s.now())
	var nextDue time.Time
	switch {
	case latest == nil:
		// Works created before bootstrap seeding existed heal here.
		nextDue = recurrence.BootstrapDueDate(today, work.RecurrenceDay)
	case latest.DueDate.Before(today) || latest.Status == models.StatusCompleted:
		nextDue, err = recurrence.NextDueDate(latest.DueDate, work.RecurrencePattern, work.RecurrenceDay)
		if err != nil {
			return nil, err
		}
	default:
		// Latest period is still current and open: nothing to generate.
		return nil, nil
	}

	exists, err := s.repos.Period.ExistsByWorkAndDue(workID, nextDue)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, nil
	}

	return s.generatePeriod(work, nextDue, actorID)
}

// generatePeriod computes bounds, copies the current template snapshot and
// inserts period + tasks atomically. A conflicting concurrent insert makes
// this a no-op returning (nil, nil).
func (s *Service) generatePeriod(work *models.Work, due time.Time, actorID uint) (*models.Period, error) {
	start, end, name, err := recurrence.PeriodBounds(due, work.RecurrencePattern)
	if err != nil {
		return nil, err
	}

	templates, err := s.repos.Template.ListByWork(work.ID)
	if err != nil {
		return nil, err
	}

	period := &models.Period{
		WorkID:    work.ID,
		Name:      name,
		StartDate: start,
		EndDate:   end,
		DueDate:   due,
		Status:    models.StatusPending,
		CreatedBy: actorID,
	}

	tasks := make([]models.Task, 0, len(templates))
	for _, tpl := range templates {
		taskDue := end.AddDate(0, 0, tpl.DueDateOffsetDays)
		tasks = append(tasks, models.Task{
			WorkID:         work.ID,
			TemplateID:     &tpl.ID,
			Title:          tpl.Title,
			Description:    tpl.Description,
			Priority:       tpl.Priority,
			DueDate:        &taskDue,
			Status:         models.StatusPending,
			EstimatedHours: tpl.EstimatedHours,
			SortOrder:      tpl.DisplayOrder,
			CreatedBy:      actorID,
		})
	}

	created, err := s.repos.Period.CreateWithTasks(period, tasks)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, nil
	}
	s.invalidateWork(work.ID)
	return period, nil
}

// SweepRecurring visits every open recurring work and reports how many
// visits returned true. The cron sweep passes the job queue's Enqueue here
// so background generation runs through the same idempotent path as the
// request handlers; ReconcileAll reconciles inline through the same sweep.
func (s *Service) SweepRecurring(visit func(workID uint) bool) (int, error) {
	ids, err := s.repos.Work.ListRecurringIDs()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, id := range ids {
		if visit(id) {
			n++
		}
	}
	return n, nil
}

// ReconcileAll runs EnsureNextPeriod over every open recurring work and
// returns the IDs of works that received a new period. Errors on single
// works are logged and skipped so one broken work cannot stall the sweep.
func (s *Service) ReconcileAll(actorID uint) ([]uint, error) {
	var generated []uint
	_, err := s.SweepRecurring(func(id uint) bool {
		period, err := s.EnsureNextPeriod(id, actorID)
		if err != nil {
			log.Errorf("reconcile work %d: %v", id, err)
			return false
		}
		if period == nil {
			return false
		}
		generated = append(generated, id)
		return true
	})
	return generated, err
}

// ManualPeriodInput carries a user-supplied period that bypasses pattern
// generation.
type ManualPeriodInput struct {
	Name          string
	StartDate     time.Time
	EndDate       time.Time
	DueDate       time.Time
	BillingAmount *float64
	Notes         string
}

// CreateManualPeriod inserts a hand-made period. The (work, due date)
// uniqueness invariant still holds; a taken slot is a real error here since
// the user asked for this exact due date.
func (s *Service) CreateManualPeriod(workID uint, in ManualPeriodInput, actorID uint) (*models.Period, error) {
	if _, err := s.repos.Work.GetByID(workID); err != nil {
		return nil, err
	}
	period := &models.Period{
		WorkID:        workID,
		Name:          in.Name,
		StartDate:     dateOnly(in.StartDate),
		EndDate:       dateOnly(in.EndDate),
		DueDate:       dateOnly(in.DueDate),
		Status:        models.StatusPending,
		BillingAmount: in.BillingAmount,
		Notes:         in.Notes,
		CreatedBy:     actorID,
	}
	if err := period.Validate(); err != nil {
		return nil, err
	}
	created, err := s.repos.Period.CreateWithTasks(period, nil)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, ErrDuplicatePeriod
	}
	s.invalidateWork(workID)
	return period, nil
}

// ManualTaskInput carries a user-supplied task added to an existing period.
type ManualTaskInput struct {
	Title          string
	Description    string
	Priority       models.Priority
	DueDate        *time.Time
	AssignedTo     *uint
	EstimatedHours float64
	SortOrder      int
}

// CreateManualTask adds a task with no template link to a period.
func (s *Service) CreateManualTask(periodID uint, in ManualTaskInput, actorID uint) (*models.Task, error) {
	period, err := s.repos.Period.GetByID(periodID)
	if err != nil {
		return nil, err
	}
	if period.IsBilled {
		return nil, ErrPeriodBilled
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	task := &models.Task{
		WorkID:         period.WorkID,
		PeriodID:       &period.ID,
		Title:          in.Title,
		Description:    in.Description,
		Priority:       in.Priority,
		DueDate:        in.DueDate,
		Status:         models.StatusPending,
		AssignedTo:     in.AssignedTo,
		EstimatedHours: in.EstimatedHours,
		SortOrder:      in.SortOrder,
		CreatedBy:      actorID,
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	if err := s.repos.Task.Create(task); err != nil {
		return nil, err
	}
	s.invalidateWork(period.WorkID)
	return task, nil
}

// canTransition encodes the status graph shared by tasks, periods and
// works: pending may go to in_progress or straight to completed,
// in_progress may only go to completed.
func canTransition(from, to models.Status) bool {
	switch from {
	case models.StatusPending:
		return to == models.StatusInProgress || to == models.StatusCompleted
	case models.StatusInProgress:
		return to == models.StatusCompleted
	}
	return false
}

// TaskStatusResult reports what a task transition rippled into.
type TaskStatusResult struct {
	Task            *models.Task
	PeriodCompleted bool
	WorkCompleted   bool
	Invoice         *models.Invoice
	BillingSkipped  bool
}

// SetTaskStatus applies a task transition. Entering completed stamps
// completed_at and re-evaluates the owning period (or, for a direct task on
// a non-recurring work, the work): when every sibling is completed and at
// least one task exists, the parent is forced to completed and billing is
// triggered. A parent with zero tasks never auto-completes.
func (s *Service) SetTaskStatus(taskID uint, status models.Status, actorID uint) (*TaskStatusResult, error) {
	task, err := s.repos.Task.GetByID(taskID)
	if err != nil {
		return nil, err
	}
	if task.Status == models.StatusCompleted {
		return nil, ErrCompletedImmutable
	}
	if !canTransition(task.Status, status) {
		return nil, fmt.Errorf("%w: task %s -> %s", ErrInvalidTransition, task.Status, status)
	}

	task.Status = status
	if status == models.StatusCompleted {
		now := s.now()
		task.CompletedAt = &now
	}
	if err := s.repos.Task.Update(task); err != nil {
		return nil, err
	}
	s.invalidateWork(task.WorkID)

	result := &TaskStatusResult{Task: task}
	if status != models.StatusCompleted {
		return result, nil
	}

	if task.PeriodID != nil {
		if err := s.propagateToPeriod(*task.PeriodID, result); err != nil {
			return result, err
		}
		return result, nil
	}
	if err := s.propagateToWork(task.WorkID, result); err != nil {
		return result, err
	}
	return result, nil
}

// propagateToPeriod force-completes the period once all its tasks are done.
func (s *Service) propagateToPeriod(periodID uint, result *TaskStatusResult) error {
	period, err := s.repos.Period.GetByID(periodID)
	if err != nil {
		return err
	}
	if period.Status == models.StatusCompleted {
		return nil
	}
	total, open, err := s.repos.Task.CountByPeriod(periodID)
	if err != nil {
		return err
	}
	if total == 0 || open > 0 {
		return nil
	}

	now := s.now()
	period.Status = models.StatusCompleted
	period.CompletedAt = &now
	if err := s.repos.Period.Update(period); err != nil {
		return err
	}
	result.PeriodCompleted = true

	if err := s.billPeriod(period.ID, result); err != nil {
		return err
	}
	// The period changed again (status, and possibly is_billed) after the
	// task-level invalidation fired.
	s.invalidateWork(period.WorkID)
	return nil
}

// propagateToWork mirrors period auto-completion for non-recurring works.
func (s *Service) propagateToWork(workID uint, result *TaskStatusResult) error {
	work, err := s.repos.Work.GetByID(workID)
	if err != nil {
		return err
	}
	if work.IsRecurring || work.Status == models.StatusCompleted {
		return nil
	}
	total, open, err := s.repos.Task.CountDirectByWork(workID)
	if err != nil {
		return err
	}
	if total == 0 || open > 0 {
		return nil
	}

	now := s.now()
	work.Status = models.StatusCompleted
	work.CompletedAt = &now
	if err := s.repos.Work.Update(work); err != nil {
		return err
	}
	result.WorkCompleted = true

	invoice, err := s.biller.MaybeBillWork(workID)
	if err != nil {
		if errors.Is(err, invoicing.ErrBillingSkipped) {
			result.BillingSkipped = true
			return nil
		}
		return err
	}
	result.Invoice = invoice
	return nil
}

func (s *Service) billPeriod(periodID uint, result *TaskStatusResult) error {
	invoice, err := s.biller.MaybeBillPeriod(periodID)
	if err != nil {
		if errors.Is(err, invoicing.ErrBillingSkipped) {
			result.BillingSkipped = true
			return nil
		}
		return err
	}
	result.Invoice = invoice
	return nil
}

// PeriodStatusResult reports the outcome of a manual period transition.
type PeriodStatusResult struct {
	Period         *models.Period
	Invoice        *models.Invoice
	BillingSkipped bool
}

// SetPeriodStatus applies a manual period transition. Forcing completed
// while tasks remain open is an explicit override and still triggers
// billing: completion by any path is the one signal billing cares about.
func (s *Service) SetPeriodStatus(periodID uint, status models.Status, actorID uint) (*PeriodStatusResult, error) {
	period, err := s.repos.Period.GetByID(periodID)
	if err != nil {
		return nil, err
	}
	if period.IsBilled {
		return nil, ErrPeriodBilled
	}
	if period.Status == models.StatusCompleted {
		return nil, ErrCompletedImmutable
	}
	if !canTransition(period.Status, status) {
		return nil, fmt.Errorf("%w: period %s -> %s", ErrInvalidTransition, period.Status, status)
	}

	period.Status = status
	if status == models.StatusCompleted {
		now := s.now()
		period.CompletedAt = &now
	}
	if err := s.repos.Period.Update(period); err != nil {
		return nil, err
	}
	s.invalidateWork(period.WorkID)

	result := &PeriodStatusResult{Period: period}
	if status != models.StatusCompleted {
		return result, nil
	}

	invoice, err := s.biller.MaybeBillPeriod(period.ID)
	if err != nil {
		if errors.Is(err, invoicing.ErrBillingSkipped) {
			result.BillingSkipped = true
			return result, nil
		}
		return result, err
	}
	result.Invoice = invoice
	if invoice != nil {
		// Billing flipped is_billed after the invalidation above.
		s.invalidateWork(period.WorkID)
	}
	return result, nil
}

// WorkStatusResult reports the outcome of a manual work transition.
type WorkStatusResult struct {
	Work           *models.Work
	Invoice        *models.Invoice
	BillingSkipped bool
}

// SetWorkStatus applies a manual work transition. Completing a
// non-recurring work triggers work-level billing; recurring works bill per
// period, never at the work level.
func (s *Service) SetWorkStatus(workID uint, status models.Status, actorID uint) (*WorkStatusResult, error) {
	work, err := s.repos.Work.GetByID(workID)
	if err != nil {
		return nil, err
	}
	if work.Status == models.StatusCompleted {
		return nil, ErrCompletedImmutable
	}
	if !canTransition(work.Status, status) {
		return nil, fmt.Errorf("%w: work %s -> %s", ErrInvalidTransition, work.Status, status)
	}

	work.Status = status
	if status == models.StatusCompleted {
		now := s.now()
		work.CompletedAt = &now
	}
	if err := s.repos.Work.Update(work); err != nil {
		return nil, err
	}

	result := &WorkStatusResult{Work: work}
	if status != models.StatusCompleted || work.IsRecurring {
		return result, nil
	}

	invoice, err := s.biller.MaybeBillWork(work.ID)
	if err != nil {
		if errors.Is(err, invoicing.ErrBillingSkipped) {
			result.BillingSkipped = true
			return result, nil
		}
		return result, err
	}
	result.Invoice = invoice
	return result, nil
}

// UpdatePeriodNotes edits a period's notes. This works on billed periods
// too; notes are the only field billing does not freeze.
func (s *Service) UpdatePeriodNotes(periodID uint, notes string) error {
	period, err := s.repos.Period.GetByID(periodID)
	if err != nil {
		return err
	}
	if err := s.repos.Period.UpdateNotes(periodID, notes); err != nil {
		return err
	}
	s.invalidateWork(period.WorkID)
	return nil
}
