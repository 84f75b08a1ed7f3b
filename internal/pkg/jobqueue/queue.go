package jobqueue

import (
	"sync"

	"github.com/gofiber/fiber/v2/log"

	"github.com/finaccosolutions/Business-Management-Application-sub013/app/models"
)

const (
	// DefaultWorkers is used when a non-positive worker count is requested.
	DefaultWorkers = 3
	// queueCapacity bounds pending reconcile jobs. Jobs are derivable from
	// the database, so dropping on overflow loses nothing permanent.
	queueCapacity = 1024
)

// Reconciler is the scheduling entry point the queue drives.
type Reconciler interface {
	EnsureNextPeriod(workID uint, actorID uint) (*models.Period, error)
}

// Queue fans reconcile requests for individual works out to a small worker
// pool. Request handlers, the cron sweep and ad-hoc callers all enqueue
// here so period generation runs through one idempotent path.
type Queue struct {
	reconciler Reconciler
	workers    int
	jobs       chan uint
	stopCh     chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	running    bool
}

// NewQueue creates a reconcile queue
func NewQueue(reconciler Reconciler, workers int) *Queue {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Queue{
		reconciler: reconciler,
		workers:    workers,
		jobs:       make(chan uint, queueCapacity),
		stopCh:     make(chan struct{}),
	}
}

// Start starts the queue workers
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return
	}
	q.running = true
	log.Infof("[JobQueue] Starting %d reconcile workers", q.workers)

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

// Stop stops the queue workers and waits for them to drain
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.running {
		return
	}
	log.Info("[JobQueue] Stopping workers...")
	close(q.stopCh)
	q.running = false
	q.wg.Wait()
	log.Info("[JobQueue] All workers stopped")
}

// Enqueue schedules a reconcile for one work. It never blocks; on a full
// queue the job is dropped and picked up by the next cron sweep.
func (q *Queue) Enqueue(workID uint) bool {
	select {
	case q.jobs <- workID:
		return true
	default:
		log.Warnf("[JobQueue] queue full, dropping reconcile for work %d", workID)
		return false
	}
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()
	for {
		select {
		case <-q.stopCh:
			return
		case workID := <-q.jobs:
			period, err := q.reconciler.EnsureNextPeriod(workID, 0)
			if err != nil {
				log.Errorf("[JobQueue] worker %d: reconcile work %d: %v", id, workID, err)
				continue
			}
			if period != nil {
				log.Infof("[JobQueue] worker %d: generated period %q for work %d", id, period.Name, workID)
			}
		}
	}
}
