package queued

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/Swind/go-async-core/core"
)

var (
	// ErrAlreadyRunning is returned by Run while another Run is in progress.
	ErrAlreadyRunning = errors.New("queued: scheduler is already running")

	// ErrStopped is returned by Run once the scheduler has been stopped.
	ErrStopped = errors.New("queued: scheduler has been stopped")
)

type entry struct {
	id         core.TaskID
	name       string
	task       core.Task
	enqueuedAt time.Time
	startedAt  time.Time
	polls      int
}

// Scheduler is a cooperative, single-threaded scheduler implementing
// core.InternalScheduler. Run drives every task on the calling goroutine:
// each pass over the FIFO run queue is one burst, during which the scheduler
// is installed in its Slot and every queued task is polled once.
//
// After a burst in which no task finished, nothing was enqueued and no task
// yielded, Run waits for the next timer deadline, an external Enqueue or
// IdleBackoff, whichever comes first. Yield points wake the loop at once, but
// a task that is pending on state changed outside the scheduler (a flag, a
// channel) is re-polled only every IdleBackoff.
//
// Enqueue, Contains, Sleep and Stop are safe to call from any goroutine.
// Task ids start at 1 and are never reused by one Scheduler.
type Scheduler struct {
	id   string
	name string
	slot *core.Slot

	mu          sync.Mutex
	nextID      core.TaskID
	outstanding map[core.TaskID]*entry
	inbox       []*entry
	timers      deadlineHeap

	// runQueue is owned by the goroutine inside Run.
	runQueue []*entry

	wakeup  chan struct{}
	running atomic.Bool
	stopped atomic.Bool

	sem      *semaphore.Weighted
	offloads atomic.Int64
	baseCtx  atomic.Pointer[context.Context]

	bursts    atomic.Int64
	polls     atomic.Int64
	completed atomic.Int64
	panicked  atomic.Int64
	rejected  atomic.Int64

	idleBackoff  time.Duration
	logger       Logger
	panicHandler PanicHandler
	metrics      Metrics
	history      *executionHistory
	now          func() time.Time
}

var (
	_ core.InternalScheduler = (*Scheduler)(nil)
	_ core.Waker             = (*Scheduler)(nil)
)

// New creates a Scheduler configured by opts on top of DefaultConfig.
func New(opts ...Option) *Scheduler {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a Scheduler from cfg. A nil cfg means DefaultConfig.
func NewWithConfig(cfg *Config) *Scheduler {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg
	c.normalize()

	return &Scheduler{
		id:           uuid.NewString(),
		name:         c.Name,
		slot:         core.NewSlot(),
		outstanding:  make(map[core.TaskID]*entry),
		wakeup:       make(chan struct{}, 1),
		sem:          semaphore.NewWeighted(c.BlockingWorkers),
		idleBackoff:  c.IdleBackoff,
		logger:       c.Logger,
		panicHandler: c.PanicHandler,
		metrics:      c.Metrics,
		history:      newExecutionHistory(c.HistoryCapacity),
		now:          time.Now,
	}
}

// ID returns the unique instance id of the scheduler.
func (s *Scheduler) ID() string { return s.id }

// Name returns the configured name of the scheduler.
func (s *Scheduler) Name() string { return s.name }

// Slot returns the slot the scheduler installs itself in during bursts.
func (s *Scheduler) Slot() *core.Slot { return s.slot }

// =============================================================================
// core.InternalScheduler
// =============================================================================

// Enqueue takes ownership of task. The task is first polled in the burst
// after the current one. After Stop the task is dropped and the returned id
// is never outstanding.
func (s *Scheduler) Enqueue(task core.Task) core.TaskID {
	return s.EnqueueNamed(taskName(task), task)
}

// EnqueueNamed is Enqueue with an explicit name for history and logs.
func (s *Scheduler) EnqueueNamed(name string, task core.Task) core.TaskID {
	s.mu.Lock()
	s.nextID++
	id := s.nextID

	reason := ""
	switch {
	case task == nil:
		reason = RejectNilTask
	case s.stopped.Load():
		reason = RejectStopped
	}
	if reason != "" {
		s.mu.Unlock()
		s.reject(id, reason)
		return id
	}

	e := &entry{id: id, name: name, task: task, enqueuedAt: s.now()}
	s.outstanding[id] = e
	s.inbox = append(s.inbox, e)
	n := len(s.outstanding)
	s.mu.Unlock()

	s.metrics.RecordOutstanding(s.name, n)
	s.wake()
	return id
}

// Contains reports whether id is still outstanding.
func (s *Scheduler) Contains(id core.TaskID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.outstanding[id]
	return ok
}

// Sleep returns a future that is ready once d has elapsed from now.
func (s *Scheduler) Sleep(d time.Duration) core.Future[core.Unit] {
	at := s.now().Add(d)
	s.addDeadline(at)
	return &sleepFuture{deadline: at, now: s.now}
}

// Stop makes Run return after the task currently being polled. Tasks that
// are still outstanding are discarded. Stop is permanent.
func (s *Scheduler) Stop() core.Stop {
	if s.stopped.CompareAndSwap(false, true) {
		s.logger.Info("scheduler stop requested", F("scheduler", s.name), F("id", s.id))
		s.wake()
	}
	return core.Stop{}
}

// Wake makes the run loop start its next burst without idling.
func (s *Scheduler) Wake() {
	s.wake()
}

// IsStopped reports whether Stop has been called.
func (s *Scheduler) IsStopped() bool {
	return s.stopped.Load()
}

// =============================================================================
// Run loop
// =============================================================================

// Run enqueues root (if not nil) and drives tasks until none is outstanding,
// Stop is called or ctx is done. Only one Run may be active at a time.
//
// On cancellation the outstanding tasks are discarded and the wrapped
// ctx.Err() is returned.
func (s *Scheduler) Run(ctx context.Context, root core.Task) error {
	if s.stopped.Load() {
		return ErrStopped
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)

	s.baseCtx.Store(&ctx)
	if root != nil {
		s.EnqueueNamed("root", root)
	}

	s.logger.Debug("scheduler started", F("scheduler", s.name), F("id", s.id))
	defer s.logger.Debug("scheduler exited", F("scheduler", s.name), F("id", s.id))

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		if err := ctx.Err(); err != nil {
			s.discardAll()
			return fmt.Errorf("scheduler %s: %w", s.name, err)
		}
		if s.stopped.Load() {
			s.discardAll()
			return nil
		}

		progressed := s.burst(ctx)

		if s.stopped.Load() {
			s.discardAll()
			return nil
		}
		if s.Outstanding() == 0 {
			return nil
		}
		if progressed {
			continue
		}

		timer.Reset(s.nextIdleWait(s.now()))
		select {
		case <-ctx.Done():
		case <-s.wakeup:
		case <-timer.C:
			continue
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
	}
}

// burst polls every queued task once, in FIFO order, with the scheduler
// installed in its slot. It reports whether any task completed or any new
// task was enqueued.
func (s *Scheduler) burst(ctx context.Context) bool {
	s.mu.Lock()
	s.runQueue = append(s.runQueue, s.inbox...)
	clear(s.inbox)
	s.inbox = s.inbox[:0]
	s.mu.Unlock()

	batch := s.runQueue
	s.runQueue = make([]*entry, 0, len(batch))

	start := s.now()
	polled := 0
	finished := 0

	s.slot.Burst(ctx, s, func(ctx context.Context) {
		for _, e := range batch {
			if s.stopped.Load() {
				break
			}
			polled++
			if s.poll(ctx, e) {
				finished++
				continue
			}
			s.runQueue = append(s.runQueue, e)
		}
	})

	s.bursts.Add(1)
	s.metrics.RecordBurst(s.name, polled, s.now().Sub(start))

	s.mu.Lock()
	enqueued := len(s.inbox) > 0
	s.mu.Unlock()
	return finished > 0 || enqueued
}

// poll advances one task and reports whether it is finished. A task that
// panics is reported to the panic handler and counts as finished. Contract
// violations are not recovered.
func (s *Scheduler) poll(ctx context.Context, e *entry) (done bool) {
	s.slot.Step()
	s.polls.Add(1)
	e.polls++
	if e.startedAt.IsZero() {
		e.startedAt = s.now()
	}

	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		if v, ok := rec.(*core.ContractViolation); ok {
			panic(v)
		}
		s.panicked.Add(1)
		s.metrics.RecordTaskPanic(s.name, rec)
		s.panicHandler.HandlePanic(ctx, s.name, e.id, rec, debug.Stack())
		s.finish(e, true)
		done = true
	}()

	if _, ok := e.task.Poll(ctx); !ok {
		return false
	}
	s.completed.Add(1)
	s.finish(e, false)
	return true
}

func (s *Scheduler) finish(e *entry, panicked bool) {
	s.mu.Lock()
	delete(s.outstanding, e.id)
	n := len(s.outstanding)
	s.mu.Unlock()

	e.task = nil
	record := TaskRecord{
		ID:         e.id,
		Name:       e.name,
		Scheduler:  s.name,
		EnqueuedAt: e.enqueuedAt,
		StartedAt:  e.startedAt,
		FinishedAt: s.now(),
		Polls:      e.polls,
		Panicked:   panicked,
	}
	s.history.Add(record)
	s.metrics.RecordTaskDuration(s.name, record.Lifetime())
	s.metrics.RecordOutstanding(s.name, n)
}

// discardAll drops every outstanding task without running it further.
func (s *Scheduler) discardAll() {
	s.mu.Lock()
	dropped := len(s.outstanding)
	clear(s.outstanding)
	clear(s.inbox)
	s.inbox = s.inbox[:0]
	s.timers = s.timers[:0]
	s.mu.Unlock()

	clear(s.runQueue)
	s.runQueue = s.runQueue[:0]

	if dropped > 0 {
		s.rejected.Add(int64(dropped))
		s.metrics.RecordTaskRejected(s.name, RejectDiscard)
		s.metrics.RecordOutstanding(s.name, 0)
		s.logger.Warn("discarded outstanding tasks", F("scheduler", s.name), F("count", dropped))
	}
}

func (s *Scheduler) reject(id core.TaskID, reason string) {
	s.rejected.Add(1)
	s.metrics.RecordTaskRejected(s.name, reason)
	s.logger.Debug("task rejected", F("scheduler", s.name), F("task", id), F("reason", reason))
}

func (s *Scheduler) wake() {
	select {
	case s.wakeup <- struct{}{}:
	default:
	}
}

// Outstanding returns the number of outstanding tasks.
func (s *Scheduler) Outstanding() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.outstanding)
}

// RecentTasks returns up to limit finished tasks, newest first.
func (s *Scheduler) RecentTasks(limit int) []TaskRecord {
	return s.history.Recent(limit)
}

// LastTask returns the most recently finished task.
func (s *Scheduler) LastTask() (TaskRecord, bool) {
	return s.history.Last()
}
