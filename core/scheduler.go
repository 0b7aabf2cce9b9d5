package core

import (
	"context"
	"strconv"
	"time"
)

// TaskID identifies a task enqueued on a scheduler. It is unique among the
// tasks outstanding in one scheduler instance; whether an id is reused after
// its task completes is up to the scheduler.
type TaskID uint64

func (id TaskID) String() string {
	return "task-" + strconv.FormatUint(uint64(id), 10)
}

// =============================================================================
// InternalScheduler: the primitives a concrete scheduler implements
// =============================================================================

// InternalScheduler is implemented by concrete schedulers. Application code
// uses the richer Scheduler obtained from CurrentScheduler instead.
type InternalScheduler interface {
	// Enqueue takes ownership of task and returns a fresh identifier for it.
	Enqueue(task Task) TaskID

	// Contains reports whether the task with the given id is still outstanding.
	Contains(id TaskID) bool

	// Sleep returns a future that becomes ready once d has elapsed.
	Sleep(d time.Duration) Future[Unit]

	// Stop tells the scheduler to return control permanently and returns the
	// sentinel a task can hand back in place of a result.
	Stop() Stop
}

// Waker is optionally implemented by schedulers that idle between bursts.
// A yield point calls Wake so that the scheduler runs its next burst without
// waiting; the yielded task is ready on its next poll.
type Waker interface {
	Wake()
}

// =============================================================================
// Scheduler: derived operations available on every scheduler
// =============================================================================

// Scheduler is a borrowed, non-owning handle on an InternalScheduler with the
// derived operations built on top of its primitives.
//
// A Scheduler returned by CurrentScheduler is bound to one poll step; do not
// keep it across polls. Using it after the step has ended panics with
// ErrStaleScheduler.
type Scheduler struct {
	sched InternalScheduler
	slot  *Slot
	epoch uint64
}

// Wrap returns the derived operations for sched without going through a
// slot. The result is not bound to a burst.
func Wrap(sched InternalScheduler) Scheduler {
	return Scheduler{sched: sched}
}

func (s Scheduler) internal() InternalScheduler {
	if s.slot != nil {
		s.slot.checkEpoch(s.epoch)
	}
	if s.sched == nil {
		violate("scheduler accessor", ErrNoScheduler)
	}
	return s.sched
}

// Internal returns the underlying scheduler.
func (s Scheduler) Internal() InternalScheduler {
	return s.internal()
}

// Enqueue adds task to the scheduler and returns its identifier.
func (s Scheduler) Enqueue(task Task) TaskID {
	return s.internal().Enqueue(task)
}

// Contains reports whether id is still outstanding.
func (s Scheduler) Contains(id TaskID) bool {
	return s.internal().Contains(id)
}

// Push adds task to the scheduler and forgets about it.
func (s Scheduler) Push(task Task) {
	s.internal().Enqueue(task)
}

// PushFunc pushes a task that runs fn once.
func (s Scheduler) PushFunc(fn func(ctx context.Context)) {
	s.Push(Run(fn))
}

// Spawn adds task to the scheduler and returns a handle that becomes ready
// once the task is no longer outstanding.
func (s Scheduler) Spawn(task Task) *SpawnHandle {
	sched := s.internal()
	return NewSpawnHandle(sched.Enqueue(task), sched)
}

// SpawnFunc spawns a task that runs fn once.
func (s Scheduler) SpawnFunc(fn func(ctx context.Context)) *SpawnHandle {
	return s.Spawn(Run(fn))
}

// Sleep returns a future that becomes ready after d.
func (s Scheduler) Sleep(d time.Duration) Future[Unit] {
	return s.internal().Sleep(d)
}

// SleepMs returns a future that becomes ready after ms milliseconds.
func (s Scheduler) SleepMs(ms uint64) Future[Unit] {
	return s.Sleep(time.Duration(ms) * time.Millisecond)
}

// Stop asks the scheduler to stop. This does not exit the process.
func (s Scheduler) Stop() Stop {
	return s.internal().Stop()
}
