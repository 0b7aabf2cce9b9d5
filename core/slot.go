package core

import (
	"context"
	"sync"
)

// Slot holds the scheduler that is currently executing a burst of tasks on
// one execution context. A scheduler owns one Slot per run loop and reaches
// its tasks through the context passed to Poll (see WithSlot).
//
// Lifecycle obligation on the scheduler: Install immediately before polling a
// burst of tasks and Clear immediately after, on every exit path. Burst does
// both and is the preferred entry point.
//
// The zero value is an empty slot ready for use.
type Slot struct {
	mu      sync.Mutex
	current InternalScheduler
	depth   int
	epoch   uint64
}

// NewSlot returns an empty slot.
func NewSlot() *Slot {
	return &Slot{}
}

// Install stores a non-owning reference to sched. Installing the scheduler
// that is already installed nests; each nested Install needs its own Clear.
// Installing a different scheduler while one is installed panics with
// ErrSlotConflict.
//
// sched must be comparable (in practice, a pointer).
func (s *Slot) Install(sched InternalScheduler) {
	if sched == nil {
		violate("install", ErrNoScheduler)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.depth > 0 {
		if s.current != sched {
			violate("install", ErrSlotConflict)
		}
		s.depth++
		return
	}
	s.current = sched
	s.depth = 1
	s.epoch++
}

// Clear undoes one Install. The slot is empty once every Install has been
// cleared. Clearing an empty slot panics with ErrSlotEmpty.
func (s *Slot) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.depth == 0 {
		violate("clear", ErrSlotEmpty)
	}
	s.depth--
	if s.depth == 0 {
		s.current = nil
	}
}

// Installed reports whether a scheduler is currently installed.
func (s *Slot) Installed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.depth > 0
}

// Step marks the start of the next poll step within a burst. Accessors
// returned by Current before the call become stale. Schedulers call Step
// before polling each task; a scheduler that never calls it gets accessors
// that last for the whole burst. Step panics with ErrSlotEmpty on an empty
// slot.
func (s *Slot) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.depth == 0 {
		violate("step", ErrSlotEmpty)
	}
	s.epoch++
}

// Current returns an accessor for the installed scheduler. The accessor is
// valid for the current poll step: the next Step or the outermost Clear
// makes it stale, and using it afterwards panics with ErrStaleScheduler.
// Current panics with ErrNoScheduler on an empty slot.
func (s *Slot) Current() Scheduler {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.depth == 0 {
		violate("current scheduler", ErrNoScheduler)
	}
	return Scheduler{sched: s.current, slot: s, epoch: s.epoch}
}

// Burst installs sched, runs fn with a context carrying this slot, and clears
// the slot when fn returns or panics.
func (s *Slot) Burst(ctx context.Context, sched InternalScheduler, fn func(ctx context.Context)) {
	s.Install(sched)
	defer s.Clear()
	fn(WithSlot(ctx, s))
}

// wake passes a wake request to the installed scheduler if it is a Waker.
func (s *Slot) wake() {
	s.mu.Lock()
	sched := s.current
	s.mu.Unlock()

	if w, ok := sched.(Waker); ok {
		w.Wake()
	}
}

func (s *Slot) checkEpoch(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.depth == 0 || s.epoch != epoch {
		violate("scheduler accessor", ErrStaleScheduler)
	}
}

// =============================================================================
// Context Helper
// =============================================================================

type slotKeyType struct{}

var slotKey slotKeyType

// WithSlot returns a copy of ctx that carries slot.
func WithSlot(ctx context.Context, slot *Slot) context.Context {
	return context.WithValue(ctx, slotKey, slot)
}

// SlotFromContext returns the slot carried by ctx, if any.
func SlotFromContext(ctx context.Context) (*Slot, bool) {
	if ctx == nil {
		return nil, false
	}
	slot, ok := ctx.Value(slotKey).(*Slot)
	return slot, ok && slot != nil
}

// CurrentScheduler returns the scheduler driving the current poll step.
//
// It panics with ErrNoScheduler when ctx carries no slot or the slot is
// empty: calling it outside a running scheduler is an integration bug, not a
// runtime condition to handle.
func CurrentScheduler(ctx context.Context) Scheduler {
	slot, ok := SlotFromContext(ctx)
	if !ok {
		violate("current scheduler", ErrNoScheduler)
	}
	return slot.Current()
}
