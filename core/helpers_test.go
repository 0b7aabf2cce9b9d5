package core

import (
	"context"
	"time"
)

// fakeScheduler is a minimal InternalScheduler whose outstanding set is
// driven by the test.
type fakeScheduler struct {
	nextID      TaskID
	outstanding map[TaskID]Task
	containsN   int
	slept       []time.Duration
	stops       int
	wakes       int
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{outstanding: make(map[TaskID]Task)}
}

func (f *fakeScheduler) Enqueue(task Task) TaskID {
	f.nextID++
	f.outstanding[f.nextID] = task
	return f.nextID
}

func (f *fakeScheduler) Contains(id TaskID) bool {
	f.containsN++
	_, ok := f.outstanding[id]
	return ok
}

func (f *fakeScheduler) Sleep(d time.Duration) Future[Unit] {
	f.slept = append(f.slept, d)
	return Ready(Unit{})
}

func (f *fakeScheduler) Stop() Stop {
	f.stops++
	return Stop{}
}

func (f *fakeScheduler) Wake() {
	f.wakes++
}

func (f *fakeScheduler) complete(id TaskID) {
	delete(f.outstanding, id)
}

// countdown becomes ready with value after `after` pending polls and records
// its name in log on every poll.
type countdown[T any] struct {
	name  string
	after int
	value T
	polls int
	log   *[]string
}

func (c *countdown[T]) Poll(context.Context) (T, bool) {
	c.polls++
	if c.log != nil {
		*c.log = append(*c.log, c.name)
	}
	if c.polls > c.after {
		return c.value, true
	}
	var zero T
	return zero, false
}

// recoverViolation runs fn and returns the contract violation it panicked
// with, or nil.
func recoverViolation(fn func()) (v *ContractViolation) {
	defer func() {
		if rec := recover(); rec != nil {
			v, _ = rec.(*ContractViolation)
		}
	}()
	fn()
	return nil
}
