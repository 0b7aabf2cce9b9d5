package queued

import (
	"container/heap"
	"context"
	"time"

	"github.com/Swind/go-async-core/core"
)

// deadlineHeap is a min-heap of sleep deadlines. The run loop only needs the
// earliest one to decide how long it may idle.
type deadlineHeap []time.Time

func (h deadlineHeap) Len() int           { return len(h) }
func (h deadlineHeap) Less(i, j int) bool { return h[i].Before(h[j]) }
func (h deadlineHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *deadlineHeap) Push(x any) {
	*h = append(*h, x.(time.Time))
}

func (h *deadlineHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[0 : n-1]
	return item
}

func (h deadlineHeap) Peek() (time.Time, bool) {
	if len(h) == 0 {
		return time.Time{}, false
	}
	return h[0], true
}

// addDeadline registers a sleep deadline with the run loop, dropping the
// ones that have already passed.
func (s *Scheduler) addDeadline(at time.Time) {
	now := s.now()
	s.mu.Lock()
	s.pruneDeadlines(now)
	heap.Push(&s.timers, at)
	first := s.timers[0].Equal(at)
	s.mu.Unlock()

	if first {
		s.wake()
	}
}

// nextIdleWait drops expired deadlines and returns how long the loop may
// wait before the next burst, capped at the configured idle backoff.
func (s *Scheduler) nextIdleWait(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneDeadlines(now)

	wait := s.idleBackoff
	if at, ok := s.timers.Peek(); ok {
		if until := at.Sub(now); until < wait {
			wait = until
		}
	}
	return wait
}

// pruneDeadlines pops every deadline at or before now. s.mu must be held.
func (s *Scheduler) pruneDeadlines(now time.Time) {
	for {
		at, ok := s.timers.Peek()
		if !ok || at.After(now) {
			return
		}
		heap.Pop(&s.timers)
	}
}

// sleepFuture becomes ready once its deadline has passed.
type sleepFuture struct {
	deadline time.Time
	now      func() time.Time
}

// Poll implements core.Future.
func (f *sleepFuture) Poll(context.Context) (core.Unit, bool) {
	return core.Unit{}, !f.now().Before(f.deadline)
}
