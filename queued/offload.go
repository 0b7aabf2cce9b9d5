package queued

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/Swind/go-async-core/core"
)

// offloadFuture runs fn on its own goroutine, started on the first poll.
type offloadFuture[T any] struct {
	s      *Scheduler
	fn     func(ctx context.Context) T
	done   chan struct{}
	result T
}

// Offload moves a blocking call off the run loop, which is what
// core.DeferToBlocking deliberately does not do. fn starts on a separate
// goroutine when the future is first polled; the future is ready with its
// result once fn returns. At most BlockingWorkers offloaded calls run at once.
//
// fn receives the context passed to Run, without the slot: it must not call
// core.CurrentScheduler. If fn panics, the panic handler is called and the
// future is ready with the zero value. If the Run context is done before a
// worker is free, fn never runs: the rejection is recorded in Metrics with
// RejectOffloadCanceled and the future is ready with the zero value.
func Offload[T any](s *Scheduler, fn func(ctx context.Context) T) core.Future[T] {
	return &offloadFuture[T]{s: s, fn: fn}
}

// Poll implements core.Future.
func (f *offloadFuture[T]) Poll(context.Context) (T, bool) {
	if f.done == nil {
		f.done = make(chan struct{})
		f.s.offloads.Add(1)
		go f.run(f.s.runContext())
	}

	select {
	case <-f.done:
		return f.result, true
	default:
		var zero T
		return zero, false
	}
}

func (f *offloadFuture[T]) run(ctx context.Context) {
	s := f.s
	defer s.wake()
	defer s.offloads.Add(-1)
	defer close(f.done)

	if err := s.sem.Acquire(ctx, 1); err != nil {
		s.rejected.Add(1)
		s.metrics.RecordTaskRejected(s.name, RejectOffloadCanceled)
		s.logger.Warn("offload not started", F("scheduler", s.name), F("error", err))
		return
	}
	defer s.sem.Release(1)

	defer func() {
		if rec := recover(); rec != nil {
			s.metrics.RecordTaskPanic(s.name, rec)
			s.panicHandler.HandlePanic(ctx, s.name, 0, fmt.Sprintf("offload: %v", rec), debug.Stack())
		}
	}()
	f.result = f.fn(ctx)
}

func (s *Scheduler) runContext() context.Context {
	if p := s.baseCtx.Load(); p != nil {
		return *p
	}
	return context.Background()
}
