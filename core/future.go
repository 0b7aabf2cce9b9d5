package core

import "context"

// Unit is the value produced by tasks and other futures that carry no result.
type Unit = struct{}

// Future is a computation advanced by repeated calls to Poll.
//
// Poll returns (value, true) once the computation is ready and (zero, false)
// while it is pending. The ctx passed to Poll carries the Slot of the driving
// scheduler, so CurrentScheduler(ctx) is usable inside a poll step.
//
// A Future is owned by whoever polls it; it must not be polled concurrently.
type Future[T any] interface {
	Poll(ctx context.Context) (T, bool)
}

// Task is a unit-returning future registered with a scheduler.
type Task = Future[Unit]

// FutureFunc adapts a plain function to the Future interface.
type FutureFunc[T any] func(ctx context.Context) (T, bool)

// Poll calls f(ctx).
func (f FutureFunc[T]) Poll(ctx context.Context) (T, bool) {
	return f(ctx)
}

// =============================================================================
// Sequencing helpers
// =============================================================================

type readyFuture[T any] struct {
	value T
}

func (f readyFuture[T]) Poll(context.Context) (T, bool) { return f.value, true }

// Ready returns a future that is ready with v on every poll.
func Ready[T any](v T) Future[T] {
	return readyFuture[T]{value: v}
}

// Run returns a task that executes fn synchronously on its first poll.
func Run(fn func(ctx context.Context)) Task {
	return FutureFunc[Unit](func(ctx context.Context) (Unit, bool) {
		fn(ctx)
		return Unit{}, true
	})
}

// LazyFuture builds its inner future on the first poll.
type LazyFuture[T any] struct {
	build func(ctx context.Context) Future[T]
	inner Future[T]
}

// Lazy defers construction of a future until it is first polled. This is how
// a task reaches the active scheduler: build runs inside a poll step, where
// CurrentScheduler(ctx) is valid.
func Lazy[T any](build func(ctx context.Context) Future[T]) *LazyFuture[T] {
	return &LazyFuture[T]{build: build}
}

// Poll implements Future.
func (f *LazyFuture[T]) Poll(ctx context.Context) (T, bool) {
	if f.inner == nil {
		f.inner = f.build(ctx)
		f.build = nil
	}
	return f.inner.Poll(ctx)
}

// ThenFuture runs a first future and then the future derived from its value.
type ThenFuture[A, B any] struct {
	first  Future[A]
	next   func(ctx context.Context, a A) Future[B]
	second Future[B]
}

// Then sequences f and the future returned by next. next is called exactly
// once, in the same poll step in which f becomes ready, and the resulting
// future is polled immediately.
func Then[A, B any](f Future[A], next func(ctx context.Context, a A) Future[B]) *ThenFuture[A, B] {
	return &ThenFuture[A, B]{first: f, next: next}
}

// Poll implements Future.
func (f *ThenFuture[A, B]) Poll(ctx context.Context) (B, bool) {
	if f.second == nil {
		a, ok := f.first.Poll(ctx)
		if !ok {
			var zero B
			return zero, false
		}
		f.second = f.next(ctx, a)
		f.first = nil
		f.next = nil
	}
	return f.second.Poll(ctx)
}

// Map transforms the value of f with fn once f is ready.
func Map[A, B any](f Future[A], fn func(ctx context.Context, a A) B) Future[B] {
	return Then(f, func(ctx context.Context, a A) Future[B] {
		return Ready(fn(ctx, a))
	})
}

// Discard turns any future into a task by dropping its value.
func Discard[T any](f Future[T]) Task {
	return FutureFunc[Unit](func(ctx context.Context) (Unit, bool) {
		_, ok := f.Poll(ctx)
		return Unit{}, ok
	})
}
