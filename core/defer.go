package core

import "context"

// DeferredFuture runs a blocking function on its first poll.
type DeferredFuture[A, R any] struct {
	fn     func(A) R
	arg    A
	result R
	ran    bool
}

// DeferToBlocking defers execution to a blocking implementation: the returned
// future calls fn(arg) synchronously on its first poll and is ready with the
// result right away. It is never pending.
//
// The calling execution context, and with it every task of the driving
// scheduler, is blocked for as long as fn runs. Nothing runs concurrently;
// this only keeps blocking calls expressible as futures. Schedulers that can
// move work off their loop provide their own operation for that.
func DeferToBlocking[A, R any](fn func(A) R, arg A) *DeferredFuture[A, R] {
	return &DeferredFuture[A, R]{fn: fn, arg: arg}
}

// Poll implements Future. Later polls return the cached result.
func (d *DeferredFuture[A, R]) Poll(context.Context) (R, bool) {
	if !d.ran {
		d.result = d.fn(d.arg)
		d.ran = true
		d.fn = nil
		var zero A
		d.arg = zero
	}
	return d.result, true
}
