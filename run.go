package asynccore

import (
	"context"
	"errors"

	"github.com/Swind/go-async-core/core"
	"github.com/Swind/go-async-core/queued"
)

// ErrNotCompleted is returned by BlockOn when the scheduler stopped before
// the future became ready.
var ErrNotCompleted = errors.New("asynccore: future did not complete")

// Run drives task and everything it enqueues on a fresh queued.Scheduler
// until nothing is outstanding, the scheduler is stopped or ctx is done.
func Run(ctx context.Context, task Task, opts ...queued.Option) error {
	return queued.New(opts...).Run(ctx, task)
}

// BlockOn drives fut on a fresh queued.Scheduler and returns its value.
func BlockOn[T any](ctx context.Context, fut Future[T], opts ...queued.Option) (T, error) {
	var (
		result T
		done   bool
	)
	root := core.Map(fut, func(_ context.Context, v T) Unit {
		result, done = v, true
		return Unit{}
	})

	if err := Run(ctx, root, opts...); err != nil {
		return result, err
	}
	if !done {
		return result, ErrNotCompleted
	}
	return result, nil
}
