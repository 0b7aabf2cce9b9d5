package core

import "context"

// YieldFuture is pending on its first poll and ready on every later one.
// Awaiting it forces exactly one round trip through the driving scheduler;
// how other tasks get interleaved in that gap is the scheduler's business.
type YieldFuture struct {
	yielded bool
}

// YieldNow interrupts the current task so that others get a chance to run.
func YieldNow() *YieldFuture {
	return &YieldFuture{}
}

// Poll implements Future. The first poll asks the driving scheduler, if it
// is a Waker, not to idle before polling again.
func (y *YieldFuture) Poll(ctx context.Context) (Unit, bool) {
	if y.yielded {
		return Unit{}, true
	}
	y.yielded = true
	if slot, ok := SlotFromContext(ctx); ok {
		slot.wake()
	}
	return Unit{}, false
}
