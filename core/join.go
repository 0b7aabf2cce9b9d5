package core

import "context"

type joinSlot[T any] struct {
	future Future[T]
	value  T
	done   bool
}

// JoinFuture is ready once all of its member futures are ready. It is in
// effect a tiny one-shot scheduler that cannot accept new work.
type JoinFuture[T any] struct {
	slots   []joinSlot[T]
	pending int
	result  []T
}

// Join returns a future over futures that becomes ready with their values,
// in argument order, once every one of them is ready.
//
// Each poll polls every member that is not yet ready exactly once, in
// argument order. Members that are ready are never polled again. Join owns
// its members; it touches no scheduler state and enqueues nothing.
func Join[T any](futures ...Future[T]) *JoinFuture[T] {
	slots := make([]joinSlot[T], len(futures))
	for i, f := range futures {
		slots[i].future = f
	}
	return &JoinFuture[T]{slots: slots, pending: len(slots)}
}

// Poll implements Future.
func (j *JoinFuture[T]) Poll(ctx context.Context) ([]T, bool) {
	if j.result != nil {
		return j.result, true
	}

	for i := range j.slots {
		slot := &j.slots[i]
		if slot.done {
			continue
		}
		if v, ok := slot.future.Poll(ctx); ok {
			slot.value = v
			slot.done = true
			slot.future = nil
			j.pending--
		}
	}
	if j.pending > 0 {
		return nil, false
	}

	j.result = make([]T, len(j.slots))
	for i := range j.slots {
		j.result[i] = j.slots[i].value
		var zero T
		j.slots[i].value = zero
	}
	return j.result, true
}

// Pending returns the number of members that are not ready yet.
func (j *JoinFuture[T]) Pending() int {
	return j.pending
}
