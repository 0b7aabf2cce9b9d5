package core

import "context"

// SpawnHandle is the future equivalent of a join handle: it becomes ready
// once the scheduler no longer reports its task as outstanding.
//
// The handle only observes. Polling it never advances the task, and it
// carries no result; a caller that needs one must share state with the
// spawned task explicitly. Dropping the handle has no effect on the task.
type SpawnHandle struct {
	id    TaskID
	sched InternalScheduler
	done  bool
}

// NewSpawnHandle returns a handle observing id on sched.
func NewSpawnHandle(id TaskID, sched InternalScheduler) *SpawnHandle {
	return &SpawnHandle{id: id, sched: sched}
}

// ID returns the identifier of the observed task.
func (h *SpawnHandle) ID() TaskID {
	return h.id
}

// Poll implements Future. Once ready the handle stays ready, even if the
// scheduler later hands the same id to another task.
func (h *SpawnHandle) Poll(context.Context) (Unit, bool) {
	if !h.done && !h.sched.Contains(h.id) {
		h.done = true
	}
	return Unit{}, h.done
}
