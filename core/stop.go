package core

import "context"

// Never is the value type of a future that cannot complete. No Never value
// is ever produced.
type Never struct {
	_ [0]func()
}

// Stop is a never-completing future used as a "this task returns control
// forever" marker. Awaiting it parks the task for good; it does not stop
// anything on its own. To stop a scheduler call Scheduler.Stop, which returns
// this sentinel.
type Stop struct{}

// Poll implements Future and always reports pending.
func (Stop) Poll(context.Context) (Never, bool) {
	return Never{}, false
}

var _ Future[Never] = Stop{}
