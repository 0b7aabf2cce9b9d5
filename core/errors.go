package core

import (
	"errors"
	"fmt"
)

// Contract violations. They are never returned; they are the Err of a
// *ContractViolation passed to panic.
var (
	// ErrNoScheduler means CurrentScheduler was called outside a scheduler burst.
	ErrNoScheduler = errors.New("asynccore: no scheduler is installed in the current context")

	// ErrSlotConflict means a second scheduler tried to install itself while
	// another one was still installed.
	ErrSlotConflict = errors.New("asynccore: slot already holds a different scheduler")

	// ErrSlotEmpty means Clear was called without a matching Install.
	ErrSlotEmpty = errors.New("asynccore: clear without a matching install")

	// ErrStaleScheduler means a Scheduler accessor outlived the poll step that produced it.
	ErrStaleScheduler = errors.New("asynccore: scheduler accessor used after its poll step ended")
)

// ContractViolation is the panic value raised when a caller or a scheduler
// breaks the contract. It signals a broken integration, not a transient
// condition, so it is never surfaced as a returned error.
type ContractViolation struct {
	Op  string
	Err error
}

func (v *ContractViolation) Error() string {
	return fmt.Sprintf("%s: %v", v.Op, v.Err)
}

func (v *ContractViolation) Unwrap() error { return v.Err }

func violate(op string, err error) {
	panic(&ContractViolation{Op: op, Err: err})
}
