package asynccore

import "github.com/Swind/go-async-core/core"

// Re-export commonly used types from core package for convenience.
// Application code can depend on this package alone.

// Future is a computation advanced by polling.
type Future[T any] = core.Future[T]

// Task is a unit-returning future registered with a scheduler.
type Task = core.Task

// Unit is the value of futures that produce nothing.
type Unit = core.Unit

// TaskID identifies an enqueued task.
type TaskID = core.TaskID

// Scheduler is the borrowed scheduler handle returned by CurrentScheduler.
type Scheduler = core.Scheduler

// InternalScheduler is the set of primitives a concrete scheduler implements.
type InternalScheduler = core.InternalScheduler

// SpawnHandle observes a spawned task.
type SpawnHandle = core.SpawnHandle

// Stop is the never-completing sentinel future.
type Stop = core.Stop

// Slot is the ambient current-scheduler slot.
type Slot = core.Slot

// ContractViolation is the panic value for broken integrations.
type ContractViolation = core.ContractViolation

// FutureFunc adapts a function to Future.
type FutureFunc[T any] = core.FutureFunc[T]

var (
	// CurrentScheduler retrieves the scheduler driving the current poll
	CurrentScheduler = core.CurrentScheduler

	// YieldNow yields once to the driving scheduler
	YieldNow = core.YieldNow

	// RunFunc wraps a synchronous body as a task
	RunFunc = core.Run

	// NewSlot creates an empty slot for a scheduler implementation
	NewSlot = core.NewSlot
)

// Join waits for all futures and returns their values in argument order.
func Join[T any](futures ...Future[T]) *core.JoinFuture[T] {
	return core.Join(futures...)
}

// DeferToBlocking runs fn(arg) synchronously on the first poll.
func DeferToBlocking[A, R any](fn func(A) R, arg A) *core.DeferredFuture[A, R] {
	return core.DeferToBlocking(fn, arg)
}

// Ready returns an immediately ready future.
func Ready[T any](v T) Future[T] {
	return core.Ready(v)
}
