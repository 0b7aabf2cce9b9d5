// Package core defines the scheduler contract (InternalScheduler and the
// derived Scheduler), the ambient Slot through which tasks reach the active
// scheduler, and the combinators built on top of them: SpawnHandle, Join,
// YieldNow, DeferToBlocking and Stop.
package core
