package queued

import (
	"context"
	"time"

	"github.com/Swind/go-async-core/core"
)

// =============================================================================
// PanicHandler: Interface for handling task panics
// =============================================================================

// PanicHandler is called when a task panics while being polled, or when an
// offloaded function panics. The task is discarded afterwards.
//
// Implementations should be thread-safe: offloaded functions run on their
// own goroutines.
type PanicHandler interface {
	// HandlePanic is called when a task panics.
	//
	// Parameters:
	// - ctx: The poll context of the panicked task
	// - schedulerName: The name of the scheduler that polled the task
	// - id: The id of the task, 0 for offloaded functions
	// - panicInfo: The panic value recovered from the task
	// - stackTrace: The stack trace at the time of panic
	HandlePanic(ctx context.Context, schedulerName string, id core.TaskID, panicInfo any, stackTrace []byte)
}

// LoggingPanicHandler reports panics through a Logger.
type LoggingPanicHandler struct {
	Logger Logger
}

// HandlePanic logs the panic at error level.
func (h *LoggingPanicHandler) HandlePanic(ctx context.Context, schedulerName string, id core.TaskID, panicInfo any, stackTrace []byte) {
	h.Logger.Error("task panicked",
		F("scheduler", schedulerName),
		F("task", id),
		F("panic", panicInfo),
		F("stack", string(stackTrace)),
	)
}

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics collects scheduler execution metrics. Methods are called from the
// run loop and must be fast and non-blocking.
type Metrics interface {
	// RecordTaskDuration records the time from enqueue to completion of a task.
	RecordTaskDuration(schedulerName string, duration time.Duration)

	// RecordTaskPanic records that a task panicked while being polled.
	RecordTaskPanic(schedulerName string, panicInfo any)

	// RecordOutstanding records the number of outstanding tasks.
	RecordOutstanding(schedulerName string, outstanding int)

	// RecordTaskRejected records that a task was dropped without being run.
	RecordTaskRejected(schedulerName string, reason string)

	// RecordBurst records one pass over the run queue.
	RecordBurst(schedulerName string, polled int, duration time.Duration)
}

// NilMetrics is a no-op Metrics, the default when none is configured.
type NilMetrics struct{}

// RecordTaskDuration is a no-op.
func (m *NilMetrics) RecordTaskDuration(schedulerName string, duration time.Duration) {
}

// RecordTaskPanic is a no-op.
func (m *NilMetrics) RecordTaskPanic(schedulerName string, panicInfo any) {
}

// RecordOutstanding is a no-op.
func (m *NilMetrics) RecordOutstanding(schedulerName string, outstanding int) {
}

// RecordTaskRejected is a no-op.
func (m *NilMetrics) RecordTaskRejected(schedulerName string, reason string) {
}

// RecordBurst is a no-op.
func (m *NilMetrics) RecordBurst(schedulerName string, polled int, duration time.Duration) {
}

// Rejection reasons passed to Metrics.RecordTaskRejected.
const (
	RejectStopped = "stopped"
	RejectDiscard = "discarded"
	RejectNilTask = "nil task"

	// RejectOffloadCanceled is recorded when an offloaded call never started
	// because the Run context was done while it waited for a worker.
	RejectOffloadCanceled = "offload canceled"
)
