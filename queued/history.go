package queued

import (
	"fmt"
	"sync"
	"time"

	"github.com/Swind/go-async-core/core"
)

// TaskRecord captures one finished task.
type TaskRecord struct {
	ID         core.TaskID
	Name       string
	Scheduler  string
	EnqueuedAt time.Time
	StartedAt  time.Time
	FinishedAt time.Time
	Polls      int
	Panicked   bool
}

// Lifetime is the time from enqueue to completion.
func (r TaskRecord) Lifetime() time.Duration {
	return r.FinishedAt.Sub(r.EnqueuedAt)
}

// executionHistory is a fixed-size ring of the most recent task records.
type executionHistory struct {
	mu    sync.Mutex
	items []TaskRecord
	head  int
	count int
}

func newExecutionHistory(capacity int) *executionHistory {
	if capacity < 1 {
		capacity = DefaultHistoryCapacity
	}
	return &executionHistory{items: make([]TaskRecord, capacity)}
}

func (h *executionHistory) Add(record TaskRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.items[h.head] = record
	h.head = (h.head + 1) % len(h.items)
	if h.count < len(h.items) {
		h.count++
	}
}

// Recent returns up to limit records, newest first. limit <= 0 means all.
func (h *executionHistory) Recent(limit int) []TaskRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 {
		return nil
	}
	if limit <= 0 || limit > h.count {
		limit = h.count
	}

	out := make([]TaskRecord, 0, limit)
	for i := range limit {
		idx := (h.head - 1 - i + len(h.items)) % len(h.items)
		out = append(out, h.items[idx])
	}
	return out
}

func (h *executionHistory) Last() (TaskRecord, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 {
		return TaskRecord{}, false
	}
	idx := (h.head - 1 + len(h.items)) % len(h.items)
	return h.items[idx], true
}

// taskName labels a task in history by its dynamic type.
func taskName(task core.Task) string {
	if task == nil {
		return "anonymous"
	}
	return fmt.Sprintf("%T", task)
}
