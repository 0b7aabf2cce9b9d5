package queued

import (
	"context"
	"testing"

	"go.uber.org/goleak"

	"github.com/Swind/go-async-core/core"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestScheduler(opts ...Option) *Scheduler {
	return New(append([]Option{WithLogger(NewNoOpLogger())}, opts...)...)
}

// yieldingLoop appends name to log and yields, n times.
func yieldingLoop(name string, n int, log *[]string) core.Task {
	if n == 0 {
		return core.Ready(core.Unit{})
	}
	return core.Then(core.Run(func(context.Context) {
		*log = append(*log, name)
	}), func(context.Context, core.Unit) core.Task {
		return core.Then(core.YieldNow(), func(context.Context, core.Unit) core.Task {
			return yieldingLoop(name, n-1, log)
		})
	})
}

// forever yields on every other poll and never completes.
func forever() core.Task {
	return core.Then(core.YieldNow(), func(context.Context, core.Unit) core.Task {
		return forever()
	})
}
