// Package queued is a reference scheduler for the asynccore contract.
//
// A Scheduler keeps a FIFO run queue and drives it on the goroutine that
// calls Run. Every pass over the queue is a burst: the scheduler installs
// itself in its core.Slot, polls each queued task once and clears the slot
// again, so tasks reach it through core.CurrentScheduler(ctx).
//
//	s := queued.New(queued.WithName("main"))
//	err := s.Run(ctx, core.Lazy(func(ctx context.Context) core.Task {
//		sched := core.CurrentScheduler(ctx)
//		return core.Then(sched.SleepMs(100), func(ctx context.Context, _ core.Unit) core.Task {
//			return core.Run(func(context.Context) { fmt.Println("done") })
//		})
//	}))
//
// Offload runs blocking calls on separate goroutines, bounded by the
// configured number of blocking workers.
package queued
