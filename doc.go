// Package asynccore is a scheduler-agnostic contract for cooperative,
// poll-based tasks, plus a few combinators written only against it.
//
// Application code gets the scheduler that is driving it from the context
// passed to every poll, and composes work with yield, join and blocking
// deferral, without knowing which scheduler runs it. Scheduler authors
// implement four primitives (core.InternalScheduler) and install themselves
// in a core.Slot around every burst of polls.
//
// # Quick Start
//
//	err := asynccore.Run(context.Background(), core.Lazy(func(ctx context.Context) asynccore.Task {
//		sched := asynccore.CurrentScheduler(ctx)
//		return core.Then(sched.SleepMs(250), func(ctx context.Context, _ asynccore.Unit) asynccore.Task {
//			return asynccore.RunFunc(func(context.Context) { fmt.Println("slept") })
//		})
//	}))
//
// # Key Concepts
//
// Future: anything with Poll(ctx) (T, bool). Poll returns true once the value
// is ready.
//
// Scheduler: obtained from CurrentScheduler(ctx) inside a poll. Push and
// Spawn enqueue tasks, Sleep and SleepMs return timer futures, Stop asks the
// scheduler to return control.
//
// Combinators: YieldNow suspends once, Join fans in a fixed set of futures,
// DeferToBlocking runs a blocking call on the first poll, and Stop never
// completes.
//
// # Contract Violations
//
// Calling CurrentScheduler outside a running scheduler, or failing to pair
// Slot.Install with Slot.Clear, panics with a *core.ContractViolation. These
// are integration bugs and are not reported as errors.
//
// Package queued provides a reference scheduler; Run and BlockOn use it.
package asynccore
