package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Swind/go-async-core/core"
)

// =============================================================================
// yielding
// =============================================================================

func newYieldingCmd() *cobra.Command {
	var iterations int
	cmd := &cobra.Command{
		Use:   "yielding",
		Short: "Interleave a self-pushing task with a yielding loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrinter(cmd.OutOrStdout())
			return runDemo(cmd, yieldingMain(p, iterations))
		},
	}
	cmd.Flags().IntVar(&iterations, "iterations", 5, "Loop iterations before the scheduler is stopped")
	return cmd
}

func yieldingMain(p *printer, iterations int) core.Task {
	return core.Run(func(ctx context.Context) {
		sched := core.CurrentScheduler(ctx)
		sched.Push(recursion(p))
		sched.Push(looping(p, iterations))
	})
}

// recursion prints once and pushes a fresh copy of itself.
func recursion(p *printer) core.Task {
	return core.Run(func(ctx context.Context) {
		p.say("recursion!")
		core.CurrentScheduler(ctx).Push(recursion(p))
	})
}

// looping prints and yields until it has run iterations times, then stops
// the scheduler.
func looping(p *printer, iterations int) core.Task {
	i := 0
	var step core.Task
	return core.FutureFunc[core.Unit](func(ctx context.Context) (core.Unit, bool) {
		for {
			if step != nil {
				if _, ok := step.Poll(ctx); !ok {
					return core.Unit{}, false
				}
				step = nil
			}
			if i == iterations {
				p.notef("stopping after %d iterations", iterations)
				step = stopScheduler(ctx)
				continue
			}
			i++
			p.say("looping!")
			step = core.YieldNow()
		}
	})
}

// =============================================================================
// deferring
// =============================================================================

func newDeferringCmd() *cobra.Command {
	var (
		ms      uint64
		message string
	)
	cmd := &cobra.Command{
		Use:   "deferring",
		Short: "Block the loop in a deferred call, then spawn and await",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrinter(cmd.OutOrStdout())
			return runDemo(cmd, waitPrintAndStop(p, ms, message))
		},
	}
	cmd.Flags().Uint64Var(&ms, "ms", 1000, "Milliseconds to block for")
	cmd.Flags().StringVar(&message, "message", "hi", "Message printed by the spawned task")
	return cmd
}

// stillRunning sleeps, prints and pushes itself again, so it keeps reporting
// for as long as the loop is not blocked.
func stillRunning(p *printer, ms uint64) core.Task {
	return core.Lazy(func(ctx context.Context) core.Future[core.Unit] {
		return core.Then(core.CurrentScheduler(ctx).SleepMs(ms), func(ctx context.Context, _ core.Unit) core.Task {
			p.say("still running")
			core.CurrentScheduler(ctx).Push(stillRunning(p, ms))
			return core.Ready(core.Unit{})
		})
	})
}

func waitPrintAndStop(p *printer, ms uint64, message string) core.Task {
	return core.Then(stillRunning(p, 250), func(ctx context.Context, _ core.Unit) core.Task {
		p.say("waiting...")
		blockingSleep := func(ms uint64) core.Unit {
			time.Sleep(time.Duration(ms) * time.Millisecond)
			return core.Unit{}
		}
		return core.Then(core.DeferToBlocking(blockingSleep, ms), func(ctx context.Context, _ core.Unit) core.Task {
			p.say("done waiting.")
			return spawnPrintAndAwait(ctx, p, message, stopScheduler)
		})
	})
}

// spawnPrintAndAwait spawns a print task, awaits it and continues with then.
func spawnPrintAndAwait(ctx context.Context, p *printer, message string, then func(ctx context.Context) core.Task) core.Task {
	h := core.CurrentScheduler(ctx).Spawn(printTask(p, message))
	p.say("spawned print task")
	return core.Then[core.Unit, core.Unit](h, func(ctx context.Context, _ core.Unit) core.Future[core.Unit] {
		p.say("print task done")
		return then(ctx)
	})
}

// =============================================================================
// sleeping
// =============================================================================

func newSleepingCmd() *cobra.Command {
	var (
		ms      uint64
		message string
	)
	cmd := &cobra.Command{
		Use:   "sleeping",
		Short: "Sleep on whatever scheduler is current, then spawn and await",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrinter(cmd.OutOrStdout())
			return runDemo(cmd, waitAndPrint(p, ms, message))
		},
	}
	cmd.Flags().Uint64Var(&ms, "ms", 500, "Milliseconds to sleep")
	cmd.Flags().StringVar(&message, "message", "hi", "Message printed by the spawned task")
	return cmd
}

func waitAndPrint(p *printer, ms uint64, message string) core.Task {
	return core.Then(printTask(p, "waiting..."), func(ctx context.Context, _ core.Unit) core.Task {
		return core.Then(core.CurrentScheduler(ctx).SleepMs(ms), func(ctx context.Context, _ core.Unit) core.Task {
			p.say("done waiting.")
			return spawnPrintAndAwait(ctx, p, message, func(context.Context) core.Task {
				return core.Ready(core.Unit{})
			})
		})
	})
}

// =============================================================================
// joining
// =============================================================================

func newJoiningCmd() *cobra.Command {
	var (
		members int
		stepMs  uint64
	)
	cmd := &cobra.Command{
		Use:   "joining",
		Short: "Join sleeping members and print their results in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			if members < 0 {
				return fmt.Errorf("--members must not be negative, got %d", members)
			}
			p := newPrinter(cmd.OutOrStdout())
			return runDemo(cmd, joinMembers(p, members, stepMs))
		},
	}
	cmd.Flags().IntVar(&members, "members", 3, "Number of joined futures")
	cmd.Flags().Uint64Var(&stepMs, "step-ms", 10, "Extra sleep per member, in milliseconds")
	return cmd
}

// joinMembers joins futures that finish in reverse order and prints their
// values, which come back in argument order.
func joinMembers(p *printer, members int, stepMs uint64) core.Task {
	return core.Lazy(func(ctx context.Context) core.Future[core.Unit] {
		sched := core.CurrentScheduler(ctx)
		futures := make([]core.Future[string], 0, members)
		for i := range members {
			name := fmt.Sprintf("member-%d", i)
			delay := uint64(members-i) * stepMs
			futures = append(futures, core.Map(sched.SleepMs(delay), func(context.Context, core.Unit) string {
				p.say(name + " woke up")
				return name
			}))
		}
		return core.Map[[]string, core.Unit](core.Join(futures...), func(_ context.Context, names []string) core.Unit {
			p.notef("joined %d members", len(names))
			for i, name := range names {
				p.say(fmt.Sprintf("%d: %s", i, name))
			}
			return core.Unit{}
		})
	})
}
