package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Swind/go-async-core/core"
	"github.com/Swind/go-async-core/queued"
)

var (
	flagConfig  string
	flagNoColor bool
	flagDebug   bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "asyncdemo",
		Short: "Demo programs for the cooperative async core",
		Long: `asyncdemo drives scheduler-agnostic tasks on the queued scheduler.

Examples:
  # Interleave a self-pushing task with a yielding loop
  asyncdemo yielding --iterations 5

  # Block the loop on purpose, then spawn and await
  asyncdemo deferring --ms 500

  # Join sleeping members and print them in order
  asyncdemo joining --members 4
`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Scheduler config file (TOML)")
	root.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Log scheduler lifecycle events")

	root.AddCommand(
		newYieldingCmd(),
		newDeferringCmd(),
		newSleepingCmd(),
		newJoiningCmd(),
	)
	return root
}

// runDemo drives task on a scheduler built from the persistent flags until it
// finishes, stops or the process is interrupted.
func runDemo(cmd *cobra.Command, task core.Task) error {
	opts := []queued.Option{queued.WithName("asyncdemo")}
	if flagConfig != "" {
		cfg, err := queued.LoadConfig(flagConfig)
		if err != nil {
			return err
		}
		opts = []queued.Option{queued.WithConfig(cfg)}
	}
	level := queued.LevelWarn
	if flagDebug {
		level = queued.LevelDebug
	}
	opts = append(opts, queued.WithLogger(queued.NewLeveledLogger(cmd.ErrOrStderr(), level)))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := queued.New(opts...)
	if err := s.Run(ctx, task); err != nil {
		return fmt.Errorf("asyncdemo: %w", err)
	}
	return nil
}

// printer writes demo output lines. It is shared by the tasks of one demo,
// which all run on the scheduler goroutine.
type printer struct {
	w     io.Writer
	plain *color.Color
	note  *color.Color
}

func newPrinter(w io.Writer) *printer {
	p := &printer{
		w:     w,
		plain: color.New(color.FgGreen),
		note:  color.New(color.FgYellow, color.Bold),
	}
	if flagNoColor {
		p.plain.DisableColor()
		p.note.DisableColor()
	}
	return p
}

func (p *printer) say(msg string) {
	p.plain.Fprintln(p.w, msg)
}

func (p *printer) notef(format string, args ...any) {
	p.note.Fprintf(p.w, format+"\n", args...)
}

// printTask prints msg once when polled.
func printTask(p *printer, msg string) core.Task {
	return core.Run(func(context.Context) { p.say(msg) })
}

// stopScheduler asks the current scheduler to stop and never completes.
func stopScheduler(ctx context.Context) core.Task {
	return core.Discard[core.Never](core.CurrentScheduler(ctx).Stop())
}
