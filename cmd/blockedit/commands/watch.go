package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/blockedit/internal/app"
	"github.com/dshills/blockedit/internal/tools"
	"github.com/dshills/blockedit/internal/watch"
)

func newWatchCmd(g *globalFlags) *cobra.Command {
	var delay time.Duration
	cmd := &cobra.Command{
		Use:   "watch <document.json>",
		Short: "Re-render a document every time it changes",
		Long: `Watch keeps an editor open and renders the document again after
every change to the file, reporting stubbed and dropped blocks.

Stop with Ctrl-C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), g, args[0], delay)
		},
	}
	cmd.Flags().DurationVar(&delay, "delay", watch.DefaultDelay, "Quiet period before a change is handled")
	return cmd
}

func runWatch(ctx context.Context, stdout, stderr io.Writer, g *globalFlags, path string, delay time.Duration) error {
	if path == "-" {
		return failure(stderr, "Cannot watch stdin", nil)
	}
	cfg, err := g.loadConfig()
	if err != nil {
		return failure(stderr, "Invalid configuration", err)
	}
	doc, err := readDocument(path, nil)
	if err != nil {
		return failure(stderr, "Cannot read document", err)
	}
	cfg.Data = &doc

	e, err := openEditor(ctx, cfg, stderr)
	if err != nil {
		return failure(stderr, "Editor failed to start", err)
	}
	defer func() { _ = e.Destroy() }()

	if err := report(ctx, stdout, stderr, e, path); err != nil {
		return err
	}

	w, err := watch.New(watch.WithDelay(delay))
	if err != nil {
		return failure(stderr, "Cannot watch files", err)
	}
	defer func() { _ = w.Close() }()
	if err := w.Add(path); err != nil {
		return failure(stderr, "Cannot watch document", err)
	}
	info(stderr, "watching", "%s", path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			warning(stderr, "%v", err)
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			if ev.Op.Has(watch.OpRemove) {
				warning(stderr, "%s was removed", ev.Path)
				continue
			}
			doc, err := readDocument(ev.Path, nil)
			if err != nil {
				warning(stderr, "%v", err)
				continue
			}
			if err := e.Render(ctx, doc); err != nil {
				warning(stderr, "%v", err)
				continue
			}
			if err := report(ctx, stdout, stderr, e, ev.Path); err != nil && !errors.Is(err, context.Canceled) {
				warning(stderr, "%v", err)
			}
		}
	}
}

// report saves the editor content and prints a one-line summary.
func report(ctx context.Context, stdout, stderr io.Writer, e *app.Editor, path string) error {
	out, err := e.Save(ctx)
	if err != nil {
		return failure(stderr, "Save failed", err)
	}
	live := e.Blocks().Blocks()
	stubs := 0
	for _, b := range live {
		if b.Tool() == tools.StubTool {
			stubs++
		}
	}
	dropped := len(live) - len(out.Blocks)
	msg := fmt.Sprintf("%s: %d blocks saved", path, len(out.Blocks))
	if stubs > 0 {
		msg += fmt.Sprintf(", %d kept as stubs", stubs)
	}
	if dropped > 0 {
		msg += fmt.Sprintf(", %d dropped", dropped)
	}
	success(stdout, "%s", msg)
	return nil
}
