package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/dshills/blockedit/internal/app"
	"github.com/dshills/blockedit/internal/input/key"
	"github.com/dshills/blockedit/internal/input/terminal"
)

func newKeysCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Try the configured tool shortcuts in the terminal",
		Long: `Keys opens an empty editor and feeds terminal key presses to it.
Pressing a tool shortcut inserts a block of that tool; the screen shows
the last key and the current blocks.

Press Escape to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stderr := cmd.ErrOrStderr()
			cfg, err := g.loadConfig()
			if err != nil {
				return failure(stderr, "Invalid configuration", err)
			}
			// The screen owns the terminal; keep logs quiet.
			cfg.LogLevel = "ERROR"
			cfg.Data = nil

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			e, err := openEditor(ctx, cfg, stderr)
			if err != nil {
				return failure(stderr, "Editor failed to start", err)
			}
			defer func() { _ = e.Destroy() }()

			src, err := terminal.NewTerminal(e.Keys())
			if err != nil {
				return failure(stderr, "Cannot open terminal", err)
			}
			defer src.Shutdown()

			return runKeys(ctx, cancel, src, e)
		},
	}
}

// runKeys pumps key presses into the editor until Escape.
func runKeys(ctx context.Context, cancel context.CancelFunc, src *terminal.Source, e *app.Editor) error {
	if err := src.Init(); err != nil {
		return err
	}
	view := &keysView{screen: src.Screen(), editor: e}
	view.draw("")

	src.OnKey(func(ev key.Event) {
		if ev.Key == key.KeyEscape {
			cancel()
			return
		}
		view.draw(ev.String())
	})

	err := src.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// keysView draws the state of the editor on a screen.
type keysView struct {
	screen tcell.Screen
	editor *app.Editor
}

func (v *keysView) draw(last string) {
	s := v.screen
	s.Clear()

	header := tcell.StyleDefault.Bold(true)
	dim := tcell.StyleDefault.Foreground(tcell.ColorGray)

	row := 0
	v.text(0, row, header, "blockedit keys (Escape quits)")
	row += 2

	if sc := v.editor.Shortcuts(); sc != nil {
		v.text(0, row, dim, fmt.Sprintf("%d shortcuts bound", sc.Len()))
		row++
	}
	if last != "" {
		v.text(0, row, tcell.StyleDefault, "last key: "+last)
	}
	row += 2

	if bm := v.editor.Blocks(); bm != nil {
		for i, b := range bm.Blocks() {
			marker := "  "
			if i == bm.CurrentIndex() {
				marker = "> "
			}
			v.text(0, row, tcell.StyleDefault, fmt.Sprintf("%s%d %s", marker, i, b.Tool()))
			row++
		}
	}
	s.Show()
}

func (v *keysView) text(x, y int, style tcell.Style, s string) {
	for _, r := range s {
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
}
