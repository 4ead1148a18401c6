package readonly

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/blockedit/internal/blocks"
	"github.com/dshills/blockedit/internal/config"
	"github.com/dshills/blockedit/internal/document"
	"github.com/dshills/blockedit/internal/events"
	"github.com/dshills/blockedit/internal/module"
	"github.com/dshills/blockedit/internal/pipeline"
	"github.com/dshills/blockedit/internal/tools"
)

// editOnly is a tool without read-only support.
type editOnly struct{ tools.Paragraph }

func (editOnly) ReadOnlySupported() bool { return false }

type recorder struct {
	readOnly bool
}

func (r *recorder) Name() module.Name  { return module.UI }
func (r *recorder) SetReadOnly(v bool) { r.readOnly = v }

type fixture struct {
	ro       *ReadOnly
	blocks   *blocks.Manager
	renderer *pipeline.Renderer
	saver    *pipeline.Saver
	ui       *recorder
	hub      *events.Hub
}

func newFixture(t *testing.T, cfg *config.Config) (*fixture, module.Result) {
	t.Helper()
	norm, err := config.Normalize(cfg)
	if err != nil {
		t.Fatal(err)
	}
	classes := tools.DefaultClasses().With("code", func(string, config.ToolSettings) (tools.Class, error) {
		return editOnly{}, nil
	})
	tm := tools.NewModule(norm, classes, nil)
	f := &fixture{
		ro:       NewModule(norm, nil),
		blocks:   blocks.NewModule(norm, nil),
		renderer: pipeline.NewRenderer(nil),
		saver:    pipeline.NewSaver(norm, nil),
		ui:       &recorder{},
		hub:      events.New(),
	}
	reg := module.NewRegistry()
	for _, m := range []module.Module{f.ro, f.blocks, f.renderer, f.saver, f.ui, f.hub, tm} {
		if err := reg.Add(m); err != nil {
			t.Fatal(err)
		}
	}
	reg.Wire()
	if res := tm.Prepare(context.Background()); !res.IsOK() {
		t.Fatalf("tools Prepare = %v", res)
	}
	return f, f.ro.Prepare(context.Background())
}

func TestPrepare_UnsupportedToolsFatal(t *testing.T) {
	_, res := newFixture(t, &config.Config{
		ReadOnly: true,
		Tools:    map[string]config.ToolSettings{"code": {}},
	})
	if !res.IsFatal() || !errors.Is(res.Err(), ErrUnsupported) {
		t.Errorf("Prepare = %v, want fatal ErrUnsupported", res)
	}
}

func TestPrepare_UnsupportedToolsEditing(t *testing.T) {
	f, res := newFixture(t, &config.Config{Tools: map[string]config.ToolSettings{"code": {}}})
	if !res.IsOK() {
		t.Fatalf("Prepare = %v", res)
	}
	if _, err := f.ro.Toggle(context.Background()); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Toggle error = %v, want ErrUnsupported", err)
	}
	if f.ro.Enabled() {
		t.Error("Enabled after refused toggle")
	}
}

func TestToggle_Rerenders(t *testing.T) {
	f, res := newFixture(t, &config.Config{})
	if !res.IsOK() {
		t.Fatalf("Prepare = %v", res)
	}

	list := []document.Block{
		document.NewBlock("paragraph", map[string]any{"text": "one"}),
		document.NewBlock("paragraph", map[string]any{"text": "two"}),
	}
	if _, err := f.renderer.Render(context.Background(), list); err != nil {
		t.Fatal(err)
	}
	before := f.blocks.Blocks()

	var modes []any
	f.hub.On(events.ReadOnly, func(e events.Event) { modes = append(modes, e.Payload) })

	state, err := f.ro.Toggle(context.Background())
	if err != nil || !state {
		t.Fatalf("Toggle = %v, %v", state, err)
	}
	if !f.ro.Enabled() || !f.ui.readOnly {
		t.Error("read-only not applied")
	}

	after := f.blocks.Blocks()
	if len(after) != 2 || after[0] == before[0] {
		t.Errorf("blocks were not recreated")
	}
	out, err := f.saver.Save(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(list, out.Blocks); diff != "" {
		t.Errorf("content changed (-want +got):\n%s", diff)
	}

	if state, _ := f.ro.Toggle(context.Background()); state {
		t.Error("second Toggle did not switch back")
	}
	if diff := cmp.Diff([]any{true, false}, modes); diff != "" {
		t.Errorf("mode events (-want +got):\n%s", diff)
	}
}

func TestSet_SameModeIsNoop(t *testing.T) {
	f, _ := newFixture(t, &config.Config{})
	f.blocks.Insert("paragraph", map[string]any{"text": "x"})
	before := f.blocks.Blocks()

	if state, err := f.ro.Set(context.Background(), false); err != nil || state {
		t.Fatalf("Set(false) = %v, %v", state, err)
	}
	if after := f.blocks.Blocks(); after[0] != before[0] {
		t.Error("blocks recreated by no-op Set")
	}
}
