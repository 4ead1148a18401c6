package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/blockedit/internal/blocks"
	"github.com/dshills/blockedit/internal/config"
	"github.com/dshills/blockedit/internal/document"
	"github.com/dshills/blockedit/internal/events"
	"github.com/dshills/blockedit/internal/logging"
	"github.com/dshills/blockedit/internal/module"
	"github.com/dshills/blockedit/internal/sanitizer"
	"github.com/dshills/blockedit/internal/tools"
)

type fakeUI struct {
	checks int
}

func (u *fakeUI) Name() module.Name { return module.UI }
func (u *fakeUI) CheckEmptiness()   { u.checks++ }

type fakeObserver struct {
	calls []string
}

func (o *fakeObserver) Name() module.Name { return module.ModificationsObserver }
func (o *fakeObserver) Enable()           { o.calls = append(o.calls, "enable") }
func (o *fakeObserver) Disable()          { o.calls = append(o.calls, "disable") }

// brokenClass saves with an error.
type brokenClass struct{}

func (brokenClass) Toolbox() tools.Toolbox        { return tools.Toolbox{Title: "Broken"} }
func (brokenClass) SanitizeRules() map[string]any { return nil }
func (brokenClass) ReadOnlySupported() bool       { return true }
func (brokenClass) New(tools.Params) (tools.Instance, error) {
	return brokenBlock{}, nil
}

type brokenBlock struct{}

func (brokenBlock) Save(context.Context) (map[string]any, error) {
	return nil, errors.New("save failed")
}
func (brokenBlock) Validate(map[string]any) bool { return true }

type fixture struct {
	renderer *Renderer
	saver    *Saver
	blocks   *blocks.Manager
	ui       *fakeUI
	observer *fakeObserver
	hub      *events.Hub
}

func newFixture(t *testing.T, cfg *config.Config) *fixture {
	t.Helper()
	norm, err := config.Normalize(cfg)
	if err != nil {
		t.Fatal(err)
	}
	classes := tools.DefaultClasses().With("broken", func(string, config.ToolSettings) (tools.Class, error) {
		return brokenClass{}, nil
	})

	san, err := sanitizer.NewModule(sanitizer.Whitelist(norm.Sanitizer))
	if err != nil {
		t.Fatal(err)
	}
	tm := tools.NewModule(norm, classes, logging.NewNop())
	f := &fixture{
		renderer: NewRenderer(logging.NewNop()),
		saver:    NewSaver(norm, logging.NewNop()),
		blocks:   blocks.NewModule(norm, logging.NewNop()),
		ui:       &fakeUI{},
		observer: &fakeObserver{},
		hub:      events.New(),
	}

	reg := module.NewRegistry()
	for _, m := range []module.Module{f.renderer, f.saver, f.blocks, f.ui, f.observer, f.hub, san, tm} {
		if err := reg.Add(m); err != nil {
			t.Fatal(err)
		}
	}
	reg.Wire()
	if res := tm.Prepare(context.Background()); !res.IsOK() {
		t.Fatalf("tools Prepare = %v", res)
	}
	return f
}

func TestRender_StubsUnknownTools(t *testing.T) {
	f := newFixture(t, &config.Config{Tools: map[string]config.ToolSettings{
		"image": {Toolbox: &config.Toolbox{Title: "Image"}},
	}})

	var rendered int
	f.hub.On(events.Rendered, func(events.Event) { rendered++ })

	list := []document.Block{
		document.NewBlock("paragraph", map[string]any{"text": "hello"}),
		document.NewBlock("image", map[string]any{"url": "x.png"}),
		document.NewBlock("table", map[string]any{"rows": 2.0}),
	}
	stats, err := f.renderer.Render(context.Background(), list)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if diff := cmp.Diff(RenderStats{Rendered: 1, Stubbed: 2}, stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
	if f.blocks.Len() != 3 {
		t.Fatalf("Len = %d, want 3", f.blocks.Len())
	}
	if diff := cmp.Diff([]string{"disable", "enable"}, f.observer.calls); diff != "" {
		t.Errorf("observer calls mismatch (-want +got):\n%s", diff)
	}

	img, _ := f.blocks.ByIndex(1)
	if img.Tool() != tools.StubTool || !img.Stretched() {
		t.Errorf("image block: tool %q stretched %v", img.Tool(), img.Stretched())
	}
	vb, _ := img.Save(context.Background())
	want := tools.StubData("image", map[string]any{"url": "x.png"}, "Image")
	if diff := cmp.Diff(want, vb.Data); diff != "" {
		t.Errorf("stub data mismatch (-want +got):\n%s", diff)
	}

	table, _ := f.blocks.ByIndex(2)
	vb, _ = table.Save(context.Background())
	if vb.Data[tools.StubTitle] != "table" {
		t.Errorf("stub title = %v, want type name", vb.Data[tools.StubTitle])
	}

	if f.ui.checks != 1 {
		t.Errorf("CheckEmptiness called %d times, want 1", f.ui.checks)
	}
	if rendered != 1 {
		t.Errorf("rendered events = %d, want 1", rendered)
	}
}

func TestRender_Empty(t *testing.T) {
	f := newFixture(t, &config.Config{})
	if _, err := f.renderer.Render(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if f.blocks.Len() != 0 || f.ui.checks != 1 {
		t.Errorf("Len = %d, checks = %d", f.blocks.Len(), f.ui.checks)
	}
}

func TestRender_Canceled(t *testing.T) {
	f := newFixture(t, &config.Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.renderer.Render(ctx, []document.Block{document.NewBlock("paragraph", nil)})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Render error = %v, want context.Canceled", err)
	}
}

func TestRender_MissingModules(t *testing.T) {
	r := NewRenderer(nil)
	if _, err := r.Render(context.Background(), nil); !errors.Is(err, ErrMissingModule) {
		t.Errorf("Render error = %v, want ErrMissingModule", err)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	f := newFixture(t, &config.Config{Tools: map[string]config.ToolSettings{"broken": {}}})

	list := []document.Block{
		document.NewBlock("paragraph", map[string]any{"text": "<b>bold</b> and <i>italic</i>"}),
		document.NewBlock("paragraph", map[string]any{"text": "   "}),
		document.NewBlock("gallery", map[string]any{"items": []any{"a", "b"}}),
		document.NewBlock("broken", nil),
	}
	if _, err := f.renderer.Render(context.Background(), list); err != nil {
		t.Fatal(err)
	}

	var (
		savedStats SaveStats
		elapsed    time.Duration
	)
	f.saver.OnSave = func(s SaveStats, d time.Duration) { savedStats, elapsed = s, d }

	f.observer.calls = nil
	out, err := f.saver.Save(context.Background())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	want := []document.Block{
		document.NewBlock("paragraph", map[string]any{"text": "<b>bold</b> and italic"}),
		document.NewBlock("gallery", map[string]any{"items": []any{"a", "b"}}),
	}
	if diff := cmp.Diff(want, out.Blocks); diff != "" {
		t.Errorf("blocks mismatch (-want +got):\n%s", diff)
	}
	if out.Version != document.Version || out.Time == 0 {
		t.Errorf("version %q time %d", out.Version, out.Time)
	}
	if savedStats.Blocks != 2 || savedStats.Dropped != 2 {
		t.Errorf("stats = %+v", savedStats)
	}
	if savedStats.ToolTime < 0 || savedStats.ToolTime > elapsed*time.Duration(len(list)) {
		t.Errorf("ToolTime = %v, save took %v", savedStats.ToolTime, elapsed)
	}
	if diff := cmp.Diff([]string{"disable", "enable"}, f.observer.calls); diff != "" {
		t.Errorf("observer calls mismatch (-want +got):\n%s", diff)
	}
}

func TestSave_ToolTimeSkipsDropped(t *testing.T) {
	f := newFixture(t, &config.Config{})

	validated := []document.ValidatedBlock{
		{Tool: "paragraph", Data: map[string]any{"text": "a"}, Time: 3 * time.Millisecond, IsValid: true},
		{Tool: "paragraph", Data: map[string]any{}, Time: 50 * time.Millisecond},
		{Tool: "gallery", Data: map[string]any{"items": []any{}}, Time: 4 * time.Millisecond, IsValid: true},
	}
	out, stats, err := f.saver.reduce(validated)
	if err != nil {
		t.Fatal(err)
	}
	want := SaveStats{Blocks: 2, Dropped: 1, ToolTime: 7 * time.Millisecond}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
	if len(out.Blocks) != 2 {
		t.Errorf("Blocks = %d, want 2", len(out.Blocks))
	}
}

func TestSave_FailPolicy(t *testing.T) {
	f := newFixture(t, &config.Config{InvalidBlocks: config.InvalidBlocksFail})

	list := []document.Block{
		document.NewBlock("paragraph", map[string]any{"text": "ok"}),
		document.NewBlock("paragraph", map[string]any{"text": ""}),
	}
	if _, err := f.renderer.Render(context.Background(), list); err != nil {
		t.Fatal(err)
	}

	f.observer.calls = nil
	_, err := f.saver.Save(context.Background())
	if !errors.Is(err, ErrInvalidBlock) {
		t.Fatalf("Save error = %v, want ErrInvalidBlock", err)
	}
	var ibe *InvalidBlockError
	if !errors.As(err, &ibe) || ibe.Index != 1 {
		t.Errorf("error = %#v, want index 1", err)
	}
	if diff := cmp.Diff([]string{"disable", "enable"}, f.observer.calls); diff != "" {
		t.Errorf("observer not re-enabled (-want +got):\n%s", diff)
	}
}

func TestSave_Empty(t *testing.T) {
	f := newFixture(t, &config.Config{})
	out, err := f.saver.Save(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !out.IsEmpty() {
		t.Errorf("Blocks = %v, want none", out.Blocks)
	}
}
