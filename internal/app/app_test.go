package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/blockedit/internal/config"
	"github.com/dshills/blockedit/internal/document"
	"github.com/dshills/blockedit/internal/errdefs"
	"github.com/dshills/blockedit/internal/events"
	"github.com/dshills/blockedit/internal/input/key"
	"github.com/dshills/blockedit/internal/logging"
	"github.com/dshills/blockedit/internal/module"
	"github.com/dshills/blockedit/internal/pipeline"
	"github.com/dshills/blockedit/internal/tools"
	"github.com/dshills/blockedit/internal/ui"
)

const headerScript = `
return {
  toolbox = { title = "Heading" },
  sanitize = { text = {} },
  save = function(data)
    return { text = data.text or "" }
  end,
}
`

func testOptions(opts ...Option) []Option {
	base := []Option{
		WithLogger(logging.NewNop()),
		WithResolver(ui.NewDocument(config.DefaultHolder, "other")),
	}
	return append(base, opts...)
}

func openEditor(t *testing.T, input any, opts ...Option) *Editor {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	e, err := Open(ctx, input, testOptions(opts...)...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = e.Destroy() })
	return e
}

func TestOpen_Defaults(t *testing.T) {
	e := openEditor(t, config.DefaultHolder)

	if got := e.Blocks().Len(); got != 1 {
		t.Fatalf("Len() = %d, want one default block", got)
	}
	b, _ := e.Blocks().ByIndex(0)
	if b.Tool() != config.DefaultBlockType {
		t.Errorf("first block tool = %q", b.Tool())
	}
	if e.UI().Loading() {
		t.Error("loader still shown after startup")
	}
	if !e.UI().Empty() {
		t.Error("editor with one blank paragraph should be empty")
	}
	if len(e.Warnings()) != 0 {
		t.Errorf("Warnings() = %v", e.Warnings())
	}

	out, err := e.Save(context.Background())
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if len(out.Blocks) != 0 {
		t.Errorf("blank paragraph should be dropped, got %v", out.Blocks)
	}
	if out.Version != document.Version {
		t.Errorf("Version = %q", out.Version)
	}
}

func TestOpen_RenderAndSave(t *testing.T) {
	cfg := &config.Config{
		Tools: map[string]config.ToolSettings{
			"header": {Class: "lua", Script: headerScript},
		},
		Data: &document.Output{Blocks: []document.Block{
			document.NewBlock("paragraph", map[string]any{"text": "hello <b>b</b><script>x</script>"}),
			document.NewBlock("header", map[string]any{"text": "Title <i>x</i>"}),
			document.NewBlock("image", map[string]any{"url": "x.png"}),
		}},
	}
	e := openEditor(t, cfg)

	if got := e.Blocks().Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}
	stub, _ := e.Blocks().ByIndex(2)
	if stub.Tool() != tools.StubTool || !stub.Stretched() {
		t.Errorf("unknown tool block: tool %q stretched %v", stub.Tool(), stub.Stretched())
	}

	out, err := e.Save(context.Background())
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	want := []document.Block{
		document.NewBlock("paragraph", map[string]any{"text": "hello <b>b</b>"}),
		document.NewBlock("header", map[string]any{"text": "Title x"}),
		document.NewBlock("image", map[string]any{"url": "x.png"}),
	}
	if diff := cmp.Diff(want, out.Blocks); diff != "" {
		t.Errorf("saved blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestOpen_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name  string
		input any
	}{
		{"unsupported input", 42},
		{"missing holder", "nowhere"},
		{"holder and holderId", &config.Config{Holder: "editorjs", HolderID: "other"}},
		{"negative min height", &config.Config{MinHeight: config.Pixels(-1)}},
		{"bad sanitizer rule", &config.Config{Sanitizer: map[string]any{"b": 42}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(context.Background(), tt.input, testOptions()...)
			if !errdefs.IsConfiguration(err) {
				t.Fatalf("Open() error = %v, want configuration error", err)
			}
			var ie *InitError
			if !errors.As(err, &ie) {
				t.Errorf("error %T is not an *InitError", err)
			}
		})
	}
}

func TestOpen_FatalPreparation(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{DefaultBlock: "header"}, testOptions()...)
	if !errors.Is(err, module.ErrCritical) {
		t.Fatalf("Open() error = %v, want critical error", err)
	}
	var ce *module.CriticalError
	if !errors.As(err, &ce) || ce.Module != module.Tools {
		t.Errorf("error = %v, want Tools critical error", err)
	}
}

func TestOpen_RecoverablePreparation(t *testing.T) {
	cfg := &config.Config{I18n: config.I18nSettings{Locale: "not a locale!!"}}
	e := openEditor(t, cfg)

	warnings := e.Warnings()
	if len(warnings) != 1 {
		t.Fatalf("Warnings() = %v, want one", warnings)
	}
	var me *ModuleError
	if !errors.As(warnings[0], &me) || me.Module != module.I18n || me.Stage != "prepare" {
		t.Errorf("warning = %v", warnings[0])
	}
	if e.I18n() == nil {
		t.Error("I18n should stay available after a recoverable failure")
	}
}

// recordingModule stands in for a startup module and logs its Prepare call.
type recordingModule struct {
	name     module.Name
	res      module.Result
	prepared *[]module.Name
}

func (m recordingModule) Name() module.Name { return m.name }

func (m recordingModule) Prepare(context.Context) module.Result {
	*m.prepared = append(*m.prepared, m.name)
	return m.res
}

// recordStartup replaces every startup module with a recordingModule.
// Results not named in results are OK.
func recordStartup(prepared *[]module.Name, results map[module.Name]module.Result) []Option {
	var opts []Option
	for _, name := range startupOrder {
		res, ok := results[name]
		if !ok {
			res = module.OK()
		}
		m := recordingModule{name: name, res: res, prepared: prepared}
		opts = append(opts, WithConstructor(name, func() (module.Module, error) {
			return m, nil
		}))
	}
	return opts
}

func TestOpen_PreparationOrder(t *testing.T) {
	var prepared []module.Name
	opts := recordStartup(&prepared, map[module.Name]module.Result{
		module.Tools: module.Recoverable(errors.New("tool registry degraded")),
	})

	// The stand-ins give the renderer nothing to insert into, so Open
	// stops at render, after preparation has finished.
	_, err := Open(context.Background(), config.DefaultHolder, testOptions(opts...)...)
	if errors.Is(err, module.ErrCritical) {
		t.Fatalf("Open() error = %v, a recoverable failure must not be critical", err)
	}
	if !errors.Is(err, pipeline.ErrMissingModule) {
		t.Errorf("Open() error = %v, want render to report missing modules", err)
	}

	if diff := cmp.Diff(startupOrder, prepared); diff != "" {
		t.Errorf("prepare order mismatch (-want +got):\n%s", diff)
	}
}

func TestOpen_FatalStopsPreparation(t *testing.T) {
	tests := []struct {
		fatal module.Name
		want  []module.Name
	}{
		{module.Tools, []module.Name{module.Tools}},
		{module.UI, []module.Name{module.Tools, module.UI}},
		{module.Shortcuts, []module.Name{module.Tools, module.UI, module.BlockManager, module.I18n, module.Shortcuts}},
	}
	for _, tt := range tests {
		t.Run(string(tt.fatal), func(t *testing.T) {
			var prepared []module.Name
			opts := recordStartup(&prepared, map[module.Name]module.Result{
				tt.fatal: module.Fatal(errors.New("cannot start")),
			})

			_, err := Open(context.Background(), config.DefaultHolder, testOptions(opts...)...)
			var ce *module.CriticalError
			if !errors.As(err, &ce) || ce.Module != tt.fatal {
				t.Fatalf("Open() error = %v, want critical error from %s", err, tt.fatal)
			}
			if diff := cmp.Diff(tt.want, prepared); diff != "" {
				t.Errorf("prepared modules mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

type panickyModule struct{ name module.Name }

func (m panickyModule) Name() module.Name { return m.name }

func (m panickyModule) Prepare(context.Context) module.Result {
	panic("prepare exploded")
}

func TestOpen_ModuleFailuresAreSkipped(t *testing.T) {
	e := openEditor(t, config.DefaultHolder,
		WithConstructor(module.I18n, func() (module.Module, error) {
			return nil, errors.New("no dictionaries")
		}),
		WithConstructor(module.Caret, func() (module.Module, error) {
			panic("constructor exploded")
		}),
		WithConstructor(module.ReadOnly, func() (module.Module, error) {
			return panickyModule{name: module.ReadOnly}, nil
		}),
		WithConstructor(module.Shortcuts, nil),
	)

	if e.I18n() != nil || e.Caret() != nil || e.Shortcuts() != nil {
		t.Error("failed modules should be absent")
	}
	if e.ReadOnly() != nil {
		t.Error("ReadOnly() should be nil for a foreign implementation")
	}

	stages := map[module.Name]string{}
	for _, w := range e.Warnings() {
		var me *ModuleError
		if errors.As(w, &me) {
			stages[me.Module] = me.Stage
		}
	}
	want := map[module.Name]string{
		module.I18n:     "construct",
		module.Caret:    "construct",
		module.ReadOnly: "prepare",
	}
	if diff := cmp.Diff(want, stages); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}

	if err := e.Focus(context.Background(), false); !errors.Is(err, ErrModuleUnavailable) {
		t.Errorf("Focus() error = %v, want ErrModuleUnavailable", err)
	}
	if _, err := e.Save(context.Background()); err != nil {
		t.Errorf("Save() failed: %v", err)
	}
}

func TestEditor_ReadOnly(t *testing.T) {
	cfg := &config.Config{
		ReadOnly: true,
		Data: &document.Output{Blocks: []document.Block{
			document.NewBlock("paragraph", map[string]any{"text": "kept"}),
		}},
	}
	e := openEditor(t, cfg)

	if _, err := e.Save(context.Background()); !errors.Is(err, ErrReadOnlySave) {
		t.Fatalf("Save() error = %v, want ErrReadOnlySave", err)
	}

	state, err := e.ReadOnly().Toggle(context.Background())
	if err != nil || state {
		t.Fatalf("Toggle() = %v, %v", state, err)
	}
	out, err := e.Save(context.Background())
	if err != nil {
		t.Fatalf("Save() after toggle failed: %v", err)
	}
	if len(out.Blocks) != 1 || out.Blocks[0].Data["text"] != "kept" {
		t.Errorf("blocks = %v", out.Blocks)
	}
}

func TestEditor_RenderAndClear(t *testing.T) {
	e := openEditor(t, config.DefaultHolder)
	ctx := context.Background()

	doc := document.Output{Blocks: []document.Block{
		document.NewBlock("paragraph", map[string]any{"text": "a"}),
		document.NewBlock("paragraph", map[string]any{"text": "b"}),
	}}
	if err := e.Render(ctx, doc); err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	if e.Blocks().Len() != 2 || e.UI().Empty() {
		t.Errorf("Len() = %d, Empty() = %v", e.Blocks().Len(), e.UI().Empty())
	}

	if err := e.Render(ctx, document.Output{}); err != nil {
		t.Fatalf("Render(empty) failed: %v", err)
	}
	if e.Blocks().Len() != 1 {
		t.Errorf("empty render Len() = %d, want 1", e.Blocks().Len())
	}

	if err := e.Render(ctx, doc); err != nil {
		t.Fatal(err)
	}
	if err := e.Clear(ctx); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}
	if e.Blocks().Len() != 1 || !e.UI().Empty() {
		t.Errorf("after Clear: Len() = %d, Empty() = %v", e.Blocks().Len(), e.UI().Empty())
	}
}

func TestEditor_Callbacks(t *testing.T) {
	ready := make(chan struct{})
	var changes []events.Type
	cfg := &config.Config{
		Autofocus: true,
		OnReady:   func() { close(ready) },
		OnChange:  func(ev events.Event) { changes = append(changes, ev.Type) },
	}
	e := openEditor(t, cfg)

	select {
	case <-ready:
	case <-time.After(5 * time.Second):
		t.Fatal("OnReady not called")
	}
	if len(changes) != 0 {
		t.Errorf("initial render reported changes: %v", changes)
	}

	idx, pos := e.Caret().Location()
	if idx != 0 || pos != ui.PositionStart {
		t.Errorf("caret = %d/%v, want 0/start", idx, pos)
	}

	if _, err := e.Blocks().Insert("paragraph", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Save(context.Background()); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]events.Type{events.BlockAdded}, changes); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}
}

func TestEditor_ToolShortcut(t *testing.T) {
	cfg := &config.Config{
		Platform: config.PlatformOther,
		Tools: map[string]config.ToolSettings{
			"paragraph": {Shortcut: "CMD+SHIFT+P"},
		},
	}
	e := openEditor(t, cfg)

	if e.Shortcuts().Len() != 1 {
		t.Fatalf("Shortcuts().Len() = %d, want 1", e.Shortcuts().Len())
	}
	e.Keys().Dispatch(key.NewRuneEvent('p', key.ModCtrl|key.ModShift))
	if got := e.Blocks().Len(); got != 2 {
		t.Errorf("Len() = %d after shortcut, want 2", got)
	}
}

func TestEditor_Destroy(t *testing.T) {
	ctx := context.Background()
	e, err := Open(ctx, config.DefaultHolder, testOptions()...)
	if err != nil {
		t.Fatal(err)
	}
	hub := e.Events()
	hub.On(events.BlockAdded, func(events.Event) {})

	if err := e.Destroy(); err != nil {
		t.Fatalf("Destroy() failed: %v", err)
	}
	if err := e.Destroy(); !errors.Is(err, ErrDestroyed) {
		t.Errorf("second Destroy() = %v, want ErrDestroyed", err)
	}
	if hub.Count() != 0 {
		t.Errorf("hub still has %d subscriptions", hub.Count())
	}
	if e.Blocks() != nil || e.Events() != nil || e.Config() != nil || e.Keys() != nil {
		t.Error("surfaces should be cleared")
	}
	if err := e.Ready(ctx); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Ready() = %v, want ErrDestroyed", err)
	}
	if _, err := e.Save(ctx); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Save() = %v, want ErrDestroyed", err)
	}
	if err := e.Clear(ctx); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Clear() = %v, want ErrDestroyed", err)
	}
}

func TestEditor_ReadyHonorsContext(t *testing.T) {
	e := New(config.DefaultHolder, testOptions()...)
	defer func() { _ = e.Destroy() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e.Ready(ctx); err != nil && !errors.Is(err, context.Canceled) {
		t.Errorf("Ready() = %v", err)
	}
}
