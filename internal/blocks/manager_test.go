package blocks

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/blockedit/internal/config"
	"github.com/dshills/blockedit/internal/events"
	"github.com/dshills/blockedit/internal/logging"
	"github.com/dshills/blockedit/internal/module"
	"github.com/dshills/blockedit/internal/tools"
)

type fixture struct {
	manager *Manager
	tools   *tools.Tools
	hub     *events.Hub
	events  []events.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg, err := config.Normalize(&config.Config{})
	if err != nil {
		t.Fatal(err)
	}

	f := &fixture{
		manager: NewModule(cfg, logging.NewNop()),
		tools:   tools.NewModule(cfg, nil, logging.NewNop()),
		hub:     events.New(),
	}
	reg := module.NewRegistry()
	for _, m := range []module.Module{f.manager, f.tools, f.hub} {
		if err := reg.Add(m); err != nil {
			t.Fatal(err)
		}
	}
	reg.Wire()

	if res := f.tools.Prepare(context.Background()); !res.IsOK() {
		t.Fatalf("tools Prepare = %v", res)
	}
	if res := f.manager.Prepare(context.Background()); !res.IsOK() {
		t.Fatalf("manager Prepare = %v", res)
	}
	f.hub.OnAny(func(e events.Event) { f.events = append(f.events, e) })
	return f
}

func (f *fixture) types() []events.Type {
	var out []events.Type
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

func (f *fixture) texts(t *testing.T) []string {
	t.Helper()
	var out []string
	for _, b := range f.manager.Blocks() {
		vb, err := b.Save(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		text, _ := vb.Data["text"].(string)
		out = append(out, text)
	}
	return out
}

func TestManager_InsertOrder(t *testing.T) {
	f := newFixture(t)
	m := f.manager

	for _, text := range []string{"a", "c"} {
		if _, err := m.Insert(tools.ParagraphTool, map[string]any{"text": text}); err != nil {
			t.Fatal(err)
		}
	}
	b, err := m.InsertAt(1, tools.ParagraphTool, map[string]any{"text": "b"})
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"a", "b", "c"}, f.texts(t)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if m.CurrentIndex() != 1 {
		t.Errorf("CurrentIndex = %d, want 1", m.CurrentIndex())
	}
	if got, ok := m.ByID(b.ID()); !ok || got != b {
		t.Error("ByID did not find inserted block")
	}
	if m.IndexOf(b.ID()) != 1 {
		t.Errorf("IndexOf = %d", m.IndexOf(b.ID()))
	}
	if b.Tool() != tools.ParagraphTool {
		t.Errorf("Tool = %q", b.Tool())
	}

	want := []events.Type{events.BlockAdded, events.BlockAdded, events.BlockAdded}
	if diff := cmp.Diff(want, f.types()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	if f.events[2].Index != 1 || f.events[2].BlockID != b.ID() {
		t.Errorf("last event = %+v", f.events[2])
	}
}

func TestManager_InsertErrors(t *testing.T) {
	f := newFixture(t)

	if _, err := f.manager.Insert("unknown", nil); !errors.Is(err, tools.ErrUnavailable) {
		t.Errorf("Insert(unknown) error = %v, want ErrUnavailable", err)
	}
	if _, err := f.manager.InsertAt(5, tools.ParagraphTool, nil); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("InsertAt(5) error = %v, want ErrIndexOutOfRange", err)
	}
	if f.manager.Len() != 0 {
		t.Errorf("Len = %d after failed inserts", f.manager.Len())
	}
	if len(f.events) != 0 {
		t.Errorf("events emitted for failed inserts: %v", f.types())
	}
}

func TestManager_InsertToolAfterCurrent(t *testing.T) {
	f := newFixture(t)
	m := f.manager

	m.Insert(tools.ParagraphTool, map[string]any{"text": "a"})
	m.Insert(tools.ParagraphTool, map[string]any{"text": "c"})
	if err := m.SetCurrent(0); err != nil {
		t.Fatal(err)
	}
	if err := m.InsertTool(tools.ParagraphTool); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"a", "", "c"}, f.texts(t)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if m.CurrentIndex() != 1 {
		t.Errorf("CurrentIndex = %d, want 1", m.CurrentIndex())
	}
}

func TestManager_RemoveMoveClear(t *testing.T) {
	f := newFixture(t)
	m := f.manager

	var ids []string
	for _, text := range []string{"a", "b", "c"} {
		b, _ := m.Insert(tools.ParagraphTool, map[string]any{"text": text})
		ids = append(ids, b.ID())
	}

	if err := m.Move(0, 2); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"b", "c", "a"}, f.texts(t)); diff != "" {
		t.Errorf("after Move (-want +got):\n%s", diff)
	}

	if err := m.RemoveByID(ids[1]); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"c", "a"}, f.texts(t)); diff != "" {
		t.Errorf("after Remove (-want +got):\n%s", diff)
	}
	if m.CurrentIndex() != 1 {
		t.Errorf("CurrentIndex = %d, want 1", m.CurrentIndex())
	}

	if err := m.Remove(7); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Remove(7) error = %v", err)
	}
	if err := m.RemoveByID("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("RemoveByID error = %v", err)
	}

	m.Clear()
	if m.Len() != 0 || m.CurrentIndex() != -1 {
		t.Errorf("after Clear: Len = %d, CurrentIndex = %d", m.Len(), m.CurrentIndex())
	}

	want := []events.Type{
		events.BlockAdded, events.BlockAdded, events.BlockAdded,
		events.BlockMoved, events.BlockRemoved,
	}
	if diff := cmp.Diff(want, f.types()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestManager_Update(t *testing.T) {
	f := newFixture(t)
	m := f.manager

	b, _ := m.Insert(tools.ParagraphTool, map[string]any{"text": "old"})
	if err := m.Update(b.ID(), map[string]any{"text": "new"}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"new"}, f.texts(t)); diff != "" {
		t.Errorf("after Update (-want +got):\n%s", diff)
	}
	last := f.events[len(f.events)-1]
	if last.Type != events.BlockChanged || last.BlockID != b.ID() {
		t.Errorf("last event = %+v, want block-changed", last)
	}

	stub, _ := m.Insert(tools.StubTool, tools.StubData("x", nil, "X"))
	if err := m.Update(stub.ID(), nil); !errors.Is(err, ErrNotUpdatable) {
		t.Errorf("Update(stub) error = %v, want ErrNotUpdatable", err)
	}
}

func TestBlock_Save(t *testing.T) {
	f := newFixture(t)

	b, _ := f.manager.Insert(tools.ParagraphTool, map[string]any{"text": "  "})
	vb, err := b.Save(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if vb.IsValid {
		t.Error("blank paragraph is valid")
	}
	if vb.Tool != tools.ParagraphTool {
		t.Errorf("Tool = %q", vb.Tool)
	}

	b.SetStretched(true)
	if !b.Stretched() {
		t.Error("Stretched = false after SetStretched(true)")
	}
}

func TestManager_PrepareWithoutTools(t *testing.T) {
	cfg, _ := config.Normalize(&config.Config{})
	m := NewModule(cfg, nil)
	m.Wire(module.NewRegistry().SiblingsOf(module.BlockManager))

	res := m.Prepare(context.Background())
	if !res.IsFatal() || !errors.Is(res.Err(), ErrNoTools) {
		t.Errorf("Prepare = %v, want fatal ErrNoTools", res)
	}
}
