package shortcut

import (
	"context"
	"errors"
	"testing"

	"github.com/dshills/blockedit/internal/config"
	"github.com/dshills/blockedit/internal/input/key"
	"github.com/dshills/blockedit/internal/logging"
	"github.com/dshills/blockedit/internal/module"
)

type fakeTools map[string]string

func (f fakeTools) Name() module.Name                { return module.Tools }
func (f fakeTools) ToolShortcuts() map[string]string { return f }

type fakeUI struct{ d *Dispatcher }

func (f fakeUI) Name() module.Name { return module.UI }
func (f fakeUI) KeyTarget() Target { return f.d }

type fakeBlocks struct{ inserted []string }

func (f *fakeBlocks) Name() module.Name { return module.BlockManager }
func (f *fakeBlocks) InsertTool(tool string) error {
	f.inserted = append(f.inserted, tool)
	return nil
}

func TestShortcuts_Duplicate(t *testing.T) {
	m := NewModule(config.PlatformOther, logging.NewNop())
	d1, d2 := NewDispatcher(), NewDispatcher()

	if err := m.Add(Descriptor{Name: "CMD+B", On: d1}); err != nil {
		t.Fatal(err)
	}
	if err := m.Add(Descriptor{Name: "CMD+B", On: d1}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
	if err := m.Add(Descriptor{Name: "CMD+B", On: d2}); err != nil {
		t.Errorf("same name on another target should be allowed: %v", err)
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}

	m.Remove(d1, "CMD+B")
	if _, ok := m.Get(d1, "CMD+B"); ok {
		t.Error("shortcut still registered after Remove")
	}
	if d1.Len() != 0 {
		t.Error("listener still attached after Remove")
	}
	if err := m.Add(Descriptor{Name: "CMD+B", On: d1}); err != nil {
		t.Errorf("re-adding after Remove failed: %v", err)
	}

	m.Destroy()
	if m.Len() != 0 || d1.Len() != 0 || d2.Len() != 0 {
		t.Error("Destroy should detach every shortcut")
	}
}

func TestShortcuts_DuplicateSpellings(t *testing.T) {
	m := NewModule(config.PlatformAny, logging.NewNop())
	d := NewDispatcher()

	if err := m.Add(Descriptor{Name: "CMD+B", On: d}); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"cmd+b", "CTRL + B", "B+COMMAND"} {
		if err := m.Add(Descriptor{Name: name, On: d}); !errors.Is(err, ErrDuplicate) {
			t.Errorf("Add(%q) = %v, want ErrDuplicate", name, err)
		}
	}
	if d.Len() != 1 {
		t.Errorf("listeners = %d, want 1", d.Len())
	}
	if s, ok := m.Get(d, "control+b"); !ok || s.Name() != "CMD+B" {
		t.Errorf("Get by another spelling = %v, %v", s, ok)
	}

	m.Remove(d, "cmd+b")
	if m.Len() != 0 || d.Len() != 0 {
		t.Error("Remove by another spelling should detach the shortcut")
	}
	if err := m.Add(Descriptor{Name: "CMD+NOPE", On: d}); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("expected ErrUnknownKey, got %v", err)
	}
}

func TestShortcuts_PrepareBindsTools(t *testing.T) {
	d := NewDispatcher()
	blocks := &fakeBlocks{}

	reg := module.NewRegistry()
	m := NewModule(config.PlatformOther, logging.NewNop())
	for _, mod := range []module.Module{m, fakeTools{"header": "CMD+SHIFT+H", "broken": "CMD+???"}, fakeUI{d}, blocks} {
		if err := reg.Add(mod); err != nil {
			t.Fatal(err)
		}
	}
	reg.Wire()

	res := m.Prepare(context.Background())
	if res.Severity() != module.SeverityRecoverable {
		t.Errorf("Prepare() severity = %v, want recoverable for the broken binding", res.Severity())
	}
	if m.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", m.Len())
	}

	d.Dispatch(key.NewRuneEvent('h', key.ModCtrl|key.ModShift))
	if len(blocks.inserted) != 1 || blocks.inserted[0] != "header" {
		t.Errorf("inserted = %v, want [header]", blocks.inserted)
	}
}

func TestShortcuts_PrepareWithoutSiblings(t *testing.T) {
	m := NewModule(config.PlatformOther, nil)
	if res := m.Prepare(context.Background()); !res.IsOK() {
		t.Errorf("Prepare() = %v", res.Err())
	}
}
