package lua

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/blockedit/internal/config"
	"github.com/dshills/blockedit/internal/tools"
)

const headerScript = `
local level = 2

return {
  toolbox = { title = "Heading", icon = "H" },
  sanitize = { text = { b = true } },
  readOnlySupported = true,
  prepare = function(config)
    if config and config.defaultLevel then
      level = config.defaultLevel
    end
  end,
  save = function(data, config)
    return { text = data.text or "", level = data.level or level }
  end,
  validate = function(data, config)
    return data.text ~= ""
  end,
}
`

func loadClass(t *testing.T, source string, opts ...StateOption) *Class {
	t.Helper()
	c, err := Load(context.Background(), "test", source, opts...)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestLoad_Descriptor(t *testing.T) {
	c := loadClass(t, headerScript)

	if diff := cmp.Diff(tools.Toolbox{Title: "Heading", Icon: "H"}, c.Toolbox()); diff != "" {
		t.Errorf("Toolbox mismatch (-want +got):\n%s", diff)
	}
	want := map[string]any{"text": map[string]any{"b": true}}
	if diff := cmp.Diff(want, c.SanitizeRules()); diff != "" {
		t.Errorf("SanitizeRules mismatch (-want +got):\n%s", diff)
	}
	if !c.ReadOnlySupported() {
		t.Error("ReadOnlySupported = false")
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		bad    bool
	}{
		{"syntax", "return {", false},
		{"not a table", "return 42", true},
		{"nothing returned", "local x = 1", true},
		{"save not a function", "return { save = 1 }", true},
		{"runtime error", "error('nope')", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(context.Background(), "test", tt.source)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, ErrBadScript); got != tt.bad {
				t.Errorf("errors.Is(err, ErrBadScript) = %v, want %v (%v)", got, tt.bad, err)
			}
		})
	}
}

func TestClass_SaveAndValidate(t *testing.T) {
	c := loadClass(t, headerScript)
	if err := c.Prepare(context.Background(), config.ToolSettings{Config: map[string]any{"defaultLevel": 3}}); err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	inst, err := c.New(tools.Params{Tool: "header", Data: map[string]any{"text": "Title"}})
	if err != nil {
		t.Fatal(err)
	}
	got, err := inst.Save(context.Background())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	want := map[string]any{"text": "Title", "level": float64(3)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Save mismatch (-want +got):\n%s", diff)
	}
	if !inst.Validate(got) {
		t.Error("Validate rejected non-empty text")
	}
	if inst.Validate(map[string]any{"text": ""}) {
		t.Error("Validate accepted empty text")
	}

	u, ok := inst.(tools.Updater)
	if !ok {
		t.Fatal("instance does not implement Updater")
	}
	if err := u.Update(map[string]any{"text": "New", "level": 1}); err != nil {
		t.Fatal(err)
	}
	got, _ = inst.Save(context.Background())
	if diff := cmp.Diff(map[string]any{"text": "New", "level": float64(1)}, got); diff != "" {
		t.Errorf("Save after Update mismatch (-want +got):\n%s", diff)
	}
}

func TestClass_Defaults(t *testing.T) {
	c := loadClass(t, "return {}")
	if c.ReadOnlySupported() {
		t.Error("ReadOnlySupported defaults to true")
	}
	if c.SanitizeRules() != nil {
		t.Errorf("SanitizeRules = %v, want nil", c.SanitizeRules())
	}

	data := map[string]any{"items": []any{"a", "b"}}
	inst, _ := c.New(tools.Params{Data: data})
	got, err := inst.Save(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(data, got); diff != "" {
		t.Errorf("Save mismatch (-want +got):\n%s", diff)
	}
	if !inst.Validate(got) {
		t.Error("Validate without a validate function rejected data")
	}
}

func TestClass_PrepareError(t *testing.T) {
	c := loadClass(t, `return { prepare = function(config) error("missing api key") end }`)
	err := c.Prepare(context.Background(), config.ToolSettings{})
	if err == nil || !strings.Contains(err.Error(), "missing api key") {
		t.Errorf("Prepare error = %v", err)
	}
}

func TestSandbox(t *testing.T) {
	for _, name := range []string{"io", "os", "debug", "require", "dofile", "loadfile", "load", "loadstring"} {
		t.Run(name, func(t *testing.T) {
			st := NewState()
			defer st.Close()
			v, err := st.Load(context.Background(), "return "+name+" == nil", "globals")
			if err != nil {
				t.Fatal(err)
			}
			if v.String() != "true" {
				t.Errorf("%s is reachable from scripts", name)
			}
		})
	}
}

func TestExecutionTimeout(t *testing.T) {
	c := loadClass(t, `return { save = function(data) while true do end end }`,
		WithExecutionTimeout(50*time.Millisecond))

	inst, _ := c.New(tools.Params{})
	_, err := inst.Save(context.Background())
	if !errors.Is(err, ErrExecutionTimeout) {
		t.Errorf("Save error = %v, want ErrExecutionTimeout", err)
	}
}

func TestFactory(t *testing.T) {
	files := map[string]string{"tools/header.lua": headerScript}
	readFile := func(path string) ([]byte, error) {
		s, ok := files[path]
		if !ok {
			return nil, errors.New("not found")
		}
		return []byte(s), nil
	}
	f := Factory(WithReadFile(readFile))

	t.Run("file", func(t *testing.T) {
		class, err := f("header", config.ToolSettings{Script: "tools/header.lua"})
		if err != nil {
			t.Fatal(err)
		}
		defer class.(*Class).Close()
		if class.Toolbox().Title != "Heading" {
			t.Errorf("Title = %q", class.Toolbox().Title)
		}
	})

	t.Run("inline", func(t *testing.T) {
		class, err := f("quote", config.ToolSettings{Script: "return {\n toolbox = { title = 'Quote' } }"})
		if err != nil {
			t.Fatal(err)
		}
		defer class.(*Class).Close()
		if class.Toolbox().Title != "Quote" {
			t.Errorf("Title = %q", class.Toolbox().Title)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := f("x", config.ToolSettings{Script: "nope.lua"}); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("no script", func(t *testing.T) {
		if _, err := f("x", config.ToolSettings{}); err == nil {
			t.Error("expected error")
		}
	})
}

func TestToolsModule_LuaClass(t *testing.T) {
	cfg, err := config.Normalize(&config.Config{Tools: map[string]config.ToolSettings{
		"header": {Class: ClassName, Script: headerScript, Shortcut: "CMD+SHIFT+H"},
	}})
	if err != nil {
		t.Fatal(err)
	}
	m := tools.NewModule(cfg, tools.DefaultClasses().With(ClassName, Factory()), nil)
	if res := m.Prepare(context.Background()); !res.IsOK() {
		t.Fatalf("Prepare = %v", res)
	}
	defer m.Destroy()

	if !m.Available("header") {
		t.Fatal("header unavailable")
	}
	inst, err := m.Create("header", map[string]any{"text": "Hi"}, false)
	if err != nil {
		t.Fatal(err)
	}
	got, err := inst.Save(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]any{"text": "Hi", "level": float64(2)}, got); diff != "" {
		t.Errorf("Save mismatch (-want +got):\n%s", diff)
	}
}
