package lua

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	lua "github.com/yuin/gopher-lua"
)

func TestBridge_RoundTrip(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	data := map[string]any{
		"text":  "hi",
		"level": float64(2),
		"items": []any{"a", true, float64(3)},
		"meta":  map[string]any{},
	}
	got := fromLua(toLua(L, data))
	if diff := cmp.Diff(data, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestBridge_FromLua(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	if err := L.DoString(`
sparse = { [1] = "a", [3] = "c" }
cyclic = { name = "x" }
cyclic.self = cyclic
mixed = { "a", key = "b", fn = function() end }
`); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		global string
		want   any
	}{
		{"sparse", map[string]any{"1": "a", "3": "c"}},
		{"cyclic", map[string]any{"name": "x"}},
		{"mixed", map[string]any{"1": "a", "key": "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.global, func(t *testing.T) {
			got := fromLua(L.GetGlobal(tt.global))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("fromLua(%s) mismatch (-want +got):\n%s", tt.global, diff)
			}
		})
	}
}

func TestBridge_ToLuaSettings(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	settings := map[string]any{
		"count": int64(4),
		"tags":  []string{"x", "y"},
	}
	want := map[string]any{
		"count": float64(4),
		"tags":  []any{"x", "y"},
	}
	if diff := cmp.Diff(want, fromLua(toLua(L, settings))); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
}
