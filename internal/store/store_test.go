package store

import (
	"context"
	"errors"
	"testing"

	"github.com/dshills/blockedit/internal/document"
)

func TestMemory_Contract(t *testing.T) {
	RunContract(t, NewMemory())
}

func TestMemory_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMemory()
	if err := m.Put(ctx, "x", document.Output{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Put error = %v", err)
	}
}

func TestMemory_Isolation(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	data := map[string]any{"text": "a"}
	m.Put(ctx, "x", document.Output{Blocks: []document.Block{document.NewBlock("paragraph", data)}})
	data["text"] = "changed"

	got, err := m.Get(ctx, "x")
	if err != nil {
		t.Fatal(err)
	}
	if got.Blocks[0].Data["text"] != "a" {
		t.Errorf("stored document shares maps with caller")
	}
}
