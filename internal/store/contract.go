package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/blockedit/internal/document"
)

// RunContract checks that s behaves as a Store. s must start empty.
func RunContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	doc := document.Output{
		Time: 1700000000000,
		Blocks: []document.Block{
			document.NewBlock("paragraph", map[string]any{"text": "Hello <b>world</b>"}),
			document.NewBlock("list", map[string]any{"items": []any{"a", "b"}, "ordered": true}),
		},
		Version: document.Version,
	}

	t.Run("put and get", func(t *testing.T) {
		if err := s.Put(ctx, "doc-1", doc); err != nil {
			t.Fatalf("Put: %v", err)
		}
		got, err := s.Get(ctx, "doc-1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if diff := cmp.Diff(doc, got); diff != "" {
			t.Errorf("Get mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("replace", func(t *testing.T) {
		next := doc
		next.Blocks = doc.Blocks[:1]
		if err := s.Put(ctx, "doc-1", next); err != nil {
			t.Fatalf("Put: %v", err)
		}
		got, err := s.Get(ctx, "doc-1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if len(got.Blocks) != 1 {
			t.Errorf("Blocks = %d, want 1", len(got.Blocks))
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := s.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get error = %v, want ErrNotFound", err)
		}
	})

	t.Run("list", func(t *testing.T) {
		if err := s.Put(ctx, "doc-0", doc); err != nil {
			t.Fatal(err)
		}
		ids, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if diff := cmp.Diff([]string{"doc-0", "doc-1"}, ids); diff != "" {
			t.Errorf("List mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("delete", func(t *testing.T) {
		for _, id := range []string{"doc-0", "doc-1", "never-stored"} {
			if err := s.Delete(ctx, id); err != nil {
				t.Fatalf("Delete(%s): %v", id, err)
			}
		}
		if _, err := s.Get(ctx, "doc-1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get after Delete error = %v, want ErrNotFound", err)
		}
		ids, err := s.List(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(ids) != 0 {
			t.Errorf("List after Delete = %v", ids)
		}
	})
}
