package tools

import (
	"context"
	"strings"
	"sync"
)

// Paragraph is the built-in text tool. Its data is {"text": html}.
//
// Config keys:
//
//	preserveBlank  keep empty paragraphs on save
type Paragraph struct{}

// Toolbox implements Class.
func (Paragraph) Toolbox() Toolbox {
	return Toolbox{Title: "Text", Icon: "¶"}
}

// SanitizeRules implements Class.
func (Paragraph) SanitizeRules() map[string]any {
	return map[string]any{
		"text": map[string]any{"br": true},
	}
}

// ReadOnlySupported implements Class.
func (Paragraph) ReadOnlySupported() bool {
	return true
}

// New implements Class.
func (Paragraph) New(p Params) (Instance, error) {
	b := &paragraph{}
	if v, ok := p.Config["preserveBlank"].(bool); ok {
		b.preserveBlank = v
	}
	b.text, _ = p.Data["text"].(string)
	return b, nil
}

type paragraph struct {
	mu            sync.Mutex
	text          string
	preserveBlank bool
}

func (b *paragraph) Save(context.Context) (map[string]any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return map[string]any{"text": b.text}, nil
}

func (b *paragraph) Validate(data map[string]any) bool {
	text, _ := data["text"].(string)
	return b.preserveBlank || strings.TrimSpace(text) != ""
}

func (b *paragraph) Update(data map[string]any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text, _ = data["text"].(string)
	return nil
}
