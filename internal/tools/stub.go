package tools

import (
	"context"
	"sync"
)

// Keys of a stub block's data.
const (
	StubSavedData = "savedData"
	StubTitle     = "title"
)

// Stub stands in for blocks whose tool is missing. It keeps the original
// {type, data} so saving reproduces it unchanged.
type Stub struct{}

// StubData builds the data of a stub block.
func StubData(typ string, data map[string]any, title string) map[string]any {
	return map[string]any{
		StubSavedData: map[string]any{
			"type": typ,
			"data": copyData(data),
		},
		StubTitle: title,
	}
}

// SavedBlock extracts the original block from stub data.
func SavedBlock(data map[string]any) (typ string, saved map[string]any, ok bool) {
	sd, ok := data[StubSavedData].(map[string]any)
	if !ok {
		return "", nil, false
	}
	typ, ok = sd["type"].(string)
	if !ok {
		return "", nil, false
	}
	saved, _ = sd["data"].(map[string]any)
	if saved == nil {
		saved = map[string]any{}
	}
	return typ, saved, true
}

// Toolbox implements Class.
func (Stub) Toolbox() Toolbox {
	return Toolbox{}
}

// SanitizeRules implements Class.
func (Stub) SanitizeRules() map[string]any {
	return nil
}

// ReadOnlySupported implements Class.
func (Stub) ReadOnlySupported() bool {
	return true
}

// New implements Class.
func (Stub) New(p Params) (Instance, error) {
	return &stub{data: copyData(p.Data)}, nil
}

type stub struct {
	mu   sync.Mutex
	data map[string]any
}

func (s *stub) Save(context.Context) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyData(s.data), nil
}

func (s *stub) Validate(map[string]any) bool {
	return true
}
