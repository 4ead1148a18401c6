package sanitizer

import (
	"sync"

	"github.com/dshills/blockedit/internal/document"
	"github.com/dshills/blockedit/internal/module"
)

// RulesProvider returns the field rules a tool declares for its data.
type RulesProvider interface {
	SanitizeRules(tool string) map[string]any
}

// Sanitizer is the editor module cleaning tool output and host markup.
type Sanitizer struct {
	base    Whitelist
	janitor *Janitor

	mu    sync.Mutex
	tools RulesProvider
	cache map[string]map[string]any
}

// NewModule creates the module for the configured whitelist.
func NewModule(wl Whitelist) (*Sanitizer, error) {
	j, err := New(wl)
	if err != nil {
		return nil, err
	}
	return &Sanitizer{
		base:    BaseWhitelist(wl),
		janitor: j,
		cache:   make(map[string]map[string]any),
	}, nil
}

// Name implements module.Module.
func (s *Sanitizer) Name() module.Name {
	return module.Sanitizer
}

// Wire implements module.Wirer.
func (s *Sanitizer) Wire(sib module.Siblings) {
	if p, ok := module.Lookup[RulesProvider](sib, module.Tools); ok {
		s.mu.Lock()
		s.tools = p
		s.mu.Unlock()
	}
}

// Clean cleans html with the configured whitelist.
func (s *Sanitizer) Clean(html string) string {
	return s.janitor.Clean(html)
}

// CleanWith cleans html with a caller supplied whitelist.
func (s *Sanitizer) CleanWith(html string, wl Whitelist) (string, error) {
	j, err := New(wl)
	if err != nil {
		return "", err
	}
	return j.Clean(html), nil
}

// RulesFor returns the merged field rules of tool, or nil when the tool
// declares none.
func (s *Sanitizer) RulesFor(tool string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.cache[tool]; ok {
		return r
	}
	if s.tools == nil {
		return nil
	}
	raw := s.tools.SanitizeRules(tool)
	if len(raw) == 0 {
		s.cache[tool] = nil
		return nil
	}
	merged := MergeRules(s.base, raw)
	s.cache[tool] = merged
	return merged
}

// SanitizeBlocks cleans a whole save batch.
func (s *Sanitizer) SanitizeBlocks(blocks []document.ValidatedBlock) []document.ValidatedBlock {
	return SanitizeBlocks(blocks, s.RulesFor)
}
