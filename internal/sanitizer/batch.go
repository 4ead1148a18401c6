package sanitizer

import (
	"github.com/dshills/blockedit/internal/document"
)

// BaseWhitelist returns the whitelist tool field rules are merged over:
// wl plus line breaks.
func BaseWhitelist(wl Whitelist) Whitelist {
	out := make(Whitelist, len(wl)+2)
	for k, v := range wl {
		out[k] = v
	}
	out["br"] = true
	out["wbr"] = true
	return out
}

// MergeRules returns a copy of a tool's field rules in which every
// attribute-map rule is laid over base. Other rules are kept as they are.
func MergeRules(base Whitelist, toolRules map[string]any) map[string]any {
	out := make(map[string]any, len(toolRules))
	for field, rule := range toolRules {
		m, ok := asMap(rule)
		if !ok {
			out[field] = rule
			continue
		}
		merged := make(Whitelist, len(base)+len(m))
		for k, v := range base {
			merged[k] = v
		}
		for k, v := range m {
			merged[k] = v
		}
		out[field] = merged
	}
	return out
}

// SanitizeBlocks cleans the data of every block with the field rules
// rulesFor returns for its tool. Blocks of tools without rules are returned
// unchanged. The input slice and its data are not modified.
func SanitizeBlocks(blocks []document.ValidatedBlock, rulesFor func(tool string) map[string]any) []document.ValidatedBlock {
	out := make([]document.ValidatedBlock, len(blocks))
	for i, b := range blocks {
		out[i] = b
		rules := rulesFor(b.Tool)
		if len(rules) == 0 || b.Data == nil {
			continue
		}
		if cleaned, ok := DeepClean(b.Data, rules).(map[string]any); ok {
			out[i].Data = cleaned
		}
	}
	return out
}

// DeepClean walks data and cleans every string leaf. A map entry uses the
// rule named after its key when there is one, otherwise the rule that
// applied to the map. Array elements share the array's rule.
func DeepClean(data any, rule any) any {
	switch v := data.(type) {
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = DeepClean(item, rule)
		}
		return out
	case map[string]any:
		rules, isMap := asMap(rule)
		out := make(map[string]any, len(v))
		for k, item := range v {
			sub := rule
			if isMap {
				if r, ok := rules[k]; ok && isRule(r) {
					sub = r
				}
			}
			out[k] = DeepClean(item, sub)
		}
		return out
	case string:
		return cleanOne(v, rule)
	default:
		return data
	}
}

// cleanOne applies a single rule to a string. Map rules are whitelists,
// false strips all markup, anything else leaves the string as it is.
func cleanOne(s string, rule any) string {
	if m, ok := asMap(rule); ok {
		return newLenient(Whitelist(m)).Clean(s)
	}
	if keep, ok := rule.(bool); ok && !keep {
		return newLenient(nil).Clean(s)
	}
	return s
}

func isRule(v any) bool {
	switch v.(type) {
	case bool, TagFunc, func(*Node) any, AttrPredicate, func(string, *Node) bool:
		return true
	}
	_, ok := asMap(v)
	return ok
}
