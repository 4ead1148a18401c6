package sanitizer

import (
	"fmt"
	"strings"

	"github.com/dshills/blockedit/internal/errdefs"
)

// Whitelist maps lower-case tag names to rules. A rule is one of:
//
//   - true: keep the tag with all its attributes
//   - false: reject the tag (same as absent)
//   - Attrs or map[string]any: keep the tag, filter its attributes
//   - TagFunc: decide per node, returning one of the above
type Whitelist map[string]any

// Attrs maps attribute names to rules. A rule is one of:
//
//   - true: keep the attribute
//   - false: drop it (same as absent)
//   - string: keep it only when its value equals the string
//   - AttrPredicate: keep it when the predicate returns true
type Attrs map[string]any

// AttrPredicate decides whether an attribute value may stay on node.
type AttrPredicate func(value string, node *Node) bool

// TagFunc computes the rule for one element.
type TagFunc func(node *Node) any

type ruleKind int

const (
	ruleReject ruleKind = iota
	ruleKeepAll
	ruleAttrs
	ruleFunc
)

type attrKind int

const (
	attrReject attrKind = iota
	attrKeep
	attrEquals
	attrFunc
)

type attrRule struct {
	kind  attrKind
	value string
	fn    AttrPredicate
}

type tagRule struct {
	kind  ruleKind
	attrs map[string]attrRule
	fn    TagFunc
}

type compiled map[string]tagRule

// compile validates wl. With strict unset, unusable entries reject their
// tag or attribute instead of failing.
func compile(wl Whitelist, strict bool) (compiled, error) {
	out := make(compiled, len(wl))
	for tag, v := range wl {
		name := strings.ToLower(tag)
		r, err := compileTag(v)
		if err != nil {
			if strict {
				return nil, &errdefs.ConfigurationError{Field: "sanitizer." + name, Err: err}
			}
			r = tagRule{kind: ruleReject}
		}
		out[name] = r
	}
	return out, nil
}

func compileTag(v any) (tagRule, error) {
	switch rule := v.(type) {
	case bool:
		if rule {
			return tagRule{kind: ruleKeepAll}, nil
		}
		return tagRule{kind: ruleReject}, nil
	case TagFunc:
		if rule == nil {
			return tagRule{}, fmt.Errorf("nil tag function")
		}
		return tagRule{kind: ruleFunc, fn: rule}, nil
	case func(*Node) any:
		if rule == nil {
			return tagRule{}, fmt.Errorf("nil tag function")
		}
		return tagRule{kind: ruleFunc, fn: rule}, nil
	}

	attrs, ok := asMap(v)
	if !ok {
		return tagRule{}, fmt.Errorf("rule must be a boolean, an attribute map or a function, got %T", v)
	}
	compiledAttrs, err := compileAttrs(attrs)
	if err != nil {
		return tagRule{}, err
	}
	return tagRule{kind: ruleAttrs, attrs: compiledAttrs}, nil
}

func compileAttrs(attrs map[string]any) (map[string]attrRule, error) {
	out := make(map[string]attrRule, len(attrs))
	for name, v := range attrs {
		key := strings.ToLower(name)
		switch rule := v.(type) {
		case bool:
			if rule {
				out[key] = attrRule{kind: attrKeep}
			} else {
				out[key] = attrRule{kind: attrReject}
			}
		case string:
			out[key] = attrRule{kind: attrEquals, value: rule}
		case AttrPredicate:
			out[key] = attrRule{kind: attrFunc, fn: rule}
		case func(string, *Node) bool:
			out[key] = attrRule{kind: attrFunc, fn: rule}
		default:
			return nil, fmt.Errorf("attribute %q: rule must be a boolean, a string or a function, got %T", name, v)
		}
	}
	return out, nil
}

// asMap accepts the map shapes an attribute rule may arrive in.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case Attrs:
		return m, true
	case map[string]any:
		return m, true
	case Whitelist:
		return m, true
	case map[string]bool:
		out := make(map[string]any, len(m))
		for k, b := range m {
			out[k] = b
		}
		return out, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out, true
	default:
		return nil, false
	}
}

// ruleFor resolves the rule for an element, evaluating tag functions.
func (c compiled) ruleFor(n *Node) tagRule {
	r, ok := c[n.Tag]
	if !ok {
		return tagRule{kind: ruleReject}
	}
	if r.kind != ruleFunc {
		return r
	}
	dyn, err := compileTag(r.fn(n))
	if err != nil || dyn.kind == ruleFunc {
		return tagRule{kind: ruleReject}
	}
	return dyn
}

func (r tagRule) rejectAttr(a Attr, n *Node) bool {
	if r.kind == ruleKeepAll {
		return false
	}
	ar, ok := r.attrs[strings.ToLower(a.Key)]
	if !ok {
		return true
	}
	switch ar.kind {
	case attrKeep:
		return false
	case attrEquals:
		return ar.value != a.Val
	case attrFunc:
		return !ar.fn(a.Val, n)
	default:
		return true
	}
}
