package sanitizer

import "strings"

// Option configures a Janitor.
type Option func(*Janitor)

// KeepNestedBlockElements allows block elements inside block elements.
func KeepNestedBlockElements() Option {
	return func(j *Janitor) {
		j.keepNested = true
	}
}

// Janitor cleans HTML against a compiled whitelist. It is safe for
// concurrent use.
type Janitor struct {
	rules      compiled
	keepNested bool
}

// New compiles wl. A whitelist entry that is not a boolean, an attribute
// map or a function is a configuration error.
func New(wl Whitelist, opts ...Option) (*Janitor, error) {
	rules, err := compile(wl, true)
	if err != nil {
		return nil, err
	}
	j := &Janitor{rules: rules}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// newLenient compiles wl, rejecting unusable entries instead of failing.
func newLenient(wl Whitelist) *Janitor {
	rules, _ := compile(wl, false)
	return &Janitor{rules: rules}
}

// maxCleanPasses bounds the re-parse loop in Clean.
const maxCleanPasses = 4

// Clean returns s with everything outside the whitelist removed. Markup
// that cannot be parsed yields an empty string.
//
// The cleaned markup is parsed and cleaned again until it stops changing,
// so that Clean(Clean(s)) == Clean(s) even where the parser moves content
// that cleaning left in an unusual place.
func (j *Janitor) Clean(s string) string {
	out, ok := j.cleanOnce(s)
	for pass := 1; ok && pass < maxCleanPasses; pass++ {
		next, nextOK := j.cleanOnce(out)
		if !nextOK || next == out {
			break
		}
		out = next
	}
	return out
}

func (j *Janitor) cleanOnce(s string) (string, bool) {
	root, err := Parse(s)
	if err != nil {
		return "", false
	}
	j.CleanTree(root)
	return InnerHTML(root), true
}

// CleanTree sanitizes the children of root in place. root itself is the
// top container and is never removed.
func (j *Janitor) CleanTree(root *Node) {
	j.sanitize(root)
}

// sanitize processes the children of parent until a full pass makes no
// change, restarting from the first child after each mutation. It reports
// whether anything below parent changed.
func (j *Janitor) sanitize(parent *Node) bool {
	changed := false

	for i := 0; i < len(parent.Children); {
		node := parent.Children[i]

		if j.rejectsNode(parent, node, i) {
			if node.Type == ElementNode && !contentDropped(node) {
				parent.unwrapAt(i)
			} else {
				parent.removeAt(i)
			}
			changed = true
			i = 0
			continue
		}

		if node.Type == ElementNode {
			j.filterAttrs(node)
			if j.sanitize(node) {
				// The node's children changed; its own checks may now fail.
				changed = true
				i = 0
				continue
			}
		}
		i++
	}
	return changed
}

// rejectsNode reports whether the child of parent at index i must go.
func (j *Janitor) rejectsNode(parent, node *Node, i int) bool {
	switch node.Type {
	case TextNode:
		if strings.TrimSpace(node.Data) != "" {
			return false
		}
		return isBlock(parent.previousElement(i)) || isBlock(parent.nextElement(i))
	case CommentNode:
		return true
	}

	if orphanedTablePart(parent, node) {
		return true
	}

	if isInline(node) {
		for _, c := range node.Children {
			if isBlock(c) {
				return true
			}
		}
	}

	nested := isBlock(parent) && isBlock(node) && parent.Parent != nil
	if nested && !j.keepNested {
		return true
	}

	return j.rules.ruleFor(node).kind == ruleReject
}

func (j *Janitor) filterAttrs(node *Node) {
	if len(node.Attrs) == 0 {
		return
	}
	rule := j.rules.ruleFor(node)
	kept := node.Attrs[:0]
	for _, a := range node.Attrs {
		if !rule.rejectAttr(a, node) {
			kept = append(kept, a)
		}
	}
	node.Attrs = kept
}
