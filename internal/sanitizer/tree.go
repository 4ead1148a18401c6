package sanitizer

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NodeType is the kind of a Node.
type NodeType int

const (
	TextNode NodeType = iota
	ElementNode
	CommentNode
)

// Attr is an element attribute.
type Attr struct {
	Key string
	Val string
}

// Node is an element, text or comment of a parsed fragment.
type Node struct {
	Type NodeType

	// Tag is the lower-case tag name of an element.
	Tag string

	// Data is the content of a text or comment node.
	Data string

	Attrs    []Attr
	Parent   *Node
	Children []*Node
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Text returns the concatenated text content of n.
func (n *Node) Text() string {
	var sb strings.Builder
	n.writeText(&sb)
	return sb.String()
}

func (n *Node) writeText(sb *strings.Builder) {
	if n.Type == TextNode {
		sb.WriteString(n.Data)
		return
	}
	for _, c := range n.Children {
		c.writeText(sb)
	}
}

func (n *Node) indexOf(child *Node) int {
	for i, c := range n.Children {
		if c == child {
			return i
		}
	}
	return -1
}

// removeAt detaches the child at i.
func (n *Node) removeAt(i int) {
	n.Children[i].Parent = nil
	n.Children = append(n.Children[:i], n.Children[i+1:]...)
}

// unwrapAt replaces the child at i with its own children.
func (n *Node) unwrapAt(i int) {
	child := n.Children[i]
	promoted := child.Children
	for _, c := range promoted {
		c.Parent = n
	}
	child.Children = nil
	child.Parent = nil

	out := make([]*Node, 0, len(n.Children)-1+len(promoted))
	out = append(out, n.Children[:i]...)
	out = append(out, promoted...)
	out = append(out, n.Children[i+1:]...)
	n.Children = out
}

// previousElement returns the nearest element sibling before index i.
func (n *Node) previousElement(i int) *Node {
	for j := i - 1; j >= 0; j-- {
		if n.Children[j].Type == ElementNode {
			return n.Children[j]
		}
	}
	return nil
}

// nextElement returns the nearest element sibling after index i.
func (n *Node) nextElement(i int) *Node {
	for j := i + 1; j < len(n.Children); j++ {
		if n.Children[j].Type == ElementNode {
			return n.Children[j]
		}
	}
	return nil
}

var blockElements = map[string]bool{
	"p": true, "li": true, "td": true, "th": true, "div": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"pre": true,
}

var inlineElements = map[string]bool{
	"a": true, "b": true, "strong": true, "i": true, "em": true,
	"sub": true, "sup": true, "u": true, "strike": true,
}

// tableParts only parse inside a table; anywhere else the parser drops
// the tag and keeps the content.
var tableParts = map[string]bool{
	"caption": true, "col": true, "colgroup": true,
	"tbody": true, "thead": true, "tfoot": true,
	"tr": true, "td": true, "th": true,
}

// orphanedTablePart reports whether node is a table part with no table
// above it.
func orphanedTablePart(parent, node *Node) bool {
	if node.Type != ElementNode || !tableParts[node.Tag] {
		return false
	}
	for p := parent; p != nil; p = p.Parent {
		if p.Type == ElementNode && p.Tag == "table" {
			return false
		}
	}
	return true
}

func isBlock(n *Node) bool {
	return n != nil && n.Type == ElementNode && blockElements[n.Tag]
}

func isInline(n *Node) bool {
	return n != nil && n.Type == ElementNode && inlineElements[n.Tag]
}

// contentDropped reports whether an element's content is discarded along
// with it.
func contentDropped(n *Node) bool {
	return n.Tag == "script" || n.Tag == "style"
}

// Parse parses s as the content of a div into a detached tree whose root
// is that div.
func Parse(s string) (*Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(s), ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing fragment: %w", err)
	}

	root := &Node{Type: ElementNode, Tag: "div"}
	for _, hn := range nodes {
		if n := convert(hn); n != nil {
			n.Parent = root
			root.Children = append(root.Children, n)
		}
	}
	return root, nil
}

func convert(hn *html.Node) *Node {
	var n *Node
	switch hn.Type {
	case html.TextNode:
		return &Node{Type: TextNode, Data: hn.Data}
	case html.CommentNode:
		return &Node{Type: CommentNode, Data: hn.Data}
	case html.ElementNode:
		n = &Node{Type: ElementNode, Tag: strings.ToLower(hn.Data)}
		for _, a := range hn.Attr {
			key := a.Key
			if a.Namespace != "" {
				key = a.Namespace + ":" + key
			}
			n.Attrs = append(n.Attrs, Attr{Key: key, Val: a.Val})
		}
	default:
		return nil
	}

	for c := hn.FirstChild; c != nil; c = c.NextSibling {
		if child := convert(c); child != nil {
			child.Parent = n
			n.Children = append(n.Children, child)
		}
	}
	return n
}
