package sanitizer

import "strings"

// voidElements never have content or an end tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// rawTextElements keep their text unescaped.
var rawTextElements = map[string]bool{
	"style": true, "script": true, "xmp": true, "iframe": true,
	"noembed": true, "noframes": true, "plaintext": true,
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", " ", "&nbsp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", " ", "&nbsp;", `"`, "&quot;")
)

// InnerHTML serializes the children of n the way a browser's innerHTML
// does.
func InnerHTML(n *Node) string {
	var sb strings.Builder
	for _, c := range n.Children {
		writeNode(&sb, c)
	}
	return sb.String()
}

func writeNode(sb *strings.Builder, n *Node) {
	switch n.Type {
	case TextNode:
		if n.Parent != nil && rawTextElements[n.Parent.Tag] {
			sb.WriteString(n.Data)
			return
		}
		sb.WriteString(textEscaper.Replace(n.Data))
	case CommentNode:
		sb.WriteString("<!--")
		sb.WriteString(n.Data)
		sb.WriteString("-->")
	case ElementNode:
		sb.WriteByte('<')
		sb.WriteString(n.Tag)
		for _, a := range n.Attrs {
			sb.WriteByte(' ')
			sb.WriteString(a.Key)
			sb.WriteString(`="`)
			sb.WriteString(attrEscaper.Replace(a.Val))
			sb.WriteByte('"')
		}
		sb.WriteByte('>')
		if voidElements[n.Tag] {
			return
		}
		for _, c := range n.Children {
			writeNode(sb, c)
		}
		sb.WriteString("</")
		sb.WriteString(n.Tag)
		sb.WriteByte('>')
	}
}
