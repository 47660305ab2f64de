package parse

import (
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/jsonquery"
	"golang.org/x/net/html"
)

// IsNode reports whether v is a document node.
func IsNode(v any) bool {
	switch v.(type) {
	case *html.Node, *jsonquery.Node:
		return true
	}
	return false
}

// Plain replaces document nodes inside v with plain values: HTML nodes become
// their text, JSON nodes their decoded value. Maps and slices are rebuilt.
func Plain(v any) any {
	switch n := v.(type) {
	case *html.Node:
		if n == nil {
			return nil
		}
		return htmlquery.InnerText(n)
	case *jsonquery.Node:
		if n == nil {
			return nil
		}
		return n.Value()
	case []any:
		out := make([]any, len(n))
		for i, e := range n {
			out[i] = Plain(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, e := range n {
			out[k] = Plain(e)
		}
		return out
	default:
		return v
	}
}

// Text returns the text content of v.
func Text(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case string:
		return n
	case *html.Node:
		if n == nil {
			return ""
		}
		return htmlquery.InnerText(n)
	case *jsonquery.Node:
		if n == nil {
			return ""
		}
		return n.InnerText()
	default:
		return fmt.Sprint(v)
	}
}

// Attr returns attribute name of an HTML element or field name of an object.
func Attr(v any, name string) string {
	switch n := v.(type) {
	case *html.Node:
		if n == nil {
			return ""
		}
		return htmlquery.SelectAttr(n, name)
	case *jsonquery.Node:
		if n == nil {
			return ""
		}
		if c := n.SelectElement(name); c != nil {
			return c.InnerText()
		}
		return ""
	case map[string]any:
		if f, ok := n[name]; ok && f != nil {
			return fmt.Sprint(f)
		}
		return ""
	default:
		return ""
	}
}

// OuterHTML renders an HTML node including its own tag. Other values fall
// back to Text.
func OuterHTML(v any) string {
	if n, ok := v.(*html.Node); ok && n != nil {
		return htmlquery.OutputHTML(n, true)
	}
	return Text(v)
}

// TrimText trims surrounding whitespace of a string or of a node's text.
// Other values are returned unchanged.
func TrimText(v any) any {
	switch n := v.(type) {
	case string:
		return strings.TrimSpace(n)
	case *html.Node, *jsonquery.Node:
		return strings.TrimSpace(Text(n))
	default:
		return v
	}
}
