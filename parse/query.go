package parse

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/jsonquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

type queryKind int

const (
	kindXPath queryKind = iota
	kindCSS
)

// Query is a compiled path query. XPath queries work on HTML and JSON
// documents, CSS selectors on HTML only.
type Query struct {
	source string
	kind   queryKind
	expr   *xpath.Expr
}

func CompileXPath(source string) (*Query, error) {
	expr, err := xpath.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile xpath %q: %w", source, err)
	}
	return &Query{source: source, kind: kindXPath, expr: expr}, nil
}

func CompileCSS(source string) (*Query, error) {
	if source == "" {
		return nil, fmt.Errorf("compile selector: empty selector")
	}
	return &Query{source: source, kind: kindCSS}, nil
}

func (q *Query) String() string { return q.source }

// Select evaluates the query against v. ok is false when v is not a document
// node the query can run on; the caller then keeps v unchanged. Attribute and
// text matches are returned as strings, scalar XPath results (count(), string())
// as a single match. A failing evaluation yields no matches.
//
// For an element inside a document, v is the context node: relative paths
// start at v and absolute paths at the document root.
func (q *Query) Select(v any) (matches []any, ok bool) {
	switch n := v.(type) {
	case *html.Node:
		if n == nil {
			return nil, false
		}
		if q.kind == kindCSS {
			return selectCSS(n, q.source), true
		}
		return q.evaluate(htmlNavigator(n), func(nav xpath.NodeNavigator) any {
			return nav.(*htmlquery.NodeNavigator).Current()
		}), true
	case *jsonquery.Node:
		if n == nil || q.kind == kindCSS {
			return nil, false
		}
		return q.evaluate(jsonNavigator(n), func(nav xpath.NodeNavigator) any {
			return nav.(*jsonquery.NodeNavigator).Current()
		}), true
	default:
		return nil, false
	}
}

// htmlNavigator returns a navigator over the whole document of n, positioned
// at n.
func htmlNavigator(n *html.Node) xpath.NodeNavigator {
	var steps []int
	top := n
	for top.Parent != nil {
		i := 0
		for s := top.PrevSibling; s != nil; s = s.PrevSibling {
			i++
		}
		steps = append(steps, i)
		top = top.Parent
	}
	return descend(htmlquery.CreateXPathNavigator(top), steps)
}

func jsonNavigator(n *jsonquery.Node) xpath.NodeNavigator {
	var steps []int
	top := n
	for top.Parent != nil {
		i := 0
		for s := top.PrevSibling; s != nil; s = s.PrevSibling {
			i++
		}
		steps = append(steps, i)
		top = top.Parent
	}
	return descend(jsonquery.CreateXPathNavigator(top), steps)
}

// descend walks nav down a path of sibling indexes recorded leaf first.
func descend(nav xpath.NodeNavigator, steps []int) xpath.NodeNavigator {
	for i := len(steps) - 1; i >= 0; i-- {
		nav.MoveToChild()
		for k := 0; k < steps[i]; k++ {
			nav.MoveToNext()
		}
	}
	return nav
}

func (q *Query) evaluate(root xpath.NodeNavigator, current func(xpath.NodeNavigator) any) (matches []any) {
	defer func() {
		if r := recover(); r != nil {
			matches = nil
		}
	}()
	switch res := q.expr.Evaluate(root).(type) {
	case *xpath.NodeIterator:
		for res.MoveNext() {
			nav := res.Current()
			switch nav.NodeType() {
			case xpath.AttributeNode, xpath.TextNode, xpath.CommentNode:
				matches = append(matches, nav.Value())
			default:
				matches = append(matches, current(nav))
			}
		}
	case nil:
	default:
		matches = append(matches, res)
	}
	return matches
}

func selectCSS(n *html.Node, selector string) []any {
	sel := goquery.NewDocumentFromNode(n).Find(selector)
	matches := make([]any, 0, sel.Length())
	for _, m := range sel.Nodes {
		matches = append(matches, m)
	}
	return matches
}
