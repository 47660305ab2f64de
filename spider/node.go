// Package spider holds the crawl description built from markup: typed nodes
// for requests, extraction rules and exports, the tag registry that
// constructs them, and the tree builder that wires them together.
package spider

// Tag names of the markup vocabulary.
const (
	TagRequest     = "request"
	TagRequestList = "request-list"
	TagList        = "list"
	TagItem        = "item"
	TagExport      = "export"
	TagHeader      = "header"
	TagVariable    = "variable"
)

// Handle identifies a node inside its Tree. Nodes created while crawling are
// not part of any tree and carry NoHandle.
type Handle int

const NoHandle Handle = -1

// Node is implemented only by the node types of this package.
type Node interface {
	Tag() string
	Handle() Handle
	Children() []Node
	base() *nodeBase
}

type nodeBase struct {
	tag      string
	handle   Handle
	parent   Handle
	children []Node
}

func newBase(tag string) nodeBase {
	return nodeBase{tag: tag, handle: NoHandle, parent: NoHandle}
}

func (b *nodeBase) Tag() string      { return b.tag }
func (b *nodeBase) Handle() Handle   { return b.handle }
func (b *nodeBase) Children() []Node { return b.children }
func (b *nodeBase) base() *nodeBase  { return b }

func (b *nodeBase) extracts() []*Extract {
	var out []*Extract
	for _, c := range b.children {
		if e, ok := c.(*Extract); ok {
			out = append(out, e)
		}
	}
	return out
}

func (b *nodeBase) exports() []*Export {
	var out []*Export
	for _, c := range b.children {
		if e, ok := c.(*Export); ok {
			out = append(out, e)
		}
	}
	return out
}

func (b *nodeBase) headers() []*Header {
	var out []*Header
	for _, c := range b.children {
		if h, ok := c.(*Header); ok {
			out = append(out, h)
		}
	}
	return out
}

// detachedChildren builds the child list of a node generated at crawl time.
// The children keep their place in the static tree.
func detachedChildren[T Node](nodes []T) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n)
	}
	return out
}
