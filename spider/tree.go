package spider

import (
	"fmt"
)

// Kind tells which variant a Unit holds.
type Kind int

const (
	KindRequest Kind = iota + 1
	KindBatch
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return TagRequest
	case KindBatch:
		return TagRequestList
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Unit is one entry of the crawl queue: a single request or a batch.
type Unit struct {
	Kind    Kind
	Request *Request
	List    *RequestList
}

func RequestUnit(r *Request) Unit   { return Unit{Kind: KindRequest, Request: r} }
func BatchUnit(l *RequestList) Unit   { return Unit{Kind: KindBatch, List: l} }

// Tree is the result of building a markup document. It owns every static
// node, addressed by Handle, and the globally registered extracts; it is the
// context a crawl runs against.
type Tree struct {
	nodes   []Node
	roots   []Node
	seeds   []Unit
	globals map[string]*Extract
	exports []*Export
}

func newTree() *Tree {
	return &Tree{globals: make(map[string]*Extract)}
}

func (t *Tree) Roots() []Node { return t.roots }

func (t *Tree) Len() int { return len(t.nodes) }

func (t *Tree) Node(h Handle) Node {
	if h < 0 || int(h) >= len(t.nodes) {
		return nil
	}
	return t.nodes[h]
}

// Parent returns the parent of n, or nil for roots and generated nodes.
func (t *Tree) Parent(n Node) Node {
	return t.Node(n.base().parent)
}

// Global returns the extract registered under id.
func (t *Tree) Global(id string) (*Extract, bool) {
	e, ok := t.globals[id]
	return e, ok
}

// Exports lists every export node in document order.
func (t *Tree) Exports() []*Export { return t.exports }

// Seeds returns the statically declared requests and batches in document
// order.
func (t *Tree) Seeds() []Unit {
	out := make([]Unit, len(t.seeds))
	copy(out, t.seeds)
	return out
}

// Builder assembles a Tree from ordered tag events. The first error is
// sticky: later events return it and Tree reports it.
type Builder struct {
	registry *Registry
	tree     *Tree
	stack    []Node
	vars     map[string]*Variable
	err      error
}

func NewBuilder(registry *Registry) *Builder {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Builder{
		registry: registry,
		tree:     newTree(),
		vars:     make(map[string]*Variable),
	}
}

func (b *Builder) StartTag(tag string, attrs Attrs) error {
	if b.err != nil {
		return b.err
	}
	expanded := make(Attrs, len(attrs))
	for k, v := range attrs {
		expanded[k] = substitute(v, b.vars)
	}
	n, err := b.registry.New(tag, expanded)
	if err != nil {
		return b.fail(err)
	}

	if e, ok := n.(*Extract); ok && e.ID != "" {
		if _, dup := b.tree.globals[e.ID]; dup {
			return b.fail(&DuplicateGlobalIDError{ID: e.ID})
		}
		b.tree.globals[e.ID] = e
	}

	base := n.base()
	base.handle = Handle(len(b.tree.nodes))
	b.tree.nodes = append(b.tree.nodes, n)
	if len(b.stack) > 0 {
		parent := b.stack[len(b.stack)-1].base()
		base.parent = parent.handle
		parent.children = append(parent.children, n)
	} else {
		b.tree.roots = append(b.tree.roots, n)
	}

	switch v := n.(type) {
	case *Request:
		b.tree.seeds = append(b.tree.seeds, RequestUnit(v))
	case *RequestList:
		b.tree.seeds = append(b.tree.seeds, BatchUnit(v))
	case *Export:
		b.tree.exports = append(b.tree.exports, v)
	case *Variable:
		b.vars[v.Name] = v
	}

	b.stack = append(b.stack, n)
	return nil
}

// EndTag closes the innermost open node.
func (b *Builder) EndTag(tag string) error {
	if b.err != nil {
		return b.err
	}
	if len(b.stack) == 0 {
		return b.fail(fmt.Errorf("</%s>: %w", tag, ErrUnbalancedEndTag))
	}
	b.stack = b.stack[:len(b.stack)-1]
	return nil
}

// Tree returns the built tree. Tags still open are closed implicitly.
func (b *Builder) Tree() (*Tree, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.stack = nil
	return b.tree, nil
}

func (b *Builder) fail(err error) error {
	b.err = err
	return err
}
