package spider

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/yosida95/uritemplate/v3"

	"github.com/wenzapen/tagcrawl/parse"
	"github.com/wenzapen/tagcrawl/script"
)

// Constructor validates the attributes of a tag into a node.
type Constructor func(attrs Attrs) (Node, error)

// Registry maps tag names to constructors.
type Registry struct {
	constructors map[string]Constructor
}

// NewRegistry returns a registry holding the full tag vocabulary.
func NewRegistry() *Registry {
	r := &Registry{constructors: make(map[string]Constructor)}
	r.Register(TagRequest, newRequest)
	r.Register(TagRequestList, newRequestList)
	r.Register(TagList, func(a Attrs) (Node, error) { return newExtract(TagList, a) })
	r.Register(TagItem, func(a Attrs) (Node, error) { return newExtract(TagItem, a) })
	r.Register(TagExport, newExport)
	r.Register(TagHeader, newHeader)
	r.Register(TagVariable, newVariable)
	return r
}

func (r *Registry) Register(tag string, c Constructor) {
	r.constructors[tag] = c
}

func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.constructors))
	for t := range r.constructors {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// New constructs the node for tag.
func (r *Registry) New(tag string, attrs Attrs) (Node, error) {
	c, ok := r.constructors[tag]
	if !ok {
		return nil, &UnknownTagError{Tag: tag}
	}
	for _, reserved := range []string{"parent", "children"} {
		if attrs.Has(reserved) {
			return nil, &ReservedAttributeError{Tag: tag, Attr: reserved}
		}
	}
	return c(attrs)
}

func responseType(tag, attr string, attrs Attrs) (string, error) {
	t := strings.ToLower(strings.TrimSpace(attrs.Get(attr, parse.FormatHTML)))
	if !parse.ValidFormat(t) {
		return "", &InvalidAttributeError{Tag: tag, Attr: attr, Value: t, Err: errors.New("want html or json")}
	}
	return t, nil
}

func compileExpr(tag, attr string, attrs Attrs) (*script.Program, error) {
	src, ok := attrs[attr]
	if !ok || strings.TrimSpace(src) == "" {
		return nil, nil
	}
	p, err := script.Compile(src)
	if err != nil {
		return nil, &InvalidAttributeError{Tag: tag, Attr: attr, Value: src, Err: err}
	}
	return p, nil
}

func newRequest(a Attrs) (Node, error) {
	u, err := a.Required(TagRequest, "url")
	if err != nil {
		return nil, err
	}
	typ, err := responseType(TagRequest, "type", a)
	if err != nil {
		return nil, err
	}
	return &Request{
		nodeBase:    newBase(TagRequest),
		URL:         strings.TrimSpace(u),
		Method:      a.Method("method"),
		Type:        typ,
		ParserNames: a.List("parsers"),
	}, nil
}

func newRequestList(a Attrs) (Node, error) {
	const tag = TagRequestList
	typ, err := responseType(tag, "type", a)
	if err != nil {
		return nil, err
	}
	l := &RequestList{
		nodeBase:    newBase(tag),
		Method:      a.Method("method"),
		Type:        typ,
		ParserNames: a.List("parsers"),
		Concat:      a.List("concat"),
	}

	switch {
	case a.Has("url-template"):
		raw, err := a.Required(tag, "url-template")
		if err != nil {
			return nil, err
		}
		if l.Template, err = uritemplate.New(strings.TrimSpace(raw)); err != nil {
			return nil, &InvalidAttributeError{Tag: tag, Attr: "url-template", Value: raw, Err: err}
		}
		if l.Start, err = a.Int(tag, "start", 1); err != nil {
			return nil, err
		}
		if a.Has("end") {
			if l.End, err = a.Int(tag, "end", 0); err != nil {
				return nil, err
			}
			l.HasEnd = true
		}
		if src := strings.TrimSpace(a.Get("pagination-xpath", "")); src != "" {
			if l.Pagination, err = parse.CompileXPath(src); err != nil {
				return nil, &InvalidAttributeError{Tag: tag, Attr: "pagination-xpath", Value: src, Err: err}
			}
		}
	case a.Has("list"):
		p, err := compileExpr(tag, "list", a)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, &MissingAttributeError{Tag: tag, Attr: "list"}
		}
		v, err := p.Run(script.Env{})
		if err != nil {
			return nil, &InvalidAttributeError{Tag: tag, Attr: "list", Value: p.String(), Err: err}
		}
		l.List = toList(v)
		if l.GetURL, err = compileExpr(tag, "get-url", a); err != nil {
			return nil, err
		}
	default:
		return nil, &MissingAttributeError{Tag: tag, Attr: "list"}
	}
	return l, nil
}

func newExtract(tag string, a Attrs) (Node, error) {
	e := &Extract{
		nodeBase: newBase(tag),
		ID:       strings.TrimSpace(a.Get("id", "")),
		Name:     strings.TrimSpace(a.Get("name", "")),
		Key:      strings.TrimSpace(a.Get("key", "")),
		Many:     tag == TagList,
	}
	if e.ID == "" && e.Name == "" {
		return nil, &MissingAttributeError{Tag: tag, Attr: "name"}
	}

	var err error
	if e.Query, err = query(tag, a); err != nil {
		return nil, err
	}
	if tag == TagList && e.Query == nil {
		return nil, &MissingAttributeError{Tag: tag, Attr: "xpath"}
	}
	if tag == TagItem {
		if e.Many, err = a.Flag(tag, "many"); err != nil {
			return nil, err
		}
	}
	if !e.Many {
		for _, attr := range []string{"get-items", "key", "filter"} {
			if a.Has(attr) {
				return nil, &InvalidAttributeError{Tag: tag, Attr: attr, Value: a[attr], Err: errors.New("needs a list or many item")}
			}
		}
	}
	if e.Strip, err = a.Flag(tag, "strip"); err != nil {
		return nil, err
	}
	if e.Global, err = a.Flag(tag, "global"); err != nil {
		return nil, err
	}
	if e.Global && e.ID == "" {
		return nil, &MissingAttributeError{Tag: tag, Attr: "id"}
	}

	for _, x := range []struct {
		attr string
		dst  **script.Program
	}{
		{"filter", &e.Filter},
		{"get-items", &e.Items},
		{"parse", &e.Post},
		{"follow-up-url", &e.FollowUp.URL},
	} {
		if *x.dst, err = compileExpr(tag, x.attr, a); err != nil {
			return nil, err
		}
	}

	e.FollowUp.Parsers = a.List("follow-up-parsers")
	e.FollowUp.Concat = a.List("follow-up-concat")
	e.FollowUp.Method = a.Method("follow-up-method")
	if e.FollowUp.Type, err = responseType(tag, "follow-up-type", a); err != nil {
		return nil, err
	}
	if (e.FollowUp.URL == nil) != (len(e.FollowUp.Parsers) == 0) {
		attr := "follow-up-parsers"
		if e.FollowUp.URL == nil {
			attr = "follow-up-url"
		}
		return nil, &InvalidAttributeError{Tag: tag, Attr: attr, Value: a.Get(attr, ""),
			Err: errors.New("follow-up-url and follow-up-parsers must be set together")}
	}
	return e, nil
}

func query(tag string, a Attrs) (*parse.Query, error) {
	if src := strings.TrimSpace(a.Get("xpath", "")); src != "" {
		q, err := parse.CompileXPath(src)
		if err != nil {
			return nil, &InvalidAttributeError{Tag: tag, Attr: "xpath", Value: src, Err: err}
		}
		return q, nil
	}
	if src := strings.TrimSpace(a.Get("selector", "")); src != "" {
		q, err := parse.CompileCSS(src)
		if err != nil {
			return nil, &InvalidAttributeError{Tag: tag, Attr: "selector", Value: src, Err: err}
		}
		return q, nil
	}
	return nil, nil
}

func newExport(a Attrs) (Node, error) {
	e := &Export{nodeBase: newBase(TagExport)}
	var err error
	if e.Path, err = a.Required(TagExport, "path"); err != nil {
		return nil, err
	}
	if e.Parser, err = a.Required(TagExport, "parser"); err != nil {
		return nil, err
	}
	e.Format = strings.ToLower(strings.TrimSpace(a.Get("format", "json")))
	return e, nil
}

func newHeader(a Attrs) (Node, error) {
	name, err := a.Required(TagHeader, "name")
	if err != nil {
		return nil, err
	}
	return &Header{nodeBase: newBase(TagHeader), Name: strings.TrimSpace(name), Value: a.Get("value", "")}, nil
}

func newVariable(a Attrs) (Node, error) {
	name, err := a.Required(TagVariable, "name")
	if err != nil {
		return nil, err
	}
	typ := strings.ToLower(strings.TrimSpace(a.Get("type", "str")))
	raw := a.Get("value", "")
	v, err := typedValue(typ, raw)
	if err != nil {
		return nil, &InvalidAttributeError{Tag: TagVariable, Attr: "value", Value: raw, Err: fmt.Errorf("as %s: %w", typ, err)}
	}
	return &Variable{nodeBase: newBase(TagVariable), Name: strings.TrimSpace(name), Type: typ, Value: v}, nil
}
