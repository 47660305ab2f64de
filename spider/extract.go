package spider

import (
	"encoding/json"
	"net/url"
	"reflect"
	"strings"

	"github.com/antchfx/jsonquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/wenzapen/tagcrawl/parse"
	"github.com/wenzapen/tagcrawl/script"
)

// FollowUp describes the requests an Extract generates from its last value.
type FollowUp struct {
	URL     *script.Program
	Method  string
	Type    string
	Parsers []string
	Concat  []string
}

// Extract is the item and list node: a rule shaping a document or a value
// into a named result.
type Extract struct {
	nodeBase

	ID     string
	Name   string
	Query  *parse.Query
	Many   bool
	Key    string
	Filter *script.Program
	Items  *script.Program
	Post   *script.Program
	Strip  bool
	Global bool

	FollowUp FollowUp

	last any
}

// ResultName is the key the extract's output is stored under.
func (e *Extract) ResultName() string {
	if e.Name != "" {
		return e.Name
	}
	return e.ID
}

func (e *Extract) LastValue() any { return e.last }

func (e *Extract) Extracts() []*Extract { return e.extracts() }

// Exports are attached to the batch generated by the follow-up.
func (e *Extract) Exports() []*Export { return e.exports() }

func (e *Extract) HasFollowUp() bool {
	return e.FollowUp.URL != nil && len(e.FollowUp.Parsers) > 0
}

func (e *Extract) view() map[string]any {
	return map[string]any{
		"id":   e.ID,
		"name": e.ResultName(),
		"tag":  e.tag,
		"many": e.Many,
		"key":  e.Key,
	}
}

// Parse applies the rule to value. Lookups against values that are not
// documents, or that match nothing, give nil or an empty list.
func (e *Extract) Parse(value any, ctx *Context) any {
	log := ctx.logger().With(zap.String("parser", e.ResultName()))
	cur := value

	if e.Query != nil {
		if matches, ok := e.Query.Select(value); ok {
			if e.Many {
				cur = matches
			} else if len(matches) > 0 {
				cur = matches[0]
			} else {
				cur = nil
			}
		}
	}

	if e.Many {
		if e.Items != nil {
			items, err := e.Items.Run(e.env(cur, nil, ctx))
			if err != nil {
				log.Error("get-items failed", zap.Error(err))
			} else {
				cur = items
			}
		}
		cur = toList(cur)
	}

	if children := e.extracts(); len(children) > 0 {
		if e.Many {
			list := cur.([]any)
			objects := make([]any, 0, len(list))
			for _, el := range list {
				objects = append(objects, parseChildren(children, el, ctx))
			}
			cur = objects
		} else {
			cur = parseChildren(children, cur, ctx)
		}
	}

	if e.Many {
		list := cur.([]any)
		if e.Key != "" {
			list = Dedup(list, e.Key)
		}
		if e.Filter != nil {
			list = e.filter(list, ctx, log)
		}
		cur = list
	}

	if e.Strip {
		cur = strip(cur)
	}

	if e.Post != nil {
		out, err := e.Post.Run(e.env(cur, cur, ctx))
		if err != nil {
			log.Error("post-process failed, keeping value", zap.Error(err))
		} else {
			cur = out
		}
	}

	cur = parse.Plain(cur)
	if e.Many && cur == nil {
		cur = []any{}
	}
	e.last = cur
	return cur
}

func (e *Extract) env(value, item any, ctx *Context) script.Env {
	return script.Env{Value: value, Item: item, Parser: e.view(), Request: ctx.view()}
}

func (e *Extract) filter(list []any, ctx *Context, log *zap.Logger) []any {
	out := make([]any, 0, len(list))
	for _, el := range list {
		keep, err := e.Filter.Test(e.env(el, el, ctx))
		if err != nil {
			log.Error("filter failed, dropping element", zap.Error(err))
			continue
		}
		if keep {
			out = append(out, el)
		}
	}
	return out
}

func parseChildren(children []*Extract, value any, ctx *Context) map[string]any {
	obj := make(map[string]any, len(children))
	for _, c := range children {
		obj[c.ResultName()] = c.Parse(value, ctx)
	}
	return obj
}

// GenerateRequests builds the follow-up batch from the last parsed value:
// one URL per element for a list, one URL otherwise. Relative URLs are
// resolved against the request in ctx. Elements whose URL cannot be built
// are logged and skipped.
func (e *Extract) GenerateRequests(ctx *Context) *RequestList {
	log := ctx.logger().With(zap.String("parser", e.ResultName()))
	values := []any{e.last}
	if e.Many {
		values = toList(e.last)
	}

	urls := make([]any, 0, len(values))
	for _, v := range values {
		out, err := e.FollowUp.URL.Run(e.env(v, v, ctx))
		if err != nil {
			log.Error("follow-up url failed", zap.Error(err))
			continue
		}
		u := strings.TrimSpace(parse.Text(out))
		if u == "" {
			log.Warn("follow-up url is empty", zap.Any("value", v))
			continue
		}
		urls = append(urls, resolveURL(ctx.baseURL(), u))
	}

	l := &RequestList{
		nodeBase:    newBase(TagRequestList),
		List:        urls,
		Method:      e.FollowUp.Method,
		Type:        e.FollowUp.Type,
		ParserNames: e.FollowUp.Parsers,
		Concat:      e.FollowUp.Concat,
		Meta:        e.last,
	}
	l.children = detachedChildren(e.exports())
	return l
}

func resolveURL(base, ref string) string {
	if base == "" {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

// Dedup keeps the first element for every value of key, preserving order.
// Elements without the key are kept.
func Dedup(list []any, key string) []any {
	seen := make(map[string]struct{}, len(list))
	out := make([]any, 0, len(list))
	for _, el := range list {
		k, ok := keyOf(el, key)
		if !ok {
			out = append(out, el)
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, el)
	}
	return out
}

func keyOf(v any, key string) (string, bool) {
	var field any
	switch n := v.(type) {
	case map[string]any:
		f, ok := n[key]
		if !ok {
			return "", false
		}
		field = f
	case *html.Node:
		if n == nil {
			return "", false
		}
		found := false
		for _, a := range n.Attr {
			if a.Key == key {
				field, found = a.Val, true
				break
			}
		}
		if !found {
			return "", false
		}
	case *jsonquery.Node:
		if n == nil {
			return "", false
		}
		c := n.SelectElement(key)
		if c == nil {
			return "", false
		}
		field = c.Value()
	default:
		return "", false
	}
	b, err := json.Marshal(parse.Plain(field))
	if err != nil {
		return "", false
	}
	return string(b), true
}

func strip(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = strip(el)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, el := range t {
			out[k] = strip(el)
		}
		return out
	default:
		return parse.TrimText(v)
	}
}

// toList turns v into a list: nil is empty, slices are copied element-wise
// and anything else is a single element.
func toList(v any) []any {
	switch t := v.(type) {
	case nil:
		return []any{}
	case []any:
		if t == nil {
			return []any{}
		}
		return t
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	}
	return []any{v}
}
