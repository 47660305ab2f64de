package spider

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/yosida95/uritemplate/v3"
	"go.uber.org/zap"

	"github.com/wenzapen/tagcrawl/parse"
	"github.com/wenzapen/tagcrawl/script"
)

// Request is a single fetch.
type Request struct {
	nodeBase

	URL         string
	Method      string
	Type        string
	Header      http.Header
	ParserNames []string
	Meta        any
	// Page is the template index of a request generated from a url-template.
	Page int
}

func (r *Request) Extracts() []*Extract { return r.extracts() }
func (r *Request) Exports() []*Export   { return r.exports() }

// Headers merges the request's own header with its header children; children
// win.
func (r *Request) Headers() http.Header {
	return mergeHeaders(r.Header, r.headers())
}

func mergeHeaders(base http.Header, children []*Header) http.Header {
	h := base.Clone()
	if h == nil {
		h = http.Header{}
	}
	for _, c := range children {
		h.Set(c.Name, c.Value)
	}
	return h
}

// RequestList generates a batch of requests, either from an explicit list
// mapped through GetURL or from a url-template over the range Start..End.
// Without End a template batch starts with its first page only; Pagination
// then discovers the page count from the first fetched document.
type RequestList struct {
	nodeBase

	List       []any
	GetURL     *script.Program
	Template   *uritemplate.Template
	Start      int
	End        int
	HasEnd     bool
	Pagination *parse.Query

	Method      string
	Type        string
	Header      http.Header
	ParserNames []string
	Concat      []string
	Meta        any
}

func (l *RequestList) Extracts() []*Extract { return l.extracts() }
func (l *RequestList) Exports() []*Export   { return l.exports() }
func (l *RequestList) Headers() http.Header { return mergeHeaders(l.Header, l.headers()) }

// IsConcat reports whether results named name are list-extended across the
// batch.
func (l *RequestList) IsConcat(name string) bool {
	for _, c := range l.Concat {
		if c == name {
			return true
		}
	}
	return false
}

// Paginated reports whether the batch discovers further pages at run time.
func (l *RequestList) Paginated() bool {
	return l.Template != nil && !l.HasEnd && l.Pagination != nil
}

// Requests generates the concrete batch.
func (l *RequestList) Requests(ctx *Context) []*Request {
	if l.Template != nil {
		last := l.Start
		if l.HasEnd {
			last = l.End
		}
		return l.pageRange(l.Start, last, ctx)
	}

	log := ctx.logger()
	reqs := make([]*Request, 0, len(l.List))
	for _, v := range l.List {
		u := parse.Text(v)
		if l.GetURL != nil {
			out, err := l.GetURL.Run(script.Env{Value: v, Item: v, Parser: map[string]any{}, Request: ctx.view()})
			if err != nil {
				log.Error("get-url failed", zap.Error(err))
				continue
			}
			u = parse.Text(out)
		}
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		reqs = append(reqs, l.request(u, 0))
	}
	return reqs
}

// Pages reads the page count from the first document of a paginated batch
// and returns the requests for pages Start+1 up to that count.
func (l *RequestList) Pages(doc any, ctx *Context) []*Request {
	if !l.Paginated() {
		return nil
	}
	matches, _ := l.Pagination.Select(doc)
	if len(matches) == 0 {
		ctx.logger().Warn("pagination query matched nothing", zap.String("query", l.Pagination.String()))
		return nil
	}
	n, err := pageCount(matches[0])
	if err != nil {
		ctx.logger().Error("invalid page count", zap.String("query", l.Pagination.String()), zap.Error(err))
		return nil
	}
	return l.pageRange(l.Start+1, n, ctx)
}

func pageCount(v any) (int, error) {
	if f, ok := v.(float64); ok {
		return int(f), nil
	}
	s := strings.TrimSpace(parse.Text(v))
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func (l *RequestList) pageRange(from, to int, ctx *Context) []*Request {
	var reqs []*Request
	for i := from; i <= to; i++ {
		vars := uritemplate.Values{}
		vars.Set("i", uritemplate.String(strconv.Itoa(i)))
		u, err := l.Template.Expand(vars)
		if err != nil {
			ctx.logger().Error("expand url-template", zap.Int("page", i), zap.Error(err))
			continue
		}
		reqs = append(reqs, l.request(u, i))
	}
	return reqs
}

// request builds a generated request. It shares the batch's extraction
// children but not its exports, which run once against the aggregate.
func (l *RequestList) request(u string, page int) *Request {
	r := &Request{
		nodeBase:    newBase(TagRequest),
		URL:         u,
		Method:      l.Method,
		Type:        l.Type,
		Header:      l.Headers(),
		ParserNames: l.ParserNames,
		Meta:        l.Meta,
		Page:        page,
	}
	r.children = detachedChildren(l.extracts())
	return r
}
