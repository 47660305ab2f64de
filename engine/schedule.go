// Package engine runs a crawl: it drains a FIFO queue of request units built
// from a spider tree, extracts results and runs exports.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wenzapen/tagcrawl/collect"
	"github.com/wenzapen/tagcrawl/parse"
	"github.com/wenzapen/tagcrawl/spider"
	"github.com/wenzapen/tagcrawl/storage"
)

// Report summarizes a run. Err combines every unit-local error.
type Report struct {
	Units    int
	Requests int
	Failed   int
	Exports  int
	Bytes    int64
	Elapsed  time.Duration
	Err      error
}

// UnitResult is handed to the result handler once a unit is done.
type UnitResult struct {
	ID     string
	Kind   spider.Kind
	URL    string
	Result *Result
}

type Crawler struct {
	tree     *spider.Tree
	reqQueue []spider.Unit
	report   Report
	options
}

func New(tree *spider.Tree, opts ...Option) *Crawler {
	options := DefaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	if options.Fetcher == nil {
		options.Fetcher = &collect.BrowserFetch{Logger: options.Logger}
	}
	if options.Sinks == nil {
		options.Sinks = storage.NewRegistry()
	}
	return &Crawler{tree: tree, options: options}
}

// Push appends units to the back of the queue.
func (c *Crawler) Push(units ...spider.Unit) {
	c.reqQueue = append(c.reqQueue, units...)
}

func (c *Crawler) pull() (spider.Unit, bool) {
	if len(c.reqQueue) == 0 {
		return spider.Unit{}, false
	}
	u := c.reqQueue[0]
	c.reqQueue = c.reqQueue[1:]
	return u, true
}

// Pending is the number of queued units.
func (c *Crawler) Pending() int { return len(c.reqQueue) }

// Run seeds the queue from the tree and processes units until the queue is
// empty or ctx is done. Errors of single units are logged and collected in
// the report; they never stop the run.
func (c *Crawler) Run(ctx context.Context) Report {
	start := time.Now()
	c.Push(c.tree.Seeds()...)
	c.Logger.Info("crawl started", zap.Int("seeds", len(c.reqQueue)))

	for {
		if err := ctx.Err(); err != nil {
			c.report.Err = multierr.Append(c.report.Err, err)
			c.Logger.Warn("crawl cancelled", zap.Int("pending", len(c.reqQueue)))
			break
		}
		u, ok := c.pull()
		if !ok {
			break
		}
		c.handle(ctx, u)
	}

	c.report.Elapsed = time.Since(start)
	c.Logger.Info("crawl finished",
		zap.Int("units", c.report.Units),
		zap.Int("requests", c.report.Requests),
		zap.Int("failed", c.report.Failed),
		zap.Int("exports", c.report.Exports),
		zap.Duration("elapsed", c.report.Elapsed))
	return c.report
}

func (c *Crawler) handle(ctx context.Context, u spider.Unit) {
	id := uuid.NewString()
	log := c.Logger.With(zap.String("unit", id), zap.Stringer("kind", u.Kind))
	c.report.Units++
	c.Metrics.Unit(u.Kind.String())

	var (
		result  *Result
		exports []*spider.Export
		url     string
	)
	switch u.Kind {
	case spider.KindRequest:
		url = u.Request.URL
		parsers := c.resolve(u.Request.Extracts(), u.Request.ParserNames, log)
		result, _ = c.fetch(ctx, u.Request, parsers, log)
		exports = u.Request.Exports()
	case spider.KindBatch:
		result = c.batch(ctx, u.List, log)
		exports = u.List.Exports()
	default:
		log.Error("unknown unit kind")
		return
	}
	if result == nil {
		return
	}

	c.export(result, exports, log)
	if c.OnResult != nil {
		c.OnResult(UnitResult{ID: id, Kind: u.Kind, URL: url, Result: result})
	}
}

// resolve returns the unit's own extracts followed by the globals it names.
func (c *Crawler) resolve(children []*spider.Extract, names []string, log *zap.Logger) []*spider.Extract {
	parsers := append([]*spider.Extract(nil), children...)
	for _, name := range names {
		g, ok := c.tree.Global(name)
		if !ok {
			c.fail(log, "parser", &MissingGlobalParserError{Name: name})
			continue
		}
		if contains(parsers, g) {
			continue
		}
		parsers = append(parsers, g)
	}
	return parsers
}

func contains(parsers []*spider.Extract, e *spider.Extract) bool {
	for _, p := range parsers {
		if p == e {
			return true
		}
	}
	return false
}

func resultNames(parsers []*spider.Extract) []string {
	names := make([]string, 0, len(parsers))
	for _, p := range parsers {
		names = append(names, p.ResultName())
	}
	return names
}

// fetch runs one request. It returns a nil result when the fetch or the
// document parse fails. Follow-ups are queued as they are produced.
func (c *Crawler) fetch(ctx context.Context, req *spider.Request, parsers []*spider.Extract, log *zap.Logger) (*Result, any) {
	log = log.With(zap.String("url", req.URL))
	c.report.Requests++

	resp, err := c.Fetcher.Fetch(ctx, req.Method, req.URL, req.Headers())
	if err != nil {
		c.report.Failed++
		c.Metrics.Request(req.Method, false, 0)
		c.fail(log, "fetch", err)
		return nil, nil
	}
	c.Metrics.Request(req.Method, true, len(resp.Body))
	c.report.Bytes += int64(len(resp.Body))

	doc, err := parse.Document(req.Type, resp.Text)
	if err != nil {
		c.fail(log, "parse", err)
		return nil, nil
	}

	sctx := &spider.Context{Request: req, Logger: log}
	result := NewResult(resultNames(parsers)...)
	for _, p := range parsers {
		out := p.Parse(doc, sctx)
		if p.Many {
			result.Concat(p.ResultName(), out)
		} else {
			result.Set(p.ResultName(), out)
		}
		if p.HasFollowUp() {
			follow := p.GenerateRequests(sctx)
			log.Info("follow-up generated", zap.String("parser", p.ResultName()), zap.Int("requests", len(follow.List)))
			c.Push(spider.BatchUnit(follow))
		}
	}
	log.Debug("request done", zap.Strings("results", result.Names()))
	return result, doc
}

// batch runs every request of a request-list and merges their results.
// Pages discovered from the first document are fetched in the same batch.
// A cancelled batch yields no result.
func (c *Crawler) batch(ctx context.Context, l *spider.RequestList, log *zap.Logger) *Result {
	parsers := c.resolve(l.Extracts(), l.ParserNames, log)
	agg := NewResult(resultNames(parsers)...)

	reqs := l.Requests(&spider.Context{Logger: log})
	log.Info("batch started", zap.Int("requests", len(reqs)))
	for i := 0; i < len(reqs); i++ {
		if ctx.Err() != nil {
			break
		}
		sub, doc := c.fetch(ctx, reqs[i], parsers, log)
		if i == 0 && doc != nil && l.Paginated() {
			pages := l.Pages(doc, &spider.Context{Request: reqs[i], Logger: log})
			log.Info("pages discovered", zap.Int("pages", len(pages)))
			reqs = append(reqs, pages...)
		}
		if sub != nil {
			agg.Merge(sub, l.IsConcat)
		}
	}
	if ctx.Err() != nil {
		log.Warn("batch cancelled, partial result dropped", zap.Int("requests", len(reqs)))
		return nil
	}
	return agg
}

func (c *Crawler) export(result *Result, exports []*spider.Export, log *zap.Logger) {
	for _, e := range exports {
		err := e.Run(result, c.Sinks)
		c.Metrics.Export(e.Format, err == nil)
		if err != nil {
			c.fail(log, "export", err)
			continue
		}
		c.report.Exports++
		log.Info("exported", zap.String("parser", e.Parser), zap.String("format", e.Format), zap.String("path", e.Path))
	}
}

func (c *Crawler) fail(log *zap.Logger, class string, err error) {
	log.Error(class+" failed", zap.Error(err))
	c.Metrics.Error(class)
	c.report.Err = multierr.Append(c.report.Err, err)
}
