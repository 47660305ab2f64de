package engine

import (
	"go.uber.org/zap"

	"github.com/wenzapen/tagcrawl/collect"
	"github.com/wenzapen/tagcrawl/metrics"
	"github.com/wenzapen/tagcrawl/storage"
)

type Option func(opts *options)

type options struct {
	Logger   *zap.Logger
	Fetcher  collect.Fetcher
	Sinks    *storage.Registry
	Metrics  *metrics.Metrics
	OnResult func(UnitResult)
}

var DefaultOptions = options{
	Logger: zap.NewNop(),
}

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.Logger = logger
	}
}

func WithFetcher(fetcher collect.Fetcher) Option {
	return func(opts *options) {
		opts.Fetcher = fetcher
	}
}

// WithSinks sets the export formats available to export nodes.
func WithSinks(sinks *storage.Registry) Option {
	return func(opts *options) {
		opts.Sinks = sinks
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(opts *options) {
		opts.Metrics = m
	}
}

// WithResultHandler registers f to receive every unit's finished result.
func WithResultHandler(f func(UnitResult)) Option {
	return func(opts *options) {
		opts.OnResult = f
	}
}
