package sqldb

import "go.uber.org/zap"

type options struct {
	logger *zap.Logger
	path   string
}

var defaultOptions = options{
	logger: zap.NewNop(),
}

type Option func(opts *options)

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// WithPath sets the sqlite database file.
func WithPath(path string) Option {
	return func(opts *options) {
		opts.path = path
	}
}
