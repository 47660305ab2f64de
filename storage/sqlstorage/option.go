package sqlstorage

import "go.uber.org/zap"

type options struct {
	logger     *zap.Logger
	BatchCount int
}

// sqlite allows 999 bound variables per statement by default; 50 rows keeps
// wide records under that.
var defaultOptions = options{
	logger:     zap.NewNop(),
	BatchCount: 50,
}

type Option func(opts *options)

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

func WithBatchCount(batchCount int) Option {
	return func(opts *options) {
		if batchCount > 0 {
			opts.BatchCount = batchCount
		}
	}
}
