package iso8583

import "go.uber.org/zap"

// Option configures a Decoder or an Encoder.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the logger. The codec only logs at Debug level, plus a
// Warn for empty variable fields on encode. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func newOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}
