package load

import "github.com/go-logr/logr"

// Option configures the loaders.
type Option func(*options)

type options struct {
	allowDup bool
	log      logr.Logger
}

// AllowDuplicateKeys lets a repeated key overwrite the earlier value while
// keeping its position.
func AllowDuplicateKeys() Option { return func(o *options) { o.allowDup = true } }

// WithLogger sets the logger reporting loaded files at V(1).
func WithLogger(log logr.Logger) Option { return func(o *options) { o.log = log } }

func newOptions(opts []Option) options {
	o := options{log: logr.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
