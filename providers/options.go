package providers

import (
	"github.com/willibrandon/gorestore/lockfile"
	"github.com/willibrandon/gorestore/observability"
)

type options struct {
	logger observability.Logger
	lock   *lockfile.LockFile
}

// Option configures a provider.
type Option func(*options)

// WithLogger sets the provider logger.
func WithLogger(logger observability.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLockFile makes a package provider take versions and dependency edges
// from the targets of a previous restore.
func WithLockFile(lf *lockfile.LockFile) Option {
	return func(o *options) {
		o.lock = lf
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: observability.NewNullLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
