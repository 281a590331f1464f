package api

import "github.com/njrini99-code/Helm-Sports-Labs-sub006/pkg/logger"

type options struct {
	maxBodyBytes   int64
	maxImportBytes int64
	maxLimit       int
	logger         logger.Logger
}

// Option configures the API server.
type Option func(*options)

// WithMaxBodyBytes caps JSON request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBodyBytes = n
		}
	}
}

// WithMaxImportBytes caps roster uploads.
func WithMaxImportBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxImportBytes = n
		}
	}
}

// WithMaxLimit caps ?limit on list endpoints.
func WithMaxLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxLimit = n
		}
	}
}

// WithLogger sets the logger for server-side failures.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
