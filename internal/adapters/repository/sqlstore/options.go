package sqlstore

import gormlogger "gorm.io/gorm/logger"

type options struct {
	autoMigrate  bool
	maxOpenConns int
	logLevel     gormlogger.LogLevel
}

// Option configures Open.
type Option func(*options)

// WithAutoMigrate toggles schema migration on open.
func WithAutoMigrate(enabled bool) Option {
	return func(o *options) { o.autoMigrate = enabled }
}

// WithMaxOpenConns bounds the PostgreSQL connection pool.
func WithMaxOpenConns(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxOpenConns = n
		}
	}
}

// WithQueryLogging makes GORM log every statement at info level.
func WithQueryLogging(enabled bool) Option {
	return func(o *options) {
		if enabled {
			o.logLevel = gormlogger.Info
		}
	}
}
