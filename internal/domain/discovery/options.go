package discovery

import "time"

// Option configures a Filter.
type Option func(*Filter)

// WithRecencyWindow sets how far back "recently active" reaches.
func WithRecencyWindow(d time.Duration) Option {
	return func(f *Filter) {
		if d > 0 {
			f.window = d
		}
	}
}

// WithClock replaces the wall clock, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(f *Filter) {
		if now != nil {
			f.now = now
		}
	}
}
