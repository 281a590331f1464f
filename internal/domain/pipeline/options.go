package pipeline

import (
	"time"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/pkg/logger"
)

// Option configures a Service.
type Option func(*Service)

// WithEmitter publishes an activity record after every mutation.
func WithEmitter(e Emitter) Option {
	return func(s *Service) { s.emitter = e }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}
