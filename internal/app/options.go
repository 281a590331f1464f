package service

import (
	"time"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/adapters/mq/worker"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/discovery"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/scoring"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of activity publishers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the activity queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithIdempotencyCacheSize caps the remembered Idempotency-Key values.
func WithIdempotencyCacheSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.keyCacheSize = size
		}
	}
}

// WithPublisher sets where activity records go. Defaults to the log.
func WithPublisher(p worker.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithMatchWeights overrides scoring weights keyed by reason kind.
func WithMatchWeights(weights map[string]float64) Option {
	return func(s *Service) {
		if len(weights) > 0 {
			s.scoringOpts = append(s.scoringOpts, scoring.WithWeights(weights))
		}
	}
}

// WithMaxReasons caps the reasons attached to a match.
func WithMaxReasons(n int) Option {
	return func(s *Service) {
		s.scoringOpts = append(s.scoringOpts, scoring.WithMaxReasons(n))
	}
}

// WithRecencyWindowDays sets what "recently active" means for discovery and trending.
func WithRecencyWindowDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.scoringOpts = append(s.scoringOpts, scoring.WithRecencyWindow(days))
			s.discoveryOpts = append(s.discoveryOpts, discovery.WithRecencyWindow(time.Duration(days)*24*time.Hour))
		}
	}
}

// WithUpcomingDefaultDays sets the calendar look-ahead used when none is given.
func WithUpcomingDefaultDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.upcomingDays = days
		}
	}
}

// WithMaxMatchLimit caps the size of ranked lists.
func WithMaxMatchLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
