package mcp

import "github.com/njrini99-code/Helm-Sports-Labs-sub006/pkg/logger"

// Option configures a Server.
type Option func(*Server)

// WithImplementation sets the name and version reported to clients.
func WithImplementation(name, version string) Option {
	return func(s *Server) {
		if name != "" {
			s.name = name
		}
		if version != "" {
			s.version = version
		}
	}
}

// WithLogger sets the logger used for failed tool calls.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}
