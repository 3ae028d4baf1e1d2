package session

import (
	"log/slog"

	"github.com/avi3tal/mlcanvas/internal/snapshots"
)

const defaultWorkers = 4

// Option is a functional option that configures the Session.
type Option func(*Session)

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithHistory records a snapshot of the graph after every pass
func WithHistory(store snapshots.Store) Option {
	return func(s *Session) {
		s.store = store
	}
}

// WithDebug logs every pass and every task
func WithDebug() Option {
	return func(s *Session) {
		s.debug = true
	}
}

// WithWorkers bounds the number of concurrent train/apply tasks
func WithWorkers(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithName names the underlying graph
func WithName(name string) Option {
	return func(s *Session) {
		s.name = name
	}
}
