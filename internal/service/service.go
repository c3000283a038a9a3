package service

import (
	"github.com/roach88/esaa/internal/adapter"
	"github.com/roach88/esaa/internal/model"
)

// Service coordinates the run: one instance per project root.
type Service struct {
	root    string
	adapter adapter.Adapter
	clock   Clock
}

// Option configures a Service.
type Option func(*Service)

// WithAdapter replaces the default mock adapter.
func WithAdapter(a adapter.Adapter) Option {
	return func(s *Service) { s.adapter = a }
}

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

// New creates a service over the given project root.
func New(root string, opts ...Option) *Service {
	s := &Service{
		root:    root,
		adapter: adapter.NewMock(""),
		clock:   systemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the project root path.
func (s *Service) Root() string { return s.root }

// newEvent composes a canonical event stamped with the service clock.
func (s *Service) newEvent(seq int64, actor, action string, payload map[string]any) model.Event {
	return model.NewEvent(seq, s.timestamp(), actor, action, payload)
}
