package service

import (
	"time"

	"github.com/roach88/esaa/internal/model"
)

// Clock supplies event timestamps. The default reads the system clock;
// tests inject a deterministic sequence so logs reproduce byte for
// byte.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func (s *Service) timestamp() string {
	return s.clock.Now().UTC().Format(model.TimestampLayout)
}
