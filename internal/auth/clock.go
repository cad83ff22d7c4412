package auth

import (
	"context"
	"time"
)

// Clock abstracts time for the polling and backoff loops so tests can
// simulate elapsed time without real waiting.
type Clock interface {
	Now() time.Time

	// Sleep blocks for the given duration or until the context is cancelled,
	// in which case the context error is returned.
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

// NewClock returns a Clock backed by the system clock.
func NewClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
