// Package notify fans accepted emergency overrides out to paging and chat sinks.
package notify

import (
	"context"
	"errors"
	"time"
)

// Severity constants recognised by downstream sinks.
const (
	SeverityCritical = "critical"
	SeverityInfo     = "info"
)

// OverrideEvent is the announcement emitted after the Control API accepts a halt or resume.
type OverrideEvent struct {
	Action      string
	Status      string
	Message     string
	Reason      string
	InitiatedBy string
	OccurredAt  time.Time
}

// Halt reports whether the event stops the system.
func (e OverrideEvent) Halt() bool { return e.Action == "HALT" }

// Severity is critical for halts and informational otherwise.
func (e OverrideEvent) Severity() string {
	if e.Halt() {
		return SeverityCritical
	}
	return SeverityInfo
}

// Sink describes a destination capable of consuming override announcements.
type Sink interface {
	SendOverride(ctx context.Context, event OverrideEvent) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, event OverrideEvent) error

// SendOverride implements the Sink interface.
func (f SinkFunc) SendOverride(ctx context.Context, event OverrideEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

// Fanout delivers to every sink and joins their errors.
type Fanout []Sink

// SendOverride implements the Sink interface.
func (f Fanout) SendOverride(ctx context.Context, event OverrideEvent) error {
	var errs []error
	for _, s := range f {
		if s == nil {
			continue
		}
		if err := s.SendOverride(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Retry runs fn up to retries+1 times with a linear backoff between attempts.
func Retry(ctx context.Context, retries int, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
		if attempt == retries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * 200 * time.Millisecond)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}
