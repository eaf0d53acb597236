package notify

import (
	"context"
	"time"
)

// ContactEvent captures the canonical data emitted for an accepted
// contact-form submission. Sinks receive the same event and decide what to
// deliver; none of them can alter intake outcomes.
type ContactEvent struct {
	ContactID    string
	Name         string
	Email        string
	Phone        string
	Project      string
	Budget       string
	BudgetAmount *int
	Message      string
	Source       string
	ReceivedAt   time.Time
	Metadata     map[string]string
}

// Sink describes a destination capable of consuming contact events.
type Sink interface {
	SendContactEvent(ctx context.Context, event ContactEvent) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, event ContactEvent) error

// SendContactEvent implements the Sink interface.
func (f SinkFunc) SendContactEvent(ctx context.Context, event ContactEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

// NamedSink pairs a sink with a stable name used in logs and the error log.
type NamedSink struct {
	Name string
	Sink Sink
}
