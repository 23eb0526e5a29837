// Package notify publishes batch progress events to an external listener.
//
// Events are best effort: a notifier never fails the work it reports on.
package notify

import "context"

// Event names emitted during a batch run.
const (
	EventFile     = "file"
	EventComplete = "complete"
)

// FileEvent reports the outcome of a single batch item.
type FileEvent struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// CompleteEvent closes a batch run.
type CompleteEvent struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
}

// Notifier delivers named events with a JSON-serializable payload.
type Notifier interface {
	Notify(ctx context.Context, event string, payload any)
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Notify(context.Context, string, any) {}

func (Nop) Close() error { return nil }
