package app

import (
	"bytes"
	"context"
	"os"
	"sync"
	"testing"

	"github.com/vk/pixel/internal/config"
	"github.com/vk/pixel/internal/notify"
)

// SafeBuffer is a thread-safe buffer for capturing output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// RecordedEvent is one notification captured by RecordingNotifier.
type RecordedEvent struct {
	Event   string
	Payload any
}

// RecordingNotifier keeps every event in memory.
type RecordingNotifier struct {
	mu     sync.Mutex
	Events []RecordedEvent
	Closed bool
}

func (r *RecordingNotifier) Notify(_ context.Context, event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, RecordedEvent{Event: event, Payload: payload})
}

func (r *RecordingNotifier) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Closed = true
	return nil
}

var _ notify.Notifier = (*RecordingNotifier)(nil)

// SetupAppTest creates a new app instance for testing with debug logging.
// Stdout goes to the first buffer and logs to the second.
func SetupAppTest(t *testing.T, appConfig *Config) (*App, *SafeBuffer, *SafeBuffer) {
	t.Helper()

	outBuffer := &SafeBuffer{}
	logBuffer := &SafeBuffer{}
	appConfig.LogLevel = "debug"
	testApp, err := NewApp(outBuffer, logBuffer, appConfig, config.NewHCLLoader())
	if err != nil {
		t.Fatalf("NewApp() failed: %v", err)
	}

	t.Cleanup(func() {
		if os.Getenv("PIXEL_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, outBuffer, logBuffer
}
