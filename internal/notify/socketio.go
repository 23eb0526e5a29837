package notify

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/vk/pixel/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// EventPrefix namespaces every emitted event, e.g. "pixel:file".
const EventPrefix = "pixel:"

const connectTimeout = 15 * time.Second

// SocketIO emits events over a socket.io connection.
type SocketIO struct {
	client *socket.Socket
}

// DialOptions tune the socket.io connection.
type DialOptions struct {
	Namespace          string
	InsecureSkipVerify bool
	Timeout            time.Duration
}

// Dial connects to the socket.io endpoint at rawURL and waits for the
// handshake to finish, the context to end, or the timeout to pass.
func Dial(ctx context.Context, rawURL string, opts DialOptions) (*SocketIO, error) {
	logger := ctxlog.FromContext(ctx).With("notifier", "socketio", "url", rawURL)

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse notify URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("notify URL %q must include scheme and host", rawURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = connectTimeout
	}

	sopts := socket.DefaultOptions()
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		sopts.SetPath(parsedURL.Path)
	}
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sopts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sopts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	namespace := opts.Namespace
	if namespace == "" {
		namespace = "/"
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sopts)
	io := manager.Socket(namespace, sopts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Debug("Notifier connected", "sid", io.Id())
		signal(connectChan, nil)
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		signal(connectChan, err)
	})

	logger.Debug("Connecting notifier...")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &SocketIO{client: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}
}

// signal reports the first connection outcome and drops later ones.
func signal(ch chan<- error, err error) {
	select {
	case ch <- err:
	default:
	}
}

// Notify emits EventPrefix+event with payload flattened to plain JSON values.
func (s *SocketIO) Notify(ctx context.Context, event string, payload any) {
	logger := ctxlog.FromContext(ctx)

	data, err := toJSONValue(payload)
	if err != nil {
		logger.Warn("Dropping notification with unencodable payload.", "event", event, "error", err)
		return
	}
	if !s.client.Connected() {
		logger.Warn("Dropping notification, notifier disconnected.", "event", event)
		return
	}
	logger.Debug("Emitting notification", "event", EventPrefix+event)
	s.client.Emit(EventPrefix+event, data)
}

// Close disconnects the client.
func (s *SocketIO) Close() error {
	s.client.Disconnect()
	return nil
}

// toJSONValue converts payload into maps, slices and scalars so the
// socket.io encoder sees the same shape the JSON tags describe.
func toJSONValue(payload any) (any, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
