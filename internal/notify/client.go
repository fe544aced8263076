package notify

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"storefront/internal/domain"

	"github.com/gorilla/websocket"
)

const (
	DefaultRetryDelay  = time.Second
	DefaultMaxAttempts = 5
)

var ErrNotConnected = errors.New("notify: not connected")

type LifecycleKind string

const (
	LifecycleConnected    LifecycleKind = "connected"
	LifecycleDisconnected LifecycleKind = "disconnected"
	LifecycleConnectError LifecycleKind = "connect_error"
	LifecycleReconnected  LifecycleKind = "reconnected"
	LifecycleGaveUp       LifecycleKind = "gave_up"
)

// LifecycleEvent reports connection state changes. Attempt is the count of
// consecutive failed dials, set on connect errors and on give-up.
type LifecycleEvent struct {
	Kind    LifecycleKind
	Attempt int
	Err     error
}

type ClientOption func(*Client)

func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) { c.retryDelay = d }
}

func WithMaxAttempts(n int) ClientOption {
	return func(c *Client) { c.maxAttempts = n }
}

func WithHeader(h http.Header) ClientOption {
	return func(c *Client) { c.header = h }
}

// WithLifecycle registers fn for lifecycle events. It runs on the client's
// connection goroutine and must not block.
func WithLifecycle(fn func(LifecycleEvent)) ClientOption {
	return func(c *Client) { c.onLifecycle = fn }
}

// Client is the reconnecting end of the channel. It is idle until Connect and
// stays down after Disconnect or after giving up.
type Client struct {
	url         string
	handler     domain.EventHandler
	dialer      *websocket.Dialer
	header      http.Header
	retryDelay  time.Duration
	maxAttempts int
	onLifecycle func(LifecycleEvent)

	mu      sync.Mutex
	writeMu sync.Mutex
	conn    *websocket.Conn
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewClient(url string, handler domain.EventHandler, opts ...ClientOption) *Client {
	c := &Client{
		url:         url,
		handler:     handler,
		dialer:      websocket.DefaultDialer,
		retryDelay:  DefaultRetryDelay,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect starts the connection loop. Calling it while the loop runs is a no-op.
func (c *Client) Connect(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done != nil {
		select {
		case <-c.done:
		default:
			return
		}
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.run(ctx, c.done)
}

// Disconnect stops the loop and waits for it to exit.
func (c *Client) Disconnect() {
	c.mu.Lock()
	cancel, done, conn := c.cancel, c.done, c.conn
	c.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	if conn != nil {
		conn.Close()
	}
	<-done
}

func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Send writes a command to the server. Nothing is queued while disconnected.
func (c *Client) Send(cmd domain.Command) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	msg, err := domain.EncodeCommand(cmd)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, msg)
}

func (c *Client) emit(e LifecycleEvent) {
	if c.onLifecycle != nil {
		c.onLifecycle(e)
	}
}

func (c *Client) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	failures := 0
	connectedBefore := false
	for {
		conn, _, err := c.dialer.DialContext(ctx, c.url, c.header)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			slog.Warn("channel connection error", "attempt", failures, "max", c.maxAttempts, "error", err)
			c.emit(LifecycleEvent{Kind: LifecycleConnectError, Attempt: failures, Err: err})
			if failures >= c.maxAttempts {
				c.emit(LifecycleEvent{Kind: LifecycleGaveUp, Attempt: failures, Err: err})
				return
			}
			if !c.wait(ctx) {
				return
			}
			continue
		}

		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()

		c.emit(LifecycleEvent{Kind: LifecycleConnected})
		if failures > 0 || connectedBefore {
			c.emit(LifecycleEvent{Kind: LifecycleReconnected})
		}
		failures = 0
		connectedBefore = true

		err = c.readLoop(conn)

		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		conn.Close()

		if ctx.Err() != nil {
			c.emit(LifecycleEvent{Kind: LifecycleDisconnected})
			return
		}
		c.emit(LifecycleEvent{Kind: LifecycleDisconnected, Err: err})
		if !c.wait(ctx) {
			return
		}
	}
}

func (c *Client) wait(ctx context.Context) bool {
	t := time.NewTimer(c.retryDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Client) readLoop(conn *websocket.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		event, err := domain.DecodeEvent(data)
		if err != nil {
			slog.Warn("ignoring channel message", "error", err)
			continue
		}
		event.Dispatch(c.handler)
	}
}
