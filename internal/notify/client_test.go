package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	events chan domain.Event
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{events: make(chan domain.Event, 16)}
}

func (h *recordingHandler) OnInitialOrders(e domain.InitialOrdersEvent) { h.events <- e }
func (h *recordingHandler) OnOrderCreated(e domain.OrderCreatedEvent)   { h.events <- e }
func (h *recordingHandler) OnOrderUpdated(e domain.OrderUpdatedEvent)   { h.events <- e }
func (h *recordingHandler) OnOrderError(e domain.OrderErrorEvent)       { h.events <- e }
func (h *recordingHandler) OnUpdateError(e domain.UpdateErrorEvent)     { h.events <- e }

func lifecycleRecorder() (chan LifecycleEvent, ClientOption) {
	ch := make(chan LifecycleEvent, 64)
	return ch, WithLifecycle(func(e LifecycleEvent) {
		select {
		case ch <- e:
		default:
		}
	})
}

func nextLifecycle(t *testing.T, ch chan LifecycleEvent) LifecycleEvent {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for lifecycle event")
		return LifecycleEvent{}
	}
}

// flakyServer refuses the first failures handshakes, then echoes events.
func flakyServer(t *testing.T, failures int32) (string, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= failures {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		msg, _ := domain.EncodeEvent(domain.InitialOrdersEvent{Orders: []domain.Order{{ID: "0001"}}})
		conn.WriteMessage(websocket.TextMessage, msg)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http"), &calls
}

func TestClient_GivesUpAfterMaxAttempts(t *testing.T) {
	url, calls := flakyServer(t, 1000)
	events, opt := lifecycleRecorder()
	c := NewClient(url, newRecordingHandler(), WithRetryDelay(5*time.Millisecond), opt)

	c.Connect(context.Background())
	defer c.Disconnect()

	for i := 1; i <= DefaultMaxAttempts; i++ {
		e := nextLifecycle(t, events)
		require.Equal(t, LifecycleConnectError, e.Kind)
		assert.Equal(t, i, e.Attempt)
	}
	e := nextLifecycle(t, events)
	assert.Equal(t, LifecycleGaveUp, e.Kind)
	assert.Equal(t, int32(DefaultMaxAttempts), calls.Load())
	assert.False(t, c.Connected())
}

func TestClient_ReconnectsAfterFailuresAndResets(t *testing.T) {
	url, _ := flakyServer(t, 2)
	events, opt := lifecycleRecorder()
	handler := newRecordingHandler()
	c := NewClient(url, handler, WithRetryDelay(5*time.Millisecond), WithMaxAttempts(3), opt)

	c.Connect(context.Background())
	defer c.Disconnect()

	assert.Equal(t, LifecycleConnectError, nextLifecycle(t, events).Kind)
	assert.Equal(t, LifecycleConnectError, nextLifecycle(t, events).Kind)
	assert.Equal(t, LifecycleConnected, nextLifecycle(t, events).Kind)
	assert.Equal(t, LifecycleReconnected, nextLifecycle(t, events).Kind)

	select {
	case e := <-handler.events:
		initial, ok := e.(domain.InitialOrdersEvent)
		require.True(t, ok, "got %T", e)
		assert.Equal(t, "0001", initial.Orders[0].ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no event dispatched")
	}
	assert.True(t, c.Connected())
}

func TestClient_FirstConnectIsNotAReconnect(t *testing.T) {
	url, _ := flakyServer(t, 0)
	events, opt := lifecycleRecorder()
	c := NewClient(url, newRecordingHandler(), opt)

	c.Connect(context.Background())
	assert.Equal(t, LifecycleConnected, nextLifecycle(t, events).Kind)

	c.Disconnect()
	assert.Equal(t, LifecycleDisconnected, nextLifecycle(t, events).Kind)
	assert.False(t, c.Connected())
	assert.ErrorIs(t, c.Send(domain.UpdateOrderStatusCommand{OrderID: "0001"}), ErrNotConnected)
}

func TestClient_SendsCommandsThroughHub(t *testing.T) {
	cmd := &fakeCommander{}
	hub := NewHub(10)
	hub.SetCommander(cmd)
	url := newHubServer(t, hub)

	events, opt := lifecycleRecorder()
	handler := newRecordingHandler()
	c := NewClient(url, handler, opt, WithHeader(adminHeader()))
	c.Connect(context.Background())
	defer c.Disconnect()
	require.Equal(t, LifecycleConnected, nextLifecycle(t, events).Kind)

	require.NoError(t, c.Send(domain.UpdateOrderStatusCommand{OrderID: "0009", Status: domain.StatusCompleted}))

	require.Eventually(t, func() bool {
		cmd.mu.Lock()
		defer cmd.mu.Unlock()
		return len(cmd.updates) == 1 && cmd.updates[0] == "0009:COMPLETED"
	}, 2*time.Second, 10*time.Millisecond)
}
