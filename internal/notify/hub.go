// Package notify carries order events between the server and connected
// administration views over websockets.
//
// Delivery is best-effort and at-most-once. Each peer owns a bounded send
// buffer; when it is full the message is dropped for that peer only, so a slow
// peer never holds up a broadcast. There is no acknowledgment or replay.
//
// Only peers accepted by the hub's Authorizer at upgrade receive the snapshot
// and broadcasts and may change order status. Other peers can place orders and
// see the replies to their own commands, nothing else.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"storefront/internal/domain"
	"storefront/internal/metrics"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10

	DefaultPeerBuffer   = 16
	DefaultSnapshotSize = 10
)

// Commander executes commands sent by peers. The order service implements it;
// its own event publishing produces the broadcasts.
type Commander interface {
	Create(ctx context.Context, req domain.CreateOrderRequest) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status string) (*domain.Order, error)
	Recent(ctx context.Context, n int) ([]domain.Order, error)
}

// Authorizer decides at upgrade whether a peer is trusted with order data.
type Authorizer func(r *http.Request) bool

var (
	errNoCommander = errors.New("order commands are not available")
	errNotTrusted  = errors.New("admin key required")
)

type peer struct {
	conn    *websocket.Conn
	send    chan []byte
	trusted bool

	mu     sync.Mutex
	closed bool
}

type Hub struct {
	mu    sync.RWMutex
	peers map[*peer]struct{}

	commander    Commander
	authorize    Authorizer
	snapshotSize int
	bufferSize   int
	upgrader     websocket.Upgrader
}

func NewHub(snapshotSize int) *Hub {
	if snapshotSize <= 0 {
		snapshotSize = DefaultSnapshotSize
	}
	return &Hub{
		peers:        make(map[*peer]struct{}),
		snapshotSize: snapshotSize,
		bufferSize:   DefaultPeerBuffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// SetCommander wires the order service after both are constructed, since the
// service also publishes through the hub.
func (h *Hub) SetCommander(c Commander) {
	h.mu.Lock()
	h.commander = c
	h.mu.Unlock()
}

// SetAuthorizer installs the trust check. Without one every peer is
// untrusted.
func (h *Hub) SetAuthorizer(a Authorizer) {
	h.mu.Lock()
	h.authorize = a
	h.mu.Unlock()
}

// SetPeerBuffer changes the send buffer used for peers that connect later.
func (h *Hub) SetPeerBuffer(n int) {
	if n > 0 {
		h.mu.Lock()
		h.bufferSize = n
		h.mu.Unlock()
	}
}

func (h *Hub) newPeer(conn *websocket.Conn, trusted bool) *peer {
	h.mu.RLock()
	size := h.bufferSize
	h.mu.RUnlock()
	return &peer{conn: conn, send: make(chan []byte, size), trusted: trusted}
}

func (h *Hub) trusts(r *http.Request) bool {
	h.mu.RLock()
	authorize := h.authorize
	h.mu.RUnlock()
	return authorize != nil && authorize(r)
}

func (h *Hub) getCommander() Commander {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.commander
}

func (h *Hub) PeerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// Publish broadcasts the event to every trusted peer.
func (h *Hub) Publish(ctx context.Context, event domain.Event) error {
	msg, err := domain.EncodeEvent(event)
	if err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for p := range h.peers {
		if p.trusted {
			p.enqueue(msg)
		}
	}
	return nil
}

func (p *peer) enqueue(msg []byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	select {
	case p.send <- msg:
		return true
	default:
		metrics.ChannelMessageDropped()
		slog.Debug("channel peer buffer full, message dropped")
		return false
	}
}

// ServeWS upgrades the request and joins the peer. Trusted peers get the
// recent orders snapshot first.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	trusted := h.trusts(r)
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	p := h.newPeer(conn, trusted)
	if trusted {
		h.sendSnapshot(r.Context(), p)
	}

	h.mu.Lock()
	h.peers[p] = struct{}{}
	h.mu.Unlock()
	metrics.ChannelPeerConnected()
	slog.Info("channel peer connected", "remote", conn.RemoteAddr().String(), "trusted", trusted)

	go h.writePump(p)
	h.readPump(p)
}

func (h *Hub) sendSnapshot(ctx context.Context, p *peer) {
	cmd := h.getCommander()
	if cmd == nil {
		return
	}
	orders, err := cmd.Recent(ctx, h.snapshotSize)
	if err != nil {
		slog.Error("error fetching initial orders", "error", err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	msg, err := domain.EncodeEvent(domain.InitialOrdersEvent{Orders: orders})
	if err != nil {
		slog.Error("encode initial orders", "error", err)
		return
	}
	p.enqueue(msg)
}

func (h *Hub) remove(p *peer) {
	h.mu.Lock()
	_, ok := h.peers[p]
	delete(h.peers, p)
	h.mu.Unlock()
	if ok {
		metrics.ChannelPeerDisconnected()
	}
	p.close()
}

func (p *peer) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.send)
	}
}

func (h *Hub) readPump(p *peer) {
	defer func() {
		h.remove(p)
		p.conn.Close()
		slog.Info("channel peer disconnected", "remote", p.conn.RemoteAddr().String())
	}()

	p.conn.SetReadLimit(maxMessageSize)
	p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("channel read error", "error", err)
			}
			return
		}
		h.handleCommand(p, data)
	}
}

func (h *Hub) writePump(p *peer) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				p.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := p.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleCommand runs one peer command. Failures go back to that peer only.
// Orders placed over the channel are never tied to a device or account, so a
// peer cannot clear someone else's cart.
func (h *Hub) handleCommand(p *peer, data []byte) {
	command, err := domain.DecodeCommand(data)
	if err != nil {
		slog.Warn("invalid channel command", "error", err)
		p.reply(domain.OrderErrorEvent{Message: "Invalid command", Error: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()

	cmd := h.getCommander()
	switch c := command.(type) {
	case domain.NewOrderCommand:
		if cmd == nil {
			p.reply(domain.OrderErrorEvent{Message: "Failed to create order", Error: errNoCommander.Error()})
			return
		}
		req := c.Request
		req.DeviceID = ""
		req.UserID = ""
		order, err := cmd.Create(ctx, req)
		if err != nil {
			p.reply(domain.OrderErrorEvent{Message: "Failed to create order", Error: err.Error()})
			return
		}
		if !p.trusted {
			p.reply(domain.OrderCreatedEvent{Order: *order})
		}
	case domain.UpdateOrderStatusCommand:
		if !p.trusted {
			slog.Warn("status change refused for untrusted peer", "order_id", c.OrderID)
			p.reply(domain.UpdateErrorEvent{Message: "Failed to update order", Error: errNotTrusted.Error()})
			return
		}
		if cmd == nil {
			p.reply(domain.UpdateErrorEvent{Message: "Failed to update order", Error: errNoCommander.Error()})
			return
		}
		if _, err := cmd.UpdateStatus(ctx, c.OrderID, string(c.Status)); err != nil {
			p.reply(domain.UpdateErrorEvent{Message: "Failed to update order", Error: err.Error()})
		}
	}
}

func (p *peer) reply(event domain.Event) {
	msg, err := domain.EncodeEvent(event)
	if err != nil {
		slog.Error("encode reply", "event", event.Name(), "error", err)
		return
	}
	p.enqueue(msg)
}

// Close disconnects every peer.
func (h *Hub) Close() {
	h.mu.Lock()
	peers := make([]*peer, 0, len(h.peers))
	for p := range h.peers {
		peers = append(peers, p)
	}
	h.mu.Unlock()
	for _, p := range peers {
		h.remove(p)
	}
}
