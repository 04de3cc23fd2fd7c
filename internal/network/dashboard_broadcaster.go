package network

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"attentionos/internal/analytics/models"
	"attentionos/pkg/logger"
)

// Message types sent over the dashboard feed
const (
	MsgDashboard = "dashboard"
	MsgError     = "error"
	MsgRefresh   = "refresh"
)

// Message is a single frame on the dashboard feed
type Message struct {
	Type      string            `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Dashboard *models.Dashboard `json:"dashboard,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// DashboardProvider computes the current dashboard snapshot
type DashboardProvider interface {
	Dashboard(ctx context.Context) (*models.Dashboard, error)
}

// BroadcasterConfig tunes the feed
type BroadcasterConfig struct {
	RefreshInterval time.Duration
	PingInterval    time.Duration
	ClientBuffer    int
}

// DashboardClient represents a WebSocket client subscribed to the dashboard
type DashboardClient struct {
	conn     *websocket.Conn
	buffer   chan Message
	done     chan struct{}
	clientID string
	lastPing atomic.Int64 // unix nanoseconds of the last ping written
}

// LastPing returns when the client was last pinged, or its connect time
func (c *DashboardClient) LastPing() time.Time {
	return time.Unix(0, c.lastPing.Load())
}

// DashboardBroadcaster pushes a fresh dashboard to every connected client
// whenever the derived metrics change
type DashboardBroadcaster struct {
	provider DashboardProvider
	config   BroadcasterConfig

	clients   map[string]*DashboardClient
	clientsMu sync.RWMutex

	latest      *Message
	fingerprint string
	latestMu    sync.RWMutex

	upgrader websocket.Upgrader
	logger   *logger.ColoredLogger

	stop    chan struct{}
	stopMu  sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

// NewDashboardBroadcaster creates a new dashboard broadcaster
func NewDashboardBroadcaster(provider DashboardProvider, config BroadcasterConfig) *DashboardBroadcaster {
	if config.RefreshInterval <= 0 {
		config.RefreshInterval = 30 * time.Second
	}
	if config.PingInterval <= 0 {
		config.PingInterval = 30 * time.Second
	}
	if config.ClientBuffer <= 0 {
		config.ClientBuffer = 16
	}

	return &DashboardBroadcaster{
		provider: provider,
		config:   config,
		clients:  make(map[string]*DashboardClient),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Dashboard is served from a different origin
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger.FeedLogger,
		stop:   make(chan struct{}),
	}
}

// Refresh recomputes the dashboard and broadcasts it if it changed.
// It reports whether a new snapshot was broadcast.
func (b *DashboardBroadcaster) Refresh(ctx context.Context) (bool, error) {
	dashboard, err := b.provider.Dashboard(ctx)
	if err != nil {
		b.logger.Error("Failed to refresh dashboard: %v", err)
		return false, err
	}

	fingerprint, err := fingerprintOf(dashboard)
	if err != nil {
		return false, err
	}

	msg := Message{Type: MsgDashboard, Timestamp: dashboard.GeneratedAt, Dashboard: dashboard}

	b.latestMu.Lock()
	changed := fingerprint != b.fingerprint
	if changed {
		b.fingerprint = fingerprint
		b.latest = &msg
	}
	b.latestMu.Unlock()

	if changed {
		b.logger.Debug("Dashboard changed, broadcasting to %d clients", b.GetClientCount())
		b.broadcastToClients(msg)
	}
	return changed, nil
}

// Notify triggers an immediate refresh, e.g. after a session was stored.
// It does nothing once the broadcaster is stopped.
func (b *DashboardBroadcaster) Notify() {
	if !b.track() {
		return
	}
	go func() {
		defer b.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), b.config.RefreshInterval)
		defer cancel()
		b.Refresh(ctx)
	}()
}

// Start refreshes on a fixed interval until Stop is called or ctx is done
func (b *DashboardBroadcaster) Start(ctx context.Context) {
	if !b.track() {
		return
	}
	go func() {
		defer b.wg.Done()

		ticker := time.NewTicker(b.config.RefreshInterval)
		defer ticker.Stop()

		b.Refresh(ctx)
		for {
			select {
			case <-ticker.C:
				b.Refresh(ctx)
			case <-ctx.Done():
				return
			case <-b.stop:
				return
			}
		}
	}()

	b.logger.Info("Dashboard feed started (refresh every %v)", b.config.RefreshInterval)
}

// track registers a background refresh unless the broadcaster is stopped
func (b *DashboardBroadcaster) track() bool {
	b.stopMu.Lock()
	defer b.stopMu.Unlock()

	if b.stopped {
		return false
	}
	b.wg.Add(1)
	return true
}

// Stop ends the refresh loop, waits for pending refreshes and disconnects
// every client. It is safe to call more than once.
func (b *DashboardBroadcaster) Stop() {
	b.stopMu.Lock()
	if !b.stopped {
		b.stopped = true
		close(b.stop)
	}
	b.stopMu.Unlock()
	b.wg.Wait()

	b.clientsMu.RLock()
	ids := make([]string, 0, len(b.clients))
	for id := range b.clients {
		ids = append(ids, id)
	}
	b.clientsMu.RUnlock()

	for _, id := range ids {
		b.RemoveClient(id)
	}
}

// HandleWebSocket upgrades the request and subscribes the connection
func (b *DashboardBroadcaster) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Error("Failed to upgrade connection: %v", err)
		return
	}

	client := b.AddClient(conn)

	if snapshot := b.Latest(); snapshot != nil {
		b.send(client, *snapshot)
	} else if _, err := b.Refresh(r.Context()); err != nil {
		b.send(client, Message{Type: MsgError, Timestamp: time.Now(), Error: err.Error()})
	}

	b.readPump(client)
}

// AddClient registers a connection and starts its writer
func (b *DashboardBroadcaster) AddClient(conn *websocket.Conn) *DashboardClient {
	client := &DashboardClient{
		conn:     conn,
		buffer:   make(chan Message, b.config.ClientBuffer),
		done:     make(chan struct{}),
		clientID: uuid.New().String(),
	}
	client.lastPing.Store(time.Now().UnixNano())

	b.clientsMu.Lock()
	b.clients[client.clientID] = client
	b.clientsMu.Unlock()

	b.logger.Info("Dashboard client connected: %s", client.clientID)

	go b.handleClient(client)
	return client
}

// RemoveClient removes a WebSocket client
func (b *DashboardBroadcaster) RemoveClient(clientID string) {
	b.clientsMu.Lock()
	defer b.clientsMu.Unlock()

	if client, exists := b.clients[clientID]; exists {
		close(client.done)
		client.conn.Close()
		delete(b.clients, clientID)
		b.logger.Info("Dashboard client disconnected: %s", clientID)
	}
}

// Latest returns the last broadcast snapshot, if any
func (b *DashboardBroadcaster) Latest() *Message {
	b.latestMu.RLock()
	defer b.latestMu.RUnlock()
	return b.latest
}

// GetClientCount returns the number of connected clients
func (b *DashboardBroadcaster) GetClientCount() int {
	b.clientsMu.RLock()
	defer b.clientsMu.RUnlock()
	return len(b.clients)
}

// GetStats returns statistics about the broadcaster
func (b *DashboardBroadcaster) GetStats() map[string]interface{} {
	b.clientsMu.RLock()
	lastPings := make(map[string]time.Time, len(b.clients))
	for id, client := range b.clients {
		lastPings[id] = client.LastPing()
	}
	b.clientsMu.RUnlock()

	stats := map[string]interface{}{
		"connected_clients": len(lastPings),
		"refresh_interval":  b.config.RefreshInterval.String(),
		"client_last_ping":  lastPings,
	}
	if latest := b.Latest(); latest != nil {
		stats["last_snapshot"] = latest.Timestamp
	}
	return stats
}

func (b *DashboardBroadcaster) broadcastToClients(msg Message) {
	b.clientsMu.RLock()
	defer b.clientsMu.RUnlock()

	for _, client := range b.clients {
		b.send(client, msg)
	}
}

func (b *DashboardBroadcaster) send(client *DashboardClient, msg Message) {
	select {
	case client.buffer <- msg:
	case <-client.done:
	default:
		b.logger.Warn("Dashboard buffer full for client: %s", client.clientID)
	}
}

// handleClient is the only writer on the client's connection
func (b *DashboardBroadcaster) handleClient(client *DashboardClient) {
	ticker := time.NewTicker(b.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-client.buffer:
			client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.conn.WriteJSON(msg); err != nil {
				b.logger.Error("Failed to send dashboard to client %s: %v", client.clientID, err)
				b.RemoveClient(client.clientID)
				return
			}

		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				b.logger.Error("Failed to ping client %s: %v", client.clientID, err)
				b.RemoveClient(client.clientID)
				return
			}
			client.lastPing.Store(time.Now().UnixNano())

		case <-client.done:
			return
		}
	}
}

// readPump consumes client frames until the connection closes. A
// {"type":"refresh"} frame asks for the current snapshot.
func (b *DashboardBroadcaster) readPump(client *DashboardClient) {
	defer b.RemoveClient(client.clientID)

	client.conn.SetReadLimit(4096)
	for {
		var msg Message
		if err := client.conn.ReadJSON(&msg); err != nil {
			return
		}

		if msg.Type == MsgRefresh {
			if snapshot := b.Latest(); snapshot != nil {
				b.send(client, *snapshot)
			}
		}
	}
}

// fingerprintOf hashes the dashboard without its generation time
func fingerprintOf(d *models.Dashboard) (string, error) {
	stripped := *d
	stripped.GeneratedAt = time.Time{}

	data, err := json.Marshal(stripped)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
