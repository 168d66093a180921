package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans out live updates to connected clients, keyed by install id.
// Per-install messages (download progress, completion) arrive over
// redis pub/sub so the worker can publish from any process; rotation
// ticks go to every connection.
type Hub struct {
	mu          sync.RWMutex
	connections map[string][]*websocket.Conn
	redisClient *redis.Client
	cancelFuncs map[string]context.CancelFunc
}

func NewHub(redisClient *redis.Client) *Hub {
	return &Hub{
		connections: make(map[string][]*websocket.Conn),
		redisClient: redisClient,
		cancelFuncs: make(map[string]context.CancelFunc),
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	installID := r.URL.Query().Get("install_id")
	if installID == "" {
		http.Error(w, "install_id is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	h.registerConnection(installID, conn)

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregisterConnection(installID, conn)
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				break
			}
		}
	}()
}

func (h *Hub) registerConnection(installID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[installID] = append(h.connections[installID], conn)

	// Start pub/sub subscription if this is the first connection for this install
	if len(h.connections[installID]) == 1 {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[installID] = cancel
		go h.subscribeToPubSub(ctx, installID)
	}

	log.Printf("WebSocket connected: install %s (total: %d)", installID, len(h.connections[installID]))
}

func (h *Hub) unregisterConnection(installID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn.Close()

	conns := h.connections[installID]
	for i, c := range conns {
		if c == conn {
			h.connections[installID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}

	// If no more connections, cancel pub/sub
	if len(h.connections[installID]) == 0 {
		delete(h.connections, installID)
		if cancel, ok := h.cancelFuncs[installID]; ok {
			cancel()
			delete(h.cancelFuncs, installID)
		}
	}

	log.Printf("WebSocket disconnected: install %s", installID)
}

func (h *Hub) subscribeToPubSub(ctx context.Context, installID string) {
	channel := "install_updates:" + installID
	pubsub := h.redisClient.Subscribe(ctx, channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast(installID, []byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(installID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conn := range h.connections[installID] {
		conn.WriteMessage(websocket.TextMessage, data)
	}
}

// SendToInstall sends a message directly to one install (for use outside pub/sub)
func (h *Hub) SendToInstall(installID string, msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.broadcast(installID, data)
}

// BroadcastAll sends a typed message to every connected client. Used
// for rotation ticks, which are not install-specific.
func (h *Hub) BroadcastAll(msgType string, payload interface{}) {
	data, err := json.Marshal(map[string]interface{}{
		"type":    msgType,
		"payload": payload,
	})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conns := range h.connections {
		for _, conn := range conns {
			conn.WriteMessage(websocket.TextMessage, data)
		}
	}
}
