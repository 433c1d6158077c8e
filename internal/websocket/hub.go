package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/seed-hypermedia/mintter-sub004/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisChannel = "document_events"

// clusterMessage is what instances exchange over redis.
type clusterMessage struct {
	Origin     string          `json:"origin"`
	DocumentID string          `json:"document_id"`
	Message    json.RawMessage `json:"message"`
}

type Hub struct {
	// Subscribers per document; one user may watch from several tabs.
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance fan-out, nil when running alone
	rdb *redis.Client

	// Distinguishes our own redis messages from other instances'
	instanceID string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.DocumentID] = append(h.clients[client.DocumentID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{
				"document_id": client.DocumentID,
				"user_id":     client.UserID,
			})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.DocumentID]
	if !ok {
		return
	}
	for i, c := range clients {
		if c == client {
			h.clients[client.DocumentID] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.DocumentID]) == 0 {
		delete(h.clients, client.DocumentID)
		h.logger.Info("Hub", "Last client left document", map[string]interface{}{"document_id": client.DocumentID})
	}
}

// ClientCount reports local subscribers of a document.
func (h *Hub) ClientCount(documentID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[documentID])
}

// Publish delivers payload to local subscribers and to other instances through redis.
func (h *Hub) Publish(documentID uuid.UUID, payload []byte) {
	h.deliver(documentID, payload)

	if h.rdb == nil {
		return
	}
	data, err := json.Marshal(clusterMessage{
		Origin:     h.instanceID,
		DocumentID: documentID.String(),
		Message:    payload,
	})
	if err != nil {
		return
	}
	if err := h.rdb.Publish(context.Background(), redisChannel, data).Err(); err != nil {
		h.logger.Warn("Hub", "Redis publish failed", map[string]interface{}{"error": err})
	}
}

func (h *Hub) deliver(documentID uuid.UUID, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients[documentID] {
		select {
		case client.Send <- payload:
		default:
			// Slow reader; it catches up from the next full snapshot.
			h.logger.Warn("Hub", "Client send buffer full, dropping message", map[string]interface{}{
				"document_id": documentID,
				"user_id":     client.UserID,
			})
		}
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	h.forward(ctx, pubsub.Channel())
}

// forward relays cluster messages until ctx ends or the channel closes.
func (h *Hub) forward(ctx context.Context, ch <-chan *redis.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.handleClusterMessage([]byte(msg.Payload))
		}
	}
}

func (h *Hub) handleClusterMessage(data []byte) {
	var m clusterMessage
	if err := json.Unmarshal(data, &m); err != nil {
		h.logger.Warn("Hub", "Redis message parse error", map[string]interface{}{"error": err})
		return
	}
	if m.Origin == h.instanceID {
		return
	}
	documentID, err := uuid.Parse(m.DocumentID)
	if err != nil {
		return
	}
	h.deliver(documentID, m.Message)
}
