package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"ai-interviewer-be/internal/constant"
	"ai-interviewer-be/internal/pkg/logger"
)

// Hub fans formatted instruction text out to the session drivers
// connected for each interview. A session can have several drivers
// attached (e.g. operator console plus the voice bridge).
type Hub struct {
	// Registered clients map: SessionID -> List of Clients
	clients map[uuid.UUID][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance delivery
	rdb *redis.Client

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Driver connected", map[string]interface{}{"session_id": client.SessionID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.SessionID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.SessionID]) == 0 {
					delete(h.clients, client.SessionID)
					h.logger.Info("Hub", "Session fully disconnected", map[string]interface{}{"session_id": client.SessionID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// SendToSession delivers an instruction payload to every driver attached
// to a session, locally and via Redis for other instances. Delivery
// failure never propagates: a slow driver is dropped and the interview
// continues with whatever instructions it already has.
func (h *Hub) SendToSession(sessionID uuid.UUID, payload []byte) {
	h.mu.RLock()
	clients, localFound := h.clients[sessionID]
	h.mu.RUnlock()

	if localFound {
		for _, client := range clients {
			select {
			case client.Send <- payload:
			default:
				// The Run loop owns the Send channel and closes it exactly
				// once when it removes the client.
				h.logger.Warn("Hub", "Driver send buffer full, dropping connection", map[string]interface{}{"session_id": sessionID})
				h.unregister <- client
			}
		}
	}

	if h.rdb != nil {
		wrapped, _ := json.Marshal(map[string]interface{}{
			"target_session_id": sessionID.String(),
			"message":           json.RawMessage(payload),
		})
		h.rdb.Publish(context.Background(), constant.InstructionClusterChannel, wrapped)
	}
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes to the cluster channel and delivers only
	// to sessions it holds locally.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, constant.InstructionClusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			TargetSessionID string          `json:"target_session_id"`
			Message         json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		sid, err := uuid.Parse(payload.TargetSessionID)
		if err != nil {
			continue
		}

		h.mu.RLock()
		clients, ok := h.clients[sid]
		h.mu.RUnlock()

		if ok {
			for _, client := range clients {
				select {
				case client.Send <- payload.Message:
				default:
					h.unregister <- client
				}
			}
		}
	}
}
