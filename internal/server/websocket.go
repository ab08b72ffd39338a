package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"

	"github.com/camarr-app/camarr/internal/events"
)

const writeTimeout = 10 * time.Second

// eventSocket streams bus events to websocket clients. One bus subscription
// fans out to every connected client; clients that fail a write are dropped.
type eventSocket struct {
	bus      events.EventBus
	logger   hclog.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*websocket.Conn
}

func newEventSocket(bus events.EventBus, logger hclog.Logger) *eventSocket {
	s := &eventSocket{
		bus:    bus,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[string]*websocket.Conn),
	}

	if bus != nil {
		_, err := bus.Subscribe(context.Background(), "events-websocket", events.EventFilter{}, s.broadcast)
		if err != nil {
			logger.Error("failed to subscribe to event bus", "error", err)
		}
	}
	return s
}

// handleConnection upgrades the request and keeps the connection registered
// until the peer goes away.
func (s *eventSocket) handleConnection(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to upgrade connection"})
		return
	}
	defer conn.Close()

	clientID := uuid.NewString()
	s.mu.Lock()
	s.clients[clientID] = conn
	s.mu.Unlock()
	s.logger.Debug("websocket client connected", "client", clientID)

	// Clients send nothing meaningful; the read loop only detects
	// disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.mu.Lock()
	delete(s.clients, clientID)
	s.mu.Unlock()
	s.logger.Debug("websocket client disconnected", "client", clientID)
}

// broadcast sends one bus event to every connected client.
func (s *eventSocket) broadcast(event events.Event) error {
	s.mu.RLock()
	conns := make(map[string]*websocket.Conn, len(s.clients))
	for id, conn := range s.clients {
		conns[id] = conn
	}
	s.mu.RUnlock()

	for id, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(event); err != nil {
			s.logger.Debug("dropping websocket client", "client", id, "error", err)
			conn.Close()
			s.mu.Lock()
			delete(s.clients, id)
			s.mu.Unlock()
		}
	}
	return nil
}
