// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/noldarim/fuzzy/internal/service"
)

const (
	// WebSocket limits
	maxMessageSize = 64 * 1024
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	writeWait      = 10 * time.Second
	maxClients     = 1000
)

// newUpgrader creates a WebSocket upgrader that respects the configured allowed
// origins. When allowedOrigins is empty the upgrader accepts any origin
// (localhost development mode). When set, only those origins are permitted.
func newUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}

	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if len(allowed) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			_, ok := allowed[origin]
			return ok
		},
	}
}

// wsClient is one stream of passes on a single engine.
type wsClient struct {
	conn   *websocket.Conn
	engine string
	send   chan []byte
}

// ClientRegistry tracks the open streams.
type ClientRegistry struct {
	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

// NewClientRegistry creates a new client registry.
func NewClientRegistry() *ClientRegistry {
	return &ClientRegistry{
		clients: make(map[*wsClient]struct{}),
	}
}

func (r *ClientRegistry) add(c *wsClient) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.clients) >= maxClients {
		return false
	}
	r.clients[c] = struct{}{}
	return true
}

func (r *ClientRegistry) remove(c *wsClient) {
	r.mu.Lock()
	delete(r.clients, c)
	r.mu.Unlock()
}

// Count returns the number of open streams.
func (r *ClientRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// CloseAll sends a going-away close frame to every stream and closes it.
func (r *ClientRegistry) CloseAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for c := range r.clients {
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		_ = c.conn.Close()
	}
}

// wsRequest is a client → server message: the inputs of one pass.
type wsRequest struct {
	ID     string                   `json:"id,omitempty"`
	Inputs map[string]service.Value `json:"inputs"`
}

// wsResponse is a server → client message, answering the request of the same
// ID.
type wsResponse struct {
	Type    string          `json:"type"` // "result" or "error"
	ID      string          `json:"id,omitempty"`
	Result  *service.Result `json:"result,omitempty"`
	Message string          `json:"message,omitempty"`
}

// HandleWebSocket upgrades an HTTP connection into a stream of passes on the
// engine named in the path. Every inbound message runs one pass and gets one
// reply, in order.
func HandleWebSocket(registry *ClientRegistry, svc *service.EngineService, allowedOrigins []string) http.HandlerFunc {
	upgrader := newUpgrader(allowedOrigins)

	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if _, err := svc.Describe(name); err != nil {
			writeError(w, r, "Failed to open stream", err)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			getLog().Error().Err(err).Msg("WebSocket upgrade failed")
			return
		}

		client := &wsClient{
			conn:   conn,
			engine: name,
			send:   make(chan []byte, 64),
		}
		if !registry.add(client) {
			getLog().Warn().Msg("WebSocket connection limit reached")
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "too many connections"))
			conn.Close()
			return
		}
		getLog().Info().Str("remote", r.RemoteAddr).Str("engine", name).Msg("WebSocket client connected")

		// The request context ends with the handler, so the stream gets its own.
		ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
		defer cancel()

		go client.writePump()
		client.readPump(ctx, registry, svc)
	}
}

func (c *wsClient) readPump(ctx context.Context, registry *ClientRegistry, svc *service.EngineService) {
	defer func() {
		registry.remove(c)
		close(c.send) // signals writePump to exit
		c.conn.Close()
		getLog().Info().Str("engine", c.engine).Msg("WebSocket client disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				getLog().Error().Err(err).Msg("WebSocket read error")
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		reply := c.handle(ctx, svc, message)
		data, err := json.Marshal(reply)
		if err != nil {
			getLog().Error().Err(err).Msg("Failed to marshal WebSocket reply")
			return
		}
		select {
		case c.send <- data:
		case <-time.After(writeWait):
			getLog().Warn().Str("engine", c.engine).Msg("Dropping slow WebSocket client")
			return
		}
	}
}

func (c *wsClient) handle(ctx context.Context, svc *service.EngineService, message []byte) wsResponse {
	var req wsRequest
	if err := json.Unmarshal(message, &req); err != nil {
		return wsResponse{Type: "error", Message: "invalid message: " + err.Error()}
	}
	result, err := svc.Process(ctx, c.engine, toFloats(req.Inputs))
	if err != nil {
		return wsResponse{Type: "error", ID: req.ID, Message: err.Error()}
	}
	return wsResponse{Type: "result", ID: req.ID, Result: &result}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed by readPump, send close frame.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				getLog().Error().Err(err).Msg("WebSocket write error")
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
