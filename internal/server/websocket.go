package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	propserr "github.com/winterSteve25/props/pkg/core/error"
	propslog "github.com/winterSteve25/props/pkg/core/log"
)

const (
	readTimeout  = 120 * time.Second
	writeTimeout = 10 * time.Second
)

// WebSocket upgrader; the endpoint is meant for local editors and tools
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSMessage is a client request
type WSMessage struct {
	Type    string          `json:"type"`    // "parse", "tokens", "ping"
	Payload json.RawMessage `json:"payload"` // Message-specific payload
}

// WSSourcePayload carries the text to process
type WSSourcePayload struct {
	Source string `json:"source"`
	Name   string `json:"name,omitempty"`
}

// WSResponse is a server reply
type WSResponse struct {
	Type    string      `json:"type"`    // "result", "tokens", "pong", "error"
	Payload interface{} `json:"payload"` // Response-specific payload
}

// WSErrorPayload represents an error payload
type WSErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WebSocketHandler parses sources sent over a WebSocket connection
type WebSocketHandler struct {
	service *Service
	logger  *propslog.Logger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(svc *Service, logger *propslog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = propslog.GetDefault()
	}
	return &WebSocketHandler{
		service: svc,
		logger:  logger.WithField("component", "websocket"),
	}
}

// ServeHTTP handles WebSocket upgrade and connections
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.ErrorWithErr("WebSocket upgrade failed", err)
		return
	}
	h.handleConnection(r.Context(), &wsConn{conn: conn})
}

// wsConn serializes writes to one connection
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) send(resp WSResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(resp)
}

// handleConnection serves requests until the client goes away
func (h *WebSocketHandler) handleConnection(ctx context.Context, c *wsConn) {
	defer c.conn.Close()

	h.logger.Info("WebSocket connection established", propslog.Fields{"remote": c.conn.RemoteAddr().String()})

	c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.ErrorWithErr("WebSocket read error", err)
			} else {
				h.logger.Info("WebSocket connection closed")
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(readTimeout))

		switch msg.Type {
		case "ping":
			h.sendResponse(c, WSResponse{Type: "pong"})

		case "parse", "tokens":
			var payload WSSourcePayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				h.sendError(c, "invalid_payload", "Invalid "+msg.Type+" payload")
				continue
			}
			if msg.Type == "parse" {
				h.handleParse(ctx, c, payload)
			} else {
				h.handleTokens(c, payload)
			}

		default:
			h.sendError(c, "unknown_type", "Unknown message type: "+msg.Type)
		}
	}
}

func (h *WebSocketHandler) handleParse(ctx context.Context, c *wsConn, payload WSSourcePayload) {
	unit, err := h.service.Parse(ctx, payload.Name, payload.Source)
	if err != nil {
		h.sendServiceError(c, err)
		return
	}
	h.sendResponse(c, WSResponse{Type: "result", Payload: unit.Export()})
}

func (h *WebSocketHandler) handleTokens(c *wsConn, payload WSSourcePayload) {
	items, err := h.service.Tokens(payload.Source)
	if err != nil {
		h.sendServiceError(c, err)
		return
	}
	h.sendResponse(c, WSResponse{Type: "tokens", Payload: map[string]interface{}{"tokens": ExportTokens(items)}})
}

// sendResponse sends a response message via WebSocket
func (h *WebSocketHandler) sendResponse(c *wsConn, resp WSResponse) {
	if err := c.send(resp); err != nil {
		h.logger.ErrorWithErr("WebSocket send error", err)
	}
}

// sendError sends an error response via WebSocket
func (h *WebSocketHandler) sendError(c *wsConn, code, message string) {
	h.sendResponse(c, WSResponse{
		Type: "error",
		Payload: WSErrorPayload{
			Code:    code,
			Message: message,
		},
	})
}

func (h *WebSocketHandler) sendServiceError(c *wsConn, err error) {
	code := propserr.GetCode(err)
	h.sendError(c, string(code), err.Error())
}
