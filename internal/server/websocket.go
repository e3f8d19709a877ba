package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/nunoplanning/advisor/internal/metrics"
)

// WebSocket message types
const (
	MessageTypeToken    = "token"
	MessageTypeError    = "error"
	MessageTypeComplete = "complete"
)

// WSMessage represents an outbound WebSocket message
type WSMessage struct {
	Type      string    `json:"type"`
	Content   string    `json:"content,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// newUpgrader builds a websocket upgrader enforcing the allowed-origins
// policy.
func newUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowAll := false
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if allowAll {
				return true
			}
			origin := r.Header.Get("Origin")
			// Same-host clients send no Origin header
			return origin == "" || allowed[origin]
		},
	}
}

// handleQuickAdviceWS streams quick advice tokens over a WebSocket. The
// client sends one QuickAdviceRequest; the server answers with token
// messages as the backend produces them, then a complete message.
func (s *Server) handleQuickAdviceWS(w http.ResponseWriter, r *http.Request) {
	if s.service == nil {
		writeError(w, http.StatusServiceUnavailable, "LLM provider not configured")
		return
	}

	upgrader := newUpgrader(s.config.AllowedOrigins)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.auditor.App().Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	metrics.WebSocketConnections.Inc()
	defer metrics.WebSocketConnections.Dec()

	var req QuickAdviceRequest
	if err := conn.ReadJSON(&req); err != nil {
		_ = conn.WriteJSON(WSMessage{
			Type:      MessageTypeError,
			Error:     "invalid request",
			Timestamp: time.Now().UTC(),
		})
		return
	}
	metrics.WebSocketMessagesTotal.WithLabelValues("inbound").Inc()

	tokens, err := s.service.QuickAdviceStream(r.Context(), req.FailureMessage, req.StrategiesAttempted)
	if err != nil {
		_ = conn.WriteJSON(WSMessage{
			Type:      MessageTypeError,
			Error:     err.Error(),
			Timestamp: time.Now().UTC(),
		})
		return
	}

	for token := range tokens {
		msg := WSMessage{
			Type:      MessageTypeToken,
			Content:   token,
			Timestamp: time.Now().UTC(),
		}
		if err := conn.WriteJSON(msg); err != nil {
			s.auditor.App().Debug("websocket write failed", zap.Error(err))
			return
		}
		metrics.WebSocketMessagesTotal.WithLabelValues("outbound").Inc()
	}

	_ = conn.WriteJSON(WSMessage{
		Type:      MessageTypeComplete,
		Timestamp: time.Now().UTC(),
	})
	metrics.WebSocketMessagesTotal.WithLabelValues("outbound").Inc()
}
