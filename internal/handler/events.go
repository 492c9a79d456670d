package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/eshift/customer-core/internal/observability/metrics"
	"github.com/eshift/customer-core/internal/realtime"
	"github.com/eshift/customer-core/internal/security/auth"
)

// EventsHandler upgrades admin connections to a WebSocket event feed of
// customer registrations and deletions.
type EventsHandler struct {
	hub            *realtime.Hub
	tokenManager   *auth.TokenManager
	allowedOrigins []string
	logger         *slog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(hub *realtime.Hub, tm *auth.TokenManager, allowedOrigins []string, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		hub:            hub,
		tokenManager:   tm,
		allowedOrigins: allowedOrigins,
		logger:         logger,
	}
}

func (h *EventsHandler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// Allow requests with no origin (e.g., non-browser clients)
				return true
			}
			for _, allowed := range h.allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			h.logger.Warn("websocket origin rejected", slog.String("origin", origin))
			return false
		},
	}
}

// ServeHTTP handles GET /ws/events requests. Browsers cannot set headers on
// upgrade requests, so the session token travels as a query parameter.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing token")
		return
	}

	claims, err := h.tokenManager.ValidateToken(token)
	if err != nil || claims.Role != auth.RoleAdmin {
		writeError(w, http.StatusForbidden, "admin token required")
		return
	}

	upgrader := h.getUpgrader()
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer ws.Close()

	release := h.hub.Register(ws)
	defer release()
	metrics.EventSubscriberConnected()
	defer metrics.EventSubscriberDisconnected()

	h.logger.Info("admin event subscriber connected", slog.String("email", claims.Email))

	// Drain the connection until the client goes away; subscribers only
	// receive, they never send.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}
