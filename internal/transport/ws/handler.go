// Package ws exposes the session core over a websocket endpoint. Each
// connection gets one Client with a read pump feeding the coordinator and
// a write pump draining its outbound buffer.
package ws

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/mcoot/rpsduel-go/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades HTTP requests to websocket sessions.
type Handler struct {
	coordinator *session.Coordinator
	logger      *slog.Logger
}

// NewHandler creates a websocket handler backed by the given coordinator
func NewHandler(coordinator *session.Coordinator, logger *slog.Logger) *Handler {
	return &Handler{
		coordinator: coordinator,
		logger:      logger.With(slog.String("component", "ws")),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	// Session work must outlive the request context, which dies with the
	// hijacked HTTP handler.
	ctx := context.WithoutCancel(r.Context())

	client := newClient(conn, h.coordinator, h.logger)
	go client.writePump()
	client.readPump(ctx)
}
