package handler

import (
	"log/slog"
	"net/http"

	gorillaws "github.com/gorilla/websocket"

	"go-parish-admin/internal/websocket"
)

type WSHandler struct {
	hub      *websocket.Hub
	upgrader gorillaws.Upgrader
}

func NewWSHandler(hub *websocket.Hub, allowedOrigins []string) *WSHandler {
	return &WSHandler{hub: hub, upgrader: websocket.Upgrader(allowedOrigins)}
}

// Connect upgrades the request and subscribes the connection to lifecycle events.
func (h *WSHandler) Connect(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	h.hub.Serve(conn, actorFromRequest(r).Email)
}
