package http

import (
	"net/http"

	"github.com/saransh1220/premium-profile/internal/gateway/middleware"
	"github.com/saransh1220/premium-profile/internal/modules/realtime/infrastructure/websocket"
	"github.com/saransh1220/premium-profile/internal/shared/utils"
)

type Handler struct {
	hub *websocket.Hub
}

func NewHandler(hub *websocket.Hub) *Handler {
	return &Handler{hub: hub}
}

// Subscribe upgrades GET /ws to a websocket bound to the authenticated user.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	websocket.ServeWs(h.hub, w, r, userID)
}
