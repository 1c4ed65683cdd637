package realtime

import (
	"log/slog"
	"net/http"

	"github.com/saransh1220/premium-profile/internal/modules/realtime/application"
	"github.com/saransh1220/premium-profile/internal/modules/realtime/infrastructure/websocket"
	realtime_http "github.com/saransh1220/premium-profile/internal/modules/realtime/interfaces/http"
)

// Module pushes change events to the open sessions of a user
type Module struct {
	hub      *websocket.Hub
	notifier *application.Notifier
	handler  *realtime_http.Handler
}

// NewModule starts the hub. checkOrigin guards websocket upgrades.
func NewModule(checkOrigin func(r *http.Request) bool, logger *slog.Logger) *Module {
	hub := websocket.NewHub(checkOrigin, logger)
	go hub.Run()

	return &Module{
		hub:      hub,
		notifier: application.NewNotifier(hub, logger),
		handler:  realtime_http.NewHandler(hub),
	}
}

func (m *Module) HTTPHandler() *realtime_http.Handler {
	return m.handler
}

func (m *Module) Notifier() *application.Notifier {
	return m.notifier
}

// Shutdown closes every connection and stops the hub.
func (m *Module) Shutdown() {
	m.hub.Stop()
}
