package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Sender delivers a serialized event to every open connection of a user
type Sender interface {
	SendToUser(userID uuid.UUID, message []byte) bool
}

// Event is the frame written to websocket subscribers
type Event struct {
	Type   string    `json:"type"`
	Reason string    `json:"reason,omitempty"`
	UserID uuid.UUID `json:"userId"`
	Data   any       `json:"data,omitempty"`
	SentAt time.Time `json:"sentAt"`
}

type Notifier struct {
	sender Sender
	logger *slog.Logger
	now    func() time.Time
}

func NewNotifier(sender Sender, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		sender: sender,
		logger: logger.With("module", "realtime"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Notify pushes an event to the user's live sessions. Delivery is best-effort:
// users without an open connection simply miss it.
func (n *Notifier) Notify(ctx context.Context, userID uuid.UUID, eventType, reason string, data any) error {
	payload, err := json.Marshal(Event{
		Type:   eventType,
		Reason: reason,
		UserID: userID,
		Data:   data,
		SentAt: n.now(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}

	if !n.sender.SendToUser(userID, payload) {
		n.logger.WarnContext(ctx, "event dropped", "type", eventType, "user_id", userID)
	}
	return nil
}
