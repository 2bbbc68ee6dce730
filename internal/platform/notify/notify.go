// Package notify delivers domain events to connected clients. Delivery is
// fire-and-forget: recipients without a live session are skipped and the
// triggering request is never failed by a notification problem.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/caresync/hms/internal/platform/ws"
)

// Event types consumers pattern-match on.
const (
	TypeAppointment       = "appointment_notification"
	TypePrescription      = "prescription_notification"
	TypeAppointmentUpdate = "appointment_update"
)

// Event is the payload pushed over the socket channel.
type Event struct {
	Type      string      `json:"type"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent builds an event stamped with the current time.
func NewEvent(eventType, message string, data interface{}) Event {
	return Event{Type: eventType, Message: message, Data: data, Timestamp: time.Now()}
}

// Notifier fans an event out to the target users and to all admin sessions.
type Notifier interface {
	Notify(ctx context.Context, event Event, targetUserIDs ...string)
}

// LocalNotifier delivers through the in-process connection directory.
type LocalNotifier struct {
	dir    *ws.Directory
	logger zerolog.Logger
}

func NewLocalNotifier(dir *ws.Directory, logger zerolog.Logger) *LocalNotifier {
	return &LocalNotifier{dir: dir, logger: logger}
}

func (n *LocalNotifier) Notify(_ context.Context, event Event, targetUserIDs ...string) {
	data, err := json.Marshal(event)
	if err != nil {
		n.logger.Error().Err(err).Str("type", event.Type).Msg("marshal notification")
		return
	}

	targets := make(map[string]struct{}, len(targetUserIDs))
	for _, id := range targetUserIDs {
		if id == "" {
			continue
		}
		if _, seen := targets[id]; seen {
			continue
		}
		targets[id] = struct{}{}
		n.dir.SendToUser(id, data)
	}
	n.dir.SendToAdmins(data)
}
