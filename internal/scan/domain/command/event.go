package command

import (
	"time"

	"github.com/opencourts/scandesk/internal/scan/domain/event"
)

// NewEvent builds an event.Event by copying the shared envelope fields from a
// command. Callers supply the event-specific type, entity addressing, payload,
// and timestamp. This eliminates per-decider boilerplate and ensures that new
// envelope fields are automatically forwarded.
func NewEvent(cmd Command, eventType event.Type, entityType, entityID string, payloadJSON []byte, now time.Time) event.Event {
	return event.Event{
		EnvelopeID:    cmd.EnvelopeID,
		Type:          eventType,
		Timestamp:     now,
		ActorType:     event.ActorType(cmd.ActorType),
		ActorID:       cmd.ActorID,
		RequestID:     cmd.RequestID,
		CorrelationID: cmd.CorrelationID,
		CausationID:   cmd.CausationID,
		EntityType:    entityType,
		EntityID:      entityID,
		PayloadJSON:   payloadJSON,
	}
}
