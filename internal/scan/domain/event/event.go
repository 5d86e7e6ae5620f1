package event

import (
	"strings"
	"time"
)

// Type identifies the type of a scan event. The string value is the stable
// name used for routing by the external event store and bus.
type Type string

// ActorType identifies who or what triggered an event.
type ActorType string

const (
	// ActorTypeSystem indicates the event was triggered by the scanning pipeline.
	ActorTypeSystem ActorType = "system"
	// ActorTypeCaseworker indicates the event was triggered by a caseworker.
	ActorTypeCaseworker ActorType = "caseworker"
	// ActorTypeDefendant indicates the event was triggered by a defendant submission.
	ActorTypeDefendant ActorType = "defendant"
)

// Event represents an immutable event in the scan envelope journal.
type Event struct {
	// EnvelopeID is the scan envelope stream this event belongs to.
	EnvelopeID string
	// Seq is the event sequence number within the envelope (starts at 1).
	// Assigned by storage on append.
	Seq uint64
	// Hash is the content-addressed identity (SHA-256 truncated to 128-bit).
	// Assigned by storage on append.
	Hash string
	// PrevHash is the chain hash of the preceding event in the stream.
	PrevHash string
	// ChainHash links this event to the stream prefix for tamper evidence.
	ChainHash string
	// Timestamp is when the event occurred.
	Timestamp time.Time
	// Type identifies the kind of event.
	Type Type
	// ActorType identifies who triggered the event.
	ActorType ActorType
	// ActorID is the user id when ActorType is caseworker or defendant.
	ActorID string
	// RequestID correlates related events within one command dispatch.
	RequestID string
	// CorrelationID tracks the business transaction across services.
	CorrelationID string
	// CausationID identifies the command or event that caused this one.
	CausationID string
	// EntityType is the type of entity affected (envelope, document).
	EntityType string
	// EntityID is the id of the entity affected.
	EntityID string
	// PayloadJSON holds event-specific data as JSON.
	PayloadJSON []byte
}

// IsValid reports whether the event type is usable.
func (t Type) IsValid() bool {
	return strings.TrimSpace(string(t)) != ""
}

// Domain returns the domain prefix of the event type (e.g., "envelope",
// "document", "defendant").
func (t Type) Domain() string {
	for i, c := range t {
		if c == '.' {
			return string(t[:i])
		}
	}
	return string(t)
}
