package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrEnvelopeIDRequired indicates a missing envelope id.
	ErrEnvelopeIDRequired = errors.New("envelope id is required")
	// ErrTypeRequired indicates a missing event type.
	ErrTypeRequired = errors.New("event type is required")
	// ErrTypeUnknown indicates an unregistered event type.
	ErrTypeUnknown = errors.New("event type is not registered")
	// ErrActorTypeInvalid indicates an unknown actor type.
	ErrActorTypeInvalid = errors.New("actor type is invalid")
	// ErrActorIDRequired indicates a missing actor id for caseworker/defendant.
	ErrActorIDRequired = errors.New("actor id is required for caseworker or defendant")
	// ErrEntityTypeRequired indicates missing entity addressing.
	ErrEntityTypeRequired = errors.New("entity type is required")
	// ErrEntityIDRequired indicates missing entity addressing.
	ErrEntityIDRequired = errors.New("entity id is required")
	// ErrPayloadInvalid indicates malformed payload JSON.
	ErrPayloadInvalid = errors.New("payload json must be valid")
)

// Intent declares how an event type participates in replay and projection.
type Intent string

const (
	// IntentProjectionAndReplay marks events that rebuild aggregate state and
	// feed read models. This is the default.
	IntentProjectionAndReplay Intent = "projection_and_replay"
	// IntentReplayOnly marks events that exist solely to rebuild transient
	// aggregate state and must never be externally projected.
	IntentReplayOnly Intent = "replay_only"
	// IntentAuditOnly marks events recorded for the audit trail that neither
	// rebuild aggregate state nor feed read models.
	IntentAuditOnly Intent = "audit_only"
)

// AddressingPolicy declares entity addressing requirements for an event type.
type AddressingPolicy string

const (
	// AddressingPolicyNone requires no entity addressing.
	AddressingPolicyNone AddressingPolicy = "none"
	// AddressingPolicyEntityTarget requires EntityType and EntityID.
	AddressingPolicyEntityTarget AddressingPolicy = "entity_target"
)

// Definition registers metadata for an event type.
type Definition struct {
	Type            Type
	Addressing      AddressingPolicy
	Intent          Intent
	ValidatePayload PayloadValidator
}

// PayloadValidator validates a payload JSON document.
type PayloadValidator func(json.RawMessage) error

// Registry stores event definitions and validates events before append.
type Registry struct {
	definitions map[Type]Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{definitions: make(map[Type]Definition)}
}

// Register adds a new event type definition to the registry.
func (r *Registry) Register(def Definition) error {
	if r == nil {
		return errors.New("registry is required")
	}
	def.Type = Type(strings.TrimSpace(string(def.Type)))
	if def.Type == "" {
		return ErrTypeRequired
	}
	if _, exists := r.definitions[def.Type]; exists {
		return fmt.Errorf("event type already registered: %s", def.Type)
	}
	switch def.Intent {
	case "":
		def.Intent = IntentProjectionAndReplay
	case IntentProjectionAndReplay, IntentReplayOnly, IntentAuditOnly:
	default:
		return fmt.Errorf("event intent is invalid: %q", def.Intent)
	}
	switch def.Addressing {
	case "":
		def.Addressing = AddressingPolicyNone
	case AddressingPolicyNone, AddressingPolicyEntityTarget:
	default:
		return fmt.Errorf("event addressing policy is invalid: %q", def.Addressing)
	}
	r.definitions[def.Type] = def
	return nil
}

// Definition returns the definition for an event type.
func (r *Registry) Definition(t Type) (Definition, bool) {
	if r == nil {
		return Definition{}, false
	}
	def, ok := r.definitions[t]
	return def, ok
}

// ListDefinitions returns all definitions sorted by type.
func (r *Registry) ListDefinitions() []Definition {
	if r == nil {
		return nil
	}
	definitions := make([]Definition, 0, len(r.definitions))
	for _, def := range r.definitions {
		definitions = append(definitions, def)
	}
	sort.Slice(definitions, func(i, j int) bool {
		return definitions[i].Type < definitions[j].Type
	})
	return definitions
}

// ValidateForAppend normalizes and validates an event before it is appended to
// the journal. Payload JSON is canonicalized so hashing and comparison are
// stable regardless of field order in the emitting decider.
func (r *Registry) ValidateForAppend(evt Event) (Event, error) {
	evt.EnvelopeID = strings.TrimSpace(evt.EnvelopeID)
	if evt.EnvelopeID == "" {
		return Event{}, ErrEnvelopeIDRequired
	}
	if !evt.Type.IsValid() {
		return Event{}, ErrTypeRequired
	}
	def, ok := r.Definition(evt.Type)
	if !ok {
		return Event{}, fmt.Errorf("%w: %s", ErrTypeUnknown, evt.Type)
	}

	switch evt.ActorType {
	case ActorTypeSystem:
	case ActorTypeCaseworker, ActorTypeDefendant:
		if strings.TrimSpace(evt.ActorID) == "" {
			return Event{}, ErrActorIDRequired
		}
	default:
		return Event{}, fmt.Errorf("%w: %q", ErrActorTypeInvalid, evt.ActorType)
	}

	if def.Addressing == AddressingPolicyEntityTarget {
		if strings.TrimSpace(evt.EntityType) == "" {
			return Event{}, ErrEntityTypeRequired
		}
		if strings.TrimSpace(evt.EntityID) == "" {
			return Event{}, ErrEntityIDRequired
		}
	}

	if len(evt.PayloadJSON) == 0 {
		evt.PayloadJSON = []byte("{}")
	}
	canonical, err := canonicalJSON(evt.PayloadJSON)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrPayloadInvalid, err)
	}
	evt.PayloadJSON = canonical

	if def.ValidatePayload != nil {
		if err := def.ValidatePayload(evt.PayloadJSON); err != nil {
			return Event{}, fmt.Errorf("validate payload for %s: %w", evt.Type, err)
		}
	}
	return evt, nil
}

// canonicalJSON re-encodes payload JSON with sorted object keys so two
// logically equal payloads hash identically.
func canonicalJSON(raw []byte) ([]byte, error) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, err
	}
	return json.Marshal(value)
}
