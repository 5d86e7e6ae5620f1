package command

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
	// ErrTypeRequired indicates a missing command type.
	ErrTypeRequired = errors.New("command type is required")
	// ErrTypeUnknown indicates an unregistered command type.
	ErrTypeUnknown = errors.New("command type is not registered")
	// ErrActorTypeInvalid indicates an unknown actor type.
	ErrActorTypeInvalid = errors.New("actor type is invalid")
	// ErrActorIDRequired indicates a missing actor id for caseworker/defendant.
	ErrActorIDRequired = errors.New("actor id is required for caseworker or defendant")
	// ErrPayloadInvalid indicates malformed payload JSON.
	ErrPayloadInvalid = errors.New("payload json must be valid")
)

// Shared rejection codes used by deciders across subdomains.
const (
	// RejectionCodePayloadDecodeFailed indicates a payload that could not be decoded.
	RejectionCodePayloadDecodeFailed = "PAYLOAD_DECODE_FAILED"
	// RejectionCodeCommandTypeUnsupported indicates a command routed to the wrong decider.
	RejectionCodeCommandTypeUnsupported = "COMMAND_TYPE_UNSUPPORTED"
)

// Type identifies the command type string.
type Type string

// ActorType identifies the actor who initiated the command.
type ActorType string

const (
	// ActorTypeSystem indicates a pipeline-originated command.
	ActorTypeSystem ActorType = "system"
	// ActorTypeCaseworker indicates a caseworker-originated command.
	ActorTypeCaseworker ActorType = "caseworker"
	// ActorTypeDefendant indicates a defendant-submission command.
	ActorTypeDefendant ActorType = "defendant"
)

// Command captures the canonical command envelope.
type Command struct {
	EnvelopeID    string
	Type          Type
	ActorType     ActorType
	ActorID       string
	RequestID     string
	CorrelationID string
	CausationID   string
	PayloadJSON   []byte
}

// Definition registers metadata for a command type.
type Definition struct {
	Type            Type
	ValidatePayload PayloadValidator
}

// PayloadValidator validates a payload JSON document.
type PayloadValidator func(json.RawMessage) error

// Registry stores command definitions and validates commands.
type Registry struct {
	definitions map[Type]Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{definitions: make(map[Type]Definition)}
}

// Register adds a new command type definition to the registry.
func (r *Registry) Register(def Definition) error {
	if r == nil {
		return errors.New("registry is required")
	}
	def.Type = Type(strings.TrimSpace(string(def.Type)))
	if def.Type == "" {
		return ErrTypeRequired
	}
	if _, exists := r.definitions[def.Type]; exists {
		return fmt.Errorf("command type already registered: %s", def.Type)
	}
	r.definitions[def.Type] = def
	return nil
}

// Definition returns the definition for a command type.
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

// ValidateForDecision normalizes and validates a command before a decider sees it.
func (r *Registry) ValidateForDecision(cmd Command) (Command, error) {
	cmd.EnvelopeID = strings.TrimSpace(cmd.EnvelopeID)
	cmd.Type = Type(strings.TrimSpace(string(cmd.Type)))
	cmd.ActorID = strings.TrimSpace(cmd.ActorID)

	if cmd.EnvelopeID == "" {
		return Command{}, ErrEnvelopeIDRequired
	}
	if cmd.Type == "" {
		return Command{}, ErrTypeRequired
	}
	def, ok := r.Definition(cmd.Type)
	if !ok {
		return Command{}, fmt.Errorf("%w: %s", ErrTypeUnknown, cmd.Type)
	}

	switch cmd.ActorType {
	case ActorTypeSystem:
	case ActorTypeCaseworker, ActorTypeDefendant:
		if cmd.ActorID == "" {
			return Command{}, ErrActorIDRequired
		}
	default:
		return Command{}, fmt.Errorf("%w: %q", ErrActorTypeInvalid, cmd.ActorType)
	}

	if len(cmd.PayloadJSON) == 0 {
		cmd.PayloadJSON = []byte("{}")
	}
	if !json.Valid(cmd.PayloadJSON) {
		return Command{}, ErrPayloadInvalid
	}
	if def.ValidatePayload != nil {
		if err := def.ValidatePayload(cmd.PayloadJSON); err != nil {
			return Command{}, fmt.Errorf("validate payload for %s: %w", cmd.Type, err)
		}
	}
	return cmd, nil
}
