package plea

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/opencourts/scandesk/internal/scan/domain/command"
	"github.com/opencourts/scandesk/internal/scan/domain/event"
)

var errDocumentIDRequired = errors.New("document id is required")

// RegisterCommands registers the plea command with the shared registry.
func RegisterCommands(registry *command.Registry) error {
	if registry == nil {
		return errors.New("command registry is required")
	}
	return registry.Register(command.Definition{
		Type:            CommandTypeUpdateDefendantDetails,
		ValidatePayload: validateUpdateDetailsPayload,
	})
}

// RegisterEvents registers plea events with the shared registry.
func RegisterEvents(registry *event.Registry) error {
	if registry == nil {
		return errors.New("event registry is required")
	}
	definitions := []event.Definition{
		{
			Type:       EventTypeDetailsUpdated,
			Addressing: event.AddressingPolicyEntityTarget,
			Intent:     event.IntentProjectionAndReplay,
		},
		{
			Type:       EventTypePleaDetailsUpdated,
			Addressing: event.AddressingPolicyEntityTarget,
			Intent:     event.IntentProjectionAndReplay,
		},
	}
	for _, definition := range definitions {
		if err := registry.Register(definition); err != nil {
			return err
		}
	}
	return nil
}

func validateUpdateDetailsPayload(raw json.RawMessage) error {
	var payload UpdateDetailsPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if strings.TrimSpace(payload.Defendant.DocumentID) == "" {
		return errDocumentIDRequired
	}
	return nil
}
