package means

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/opencourts/scandesk/internal/scan/domain/command"
	"github.com/opencourts/scandesk/internal/scan/domain/event"
)

var errDocumentIDRequired = errors.New("document id is required")

// RegisterCommands registers the means command with the shared registry.
func RegisterCommands(registry *command.Registry) error {
	if registry == nil {
		return errors.New("command registry is required")
	}
	return registry.Register(command.Definition{
		Type:            CommandTypeUpdateFinancialMeans,
		ValidatePayload: validateUpdatePayload,
	})
}

// RegisterEvents registers the means event with the shared registry. The
// reconciled record feeds projections; it does not rebuild the memento.
func RegisterEvents(registry *event.Registry) error {
	if registry == nil {
		return errors.New("event registry is required")
	}
	return registry.Register(event.Definition{
		Type:       EventTypeFinancialMeansUpdated,
		Addressing: event.AddressingPolicyEntityTarget,
		Intent:     event.IntentProjectionAndReplay,
	})
}

func validateUpdatePayload(raw json.RawMessage) error {
	var payload UpdatePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if strings.TrimSpace(payload.DocumentID) == "" {
		return errDocumentIDRequired
	}
	return nil
}
