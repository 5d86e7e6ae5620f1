package envelope

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/opencourts/scandesk/internal/scan/domain/command"
	"github.com/opencourts/scandesk/internal/scan/domain/event"
)

var (
	errZipFileNameRequired = errors.New("zip file name is required")
	errDocumentIDRequired  = errors.New("document id is required")
	errDocumentIDDuplicate = errors.New("document ids must be unique within an envelope")
	errExpireDateRequired  = errors.New("expire date is required")
)

// RegisterCommands registers lifecycle commands with the shared registry.
func RegisterCommands(registry *command.Registry) error {
	if registry == nil {
		return errors.New("command registry is required")
	}
	definitions := []command.Definition{
		{Type: CommandTypeRegister, ValidatePayload: validateRegisterPayload},
		{Type: CommandTypeDecideNextStep, ValidatePayload: validateDocumentTarget[NextStepDecidePayload]},
		{Type: CommandTypeMarkManuallyActioned, ValidatePayload: validateDocumentTarget[MarkActionedPayload]},
		{Type: CommandTypeMarkAutoActioned, ValidatePayload: validateDocumentTarget[MarkActionedPayload]},
		{Type: CommandTypeDeleteActioned, ValidatePayload: validateDocumentTarget[DeleteActionedPayload]},
		{Type: CommandTypeReject, ValidatePayload: validateDocumentTarget[RejectPayload]},
		{Type: CommandTypeExpire, ValidatePayload: validateExpirePayload},
		{Type: CommandTypeRaiseFollowUp, ValidatePayload: validateDocumentTarget[FollowUpPayload]},
	}
	for _, definition := range definitions {
		if err := registry.Register(definition); err != nil {
			return err
		}
	}
	return nil
}

// RegisterEvents registers lifecycle events with the shared registry.
//
// next_step_paused is replay-only: it exists solely to park an early decision
// in the memento and must never be externally projected. rejected/expired are
// audit trail facts that do not change the memento.
func RegisterEvents(registry *event.Registry) error {
	if registry == nil {
		return errors.New("event registry is required")
	}
	definitions := []event.Definition{
		{
			Type:            EventTypeRegistered,
			Addressing:      event.AddressingPolicyEntityTarget,
			Intent:          event.IntentProjectionAndReplay,
			ValidatePayload: validateRegisterPayload,
		},
		{
			Type:       EventTypeNextStepDecided,
			Addressing: event.AddressingPolicyEntityTarget,
			Intent:     event.IntentProjectionAndReplay,
		},
		{
			Type:       EventTypeNextStepPaused,
			Addressing: event.AddressingPolicyEntityTarget,
			Intent:     event.IntentReplayOnly,
		},
		{
			Type:       EventTypeManuallyActioned,
			Addressing: event.AddressingPolicyEntityTarget,
			Intent:     event.IntentProjectionAndReplay,
		},
		{
			Type:       EventTypeAutoActioned,
			Addressing: event.AddressingPolicyEntityTarget,
			Intent:     event.IntentProjectionAndReplay,
		},
		{
			Type:       EventTypeActionedDeleted,
			Addressing: event.AddressingPolicyEntityTarget,
			Intent:     event.IntentProjectionAndReplay,
		},
		{
			Type:       EventTypeRejected,
			Addressing: event.AddressingPolicyEntityTarget,
			Intent:     event.IntentAuditOnly,
		},
		{
			Type:       EventTypeExpired,
			Addressing: event.AddressingPolicyEntityTarget,
			Intent:     event.IntentAuditOnly,
		},
		{
			Type:       EventTypeFollowedUp,
			Addressing: event.AddressingPolicyEntityTarget,
			Intent:     event.IntentProjectionAndReplay,
		},
		{
			Type:       EventTypeDetailsUpdateRequested,
			Addressing: event.AddressingPolicyEntityTarget,
			Intent:     event.IntentProjectionAndReplay,
		},
		{
			Type:       EventTypeFinancialMeansUpdateRequested,
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

func validateRegisterPayload(raw json.RawMessage) error {
	var payload RegisterPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if strings.TrimSpace(payload.Envelope.ZipFileName) == "" {
		return errZipFileNameRequired
	}
	seen := make(map[string]struct{}, len(payload.Envelope.Documents))
	for _, doc := range payload.Envelope.Documents {
		if strings.TrimSpace(doc.ID) == "" {
			return errDocumentIDRequired
		}
		if _, dup := seen[doc.ID]; dup {
			return errDocumentIDDuplicate
		}
		seen[doc.ID] = struct{}{}
	}
	return nil
}

func validateExpirePayload(raw json.RawMessage) error {
	var payload ExpirePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if strings.TrimSpace(payload.DocumentID) == "" {
		return errDocumentIDRequired
	}
	if payload.ExpireDate.IsZero() {
		return errExpireDateRequired
	}
	return nil
}

// validateDocumentTarget checks the one field every document-scoped payload
// must carry.
func validateDocumentTarget[T any](raw json.RawMessage) error {
	var payload T
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	type documentTarget interface{ documentID() string }
	if target, ok := any(payload).(documentTarget); ok {
		if strings.TrimSpace(target.documentID()) == "" {
			return errDocumentIDRequired
		}
	}
	return nil
}

func (p NextStepDecidePayload) documentID() string { return p.DocumentID }
func (p MarkActionedPayload) documentID() string   { return p.DocumentID }
func (p DeleteActionedPayload) documentID() string { return p.DocumentID }
func (p RejectPayload) documentID() string         { return p.DocumentID }
func (p FollowUpPayload) documentID() string       { return p.DocumentID }
