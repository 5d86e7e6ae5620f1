package envelope

import (
	"encoding/json"
	"time"

	"github.com/opencourts/scandesk/internal/scan/domain/command"
	"github.com/opencourts/scandesk/internal/scan/domain/event"
)

// Lifecycle command types.
const (
	CommandTypeRegister             command.Type = "envelope.register"
	CommandTypeDecideNextStep       command.Type = "document.next_step.decide"
	CommandTypeMarkManuallyActioned command.Type = "document.mark_manually_actioned"
	CommandTypeMarkAutoActioned     command.Type = "document.mark_auto_actioned"
	CommandTypeDeleteActioned       command.Type = "document.actioned.delete"
	CommandTypeReject               command.Type = "document.reject"
	CommandTypeExpire               command.Type = "document.expire"
	CommandTypeRaiseFollowUp        command.Type = "document.follow_up.raise"
)

// Lifecycle event types.
const (
	EventTypeRegistered                    event.Type = "envelope.registered"
	EventTypeNextStepDecided               event.Type = "document.next_step_decided"
	EventTypeNextStepPaused                event.Type = "document.next_step_paused"
	EventTypeManuallyActioned              event.Type = "document.manually_actioned"
	EventTypeAutoActioned                  event.Type = "document.auto_actioned"
	EventTypeActionedDeleted               event.Type = "document.actioned_deleted"
	EventTypeRejected                      event.Type = "document.rejected"
	EventTypeExpired                       event.Type = "document.expired"
	EventTypeFollowedUp                    event.Type = "document.followed_up"
	EventTypeDetailsUpdateRequested        event.Type = "defendant.details_update_requested"
	EventTypeFinancialMeansUpdateRequested event.Type = "defendant.financial_means_update_requested"
)

const (
	rejectionCodeAlreadyRegistered = "ENVELOPE_ALREADY_REGISTERED"

	entityTypeEnvelope = "envelope"
	entityTypeDocument = "document"
)

// HandlesCommand reports whether the lifecycle decider handles a command type.
func HandlesCommand(t command.Type) bool {
	switch t {
	case CommandTypeRegister, CommandTypeDecideNextStep, CommandTypeMarkManuallyActioned,
		CommandTypeMarkAutoActioned, CommandTypeDeleteActioned, CommandTypeReject,
		CommandTypeExpire, CommandTypeRaiseFollowUp:
		return true
	}
	return false
}

// Decide returns the decision for a lifecycle command against current state.
//
// Commands targeting a document that cannot be located fail soft: the
// decision is empty, no error is raised, and the dispatching collaborator
// logs the anomaly.
func Decide(state State, cmd command.Command, now func() time.Time) command.Decision {
	if now == nil {
		now = time.Now
	}

	switch cmd.Type {
	case CommandTypeRegister:
		return decideRegister(state, cmd, now)
	case CommandTypeDecideNextStep:
		return decideNextStep(state, cmd, now)
	case CommandTypeMarkManuallyActioned:
		return decideMarkActioned(cmd, now, EventTypeManuallyActioned)
	case CommandTypeMarkAutoActioned:
		return decideMarkAutoActioned(state, cmd, now)
	case CommandTypeDeleteActioned:
		return decideDeleteActioned(state, cmd, now)
	case CommandTypeReject:
		return decideReject(cmd, now)
	case CommandTypeExpire:
		return decideExpire(cmd, now)
	case CommandTypeRaiseFollowUp:
		return decideRaiseFollowUp(cmd, now)
	default:
		return command.Reject(command.Rejection{
			Code:    command.RejectionCodeCommandTypeUnsupported,
			Message: "command type is not supported by envelope decider",
		})
	}
}

// decideRegister emits the registration event and immediately drains any
// parked next-step decisions for documents of this envelope. A client issuing
// "decide next step" before "register" never loses that decision: the
// post-registration stream carries registered first, then each owed decision
// in arrival order.
func decideRegister(state State, cmd command.Command, now func() time.Time) command.Decision {
	if state.Registered {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeAlreadyRegistered,
			Message: "envelope is already registered",
		})
	}
	var payload RegisterPayload
	if err := json.Unmarshal(cmd.PayloadJSON, &payload); err != nil {
		return command.Reject(command.Rejection{
			Code:    command.RejectionCodePayloadDecodeFailed,
			Message: err.Error(),
		})
	}
	if payload.Envelope.ID == "" {
		payload.Envelope.ID = cmd.EnvelopeID
	}
	for i, doc := range payload.Envelope.Documents {
		if doc.Status == "" {
			payload.Envelope.Documents[i].Status = StatusPending
		}
		if doc.StatusUpdatedAt.IsZero() {
			payload.Envelope.Documents[i].StatusUpdatedAt = now().UTC()
		}
	}

	registeredJSON, _ := json.Marshal(payload)
	events := []event.Event{
		command.NewEvent(cmd, EventTypeRegistered, entityTypeEnvelope, payload.Envelope.ID, registeredJSON, now().UTC()),
	}

	for _, deferred := range state.Deferred {
		doc, ok := payload.Envelope.Document(deferred.DocumentID)
		if !ok {
			continue
		}
		decidedJSON, _ := json.Marshal(NextStepDecidedPayload{
			DocumentID: doc.ID,
			CaseURN:    doc.CaseRef(),
			IsSJP:      deferred.IsSJP,
		})
		events = append(events, command.NewEvent(cmd, EventTypeNextStepDecided, entityTypeDocument, doc.ID, decidedJSON, now().UTC()))
	}
	return command.Accept(events...)
}

// decideNextStep routes a document or, when the envelope is not yet
// registered, parks the decision as a replay-only paused event.
func decideNextStep(state State, cmd command.Command, now func() time.Time) command.Decision {
	var payload NextStepDecidePayload
	if err := json.Unmarshal(cmd.PayloadJSON, &payload); err != nil {
		return command.Reject(command.Rejection{
			Code:    command.RejectionCodePayloadDecodeFailed,
			Message: err.Error(),
		})
	}

	if !state.Registered {
		pausedJSON, _ := json.Marshal(NextStepPausedPayload{DocumentID: payload.DocumentID, IsSJP: payload.IsSJP})
		return command.Accept(command.NewEvent(cmd, EventTypeNextStepPaused, entityTypeDocument, payload.DocumentID, pausedJSON, now().UTC()))
	}

	doc, ok := state.Envelope.Document(payload.DocumentID)
	if !ok {
		return command.Decision{}
	}
	decidedJSON, _ := json.Marshal(NextStepDecidedPayload{
		DocumentID: doc.ID,
		CaseURN:    doc.CaseRef(),
		IsSJP:      payload.IsSJP,
	})
	return command.Accept(command.NewEvent(cmd, EventTypeNextStepDecided, entityTypeDocument, doc.ID, decidedJSON, now().UTC()))
}

func decideMarkActioned(cmd command.Command, now func() time.Time, eventType event.Type) command.Decision {
	var payload MarkActionedPayload
	if err := json.Unmarshal(cmd.PayloadJSON, &payload); err != nil {
		return command.Reject(command.Rejection{
			Code:    command.RejectionCodePayloadDecodeFailed,
			Message: err.Error(),
		})
	}
	actionedJSON, _ := json.Marshal(ActionedPayload{
		DocumentID: payload.DocumentID,
		ActionedBy: payload.ActionedBy,
		ActionedAt: now().UTC(),
	})
	return command.Accept(command.NewEvent(cmd, eventType, entityTypeDocument, payload.DocumentID, actionedJSON, now().UTC()))
}

// decideMarkAutoActioned actions the document and conditionally requests one
// downstream update chosen by document content: a plea with offences asks for
// defendant details, a financial-means form asks for a means update.
func decideMarkAutoActioned(state State, cmd command.Command, now func() time.Time) command.Decision {
	decision := decideMarkActioned(cmd, now, EventTypeAutoActioned)
	if len(decision.Rejections) > 0 {
		return decision
	}

	var payload MarkActionedPayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)
	doc, ok := state.Envelope.Document(payload.DocumentID)
	if !ok {
		return decision
	}

	var followUpType event.Type
	switch {
	case doc.Plea != nil && len(doc.Plea.Offences) > 0:
		followUpType = EventTypeDetailsUpdateRequested
	case doc.Name == DocNameFinancialMeans && doc.FinancialMeans != nil:
		followUpType = EventTypeFinancialMeansUpdateRequested
	default:
		return decision
	}

	requestedJSON, _ := json.Marshal(UpdateRequestedPayload{DocumentID: doc.ID, CaseRef: doc.CaseRef()})
	decision.Events = append(decision.Events, command.NewEvent(cmd, followUpType, entityTypeDocument, doc.ID, requestedJSON, now().UTC()))
	return decision
}

func decideDeleteActioned(state State, cmd command.Command, now func() time.Time) command.Decision {
	var payload DeleteActionedPayload
	if err := json.Unmarshal(cmd.PayloadJSON, &payload); err != nil {
		return command.Reject(command.Rejection{
			Code:    command.RejectionCodePayloadDecodeFailed,
			Message: err.Error(),
		})
	}
	doc, ok := state.Envelope.Document(payload.DocumentID)
	if !ok {
		return command.Decision{}
	}
	deletedJSON, _ := json.Marshal(ActionedDeletedPayload{
		DocumentID:       doc.ID,
		ZipFileName:      state.Envelope.ZipFileName,
		DocumentFileName: doc.FileName,
		DeletedAt:        now().UTC(),
	})
	return command.Accept(command.NewEvent(cmd, EventTypeActionedDeleted, entityTypeDocument, doc.ID, deletedJSON, now().UTC()))
}

// decideReject records externally supplied problems. It never validates.
func decideReject(cmd command.Command, now func() time.Time) command.Decision {
	var payload RejectPayload
	if err := json.Unmarshal(cmd.PayloadJSON, &payload); err != nil {
		return command.Reject(command.Rejection{
			Code:    command.RejectionCodePayloadDecodeFailed,
			Message: err.Error(),
		})
	}
	payload.RejectedAt = now().UTC()
	rejectedJSON, _ := json.Marshal(payload)
	return command.Accept(command.NewEvent(cmd, EventTypeRejected, entityTypeDocument, payload.DocumentID, rejectedJSON, now().UTC()))
}

func decideExpire(cmd command.Command, now func() time.Time) command.Decision {
	var payload ExpirePayload
	if err := json.Unmarshal(cmd.PayloadJSON, &payload); err != nil {
		return command.Reject(command.Rejection{
			Code:    command.RejectionCodePayloadDecodeFailed,
			Message: err.Error(),
		})
	}
	expiredJSON, _ := json.Marshal(payload)
	return command.Accept(command.NewEvent(cmd, EventTypeExpired, entityTypeDocument, payload.DocumentID, expiredJSON, now().UTC()))
}

func decideRaiseFollowUp(cmd command.Command, now func() time.Time) command.Decision {
	var payload FollowUpPayload
	if err := json.Unmarshal(cmd.PayloadJSON, &payload); err != nil {
		return command.Reject(command.Rejection{
			Code:    command.RejectionCodePayloadDecodeFailed,
			Message: err.Error(),
		})
	}
	return command.Accept(NewFollowUpEvent(cmd, payload.DocumentID, now().UTC()))
}

// NewFollowUpEvent builds a document.followed_up event. Exported because the
// means and plea deciders append follow-ups alongside their own events.
func NewFollowUpEvent(cmd command.Command, documentID string, now time.Time) event.Event {
	followUpJSON, _ := json.Marshal(FollowUpPayload{DocumentID: documentID})
	return command.NewEvent(cmd, EventTypeFollowedUp, entityTypeDocument, documentID, followUpJSON, now)
}
