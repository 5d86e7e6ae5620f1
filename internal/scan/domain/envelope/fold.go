package envelope

import (
	"encoding/json"
	"fmt"

	"github.com/opencourts/scandesk/internal/scan/domain/event"
)

// FoldHandledTypes returns the event types handled by the envelope fold
// function. Rejection and expiry events are audit-only and never reach a fold.
func FoldHandledTypes() []event.Type {
	return []event.Type{
		EventTypeRegistered,
		EventTypeNextStepPaused,
		EventTypeNextStepDecided,
		EventTypeManuallyActioned,
		EventTypeAutoActioned,
		EventTypeActionedDeleted,
		EventTypeFollowedUp,
	}
}

// Fold applies an event to envelope state. It returns an error if a
// recognized event carries a payload that cannot be unmarshalled.
func Fold(state State, evt event.Event) (State, error) {
	switch evt.Type {
	case EventTypeRegistered:
		var payload RegisterPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("envelope fold %s: %w", evt.Type, err)
		}
		// Parked decisions for registered documents survive: the decided
		// events that drain them follow in the same stream and clear them
		// one by one. A decision parked for a document the envelope never
		// contained can never be drained, so it is dropped here.
		state.Registered = true
		state.Envelope = payload.Envelope
		if len(state.Deferred) > 0 {
			kept := make([]DeferredDecision, 0, len(state.Deferred))
			for _, deferred := range state.Deferred {
				if _, ok := payload.Envelope.Document(deferred.DocumentID); ok {
					kept = append(kept, deferred)
				}
			}
			if len(kept) == 0 {
				kept = nil
			}
			state.Deferred = kept
		}
	case EventTypeNextStepPaused:
		var payload NextStepPausedPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("envelope fold %s: %w", evt.Type, err)
		}
		if payload.DocumentID == "" {
			return state, nil
		}
		state = state.withDeferred(DeferredDecision{
			EnvelopeID: evt.EnvelopeID,
			DocumentID: payload.DocumentID,
			IsSJP:      payload.IsSJP,
		})
	case EventTypeNextStepDecided:
		var payload NextStepDecidedPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("envelope fold %s: %w", evt.Type, err)
		}
		state = state.withoutDeferred(payload.DocumentID)
	case EventTypeManuallyActioned:
		return foldActioned(state, evt, StatusManuallyActioned)
	case EventTypeAutoActioned:
		return foldActioned(state, evt, StatusAutoActioned)
	case EventTypeActionedDeleted:
		var payload ActionedDeletedPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("envelope fold %s: %w", evt.Type, err)
		}
		doc, ok := state.Envelope.Document(payload.DocumentID)
		if !ok {
			return state, nil
		}
		deletedAt := payload.DeletedAt
		doc.Deleted = true
		doc.DeletedAt = &deletedAt
		state.Envelope = state.Envelope.WithDocument(doc)
	case EventTypeFollowedUp:
		var payload FollowUpPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("envelope fold %s: %w", evt.Type, err)
		}
		doc, ok := state.Envelope.Document(payload.DocumentID)
		if !ok {
			return state, nil
		}
		doc.Status = StatusFollowUp
		doc.StatusUpdatedAt = evt.Timestamp
		state.Envelope = state.Envelope.WithDocument(doc)
	}
	return state, nil
}

func foldActioned(state State, evt event.Event, status Status) (State, error) {
	var payload ActionedPayload
	if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
		return state, fmt.Errorf("envelope fold %s: %w", evt.Type, err)
	}
	doc, ok := state.Envelope.Document(payload.DocumentID)
	if !ok {
		return state, nil
	}
	doc.Status = status
	doc.ActionedBy = payload.ActionedBy
	doc.StatusUpdatedAt = payload.ActionedAt
	state.Envelope = state.Envelope.WithDocument(doc)
	return state, nil
}
