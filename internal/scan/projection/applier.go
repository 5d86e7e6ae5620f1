package projection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/opencourts/scandesk/internal/scan/domain/envelope"
	"github.com/opencourts/scandesk/internal/scan/domain/event"
	"github.com/opencourts/scandesk/internal/scan/domain/means"
	"github.com/opencourts/scandesk/internal/scan/domain/plea"
	"github.com/opencourts/scandesk/internal/scan/storage"
)

// Applier applies event journal entries to projection stores.
type Applier struct {
	// Events resolves event intents before routing. Replay-only and
	// audit-only events never reach read models.
	Events *event.Registry
	// Envelopes writes envelope metadata read models.
	Envelopes storage.EnvelopeStore
	// Documents writes per-document read models.
	Documents storage.DocumentStore
}

// Apply routes domain events into denormalized read-model stores.
func (a Applier) Apply(ctx context.Context, evt event.Event) error {
	if a.Events != nil {
		if def, ok := a.Events.Definition(evt.Type); ok && def.Intent != event.IntentProjectionAndReplay {
			return nil
		}
	}

	switch evt.Type {
	case envelope.EventTypeRegistered:
		return a.applyRegistered(ctx, evt)
	case envelope.EventTypeNextStepDecided:
		return a.applyNextStepDecided(ctx, evt)
	case envelope.EventTypeManuallyActioned:
		return a.applyActioned(ctx, evt, envelope.StatusManuallyActioned)
	case envelope.EventTypeAutoActioned:
		return a.applyActioned(ctx, evt, envelope.StatusAutoActioned)
	case envelope.EventTypeActionedDeleted:
		return a.applyActionedDeleted(ctx, evt)
	case envelope.EventTypeFollowedUp:
		return a.applyFollowedUp(ctx, evt)
	case envelope.EventTypeDetailsUpdateRequested,
		envelope.EventTypeFinancialMeansUpdateRequested,
		means.EventTypeFinancialMeansUpdated,
		plea.EventTypeDetailsUpdated,
		plea.EventTypePleaDetailsUpdated:
		return a.touchDocument(ctx, evt)
	default:
		return fmt.Errorf("unhandled projection event type: %s", evt.Type)
	}
}

// ensureTimestamp normalizes timestamps so projections always persist UTC,
// defaulting to now for events that do not set time.
func ensureTimestamp(ts time.Time) time.Time {
	if ts.IsZero() {
		return time.Now().UTC()
	}
	return ts.UTC()
}

func (a Applier) applyRegistered(ctx context.Context, evt event.Event) error {
	if a.Envelopes == nil {
		return fmt.Errorf("envelope store is not configured")
	}
	if a.Documents == nil {
		return fmt.Errorf("document store is not configured")
	}
	var payload envelope.RegisterPayload
	if err := decodePayload(evt.PayloadJSON, &payload, evt.Type); err != nil {
		return err
	}
	registered := ensureTimestamp(evt.Timestamp)

	if err := a.Envelopes.PutEnvelope(ctx, storage.EnvelopeRecord{
		ID:            payload.Envelope.ID,
		ZipFileName:   payload.Envelope.ZipFileName,
		DocumentCount: len(payload.Envelope.Documents),
		RegisteredAt:  registered,
		UpdatedAt:     registered,
	}); err != nil {
		return err
	}

	for _, doc := range payload.Envelope.Documents {
		status := doc.Status
		if strings.TrimSpace(string(status)) == "" {
			status = envelope.StatusPending
		}
		statusUpdated := doc.StatusUpdatedAt
		if statusUpdated.IsZero() {
			statusUpdated = registered
		}
		if err := a.Documents.PutDocument(ctx, storage.DocumentRecord{
			ID:              doc.ID,
			EnvelopeID:      payload.Envelope.ID,
			FileName:        doc.FileName,
			Name:            doc.Name,
			CaseURN:         doc.CaseURN,
			CasePTIURN:      doc.CasePTIURN,
			Status:          status,
			StatusUpdatedAt: statusUpdated,
			ActionedBy:      doc.ActionedBy,
			UpdatedAt:       registered,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (a Applier) applyNextStepDecided(ctx context.Context, evt event.Event) error {
	var payload envelope.NextStepDecidedPayload
	if err := decodePayload(evt.PayloadJSON, &payload, evt.Type); err != nil {
		return err
	}
	return a.updateDocument(ctx, evt, payload.DocumentID, func(record *storage.DocumentRecord) {
		record.IsSJP = payload.IsSJP
		if strings.TrimSpace(payload.CaseURN) != "" && strings.TrimSpace(record.CaseURN) == "" {
			record.CaseURN = payload.CaseURN
		}
	})
}

func (a Applier) applyActioned(ctx context.Context, evt event.Event, status envelope.Status) error {
	var payload envelope.ActionedPayload
	if err := decodePayload(evt.PayloadJSON, &payload, evt.Type); err != nil {
		return err
	}
	return a.updateDocument(ctx, evt, payload.DocumentID, func(record *storage.DocumentRecord) {
		record.Status = status
		record.ActionedBy = payload.ActionedBy
		record.StatusUpdatedAt = ensureTimestamp(payload.ActionedAt)
	})
}

func (a Applier) applyActionedDeleted(ctx context.Context, evt event.Event) error {
	var payload envelope.ActionedDeletedPayload
	if err := decodePayload(evt.PayloadJSON, &payload, evt.Type); err != nil {
		return err
	}
	return a.updateDocument(ctx, evt, payload.DocumentID, func(record *storage.DocumentRecord) {
		record.Deleted = true
		deletedAt := ensureTimestamp(payload.DeletedAt)
		record.DeletedAt = &deletedAt
	})
}

func (a Applier) applyFollowedUp(ctx context.Context, evt event.Event) error {
	var payload envelope.FollowUpPayload
	if err := decodePayload(evt.PayloadJSON, &payload, evt.Type); err != nil {
		return err
	}
	return a.updateDocument(ctx, evt, payload.DocumentID, func(record *storage.DocumentRecord) {
		record.Status = envelope.StatusFollowUp
		record.StatusUpdatedAt = ensureTimestamp(evt.Timestamp)
	})
}

// touchDocument bumps the document's updated time for events whose payload
// lives in the journal rather than the read model.
func (a Applier) touchDocument(ctx context.Context, evt event.Event) error {
	var payload struct {
		DocumentID string `json:"documentId"`
		Defendant  struct {
			DocumentID string `json:"documentId"`
		} `json:"defendant"`
	}
	if err := decodePayload(evt.PayloadJSON, &payload, evt.Type); err != nil {
		return err
	}
	documentID := payload.DocumentID
	if documentID == "" {
		documentID = payload.Defendant.DocumentID
	}
	return a.updateDocument(ctx, evt, documentID, func(*storage.DocumentRecord) {})
}

// updateDocument loads, mutates, and rewrites one document record. Missing
// records are skipped rather than failed: projections tolerate events that
// reference documents outside the read model.
func (a Applier) updateDocument(ctx context.Context, evt event.Event, documentID string, mutate func(*storage.DocumentRecord)) error {
	if a.Documents == nil {
		return fmt.Errorf("document store is not configured")
	}
	if strings.TrimSpace(documentID) == "" {
		return fmt.Errorf("document id is required for %s", evt.Type)
	}
	record, err := a.Documents.GetDocument(ctx, evt.EnvelopeID, documentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}
	mutate(&record)
	record.UpdatedAt = ensureTimestamp(evt.Timestamp)
	return a.Documents.PutDocument(ctx, record)
}

func decodePayload(raw json.RawMessage, out any, eventType event.Type) error {
	if len(raw) == 0 {
		return fmt.Errorf("decode %s payload: payload is empty", eventType)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s payload: %w", eventType, err)
	}
	return nil
}
