package projection

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/opencourts/scandesk/internal/scan/domain/engine"
	"github.com/opencourts/scandesk/internal/scan/domain/envelope"
	"github.com/opencourts/scandesk/internal/scan/domain/event"
	"github.com/opencourts/scandesk/internal/scan/storage"
)

type memoryReadModels struct {
	envelopes map[string]storage.EnvelopeRecord
	documents map[string]storage.DocumentRecord
}

func newMemoryReadModels() *memoryReadModels {
	return &memoryReadModels{
		envelopes: make(map[string]storage.EnvelopeRecord),
		documents: make(map[string]storage.DocumentRecord),
	}
}

func documentKey(envelopeID, documentID string) string {
	return envelopeID + "/" + documentID
}

func (m *memoryReadModels) PutEnvelope(_ context.Context, record storage.EnvelopeRecord) error {
	m.envelopes[record.ID] = record
	return nil
}

func (m *memoryReadModels) GetEnvelope(_ context.Context, id string) (storage.EnvelopeRecord, error) {
	record, ok := m.envelopes[id]
	if !ok {
		return storage.EnvelopeRecord{}, storage.ErrNotFound
	}
	return record, nil
}

func (m *memoryReadModels) ListEnvelopes(_ context.Context, _ int) ([]storage.EnvelopeRecord, error) {
	records := make([]storage.EnvelopeRecord, 0, len(m.envelopes))
	for _, record := range m.envelopes {
		records = append(records, record)
	}
	return records, nil
}

func (m *memoryReadModels) PutDocument(_ context.Context, record storage.DocumentRecord) error {
	m.documents[documentKey(record.EnvelopeID, record.ID)] = record
	return nil
}

func (m *memoryReadModels) GetDocument(_ context.Context, envelopeID, documentID string) (storage.DocumentRecord, error) {
	record, ok := m.documents[documentKey(envelopeID, documentID)]
	if !ok {
		return storage.DocumentRecord{}, storage.ErrNotFound
	}
	return record, nil
}

func (m *memoryReadModels) ListDocuments(_ context.Context, envelopeID string) ([]storage.DocumentRecord, error) {
	var records []storage.DocumentRecord
	for _, record := range m.documents {
		if record.EnvelopeID == envelopeID {
			records = append(records, record)
		}
	}
	return records, nil
}

func (m *memoryReadModels) ListDocumentsByStatus(_ context.Context, status envelope.Status, _ int) ([]storage.DocumentRecord, error) {
	var records []storage.DocumentRecord
	for _, record := range m.documents {
		if record.Status == status && !record.Deleted {
			records = append(records, record)
		}
	}
	return records, nil
}

func newTestApplier(t *testing.T) (Applier, *memoryReadModels) {
	t.Helper()
	registries, err := engine.BuildRegistries()
	if err != nil {
		t.Fatalf("build registries: %v", err)
	}
	stores := newMemoryReadModels()
	return Applier{Events: registries.Events, Envelopes: stores, Documents: stores}, stores
}

func projectionEvent(t *testing.T, eventType event.Type, payload any) event.Event {
	t.Helper()
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return event.Event{
		EnvelopeID:  "env-1",
		Seq:         1,
		Type:        eventType,
		Timestamp:   time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		PayloadJSON: payloadJSON,
	}
}

func applyRegisteredFixture(t *testing.T, applier Applier) {
	t.Helper()
	evt := projectionEvent(t, envelope.EventTypeRegistered, envelope.RegisterPayload{Envelope: envelope.Envelope{
		ID:          "env-1",
		ZipFileName: "batch-001.zip",
		Documents: []envelope.Document{
			{ID: "doc-1", FileName: "doc-1.pdf", Name: "PLEA", CaseURN: "URN-1"},
			{ID: "doc-2", FileName: "doc-2.pdf", Name: "MC100"},
		},
	}})
	if err := applier.Apply(context.Background(), evt); err != nil {
		t.Fatalf("apply registered: %v", err)
	}
}

func TestApplyRegisteredCreatesReadModels(t *testing.T) {
	applier, stores := newTestApplier(t)
	applyRegisteredFixture(t, applier)

	record, ok := stores.envelopes["env-1"]
	if !ok {
		t.Fatal("envelope record missing")
	}
	if record.ZipFileName != "batch-001.zip" || record.DocumentCount != 2 {
		t.Fatalf("unexpected envelope record: %+v", record)
	}

	doc, ok := stores.documents[documentKey("env-1", "doc-1")]
	if !ok {
		t.Fatal("document record missing")
	}
	if doc.Status != envelope.StatusPending || doc.CaseURN != "URN-1" {
		t.Fatalf("unexpected document record: %+v", doc)
	}
}

func TestApplyReplayOnlyAndAuditOnlyEventsSkipped(t *testing.T) {
	applier, stores := newTestApplier(t)
	applyRegisteredFixture(t, applier)

	skipped := []event.Event{
		projectionEvent(t, envelope.EventTypeNextStepPaused, envelope.NextStepPausedPayload{DocumentID: "doc-1"}),
		projectionEvent(t, envelope.EventTypeRejected, envelope.RejectPayload{DocumentID: "doc-1"}),
		projectionEvent(t, envelope.EventTypeExpired, envelope.ExpirePayload{DocumentID: "doc-1"}),
	}
	before := stores.documents[documentKey("env-1", "doc-1")]
	for _, evt := range skipped {
		if err := applier.Apply(context.Background(), evt); err != nil {
			t.Fatalf("apply %s: %v", evt.Type, err)
		}
	}
	after := stores.documents[documentKey("env-1", "doc-1")]
	if before != after {
		t.Fatalf("expected read model untouched, got %+v", after)
	}
}

func TestApplyNextStepDecidedFillsBlankCaseURN(t *testing.T) {
	applier, stores := newTestApplier(t)
	applyRegisteredFixture(t, applier)

	evt := projectionEvent(t, envelope.EventTypeNextStepDecided, envelope.NextStepDecidedPayload{
		DocumentID: "doc-2",
		CaseURN:    "URN-2",
		IsSJP:      true,
	})
	if err := applier.Apply(context.Background(), evt); err != nil {
		t.Fatalf("apply: %v", err)
	}
	doc := stores.documents[documentKey("env-1", "doc-2")]
	if !doc.IsSJP || doc.CaseURN != "URN-2" {
		t.Fatalf("unexpected document: %+v", doc)
	}

	// An already populated case URN must not be overwritten.
	evt = projectionEvent(t, envelope.EventTypeNextStepDecided, envelope.NextStepDecidedPayload{
		DocumentID: "doc-1",
		CaseURN:    "URN-OTHER",
	})
	if err := applier.Apply(context.Background(), evt); err != nil {
		t.Fatalf("apply: %v", err)
	}
	doc = stores.documents[documentKey("env-1", "doc-1")]
	if doc.CaseURN != "URN-1" {
		t.Fatalf("expected original case URN kept, got %q", doc.CaseURN)
	}
}

func TestApplyActionedUpdatesStatus(t *testing.T) {
	applier, stores := newTestApplier(t)
	applyRegisteredFixture(t, applier)

	actionedAt := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	evt := projectionEvent(t, envelope.EventTypeManuallyActioned, envelope.ActionedPayload{
		DocumentID: "doc-1",
		ActionedBy: "caseworker-7",
		ActionedAt: actionedAt,
	})
	if err := applier.Apply(context.Background(), evt); err != nil {
		t.Fatalf("apply: %v", err)
	}
	doc := stores.documents[documentKey("env-1", "doc-1")]
	if doc.Status != envelope.StatusManuallyActioned || doc.ActionedBy != "caseworker-7" {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if !doc.StatusUpdatedAt.Equal(actionedAt) {
		t.Fatalf("expected status time %v, got %v", actionedAt, doc.StatusUpdatedAt)
	}
}

func TestApplyActionedDeletedMarksDocument(t *testing.T) {
	applier, stores := newTestApplier(t)
	applyRegisteredFixture(t, applier)

	deletedAt := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)
	evt := projectionEvent(t, envelope.EventTypeActionedDeleted, envelope.ActionedDeletedPayload{
		DocumentID: "doc-1",
		DeletedAt:  deletedAt,
	})
	if err := applier.Apply(context.Background(), evt); err != nil {
		t.Fatalf("apply: %v", err)
	}
	doc := stores.documents[documentKey("env-1", "doc-1")]
	if !doc.Deleted || doc.DeletedAt == nil || !doc.DeletedAt.Equal(deletedAt) {
		t.Fatalf("unexpected document: %+v", doc)
	}
}

func TestApplyFollowedUpSetsStatus(t *testing.T) {
	applier, stores := newTestApplier(t)
	applyRegisteredFixture(t, applier)

	evt := projectionEvent(t, envelope.EventTypeFollowedUp, envelope.FollowUpPayload{DocumentID: "doc-1"})
	if err := applier.Apply(context.Background(), evt); err != nil {
		t.Fatalf("apply: %v", err)
	}
	doc := stores.documents[documentKey("env-1", "doc-1")]
	if doc.Status != envelope.StatusFollowUp {
		t.Fatalf("expected follow-up status, got %s", doc.Status)
	}
}

func TestApplyMissingDocumentTolerated(t *testing.T) {
	applier, _ := newTestApplier(t)
	applyRegisteredFixture(t, applier)

	evt := projectionEvent(t, envelope.EventTypeFollowedUp, envelope.FollowUpPayload{DocumentID: "doc-unknown"})
	if err := applier.Apply(context.Background(), evt); err != nil {
		t.Fatalf("expected missing document tolerated, got %v", err)
	}
}

func TestApplyUnhandledTypeErrors(t *testing.T) {
	applier, _ := newTestApplier(t)

	// Unknown types carry no registry definition and hit the routing default.
	evt := projectionEvent(t, "some.future_event", map[string]string{})
	if err := applier.Apply(context.Background(), evt); err == nil {
		t.Fatal("expected error for unhandled event type")
	}
}
