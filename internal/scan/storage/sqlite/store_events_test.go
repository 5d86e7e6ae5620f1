package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/opencourts/scandesk/internal/scan/domain/envelope"
	"github.com/opencourts/scandesk/internal/scan/domain/event"
	"github.com/opencourts/scandesk/internal/scan/storage"
)

func openEventsStore(t *testing.T) *Store {
	t.Helper()
	registry := event.NewRegistry()
	if err := envelope.RegisterEvents(registry); err != nil {
		t.Fatalf("register events: %v", err)
	}
	store, err := OpenEvents(filepath.Join(t.TempDir(), "events.db"), registry)
	if err != nil {
		t.Fatalf("open events store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func journalEvent(envelopeID string, eventType event.Type, payload string) event.Event {
	return event.Event{
		EnvelopeID:  envelopeID,
		Type:        eventType,
		Timestamp:   time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		ActorType:   event.ActorTypeSystem,
		RequestID:   "req-1",
		EntityType:  "envelope",
		EntityID:    envelopeID,
		PayloadJSON: []byte(payload),
	}
}

func TestAppendEventAssignsSequenceAndChain(t *testing.T) {
	ctx := context.Background()
	store := openEventsStore(t)

	first, err := store.AppendEvent(ctx, journalEvent("env-1", envelope.EventTypeRegistered, `{"envelope":{"id":"env-1","zipFileName":"batch.zip"}}`))
	if err != nil {
		t.Fatalf("append first: %v", err)
	}
	if first.Seq != 1 || first.Hash == "" || first.ChainHash == "" {
		t.Fatalf("unexpected first event: %+v", first)
	}
	if first.PrevHash != "" {
		t.Fatalf("first event must have empty prev hash, got %q", first.PrevHash)
	}

	second, err := store.AppendEvent(ctx, journalEvent("env-1", envelope.EventTypeFollowedUp, `{"documentId":"doc-1"}`))
	if err != nil {
		t.Fatalf("append second: %v", err)
	}
	if second.Seq != 2 {
		t.Fatalf("expected seq 2, got %d", second.Seq)
	}
	if second.PrevHash != first.ChainHash {
		t.Fatalf("expected chain link to first event, got %q want %q", second.PrevHash, first.ChainHash)
	}
}

func TestAppendEventSequencesPerEnvelope(t *testing.T) {
	ctx := context.Background()
	store := openEventsStore(t)

	if _, err := store.AppendEvent(ctx, journalEvent("env-1", envelope.EventTypeRegistered, `{"envelope":{"id":"env-1","zipFileName":"batch.zip"}}`)); err != nil {
		t.Fatalf("append env-1: %v", err)
	}
	other, err := store.AppendEvent(ctx, journalEvent("env-2", envelope.EventTypeRegistered, `{"envelope":{"id":"env-2","zipFileName":"batch.zip"}}`))
	if err != nil {
		t.Fatalf("append env-2: %v", err)
	}
	if other.Seq != 1 {
		t.Fatalf("expected independent stream at seq 1, got %d", other.Seq)
	}
}

func TestAppendEventRejectsUnregisteredType(t *testing.T) {
	ctx := context.Background()
	store := openEventsStore(t)

	if _, err := store.AppendEvent(ctx, journalEvent("env-1", "bogus.event", `{}`)); !errors.Is(err, event.ErrTypeUnknown) {
		t.Fatalf("expected unknown type error, got %v", err)
	}
}

func TestListEventsPagination(t *testing.T) {
	ctx := context.Background()
	store := openEventsStore(t)

	for i := 0; i < 5; i++ {
		if _, err := store.AppendEvent(ctx, journalEvent("env-1", envelope.EventTypeFollowedUp, `{"documentId":"doc-1"}`)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	page, err := store.ListEvents(ctx, "env-1", 2, 2)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(page) != 2 || page[0].Seq != 3 || page[1].Seq != 4 {
		t.Fatalf("unexpected page: %+v", page)
	}

	if _, err := store.ListEvents(ctx, "env-1", 0, 0); err == nil {
		t.Fatal("expected error for zero limit")
	}
}

func TestGetEventBySeq(t *testing.T) {
	ctx := context.Background()
	store := openEventsStore(t)

	appended, err := store.AppendEvent(ctx, journalEvent("env-1", envelope.EventTypeRegistered, `{"envelope":{"id":"env-1","zipFileName":"batch.zip"}}`))
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	fetched, err := store.GetEventBySeq(ctx, "env-1", 1)
	if err != nil {
		t.Fatalf("get by seq: %v", err)
	}
	if fetched.Hash != appended.Hash || fetched.Type != appended.Type {
		t.Fatalf("mismatch: %+v vs %+v", fetched, appended)
	}

	if _, err := store.GetEventBySeq(ctx, "env-1", 99); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetLatestEventSeq(t *testing.T) {
	ctx := context.Background()
	store := openEventsStore(t)

	seq, err := store.GetLatestEventSeq(ctx, "env-1")
	if err != nil {
		t.Fatalf("latest seq: %v", err)
	}
	if seq != 0 {
		t.Fatalf("expected 0 for empty stream, got %d", seq)
	}

	for i := 0; i < 3; i++ {
		if _, err := store.AppendEvent(ctx, journalEvent("env-1", envelope.EventTypeFollowedUp, `{"documentId":"doc-1"}`)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	seq, err = store.GetLatestEventSeq(ctx, "env-1")
	if err != nil {
		t.Fatalf("latest seq: %v", err)
	}
	if seq != 3 {
		t.Fatalf("expected 3, got %d", seq)
	}
}

func TestVerifyEventIntegrity(t *testing.T) {
	ctx := context.Background()
	store := openEventsStore(t)

	for _, envelopeID := range []string{"env-1", "env-2"} {
		for i := 0; i < 3; i++ {
			if _, err := store.AppendEvent(ctx, journalEvent(envelopeID, envelope.EventTypeFollowedUp, `{"documentId":"doc-1"}`)); err != nil {
				t.Fatalf("append: %v", err)
			}
		}
	}

	if err := store.VerifyEventIntegrity(ctx); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestVerifyEventIntegrityDetectsTampering(t *testing.T) {
	ctx := context.Background()
	store := openEventsStore(t)

	for i := 0; i < 2; i++ {
		if _, err := store.AppendEvent(ctx, journalEvent("env-1", envelope.EventTypeFollowedUp, `{"documentId":"doc-1"}`)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	if _, err := store.sqlDB.ExecContext(ctx,
		"UPDATE events SET payload_json = ? WHERE envelope_id = ? AND seq = ?",
		[]byte(`{"documentId":"doc-tampered"}`), "env-1", 1,
	); err != nil {
		t.Fatalf("tamper: %v", err)
	}

	if err := store.VerifyEventIntegrity(ctx); err == nil {
		t.Fatal("expected integrity failure after tampering")
	}
}
