package projection

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/opencourts/scandesk/internal/scan/domain/envelope"
	"github.com/opencourts/scandesk/internal/scan/domain/event"
)

type fakeAppendStore struct {
	appended []event.Event
	err      error
}

func (s *fakeAppendStore) AppendEvent(_ context.Context, evt event.Event) (event.Event, error) {
	if s.err != nil {
		return event.Event{}, s.err
	}
	evt.Seq = uint64(len(s.appended) + 1)
	s.appended = append(s.appended, evt)
	return evt, nil
}

func TestJournalAppendsAndProjects(t *testing.T) {
	applier, stores := newTestApplier(t)
	store := &fakeAppendStore{}
	journal := Journal{Store: store, Applier: applier, Logger: slog.Default()}

	evt := projectionEvent(t, envelope.EventTypeRegistered, envelope.RegisterPayload{Envelope: envelope.Envelope{
		ID:          "env-1",
		ZipFileName: "batch-001.zip",
		Documents:   []envelope.Document{{ID: "doc-1", FileName: "doc-1.pdf"}},
	}})
	stored, err := journal.Append(context.Background(), evt)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if stored.Seq != 1 {
		t.Fatalf("expected stored event returned, got %+v", stored)
	}
	if _, ok := stores.envelopes["env-1"]; !ok {
		t.Fatal("expected projection applied")
	}
}

func TestJournalAppendSurvivesProjectionFailure(t *testing.T) {
	applier, _ := newTestApplier(t)
	store := &fakeAppendStore{}
	journal := Journal{Store: store, Applier: applier, Logger: slog.Default()}

	// No registry definition and no projection route: apply fails, append must not.
	stored, err := journal.Append(context.Background(), projectionEvent(t, "some.future_event", map[string]string{}))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if stored.Seq != 1 || len(store.appended) != 1 {
		t.Fatalf("expected event journaled despite projection failure, got %+v", stored)
	}
}

func TestJournalAppendPropagatesStoreErrors(t *testing.T) {
	applier, _ := newTestApplier(t)
	storeErr := errors.New("disk full")
	journal := Journal{Store: &fakeAppendStore{err: storeErr}, Applier: applier}

	if _, err := journal.Append(context.Background(), projectionEvent(t, envelope.EventTypeFollowedUp, envelope.FollowUpPayload{DocumentID: "doc-1"})); !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestJournalRequiresStore(t *testing.T) {
	journal := Journal{}
	if _, err := journal.Append(context.Background(), event.Event{}); err == nil {
		t.Fatal("expected error for missing store")
	}
}
