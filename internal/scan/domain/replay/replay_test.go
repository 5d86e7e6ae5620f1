package replay

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/opencourts/scandesk/internal/scan/domain/event"
)

type fakeEventStore struct {
	events []event.Event
}

func (s *fakeEventStore) ListEvents(_ context.Context, envelopeID string, afterSeq uint64, limit int) ([]event.Event, error) {
	var page []event.Event
	for _, evt := range s.events {
		if evt.EnvelopeID != envelopeID || evt.Seq <= afterSeq {
			continue
		}
		page = append(page, evt)
		if len(page) == limit {
			break
		}
	}
	return page, nil
}

type fakeCheckpointStore struct {
	checkpoints map[string]Checkpoint
	saves       int
}

func newFakeCheckpointStore() *fakeCheckpointStore {
	return &fakeCheckpointStore{checkpoints: make(map[string]Checkpoint)}
}

func (s *fakeCheckpointStore) Get(_ context.Context, envelopeID string) (Checkpoint, error) {
	checkpoint, ok := s.checkpoints[envelopeID]
	if !ok {
		return Checkpoint{}, ErrCheckpointNotFound
	}
	return checkpoint, nil
}

func (s *fakeCheckpointStore) Save(_ context.Context, checkpoint Checkpoint) error {
	s.checkpoints[checkpoint.EnvelopeID] = checkpoint
	s.saves++
	return nil
}

// countingFolder counts events in order by appending their types to state.
type countingFolder struct{}

func (countingFolder) Fold(state any, evt event.Event) (any, error) {
	types, _ := state.([]event.Type)
	return append(types, evt.Type), nil
}

func streamEvents(seqs ...uint64) []event.Event {
	events := make([]event.Event, 0, len(seqs))
	for _, seq := range seqs {
		events = append(events, event.Event{EnvelopeID: "env-1", Seq: seq, Type: "envelope.registered"})
	}
	return events
}

func TestReplayAppliesEventsInOrder(t *testing.T) {
	store := &fakeEventStore{events: streamEvents(1, 2, 3)}
	checkpoints := newFakeCheckpointStore()

	result, err := Replay(context.Background(), store, checkpoints, countingFolder{}, "env-1", nil, Options{PageSize: 2})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if result.Applied != 3 || result.LastSeq != 3 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if checkpoints.checkpoints["env-1"].LastSeq != 3 {
		t.Fatalf("expected checkpoint at 3, got %+v", checkpoints.checkpoints["env-1"])
	}
	if checkpoints.saves != 3 {
		t.Fatalf("expected a checkpoint save per event, got %d", checkpoints.saves)
	}
}

func TestReplayResumesFromAfterSeq(t *testing.T) {
	store := &fakeEventStore{events: streamEvents(1, 2, 3)}

	result, err := Replay(context.Background(), store, newFakeCheckpointStore(), countingFolder{}, "env-1", nil, Options{AfterSeq: 2})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if result.Applied != 1 || result.LastSeq != 3 {
		t.Fatalf("expected only seq 3 applied, got %+v", result)
	}
}

func TestReplayStaleCheckpointDoesNotSkipEvents(t *testing.T) {
	store := &fakeEventStore{events: streamEvents(1, 2, 3)}
	checkpoints := newFakeCheckpointStore()
	checkpoints.checkpoints["env-1"] = Checkpoint{EnvelopeID: "env-1", LastSeq: 2}

	result, err := Replay(context.Background(), store, checkpoints, countingFolder{}, "env-1", nil, Options{})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if result.Applied != 3 || result.LastSeq != 3 {
		t.Fatalf("expected full replay despite checkpoint, got %+v", result)
	}
	if types, _ := result.State.([]event.Type); len(types) != 3 {
		t.Fatalf("expected all 3 events folded, got %v", types)
	}
}

func TestReplayStopsAtUntilSeq(t *testing.T) {
	store := &fakeEventStore{events: streamEvents(1, 2, 3)}

	result, err := Replay(context.Background(), store, newFakeCheckpointStore(), countingFolder{}, "env-1", nil, Options{UntilSeq: 2})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if result.Applied != 2 || result.LastSeq != 2 {
		t.Fatalf("expected replay bounded at 2, got %+v", result)
	}
}

func TestReplayDetectsSequenceGap(t *testing.T) {
	store := &fakeEventStore{events: streamEvents(1, 3)}

	_, err := Replay(context.Background(), store, newFakeCheckpointStore(), countingFolder{}, "env-1", nil, Options{})
	if err == nil || !strings.Contains(err.Error(), "event sequence gap") {
		t.Fatalf("expected sequence gap error, got %v", err)
	}
}

func TestReplayEmptyStream(t *testing.T) {
	result, err := Replay(context.Background(), &fakeEventStore{}, newFakeCheckpointStore(), countingFolder{}, "env-1", nil, Options{})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if result.Applied != 0 || result.LastSeq != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestReplayRequiredArguments(t *testing.T) {
	ctx := context.Background()
	store := &fakeEventStore{}
	checkpoints := newFakeCheckpointStore()

	if _, err := Replay(ctx, nil, checkpoints, countingFolder{}, "env-1", nil, Options{}); !errors.Is(err, ErrEventStoreRequired) {
		t.Fatalf("expected event store error, got %v", err)
	}
	if _, err := Replay(ctx, store, nil, countingFolder{}, "env-1", nil, Options{}); !errors.Is(err, ErrCheckpointStoreRequired) {
		t.Fatalf("expected checkpoint store error, got %v", err)
	}
	if _, err := Replay(ctx, store, checkpoints, nil, "env-1", nil, Options{}); !errors.Is(err, ErrFolderRequired) {
		t.Fatalf("expected folder error, got %v", err)
	}
	if _, err := Replay(ctx, store, checkpoints, countingFolder{}, "  ", nil, Options{}); !errors.Is(err, ErrEnvelopeIDRequired) {
		t.Fatalf("expected envelope id error, got %v", err)
	}
}
