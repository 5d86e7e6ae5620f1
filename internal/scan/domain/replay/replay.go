// Package replay rebuilds aggregate state by folding the ordered event
// history of one envelope stream, tracking progress through checkpoints.
package replay

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/opencourts/scandesk/internal/scan/domain/event"
)

const defaultPageSize = 200

var (
	// ErrEventStoreRequired indicates a missing event store.
	ErrEventStoreRequired = errors.New("event store is required")
	// ErrCheckpointStoreRequired indicates a missing checkpoint store.
	ErrCheckpointStoreRequired = errors.New("checkpoint store is required")
	// ErrFolderRequired indicates a missing folder.
	ErrFolderRequired = errors.New("folder is required")
	// ErrEnvelopeIDRequired indicates a missing envelope id.
	ErrEnvelopeIDRequired = errors.New("envelope id is required")
	// ErrCheckpointNotFound indicates no checkpoint exists yet.
	ErrCheckpointNotFound = errors.New("checkpoint not found")
)

// EventStore lists events for replay.
type EventStore interface {
	ListEvents(ctx context.Context, envelopeID string, afterSeq uint64, limit int) ([]event.Event, error)
}

// CheckpointStore manages replay checkpoints.
type CheckpointStore interface {
	Get(ctx context.Context, envelopeID string) (Checkpoint, error)
	Save(ctx context.Context, checkpoint Checkpoint) error
}

// Folder folds a domain event into aggregate state.
type Folder interface {
	Fold(state any, evt event.Event) (any, error)
}

// Checkpoint captures the last applied sequence for an envelope stream.
type Checkpoint struct {
	EnvelopeID string
	LastSeq    uint64
	UpdatedAt  time.Time
}

// Options configures replay behavior.
type Options struct {
	AfterSeq uint64
	UntilSeq uint64
	PageSize int
}

// Result captures replay outcomes.
type Result struct {
	State   any
	LastSeq uint64
	Applied int
}

// Replay folds events in order starting after options.AfterSeq and records a
// checkpoint after each fold.
//
// AfterSeq must state how much of the stream the supplied state has already
// absorbed. Checkpoints record progress only; they never raise the baseline,
// so a checkpoint ahead of the caller's state re-folds instead of skipping.
func Replay(ctx context.Context, store EventStore, checkpoints CheckpointStore, folder Folder, envelopeID string, state any, options Options) (Result, error) {
	if store == nil {
		return Result{}, ErrEventStoreRequired
	}
	if checkpoints == nil {
		return Result{}, ErrCheckpointStoreRequired
	}
	if folder == nil {
		return Result{}, ErrFolderRequired
	}
	envelopeID = strings.TrimSpace(envelopeID)
	if envelopeID == "" {
		return Result{}, ErrEnvelopeIDRequired
	}

	lastSeq := options.AfterSeq
	pageSize := options.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	result := Result{State: state, LastSeq: lastSeq}
	for {
		events, err := store.ListEvents(ctx, envelopeID, result.LastSeq, pageSize)
		if err != nil {
			return result, err
		}
		if len(events) == 0 {
			return result, nil
		}
		for _, evt := range events {
			if options.UntilSeq > 0 && evt.Seq > options.UntilSeq {
				return result, nil
			}
			expectedSeq := result.LastSeq + 1
			if evt.Seq != expectedSeq {
				return result, fmt.Errorf("event sequence gap: expected %d got %d", expectedSeq, evt.Seq)
			}
			nextState, err := folder.Fold(result.State, evt)
			if err != nil {
				return result, err
			}
			result.State = nextState
			result.LastSeq = evt.Seq
			result.Applied++
			if err := checkpoints.Save(ctx, Checkpoint{EnvelopeID: envelopeID, LastSeq: result.LastSeq, UpdatedAt: time.Now().UTC()}); err != nil {
				return result, err
			}
		}
	}
}
