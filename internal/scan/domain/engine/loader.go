package engine

import (
	"context"
	"errors"

	"github.com/opencourts/scandesk/internal/scan/domain/command"
	"github.com/opencourts/scandesk/internal/scan/domain/replay"
)

// StateSnapshotStore loads and saves replay state snapshots keyed by envelope.
type StateSnapshotStore interface {
	GetState(ctx context.Context, envelopeID string) (state any, lastSeq uint64, err error)
	SaveState(ctx context.Context, envelopeID string, lastSeq uint64, state any) error
}

// ReplayStateLoader replays events to build state for command handling.
//
// It is intentionally thin and composable: checkpoints/snapshots and a folder
// produce deterministic state for the current command, whether from scratch or
// from a cached prefix.
type ReplayStateLoader struct {
	Events       replay.EventStore
	Checkpoints  replay.CheckpointStore
	Snapshots    StateSnapshotStore
	Folder       replay.Folder
	StateFactory func() any
	Options      replay.Options
}

// Load replays events to reconstruct state for an envelope stream.
//
// The load flow is the same source used at runtime and during command
// handling, which makes command outcomes reproducible in replay mode.
func (l ReplayStateLoader) Load(ctx context.Context, cmd command.Command) (any, error) {
	if l.Events == nil {
		return nil, replay.ErrEventStoreRequired
	}
	if l.Checkpoints == nil {
		return nil, replay.ErrCheckpointStoreRequired
	}
	if l.Folder == nil {
		return nil, replay.ErrFolderRequired
	}
	var state any
	options := l.Options
	if l.Snapshots != nil {
		snapshotState, snapshotSeq, err := l.Snapshots.GetState(ctx, cmd.EnvelopeID)
		if err != nil {
			if !errors.Is(err, replay.ErrCheckpointNotFound) {
				return nil, err
			}
		} else {
			// The replay baseline is whatever the snapshot has absorbed.
			// A checkpoint saved past it must not raise the baseline;
			// events beyond the snapshot are re-folded.
			state = snapshotState
			if snapshotSeq > options.AfterSeq {
				options.AfterSeq = snapshotSeq
			}
		}
	}
	if l.StateFactory != nil {
		if state == nil {
			state = l.StateFactory()
		}
	}
	result, err := replay.Replay(ctx, l.Events, l.Checkpoints, l.Folder, cmd.EnvelopeID, state, options)
	if err != nil {
		return nil, err
	}
	return result.State, nil
}
