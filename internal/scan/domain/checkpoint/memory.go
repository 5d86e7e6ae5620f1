// Package checkpoint provides in-memory replay checkpoint storage.
package checkpoint

import (
	"context"
	"strings"
	"sync"

	"github.com/opencourts/scandesk/internal/scan/domain/replay"
)

// Memory is an in-memory checkpoint store keyed by envelope id. It also
// caches the folded state alongside the checkpoint so hot streams skip a
// full replay.
type Memory struct {
	mu          sync.RWMutex
	checkpoints map[string]replay.Checkpoint
	states      map[string]stateSnapshot
}

type stateSnapshot struct {
	state   any
	lastSeq uint64
}

// NewMemory returns an empty in-memory checkpoint store.
func NewMemory() *Memory {
	return &Memory{
		checkpoints: make(map[string]replay.Checkpoint),
		states:      make(map[string]stateSnapshot),
	}
}

// Get returns the checkpoint for an envelope stream.
func (m *Memory) Get(_ context.Context, envelopeID string) (replay.Checkpoint, error) {
	envelopeID = strings.TrimSpace(envelopeID)
	if envelopeID == "" {
		return replay.Checkpoint{}, replay.ErrEnvelopeIDRequired
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	checkpoint, ok := m.checkpoints[envelopeID]
	if !ok {
		return replay.Checkpoint{}, replay.ErrCheckpointNotFound
	}
	return checkpoint, nil
}

// Save stores the checkpoint for an envelope stream.
func (m *Memory) Save(_ context.Context, checkpoint replay.Checkpoint) error {
	envelopeID := strings.TrimSpace(checkpoint.EnvelopeID)
	if envelopeID == "" {
		return replay.ErrEnvelopeIDRequired
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkpoints[envelopeID] = checkpoint
	return nil
}

// GetState returns the cached state and last applied sequence for an
// envelope stream. Returns replay.ErrCheckpointNotFound when no snapshot
// has been saved yet.
func (m *Memory) GetState(_ context.Context, envelopeID string) (any, uint64, error) {
	envelopeID = strings.TrimSpace(envelopeID)
	if envelopeID == "" {
		return nil, 0, replay.ErrEnvelopeIDRequired
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	snapshot, ok := m.states[envelopeID]
	if !ok {
		return nil, 0, replay.ErrCheckpointNotFound
	}
	return snapshot.state, snapshot.lastSeq, nil
}

// SaveState caches the folded state for an envelope stream at a sequence.
func (m *Memory) SaveState(_ context.Context, envelopeID string, lastSeq uint64, state any) error {
	envelopeID = strings.TrimSpace(envelopeID)
	if envelopeID == "" {
		return replay.ErrEnvelopeIDRequired
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[envelopeID] = stateSnapshot{state: state, lastSeq: lastSeq}
	return nil
}
