package storage

import (
	"context"
	"errors"
	"time"

	"github.com/opencourts/scandesk/internal/scan/domain/envelope"
	"github.com/opencourts/scandesk/internal/scan/domain/event"
)

// ErrNotFound indicates a requested persistence record is missing.
// Callers use this to differentiate between legitimate "no such entity" states
// and transport or data corruption failures.
var ErrNotFound = errors.New("record not found")

// EnvelopeRecord captures the projection-oriented envelope metadata that APIs read.
type EnvelopeRecord struct {
	ID            string
	ZipFileName   string
	DocumentCount int
	RegisteredAt  time.Time
	UpdatedAt     time.Time
}

// DocumentRecord captures per-document read state used by caseworker queries.
type DocumentRecord struct {
	ID              string
	EnvelopeID      string
	FileName        string
	Name            string
	CaseURN         string
	CasePTIURN      string
	IsSJP           bool
	Status          envelope.Status
	StatusUpdatedAt time.Time
	ActionedBy      string
	Deleted         bool
	DeletedAt       *time.Time
	UpdatedAt       time.Time
}

// EventStore persists and retrieves journal events for envelope streams.
type EventStore interface {
	AppendEvent(ctx context.Context, evt event.Event) (event.Event, error)
	GetEventBySeq(ctx context.Context, envelopeID string, seq uint64) (event.Event, error)
	ListEvents(ctx context.Context, envelopeID string, afterSeq uint64, limit int) ([]event.Event, error)
	GetLatestEventSeq(ctx context.Context, envelopeID string) (uint64, error)
}

// EnvelopeStore persists envelope read-model records.
type EnvelopeStore interface {
	PutEnvelope(ctx context.Context, record EnvelopeRecord) error
	GetEnvelope(ctx context.Context, id string) (EnvelopeRecord, error)
	ListEnvelopes(ctx context.Context, limit int) ([]EnvelopeRecord, error)
}

// DocumentStore persists document read-model records.
type DocumentStore interface {
	PutDocument(ctx context.Context, record DocumentRecord) error
	GetDocument(ctx context.Context, envelopeID, documentID string) (DocumentRecord, error)
	ListDocuments(ctx context.Context, envelopeID string) ([]DocumentRecord, error)
	ListDocumentsByStatus(ctx context.Context, status envelope.Status, limit int) ([]DocumentRecord, error)
}
