package projection

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/opencourts/scandesk/internal/scan/domain/event"
)

// AppendStore is the journal surface the decorator wraps.
type AppendStore interface {
	AppendEvent(ctx context.Context, evt event.Event) (event.Event, error)
}

// Journal appends events to the journal and mirrors them into read models.
//
// A projection failure never fails the append: the journal is the source of
// truth and read models are rebuildable, so the error is logged and the
// stored event returned.
type Journal struct {
	Store   AppendStore
	Applier Applier
	Logger  *slog.Logger
}

// Append stores the event, then applies it to projection stores.
func (j Journal) Append(ctx context.Context, evt event.Event) (event.Event, error) {
	if j.Store == nil {
		return event.Event{}, fmt.Errorf("event store is not configured")
	}
	stored, err := j.Store.AppendEvent(ctx, evt)
	if err != nil {
		return event.Event{}, err
	}
	if err := j.Applier.Apply(ctx, stored); err != nil {
		logger := j.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.ErrorContext(ctx, "projection apply failed",
			"envelope_id", stored.EnvelopeID,
			"seq", stored.Seq,
			"event_type", string(stored.Type),
			"error", err,
		)
	}
	return stored, nil
}
