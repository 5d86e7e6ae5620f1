package plea

import (
	"encoding/json"
	"fmt"

	"github.com/opencourts/scandesk/internal/scan/domain/envelope"
	"github.com/opencourts/scandesk/internal/scan/domain/event"
)

// FoldHandledTypes returns the event types handled by the plea fold function.
// plea.details_updated feeds projections only; the memento keeps the stored
// snapshot authoritative.
func FoldHandledTypes() []event.Type {
	return []event.Type{EventTypeDetailsUpdated}
}

// Fold applies resolved contact details back onto the document's stored plea
// snapshot so later submissions are compared against the latest values.
func Fold(state envelope.State, evt event.Event) (envelope.State, error) {
	switch evt.Type {
	case EventTypeDetailsUpdated:
		var payload DetailsUpdatedPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("plea fold %s: %w", evt.Type, err)
		}
		doc, ok := state.Envelope.Document(payload.DocumentID)
		if !ok || doc.Plea == nil {
			return state, nil
		}
		snapshot := *doc.Plea
		snapshot.Email = payload.Email
		snapshot.Phone = payload.Phone
		snapshot.DrivingLicence = payload.DrivingLicence
		doc.Plea = &snapshot
		state.Envelope = state.Envelope.WithDocument(doc)
	}
	return state, nil
}
