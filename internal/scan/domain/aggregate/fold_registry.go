package aggregate

import (
	"github.com/opencourts/scandesk/internal/scan/domain/envelope"
	"github.com/opencourts/scandesk/internal/scan/domain/event"
	"github.com/opencourts/scandesk/internal/scan/domain/plea"
)

// foldEntry describes how a set of event types maps to a fold function that
// updates one slice of aggregate state.
type foldEntry struct {
	// types returns the event types handled by this fold entry.
	types func() []event.Type
	// fold applies a single event to a sub-state and writes the result back
	// into the aggregate state.
	fold func(state *State, evt event.Event) error
}

// coreFoldEntries returns the declarative fold dispatch table for all core
// subdomains. Adding a new subdomain requires only adding an entry here.
func coreFoldEntries() []foldEntry {
	return []foldEntry{
		{
			types: envelope.FoldHandledTypes,
			fold: func(state *State, evt event.Event) error {
				updated, err := envelope.Fold(state.Scan, evt)
				if err != nil {
					return err
				}
				state.Scan = updated
				return nil
			},
		},
		{
			types: plea.FoldHandledTypes,
			fold: func(state *State, evt event.Event) error {
				updated, err := plea.Fold(state.Scan, evt)
				if err != nil {
					return err
				}
				state.Scan = updated
				return nil
			},
		},
	}
}
