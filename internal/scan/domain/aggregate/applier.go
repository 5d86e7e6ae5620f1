package aggregate

import (
	"errors"
	"sync"

	"github.com/opencourts/scandesk/internal/scan/domain/event"
)

var errUnsupportedState = errors.New("unsupported state type")

// Folder folds events into aggregate state.
//
// The folder is where the domain boundary stays deterministic: each event
// type updates exactly one aggregate slice and is replayed identically during
// request execution and historical reconstruction. Named "Folder" (not
// "Applier") to distinguish pure state folds from projection.Applier, which
// performs side-effecting writes to read-model stores.
//
// Dispatch is declarative: coreFoldEntries() defines the mapping from event
// types to fold functions. Unknown and future event types fall through with
// no effect, which keeps replay forward compatible.
type Folder struct {
	// Events provides event definitions so the folder can skip audit-only
	// events that do not affect aggregate state.
	Events *event.Registry

	// foldIndex is lazily built on first Fold to avoid dispatch into fold
	// functions that cannot possibly handle the event type.
	foldOnce  sync.Once
	foldIndex map[event.Type]func(*State, event.Event) error
}

func (a *Folder) initFoldIndex() {
	a.foldOnce.Do(func() {
		entries := coreFoldEntries()
		a.foldIndex = make(map[event.Type]func(*State, event.Event) error)
		for _, entry := range entries {
			fn := entry.fold
			for _, t := range entry.types() {
				a.foldIndex[t] = fn
			}
		}
	})
}

// FoldDispatchedTypes returns the union of all event types wired into the
// fold dispatch index.
func (a *Folder) FoldDispatchedTypes() []event.Type {
	a.initFoldIndex()
	types := make([]event.Type, 0, len(a.foldIndex))
	for t := range a.foldIndex {
		types = append(types, t)
	}
	return types
}

// Fold applies a single event to aggregate state.
//
// State mutates only through fold functions so transitions remain visible in
// one place per subdomain and replay behavior matches request-time behavior.
func (a *Folder) Fold(state any, evt event.Event) (any, error) {
	if a.Events != nil {
		if def, ok := a.Events.Definition(evt.Type); ok && def.Intent == event.IntentAuditOnly {
			return AssertState[State](state)
		}
	}

	a.initFoldIndex()

	current, err := AssertState[State](state)
	if err != nil {
		return State{}, err
	}

	if fn, ok := a.foldIndex[evt.Type]; ok {
		if err := fn(&current, evt); err != nil {
			return current, err
		}
	}
	return current, nil
}
