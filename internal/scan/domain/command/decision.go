package command

import (
	"errors"

	"github.com/opencourts/scandesk/internal/scan/domain/event"
)

// Decision represents the pure outcome of handling a command.
//
// An empty decision is a valid outcome for commands whose target cannot be
// located: missing-entity conditions fail soft with no events and no
// rejections, and the caller's logging records the anomaly.
type Decision struct {
	Events     []event.Event
	Rejections []Rejection
}

// Rejection captures a domain-level reason a command was declined.
type Rejection struct {
	Code    string
	Message string
}

// Accept returns a decision that emits the provided events.
func Accept(events ...event.Event) Decision {
	return Decision{Events: append([]event.Event(nil), events...)}
}

// Reject returns a decision that carries the provided rejections.
func Reject(rejections ...Rejection) Decision {
	return Decision{Rejections: append([]Rejection(nil), rejections...)}
}

// Empty reports whether the decision emitted nothing and rejected nothing.
func (d Decision) Empty() bool {
	return len(d.Events) == 0 && len(d.Rejections) == 0
}

// Validate checks that a non-empty decision does not mix events with rejections.
func (d Decision) Validate() error {
	if len(d.Events) > 0 && len(d.Rejections) > 0 {
		return errors.New("decision cannot carry both events and rejections")
	}
	return nil
}
