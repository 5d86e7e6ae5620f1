// Package event defines the canonical event envelope and event-type registry
// used by the scan write path.
//
// Events are immutable business facts emitted by accepted decisions. The
// registry is the single authority on which event types exist, how their
// payloads are validated, and whether a type participates in replay,
// projection, or both.
package event
