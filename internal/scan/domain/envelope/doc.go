// Package envelope holds the scan-envelope memento and the document lifecycle
// decider: registration, next-step decisions, manual/auto actioning, deletion,
// rejection, expiry, and follow-up.
//
// The memento is rebuilt exclusively by folding committed events in order; no
// command reads or writes it directly. The registration decider also resolves
// the out-of-order race where a "decide next step" command arrives before the
// envelope is registered: the early decision is parked as a replay-only paused
// event and drained into real next-step decisions at registration time.
package envelope
