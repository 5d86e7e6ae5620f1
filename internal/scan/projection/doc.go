// Package projection mirrors journal events into denormalized read-model
// stores consumed by query APIs. Read models are derived data and can always
// be rebuilt from the journal.
package projection
