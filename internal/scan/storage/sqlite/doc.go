// Package sqlite provides SQLite-backed implementations of the storage
// interfaces: the hash-chained event journal and the envelope/document
// read-model stores.
package sqlite
