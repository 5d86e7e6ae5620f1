// Package storage defines persistence interfaces and read-model records for
// scan envelope processing.
package storage
