// Package integrity computes content and chain hashes for journal events so
// tampering with stored history is detectable.
package integrity
