// Package http exposes the command and query surface of the scan service
// over a chi-routed JSON API.
package http
