// Package command defines the canonical command envelope and contract used
// across the scan write path.
//
// Commands express caseworker, defendant, and pipeline intent. They are the
// stable boundary before domain deciders so that business rules are evaluated
// only against normalized inputs.
package command
