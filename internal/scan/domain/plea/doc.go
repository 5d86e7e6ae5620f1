// Package plea reconciles defendant-submitted details against the plea-form
// snapshot stored on the scanned document: contact details, offence pleas and
// court options. Anything that cannot be reconciled automatically pushes the
// document to follow-up instead of failing the command.
package plea
