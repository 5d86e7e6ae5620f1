// Package validate holds the pure validators of the scan domain: pattern
// predicates for NI numbers and UK postcodes, the contact-details resolver,
// and the plea validator.
//
// Validators never reject commands. They produce Problem values that deciders
// record inside events, or resolved values that deciders emit; the document is
// pushed to follow-up rather than the command failing.
package validate
