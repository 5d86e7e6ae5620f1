// Package means reconciles defendant-submitted financial information against
// the MC100 form fields extracted from the scanned document, producing the
// update event the court record systems consume.
package means
