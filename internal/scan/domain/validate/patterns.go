package validate

import (
	"regexp"
	"strings"
)

// niNumberPattern matches the HMRC national insurance number format after the
// disallowed prefixes are screened separately (Go regexp has no lookahead).
var niNumberPattern = regexp.MustCompile(`^[ABCEGHJ-PRSTW-Z][ABCEGHJ-NPRSTW-Z][0-9]{6}[A-D]$`)

// niDisallowedPrefixes are administratively reserved and never issued.
var niDisallowedPrefixes = []string{"BG", "GB", "NK", "KN", "TN", "NT", "ZZ"}

// postcodePattern matches UK postcodes in their normalized outward+inward form.
var postcodePattern = regexp.MustCompile(`^[A-Z]{1,2}[0-9][A-Z0-9]? ?[0-9][A-Z]{2}$`)

// ValidNINumber reports whether the value is a well-formed UK national
// insurance number. Spaces are ignored and matching is case-insensitive.
func ValidNINumber(value string) bool {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(value), " ", ""))
	if !niNumberPattern.MatchString(normalized) {
		return false
	}
	for _, prefix := range niDisallowedPrefixes {
		if strings.HasPrefix(normalized, prefix) {
			return false
		}
	}
	return true
}

// ValidPostcode reports whether the value is a well-formed UK postcode.
func ValidPostcode(value string) bool {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	return postcodePattern.MatchString(normalized)
}
