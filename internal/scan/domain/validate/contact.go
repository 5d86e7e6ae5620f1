package validate

import (
	"regexp"
	"strings"
)

var (
	emailPattern   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern   = regexp.MustCompile(`^\+?[0-9][0-9 ]{8,14}$`)
	licencePattern = regexp.MustCompile(`^[A-Z9]{5}[0-9]{6}[A-Z9]{2}[0-9][A-Z0-9]{2}$`)
)

// ContactDetails carries the comparable contact fields of a plea form.
type ContactDetails struct {
	Email          string
	Phone          string
	DrivingLicence string
}

// ContactResolution is the outcome of comparing submitted contact details
// against the stored snapshot.
type ContactResolution struct {
	// Email and Phone are the resolved values: the submitted value when it is
	// syntactically valid, the existing value otherwise.
	Email string
	Phone string
	// DrivingLicence is the resolved licence number: the existing value when
	// both sides are valid but differ, otherwise whichever side is valid.
	DrivingLicence string
	// Updated reports whether any resolved value differs from the snapshot.
	Updated bool
	// LicenceMismatch reports both licences valid but different.
	LicenceMismatch bool
	// LicenceInvalid reports a non-blank submitted licence that fails the
	// format check.
	LicenceInvalid bool
}

// ValidEmail reports whether the value looks like an email address.
func ValidEmail(value string) bool {
	return emailPattern.MatchString(strings.TrimSpace(value))
}

// ValidPhone reports whether the value looks like a phone number.
func ValidPhone(value string) bool {
	return phonePattern.MatchString(strings.TrimSpace(value))
}

// ValidDrivingLicence reports whether the value is a well-formed GB driving
// licence number.
func ValidDrivingLicence(value string) bool {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(value), " ", ""))
	return licencePattern.MatchString(normalized)
}

// ResolveContactDetails compares submitted contact details against the stored
// snapshot and returns the values that should be recorded.
func ResolveContactDetails(existing, submitted ContactDetails) ContactResolution {
	resolution := ContactResolution{
		Email:          strings.TrimSpace(existing.Email),
		Phone:          strings.TrimSpace(existing.Phone),
		DrivingLicence: strings.TrimSpace(existing.DrivingLicence),
	}

	if email := strings.TrimSpace(submitted.Email); email != "" && ValidEmail(email) {
		resolution.Email = email
	}
	if phone := strings.TrimSpace(submitted.Phone); phone != "" && ValidPhone(phone) {
		resolution.Phone = phone
	}

	existingLicence := strings.TrimSpace(existing.DrivingLicence)
	submittedLicence := strings.TrimSpace(submitted.DrivingLicence)
	existingValid := ValidDrivingLicence(existingLicence)
	submittedValid := ValidDrivingLicence(submittedLicence)
	switch {
	case submittedLicence != "" && !submittedValid:
		resolution.LicenceInvalid = true
	case existingValid && submittedValid && !strings.EqualFold(existingLicence, submittedLicence):
		resolution.LicenceMismatch = true
		resolution.DrivingLicence = existingLicence
	case submittedValid:
		resolution.DrivingLicence = submittedLicence
	case existingValid:
		resolution.DrivingLicence = existingLicence
	}

	resolution.Updated = resolution.Email != strings.TrimSpace(existing.Email) ||
		resolution.Phone != strings.TrimSpace(existing.Phone) ||
		resolution.DrivingLicence != strings.TrimSpace(existing.DrivingLicence)
	return resolution
}
