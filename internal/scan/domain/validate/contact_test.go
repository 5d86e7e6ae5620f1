package validate

import "testing"

const (
	licenceOne = "SMITH912238SM9AB"
	licenceTwo = "JONES804021JM9CD"
)

func TestValidDrivingLicence(t *testing.T) {
	if !ValidDrivingLicence(licenceOne) {
		t.Fatalf("expected %q to be valid", licenceOne)
	}
	if !ValidDrivingLicence("smith912238sm9ab") {
		t.Fatal("expected lowercase licence to be valid after normalization")
	}
	if ValidDrivingLicence("SHORT") {
		t.Fatal("expected short licence to be invalid")
	}
	if ValidDrivingLicence("") {
		t.Fatal("expected blank licence to be invalid")
	}
}

func TestResolveContactDetailsTakesValidSubmittedValues(t *testing.T) {
	existing := ContactDetails{Email: "old@example.com", Phone: "01632 960001"}
	submitted := ContactDetails{Email: "new@example.com", Phone: "01632 960002"}

	resolution := ResolveContactDetails(existing, submitted)

	if resolution.Email != "new@example.com" {
		t.Fatalf("expected submitted email, got %q", resolution.Email)
	}
	if resolution.Phone != "01632 960002" {
		t.Fatalf("expected submitted phone, got %q", resolution.Phone)
	}
	if !resolution.Updated {
		t.Fatal("expected resolution to report an update")
	}
}

func TestResolveContactDetailsKeepsExistingOnInvalidSubmission(t *testing.T) {
	existing := ContactDetails{Email: "old@example.com", Phone: "01632 960001"}
	submitted := ContactDetails{Email: "not-an-email", Phone: "abc"}

	resolution := ResolveContactDetails(existing, submitted)

	if resolution.Email != "old@example.com" {
		t.Fatalf("expected existing email, got %q", resolution.Email)
	}
	if resolution.Phone != "01632 960001" {
		t.Fatalf("expected existing phone, got %q", resolution.Phone)
	}
	if resolution.Updated {
		t.Fatal("expected no update")
	}
}

func TestResolveContactDetailsLicenceMismatchKeepsExisting(t *testing.T) {
	existing := ContactDetails{DrivingLicence: licenceOne}
	submitted := ContactDetails{DrivingLicence: licenceTwo}

	resolution := ResolveContactDetails(existing, submitted)

	if !resolution.LicenceMismatch {
		t.Fatal("expected licence mismatch")
	}
	if resolution.DrivingLicence != licenceOne {
		t.Fatalf("expected existing licence to win, got %q", resolution.DrivingLicence)
	}
	if resolution.Updated {
		t.Fatal("mismatch must not count as an update")
	}
}

func TestResolveContactDetailsLicenceInvalid(t *testing.T) {
	existing := ContactDetails{DrivingLicence: licenceOne}
	submitted := ContactDetails{DrivingLicence: "NOT-A-LICENCE"}

	resolution := ResolveContactDetails(existing, submitted)

	if !resolution.LicenceInvalid {
		t.Fatal("expected invalid licence flag")
	}
	if resolution.DrivingLicence != licenceOne {
		t.Fatalf("expected existing licence retained, got %q", resolution.DrivingLicence)
	}
}

func TestResolveContactDetailsSubmittedLicenceFillsBlank(t *testing.T) {
	resolution := ResolveContactDetails(ContactDetails{}, ContactDetails{DrivingLicence: licenceTwo})

	if resolution.DrivingLicence != licenceTwo {
		t.Fatalf("expected submitted licence, got %q", resolution.DrivingLicence)
	}
	if !resolution.Updated {
		t.Fatal("expected update")
	}
	if resolution.LicenceMismatch || resolution.LicenceInvalid {
		t.Fatal("expected no licence flags")
	}
}
