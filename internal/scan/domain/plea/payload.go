package plea

// SubmittedOffence is one offence row of the defendant's submission.
type SubmittedOffence struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
	Plea  string `json:"plea,omitempty"`
}

// Defendant carries the defendant-submitted details for one document.
type Defendant struct {
	DocumentID          string             `json:"documentId"`
	Email               string             `json:"email,omitempty"`
	Phone               string             `json:"phone,omitempty"`
	DrivingLicence      string             `json:"drivingLicenceNumber,omitempty"`
	Offences            []SubmittedOffence `json:"offences,omitempty"`
	WishToComeToCourt   *bool              `json:"wishToComeToCourt,omitempty"`
	InterpreterNeeded   *bool              `json:"interpreterNeeded,omitempty"`
	InterpreterLanguage string             `json:"interpreterLanguage,omitempty"`
	DisabilityNeeds     string             `json:"disabilityNeeds,omitempty"`
	WelshHearing        *bool              `json:"welshHearing,omitempty"`
}

// UpdateDetailsPayload is the payload of the defendant.details.update command.
type UpdateDetailsPayload struct {
	Defendant Defendant `json:"defendant"`
}

// DetailsUpdatedPayload is the payload of the defendant.details_updated
// event. It carries the resolved (new-or-existing) contact values.
type DetailsUpdatedPayload struct {
	DocumentID     string `json:"documentId"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	DrivingLicence string `json:"drivingLicenceNumber,omitempty"`
}

// DefendantPlea is one reconciled per-offence plea record. The stored plea
// value is authoritative when it differs from the submission.
type DefendantPlea struct {
	OffenceID         string `json:"offenceId"`
	OffenceTitle      string `json:"offenceTitle"`
	Value             string `json:"value,omitempty"`
	WishToComeToCourt *bool  `json:"wishToComeToCourt,omitempty"`
}

// CourtOptions is the reconciled hearing-needs record.
type CourtOptions struct {
	InterpreterNeeded   *bool  `json:"interpreterNeeded,omitempty"`
	InterpreterLanguage string `json:"interpreterLanguage,omitempty"`
	DisabilityNeeds     string `json:"disabilityNeeds,omitempty"`
	WelshHearing        *bool  `json:"welshHearing,omitempty"`
}

// PleaDetailsUpdatedPayload is the payload of the plea.details_updated event.
type PleaDetailsUpdatedPayload struct {
	DocumentID   string          `json:"documentId"`
	Pleas        []DefendantPlea `json:"pleas"`
	CourtOptions CourtOptions    `json:"courtOptions"`
}
