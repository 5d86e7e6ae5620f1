package means

// Income frequency values.
const (
	FrequencyWeekly      = "WEEKLY"
	FrequencyFortnightly = "FORTNIGHTLY"
	FrequencyMonthly     = "MONTHLY"
	FrequencyYearly      = "YEARLY"
)

// Employment status values derived from the extracted form flags.
const (
	EmploymentEmployed     = "EMPLOYED"
	EmploymentSelfEmployed = "SELF_EMPLOYED"
	EmploymentUnemployed   = "UNEMPLOYED"
	EmploymentOther        = "OTHER"
)

// UpdatePayload is the payload of the defendant.financial_means.update
// command: the externally captured answers that supplement the extracted
// form fields.
type UpdatePayload struct {
	DocumentID        string `json:"documentId"`
	BenefitType       string `json:"benefitType,omitempty"`
	EmployeeReference string `json:"employeeReference,omitempty"`
}

// Income is the reconciled income record.
type Income struct {
	Amount    float64 `json:"amount"`
	Frequency string  `json:"frequency"`
}

// Benefits is the reconciled benefits record.
type Benefits struct {
	Claimed bool   `json:"claimed"`
	Type    string `json:"type,omitempty"`
}

// Employer is the reconciled employer record. It is only populated when the
// extracted organisation name, address line 1 and a valid UK postcode are all
// present.
type Employer struct {
	Name         string `json:"name"`
	AddressLine1 string `json:"addressLine1"`
	Postcode     string `json:"postcode"`
	Reference    string `json:"reference,omitempty"`
}

// UpdatedPayload is the payload of the defendant.financial_means_updated
// event.
type UpdatedPayload struct {
	DocumentID       string    `json:"documentId"`
	CaseRef          string    `json:"caseRef,omitempty"`
	Income           *Income   `json:"income,omitempty"`
	Benefits         *Benefits `json:"benefits,omitempty"`
	Employer         *Employer `json:"employer,omitempty"`
	EmploymentStatus string    `json:"employmentStatus"`
	NINumber         string    `json:"niNumber,omitempty"`
}
