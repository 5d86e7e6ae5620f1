package envelope

import (
	"strings"
	"time"
)

// StateVersion identifies the snapshot schema of State for persistence and
// caching. Bump when the shape of the serialized memento changes.
const StateVersion = 1

// DocNameFinancialMeans is the document name of the statutory financial-means
// disclosure form.
const DocNameFinancialMeans = "MC100"

// Status is the review lifecycle status of a scan document.
type Status string

const (
	// StatusPending marks a document awaiting review.
	StatusPending Status = "PENDING"
	// StatusFollowUp marks a document needing human review because automated
	// reconciliation could not proceed.
	StatusFollowUp Status = "FOLLOW_UP"
	// StatusManuallyActioned marks a document actioned by a caseworker.
	StatusManuallyActioned Status = "MANUALLY_ACTIONED"
	// StatusAutoActioned marks a document actioned automatically.
	StatusAutoActioned Status = "AUTO_ACTIONED"
)

// Envelope is one inbound batch of scanned documents plus extracted metadata.
type Envelope struct {
	ID             string     `json:"id"`
	ZipFileName    string     `json:"zipFileName"`
	Classification string     `json:"classification,omitempty"`
	Jurisdiction   string     `json:"jurisdiction,omitempty"`
	VendorPOBox    string     `json:"vendorPoBox,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	ExtractedAt    time.Time  `json:"extractedAt"`
	Documents      []Document `json:"documents"`
}

// Document is one scanned file within an envelope.
type Document struct {
	ID              string          `json:"id"`
	FileName        string          `json:"fileName"`
	CaseURN         string          `json:"caseUrn,omitempty"`
	CasePTIURN      string          `json:"casePtiUrn,omitempty"`
	ControlNumber   string          `json:"controlNumber,omitempty"`
	Name            string          `json:"name"`
	Status          Status          `json:"status"`
	ActionedBy      string          `json:"actionedBy,omitempty"`
	StatusUpdatedAt time.Time       `json:"statusUpdatedAt"`
	Deleted         bool            `json:"deleted,omitempty"`
	DeletedAt       *time.Time      `json:"deletedAt,omitempty"`
	Plea            *Plea           `json:"plea,omitempty"`
	FinancialMeans  *FinancialMeans `json:"financialMeans,omitempty"`
}

// Plea is the extracted plea-form snapshot embedded in a document.
type Plea struct {
	Offences            []Offence `json:"offences,omitempty"`
	InterpreterNeeded   *bool     `json:"interpreterNeeded,omitempty"`
	InterpreterLanguage string    `json:"interpreterLanguage,omitempty"`
	DisabilityNeeds     string    `json:"disabilityNeeds,omitempty"`
	WelshHearing        *bool     `json:"welshHearing,omitempty"`
	WishToComeToCourt   *bool     `json:"wishToComeToCourt,omitempty"`
	DetailsCorrect      *bool     `json:"detailsCorrect,omitempty"`
	Email               string    `json:"email,omitempty"`
	Phone               string    `json:"phone,omitempty"`
	DrivingLicence      string    `json:"drivingLicenceNumber,omitempty"`
}

// Offence is one offence row of a stored plea snapshot.
type Offence struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Plea             string `json:"plea,omitempty"`
	HasFinalDecision bool   `json:"hasFinalDecision,omitempty"`
}

// FinancialMeans is the extracted MC100 form snapshot embedded in a document.
type FinancialMeans struct {
	AverageIncome        string `json:"averageIncome,omitempty"`
	PaidWeekly           bool   `json:"paidWeekly,omitempty"`
	PaidFortnightly      bool   `json:"paidFortnightly,omitempty"`
	PaidMonthly          bool   `json:"paidMonthly,omitempty"`
	NoIncome             bool   `json:"noIncome,omitempty"`
	BenefitsClaimed      bool   `json:"benefitsClaimed,omitempty"`
	EmployerName         string `json:"employerName,omitempty"`
	EmployerAddressLine1 string `json:"employerAddressLine1,omitempty"`
	EmployerPostcode     string `json:"employerPostcode,omitempty"`
	PayrollNumber        string `json:"payrollNumber,omitempty"`
	Employed             bool   `json:"employed,omitempty"`
	SelfEmployed         bool   `json:"selfEmployed,omitempty"`
	Unemployed           bool   `json:"unemployed,omitempty"`
	OtherEmployment      bool   `json:"otherEmployment,omitempty"`
	NINumber             string `json:"niNumber,omitempty"`
}

// DeferredDecision parks a next-step decision that arrived before the
// envelope was registered. It lives only in replay state and is never
// externally projected.
type DeferredDecision struct {
	EnvelopeID string `json:"envelopeId"`
	DocumentID string `json:"documentId"`
	IsSJP      bool   `json:"isSjpCase"`
}

// State is the reconstructed memento of one scan envelope and its documents.
type State struct {
	Registered bool               `json:"registered"`
	Envelope   Envelope           `json:"envelope"`
	Deferred   []DeferredDecision `json:"deferred,omitempty"`
}

// Document returns the document with the given id, if present.
func (e Envelope) Document(documentID string) (Document, bool) {
	for _, doc := range e.Documents {
		if doc.ID == documentID {
			return doc, true
		}
	}
	return Document{}, false
}

// WithDocument returns a copy of the envelope with the matching document
// replaced. The document collection is rebuilt copy-on-write; it is never
// partially mutated in place.
func (e Envelope) WithDocument(updated Document) Envelope {
	documents := make([]Document, len(e.Documents))
	copy(documents, e.Documents)
	for i, doc := range documents {
		if doc.ID == updated.ID {
			documents[i] = updated
			break
		}
	}
	e.Documents = documents
	return e
}

// CaseRef resolves the document's case reference, preferring the case URN and
// falling back to the PTI-URN when the URN is blank.
func (d Document) CaseRef() string {
	if urn := strings.TrimSpace(d.CaseURN); urn != "" {
		return urn
	}
	return strings.TrimSpace(d.CasePTIURN)
}

// withDeferred returns state with the decision parked, replacing any earlier
// decision for the same document so at most one is pending per document.
func (s State) withDeferred(decision DeferredDecision) State {
	deferred := make([]DeferredDecision, 0, len(s.Deferred)+1)
	for _, existing := range s.Deferred {
		if existing.DocumentID != decision.DocumentID {
			deferred = append(deferred, existing)
		}
	}
	s.Deferred = append(deferred, decision)
	return s
}

// withoutDeferred returns state with the parked decision for a document removed.
func (s State) withoutDeferred(documentID string) State {
	deferred := make([]DeferredDecision, 0, len(s.Deferred))
	for _, existing := range s.Deferred {
		if existing.DocumentID != documentID {
			deferred = append(deferred, existing)
		}
	}
	if len(deferred) == 0 {
		deferred = nil
	}
	s.Deferred = deferred
	return s
}
