package means

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/opencourts/scandesk/internal/scan/domain/command"
	"github.com/opencourts/scandesk/internal/scan/domain/envelope"
	"github.com/opencourts/scandesk/internal/scan/domain/event"
	"github.com/opencourts/scandesk/internal/scan/domain/validate"
)

// CommandTypeUpdateFinancialMeans reconciles captured answers with the
// extracted MC100 form.
const CommandTypeUpdateFinancialMeans command.Type = "defendant.financial_means.update"

// EventTypeFinancialMeansUpdated carries the reconciled financial record.
const EventTypeFinancialMeansUpdated event.Type = "defendant.financial_means_updated"

// HandlesCommand reports whether the means decider handles a command type.
func HandlesCommand(t command.Type) bool {
	return t == CommandTypeUpdateFinancialMeans
}

// Decide reconciles financial means for one document.
//
// The update event is always emitted when the document and its extracted form
// are present. A contradictory income submission additionally pushes the
// document to follow-up. A missing document or missing extracted form fails
// soft with an empty decision.
func Decide(state envelope.State, cmd command.Command, now func() time.Time) command.Decision {
	if now == nil {
		now = time.Now
	}
	if cmd.Type != CommandTypeUpdateFinancialMeans {
		return command.Reject(command.Rejection{
			Code:    command.RejectionCodeCommandTypeUnsupported,
			Message: "command type is not supported by means decider",
		})
	}

	var payload UpdatePayload
	if err := json.Unmarshal(cmd.PayloadJSON, &payload); err != nil {
		return command.Reject(command.Rejection{
			Code:    command.RejectionCodePayloadDecodeFailed,
			Message: err.Error(),
		})
	}

	doc, ok := state.Envelope.Document(payload.DocumentID)
	if !ok || doc.FinancialMeans == nil {
		return command.Decision{}
	}
	extracted := *doc.FinancialMeans

	updated := UpdatedPayload{
		DocumentID:       doc.ID,
		CaseRef:          doc.CaseRef(),
		EmploymentStatus: employmentStatus(extracted),
	}

	income, followUp := reconcileIncome(extracted)
	updated.Income = income

	updated.Benefits = &Benefits{
		Claimed: extracted.BenefitsClaimed,
		Type:    strings.TrimSpace(payload.BenefitType),
	}

	updated.Employer = reconcileEmployer(extracted, payload.EmployeeReference)

	if ni := strings.TrimSpace(extracted.NINumber); ni != "" && validate.ValidNINumber(ni) {
		updated.NINumber = ni
	}

	updatedJSON, _ := json.Marshal(updated)
	events := []event.Event{
		command.NewEvent(cmd, EventTypeFinancialMeansUpdated, "document", doc.ID, updatedJSON, now().UTC()),
	}
	if followUp {
		events = append(events, envelope.NewFollowUpEvent(cmd, doc.ID, now().UTC()))
	}
	return command.Accept(events...)
}

// reconcileIncome derives the income record from the extracted form, or flags
// the document for follow-up when the submission contradicts itself.
func reconcileIncome(extracted envelope.FinancialMeans) (*Income, bool) {
	amount, amountOK := parseAmount(extracted.AverageIncome)
	frequency, frequencyCount := singleFrequency(extracted)

	switch {
	case amountOK && amount > 0 && frequencyCount == 1 && !extracted.NoIncome:
		return &Income{Amount: amount, Frequency: frequency}, false
	case (!amountOK || amount == 0) && extracted.NoIncome:
		return &Income{Amount: 0, Frequency: FrequencyYearly}, false
	case frequencyCount >= 1:
		// A frequency claimed without a coherent income story: paired with the
		// no-income flag, or with a blank/zero amount.
		return nil, true
	default:
		return nil, false
	}
}

// reconcileEmployer only populates the employer when the extracted
// organisation name, address line 1 and postcode are all non-blank and the
// postcode passes the UK pattern. The reference prefers the extracted payroll
// number, falling back to the externally supplied employee reference.
func reconcileEmployer(extracted envelope.FinancialMeans, employeeReference string) *Employer {
	name := strings.TrimSpace(extracted.EmployerName)
	addressLine1 := strings.TrimSpace(extracted.EmployerAddressLine1)
	postcode := strings.TrimSpace(extracted.EmployerPostcode)
	if name == "" || addressLine1 == "" || postcode == "" || !validate.ValidPostcode(postcode) {
		return nil
	}
	reference := strings.TrimSpace(extracted.PayrollNumber)
	if reference == "" {
		reference = strings.TrimSpace(employeeReference)
	}
	return &Employer{
		Name:         name,
		AddressLine1: addressLine1,
		Postcode:     postcode,
		Reference:    reference,
	}
}

// employmentStatus resolves the four mutually exclusive extracted flags.
// Zero or more than one flags set resolves to OTHER.
func employmentStatus(extracted envelope.FinancialMeans) string {
	type flag struct {
		set    bool
		status string
	}
	flags := []flag{
		{extracted.Employed, EmploymentEmployed},
		{extracted.SelfEmployed, EmploymentSelfEmployed},
		{extracted.Unemployed, EmploymentUnemployed},
		{extracted.OtherEmployment, EmploymentOther},
	}
	status := ""
	count := 0
	for _, f := range flags {
		if f.set {
			count++
			status = f.status
		}
	}
	if count != 1 {
		return EmploymentOther
	}
	return status
}

// singleFrequency returns the frequency when exactly one flag is set, plus
// the number of flags set.
func singleFrequency(extracted envelope.FinancialMeans) (string, int) {
	frequency := ""
	count := 0
	if extracted.PaidWeekly {
		frequency = FrequencyWeekly
		count++
	}
	if extracted.PaidFortnightly {
		frequency = FrequencyFortnightly
		count++
	}
	if extracted.PaidMonthly {
		frequency = FrequencyMonthly
		count++
	}
	if count != 1 {
		return "", count
	}
	return frequency, count
}

// parseAmount parses the OCR-extracted income amount, tolerating currency
// symbols, commas and surrounding whitespace.
func parseAmount(raw string) (float64, bool) {
	cleaned := strings.NewReplacer("£", "", ",", "", " ", "").Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return 0, false
	}
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || amount < 0 {
		return 0, false
	}
	return amount, true
}
