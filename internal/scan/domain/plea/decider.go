package plea

import (
	"encoding/json"
	"time"

	"github.com/opencourts/scandesk/internal/scan/domain/command"
	"github.com/opencourts/scandesk/internal/scan/domain/envelope"
	"github.com/opencourts/scandesk/internal/scan/domain/event"
	"github.com/opencourts/scandesk/internal/scan/domain/validate"
)

// CommandTypeUpdateDefendantDetails reconciles a defendant submission with
// the stored plea snapshot.
const CommandTypeUpdateDefendantDetails command.Type = "defendant.details.update"

// Plea event types.
const (
	EventTypeDetailsUpdated     event.Type = "defendant.details_updated"
	EventTypePleaDetailsUpdated event.Type = "plea.details_updated"
)

// HandlesCommand reports whether the plea decider handles a command type.
func HandlesCommand(t command.Type) bool {
	return t == CommandTypeUpdateDefendantDetails
}

// Decide reconciles a defendant submission against the document's stored plea
// snapshot. All four outputs may co-occur in one decision: a details-incorrect
// follow-up, a contact update, a licence follow-up, and either the plea update
// or a plea follow-up.
//
// A missing document or missing plea snapshot fails soft with an empty
// decision; the dispatching collaborator logs the anomaly.
func Decide(state envelope.State, cmd command.Command, now func() time.Time) command.Decision {
	if now == nil {
		now = time.Now
	}
	if cmd.Type != CommandTypeUpdateDefendantDetails {
		return command.Reject(command.Rejection{
			Code:    command.RejectionCodeCommandTypeUnsupported,
			Message: "command type is not supported by plea decider",
		})
	}

	var payload UpdateDetailsPayload
	if err := json.Unmarshal(cmd.PayloadJSON, &payload); err != nil {
		return command.Reject(command.Rejection{
			Code:    command.RejectionCodePayloadDecodeFailed,
			Message: err.Error(),
		})
	}
	submitted := payload.Defendant

	doc, ok := state.Envelope.Document(submitted.DocumentID)
	if !ok || doc.Plea == nil {
		return command.Decision{}
	}
	stored := *doc.Plea

	var events []event.Event

	if stored.DetailsCorrect != nil && !*stored.DetailsCorrect {
		events = append(events, envelope.NewFollowUpEvent(cmd, doc.ID, now().UTC()))
	}

	resolution := validate.ResolveContactDetails(
		validate.ContactDetails{Email: stored.Email, Phone: stored.Phone, DrivingLicence: stored.DrivingLicence},
		validate.ContactDetails{Email: submitted.Email, Phone: submitted.Phone, DrivingLicence: submitted.DrivingLicence},
	)
	if resolution.Updated {
		detailsJSON, _ := json.Marshal(DetailsUpdatedPayload{
			DocumentID:     doc.ID,
			Email:          resolution.Email,
			Phone:          resolution.Phone,
			DrivingLicence: resolution.DrivingLicence,
		})
		events = append(events, command.NewEvent(cmd, EventTypeDetailsUpdated, "document", doc.ID, detailsJSON, now().UTC()))
	}
	if resolution.LicenceInvalid || resolution.LicenceMismatch {
		events = append(events, envelope.NewFollowUpEvent(cmd, doc.ID, now().UTC()))
	}

	problems := validate.CheckPlea(storedOffences(stored), validate.SubmittedPlea{
		Offences:          submittedOffences(submitted),
		WishToComeToCourt: submitted.WishToComeToCourt,
	})
	if len(problems) == 0 {
		pleas, options := reconcile(stored, submitted)
		pleaJSON, _ := json.Marshal(PleaDetailsUpdatedPayload{
			DocumentID:   doc.ID,
			Pleas:        pleas,
			CourtOptions: options,
		})
		events = append(events, command.NewEvent(cmd, EventTypePleaDetailsUpdated, "document", doc.ID, pleaJSON, now().UTC()))
	} else {
		events = append(events, envelope.NewFollowUpEvent(cmd, doc.ID, now().UTC()))
	}

	return command.Accept(events...)
}

func storedOffences(stored envelope.Plea) []validate.StoredOffence {
	offences := make([]validate.StoredOffence, 0, len(stored.Offences))
	for _, offence := range stored.Offences {
		offences = append(offences, validate.StoredOffence{
			ID:               offence.ID,
			Title:            offence.Title,
			Plea:             offence.Plea,
			HasFinalDecision: offence.HasFinalDecision,
		})
	}
	return offences
}

func submittedOffences(submitted Defendant) []validate.SubmittedOffence {
	offences := make([]validate.SubmittedOffence, 0, len(submitted.Offences))
	for _, offence := range submitted.Offences {
		offences = append(offences, validate.SubmittedOffence{
			ID:    offence.ID,
			Title: offence.Title,
			Plea:  offence.Plea,
		})
	}
	return offences
}
