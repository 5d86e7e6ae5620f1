package envelope

import (
	"time"

	"github.com/opencourts/scandesk/internal/scan/domain/validate"
)

// RegisterPayload is the payload of the envelope.register command and the
// envelope.registered event. The registered event is the single source of
// truth for the envelope's content.
type RegisterPayload struct {
	Envelope Envelope `json:"envelope"`
}

// NextStepDecidePayload is the payload of the document.next_step.decide command.
type NextStepDecidePayload struct {
	DocumentID string `json:"documentId"`
	IsSJP      bool   `json:"isSjpCase"`
}

// NextStepDecidedPayload is the payload of the document.next_step_decided event.
type NextStepDecidedPayload struct {
	DocumentID string `json:"documentId"`
	CaseURN    string `json:"caseUrn,omitempty"`
	IsSJP      bool   `json:"isSjpCase"`
}

// NextStepPausedPayload is the payload of the replay-only
// document.next_step_paused event.
type NextStepPausedPayload struct {
	DocumentID string `json:"documentId"`
	IsSJP      bool   `json:"isSjpCase"`
}

// MarkActionedPayload is the payload of the manual and auto actioning commands.
type MarkActionedPayload struct {
	DocumentID string `json:"documentId"`
	ActionedBy string `json:"actionedBy"`
}

// ActionedPayload is the payload of the document.manually_actioned and
// document.auto_actioned events.
type ActionedPayload struct {
	DocumentID string    `json:"documentId"`
	ActionedBy string    `json:"actionedBy"`
	ActionedAt time.Time `json:"actionedAt"`
}

// UpdateRequestedPayload is the payload of the
// defendant.details_update_requested and
// defendant.financial_means_update_requested events.
type UpdateRequestedPayload struct {
	DocumentID string `json:"documentId"`
	CaseRef    string `json:"caseRef,omitempty"`
}

// DeleteActionedPayload is the payload of the document.actioned.delete command.
type DeleteActionedPayload struct {
	DocumentID string `json:"documentId"`
}

// ActionedDeletedPayload is the payload of the document.actioned_deleted event.
type ActionedDeletedPayload struct {
	DocumentID       string    `json:"documentId"`
	ZipFileName      string    `json:"zipFileName"`
	DocumentFileName string    `json:"documentFileName"`
	DeletedAt        time.Time `json:"deletedAt"`
}

// RejectPayload is the payload of the document.reject command and the
// document.rejected event. Problems are externally supplied; rejection never
// validates, only records.
type RejectPayload struct {
	DocumentID string             `json:"documentId"`
	Problems   []validate.Problem `json:"problems,omitempty"`
	RejectedAt time.Time          `json:"rejectedAt,omitzero"`
}

// ExpirePayload is the payload of the document.expire command and the
// document.expired event.
type ExpirePayload struct {
	DocumentID string             `json:"documentId"`
	ExpireDate time.Time          `json:"expireDate"`
	Problems   []validate.Problem `json:"problems,omitempty"`
}

// FollowUpPayload is the payload of the document.follow_up.raise command and
// the document.followed_up event.
type FollowUpPayload struct {
	DocumentID string `json:"documentId"`
}
