package validate

// Problem codes produced by the plea validator.
const (
	// CodePleaTypeEmpty indicates a submitted offence without a plea value.
	CodePleaTypeEmpty = "PLEA_TYPE_EMPTY"
	// CodePleaTypeInvalid indicates the dual "both" plea sentinel.
	CodePleaTypeInvalid = "PLEA_TYPE_INVALID"
	// CodeWishToComeToCourtInvalid indicates a guilty/not-guilty plea without a
	// wish-to-come-to-court answer.
	CodeWishToComeToCourtInvalid = "WISH_TO_COME_TO_COURT_INVALID"
	// CodePleaTitleInvalid indicates a stored offence with a blank title.
	CodePleaTitleInvalid = "PLEA_TITLE_INVALID"
	// CodeOffenceHasFinalDecision indicates a stored offence that already has a
	// final decision recorded.
	CodeOffenceHasFinalDecision = "OFFENCE_HAS_FINAL_DECISION"
	// CodeSameOffenceTitle indicates a stored offence title that appears more
	// than once, emitted once per duplicate occurrence.
	CodeSameOffenceTitle = "SAME_OFFENCE_TITLE"
)

// Problem is an immutable validation finding attached to rejection, expiry,
// and follow-up events. Problems are produced only by validators and are
// never retried.
type Problem struct {
	Code   string         `json:"code"`
	Values []ProblemValue `json:"values,omitempty"`
}

// ProblemValue identifies the offending field of a Problem.
type ProblemValue struct {
	ID    string `json:"id,omitempty"`
	Key   string `json:"key,omitempty"`
	Value string `json:"value,omitempty"`
}

// NewProblem builds a Problem with a single value triple.
func NewProblem(code, id, key, value string) Problem {
	return Problem{
		Code:   code,
		Values: []ProblemValue{{ID: id, Key: key, Value: value}},
	}
}
