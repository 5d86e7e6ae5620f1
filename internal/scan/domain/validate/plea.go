package validate

import "strings"

// Plea values recognised by the validator.
const (
	// PleaGuilty is a guilty plea.
	PleaGuilty = "GUILTY"
	// PleaNotGuilty is a not-guilty plea.
	PleaNotGuilty = "NOT_GUILTY"
	// PleaBoth is the dual sentinel a defendant produces by ticking both boxes
	// on the paper form. It is never a valid plea.
	PleaBoth = "GUILTY_NOT_GUILTY"
)

// StoredOffence is one offence from the document's stored plea snapshot.
type StoredOffence struct {
	ID               string
	Title            string
	Plea             string
	HasFinalDecision bool
}

// SubmittedOffence is one offence from the defendant's submission.
type SubmittedOffence struct {
	ID    string
	Title string
	Plea  string
}

// SubmittedPlea is the defendant's submitted plea for one offence set.
type SubmittedPlea struct {
	Offences          []SubmittedOffence
	WishToComeToCourt *bool
}

// CheckPlea validates a submitted plea against the stored snapshot and
// returns one Problem per violated rule. An empty result means the plea can
// be reconciled.
func CheckPlea(stored []StoredOffence, submitted SubmittedPlea) []Problem {
	var problems []Problem

	for _, offence := range submitted.Offences {
		value := strings.TrimSpace(offence.Plea)
		switch {
		case value == "":
			problems = append(problems, NewProblem(CodePleaTypeEmpty, offence.ID, "plea", ""))
		case strings.EqualFold(value, PleaBoth):
			problems = append(problems, NewProblem(CodePleaTypeInvalid, offence.ID, "plea", value))
		case strings.EqualFold(value, PleaGuilty) || strings.EqualFold(value, PleaNotGuilty):
			if submitted.WishToComeToCourt == nil {
				problems = append(problems, NewProblem(CodeWishToComeToCourtInvalid, offence.ID, "wishToComeToCourt", ""))
			}
		}
	}

	titleCounts := make(map[string]int, len(stored))
	for _, offence := range stored {
		title := strings.ToLower(strings.TrimSpace(offence.Title))
		if title != "" {
			titleCounts[title]++
		}
	}
	for _, offence := range stored {
		title := strings.TrimSpace(offence.Title)
		if title == "" {
			problems = append(problems, NewProblem(CodePleaTitleInvalid, offence.ID, "title", ""))
		}
		if offence.HasFinalDecision {
			problems = append(problems, NewProblem(CodeOffenceHasFinalDecision, offence.ID, "title", title))
		}
		if title != "" && titleCounts[strings.ToLower(title)] > 1 {
			problems = append(problems, NewProblem(CodeSameOffenceTitle, offence.ID, "title", title))
		}
	}
	return problems
}
