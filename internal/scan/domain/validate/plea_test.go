package validate

import "testing"

func boolPtr(value bool) *bool { return &value }

func countProblems(problems []Problem, code string) int {
	count := 0
	for _, problem := range problems {
		if problem.Code == code {
			count++
		}
	}
	return count
}

func TestCheckPleaAcceptsCleanSubmission(t *testing.T) {
	stored := []StoredOffence{
		{ID: "off-1", Title: "Speeding"},
		{ID: "off-2", Title: "No insurance"},
	}
	submitted := SubmittedPlea{
		Offences: []SubmittedOffence{
			{ID: "off-1", Title: "Speeding", Plea: PleaGuilty},
			{ID: "off-2", Title: "No insurance", Plea: PleaNotGuilty},
		},
		WishToComeToCourt: boolPtr(false),
	}

	if problems := CheckPlea(stored, submitted); len(problems) != 0 {
		t.Fatalf("expected no problems, got %v", problems)
	}
}

func TestCheckPleaEmptyPlea(t *testing.T) {
	problems := CheckPlea(nil, SubmittedPlea{
		Offences: []SubmittedOffence{{ID: "off-1", Plea: ""}},
	})
	if countProblems(problems, CodePleaTypeEmpty) != 1 {
		t.Fatalf("expected one empty-plea problem, got %v", problems)
	}
}

func TestCheckPleaBothBoxesTicked(t *testing.T) {
	problems := CheckPlea(nil, SubmittedPlea{
		Offences: []SubmittedOffence{{ID: "off-1", Plea: PleaBoth}},
	})
	if countProblems(problems, CodePleaTypeInvalid) != 1 {
		t.Fatalf("expected one invalid-plea problem, got %v", problems)
	}
}

func TestCheckPleaMissingCourtWish(t *testing.T) {
	problems := CheckPlea(nil, SubmittedPlea{
		Offences: []SubmittedOffence{{ID: "off-1", Plea: PleaGuilty}},
	})
	if countProblems(problems, CodeWishToComeToCourtInvalid) != 1 {
		t.Fatalf("expected one court-wish problem, got %v", problems)
	}
}

func TestCheckPleaStoredSnapshotRules(t *testing.T) {
	stored := []StoredOffence{
		{ID: "off-1", Title: ""},
		{ID: "off-2", Title: "Speeding", HasFinalDecision: true},
	}
	problems := CheckPlea(stored, SubmittedPlea{})

	if countProblems(problems, CodePleaTitleInvalid) != 1 {
		t.Fatalf("expected one blank-title problem, got %v", problems)
	}
	if countProblems(problems, CodeOffenceHasFinalDecision) != 1 {
		t.Fatalf("expected one final-decision problem, got %v", problems)
	}
}

func TestCheckPleaDuplicateTitlesReportedPerOccurrence(t *testing.T) {
	stored := []StoredOffence{
		{ID: "off-1", Title: "Speeding"},
		{ID: "off-2", Title: "speeding"},
		{ID: "off-3", Title: "SPEEDING"},
	}
	problems := CheckPlea(stored, SubmittedPlea{})

	if got := countProblems(problems, CodeSameOffenceTitle); got != 3 {
		t.Fatalf("expected 3 duplicate-title problems, got %d: %v", got, problems)
	}
}
