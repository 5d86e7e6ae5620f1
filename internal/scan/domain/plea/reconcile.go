package plea

import (
	"strings"

	"github.com/opencourts/scandesk/internal/scan/domain/envelope"
)

// maxTitleLength is the length paper forms truncate offence titles to, so
// submitted titles are normalised to the same length before matching.
const maxTitleLength = 30

// reconcile matches submitted offences to the stored snapshot and builds the
// per-defendant plea records plus the merged court options.
func reconcile(stored envelope.Plea, submitted Defendant) ([]DefendantPlea, CourtOptions) {
	var pleas []DefendantPlea
	if allSamePleaValue(stored.Offences) {
		// Every stored offence carries the same plea value: paper forms in
		// that shape identify offences unreliably, so every submitted offence
		// maps onto the first stored offence.
		first := stored.Offences[0]
		for _, offence := range submitted.Offences {
			pleas = append(pleas, buildPlea(first, offence, stored))
		}
	} else {
		for _, offence := range submitted.Offences {
			match, ok := matchByTitle(stored.Offences, offence.Title)
			if !ok {
				continue
			}
			pleas = append(pleas, buildPlea(match, offence, stored))
		}
	}
	return pleas, mergeCourtOptions(stored, submitted)
}

// buildPlea resolves one matched pair. The stored plea value is authoritative
// when it differs from the submission; the wish-to-come-to-court flag always
// comes from the stored snapshot.
func buildPlea(match envelope.Offence, offence SubmittedOffence, stored envelope.Plea) DefendantPlea {
	value := strings.TrimSpace(offence.Plea)
	if storedValue := strings.TrimSpace(match.Plea); storedValue != "" && !strings.EqualFold(storedValue, value) {
		value = storedValue
	}
	return DefendantPlea{
		OffenceID:         match.ID,
		OffenceTitle:      match.Title,
		Value:             value,
		WishToComeToCourt: stored.WishToComeToCourt,
	}
}

// mergeCourtOptions prefers the stored snapshot's Welsh-hearing flag when
// present and the stored interpreter need/language when the snapshot
// explicitly records them; everything else comes from the submission.
func mergeCourtOptions(stored envelope.Plea, submitted Defendant) CourtOptions {
	options := CourtOptions{
		InterpreterNeeded:   submitted.InterpreterNeeded,
		InterpreterLanguage: strings.TrimSpace(submitted.InterpreterLanguage),
		DisabilityNeeds:     strings.TrimSpace(submitted.DisabilityNeeds),
		WelshHearing:        submitted.WelshHearing,
	}
	if stored.WelshHearing != nil {
		options.WelshHearing = stored.WelshHearing
	}
	if stored.InterpreterNeeded != nil || strings.TrimSpace(stored.InterpreterLanguage) != "" {
		options.InterpreterNeeded = stored.InterpreterNeeded
		options.InterpreterLanguage = strings.TrimSpace(stored.InterpreterLanguage)
	}
	return options
}

// allSamePleaValue reports whether every stored offence carries the same plea
// value.
func allSamePleaValue(offences []envelope.Offence) bool {
	if len(offences) == 0 {
		return false
	}
	shared := offences[0].Plea
	for _, offence := range offences[1:] {
		if offence.Plea != shared {
			return false
		}
	}
	return true
}

// matchByTitle finds the stored offence whose normalised title equals the
// submitted title, case-insensitively.
func matchByTitle(offences []envelope.Offence, title string) (envelope.Offence, bool) {
	normalized := normalizeTitle(title)
	for _, offence := range offences {
		if strings.EqualFold(normalizeTitle(offence.Title), normalized) {
			return offence, true
		}
	}
	return envelope.Offence{}, false
}

// normalizeTitle strips all whitespace and truncates to the paper-form title
// length.
func normalizeTitle(title string) string {
	stripped := strings.Join(strings.Fields(title), "")
	if len(stripped) > maxTitleLength {
		stripped = stripped[:maxTitleLength]
	}
	return stripped
}
