package analysis

import (
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/domain/offense"
)

// Recommendation templates. Exactly one is selected, by the same precedence
// as the overall status; templates are never combined.
const (
	recommendationDisqualified = "One or more offenses are mandatory disqualifiers for K-12 " +
		"employment under Education Code 44830.1/45122.1. The candidate cannot be hired into a " +
		"school position unless a listed offense is reversed, dismissed, or otherwise legally " +
		"invalidated. Confirm the record with legal counsel before communicating a decision."

	recommendationExemption = "No mandatory disqualifiers were found, but one or more offenses " +
		"may bar employment absent an exemption (e.g. a certificate of rehabilitation or a " +
		"county office of education exemption). Review each flagged offense with HR and legal " +
		"counsel to determine whether an exemption path applies."

	recommendationClear = "No disqualifying offenses were identified in the submitted codes. " +
		"Standard hiring procedures may proceed; this analysis does not replace the formal " +
		"DOJ/FBI clearance process."

	recommendationEmpty = "No offense codes were found in the submission. There is nothing to " +
		"classify; standard hiring procedures may proceed."
)

// Aggregate reduces per-code records into the worst-case-wins summary. It is
// deterministic and idempotent: no randomness, no external calls, identical
// output for identical input. Records are normalized defensively so a stray
// legacy status can never leak into the counts.
func Aggregate(records []offense.OffenseRecord) offense.AnalysisSummary {
	summary := offense.AnalysisSummary{TotalCodes: len(records)}

	if len(records) == 0 {
		summary.OverallStatus = offense.StatusNonDisqualifying
		summary.OverallRecommendation = recommendationEmpty
		return summary
	}

	for _, r := range records {
		switch r.K12Impact.Normalize() {
		case offense.StatusMandatoryDisqualifier:
			summary.MandatoryDisqualifiers++
		case offense.StatusHasExemptionPath:
			summary.HasExemptionPath++
		case offense.StatusNonDisqualifying:
			summary.NonDisqualifying++
		}
	}

	switch {
	case summary.MandatoryDisqualifiers > 0:
		summary.OverallStatus = offense.StatusMandatoryDisqualifier
		summary.OverallRecommendation = recommendationDisqualified
	case summary.HasExemptionPath > 0:
		summary.OverallStatus = offense.StatusHasExemptionPath
		summary.OverallRecommendation = recommendationExemption
	default:
		summary.OverallStatus = offense.StatusNonDisqualifying
		summary.OverallRecommendation = recommendationClear
	}

	return summary
}
