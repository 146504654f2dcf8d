package analysis

import (
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/application/verification"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/domain/offense"
)

// mergeInputs carries the three independently resolved partial results for
// one code plus its ingestion pass-through.
type mergeInputs struct {
	code       offense.NormalizedCode
	extracted  offense.ExtractedCode
	local      *offense.OffenseRecord       // may be nil on store failure
	enrichment *offense.RetrievalFinding    // may be nil
	aiFinding  *offense.AIFinding           // may be nil after retry exhaustion
	verified   *verification.VerifiedResult // never nil
}

// merge is the typed reducer that unifies the three partial results into one
// OffenseRecord. Field precedence is fixed:
//   - verification owns VerificationSource, VerificationConfidence, Verified;
//   - the AI finding owns classification, explanation, exemption pathways,
//     and HR guidance;
//   - enrichment owns supplementary statute text;
//   - local owns the felony flags and is the fallback for description,
//     category, and classification when the AI finding is absent.
// The record invariants (violent implies mandatory; mandatory without
// violent implies serious) are enforced last, after all sources are merged.
func merge(in mergeInputs) offense.OffenseRecord {
	record := offense.OffenseRecord{
		Code:        in.code.Display(),
		Category:    "Other",
		K12Impact:   offense.StatusHasExemptionPath,
		Citations:   []string{},
		Context:     in.extracted.Context,
		Disposition: in.extracted.Disposition,
	}

	if in.local != nil {
		record.Description = in.local.Description
		record.Category = in.local.Category
		record.K12Impact = in.local.K12Impact.Normalize()
		record.IsViolentFelony = in.local.IsViolentFelony
		record.IsSeriousFelony = in.local.IsSeriousFelony
		record.ExemptionAvailable = in.local.ExemptionAvailable
		record.Citations = mergeCitations(record.Citations, in.local.Citations)
	}

	if in.enrichment != nil && in.enrichment.Found {
		record.StatuteText = in.enrichment.StatuteText
		if record.Description == "" {
			record.Description = in.enrichment.Description
		}
		record.Citations = mergeCitations(record.Citations, in.enrichment.Citations)
	}

	if in.aiFinding != nil {
		record.K12Impact = in.aiFinding.K12Classification.Normalize()
		record.Explanation = in.aiFinding.Explanation
		record.HRGuidance = in.aiFinding.HRGuidance
		record.ExemptionPathways = in.aiFinding.ExemptionPathways
		if in.aiFinding.OffenseDescription != "" {
			record.Description = in.aiFinding.OffenseDescription
		}
		record.Citations = mergeCitations(record.Citations, in.aiFinding.StatuteCitations)
	}

	record.VerificationSource = in.verified.Source
	record.VerificationConfidence = in.verified.Confidence
	record.Verified = in.verified.Verified
	if in.verified.StatuteText != "" && record.StatuteText == "" {
		record.StatuteText = in.verified.StatuteText
	}
	record.Citations = mergeCitations(record.Citations, in.verified.Citations)

	// Local felony-list membership outranks any AI classification: a violent
	// felony is a mandatory disqualifier no matter what the model said.
	if record.IsViolentFelony {
		record.K12Impact = offense.StatusMandatoryDisqualifier
		record.Category = "Violent Felony"
	}
	if record.K12Impact == offense.StatusMandatoryDisqualifier && !record.IsViolentFelony {
		record.IsSeriousFelony = true
	}
	if record.K12Impact == offense.StatusHasExemptionPath && len(record.ExemptionPathways) > 0 {
		record.ExemptionAvailable = true
	}
	record.K12Impact = record.K12Impact.Normalize()

	return record
}

// conservativeFallback is the record used when classification failed after
// its retry budget: never silently non-disqualifying, always pushed to a
// human.
func conservativeFallback(in mergeInputs) offense.OffenseRecord {
	record := merge(in)
	record.K12Impact = offense.StatusHasExemptionPath
	record.VerificationConfidence = offense.ConfidenceLow
	record.HRGuidance = "Automated classification was unavailable for this code. " +
		"Treat it as requiring manual review and consult legal counsel before any hiring decision."
	if record.IsViolentFelony {
		// Local violent-list membership still wins over the fallback status.
		record.K12Impact = offense.StatusMandatoryDisqualifier
	}
	return record
}

func mergeCitations(dst, src []string) []string {
	for _, c := range src {
		if c == "" {
			continue
		}
		dup := false
		for _, existing := range dst {
			if existing == c {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, c)
		}
	}
	return dst
}
