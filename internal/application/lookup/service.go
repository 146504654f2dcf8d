// Package lookup implements the local reference stage: four probes against
// the static legal tables, producing a provisional classification before any
// oracle is consulted. The service is a pure read over the reference store.
package lookup

import (
	"context"
	"fmt"

	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/domain/offense"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/infrastructure/monitoring/logging"
)

// Service performs local reference lookups.
type Service struct {
	store  offense.ReferenceStore
	logger logging.Logger
}

func NewService(store offense.ReferenceStore, log logging.Logger) *Service {
	return &Service{store: store, logger: log.Named("lookup")}
}

// Lookup probes the reference tables for code and derives the provisional
// record. Felony-list probes key on the bare number; the subdivision is
// appended to citations when present. A code found on the violent list is a
// mandatory disqualifier regardless of what the description table says.
//
// No match in any table yields an unverified record with the legacy unknown
// status and category "Other"; the verification pipeline takes over from
// there. An error is returned only for store failures, never for misses.
func (s *Service) Lookup(ctx context.Context, code offense.NormalizedCode) (*offense.OffenseRecord, error) {
	record := &offense.OffenseRecord{
		Code:                   code.Display(),
		Category:               "Other",
		K12Impact:              offense.StatusUnknown,
		Citations:              []string{},
		VerificationSource:     offense.SourceLocal,
		VerificationConfidence: offense.ConfidenceLow,
	}

	matched := false

	if code.StatuteType == offense.StatuteNCIC {
		ncic, err := s.store.NCIC(ctx, code.Number)
		if err != nil {
			return nil, err
		}
		if ncic != nil {
			matched = true
			record.Description = ncic.Offense
			record.Category = ncic.Category
			record.K12Impact = offense.StatusHasExemptionPath
			record.Citations = appendCitation(record.Citations, fmt.Sprintf("NCIC %s", ncic.Code))
			if ncic.StatuteRef != "" {
				record.Citations = appendCitation(record.Citations, "Penal Code "+ncic.StatuteRef)
			}
		}
	}

	desc, err := s.store.Description(ctx, code.Number)
	if err != nil {
		return nil, err
	}
	if desc != nil {
		matched = true
		record.Description = desc.Description
		record.Category = desc.Category
		record.K12Impact = desc.K12Impact.Normalize()
		record.Citations = appendCitation(record.Citations, statuteCitation(code))
	}

	violent, err := s.store.ViolentFelony(ctx, code.Number)
	if err != nil {
		return nil, err
	}
	serious, err := s.store.SeriousFelony(ctx, code.Number)
	if err != nil {
		return nil, err
	}

	switch {
	case violent != nil:
		matched = true
		record.IsViolentFelony = true
		record.IsSeriousFelony = serious != nil
		record.K12Impact = offense.StatusMandatoryDisqualifier
		record.Category = "Violent Felony"
		if record.Description == "" {
			record.Description = violent.Description
		}
		record.Citations = appendCitation(record.Citations, statuteCitation(code))
		record.Citations = appendCitation(record.Citations, "Penal Code 667.5(c)")
		if serious != nil {
			record.Citations = appendCitation(record.Citations, "Penal Code 1192.7(c)")
		}
	case serious != nil:
		matched = true
		record.IsSeriousFelony = true
		record.Category = "Serious Felony"
		if serious.AlsoViolent {
			record.IsViolentFelony = true
			record.Category = "Violent Felony"
			record.K12Impact = offense.StatusMandatoryDisqualifier
		} else {
			record.K12Impact = offense.StatusHasExemptionPath
			record.ExemptionAvailable = true
		}
		if record.Description == "" {
			record.Description = serious.Description
		}
		record.Citations = appendCitation(record.Citations, statuteCitation(code))
		record.Citations = appendCitation(record.Citations, "Penal Code 1192.7(c)")
	}

	if matched {
		record.VerificationConfidence = offense.ConfidenceHigh
		record.Verified = true
		if record.K12Impact == offense.StatusHasExemptionPath {
			record.ExemptionAvailable = true
		}
	}

	return record, nil
}

// statuteCitation renders the citation for the code itself, including the
// subdivision when present.
func statuteCitation(code offense.NormalizedCode) string {
	name := ""
	switch code.StatuteType {
	case offense.StatutePC:
		name = "Penal Code"
	case offense.StatuteHS:
		name = "Health and Safety Code"
	case offense.StatuteVC:
		name = "Vehicle Code"
	case offense.StatuteBP:
		name = "Business and Professions Code"
	case offense.StatuteWI:
		name = "Welfare and Institutions Code"
	case offense.StatuteFC:
		name = "Family Code"
	default:
		return code.Display()
	}
	if code.Subdivision != "" {
		return fmt.Sprintf("%s %s%s", name, code.Number, code.Subdivision)
	}
	return fmt.Sprintf("%s %s", name, code.Number)
}

// appendCitation keeps citations ordered and deduplicated.
func appendCitation(citations []string, c string) []string {
	for _, existing := range citations {
		if existing == c {
			return citations
		}
	}
	return append(citations, c)
}
