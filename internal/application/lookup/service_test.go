package lookup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/domain/offense"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/infrastructure/monitoring/logging"
)

type fakeStore struct {
	descriptions map[string]*offense.CodeDescription
	violent      map[string]*offense.FelonyListing
	serious      map[string]*offense.FelonyListing
	ncic         map[string]*offense.NCICListing
	err          error
}

func (f *fakeStore) Description(_ context.Context, number string) (*offense.CodeDescription, error) {
	return f.descriptions[number], f.err
}
func (f *fakeStore) ViolentFelony(_ context.Context, number string) (*offense.FelonyListing, error) {
	return f.violent[number], f.err
}
func (f *fakeStore) SeriousFelony(_ context.Context, number string) (*offense.FelonyListing, error) {
	return f.serious[number], f.err
}
func (f *fakeStore) NCIC(_ context.Context, code string) (*offense.NCICListing, error) {
	return f.ncic[code], f.err
}

func newTestService(store *fakeStore) *Service {
	return NewService(store, logging.NewNopLogger())
}

func TestLookup_ViolentFelonyForcesMandatory(t *testing.T) {
	svc := newTestService(&fakeStore{
		descriptions: map[string]*offense.CodeDescription{
			"211": {Number: "211", Description: "Robbery", Category: "Theft", K12Impact: offense.StatusMandatoryDisqualifier},
		},
		violent: map[string]*offense.FelonyListing{
			"211": {Number: "211", Description: "Robbery"},
		},
	})

	rec, err := svc.Lookup(context.Background(), offense.Normalize("211 PC"))
	require.NoError(t, err)

	assert.Equal(t, "211 PC", rec.Code)
	assert.True(t, rec.IsViolentFelony)
	assert.Equal(t, offense.StatusMandatoryDisqualifier, rec.K12Impact)
	assert.Equal(t, "Violent Felony", rec.Category)
	assert.True(t, rec.Verified)
	assert.Equal(t, offense.ConfidenceHigh, rec.VerificationConfidence)
	assert.Contains(t, rec.Citations, "Penal Code 667.5(c)")
}

func TestLookup_SeriousOnlyYieldsExemptionPath(t *testing.T) {
	svc := newTestService(&fakeStore{
		serious: map[string]*offense.FelonyListing{
			"459": {Number: "459", Description: "First-degree burglary"},
		},
	})

	rec, err := svc.Lookup(context.Background(), offense.Normalize("459 PC"))
	require.NoError(t, err)

	assert.True(t, rec.IsSeriousFelony)
	assert.False(t, rec.IsViolentFelony)
	assert.Equal(t, offense.StatusHasExemptionPath, rec.K12Impact)
	assert.True(t, rec.ExemptionAvailable)
	assert.Contains(t, rec.Citations, "Penal Code 1192.7(c)")
}

func TestLookup_SeriousAlsoViolentIsMandatory(t *testing.T) {
	svc := newTestService(&fakeStore{
		serious: map[string]*offense.FelonyListing{
			"245": {Number: "245", Description: "Assault with a deadly weapon", AlsoViolent: true},
		},
	})

	rec, err := svc.Lookup(context.Background(), offense.Normalize("245 PC"))
	require.NoError(t, err)

	assert.Equal(t, offense.StatusMandatoryDisqualifier, rec.K12Impact)
	assert.True(t, rec.IsViolentFelony)
	assert.Equal(t, "Violent Felony", rec.Category)
}

func TestLookup_DescriptionOnly(t *testing.T) {
	svc := newTestService(&fakeStore{
		descriptions: map[string]*offense.CodeDescription{
			"484": {Number: "484", Description: "Petty theft", Category: "Theft", K12Impact: offense.StatusNonDisqualifying},
		},
	})

	rec, err := svc.Lookup(context.Background(), offense.Normalize("484 PC"))
	require.NoError(t, err)

	assert.Equal(t, offense.StatusNonDisqualifying, rec.K12Impact)
	assert.Equal(t, "Petty theft", rec.Description)
	assert.True(t, rec.Verified)
	assert.False(t, rec.IsViolentFelony)
}

func TestLookup_LegacyImpactCollapsed(t *testing.T) {
	svc := newTestService(&fakeStore{
		descriptions: map[string]*offense.CodeDescription{
			"23152": {Number: "23152", Description: "DUI", Category: "Vehicle", K12Impact: offense.StatusReviewRequired},
		},
	})

	rec, err := svc.Lookup(context.Background(), offense.Normalize("23152 VC"))
	require.NoError(t, err)

	assert.Equal(t, offense.StatusHasExemptionPath, rec.K12Impact)
	assert.True(t, rec.ExemptionAvailable)
}

func TestLookup_NCICProbe(t *testing.T) {
	svc := newTestService(&fakeStore{
		ncic: map[string]*offense.NCICListing{
			"1313": {Code: "1313", Offense: "Aggravated Assault", Category: "Assault", StatuteRef: "245"},
		},
	})

	rec, err := svc.Lookup(context.Background(), offense.Normalize("1313"))
	require.NoError(t, err)

	assert.Equal(t, "Aggravated Assault", rec.Description)
	assert.True(t, rec.Verified)
	assert.Contains(t, rec.Citations, "NCIC 1313")
	assert.Contains(t, rec.Citations, "Penal Code 245")
}

func TestLookup_NoMatchIsUnverifiedOther(t *testing.T) {
	svc := newTestService(&fakeStore{})

	rec, err := svc.Lookup(context.Background(), offense.Normalize("99999 PC"))
	require.NoError(t, err)

	assert.Equal(t, "Other", rec.Category)
	assert.Equal(t, offense.StatusUnknown, rec.K12Impact)
	assert.False(t, rec.Verified)
	assert.Equal(t, offense.ConfidenceLow, rec.VerificationConfidence)
}

func TestLookup_SubdivisionInCitation(t *testing.T) {
	svc := newTestService(&fakeStore{
		violent: map[string]*offense.FelonyListing{
			"667.5": {Number: "667.5", Description: "Prior prison term enhancement"},
		},
	})

	rec, err := svc.Lookup(context.Background(), offense.Normalize("667.5(c) PC"))
	require.NoError(t, err)

	assert.Contains(t, rec.Citations, "Penal Code 667.5(c)")
	assert.Equal(t, "667.5(c) PC", rec.Code)
}
