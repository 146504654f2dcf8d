package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/domain/offense"
)

func recordWith(impact offense.DisqualificationStatus) offense.OffenseRecord {
	return offense.OffenseRecord{Code: "x", K12Impact: impact}
}

func TestAggregate_EmptyInput(t *testing.T) {
	summary := Aggregate(nil)

	assert.Equal(t, 0, summary.TotalCodes)
	assert.Equal(t, offense.StatusNonDisqualifying, summary.OverallStatus)
	assert.Equal(t, recommendationEmpty, summary.OverallRecommendation)
}

func TestAggregate_WorstCaseWins(t *testing.T) {
	records := []offense.OffenseRecord{recordWith(offense.StatusMandatoryDisqualifier)}
	for i := 0; i < 9; i++ {
		records = append(records, recordWith(offense.StatusNonDisqualifying))
	}

	summary := Aggregate(records)

	assert.Equal(t, offense.StatusMandatoryDisqualifier, summary.OverallStatus)
	assert.Equal(t, 1, summary.MandatoryDisqualifiers)
	assert.Equal(t, 9, summary.NonDisqualifying)
	assert.Equal(t, recommendationDisqualified, summary.OverallRecommendation)
}

func TestAggregate_ExemptionBeatsClear(t *testing.T) {
	summary := Aggregate([]offense.OffenseRecord{
		recordWith(offense.StatusNonDisqualifying),
		recordWith(offense.StatusHasExemptionPath),
	})

	assert.Equal(t, offense.StatusHasExemptionPath, summary.OverallStatus)
	assert.Equal(t, recommendationExemption, summary.OverallRecommendation)
}

func TestAggregate_AllClear(t *testing.T) {
	summary := Aggregate([]offense.OffenseRecord{
		recordWith(offense.StatusNonDisqualifying),
		recordWith(offense.StatusNonDisqualifying),
	})

	assert.Equal(t, offense.StatusNonDisqualifying, summary.OverallStatus)
	assert.Equal(t, recommendationClear, summary.OverallRecommendation)
}

func TestAggregate_LegacyStatusesCountAsExemptionPath(t *testing.T) {
	summary := Aggregate([]offense.OffenseRecord{
		recordWith(offense.StatusReviewRequired),
		recordWith(offense.StatusUnknown),
	})

	assert.Equal(t, 2, summary.HasExemptionPath)
	assert.Equal(t, offense.StatusHasExemptionPath, summary.OverallStatus)
}

func TestAggregate_Idempotent(t *testing.T) {
	records := []offense.OffenseRecord{
		recordWith(offense.StatusMandatoryDisqualifier),
		recordWith(offense.StatusHasExemptionPath),
		recordWith(offense.StatusNonDisqualifying),
	}

	first := Aggregate(records)
	second := Aggregate(records)

	assert.Equal(t, first, second)
}

func TestAggregate_ExampleScenario(t *testing.T) {
	// 211 PC robbery (violent), 484 PC petty theft, 23152 VC DUI.
	summary := Aggregate([]offense.OffenseRecord{
		recordWith(offense.StatusMandatoryDisqualifier),
		recordWith(offense.StatusNonDisqualifying),
		recordWith(offense.StatusHasExemptionPath),
	})

	assert.Equal(t, 3, summary.TotalCodes)
	assert.Equal(t, 1, summary.MandatoryDisqualifiers)
	assert.Equal(t, 1, summary.HasExemptionPath)
	assert.Equal(t, 1, summary.NonDisqualifying)
	assert.Equal(t, offense.StatusMandatoryDisqualifier, summary.OverallStatus)
}
