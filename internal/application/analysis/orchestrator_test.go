package analysis

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/application/verification"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/domain/offense"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/charlesmartinedd/k12-background-check-interpreter/pkg/errors"
)

type stubLocal struct{}

func (stubLocal) Lookup(_ context.Context, code offense.NormalizedCode) (*offense.OffenseRecord, error) {
	return &offense.OffenseRecord{
		Code:      code.Display(),
		Category:  "Other",
		K12Impact: offense.StatusUnknown,
		Citations: []string{},
	}, nil
}

type stubRetriever struct {
	calls int32
}

func (s *stubRetriever) RetrieveStatute(_ context.Context, code string) (*offense.RetrievalFinding, error) {
	atomic.AddInt32(&s.calls, 1)
	return &offense.RetrievalFinding{Found: true, StatuteText: "text for " + code, Citations: []string{}}, nil
}

func (s *stubRetriever) RetrieveK12Rules(context.Context, string) (*offense.RetrievalFinding, error) {
	atomic.AddInt32(&s.calls, 1)
	return &offense.RetrievalFinding{Found: false, Citations: []string{}}, nil
}

type stubAnalyzer struct {
	calls   int32
	failFor map[string]bool
}

func (s *stubAnalyzer) Classify(_ context.Context, code string, _ string) (*offense.AIFinding, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.failFor[code] {
		return nil, pkgerrors.New(pkgerrors.ErrCodeOracleUnavailable, "oracle down")
	}
	return &offense.AIFinding{
		OffenseDescription: "offense " + code,
		K12Classification:  offense.StatusNonDisqualifying,
		Confidence:         offense.ConfidenceHigh,
	}, nil
}

type stubVerifier struct {
	source offense.VerificationSource
}

func (s *stubVerifier) Verify(_ context.Context, raw string) *verification.VerifiedResult {
	source := s.source
	if source == "" {
		source = offense.SourceLocal
	}
	return &verification.VerifiedResult{
		Code:       offense.Normalize(raw).Display(),
		Found:      source != offense.SourceExhausted,
		Source:     source,
		Confidence: offense.ConfidenceHigh,
		Verified:   source != offense.SourceExhausted,
		Citations:  []string{},
	}
}

func newTestOrchestrator(analyzer *stubAnalyzer, verifier *stubVerifier) *Orchestrator {
	return NewOrchestrator(stubLocal{}, &stubRetriever{}, analyzer, verifier, 4, nil, logging.NewNopLogger())
}

func extractedCodes(codes ...string) []offense.ExtractedCode {
	out := make([]offense.ExtractedCode, len(codes))
	for i, c := range codes {
		out[i] = offense.ExtractedCode{Code: c}
	}
	return out
}

func TestAnalyze_PreservesSubmissionOrder(t *testing.T) {
	o := newTestOrchestrator(&stubAnalyzer{}, &stubVerifier{})
	input := extractedCodes("211 PC", "484 PC", "23152 VC")

	result, err := o.Analyze(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, result.Codes, 3)
	assert.Equal(t, "211 PC", result.Codes[0].Code)
	assert.Equal(t, "484 PC", result.Codes[1].Code)
	assert.Equal(t, "23152 VC", result.Codes[2].Code)
	assert.Len(t, result.PerCodeAIFinding, 3)
	assert.NotEmpty(t, result.ID)
}

func TestAnalyze_DuplicatesProcessedIndependently(t *testing.T) {
	analyzer := &stubAnalyzer{}
	o := newTestOrchestrator(analyzer, &stubVerifier{})

	result, err := o.Analyze(context.Background(), extractedCodes("484 PC", "484 PC"))
	require.NoError(t, err)

	assert.Len(t, result.Codes, 2)
	assert.Equal(t, result.Codes[0].Code, result.Codes[1].Code)
	assert.Equal(t, int32(2), atomic.LoadInt32(&analyzer.calls))
}

func TestAnalyze_AnnotationsPassThroughByPosition(t *testing.T) {
	o := newTestOrchestrator(&stubAnalyzer{}, &stubVerifier{})
	input := []offense.ExtractedCode{
		{Code: "484 PC", Context: "count 1", Disposition: offense.DispositionConvicted},
		{Code: "211 PC", Context: "count 2", Disposition: offense.DispositionDismissed},
	}

	result, err := o.Analyze(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, "count 1", result.Codes[0].Context)
	assert.Equal(t, offense.DispositionConvicted, result.Codes[0].Disposition)
	assert.Equal(t, "count 2", result.Codes[1].Context)
	assert.Equal(t, offense.DispositionDismissed, result.Codes[1].Disposition)
}

func TestAnalyze_OneFailingCodeGetsConservativeFallback(t *testing.T) {
	analyzer := &stubAnalyzer{failFor: map[string]bool{"487 PC": true}}
	o := newTestOrchestrator(analyzer, &stubVerifier{})

	result, err := o.Analyze(context.Background(), extractedCodes("484 PC", "487 PC"))
	require.NoError(t, err)

	healthy, fallen := result.Codes[0], result.Codes[1]
	assert.Equal(t, offense.StatusNonDisqualifying, healthy.K12Impact)
	assert.Equal(t, offense.StatusHasExemptionPath, fallen.K12Impact)
	assert.Equal(t, offense.ConfidenceLow, fallen.VerificationConfidence)
	assert.Contains(t, fallen.HRGuidance, "consult legal counsel")
	assert.Nil(t, result.PerCodeAIFinding[1])
}

func TestAnalyze_TotalOutageFailsBatch(t *testing.T) {
	analyzer := &stubAnalyzer{failFor: map[string]bool{"484 PC": true, "487 PC": true}}
	o := newTestOrchestrator(analyzer, &stubVerifier{source: offense.SourceExhausted})

	_, err := o.Analyze(context.Background(), extractedCodes("484 PC", "487 PC"))

	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeAnalysisFailed))
}

func TestAnalyze_EmptyInput(t *testing.T) {
	o := newTestOrchestrator(&stubAnalyzer{}, &stubVerifier{})

	result, err := o.Analyze(context.Background(), nil)
	require.NoError(t, err)

	assert.Empty(t, result.Codes)
	assert.Equal(t, offense.StatusNonDisqualifying, result.Summary.OverallStatus)
	assert.Equal(t, 0, result.Summary.TotalCodes)
}

func TestAnalyze_SummaryReflectsRecords(t *testing.T) {
	o := newTestOrchestrator(&stubAnalyzer{}, &stubVerifier{})

	result, err := o.Analyze(context.Background(), extractedCodes("484 PC", "484 PC", "484 PC"))
	require.NoError(t, err)

	assert.Equal(t, 3, result.Summary.TotalCodes)
	assert.Equal(t, 3, result.Summary.NonDisqualifying)
	assert.Equal(t, offense.StatusNonDisqualifying, result.Summary.OverallStatus)
}
