// Package analysis implements the batch orchestrator, the typed merge
// reducer, and the classification aggregator: codes in, one
// ComprehensiveAnalysis out.
package analysis

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/application/verification"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/domain/offense"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/intelligence/common"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/infrastructure/monitoring/logging"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/infrastructure/monitoring/prometheus"
	"github.com/charlesmartinedd/k12-background-check-interpreter/pkg/errors"
)

// Verifier is the per-code verification collaborator (implemented by
// verification.Pipeline).
type Verifier interface {
	Verify(ctx context.Context, raw string) *verification.VerifiedResult
}

// LocalLookup mirrors verification.LocalLookup; the orchestrator needs its
// own probe for the merge reducer's felony flags.
type LocalLookup interface {
	Lookup(ctx context.Context, code offense.NormalizedCode) (*offense.OffenseRecord, error)
}

// Orchestrator fans the per-code work out across the batch and joins the
// results back in submission order.
type Orchestrator struct {
	local          LocalLookup
	retriever      offense.StatuteRetriever
	analyzer       offense.LegalAnalyzer
	verifier       Verifier
	maxConcurrency int
	metrics        *prometheus.Metrics // nil disables metrics
	logger         logging.Logger
}

func NewOrchestrator(local LocalLookup, retriever offense.StatuteRetriever, analyzer offense.LegalAnalyzer, verifier Verifier, maxConcurrency int, metrics *prometheus.Metrics, log logging.Logger) *Orchestrator {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Orchestrator{
		local:          local,
		retriever:      retriever,
		analyzer:       analyzer,
		verifier:       verifier,
		maxConcurrency: maxConcurrency,
		metrics:        metrics,
		logger:         log.Named("analysis"),
	}
}

// codeOutcome is the per-code join result before aggregation.
type codeOutcome struct {
	record     offense.OffenseRecord
	aiFinding  *offense.AIFinding
	classified bool // false when the conservative fallback was used
}

// Analyze classifies every extracted code. Duplicates are processed
// independently and positions align 1:1 with the input so callers can
// re-associate their disposition/context annotations. One failing code never
// blanks the batch; the only error is a total outage in which no code could
// be classified by any source.
func (o *Orchestrator) Analyze(ctx context.Context, extracted []offense.ExtractedCode) (*offense.ComprehensiveAnalysis, error) {
	start := time.Now()

	results := common.FanOut(ctx, o.maxConcurrency, extracted, func(ctx context.Context, index int, item offense.ExtractedCode) (codeOutcome, error) {
		return o.analyzeOne(ctx, item), nil
	})

	records := make([]offense.OffenseRecord, len(results))
	findings := make([]*offense.AIFinding, len(results))
	anyClassified := false
	for i, r := range results {
		if r.Err != nil {
			// FanOut only reports context cancellation or a panic here;
			// per-code oracle failures are absorbed inside analyzeOne.
			o.logger.Error("code analysis aborted",
				logging.Int("index", i), logging.Err(r.Err))
			fallbackIn := mergeInputs{
				code:      offense.Normalize(extracted[i].Code),
				extracted: extracted[i],
				verified: &verification.VerifiedResult{
					Code:       offense.Normalize(extracted[i].Code).Display(),
					Source:     offense.SourceExhausted,
					Confidence: offense.ConfidenceLow,
					Citations:  []string{},
				},
			}
			records[i] = conservativeFallback(fallbackIn)
			continue
		}
		records[i] = r.Result.record
		findings[i] = r.Result.aiFinding
		if r.Result.classified {
			anyClassified = true
		}
	}

	if len(extracted) > 0 && !anyClassified && allExhausted(records) {
		return nil, errors.New(errors.ErrCodeAnalysisFailed,
			"no source could classify any code in the batch")
	}

	if o.metrics != nil {
		o.metrics.BatchSize.Observe(float64(len(extracted)))
		o.metrics.BatchDuration.Observe(time.Since(start).Seconds())
	}

	return &offense.ComprehensiveAnalysis{
		ID:               uuid.NewString(),
		Codes:            records,
		PerCodeAIFinding: findings,
		Summary:          Aggregate(records),
		Timestamp:        time.Now().UTC(),
	}, nil
}

// analyzeOne runs the three concurrent per-code operations (enrichment,
// classification grounded in the enrichment, and independent verification)
// and merges them. Classification waits for enrichment; verification runs
// alongside both. The join waits for all before merging.
func (o *Orchestrator) analyzeOne(ctx context.Context, item offense.ExtractedCode) codeOutcome {
	code := offense.Normalize(item.Code)
	display := code.Display()

	var (
		wg          sync.WaitGroup
		verified    *verification.VerifiedResult
		enrichment  *offense.RetrievalFinding
		aiFinding   *offense.AIFinding
		classifyErr error
	)

	wg.Add(2)

	go func() {
		defer wg.Done()
		verified = o.verifier.Verify(ctx, item.Code)
	}()

	go func() {
		defer wg.Done()
		enrichment = o.enrich(ctx, display)
		aiFinding, classifyErr = o.analyzer.Classify(ctx, display, enrichmentContext(enrichment))
	}()

	local, err := o.local.Lookup(ctx, code)
	if err != nil {
		o.logger.Warn("local lookup failed during merge preparation",
			logging.String("code", display), logging.Err(err))
		local = nil
	}

	wg.Wait()

	in := mergeInputs{
		code:       code,
		extracted:  item,
		local:      local,
		enrichment: enrichment,
		aiFinding:  aiFinding,
		verified:   verified,
	}

	if classifyErr != nil {
		o.logger.Warn("classification failed after retries, using conservative fallback",
			logging.String("code", display), logging.Err(classifyErr))
		in.aiFinding = nil
		return codeOutcome{record: conservativeFallback(in)}
	}
	return codeOutcome{record: merge(in), aiFinding: aiFinding, classified: true}
}

// enrich fetches statute text and K-12 rule text for one code. Enrichment is
// best-effort: any failure just means classification runs without retrieved
// context.
func (o *Orchestrator) enrich(ctx context.Context, display string) *offense.RetrievalFinding {
	statute, err := o.retriever.RetrieveStatute(ctx, display)
	if err != nil {
		o.logger.Debug("statute enrichment failed",
			logging.String("code", display), logging.Err(err))
		statute = nil
	}

	rules, err := o.retriever.RetrieveK12Rules(ctx, display)
	if err != nil {
		o.logger.Debug("k12 rules enrichment failed",
			logging.String("code", display), logging.Err(err))
		rules = nil
	}

	return combineFindings(statute, rules)
}

// combineFindings folds the statute and K-12-rules retrievals into one
// finding; rule text is appended after the statute text.
func combineFindings(statute, rules *offense.RetrievalFinding) *offense.RetrievalFinding {
	if statute == nil || !statute.Found {
		if rules != nil && rules.Found {
			return rules
		}
		return statute
	}
	if rules == nil || !rules.Found {
		return statute
	}
	combined := *statute
	if rules.StatuteText != "" {
		combined.StatuteText = statute.StatuteText + "\n\n" + rules.StatuteText
	}
	combined.Citations = mergeCitations(append([]string{}, statute.Citations...), rules.Citations)
	return &combined
}

func enrichmentContext(f *offense.RetrievalFinding) string {
	if f == nil || !f.Found {
		return ""
	}
	var sb strings.Builder
	if f.Description != "" {
		sb.WriteString(f.Description)
		sb.WriteString("\n\n")
	}
	sb.WriteString(f.StatuteText)
	return strings.TrimSpace(sb.String())
}

func allExhausted(records []offense.OffenseRecord) bool {
	for _, r := range records {
		if r.VerificationSource != offense.SourceExhausted {
			return false
		}
	}
	return true
}
