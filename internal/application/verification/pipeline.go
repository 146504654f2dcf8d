// Package verification implements the cascading-fallback resolution chain:
// local reference, then statute retrieval, then generative analysis, then
// web search, ending in a confident non-existence claim when every source
// comes up empty. First sufficiently confident source wins; the chain is
// ordered by cost and auditability, not consensus.
package verification

import (
	"context"
	"time"

	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/domain/offense"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/infrastructure/database/redis"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/infrastructure/monitoring/logging"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/infrastructure/monitoring/prometheus"
)

// VerifiedResult is the pipeline's sole output: which source resolved the
// code, at what confidence, and whatever supplementary legal content that
// source supplied. Found=false with SourceExhausted is a positive,
// high-confidence claim that the code exists in no known database, not an
// error and not an "unknown".
type VerifiedResult struct {
	Code       string                     `json:"code"` // canonical display form
	Found      bool                       `json:"found"`
	Source     offense.VerificationSource `json:"source"`
	Confidence offense.Confidence         `json:"confidence"`
	Verified   bool                       `json:"verified"`

	Description string                         `json:"description,omitempty"`
	Category    string                         `json:"category,omitempty"`
	K12Impact   offense.DisqualificationStatus `json:"k12_impact,omitempty"`
	StatuteText string                         `json:"statute_text,omitempty"`
	Citations   []string                       `json:"citations"`
}

// LocalLookup is the stage-1 collaborator (implemented by lookup.Service).
type LocalLookup interface {
	Lookup(ctx context.Context, code offense.NormalizedCode) (*offense.OffenseRecord, error)
}

// Pipeline drives the ordered fallback for one code at a time. It never
// returns an error: every stage failure is logged and treated as "source did
// not find it".
type Pipeline struct {
	local     LocalLookup
	retriever offense.StatuteRetriever
	analyzer  offense.LegalAnalyzer
	searcher  offense.WebSearcher

	cache    redis.Cache // nil disables caching
	cacheTTL time.Duration

	oracleTimeout time.Duration
	metrics       *prometheus.Metrics // nil disables metrics
	logger        logging.Logger
}

// Option configures optional pipeline collaborators.
type Option func(*Pipeline)

func WithCache(cache redis.Cache, ttl time.Duration) Option {
	return func(p *Pipeline) {
		p.cache = cache
		p.cacheTTL = ttl
	}
}

func WithMetrics(m *prometheus.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

func WithOracleTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.oracleTimeout = d }
}

func NewPipeline(local LocalLookup, retriever offense.StatuteRetriever, analyzer offense.LegalAnalyzer, searcher offense.WebSearcher, log logging.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		local:         local,
		retriever:     retriever,
		analyzer:      analyzer,
		searcher:      searcher,
		oracleTimeout: 30 * time.Second,
		logger:        log.Named("verification"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Verify resolves one raw code string through the fallback chain. Results
// for previously seen codes are served from the cache when one is wired;
// cache failures of any kind degrade to direct execution and never surface.
func (p *Pipeline) Verify(ctx context.Context, raw string) *VerifiedResult {
	code := offense.Normalize(raw)

	if p.cache == nil {
		return p.verify(ctx, code)
	}

	var cached VerifiedResult
	err := p.cache.GetOrSet(ctx, code.Display(), &cached, p.cacheTTL, func(ctx context.Context) (interface{}, error) {
		return p.verify(ctx, code), nil
	})
	if err != nil {
		if p.metrics != nil {
			p.metrics.CacheMissesTotal.Inc()
		}
		p.logger.Warn("result cache unavailable, verifying directly",
			logging.String("code", code.Display()), logging.Err(err))
		return p.verify(ctx, code)
	}
	if p.metrics != nil {
		p.metrics.CacheHitsTotal.Inc()
	}
	return &cached
}

func (p *Pipeline) verify(ctx context.Context, code offense.NormalizedCode) *VerifiedResult {
	display := code.Display()

	// Stage 1: local reference.
	if result := p.tryLocal(ctx, code); result != nil {
		return p.resolved(result)
	}

	// Stage 2: statute retrieval. Retrieval hits are trusted at face value.
	if result := p.tryRetrieval(ctx, display); result != nil {
		return p.resolved(result)
	}

	// Stage 3: generative analysis. Low self-reported confidence falls
	// through to web search.
	if result := p.tryAnalysis(ctx, display); result != nil {
		return p.resolved(result)
	}

	// Stage 4: web search.
	if result := p.trySearch(ctx, code); result != nil {
		return p.resolved(result)
	}

	// Stage 5: every source exhausted. A confident claim of non-existence,
	// never a soft unknown. HR staff must not see an ambiguous result.
	return p.resolved(&VerifiedResult{
		Code:       display,
		Found:      false,
		Source:     offense.SourceExhausted,
		Confidence: offense.ConfidenceHigh,
		Citations:  []string{},
	})
}

func (p *Pipeline) resolved(result *VerifiedResult) *VerifiedResult {
	if result.Citations == nil {
		result.Citations = []string{}
	}
	if p.metrics != nil {
		p.metrics.VerificationsTotal.WithLabelValues(string(result.Source)).Inc()
	}
	return result
}

func (p *Pipeline) tryLocal(ctx context.Context, code offense.NormalizedCode) *VerifiedResult {
	record, err := p.local.Lookup(ctx, code)
	if err != nil {
		p.logger.Warn("local lookup failed, continuing chain",
			logging.String("code", code.Display()), logging.Err(err))
		return nil
	}
	if !record.Verified || record.VerificationConfidence != offense.ConfidenceHigh {
		return nil
	}
	return &VerifiedResult{
		Code:        record.Code,
		Found:       true,
		Source:      offense.SourceLocal,
		Confidence:  offense.ConfidenceHigh,
		Verified:    true,
		Description: record.Description,
		Category:    record.Category,
		K12Impact:   record.K12Impact,
		Citations:   record.Citations,
	}
}

func (p *Pipeline) tryRetrieval(ctx context.Context, display string) *VerifiedResult {
	finding, err := p.callRetrieval(ctx, display)
	if err != nil {
		p.observeOracle("gemini-rag", "error", err, display)
		return nil
	}
	if finding == nil || !finding.Found {
		p.observeOracle("gemini-rag", "not_found", nil, display)
		return nil
	}
	p.observeOracle("gemini-rag", "found", nil, display)
	return &VerifiedResult{
		Code:        display,
		Found:       true,
		Source:      offense.SourceGeminiRAG,
		Confidence:  offense.ConfidenceHigh,
		Verified:    true,
		Description: finding.Description,
		Category:    finding.Classification,
		StatuteText: finding.StatuteText,
		Citations:   finding.Citations,
	}
}

func (p *Pipeline) tryAnalysis(ctx context.Context, display string) *VerifiedResult {
	callCtx, cancel := p.stageContext(ctx)
	defer cancel()

	start := time.Now()
	finding, err := p.analyzer.Classify(callCtx, display, "")
	elapsed := time.Since(start)
	if err != nil {
		p.observe("gpt-5.2", "error", elapsed)
		p.logger.Warn("analysis oracle failed, continuing chain",
			logging.String("code", display), logging.Err(err))
		return nil
	}
	if finding == nil || finding.Confidence == offense.ConfidenceLow {
		p.observe("gpt-5.2", "not_found", elapsed)
		return nil
	}
	p.observe("gpt-5.2", "found", elapsed)
	return &VerifiedResult{
		Code:        display,
		Found:       true,
		Source:      offense.SourceGPT,
		Confidence:  finding.Confidence,
		Verified:    true,
		Description: finding.OffenseDescription,
		K12Impact:   finding.K12Classification,
		Citations:   finding.StatuteCitations,
	}
}

func (p *Pipeline) trySearch(ctx context.Context, code offense.NormalizedCode) *VerifiedResult {
	callCtx, cancel := p.stageContext(ctx)
	defer cancel()

	start := time.Now()
	finding, err := p.searcher.Search(callCtx, code)
	elapsed := time.Since(start)
	if err != nil {
		p.observe("web-search", "error", elapsed)
		p.logger.Warn("web search failed, continuing chain",
			logging.String("code", code.Display()), logging.Err(err))
		return nil
	}
	if finding == nil || !finding.Found {
		p.observe("web-search", "not_found", elapsed)
		return nil
	}
	p.observe("web-search", "found", elapsed)
	return &VerifiedResult{
		Code:        code.Display(),
		Found:       true,
		Source:      offense.SourceWebSearch,
		Confidence:  offense.ConfidenceMedium,
		Verified:    true,
		Description: finding.Description,
		Category:    finding.Classification,
		K12Impact:   finding.K12Impact,
		Citations:   finding.Citations,
	}
}

func (p *Pipeline) callRetrieval(ctx context.Context, display string) (*offense.RetrievalFinding, error) {
	callCtx, cancel := p.stageContext(ctx)
	defer cancel()

	start := time.Now()
	finding, err := p.retriever.RetrieveStatute(callCtx, display)
	if p.metrics != nil {
		p.metrics.OracleDuration.WithLabelValues("gemini-rag").Observe(time.Since(start).Seconds())
	}
	return finding, err
}

func (p *Pipeline) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.oracleTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.oracleTimeout)
}

func (p *Pipeline) observe(oracle, outcome string, elapsed time.Duration) {
	if p.metrics != nil {
		p.metrics.ObserveOracle(oracle, outcome, elapsed)
	}
}

func (p *Pipeline) observeOracle(oracle, outcome string, err error, display string) {
	if p.metrics != nil {
		p.metrics.OracleRequestsTotal.WithLabelValues(oracle, outcome).Inc()
	}
	if err != nil {
		p.logger.Warn("oracle failed, continuing chain",
			logging.String("oracle", oracle),
			logging.String("code", display),
			logging.Err(err))
	}
}
