// Package offense defines the domain model of the background-check
// interpreter: normalized offense codes, per-code classification records,
// aggregate analysis results, and the capability contracts (reference store,
// knowledge-source oracles) the application layer depends on.
//
// Records are value objects: created fresh per analysis run, never mutated
// after construction, and never persisted; the privacy posture of the
// system forbids storing applicant data anywhere.
package offense

import (
	"time"
)

// StatuteType identifies the California code family an offense code belongs
// to, or NCIC for bare 4-digit national codes.
type StatuteType string

const (
	StatutePC      StatuteType = "PC" // Penal Code
	StatuteHS      StatuteType = "HS" // Health & Safety Code
	StatuteVC      StatuteType = "VC" // Vehicle Code
	StatuteBP      StatuteType = "BP" // Business & Professions Code
	StatuteWI      StatuteType = "WI" // Welfare & Institutions Code
	StatuteFC      StatuteType = "FC" // Family Code
	StatuteNCIC    StatuteType = "NCIC"
	StatuteUnknown StatuteType = "UNKNOWN"
)

// DisqualificationStatus is the K-12 employment impact of a single offense.
//
// Three values are user-facing. The two legacy values (review-required,
// unknown) may still arrive from external sources and MUST be collapsed via
// Normalize before aggregation or display.
type DisqualificationStatus string

const (
	StatusMandatoryDisqualifier DisqualificationStatus = "mandatory-disqualifier"
	StatusHasExemptionPath      DisqualificationStatus = "has-exemption-path"
	StatusNonDisqualifying      DisqualificationStatus = "non-disqualifying"

	// Legacy states retained for ingestion compatibility only.
	StatusReviewRequired DisqualificationStatus = "review-required"
	StatusUnknown        DisqualificationStatus = "unknown"
)

// Normalize collapses the legacy tri-state into the three user-facing
// states: review-required and unknown both map to has-exemption-path,
// erring toward requiring human review. Unrecognised values also map to
// has-exemption-path for the same reason.
func (s DisqualificationStatus) Normalize() DisqualificationStatus {
	switch s {
	case StatusMandatoryDisqualifier, StatusHasExemptionPath, StatusNonDisqualifying:
		return s
	default:
		return StatusHasExemptionPath
	}
}

// IsUserFacing reports whether s is one of the three presentable states.
func (s DisqualificationStatus) IsUserFacing() bool {
	switch s {
	case StatusMandatoryDisqualifier, StatusHasExemptionPath, StatusNonDisqualifying:
		return true
	}
	return false
}

// VerificationSource identifies which stage of the verification pipeline
// produced a result.
type VerificationSource string

const (
	SourceLocal     VerificationSource = "local"
	SourceGeminiRAG VerificationSource = "gemini-rag"
	SourceGPT       VerificationSource = "gpt-5.2"
	SourceWebSearch VerificationSource = "web-search"
	SourceExhausted VerificationSource = "all-sources-exhausted"
)

// Confidence is the reliability rating attached to a verification result.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Disposition is the case outcome annotation supplied by document ingestion.
// It is passed through untouched to the final report.
type Disposition string

const (
	DispositionConvicted Disposition = "CONVICTED"
	DispositionDismissed Disposition = "DISMISSED"
	DispositionAcquitted Disposition = "ACQUITTED"
	DispositionPending   Disposition = "PENDING"
	DispositionUnknown   Disposition = "UNKNOWN"
)

// ExtractedCode is the ingestion contract: one candidate offense code plus
// non-PII context annotations. Only Code participates in classification;
// Context and Disposition ride along to the report.
type ExtractedCode struct {
	Code        string      `json:"code"`
	Context     string      `json:"context,omitempty"`
	Disposition Disposition `json:"disposition,omitempty"`
}

// OffenseRecord is the central per-code entity: a verified, confidence-rated
// legal classification of one offense code.
//
// Invariants (enforced by the merge reducer and local lookup):
//   - IsViolentFelony implies K12Impact == mandatory-disqualifier.
//   - K12Impact == mandatory-disqualifier and not violent implies serious.
//   - Violent takes precedence over serious in the display Category.
type OffenseRecord struct {
	Code        string   `json:"code"` // canonical display form, e.g. "484 PC"
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Explanation string   `json:"explanation,omitempty"`
	HRGuidance  string   `json:"hr_guidance,omitempty"`
	StatuteText string   `json:"statute_text,omitempty"`
	Citations   []string `json:"citations"`

	K12Impact         DisqualificationStatus `json:"k12_impact"`
	ExemptionPathways []string               `json:"exemption_pathways,omitempty"`

	IsViolentFelony    bool `json:"is_violent_felony"`
	IsSeriousFelony    bool `json:"is_serious_felony"`
	ExemptionAvailable bool `json:"exemption_available"`

	VerificationSource     VerificationSource `json:"verification_source"`
	VerificationConfidence Confidence         `json:"verification_confidence"`
	Verified               bool               `json:"verified"`

	// Ingestion pass-through, not used for classification.
	Context     string      `json:"context,omitempty"`
	Disposition Disposition `json:"disposition,omitempty"`
}

// AnalysisSummary is derived wholesale from a record sequence; it is
// recomputed on every aggregation and never cached independently.
type AnalysisSummary struct {
	TotalCodes             int                    `json:"total_codes"`
	MandatoryDisqualifiers int                    `json:"mandatory_disqualifiers"`
	HasExemptionPath       int                    `json:"has_exemption_path"`
	NonDisqualifying       int                    `json:"non_disqualifying"`
	OverallStatus          DisqualificationStatus `json:"overall_status"`
	OverallRecommendation  string                 `json:"overall_recommendation"`
}

// ComprehensiveAnalysis is the aggregate produced by one Analyze action.
// It owns its OffenseRecords exclusively and is replaced wholesale (never
// merged) on re-analysis.
type ComprehensiveAnalysis struct {
	ID               string          `json:"id"`
	Codes            []OffenseRecord `json:"codes"`
	PerCodeAIFinding []*AIFinding    `json:"per_code_ai_findings"` // index-aligned with Codes
	Summary          AnalysisSummary `json:"summary"`
	Timestamp        time.Time       `json:"timestamp"`
}

// ChatRole is the author of a chat message.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
	RoleSystem    ChatRole = "system"
)

// ChatMessage is one turn of the follow-up conversation. Messages are held
// only in the session's in-memory transcript; nothing writes them to durable
// storage.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
