package offense

import "context"

// The knowledge-source oracles are opaque external collaborators with the
// single contract "given a code, return a structured legal finding or not
// found". Their internal reasoning is outside this system's design; the
// interfaces below are the whole of the coupling.

// RetrievalFinding is the statute-retrieval oracle's response shape.
type RetrievalFinding struct {
	Found          bool     `json:"found"`
	StatuteText    string   `json:"statute_text,omitempty"`
	Description    string   `json:"description,omitempty"`
	Classification string   `json:"classification,omitempty"`
	Penalties      string   `json:"penalties,omitempty"`
	Citations      []string `json:"citations"`
}

// StatuteRetriever retrieves statute full text and K-12-specific rule text
// for an offense code. Retrieval hits are trusted at face value by the
// verification pipeline with no independent cross-check.
type StatuteRetriever interface {
	// RetrieveStatute fetches the statute text for a code.
	RetrieveStatute(ctx context.Context, code string) (*RetrievalFinding, error)

	// RetrieveK12Rules fetches K-12 employment rules that reference the code
	// (Education Code 44830.1/45122.1 context and exemption provisions).
	RetrieveK12Rules(ctx context.Context, code string) (*RetrievalFinding, error)
}

// AIFinding is the generative legal-analysis oracle's response shape.
type AIFinding struct {
	OffenseDescription string                 `json:"offense_description"`
	K12Classification  DisqualificationStatus `json:"k12_classification"`
	Explanation        string                 `json:"explanation"`
	ExemptionPathways  []string               `json:"exemption_pathways"`
	HRGuidance         string                 `json:"hr_guidance"`
	StatuteCitations   []string               `json:"statute_citations"`
	Confidence         Confidence             `json:"confidence"`
}

// LegalAnalyzer classifies an offense code for K-12 employment eligibility,
// optionally grounded in retrieved statute context.
type LegalAnalyzer interface {
	Classify(ctx context.Context, code string, retrievedContext string) (*AIFinding, error)
}

// SearchFinding is the web-search oracle's response shape.
type SearchFinding struct {
	Found          bool                   `json:"found"`
	Description    string                 `json:"description,omitempty"`
	Classification string                 `json:"classification,omitempty"`
	Statute        string                 `json:"statute,omitempty"`
	Penalties      string                 `json:"penalties,omitempty"`
	K12Impact      DisqualificationStatus `json:"k12_impact,omitempty"`
	Citations      []string               `json:"citations"`
}

// WebSearcher is the final-fallback oracle. The caller decides NCIC versus
// statute routing by handing over the normalized code; the adapter builds
// its query accordingly.
type WebSearcher interface {
	Search(ctx context.Context, code NormalizedCode) (*SearchFinding, error)
}
