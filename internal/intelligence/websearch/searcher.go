// Package websearch adapts a JSON search API into the final-fallback oracle.
// It is consulted only after local reference, statute retrieval, and
// generative analysis have all come up empty, so its answers carry low
// confidence by construction.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/config"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/domain/offense"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/intelligence/common"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/infrastructure/monitoring/logging"
	"github.com/charlesmartinedd/k12-background-check-interpreter/pkg/errors"
)

const defaultMaxResults = 5

// searchResponse mirrors the search API's result envelope.
type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// Searcher implements offense.WebSearcher over an HTTP search API.
type Searcher struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	maxResults int
	policy     common.RetryPolicy
	logger     logging.Logger
}

var _ offense.WebSearcher = (*Searcher)(nil)

func NewSearcher(cfg config.WebSearchConfig, policy common.RetryPolicy, log logging.Logger) (*Searcher, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New(errors.CodeInvalidParam, "websearch base url is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	return &Searcher{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		maxResults: maxResults,
		policy:     policy,
		logger:     log.Named("websearch"),
	}, nil
}

// Search queries the web for the code. NCIC codes and statute codes get
// differently shaped queries: an NCIC number means nothing without the
// "NCIC" qualifier, while a statute search works best with its code-section
// phrasing.
func (s *Searcher) Search(ctx context.Context, code offense.NormalizedCode) (*offense.SearchFinding, error) {
	query := buildQuery(code)

	return common.Retry(ctx, s.policy, func(ctx context.Context) (*offense.SearchFinding, error) {
		results, err := s.fetch(ctx, query)
		if err != nil {
			return nil, err
		}
		return buildFinding(results), nil
	})
}

func (s *Searcher) fetch(ctx context.Context, query string) ([]searchResult, error) {
	u := fmt.Sprintf("%s/search?q=%s&count=%d", s.baseURL, url.QueryEscape(query), s.maxResults)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to build search request")
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeOracleUnavailable, "search request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		return nil, common.Permanent(errors.Newf(errors.ErrCodeOracleUnavailable, "search API rejected request: %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf(errors.ErrCodeOracleUnavailable, "search API returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeOracleUnavailable, "failed to read search response")
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeOracleMalformed, "search response is not valid JSON")
	}
	return parsed.Results, nil
}

// buildQuery shapes the search query by code kind.
func buildQuery(code offense.NormalizedCode) string {
	if code.StatuteType == offense.StatuteNCIC {
		return fmt.Sprintf("NCIC offense code %s description", code.Number)
	}
	return fmt.Sprintf("California %s %s offense K-12 school employment disqualification",
		statuteName(code.StatuteType), code.Display())
}

func statuteName(t offense.StatuteType) string {
	switch t {
	case offense.StatutePC:
		return "Penal Code"
	case offense.StatuteHS:
		return "Health and Safety Code"
	case offense.StatuteVC:
		return "Vehicle Code"
	case offense.StatuteBP:
		return "Business and Professions Code"
	case offense.StatuteWI:
		return "Welfare and Institutions Code"
	case offense.StatuteFC:
		return "Family Code"
	default:
		return "code"
	}
}

// buildFinding condenses raw results into a finding. Web results are never
// authoritative, so the K-12 impact is inferred only when the snippets agree
// on obviously disqualifying language; anything ambiguous is left for the
// merge step to treat conservatively.
func buildFinding(results []searchResult) *offense.SearchFinding {
	if len(results) == 0 {
		return &offense.SearchFinding{Found: false, Citations: []string{}}
	}

	citations := make([]string, 0, len(results))
	var snippets strings.Builder
	for _, r := range results {
		if r.URL != "" {
			citations = append(citations, r.URL)
		}
		snippets.WriteString(strings.ToLower(r.Snippet))
		snippets.WriteString(" ")
	}

	finding := &offense.SearchFinding{
		Found:       true,
		Description: results[0].Title,
		Citations:   citations,
	}

	text := snippets.String()
	switch {
	case strings.Contains(text, "violent felony") || strings.Contains(text, "serious felony"):
		finding.K12Impact = offense.StatusMandatoryDisqualifier
		finding.Classification = "felony"
	case strings.Contains(text, "certificate of rehabilitation") || strings.Contains(text, "exemption"):
		finding.K12Impact = offense.StatusHasExemptionPath
	}
	return finding
}
