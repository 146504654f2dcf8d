// Package statuterag adapts Gemini into the statute-retrieval oracle. The
// model is prompted against its legal-corpus grounding to return structured
// statute text and K-12 employment rule context for a single offense code.
package statuterag

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/config"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/domain/offense"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/intelligence/common"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/infrastructure/monitoring/logging"
	"github.com/charlesmartinedd/k12-background-check-interpreter/pkg/errors"
)

const statutePromptTemplate = `You are a California criminal law reference system.
Return information about the offense code below as a single JSON object with
exactly these fields:

{
  "found": bool,
  "statute_text": "full or summarized statute text",
  "description": "one-sentence plain-language description of the offense",
  "classification": "felony | misdemeanor | wobbler | infraction",
  "penalties": "sentencing range",
  "citations": ["statute or case citations"]
}

If you do not have reliable information about this exact code, return
{"found": false, "citations": []}. Never guess.

Offense code: %s`

const k12RulesPromptTemplate = `You are a California education employment law reference system.
For the offense code below, return the K-12 school employment rules that
reference it (Education Code sections 44830.1 and 45122.1, certificated and
classified employment prohibitions, and any certificate-of-rehabilitation or
exemption provisions) as a single JSON object with exactly these fields:

{
  "found": bool,
  "statute_text": "relevant Education Code rule text",
  "description": "how this offense affects K-12 employment eligibility",
  "classification": "mandatory bar | conditional bar | no bar",
  "penalties": "",
  "citations": ["Education Code citations"]
}

If the code is not addressed by K-12 employment law you know reliably, return
{"found": false, "citations": []}. Never guess.

Offense code: %s`

// Retriever implements offense.StatuteRetriever over the Gemini API.
type Retriever struct {
	model   *genai.GenerativeModel
	timeout time.Duration
	policy  common.RetryPolicy
	logger  logging.Logger
}

var _ offense.StatuteRetriever = (*Retriever)(nil)

// NewRetriever dials the Gemini API and configures the model for JSON output.
func NewRetriever(ctx context.Context, cfg config.GeminiConfig, policy common.RetryPolicy, log logging.Logger) (*Retriever, error) {
	if cfg.APIKey == "" {
		return nil, errors.New(errors.CodeInvalidParam, "gemini api key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeOracleUnavailable, "failed to create gemini client")
	}

	model := client.GenerativeModel(cfg.Model)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0)

	return &Retriever{
		model:   model,
		timeout: cfg.Timeout,
		policy:  policy,
		logger:  log.Named("statuterag"),
	}, nil
}

func (r *Retriever) RetrieveStatute(ctx context.Context, code string) (*offense.RetrievalFinding, error) {
	return r.retrieve(ctx, fmt.Sprintf(statutePromptTemplate, code))
}

func (r *Retriever) RetrieveK12Rules(ctx context.Context, code string) (*offense.RetrievalFinding, error) {
	return r.retrieve(ctx, fmt.Sprintf(k12RulesPromptTemplate, code))
}

func (r *Retriever) retrieve(ctx context.Context, prompt string) (*offense.RetrievalFinding, error) {
	return common.Retry(ctx, r.policy, func(ctx context.Context) (*offense.RetrievalFinding, error) {
		callCtx := ctx
		if r.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}

		resp, err := r.model.GenerateContent(callCtx, genai.Text(prompt))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeOracleUnavailable, "gemini call failed")
		}

		text, err := responseText(resp)
		if err != nil {
			return nil, err
		}
		return parseRetrievalFinding(text)
	})
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New(errors.ErrCodeOracleMalformed, "gemini returned no candidates")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	if sb.Len() == 0 {
		return "", errors.New(errors.ErrCodeOracleMalformed, "gemini returned no text parts")
	}
	return sb.String(), nil
}

// parseRetrievalFinding decodes the model's JSON reply, tolerating markdown
// code fences some models wrap JSON output in.
func parseRetrievalFinding(text string) (*offense.RetrievalFinding, error) {
	cleaned := stripCodeFence(text)

	var finding offense.RetrievalFinding
	if err := json.Unmarshal([]byte(cleaned), &finding); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeOracleMalformed, "gemini reply is not valid finding JSON")
	}
	if finding.Citations == nil {
		finding.Citations = []string{}
	}
	return &finding, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
