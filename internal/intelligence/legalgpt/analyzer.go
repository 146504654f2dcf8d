// Package legalgpt adapts the OpenAI API into two oracles: the generative
// legal analyzer that classifies an offense code for K-12 employment, and
// the conversational assistant behind the chat surface. Classification uses
// strict JSON-schema structured output so replies decode directly into the
// domain finding type.
package legalgpt

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/config"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/domain/offense"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/intelligence/common"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/infrastructure/monitoring/logging"
	"github.com/charlesmartinedd/k12-background-check-interpreter/pkg/errors"
)

const classifySystemPrompt = `You are a California K-12 school employment eligibility analyst.
Given a criminal offense code, classify its effect on eligibility for school
employment under Education Code 44830.1 (certificated) and 45122.1
(classified).

Rules:
- "mandatory-disqualifier": violent or serious felonies (Penal Code
  667.5(c), 1192.7(c)) and sex/drug offenses with no exemption path.
- "has-exemption-path": offenses that bar employment unless a certificate of
  rehabilitation or county-office exemption applies, and any offense whose
  effect you cannot establish with certainty.
- "non-disqualifying": offenses with no K-12 employment consequence.

When statute context is provided, ground your analysis in it. When you are
uncertain, say so via the confidence field and classify conservatively as
"has-exemption-path". Cite the statutes you relied on.`

// Client wraps the OpenAI API for both oracles.
type Client struct {
	api         openai.Client
	model       string
	temperature float64
	timeout     time.Duration
	policy      common.RetryPolicy
	logger      logging.Logger
}

var _ offense.LegalAnalyzer = (*Client)(nil)

// NewClient configures the OpenAI client from config.
func NewClient(cfg config.OpenAIConfig, policy common.RetryPolicy, log logging.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New(errors.CodeInvalidParam, "openai api key is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		api:         openai.NewClient(opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		policy:      policy,
		logger:      log.Named("legalgpt"),
	}, nil
}

// findingSchema is reflected once; offense.AIFinding is the contract.
var findingSchema = generateSchema[offense.AIFinding]()

func generateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

// Classify asks the model for a structured eligibility finding. A non-empty
// retrievedContext grounds the analysis in previously retrieved statute text.
func (c *Client) Classify(ctx context.Context, code string, retrievedContext string) (*offense.AIFinding, error) {
	userPrompt := fmt.Sprintf("Offense code: %s", code)
	if retrievedContext != "" {
		userPrompt += "\n\nRetrieved statute context:\n" + retrievedContext
	}

	return common.Retry(ctx, c.policy, func(ctx context.Context) (*offense.AIFinding, error) {
		callCtx := ctx
		if c.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}

		resp, err := c.api.Chat.Completions.New(callCtx, openai.ChatCompletionNewParams{
			Model: c.model,
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(classifySystemPrompt),
				openai.UserMessage(userPrompt),
			},
			Temperature: openai.Float(c.temperature),
			ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
					JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
						Name:   "k12_eligibility_finding",
						Schema: findingSchema,
						Strict: openai.Bool(true),
					},
				},
			},
		})
		if err != nil {
			return nil, c.classifyErr(ctx, err)
		}
		if len(resp.Choices) == 0 {
			return nil, errors.New(errors.ErrCodeOracleMalformed, "openai returned no choices")
		}

		finding, err := parseFinding(resp.Choices[0].Message.Content)
		if err != nil {
			return nil, err
		}
		c.logger.Debug("classification produced",
			logging.String("code", code),
			logging.String("classification", string(finding.K12Classification)),
			logging.String("confidence", string(finding.Confidence)),
		)
		return finding, nil
	})
}

// classifyErr maps an API error onto the retry contract: 4xx rejections are
// permanent, everything else (429, 5xx, network) is retryable.
func (c *Client) classifyErr(ctx context.Context, err error) error {
	wrapped := errors.Wrap(err, errors.ErrCodeOracleUnavailable, "openai call failed")
	var apiErr *openai.Error
	if stderrors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 && apiErr.StatusCode != 429 {
		c.logger.Warn("openai rejected request",
			logging.Int("status", apiErr.StatusCode), logging.Err(err))
		return common.Permanent(wrapped)
	}
	return wrapped
}

// parseFinding decodes the structured reply and normalizes the
// classification into the user-facing tri-state.
func parseFinding(content string) (*offense.AIFinding, error) {
	var finding offense.AIFinding
	if err := json.Unmarshal([]byte(content), &finding); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeOracleMalformed, "openai reply is not valid finding JSON")
	}
	finding.K12Classification = finding.K12Classification.Normalize()
	if finding.Confidence == "" {
		finding.Confidence = offense.ConfidenceLow
	}
	return &finding, nil
}
