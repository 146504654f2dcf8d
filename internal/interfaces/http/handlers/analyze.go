package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/domain/offense"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/infrastructure/monitoring/logging"
)

// maxBatchCodes bounds a single analyze request. Larger batches should be
// split by the caller.
const maxBatchCodes = 100

// Analyzer runs the batch classification pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, extracted []offense.ExtractedCode) (*offense.ComprehensiveAnalysis, error)
}

// Sanitizer redacts PII from document-derived text before it enters the
// pipeline.
type Sanitizer interface {
	SanitizeInput(input string) (string, []string)
}

// AnalyzeRequest is the POST /api/v1/analyze body.
type AnalyzeRequest struct {
	Codes []offense.ExtractedCode `json:"codes" binding:"required"`
}

// AnalyzeResponse wraps the analysis together with any sanitization
// warnings raised on the incoming context annotations.
type AnalyzeResponse struct {
	Analysis *offense.ComprehensiveAnalysis `json:"analysis"`
	Warnings []string                       `json:"warnings,omitempty"`
}

// AnalyzeHandler serves batch offense-code analysis.
type AnalyzeHandler struct {
	analyzer  Analyzer
	sanitizer Sanitizer
	logger    logging.Logger
}

func NewAnalyzeHandler(analyzer Analyzer, sanitizer Sanitizer, log logging.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer:  analyzer,
		sanitizer: sanitizer,
		logger:    log.Named("analyze-handler"),
	}
}

// Analyze handles POST /api/v1/analyze. Context annotations pass through
// the PII sanitizer before the batch runs; redaction warnings ride along in
// the response rather than blocking it.
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, h.logger, "request body must be JSON with a non-empty codes array")
		return
	}
	if len(req.Codes) == 0 {
		respondBadRequest(c, h.logger, "codes array must not be empty")
		return
	}
	if len(req.Codes) > maxBatchCodes {
		respondBadRequest(c, h.logger, "codes array exceeds the batch limit of 100")
		return
	}

	warnings := []string{}
	for i := range req.Codes {
		if req.Codes[i].Context == "" {
			continue
		}
		sanitized, w := h.sanitizer.SanitizeInput(req.Codes[i].Context)
		req.Codes[i].Context = sanitized
		warnings = append(warnings, w...)
	}

	analysis, err := h.analyzer.Analyze(c.Request.Context(), req.Codes)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, AnalyzeResponse{Analysis: analysis, Warnings: warnings})
}
