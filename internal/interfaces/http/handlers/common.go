// Package handlers implements the HTTP endpoints of the interpreter API:
// batch analysis, grounded follow-up chat (buffered and streaming), and
// health probes.
package handlers

import (
	stderrors "errors"

	"github.com/gin-gonic/gin"

	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/infrastructure/monitoring/logging"
	"github.com/charlesmartinedd/k12-background-check-interpreter/pkg/errors"
)

// ErrorResponse is the uniform error envelope returned by every endpoint.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// respondError writes the uniform error envelope. AppErrors map to their
// registered HTTP status; anything else becomes a 500 with a generic
// message so internals never leak to clients.
func respondError(c *gin.Context, logger logging.Logger, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	resp := ErrorResponse{Code: code.String(), Message: "internal server error"}
	var ae *errors.AppError
	if stderrors.As(err, &ae) {
		resp.Message = ae.Message
		resp.Detail = ae.Detail
	}

	if errors.IsServerError(code) {
		logger.Error("request failed", logging.String("path", c.Request.URL.Path), logging.Err(err))
	} else {
		logger.Warn("request rejected", logging.String("path", c.Request.URL.Path), logging.Err(err))
	}

	c.AbortWithStatusJSON(status, resp)
}

func respondBadRequest(c *gin.Context, logger logging.Logger, message string) {
	respondError(c, logger, errors.InvalidParam(message))
}
