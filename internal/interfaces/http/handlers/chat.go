package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/domain/offense"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/infrastructure/monitoring/logging"
)

// Chatter answers follow-up questions grounded in a prior analysis.
type Chatter interface {
	Ask(ctx context.Context, analysis *offense.ComprehensiveAnalysis, history []offense.ChatMessage, userMessage string) (string, error)
	StreamAsk(ctx context.Context, analysis *offense.ComprehensiveAnalysis, history []offense.ChatMessage, userMessage string) (<-chan string, <-chan error)
}

// ChatRequest is the POST /api/v1/chat body. The client holds the session
// transcript; nothing is persisted server-side.
type ChatRequest struct {
	Analysis *offense.ComprehensiveAnalysis `json:"analysis" binding:"required"`
	History  []offense.ChatMessage          `json:"history"`
	Message  string                         `json:"message" binding:"required"`
}

// ChatResponse carries one complete assistant reply.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// ChatHandler serves grounded follow-up conversation.
type ChatHandler struct {
	chatter Chatter
	logger  logging.Logger
}

func NewChatHandler(chatter Chatter, log logging.Logger) *ChatHandler {
	return &ChatHandler{chatter: chatter, logger: log.Named("chat-handler")}
}

// Chat handles POST /api/v1/chat with a buffered reply.
func (h *ChatHandler) Chat(c *gin.Context) {
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	reply, err := h.chatter.Ask(c.Request.Context(), req.Analysis, req.History, req.Message)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, ChatResponse{Reply: reply})
}

// ChatStream handles POST /api/v1/chat/stream as server-sent events: each
// delta is one "delta" event, the stream ends with a "done" event, and an
// oracle failure mid-stream becomes an "error" event since the status line
// has already been sent.
func (h *ChatHandler) ChatStream(c *gin.Context) {
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	deltas, errc := h.chatter.StreamAsk(c.Request.Context(), req.Analysis, req.History, req.Message)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	for delta := range deltas {
		c.SSEvent("delta", delta)
		c.Writer.Flush()
	}

	if err := <-errc; err != nil {
		h.logger.Error("chat stream failed", logging.Err(err))
		c.SSEvent("error", "the assistant is temporarily unavailable")
		c.Writer.Flush()
		return
	}

	c.SSEvent("done", "")
	c.Writer.Flush()
}

func (h *ChatHandler) bindRequest(c *gin.Context) (ChatRequest, bool) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, h.logger, "request body must include analysis and message")
		return req, false
	}
	if req.Message == "" {
		respondBadRequest(c, h.logger, "message must not be empty")
		return req, false
	}
	return req, true
}
