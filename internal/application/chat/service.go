package chat

import (
	"context"

	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/config"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/domain/offense"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/infrastructure/monitoring/logging"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/infrastructure/monitoring/prometheus"
)

// Oracle is the conversational collaborator (implemented by legalgpt.Client).
type Oracle interface {
	Reply(ctx context.Context, systemPrompt string, history []offense.ChatMessage, userMessage string) (string, error)
	StreamReply(ctx context.Context, systemPrompt string, history []offense.ChatMessage, userMessage string, onDelta func(delta string) error) (string, error)
}

// Service runs guarded follow-up conversation grounded in an analysis.
type Service struct {
	oracle     Oracle
	guardrails Guardrails
	cfg        config.ChatConfig
	metrics    *prometheus.Metrics // nil disables metrics
	logger     logging.Logger
}

func NewService(oracle Oracle, cfg config.ChatConfig, metrics *prometheus.Metrics, log logging.Logger) *Service {
	return &Service{
		oracle:  oracle,
		cfg:     cfg,
		metrics: metrics,
		logger:  log.Named("chat"),
	}
}

// Ask produces one assistant reply. Guardrail triggers return the canned
// redirect without ever calling the oracle; everything else is forwarded
// with the grounding context and bounded history, and the reply passes
// through disclaimer enforcement.
func (s *Service) Ask(ctx context.Context, analysis *offense.ComprehensiveAnalysis, history []offense.ChatMessage, userMessage string) (string, error) {
	if redirect, ok := s.guard(userMessage); ok {
		return redirect, nil
	}

	reply, err := s.oracle.Reply(ctx, buildSystemPrompt(analysis), s.boundHistory(history), userMessage)
	if err != nil {
		return "", err
	}
	return s.finishReply(reply), nil
}

// StreamAsk is the streaming variant: deltas are sent on the returned
// channel, which is closed when the reply is complete. The stream is
// consumed once and is not restartable. Guardrail redirects arrive as a
// single delta. A missing disclaimer is appended as a final delta after the
// oracle stream ends.
func (s *Service) StreamAsk(ctx context.Context, analysis *offense.ComprehensiveAnalysis, history []offense.ChatMessage, userMessage string) (<-chan string, <-chan error) {
	deltas := make(chan string, 16)
	errc := make(chan error, 1)

	if redirect, ok := s.guard(userMessage); ok {
		deltas <- redirect
		close(deltas)
		close(errc)
		return deltas, errc
	}

	go func() {
		defer close(deltas)
		defer close(errc)

		reply, err := s.oracle.StreamReply(ctx, buildSystemPrompt(analysis), s.boundHistory(history), userMessage, func(delta string) error {
			select {
			case deltas <- delta:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			errc <- err
			return
		}

		if _, appended := EnforceDisclaimer(reply, s.cfg.DisclaimerMinLength); appended {
			s.observeGuardrail("disclaimer_appended")
			select {
			case deltas <- disclaimerFooter:
			case <-ctx.Done():
			}
		}
	}()

	return deltas, errc
}

// guard applies the off-topic and PII checks. The returned bool reports
// whether a redirect short-circuited the turn.
func (s *Service) guard(userMessage string) (string, bool) {
	if s.guardrails.IsOffTopic(userMessage) {
		s.observeGuardrail("off_topic")
		s.logger.Info("off-topic chat message redirected")
		return offTopicRedirect, true
	}
	if s.guardrails.ContainsPII(userMessage) {
		s.observeGuardrail("pii_refused")
		s.logger.Info("chat message refused for PII")
		return piiRedirect, true
	}
	return "", false
}

// SanitizeInput is the redact-and-continue strategy for document-derived
// text: PII spans are replaced and warnings surface to the caller while the
// sanitized text continues on.
func (s *Service) SanitizeInput(input string) (string, []string) {
	sanitized, warnings := s.guardrails.Sanitize(input)
	if len(warnings) > 0 {
		s.observeGuardrail("pii_redacted")
	}
	return sanitized, warnings
}

func (s *Service) finishReply(reply string) string {
	finished, appended := EnforceDisclaimer(reply, s.cfg.DisclaimerMinLength)
	if appended {
		s.observeGuardrail("disclaimer_appended")
	}
	return finished
}

// boundHistory forwards at most MaxHistoryTurns of the most recent turns.
func (s *Service) boundHistory(history []offense.ChatMessage) []offense.ChatMessage {
	max := s.cfg.MaxHistoryTurns
	if max <= 0 || len(history) <= max {
		return history
	}
	return history[len(history)-max:]
}

func (s *Service) observeGuardrail(kind string) {
	if s.metrics != nil {
		s.metrics.GuardrailTriggsTotal.WithLabelValues(kind).Inc()
	}
}
