package app

import (
	"context"

	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/domain/offense"
	"github.com/charlesmartinedd/k12-background-check-interpreter/pkg/errors"
)

// Stand-ins for unconfigured oracles. The verification pipeline treats any
// stage error as "source did not find it", so these keep the cascade intact
// without special-casing missing credentials throughout the application
// layer.

type unavailableRetriever struct{}

func (unavailableRetriever) RetrieveStatute(context.Context, string) (*offense.RetrievalFinding, error) {
	return nil, errors.New(errors.ErrCodeOracleUnavailable, "statute retrieval is not configured")
}

func (unavailableRetriever) RetrieveK12Rules(context.Context, string) (*offense.RetrievalFinding, error) {
	return nil, errors.New(errors.ErrCodeOracleUnavailable, "statute retrieval is not configured")
}

type unavailableAnalyzer struct{}

func (unavailableAnalyzer) Classify(context.Context, string, string) (*offense.AIFinding, error) {
	return nil, errors.New(errors.ErrCodeOracleUnavailable, "legal analysis is not configured")
}

type unavailableSearcher struct{}

func (unavailableSearcher) Search(context.Context, offense.NormalizedCode) (*offense.SearchFinding, error) {
	return nil, errors.New(errors.ErrCodeOracleUnavailable, "web search is not configured")
}

type unavailableChat struct{}

func (unavailableChat) Reply(context.Context, string, []offense.ChatMessage, string) (string, error) {
	return "", errors.New(errors.ErrCodeChatUnavailable, "the chat oracle is not configured")
}

func (unavailableChat) StreamReply(context.Context, string, []offense.ChatMessage, string, func(string) error) (string, error) {
	return "", errors.New(errors.ErrCodeChatUnavailable, "the chat oracle is not configured")
}
