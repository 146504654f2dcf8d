package legalgpt

import (
	"context"

	"github.com/openai/openai-go"

	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/domain/offense"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/intelligence/common"
	"github.com/charlesmartinedd/k12-background-check-interpreter/pkg/errors"
)

// Reply produces one assistant turn. The system prompt carries the analysis
// context assembled by the chat service; history is the prior conversation.
func (c *Client) Reply(ctx context.Context, systemPrompt string, history []offense.ChatMessage, userMessage string) (string, error) {
	params := c.chatParams(systemPrompt, history, userMessage)

	return common.Retry(ctx, c.policy, func(ctx context.Context) (string, error) {
		callCtx := ctx
		if c.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}

		resp, err := c.api.Chat.Completions.New(callCtx, params)
		if err != nil {
			return "", c.classifyErr(ctx, err)
		}
		if len(resp.Choices) == 0 {
			return "", errors.New(errors.ErrCodeOracleMalformed, "openai returned no choices")
		}
		return resp.Choices[0].Message.Content, nil
	})
}

// StreamReply streams one assistant turn, invoking onDelta for every content
// fragment as it arrives and returning the complete reply. A non-nil error
// from onDelta aborts the stream. Streaming calls are not retried: partial
// output may already have reached the client.
func (c *Client) StreamReply(ctx context.Context, systemPrompt string, history []offense.ChatMessage, userMessage string, onDelta func(delta string) error) (string, error) {
	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	stream := c.api.Chat.Completions.NewStreaming(callCtx, c.chatParams(systemPrompt, history, userMessage))
	defer stream.Close()

	acc := openai.ChatCompletionAccumulator{}
	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		if err := onDelta(delta); err != nil {
			return "", err
		}
	}
	if err := stream.Err(); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeChatUnavailable, "chat stream failed")
	}
	if len(acc.Choices) == 0 {
		return "", errors.New(errors.ErrCodeOracleMalformed, "chat stream produced no choices")
	}
	return acc.Choices[0].Message.Content, nil
}

func (c *Client) chatParams(systemPrompt string, history []offense.ChatMessage, userMessage string) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, openai.SystemMessage(systemPrompt))
	for _, m := range history {
		switch m.Role {
		case offense.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		case offense.RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}
	messages = append(messages, openai.UserMessage(userMessage))

	return openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    messages,
		Temperature: openai.Float(c.temperature),
	}
}
