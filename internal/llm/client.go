// Package llm wraps the OpenAI backend behind the two operations the
// pipeline needs: embedding a question and running one chat-completion
// round with the tool catalog.
//
// No retries happen here; a provider failure surfaces to the caller, who
// may re-submit the turn. A re-submission consumes another rate-limit
// slot because the failed attempt never committed an answer.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ErrNoEmbedding indicates the provider returned an empty embedding list.
var ErrNoEmbedding = errors.New("no embedding returned")

// ErrNoCompletion indicates the provider returned no choices.
var ErrNoCompletion = errors.New("no completion returned")

// Client is the OpenAI backend client. Stateless per call; construct once
// and reuse. No explicit teardown is required.
type Client struct {
	api        openai.Client
	chatModel  string
	embedModel string
}

// New creates a Client for the given API key and model names.
func New(apiKey, chatModel, embedModel string) *Client {
	return &Client{
		api:        openai.NewClient(option.WithAPIKey(apiKey)),
		chatModel:  chatModel,
		embedModel: embedModel,
	}
}

// Embed returns the embedding vector for text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.embedModel),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(text),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, ErrNoEmbedding
	}
	return resp.Data[0].Embedding, nil
}

// Complete runs one chat-completion round over the transcript with the
// given tool catalog. The returned turn either carries final text content
// or requests tool calls.
func (c *Client) Complete(
	ctx context.Context,
	messages []openai.ChatCompletionMessageParamUnion,
	tools []openai.ChatCompletionToolParam,
) (*openai.ChatCompletion, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    c.chatModel,
		Messages: messages,
		Tools:    tools,
	})
	if err != nil {
		return nil, fmt.Errorf("completion request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrNoCompletion
	}
	return resp, nil
}
