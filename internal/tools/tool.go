// Package tools implements the tool dispatcher: the registry of named
// side-effecting actions the model may request mid-conversation, and the
// execution path that turns a tool call into a transcript message.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
)

// Tool couples a tool's catalog entry with its execution logic. Input
// decoding is type-erased so tools with different argument shapes share
// one registry.
type Tool struct {
	name        string
	description string
	parameters  openai.FunctionParameters

	// run decodes the model-supplied JSON arguments and executes.
	run func(ctx context.Context, args json.RawMessage) (any, error)
}

// Name returns the tool's unique identifier.
func (t *Tool) Name() string { return t.name }

// Definition returns the OpenAI function-tool catalog entry.
func (t *Tool) Definition() openai.ChatCompletionToolParam {
	return openai.ChatCompletionToolParam{
		Function: openai.FunctionDefinitionParam{
			Name:        t.name,
			Description: openai.String(t.description),
			Parameters:  t.parameters,
		},
	}
}

// New creates a tool with typed argument handling. The model's JSON
// arguments are unmarshaled into In before the handler runs.
func New[In any](
	name, description string,
	parameters openai.FunctionParameters,
	handler func(ctx context.Context, input In) (any, error),
) *Tool {
	return &Tool{
		name:        name,
		description: description,
		parameters:  parameters,
		run: func(ctx context.Context, args json.RawMessage) (any, error) {
			var input In
			if len(args) > 0 {
				if err := json.Unmarshal(args, &input); err != nil {
					return nil, fmt.Errorf("invalid arguments for %s: %w", name, err)
				}
			}
			return handler(ctx, input)
		},
	}
}

// ToolError is a structured error result returned to the model, letting it
// understand and correct a failed invocation.
type ToolError struct {
	ErrorType string `json:"error_type"`
	Message   string `json:"message"`
}
