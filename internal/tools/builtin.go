package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"
)

// recorded is the fixed success result of both built-in tools.
var recorded = map[string]string{"recorded": "ok"}

// recordUserDetailsInput carries a visitor's contact details.
type recordUserDetailsInput struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// recordUserDetailsTool records that a visitor wants to get in touch.
// Sink failures are swallowed here: losing a push notification must never
// fail the conversation.
func recordUserDetailsTool(sink Notifier, logger *slog.Logger) *Tool {
	params := openai.FunctionParameters{
		"type": "object",
		"properties": map[string]any{
			"email": map[string]any{
				"type":        "string",
				"description": "The email address of this user",
			},
			"name": map[string]any{
				"type":        "string",
				"description": "The user's name, if they provided it",
			},
			"notes": map[string]any{
				"type":        "string",
				"description": "Any additional information about the conversation that's worth recording to give context",
			},
		},
		"required":             []string{"email"},
		"additionalProperties": false,
	}

	return New("record_user_details",
		"Use this tool to record that a user is interested in being in touch and provided an email address",
		params,
		func(ctx context.Context, in recordUserDetailsInput) (any, error) {
			name := in.Name
			if name == "" {
				name = "Name not provided"
			}
			notes := in.Notes
			if notes == "" {
				notes = "not provided"
			}
			text := fmt.Sprintf("Recording %s with email %s and notes %s", name, in.Email, notes)
			if err := sink.Send(ctx, text); err != nil {
				logger.Warn("notification sink unreachable", "tool", "record_user_details", "error", err)
			}
			return recorded, nil
		})
}

// recordUnknownQuestionInput carries a question the model could not answer.
type recordUnknownQuestionInput struct {
	Question string `json:"question"`
}

// recordUnknownQuestionTool flags a question the model had no answer for.
func recordUnknownQuestionTool(sink Notifier, logger *slog.Logger) *Tool {
	params := openai.FunctionParameters{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":        "string",
				"description": "The question that couldn't be answered",
			},
		},
		"required":             []string{"question"},
		"additionalProperties": false,
	}

	return New("record_unknown_question",
		"Always use this tool to record any question that couldn't be answered as you didn't know the answer",
		params,
		func(ctx context.Context, in recordUnknownQuestionInput) (any, error) {
			if err := sink.Send(ctx, fmt.Sprintf("Recording %s", in.Question)); err != nil {
				logger.Warn("notification sink unreachable", "tool", "record_unknown_question", "error", err)
			}
			return recorded, nil
		})
}
