// Package engine orchestrates a single query end to end: admin override,
// session resolution, per-session rate gate, answer-cache lookup, passage
// retrieval, and the multi-round tool-calling loop against the model
// backend.
//
// One call to Chat is one synchronous pipeline; concurrent conversations
// only share the answer cache, which serializes per-row writes itself.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/openai/openai-go"

	"github.com/monisha-km/resume-agent/internal/corpus"
	"github.com/monisha-km/resume-agent/internal/retriever"
	"github.com/monisha-km/resume-agent/internal/store"
)

const (
	// adminCommand switches the session to the exempt admin identity.
	adminCommand = "/admin"

	// adminConfirmation is returned when the admin command is recognized.
	adminConfirmation = "Admin mode enabled for this session."
)

// unknownMarkers are the answer substrings that flag a question the model
// could not answer; matching answers are logged to the unknown-question
// log once per turn.
var unknownMarkers = []string{"I don't know", "Sorry"}

// State is the conversation state threaded through calls by the caller.
// Only the engine mutates it.
type State struct {
	SessionID string `json:"session_id,omitempty"`
}

// Message is one prior transcript turn supplied by the caller.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Cache is the answer-cache surface the engine consumes.
type Cache interface {
	GetSession(ctx context.Context, sessionID string) (store.Session, error)
	CreateSession(ctx context.Context, sessionID string) error
	IncrementQuestions(ctx context.Context, sessionID string) error
	LookupAnswer(ctx context.Context, question string) (string, error)
	UpsertQA(ctx context.Context, question, answer string) error
	LogUnknownQuestion(ctx context.Context, question string) error
}

// Embedder produces an embedding vector for a query.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Completer runs one chat-completion round against the model backend.
type Completer interface {
	Complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, tools []openai.ChatCompletionToolParam) (*openai.ChatCompletion, error)
}

// Dispatcher executes tool calls and supplies the tool catalog.
type Dispatcher interface {
	Catalog() []openai.ChatCompletionToolParam
	Dispatch(ctx context.Context, call openai.ChatCompletionMessageToolCall) openai.ChatCompletionMessageParamUnion
}

// Config holds the engine's pipeline settings.
type Config struct {
	// PersonaName is the person the agent speaks as.
	PersonaName string

	// AdminSessionID is exempt from the question limit.
	AdminSessionID string

	// MaxQuestions is the per-session counted-question limit.
	MaxQuestions int

	// TopK is the number of corpus chunks retrieved per query.
	TopK int
}

// Engine is the conversation engine. Construct once with its collaborators
// and reuse across conversations.
type Engine struct {
	cfg       Config
	cache     Cache
	corpus    *corpus.Corpus
	embedder  Embedder
	completer Completer
	tools     Dispatcher
	logger    *slog.Logger
}

// New creates an Engine. A nil logger falls back to slog.Default().
func New(cfg Config, cache Cache, c *corpus.Corpus, embedder Embedder, completer Completer, tools Dispatcher, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:       cfg,
		cache:     cache,
		corpus:    c,
		embedder:  embedder,
		completer: completer,
		tools:     tools,
		logger:    logger,
	}
}

// LimitMessage is the fixed response once a session exhausts its limit.
func (e *Engine) LimitMessage() string {
	return fmt.Sprintf("You have reached the %d-question limit.", e.cfg.MaxQuestions)
}

// Chat answers one user message. It returns the answer text and the
// updated conversation state. Rate limiting and admin handling are normal
// (non-error) branches; only provider failures return a non-nil error, in
// which case state already committed (session counter) stays committed.
func (e *Engine) Chat(ctx context.Context, message string, history []Message, st State) (string, State, error) {
	// Admin override bypasses every other stage.
	if strings.EqualFold(strings.TrimSpace(message), adminCommand) {
		st.SessionID = e.cfg.AdminSessionID
		e.logger.Info("admin mode enabled")
		return adminConfirmation, st, nil
	}

	// Resolve the session, minting one on first contact.
	if st.SessionID == "" {
		st.SessionID = uuid.NewString()
		if err := e.cache.CreateSession(ctx, st.SessionID); err != nil {
			// Fail open: the gate below recreates the row if needed.
			e.logger.Warn("failed to persist new session", "error", err)
		}
		e.logger.Debug("session created", "session_id", st.SessionID)
	}

	// Rate gate. The increment happens before the cache lookup, so a
	// counted question consumes a slot even when it hits the cache.
	if st.SessionID != e.cfg.AdminSessionID {
		limited, err := e.checkAndCount(ctx, st.SessionID)
		if err != nil {
			e.logger.Warn("rate gate degraded", "error", err)
		}
		if limited {
			e.logger.Info("question limit reached", "session_id", st.SessionID)
			return e.LimitMessage(), st, nil
		}
	}

	// Exact-match cache. A read failure degrades to a miss.
	if answer, err := e.cache.LookupAnswer(ctx, message); err == nil {
		e.logger.Info("cache hit", "session_id", st.SessionID)
		return answer, st, nil
	} else if !errors.Is(err, store.ErrAnswerNotFound) {
		e.logger.Warn("cache lookup failed, treating as miss", "error", err)
	}

	// Retrieval.
	queryVec, err := e.embedder.Embed(ctx, message)
	if err != nil {
		return "", st, fmt.Errorf("embedding question: %w", err)
	}
	chunks := retriever.Retrieve(queryVec, e.corpus.Chunks, e.corpus.Vectors, e.cfg.TopK)
	retrieved := strings.Join(chunks, "\n\n")

	// Model round(s).
	answer, err := e.converse(ctx, message, history, retrieved)
	if err != nil {
		return "", st, err
	}

	// Commit the answer. A write failure must not invalidate the answer
	// already computed.
	if err := e.cache.UpsertQA(ctx, message, answer); err != nil {
		e.logger.Warn("failed to cache answer", "error", err)
	}
	if containsUnknownMarker(answer) {
		if err := e.cache.LogUnknownQuestion(ctx, message); err != nil {
			e.logger.Warn("failed to log unknown question", "error", err)
		}
	}

	return answer, st, nil
}

// checkAndCount applies the per-session gate: returns true when the
// session is over the limit, otherwise counts this question. A missing or
// unreadable session row is recreated and counted rather than skipped.
func (e *Engine) checkAndCount(ctx context.Context, sessionID string) (bool, error) {
	sess, err := e.cache.GetSession(ctx, sessionID)
	switch {
	case err == nil:
		if sess.QuestionsAsked >= e.cfg.MaxQuestions {
			return true, nil
		}
	case errors.Is(err, store.ErrSessionNotFound):
		if createErr := e.cache.CreateSession(ctx, sessionID); createErr != nil {
			return false, createErr
		}
	default:
		// Storage read failure: err toward counting, never toward
		// skipping the limit.
		if createErr := e.cache.CreateSession(ctx, sessionID); createErr != nil {
			return false, errors.Join(err, createErr)
		}
	}

	if err := e.cache.IncrementQuestions(ctx, sessionID); err != nil {
		return false, err
	}
	return false, nil
}

// converse runs the tool-calling loop: ask the model, execute any
// requested tools, reinject results, and repeat until a turn arrives with
// no tool calls.
func (e *Engine) converse(ctx context.Context, message string, history []Message, retrieved string) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, openai.SystemMessage(e.systemPrompt(retrieved)))
	for _, m := range history {
		switch m.Role {
		case "assistant":
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}
	messages = append(messages, openai.UserMessage(message))

	catalog := e.tools.Catalog()

	for {
		resp, err := e.completer.Complete(ctx, messages, catalog)
		if err != nil {
			return "", fmt.Errorf("model round: %w", err)
		}

		choice := resp.Choices[0]
		if choice.FinishReason != "tool_calls" {
			return choice.Message.Content, nil
		}

		messages = append(messages, choice.Message.ToParam())
		for _, call := range choice.Message.ToolCalls {
			messages = append(messages, e.tools.Dispatch(ctx, call))
		}
	}
}

func containsUnknownMarker(answer string) bool {
	for _, marker := range unknownMarkers {
		if strings.Contains(answer, marker) {
			return true
		}
	}
	return false
}
