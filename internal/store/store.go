// Package store implements the answer cache: session question counters,
// exact-match question/answer pairs, and the unknown-question log.
//
// Every operation is a single statement against one logical row, so plain
// autocommit statements give the per-row serialization the pipeline needs;
// no multi-statement transactions are required.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

// Sentinel errors, checked with errors.Is().
var (
	// ErrSessionNotFound indicates no row exists for the session id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrAnswerNotFound indicates no cached answer exists for the question.
	ErrAnswerNotFound = errors.New("answer not found")
)

// Session is one visitor session row.
type Session struct {
	ID             int64
	SessionID      string
	QuestionsAsked int
}

// Store manages the answer cache on a SQLite backend.
// Safe for concurrent use by multiple conversations.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a Store. A nil logger falls back to slog.Default().
func New(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// GetSession retrieves a session row by its session id.
// Returns ErrSessionNotFound if no row exists.
func (s *Store) GetSession(ctx context.Context, sessionID string) (Session, error) {
	var sess Session
	err := s.db.QueryRowContext(ctx,
		"SELECT id, session_id, questions_asked FROM sessions WHERE session_id = ?",
		sessionID,
	).Scan(&sess.ID, &sess.SessionID, &sess.QuestionsAsked)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("session %q: %w", sessionID, ErrSessionNotFound)
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to get session: %w", err)
	}
	return sess, nil
}

// CreateSession inserts a session row with a zero counter.
// Creating a session id that already exists is a no-op.
func (s *Store) CreateSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO sessions (session_id, questions_asked) VALUES (?, 0) ON CONFLICT(session_id) DO NOTHING",
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// IncrementQuestions atomically increments the counter for an existing
// session. A missing row is a no-op, not an error.
func (s *Store) IncrementQuestions(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET questions_asked = questions_asked + 1 WHERE session_id = ?",
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to increment questions: %w", err)
	}
	return nil
}

// LookupAnswer returns the cached answer for the exact question text.
// Returns ErrAnswerNotFound on a miss.
func (s *Store) LookupAnswer(ctx context.Context, question string) (string, error) {
	var answer string
	err := s.db.QueryRowContext(ctx,
		"SELECT answer FROM qa WHERE question = ?", question,
	).Scan(&answer)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrAnswerNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up answer: %w", err)
	}
	return answer, nil
}

// UpsertQA stores an answer keyed by question text, overwriting any
// previously stored answer for the same question.
func (s *Store) UpsertQA(ctx context.Context, question, answer string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO qa (question, answer) VALUES (?, ?) ON CONFLICT(question) DO UPDATE SET answer = excluded.answer",
		question, answer,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert qa: %w", err)
	}
	s.logger.Debug("cached answer", "question_len", len(question))
	return nil
}

// LogUnknownQuestion appends a question to the unknown-question log.
// Repeated texts produce repeated rows; the log is never updated in place.
func (s *Store) LogUnknownQuestion(ctx context.Context, question string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO unknown_questions (question) VALUES (?)", question,
	)
	if err != nil {
		return fmt.Errorf("failed to log unknown question: %w", err)
	}
	s.logger.Debug("logged unknown question", "question_len", len(question))
	return nil
}

// CountUnknownQuestions returns the number of logged rows matching the
// exact question text. Used by the admin surface and tests.
func (s *Store) CountUnknownQuestions(ctx context.Context, question string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM unknown_questions WHERE question = ?", question,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count unknown questions: %w", err)
	}
	return n, nil
}
