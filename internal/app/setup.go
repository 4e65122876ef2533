package app

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/monisha-km/resume-agent/internal/config"
	"github.com/monisha-km/resume-agent/internal/corpus"
	"github.com/monisha-km/resume-agent/internal/database"
	"github.com/monisha-km/resume-agent/internal/engine"
	"github.com/monisha-km/resume-agent/internal/llm"
	"github.com/monisha-km/resume-agent/internal/notify"
	"github.com/monisha-km/resume-agent/internal/store"
	"github.com/monisha-km/resume-agent/internal/tools"
)

// Setup creates and initializes the application. Call Close() on the
// returned App to release its resources.
func Setup(cfg *config.Config, logger *slog.Logger) (_ *App, retErr error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Logger: logger}

	// On error, clean up everything already initialized.
	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	db, err := provideDatabase(cfg)
	if err != nil {
		return nil, err
	}
	a.DB = db
	a.Store = store.New(db, logger)

	c, err := corpus.Load(cfg.DataDir, cfg.ChunkSize, logger)
	if err != nil {
		return nil, fmt.Errorf("loading corpus: %w", err)
	}
	a.Corpus = c

	a.LLM = llm.New(cfg.OpenAIAPIKey, cfg.ChatModel, cfg.EmbeddingModel)
	a.Notifier = notify.New(cfg.PushoverToken, cfg.PushoverUser, logger)
	a.Tools = tools.NewDispatcher(a.Notifier, logger)

	a.Engine = engine.New(engine.Config{
		PersonaName:    cfg.PersonaName,
		AdminSessionID: cfg.AdminSessionID,
		MaxQuestions:   cfg.MaxQuestions,
		TopK:           cfg.TopK,
	}, a.Store, a.Corpus, a.LLM, a.LLM, a.Tools, logger)

	return a, nil
}

// provideDatabase opens the sqlite store and applies migrations.
func provideDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return db, nil
}
