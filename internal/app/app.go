// Package app wires the application together: storage, corpus, model
// backend, notification sink, tool dispatcher, and the conversation
// engine. Both serving and one-shot commands build on the same App.
package app

import (
	"database/sql"
	"log/slog"

	"github.com/monisha-km/resume-agent/internal/config"
	"github.com/monisha-km/resume-agent/internal/corpus"
	"github.com/monisha-km/resume-agent/internal/engine"
	"github.com/monisha-km/resume-agent/internal/llm"
	"github.com/monisha-km/resume-agent/internal/notify"
	"github.com/monisha-km/resume-agent/internal/store"
	"github.com/monisha-km/resume-agent/internal/tools"
)

// App holds the initialized application components.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	DB       *sql.DB
	Store    *store.Store
	Corpus   *corpus.Corpus
	LLM      *llm.Client
	Notifier *notify.Client
	Tools    *tools.Dispatcher
	Engine   *engine.Engine
}

// Close releases everything Setup acquired.
func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
