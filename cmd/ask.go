package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/monisha-km/resume-agent/internal/app"
	"github.com/monisha-km/resume-agent/internal/config"
	"github.com/monisha-km/resume-agent/internal/engine"
)

// runAsk runs one conversation turn from the command line and prints the
// answer.
func runAsk(cfg *config.Config, logger *slog.Logger, args []string) error {
	if err := cfg.ValidateProvider(); err != nil {
		return err
	}

	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return errors.New("usage: resume-agent ask <question>")
	}

	a, err := app.Setup(cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	answer, _, err := a.Engine.Chat(context.Background(), question, nil, engine.State{})
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	fmt.Println(answer)
	return nil
}
