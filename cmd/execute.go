// Package cmd contains the command-line entry points: serve, ask, index,
// version, and help. All application logic lives here and below, leaving
// main.go as a minimal entry point.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/monisha-km/resume-agent/internal/config"
	"github.com/monisha-km/resume-agent/internal/log"
)

// Version information (injected at build time via ldflags).
var (
	AppVersion = "0.1.0"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

// Execute is the main entry point for the resume-agent CLI. It handles
// initialization and command routing, and is designed to be called from
// main().
func Execute() error {
	// version and help work even when config or env is invalid.
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "--version", "-v":
			printVersionInfo()
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		}
	}

	// Secrets commonly live in a local .env during development; a missing
	// file is not an error.
	_ = godotenv.Load()

	logger := initLogger()
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "serve":
		return runServe(cfg, logger)
	case "ask":
		return runAsk(cfg, logger, os.Args[2:])
	case "index":
		return runIndex(cfg, logger)
	default:
		printHelp()
		return fmt.Errorf("unknown command %q", command)
	}
}

// initLogger builds the process logger. DEBUG enables debug level,
// LOG_FORMAT=json switches to JSON output.
func initLogger() *slog.Logger {
	cfg := log.Config{Level: slog.LevelInfo, JSON: os.Getenv("LOG_FORMAT") == "json"}
	if os.Getenv("DEBUG") != "" {
		cfg.Level = slog.LevelDebug
	}
	return log.New(cfg)
}

func printHelp() {
	fmt.Println("resume-agent - conversational resume agent")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  resume-agent serve            Start the HTTP API server (default)")
	fmt.Println("  resume-agent ask <question>   Ask one question and print the answer")
	fmt.Println("  resume-agent index            Rebuild the corpus embeddings")
	fmt.Println("  resume-agent version          Show version information")
	fmt.Println("  resume-agent help             Show this help")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  OPENAI_API_KEY     Required: OpenAI API key")
	fmt.Println("  PUSHOVER_TOKEN     Optional: Pushover application token")
	fmt.Println("  PUSHOVER_USER      Optional: Pushover user key")
	fmt.Println("  DEBUG              Optional: enable debug logging")
	fmt.Println("  LOG_FORMAT         Optional: set to 'json' for JSON logs")
}
