package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/monisha-km/resume-agent/internal/config"
	"github.com/monisha-km/resume-agent/internal/corpus"
	"github.com/monisha-km/resume-agent/internal/log"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	summary := "Monisha is a software engineer who builds compilers and loves tennis."
	if err := os.WriteFile(filepath.Join(dir, corpus.SummaryFile), []byte(summary), 0o644); err != nil {
		t.Fatal(err)
	}
	vectors, _ := json.Marshal([][]float64{{0.1, 0.2, 0.3}})
	if err := os.WriteFile(filepath.Join(dir, corpus.EmbeddingsFile), vectors, 0o644); err != nil {
		t.Fatal(err)
	}

	return &config.Config{
		PersonaName:    "Monisha Krishnamurthy",
		DataDir:        dir,
		DBPath:         filepath.Join(dir, "db.sqlite"),
		ChatModel:      "gpt-4o-mini",
		EmbeddingModel: "text-embedding-3-small",
		MaxQuestions:   5,
		AdminSessionID: "monisha_admin",
		TopK:           3,
		ChunkSize:      500,
	}
}

func TestSetup_WiresComponents(t *testing.T) {
	a, err := Setup(testConfig(t), log.NewNop())
	if err != nil {
		t.Fatalf("Setup() error: %v", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			t.Errorf("Close() error: %v", err)
		}
	}()

	if a.Store == nil || a.Corpus == nil || a.LLM == nil || a.Tools == nil || a.Engine == nil {
		t.Fatal("Setup() left components unwired")
	}
	if len(a.Corpus.Chunks) != len(a.Corpus.Vectors) {
		t.Errorf("corpus not parallel: %d chunks, %d vectors", len(a.Corpus.Chunks), len(a.Corpus.Vectors))
	}

	// Migrations must have produced a usable store.
	if err := a.DB.PingContext(context.Background()); err != nil {
		t.Errorf("database not reachable: %v", err)
	}
	if err := a.Store.CreateSession(context.Background(), "smoke"); err != nil {
		t.Errorf("schema not migrated: %v", err)
	}
}

func TestSetup_MissingCorpusFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.DataDir = t.TempDir() // no documents

	if _, err := Setup(cfg, log.NewNop()); err == nil {
		t.Fatal("Setup() should fail without corpus documents")
	}
}
