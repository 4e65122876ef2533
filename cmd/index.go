package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/monisha-km/resume-agent/internal/config"
	"github.com/monisha-km/resume-agent/internal/corpus"
	"github.com/monisha-km/resume-agent/internal/llm"
)

// runIndex rebuilds the corpus embeddings: load the persona documents,
// cut them into chunks, embed each chunk, and write embeddings.json next
// to the documents. Run it whenever the documents change.
func runIndex(cfg *config.Config, logger *slog.Logger) error {
	if err := cfg.ValidateProvider(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	docs, err := corpus.LoadDocuments(cfg.DataDir, logger)
	if err != nil {
		return fmt.Errorf("loading documents: %w", err)
	}

	chunks := corpus.Split(docs.Combined(), cfg.ChunkSize)
	if len(chunks) == 0 {
		return fmt.Errorf("no corpus text to index in %s", cfg.DataDir)
	}
	logger.Info("indexing corpus", "chunks", len(chunks), "chunk_size", cfg.ChunkSize)

	client := llm.New(cfg.OpenAIAPIKey, cfg.ChatModel, cfg.EmbeddingModel)

	vectors := make([][]float64, 0, len(chunks))
	for _, chunk := range chunks {
		vec, err := client.Embed(ctx, chunk.Text)
		if err != nil {
			return fmt.Errorf("embedding chunk %d: %w", chunk.Index, err)
		}
		vectors = append(vectors, vec)
	}

	if err := corpus.WriteEmbeddings(cfg.DataDir, vectors); err != nil {
		return fmt.Errorf("writing embeddings: %w", err)
	}

	logger.Info("index complete", "chunks", len(chunks), "file", corpus.EmbeddingsFile)
	return nil
}
