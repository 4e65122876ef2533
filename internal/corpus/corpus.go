// Package corpus holds the immutable retrieval corpus: ordered text chunks
// cut from the persona's background documents, and the parallel embedding
// vectors produced offline by the index command.
//
// The corpus is loaded once per process and treated as read-only thereafter.
package corpus

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Default file names inside the data directory.
const (
	ResumeFile     = "resume.pdf"
	SummaryFile    = "summary.txt"
	GitHubFile     = "github_profile.txt"
	EmbeddingsFile = "embeddings.json"
)

// Chunk is one fixed-size window of the concatenated corpus text.
type Chunk struct {
	Index int
	Text  string
}

// Documents are the persona's source texts, kept whole for prompt assembly.
type Documents struct {
	Resume        string
	Summary       string
	GitHubProfile string
}

// Combined concatenates the non-empty documents with blank-line separators,
// in the same order the index command embeds them.
func (d Documents) Combined() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{d.Resume, d.Summary, d.GitHubProfile} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}

// Corpus is the loaded retrieval corpus.
// Chunks and Vectors are parallel: Vectors[i] embeds Chunks[i].Text.
type Corpus struct {
	Documents Documents
	Chunks    []Chunk
	Vectors   [][]float64
}

// Split cuts text into consecutive windows of size characters (runes),
// trimming whitespace and dropping empty windows.
func Split(text string, size int) []Chunk {
	runes := []rune(text)
	chunks := make([]Chunk, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		window := strings.TrimSpace(string(runes[start:end]))
		if window == "" {
			continue
		}
		chunks = append(chunks, Chunk{Index: len(chunks), Text: window})
	}
	return chunks
}

// LoadDocuments reads the persona documents from dir. Individual files may
// be absent, but at least one must yield text.
func LoadDocuments(dir string, logger *slog.Logger) (Documents, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var docs Documents

	if text, err := extractPDFText(filepath.Join(dir, ResumeFile)); err != nil {
		logger.Warn("resume not loaded", "file", ResumeFile, "error", err)
	} else {
		docs.Resume = text
	}

	docs.Summary = readOptionalText(filepath.Join(dir, SummaryFile), logger)
	docs.GitHubProfile = readOptionalText(filepath.Join(dir, GitHubFile), logger)

	if docs.Combined() == "" {
		return Documents{}, fmt.Errorf("no corpus documents found in %s", dir)
	}
	return docs, nil
}

// Load builds the full corpus from dir: documents, chunks of chunkSize
// characters, and the embedding vectors produced by the index command.
//
// Chunks and vectors must be parallel; on a cardinality mismatch both are
// truncated to the shorter length so ranking stays well defined.
func Load(dir string, chunkSize int, logger *slog.Logger) (*Corpus, error) {
	if logger == nil {
		logger = slog.Default()
	}

	docs, err := LoadDocuments(dir, logger)
	if err != nil {
		return nil, err
	}

	chunks := Split(docs.Combined(), chunkSize)

	vectors, err := loadEmbeddings(filepath.Join(dir, EmbeddingsFile))
	if err != nil {
		return nil, fmt.Errorf("loading embeddings (run the index command first?): %w", err)
	}

	if len(chunks) != len(vectors) {
		n := min(len(chunks), len(vectors))
		logger.Warn("chunk/embedding count mismatch, truncating",
			"chunks", len(chunks), "embeddings", len(vectors), "using", n)
		chunks = chunks[:n]
		vectors = vectors[:n]
	}

	logger.Info("corpus loaded", "chunks", len(chunks), "chunk_size", chunkSize)

	return &Corpus{Documents: docs, Chunks: chunks, Vectors: vectors}, nil
}

// WriteEmbeddings persists vectors to the embeddings file in dir.
// Used by the index command.
func WriteEmbeddings(dir string, vectors [][]float64) error {
	data, err := json.Marshal(vectors)
	if err != nil {
		return fmt.Errorf("marshal embeddings: %w", err)
	}
	path := filepath.Join(dir, EmbeddingsFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write embeddings: %w", err)
	}
	return nil
}

func loadEmbeddings(path string) ([][]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	var vectors [][]float64
	if err := json.Unmarshal(data, &vectors); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return vectors, nil
}

func readOptionalText(path string, logger *slog.Logger) string {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("document not loaded", "file", filepath.Base(path), "error", err)
		return ""
	}
	return strings.TrimSpace(string(data))
}
