package corpus

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/monisha-km/resume-agent/internal/log"
)

func TestSplit_FixedWindows(t *testing.T) {
	text := strings.Repeat("a", 1200)
	chunks := Split(text, 500)

	if len(chunks) != 3 {
		t.Fatalf("Split() returned %d chunks, want 3", len(chunks))
	}
	if len(chunks[0].Text) != 500 || len(chunks[1].Text) != 500 || len(chunks[2].Text) != 200 {
		t.Errorf("chunk lengths = %d,%d,%d, want 500,500,200",
			len(chunks[0].Text), len(chunks[1].Text), len(chunks[2].Text))
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d has Index %d", i, c.Index)
		}
	}
}

func TestSplit_DropsEmptyWindows(t *testing.T) {
	// A window that is all whitespace must be dropped, and the following
	// chunk re-indexed.
	text := strings.Repeat("x", 500) + strings.Repeat(" ", 500) + "tail"
	chunks := Split(text, 500)

	if len(chunks) != 2 {
		t.Fatalf("Split() returned %d chunks, want 2", len(chunks))
	}
	if chunks[1].Text != "tail" || chunks[1].Index != 1 {
		t.Errorf("chunks[1] = %+v, want {Index:1 Text:tail}", chunks[1])
	}
}

func TestSplit_EmptyText(t *testing.T) {
	if got := Split("", 500); len(got) != 0 {
		t.Errorf("Split(\"\") returned %d chunks, want 0", len(got))
	}
}

func TestDocuments_Combined(t *testing.T) {
	d := Documents{Summary: "summary", GitHubProfile: "github"}
	if got := d.Combined(); got != "summary\n\ngithub" {
		t.Errorf("Combined() = %q", got)
	}
}

func writeTestCorpus(t *testing.T, dir string, vectors [][]float64) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, SummaryFile), []byte("I build compilers and play tennis."), 0o644); err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(vectors)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, EmbeddingsFile), data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeTestCorpus(t, dir, [][]float64{{0.1, 0.2}})

	c, err := Load(dir, 500, log.NewNop())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(c.Chunks) != 1 || len(c.Vectors) != 1 {
		t.Errorf("corpus has %d chunks / %d vectors, want 1/1", len(c.Chunks), len(c.Vectors))
	}
	if c.Documents.Summary == "" {
		t.Error("summary document not loaded")
	}
}

func TestLoad_TruncatesOnCardinalityMismatch(t *testing.T) {
	dir := t.TempDir()
	// One chunk of text, but three vectors on disk.
	writeTestCorpus(t, dir, [][]float64{{0.1}, {0.2}, {0.3}})

	c, err := Load(dir, 500, log.NewNop())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(c.Chunks) != len(c.Vectors) {
		t.Fatalf("chunks (%d) and vectors (%d) not parallel after load", len(c.Chunks), len(c.Vectors))
	}
	if len(c.Chunks) != 1 {
		t.Errorf("expected truncation to 1, got %d", len(c.Chunks))
	}
}

func TestLoad_MissingEmbeddings(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, SummaryFile), []byte("text"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir, 500, log.NewNop()); err == nil {
		t.Error("Load() without embeddings.json should error")
	}
}

func TestLoadDocuments_EmptyDir(t *testing.T) {
	if _, err := LoadDocuments(t.TempDir(), log.NewNop()); err == nil {
		t.Error("LoadDocuments() on empty dir should error")
	}
}

func TestWriteEmbeddings_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	vectors := [][]float64{{1, 2, 3}, {4, 5, 6}}

	if err := WriteEmbeddings(dir, vectors); err != nil {
		t.Fatalf("WriteEmbeddings() error: %v", err)
	}

	got, err := loadEmbeddings(filepath.Join(dir, EmbeddingsFile))
	if err != nil {
		t.Fatalf("loadEmbeddings() error: %v", err)
	}
	if len(got) != 2 || got[1][2] != 6 {
		t.Errorf("round trip mismatch: %v", got)
	}
}
