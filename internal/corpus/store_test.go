// ABOUTME: Tests for the chunk store and word-window chunker
// ABOUTME: Exercises both document-set shapes via temp data directories

package corpus

import (
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/finrag/finrag/internal/config"
	"github.com/finrag/finrag/internal/models"
)

func testStore(t *testing.T) (*Store, *config.Config) {
	t.Helper()
	cfg := &config.Config{DataDir: t.TempDir(), MinChunkChars: 100}
	return NewStore(cfg, slog.New(slog.DiscardHandler)), cfg
}

func sentenceBlock(words int) string {
	parts := make([]string, words)
	for i := range parts {
		parts[i] = "revenue"
	}
	return strings.Join(parts, " ")
}

func TestLoad_NoDataReturnsEmpty(t *testing.T) {
	store, _ := testStore(t)

	chunks, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("Load() returned %d chunks, want 0", len(chunks))
	}
}

func TestLoad_APIDocumentSet(t *testing.T) {
	store, cfg := testStore(t)

	filings := []FilingData{
		{
			Company:   "Microsoft",
			Year:      2023,
			CIK:       "789019",
			FilingURL: "https://www.sec.gov/example",
			Sections: map[string]Section{
				"financial_performance": {Item: "7", Content: sentenceBlock(40)},
				"business":              {Item: "1", Content: sentenceBlock(40)},
			},
		},
	}
	path := filepath.Join(cfg.RawFilingsDir(), APIDataFile)
	if err := SaveJSON(path, filings); err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}

	chunks, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("Load() returned %d chunks, want 2", len(chunks))
	}

	// Section names sort alphabetically so chunk order is stable.
	if chunks[0].Section != "business" || chunks[1].Section != "financial_performance" {
		t.Errorf("section order = [%s %s], want [business financial_performance]",
			chunks[0].Section, chunks[1].Section)
	}
	if want := models.NewChunkID("Microsoft", 2023, "business", 0); chunks[0].ChunkID != want {
		t.Errorf("ChunkID = %s, want %s", chunks[0].ChunkID, want)
	}
	if chunks[0].FilingURL != "https://www.sec.gov/example" {
		t.Errorf("FilingURL = %s, want the filing URL carried through", chunks[0].FilingURL)
	}
}

func TestLoad_ProcessedDocumentSet(t *testing.T) {
	store, cfg := testStore(t)

	docs := []ProcessedDocument{
		{
			Company:     "NVIDIA",
			Year:        2023,
			Filename:    "NVDA_2023.html",
			TotalChunks: 2,
			Sections:    []string{"business"},
			Chunks: []models.Chunk{
				{Text: "chunk one", Company: "NVIDIA", Year: 2023, Section: "business", ChunkID: "NVIDIA_2023_business_0"},
				{Text: "chunk two", Company: "NVIDIA", Year: 2023, Section: "business", ChunkID: "NVIDIA_2023_business_1"},
			},
		},
	}
	path := filepath.Join(cfg.ProcessedDir(), ProcessedFile)
	if err := SaveJSON(path, docs); err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}

	chunks, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("Load() returned %d chunks, want 2", len(chunks))
	}
	if chunks[0].ChunkID != "NVIDIA_2023_business_0" {
		t.Errorf("chunks[0].ChunkID = %s, want NVIDIA_2023_business_0", chunks[0].ChunkID)
	}
}

func TestLoad_PrefersAPIDocumentSet(t *testing.T) {
	store, cfg := testStore(t)

	filings := []FilingData{{
		Company: "Google",
		Year:    2023,
		Sections: map[string]Section{
			"business": {Content: sentenceBlock(40)},
		},
	}}
	if err := SaveJSON(filepath.Join(cfg.RawFilingsDir(), APIDataFile), filings); err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}

	docs := []ProcessedDocument{{
		Company: "NVIDIA",
		Chunks:  []models.Chunk{{Text: "processed", Company: "NVIDIA"}},
	}}
	if err := SaveJSON(filepath.Join(cfg.ProcessedDir(), ProcessedFile), docs); err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}

	chunks, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	for _, c := range chunks {
		if c.Company != "Google" {
			t.Fatalf("chunk company = %s, API document set must win", c.Company)
		}
	}
}

func TestChunkWords_Windows(t *testing.T) {
	words := make([]string, 10)
	for i := range words {
		words[i] = strings.Repeat("w", 15)
	}
	text := strings.Join(words, " ")

	chunks := ChunkWords(text, 4, 1, 10)

	// Windows advance by maxWords-overlap = 3: [0:4] [3:7] [6:10]; the
	// last window reaches the end of the text, so iteration stops there.
	if len(chunks) != 3 {
		t.Fatalf("ChunkWords() returned %d chunks, want 3: %v", len(chunks), chunks)
	}
	first := strings.Fields(chunks[0])
	second := strings.Fields(chunks[1])
	if len(first) != 4 {
		t.Errorf("first window has %d words, want 4", len(first))
	}
	if first[3] != second[0] {
		t.Errorf("overlap broken: %q vs %q", first[3], second[0])
	}
}

func TestChunkWords_MinCharsFilter(t *testing.T) {
	chunks := ChunkWords("tiny text", 5, 1, 100)
	if len(chunks) != 0 {
		t.Errorf("ChunkWords() = %v, want short windows discarded", chunks)
	}
}

func TestChunkWords_InvalidParameters(t *testing.T) {
	tests := []struct {
		name     string
		maxWords int
		overlap  int
	}{
		{"zero window", 0, 0},
		{"negative overlap", 5, -1},
		{"overlap equals window", 5, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChunkWords("some words here", tt.maxWords, tt.overlap, 0); got != nil {
				t.Errorf("ChunkWords() = %v, want nil", got)
			}
		})
	}
}

func TestChunkWords_EmptyText(t *testing.T) {
	if got := ChunkWords("", 5, 1, 0); len(got) != 0 {
		t.Errorf("ChunkWords(\"\") = %v, want none", got)
	}
}

func TestSaveLoadJSON_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "data.json")

	in := FilingData{Company: "Microsoft", Year: 2023, CIK: "789019"}
	if err := SaveJSON(path, in); err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}

	var out FilingData
	if err := LoadJSON(path, &out); err != nil {
		t.Fatalf("LoadJSON() error = %v", err)
	}
	if out.Company != in.Company || out.Year != in.Year || out.CIK != in.CIK {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestLoadJSON_MissingFile(t *testing.T) {
	var out FilingData
	if err := LoadJSON(filepath.Join(t.TempDir(), "missing.json"), &out); err == nil {
		t.Fatal("LoadJSON() expected error for missing file")
	}
}
