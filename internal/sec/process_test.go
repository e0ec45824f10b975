// ABOUTME: Tests for HTML filing processing: text extraction, sectioning, chunking
// ABOUTME: Builds synthetic filings in temp directories

package sec

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/finrag/finrag/internal/config"
)

func processorConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DataDir:       t.TempDir(),
		ChunkSize:     50,
		ChunkOverlap:  10,
		MinChunkChars: 20,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestExtractText(t *testing.T) {
	doc := `<html><head><title>Filing</title>
<script>var x = "ignore me";</script>
<style>.a { color: red; }</style></head>
<body><p>Total revenue was <b>$211,915</b> million.</p></body></html>`

	text, err := ExtractText(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}

	if !strings.Contains(text, "Total revenue was") {
		t.Errorf("text = %q, want body content", text)
	}
	if !strings.Contains(text, "$211,915") {
		t.Errorf("text = %q, want nested tag content", text)
	}
	if strings.Contains(text, "ignore me") {
		t.Errorf("text = %q, script content must be dropped", text)
	}
	if strings.Contains(text, "color: red") {
		t.Errorf("text = %q, style content must be dropped", text)
	}
}

func TestExtractSections_FindsItemHeadings(t *testing.T) {
	filler := strings.Repeat("filing text ", 50)
	text := "Item 1. Business " + filler +
		" Item 1A. Risk Factors " + filler +
		" Item 7. Management Discussion and Analysis " + filler +
		" Item 8. Financial Statements " + filler

	sections := extractSections(text)

	for _, name := range []string{"business", "risk_factors", "financial_performance", "financial_statements"} {
		if _, ok := sections[name]; !ok {
			t.Errorf("section %q not found; got %v", name, sortedKeys(sections))
		}
	}
	if _, ok := sections[FullDocumentSection]; ok {
		t.Error("full_document fallback used despite matched headings")
	}
}

func TestExtractSections_FallbackWhenNoHeadings(t *testing.T) {
	text := strings.Repeat("generic annual report text ", 30)

	sections := extractSections(text)

	if len(sections) != 1 {
		t.Fatalf("sections = %v, want only the fallback", sortedKeys(sections))
	}
	if _, ok := sections[FullDocumentSection]; !ok {
		t.Fatalf("sections = %v, want %s", sortedKeys(sections), FullDocumentSection)
	}
}

func TestParseFilename(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		wantCompany string
		wantYear    int
		wantErr     bool
	}{
		{"standard", "MSFT_2023_10K", "MSFT", 2023, false},
		{"two parts", "NVDA_2022", "NVDA", 2022, false},
		{"no separator", "filing", "", 0, true},
		{"non-numeric year", "MSFT_latest", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			company, year, err := parseFilename(tt.filename)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseFilename(%q) error = %v, wantErr %v", tt.filename, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if company != tt.wantCompany || year != tt.wantYear {
				t.Errorf("parseFilename(%q) = %s, %d; want %s, %d",
					tt.filename, company, year, tt.wantCompany, tt.wantYear)
			}
		})
	}
}

func TestProcessFiling(t *testing.T) {
	cfg := processorConfig(t)
	if err := cfg.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs() error = %v", err)
	}

	body := "Item 1. Business " + strings.Repeat("The company sells cloud services and devices. ", 30)
	path := filepath.Join(cfg.RawFilingsDir(), "MSFT_2023.html")
	if err := os.WriteFile(path, []byte("<html><body><p>"+body+"</p></body></html>"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	doc, err := NewProcessor(cfg, discardLogger()).ProcessFiling(path)
	if err != nil {
		t.Fatalf("ProcessFiling() error = %v", err)
	}

	if doc.Company != "MSFT" || doc.Year != 2023 {
		t.Errorf("document identity = %s/%d, want MSFT/2023", doc.Company, doc.Year)
	}
	if doc.TotalChunks == 0 || len(doc.Chunks) != doc.TotalChunks {
		t.Errorf("TotalChunks = %d with %d chunks", doc.TotalChunks, len(doc.Chunks))
	}
	for _, c := range doc.Chunks {
		if c.Company != "MSFT" || c.Year != 2023 {
			t.Errorf("chunk %s has identity %s/%d", c.ChunkID, c.Company, c.Year)
		}
		if c.Section != "business" {
			t.Errorf("chunk %s section = %s, want business", c.ChunkID, c.Section)
		}
	}
}

func TestProcessAll(t *testing.T) {
	cfg := processorConfig(t)
	if err := cfg.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs() error = %v", err)
	}

	body := "Item 1. Business " + strings.Repeat("Revenue from data center products grew strongly. ", 30)
	for _, name := range []string{"NVDA_2022.html", "NVDA_2023.html", "broken-name.html"} {
		path := filepath.Join(cfg.RawFilingsDir(), name)
		if err := os.WriteFile(path, []byte("<html><body>"+body+"</body></html>"), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}

	docs, err := NewProcessor(cfg, discardLogger()).ProcessAll()
	if err != nil {
		t.Fatalf("ProcessAll() error = %v", err)
	}

	// The malformed filename is skipped, not fatal.
	if len(docs) != 2 {
		t.Fatalf("ProcessAll() returned %d documents, want 2", len(docs))
	}
	if docs[0].Year != 2022 || docs[1].Year != 2023 {
		t.Errorf("document years = %d, %d; want 2022, 2023", docs[0].Year, docs[1].Year)
	}

	outPath := filepath.Join(cfg.ProcessedDir(), "processed_documents.json")
	if _, err := os.Stat(outPath); err != nil {
		t.Errorf("processed document set not written: %v", err)
	}
}

func TestProcessAll_NoFilings(t *testing.T) {
	cfg := processorConfig(t)
	if err := cfg.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs() error = %v", err)
	}

	docs, err := NewProcessor(cfg, discardLogger()).ProcessAll()
	if err != nil {
		t.Fatalf("ProcessAll() error = %v", err)
	}
	if docs != nil {
		t.Errorf("ProcessAll() = %v, want nil for empty directory", docs)
	}
}
