// ABOUTME: Filing processor: HTML text extraction, section detection, and chunking
// ABOUTME: Converts downloaded filing HTML into the processed document set
package sec

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/finrag/finrag/internal/config"
	"github.com/finrag/finrag/internal/corpus"
	"github.com/finrag/finrag/internal/finparse"
	"github.com/finrag/finrag/internal/models"
)

// sectionChars bounds the text taken after a detected section heading.
const sectionChars = 5000

// fullDocumentChars bounds the fallback when no section heading matched.
const fullDocumentChars = 10000

// FullDocumentSection labels chunks when no 10-K item boundaries were found.
const FullDocumentSection = "full_document"

// Heading patterns for the 10-K items of interest. Evaluated against the
// cleaned full text, case-insensitively.
var sectionPatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"business", regexp.MustCompile(`(?i)item\s+1[\.\s]*business`)},
	{"risk_factors", regexp.MustCompile(`(?i)item\s+1a[\.\s]*risk\s+factors`)},
	{"financial_performance", regexp.MustCompile(`(?i)item\s+7[\.\s]*management.*discussion`)},
	{"financial_statements", regexp.MustCompile(`(?i)item\s+8[\.\s]*financial\s+statements`)},
}

// Processor chunks downloaded filing HTML into the processed document set.
type Processor struct {
	cfg *config.Config
	log *slog.Logger
}

// NewProcessor creates a filing processor.
func NewProcessor(cfg *config.Config, log *slog.Logger) *Processor {
	return &Processor{cfg: cfg, log: log}
}

// ProcessAll chunks every HTML filing under the raw filings directory and
// writes the processed document set. Filings that fail to parse are skipped.
func (p *Processor) ProcessAll() ([]corpus.ProcessedDocument, error) {
	paths, err := filepath.Glob(filepath.Join(p.cfg.RawFilingsDir(), "*.html"))
	if err != nil {
		return nil, fmt.Errorf("listing filings: %w", err)
	}
	if len(paths) == 0 {
		p.log.Warn("no HTML filings found to process", "dir", p.cfg.RawFilingsDir())
		return nil, nil
	}
	sort.Strings(paths)

	var docs []corpus.ProcessedDocument
	totalChunks := 0
	for _, path := range paths {
		doc, err := p.ProcessFiling(path)
		if err != nil {
			p.log.Error("processing filing failed", "path", path, "error", err)
			continue
		}
		docs = append(docs, *doc)
		totalChunks += doc.TotalChunks
	}

	outPath := filepath.Join(p.cfg.ProcessedDir(), corpus.ProcessedFile)
	if err := corpus.SaveJSON(outPath, docs); err != nil {
		return nil, err
	}
	p.log.Info("processed filings", "documents", len(docs), "chunks", totalChunks, "output", outPath)
	return docs, nil
}

// ProcessFiling extracts, sections, and chunks a single HTML filing. The
// filename must start with "COMPANY_YEAR".
func (p *Processor) ProcessFiling(path string) (*corpus.ProcessedDocument, error) {
	filename := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	company, year, err := parseFilename(filename)
	if err != nil {
		return nil, err
	}
	p.log.Info("processing filing", "company", company, "year", year)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	text, err := ExtractText(f)
	if err != nil {
		return nil, fmt.Errorf("extracting text from %s: %w", path, err)
	}
	text = finparse.CleanText(text)
	if text == "" {
		return nil, fmt.Errorf("no text extracted from %s", path)
	}

	sections := extractSections(text)

	var chunks []models.Chunk
	var sectionNames []string
	for _, name := range sortedKeys(sections) {
		sectionNames = append(sectionNames, name)
		pieces := corpus.ChunkWords(sections[name], p.cfg.ChunkSize, p.cfg.ChunkOverlap, p.cfg.MinChunkChars)
		for i, piece := range pieces {
			chunks = append(chunks, models.Chunk{
				Text:       piece,
				Company:    company,
				Year:       year,
				Section:    name,
				ChunkID:    models.NewChunkID(company, year, name, i),
				SourceFile: filename,
			})
		}
	}

	return &corpus.ProcessedDocument{
		Company:     company,
		Year:        year,
		Filename:    filename,
		TotalChunks: len(chunks),
		Sections:    sectionNames,
		Chunks:      chunks,
	}, nil
}

// ExtractText renders an HTML document to plain text, dropping script and
// style contents.
func ExtractText(r io.Reader) (string, error) {
	var b strings.Builder
	z := html.NewTokenizer(r)
	skipDepth := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return b.String(), nil
			}
			return "", z.Err()
		case html.StartTagToken:
			name, _ := z.TagName()
			if skipTag(string(name)) {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if skipTag(string(name)) && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(z.Text())
				b.WriteByte(' ')
			}
		}
	}
}

func skipTag(name string) bool {
	return name == "script" || name == "style"
}

// extractSections locates known 10-K item headings and takes a fixed span of
// text after each. When nothing matches, the document start is kept under the
// full-document label so the filing still contributes to the corpus.
func extractSections(text string) map[string]string {
	sections := make(map[string]string)
	for _, sp := range sectionPatterns {
		loc := sp.re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		end := loc[0] + sectionChars
		if end > len(text) {
			end = len(text)
		}
		sections[sp.name] = finparse.CleanText(text[loc[0]:end])
	}

	if len(sections) == 0 {
		end := fullDocumentChars
		if end > len(text) {
			end = len(text)
		}
		sections[FullDocumentSection] = text[:end]
	}
	return sections
}

// parseFilename splits "MSFT_2023_10K" style names into company and year.
func parseFilename(filename string) (string, int, error) {
	parts := strings.Split(filename, "_")
	if len(parts) < 2 {
		return "", 0, fmt.Errorf("filename %q does not match COMPANY_YEAR pattern", filename)
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, fmt.Errorf("filename %q has non-numeric year: %w", filename, err)
	}
	return parts[0], year, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
