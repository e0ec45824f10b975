// ABOUTME: Chunk store that loads the corpus from whichever document set exists
// ABOUTME: Prefers the raw SEC-API document set over locally processed filings
package corpus

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/finrag/finrag/internal/config"
	"github.com/finrag/finrag/internal/models"
)

// Chunking applied to raw API section text. The document processor has its
// own (configurable) window; these match the retrieval pipeline defaults.
const (
	apiChunkWords   = 300
	apiChunkOverlap = 50
)

// APIDataFile is the raw SEC-API document set filename.
const APIDataFile = "sec_api_data.json"

// ProcessedFile is the locally chunked document set filename.
const ProcessedFile = "processed_documents.json"

// Store loads the ordered chunk sequence the embedding index is built from.
// It is read-only after Load; no mutation API is exposed.
type Store struct {
	cfg *config.Config
	log *slog.Logger
}

// NewStore creates a chunk store over the configured data directories.
func NewStore(cfg *config.Config, log *slog.Logger) *Store {
	return &Store{cfg: cfg, log: log}
}

// Load returns all corpus chunks in stable order. When no document set
// exists it returns an empty sequence rather than an error; downstream
// components report "no results" in that case.
func (s *Store) Load() ([]models.Chunk, error) {
	apiPath := filepath.Join(s.cfg.RawFilingsDir(), APIDataFile)
	if _, err := os.Stat(apiPath); err == nil {
		s.log.Info("loading SEC-API document set", "path", apiPath)
		var filings []FilingData
		if err := LoadJSON(apiPath, &filings); err != nil {
			return nil, err
		}
		return s.chunksFromFilings(filings), nil
	}

	processedPath := filepath.Join(s.cfg.ProcessedDir(), ProcessedFile)
	if _, err := os.Stat(processedPath); err == nil {
		s.log.Info("loading processed document set", "path", processedPath)
		var docs []ProcessedDocument
		if err := LoadJSON(processedPath, &docs); err != nil {
			return nil, err
		}
		var chunks []models.Chunk
		for _, doc := range docs {
			chunks = append(chunks, doc.Chunks...)
		}
		return chunks, nil
	}

	s.log.Warn("no document set found; run fetch or process first",
		"api_path", apiPath, "processed_path", processedPath)
	return nil, nil
}

// chunksFromFilings converts raw API section text into chunks via a fixed
// sliding word window.
func (s *Store) chunksFromFilings(filings []FilingData) []models.Chunk {
	var chunks []models.Chunk
	for _, filing := range filings {
		for _, sectionName := range sortedSectionNames(filing.Sections) {
			section := filing.Sections[sectionName]
			pieces := ChunkWords(section.Content, apiChunkWords, apiChunkOverlap, s.cfg.MinChunkChars)
			for i, text := range pieces {
				chunks = append(chunks, models.Chunk{
					Text:       text,
					Company:    filing.Company,
					Year:       filing.Year,
					Section:    sectionName,
					ChunkID:    models.NewChunkID(filing.Company, filing.Year, sectionName, i),
					SourceFile: fmt.Sprintf("%s_%d_api_data", filing.Company, filing.Year),
					FilingURL:  filing.FilingURL,
				})
			}
		}
	}
	s.log.Info("built chunks from API document set", "filings", len(filings), "chunks", len(chunks))
	return chunks
}

// ChunkWords cuts text into windows of maxWords words with overlap words of
// context shared between adjacent windows. Windows shorter than minChars are
// discarded.
func ChunkWords(text string, maxWords, overlap, minChars int) []string {
	words := strings.Fields(text)
	if maxWords <= 0 || overlap < 0 || overlap >= maxWords {
		return nil
	}

	var chunks []string
	for i := 0; i < len(words); i += maxWords - overlap {
		end := i + maxWords
		if end > len(words) {
			end = len(words)
		}
		chunk := strings.Join(words[i:end], " ")
		if len(strings.TrimSpace(chunk)) > minChars {
			chunks = append(chunks, chunk)
		}
		if end == len(words) {
			break
		}
	}
	return chunks
}

func sortedSectionNames(sections map[string]Section) []string {
	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	// Map iteration order is random; chunk order must be stable because the
	// embedding matrix is aligned to it.
	sort.Strings(names)
	return names
}
