// ABOUTME: Document-set schemas shared by the SEC client, filing processor, and chunk store
// ABOUTME: Defines the raw API document shape and the processed grouped-chunk shape
package corpus

import (
	"time"

	"github.com/finrag/finrag/internal/models"
)

// Section is one extracted 10-K item from a filing.
type Section struct {
	Item        string `json:"item"`
	Description string `json:"description"`
	Content     string `json:"content"`
	FullLength  int    `json:"full_length"`
	Truncated   bool   `json:"truncated"`
}

// FilingData is one company/year record of the raw API document set
// (sec_api_data.json), produced by the SEC client.
type FilingData struct {
	Company   string             `json:"company"`
	Year      int                `json:"year"`
	CIK       string             `json:"cik"`
	FilingURL string             `json:"filing_url"`
	Sections  map[string]Section `json:"sections"`
	Extracted time.Time          `json:"extraction_timestamp"`
}

// ProcessedDocument is one filing of the processed document set
// (processed_documents.json), produced by the filing processor. Chunks are
// grouped per document; the store flattens them on load.
type ProcessedDocument struct {
	Company     string         `json:"company"`
	Year        int            `json:"year"`
	Filename    string         `json:"filename"`
	TotalChunks int            `json:"total_chunks"`
	Sections    []string       `json:"sections"`
	Chunks      []models.Chunk `json:"chunks"`
}
