// ABOUTME: Chunk represents a bounded span of filing text with provenance metadata
// ABOUTME: SearchResult pairs a chunk with its cosine similarity score
package models

import "fmt"

// Chunk is a contiguous span of a 10-K filing, carrying everything needed
// to cite it back to a company, fiscal year, and document section.
type Chunk struct {
	Text       string `json:"text"`
	Company    string `json:"company"`
	Year       int    `json:"year"`
	Section    string `json:"section"`
	ChunkID    string `json:"chunk_id"`
	SourceFile string `json:"source_file"`
	FilingURL  string `json:"filing_url,omitempty"`
}

// NewChunkID builds the stable chunk identifier from the chunk's
// provenance fields and its ordinal index within the section.
func NewChunkID(company string, year int, section string, index int) string {
	return fmt.Sprintf("%s_%d_%s_%d", company, year, section, index)
}

// SearchResult is a chunk annotated with its similarity to a query vector.
type SearchResult struct {
	Chunk
	SimilarityScore float64 `json:"similarity_score"`
}
