// ABOUTME: Response record and source reference structures for answered queries
// ABOUTME: Defines the JSON wire contract returned by the agent
package models

import "time"

// MaxExcerptLength caps the excerpt carried by a source reference.
const MaxExcerptLength = 200

// RetrievalResult holds the outcome of answering a single sub-query.
type RetrievalResult struct {
	Found        bool           `json:"found"`
	Answer       string         `json:"answer"`
	Results      []SearchResult `json:"results,omitempty"`
	SourceChunks int            `json:"source_chunks"`
}

// SourceReference is a citation pointing back to the filing passage that
// backed part of an answer. Page is unknown for API-extracted sections and
// stays null in JSON output.
type SourceReference struct {
	Company    string `json:"company"`
	Year       int    `json:"year"`
	Excerpt    string `json:"excerpt"`
	Page       *int   `json:"page"`
	Section    string `json:"section"`
	FilingType string `json:"filing_type"`
}

// NewSourceReference builds a standardized source reference, truncating the
// excerpt to MaxExcerptLength characters with an ellipsis marker.
func NewSourceReference(company string, year int, excerpt string, page *int, section string) SourceReference {
	runes := []rune(excerpt)
	if len(runes) > MaxExcerptLength {
		excerpt = string(runes[:MaxExcerptLength]) + "..."
	}
	return SourceReference{
		Company:    company,
		Year:       year,
		Excerpt:    excerpt,
		Page:       page,
		Section:    section,
		FilingType: "10-K",
	}
}

// Response is the structured record returned for every query. The agent
// always produces one, even for failures; Error is set when the query could
// not be processed normally.
type Response struct {
	Query      string            `json:"query"`
	Answer     string            `json:"answer"`
	Reasoning  string            `json:"reasoning"`
	SubQueries []string          `json:"sub_queries"`
	Sources    []SourceReference `json:"sources"`
	Timestamp  time.Time         `json:"timestamp"`
	Error      string            `json:"error,omitempty"`
}
