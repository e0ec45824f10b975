// ABOUTME: Query decomposer expanding complex queries into per-entity or per-year sub-queries
// ABOUTME: Best-effort textual rewrite; always yields at least the original query
package agent

import (
	"regexp"
	"strings"
)

var (
	yearRe      = regexp.MustCompile(`\b(20\d{2})\b`)
	fromToRe    = regexp.MustCompile(`from.*to.*\d{4}`)
	yearRangeRe = regexp.MustCompile(`\d{4}.*to.*\d{4}`)
)

// Company-referring phrases replaced by an entity name in comparative
// sub-queries, applied in this order so "all three companies" is rewritten
// before the bare "companies" inside it.
var companyPhrases = []string{"which company", "all three companies", "companies"}

// Decomposer expands a classified query into sub-queries. The entity list is
// injected so it is not tied to any particular corpus.
type Decomposer struct {
	classifier *Classifier
	entities   []string
}

// NewDecomposer creates a decomposer over the given classifier and tracked
// entity names.
func NewDecomposer(classifier *Classifier, entities []string) *Decomposer {
	return &Decomposer{classifier: classifier, entities: entities}
}

// Decompose returns the ordered sub-query list for query. It never returns
// an empty sequence: unmatched or under-specified queries fall back to the
// single-element [query].
func (d *Decomposer) Decompose(query string) []string {
	switch d.classifier.Classify(query) {
	case CategoryComparative:
		return d.decomposeComparative(query)
	case CategoryMultiYear:
		return d.decomposeMultiYear(query)
	default:
		return []string{query}
	}
}

// decomposeComparative produces one sub-query per tracked entity by literally
// substituting generic company-referring phrases with the entity's name.
// This is a textual rewrite, not a semantic one.
func (d *Decomposer) decomposeComparative(query string) []string {
	if len(d.entities) == 0 {
		return []string{query}
	}
	subQueries := make([]string, 0, len(d.entities))
	for _, entity := range d.entities {
		sub := query
		for _, phrase := range companyPhrases {
			sub = strings.ReplaceAll(sub, phrase, entity)
		}
		subQueries = append(subQueries, sub)
	}
	return subQueries
}

// decomposeMultiYear extracts every 4-digit year token and produces one
// sub-query anchored on each. Queries with fewer than two years fall back to
// simple behavior.
func (d *Decomposer) decomposeMultiYear(query string) []string {
	years := yearRe.FindAllString(query, -1)
	if len(years) < 2 {
		return []string{query}
	}
	subQueries := make([]string, 0, len(years))
	for _, year := range years {
		// Replace the more specific "from ... to YYYY" span first, then any
		// remaining "YYYY ... to YYYY" span, anchoring on this year.
		sub := fromToRe.ReplaceAllString(query, "in "+year)
		sub = yearRangeRe.ReplaceAllString(sub, year)
		subQueries = append(subQueries, sub)
	}
	return subQueries
}
