// ABOUTME: Financial query agent: decomposition, per-sub-query retrieval, synthesis
// ABOUTME: AnswerQuery is the sole public entry point and always returns a Response
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finrag/finrag/internal/config"
	"github.com/finrag/finrag/internal/finparse"
	"github.com/finrag/finrag/internal/index"
	"github.com/finrag/finrag/internal/models"
)

// NotFoundAnswer is the fixed answer used when retrieval finds nothing.
const NotFoundAnswer = "No relevant information found"

// maxSources caps the deduplicated source list in a response.
const maxSources = 5

// sourcesPerResult is how many top chunks of each sub-query become sources.
const sourcesPerResult = 2

// fallbackAnswerChars bounds the raw-chunk fallback answer length.
const fallbackAnswerChars = 300

// Retriever is the slice of the embedding index the agent needs.
// *index.Index satisfies it.
type Retriever interface {
	EncodeQuery(ctx context.Context, text string) ([]float64, error)
	Search(queryVector []float64, topK int) []models.SearchResult
}

var _ Retriever = (*index.Index)(nil)

// Agent answers natural-language financial questions over the filing corpus.
// It holds only read-only state and is safe for concurrent queries once the
// index build has completed.
type Agent struct {
	retriever  Retriever
	classifier *Classifier
	decomposer *Decomposer
	topK       int
	log        *slog.Logger
}

// New creates an agent over a built index, using the configured tracked
// entities for comparative decomposition.
func New(retriever Retriever, cfg *config.Config, log *slog.Logger) *Agent {
	classifier := NewClassifier()
	return &Agent{
		retriever:  retriever,
		classifier: classifier,
		decomposer: NewDecomposer(classifier, cfg.CompanyNames()),
		topK:       cfg.RetrievalTopK,
		log:        log,
	}
}

// AnswerQuery answers a query end to end and always returns a structured
// response; internal failures surface through the response's Error field
// rather than as a crash.
func (a *Agent) AnswerQuery(ctx context.Context, query string) (resp *models.Response) {
	traceID := uuid.New().String()
	log := a.log.With("trace_id", traceID, "query", query)

	defer func() {
		if r := recover(); r != nil {
			log.Error("query processing panicked", "panic", r)
			resp = errorResponse(query, fmt.Sprintf("internal error: %v", r))
		}
	}()

	log.Info("processing query")

	subQueries := a.decomposer.Decompose(query)
	log.Info("decomposed query", "sub_queries", len(subQueries))

	results := make([]models.RetrievalResult, 0, len(subQueries))
	for _, sub := range subQueries {
		results = append(results, a.retrieve(ctx, sub))
	}

	answer := a.synthesize(query, results)
	sources := collectSources(results)
	reasoning := fmt.Sprintf("Processed %d sub-queries and retrieved information from %d sources across the filings.",
		len(subQueries), len(sources))

	if len(sources) > maxSources {
		sources = sources[:maxSources]
	}

	return &models.Response{
		Query:      query,
		Answer:     answer,
		Reasoning:  reasoning,
		SubQueries: subQueries,
		Sources:    sources,
		Timestamp:  time.Now(),
	}
}

// retrieve runs similarity search for one sub-query and extracts a short
// answer from the top hits. Failures degrade to a not-found result.
func (a *Agent) retrieve(ctx context.Context, subQuery string) models.RetrievalResult {
	notFound := models.RetrievalResult{Found: false, Answer: NotFoundAnswer}

	queryVector, err := a.retriever.EncodeQuery(ctx, subQuery)
	if err != nil {
		a.log.Warn("query encoding failed", "sub_query", subQuery, "error", err)
		return notFound
	}

	results := a.retriever.Search(queryVector, a.topK)
	if len(results) == 0 {
		return notFound
	}

	texts := make([]string, 0, sourcesPerResult)
	for _, r := range results[:min(len(results), sourcesPerResult)] {
		texts = append(texts, r.Text)
	}

	return models.RetrievalResult{
		Found:        true,
		Answer:       extractAnswer(strings.Join(texts, " "), results[0]),
		Results:      results,
		SourceChunks: len(results),
	}
}

// extractAnswer keeps the sentences of combined text that look financial
// (currency, percentage, or income-statement keywords), joining the first
// two. With no such sentence it falls back to a truncated best chunk.
func extractAnswer(combined string, best models.SearchResult) string {
	var financial []string
	for _, sentence := range strings.Split(combined, ".") {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if finparse.FinancialSignal.MatchString(sentence) {
			financial = append(financial, sentence)
			if len(financial) == 2 {
				break
			}
		}
	}
	if len(financial) > 0 {
		return strings.Join(financial, ". ") + "."
	}

	runes := []rune(best.Text)
	if len(runes) > fallbackAnswerChars {
		runes = runes[:fallbackAnswerChars]
	}
	return string(runes) + "..."
}

// synthesize merges per-sub-query answers using the strategy matching the
// query's classification.
func (a *Agent) synthesize(query string, results []models.RetrievalResult) string {
	if len(results) == 1 {
		return results[0].Answer
	}

	lower := strings.ToLower(query)

	if a.classifier.Classify(query) == CategoryComparative {
		var b strings.Builder
		b.WriteString("Based on the filings analysis:\n\n")
		for _, r := range results {
			if r.Found {
				fmt.Fprintf(&b, "• %s\n", r.Answer)
			}
		}
		// The system does not rank extracted figures numerically; for
		// winner-style questions it discloses that instead of guessing.
		if strings.Contains(lower, "which company") && strings.Contains(lower, "highest") {
			b.WriteString("\nBased on the available data, specific comparison requires detailed financial analysis.")
		}
		return b.String()
	}

	if strings.Contains(lower, "growth") {
		if found := foundResults(results); len(found) >= 2 {
			return fmt.Sprintf("Growth analysis: %s compared to %s", found[0].Answer, found[1].Answer)
		}
		// Not enough results for a two-sided growth comparison; fall
		// through to the default join.
	}

	var answers []string
	for _, r := range results {
		if r.Found {
			answers = append(answers, r.Answer)
		}
	}
	if len(answers) == 0 {
		return NotFoundAnswer
	}
	return strings.Join(answers, "; ")
}

// collectSources turns the top chunks of every found result into deduplicated
// source references, keeping first-seen order.
func collectSources(results []models.RetrievalResult) []models.SourceReference {
	type sourceKey struct {
		company string
		year    int
		section string
	}

	sources := []models.SourceReference{}
	seen := make(map[sourceKey]struct{})
	for _, result := range results {
		if !result.Found {
			continue
		}
		for _, chunk := range result.Results[:min(len(result.Results), sourcesPerResult)] {
			key := sourceKey{chunk.Company, chunk.Year, chunk.Section}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			sources = append(sources, models.NewSourceReference(chunk.Company, chunk.Year, chunk.Text, nil, chunk.Section))
		}
	}
	return sources
}

func foundResults(results []models.RetrievalResult) []models.RetrievalResult {
	var found []models.RetrievalResult
	for _, r := range results {
		if r.Found {
			found = append(found, r)
		}
	}
	return found
}

func errorResponse(query, errMsg string) *models.Response {
	return &models.Response{
		Query:      query,
		Answer:     "An error occurred while processing the query.",
		Reasoning:  "System error: " + errMsg,
		SubQueries: []string{query},
		Sources:    []models.SourceReference{},
		Timestamp:  time.Now(),
		Error:      errMsg,
	}
}
