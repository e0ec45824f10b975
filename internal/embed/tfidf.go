// ABOUTME: TF-IDF embedder for offline, deterministic corpus embedding
// ABOUTME: Fits a vocabulary over the chunk corpus; state persists in the index cache
package embed

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
)

// TFIDFEmbedder vectorizes text by smoothed TF-IDF over a corpus-fitted
// vocabulary. Unlike the OpenAI embedder it needs no network access, which
// also makes it the embedder used throughout the test suite.
type TFIDFEmbedder struct {
	vocab     map[string]int
	idf       []float64
	dimension int
	fitted    bool
	tokenRe   *regexp.Regexp
	stopwords map[string]struct{}
}

// NewTFIDFEmbedder creates an unfitted TF-IDF embedder.
func NewTFIDFEmbedder() *TFIDFEmbedder {
	return &TFIDFEmbedder{
		vocab:     make(map[string]int),
		tokenRe:   regexp.MustCompile(`[\p{L}\d]+(?:['’][\p{L}\d]+)*`),
		stopwords: stopwordSet(),
	}
}

// Name returns the identifier stored in cache snapshots.
func (e *TFIDFEmbedder) Name() string { return "tfidf" }

// Dimension returns the vocabulary size, or 0 before fitting.
func (e *TFIDFEmbedder) Dimension() int { return e.dimension }

// Prepare fits the vocabulary and IDF weights to the corpus.
func (e *TFIDFEmbedder) Prepare(ctx context.Context, corpus []string) error {
	if len(corpus) == 0 {
		return fmt.Errorf("cannot fit TF-IDF embedder to an empty corpus")
	}

	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range e.tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(df) == 0 {
		return fmt.Errorf("corpus produced no tokens")
	}

	// Sort terms so vector positions are stable across runs.
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	e.vocab = make(map[string]int, len(terms))
	e.idf = make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		e.vocab[term] = i
		// Smoothed IDF
		e.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	e.dimension = len(terms)
	e.fitted = true
	return nil
}

// Embed computes the normalized TF-IDF vector for text. Unknown tokens map
// to the zero vector, so off-vocabulary queries return zero similarity
// rather than an error.
func (e *TFIDFEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if !e.fitted {
		return nil, fmt.Errorf("TF-IDF embedder not fitted; call Prepare first")
	}

	vec := make([]float64, e.dimension)
	tf := make(map[int]int)
	total := 0
	for _, tok := range e.tokenize(text) {
		if idx, ok := e.vocab[tok]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return vec, nil
	}
	for idx, count := range tf {
		vec[idx] = float64(count) / float64(total) * e.idf[idx]
	}
	return Normalize(vec), nil
}

// tfidfState is the serialized form stored inside index cache snapshots.
type tfidfState struct {
	Terms []string  `json:"terms"`
	IDF   []float64 `json:"idf"`
}

// State serializes the fitted vocabulary for cache persistence.
func (e *TFIDFEmbedder) State() ([]byte, error) {
	if !e.fitted {
		return nil, fmt.Errorf("TF-IDF embedder not fitted")
	}
	terms := make([]string, e.dimension)
	for term, idx := range e.vocab {
		terms[idx] = term
	}
	return json.Marshal(tfidfState{Terms: terms, IDF: e.idf})
}

// Restore reloads a vocabulary previously produced by State.
func (e *TFIDFEmbedder) Restore(state []byte) error {
	var s tfidfState
	if err := json.Unmarshal(state, &s); err != nil {
		return fmt.Errorf("decoding TF-IDF state: %w", err)
	}
	if len(s.Terms) == 0 || len(s.Terms) != len(s.IDF) {
		return fmt.Errorf("invalid TF-IDF state: %d terms, %d idf values", len(s.Terms), len(s.IDF))
	}
	e.vocab = make(map[string]int, len(s.Terms))
	for i, term := range s.Terms {
		e.vocab[term] = i
	}
	e.idf = s.IDF
	e.dimension = len(s.Terms)
	e.fitted = true
	return nil
}

func (e *TFIDFEmbedder) tokenize(text string) []string {
	raw := e.tokenRe.FindAllString(strings.ToLower(text), -1)
	tokens := raw[:0]
	for _, t := range raw {
		if _, stop := e.stopwords[t]; stop {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

func stopwordSet() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for",
		"to", "of", "in", "on", "at", "by", "with", "as", "is", "are",
		"was", "were", "be", "been", "being", "it", "this", "that", "these",
		"those", "from", "into", "about", "through", "during", "before",
		"after", "such", "than", "so", "too", "very", "can", "will", "just",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
