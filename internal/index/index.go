// ABOUTME: Embedding index: builds chunk vectors, persists a cache snapshot,
// ABOUTME: and serves cosine similarity search over the corpus
package index

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/finrag/finrag/internal/embed"
	"github.com/finrag/finrag/internal/models"
)

// Index holds the chunk sequence and its aligned embedding matrix.
// vectors[i] is always the embedding of chunks[i]; the two slices are only
// ever assigned together. Built once per process, read-only afterwards.
type Index struct {
	embedder  embed.Embedder
	cachePath string
	log       *slog.Logger

	chunks  []models.Chunk
	vectors [][]float64
}

// Stats summarizes the built index.
type Stats struct {
	TotalChunks    int      `json:"total_chunks"`
	Companies      []string `json:"companies"`
	Years          []int    `json:"years"`
	Sections       []string `json:"sections"`
	EmbeddingModel string   `json:"embedding_model"`
	CacheExists    bool     `json:"cache_exists"`
}

// New creates an unbuilt index over the given embedder and cache location.
func New(embedder embed.Embedder, cachePath string, log *slog.Logger) *Index {
	return &Index{embedder: embedder, cachePath: cachePath, log: log}
}

// Ready reports whether the index has been built (or loaded) and can serve
// searches.
func (ix *Index) Ready() bool { return len(ix.vectors) > 0 }

// Len returns the number of indexed chunks.
func (ix *Index) Len() int { return len(ix.chunks) }

// Build populates the index from chunks. If a valid cache snapshot for the
// current embedder exists and forceRebuild is false, it is loaded instead of
// re-encoding; an invalid or mismatched snapshot triggers a rebuild. A cache
// write failure is logged but does not fail the build.
func (ix *Index) Build(ctx context.Context, chunks []models.Chunk, forceRebuild bool) error {
	if !forceRebuild {
		if err := ix.loadCache(); err == nil {
			ix.log.Info("loaded embedding cache", "chunks", len(ix.chunks), "model", ix.embedder.Name())
			return nil
		} else if !os.IsNotExist(err) {
			ix.log.Warn("embedding cache unusable, rebuilding", "error", err)
		}
	}

	if len(chunks) == 0 {
		ix.log.Warn("no chunks to index")
		return nil
	}

	corpus := make([]string, len(chunks))
	for i, c := range chunks {
		corpus[i] = c.Text
	}
	if err := ix.embedder.Prepare(ctx, corpus); err != nil {
		return fmt.Errorf("preparing embedder: %w", err)
	}

	ix.log.Info("generating embeddings", "chunks", len(chunks), "model", ix.embedder.Name())
	vectors := make([][]float64, len(chunks))
	for i, text := range corpus {
		vec, err := ix.embedder.Embed(ctx, text)
		if err != nil {
			return fmt.Errorf("embedding chunk %s: %w", chunks[i].ChunkID, err)
		}
		vectors[i] = vec
	}

	ix.chunks = chunks
	ix.vectors = vectors

	if err := ix.saveCache(); err != nil {
		ix.log.Warn("failed to write embedding cache; continuing with in-memory index", "error", err)
	}
	return nil
}

// EncodeQuery embeds a query through the same model and normalization path
// used for chunks.
func (ix *Index) EncodeQuery(ctx context.Context, text string) ([]float64, error) {
	vec, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("encoding query: %w", err)
	}
	if ix.Ready() && len(vec) != len(ix.vectors[0]) {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(vec), len(ix.vectors[0]))
	}
	return vec, nil
}

// Search ranks all chunks by cosine similarity to queryVector and returns
// the top topK, ordered by descending score with ties kept in chunk order.
// An unbuilt index returns no results.
func (ix *Index) Search(queryVector []float64, topK int) []models.SearchResult {
	if !ix.Ready() {
		ix.log.Warn("search on unbuilt index")
		return nil
	}
	if topK <= 0 {
		return nil
	}
	if topK > len(ix.chunks) {
		topK = len(ix.chunks)
	}

	// Vectors are pre-normalized so cosine similarity is a plain dot product.
	order := make([]int, len(ix.vectors))
	scores := make([]float64, len(ix.vectors))
	for i, vec := range ix.vectors {
		order[i] = i
		scores[i] = embed.Dot(queryVector, vec)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	results := make([]models.SearchResult, topK)
	for i := 0; i < topK; i++ {
		idx := order[i]
		results[i] = models.SearchResult{Chunk: ix.chunks[idx], SimilarityScore: scores[idx]}
	}
	return results
}

// Stats reports corpus-level statistics for the built index.
func (ix *Index) Stats() Stats {
	companies := make(map[string]struct{})
	years := make(map[int]struct{})
	sections := make(map[string]struct{})
	for _, c := range ix.chunks {
		companies[c.Company] = struct{}{}
		years[c.Year] = struct{}{}
		sections[c.Section] = struct{}{}
	}

	stats := Stats{
		TotalChunks:    len(ix.chunks),
		EmbeddingModel: ix.embedder.Name(),
	}
	for c := range companies {
		stats.Companies = append(stats.Companies, c)
	}
	for y := range years {
		stats.Years = append(stats.Years, y)
	}
	for s := range sections {
		stats.Sections = append(stats.Sections, s)
	}
	sort.Strings(stats.Companies)
	sort.Ints(stats.Years)
	sort.Strings(stats.Sections)
	if _, err := os.Stat(ix.cachePath); err == nil {
		stats.CacheExists = true
	}
	return stats
}

func (ix *Index) saveCache() error {
	s := &snapshot{
		Model:     ix.embedder.Name(),
		Dimension: ix.embedder.Dimension(),
		Vectors:   ix.vectors,
		Chunks:    ix.chunks,
		CreatedAt: time.Now().UTC(),
	}
	if stateful, ok := ix.embedder.(embed.Stateful); ok {
		state, err := stateful.State()
		if err != nil {
			return fmt.Errorf("capturing embedder state: %w", err)
		}
		s.EmbedderState = state
	}
	return writeSnapshot(ix.cachePath, s)
}

func (ix *Index) loadCache() error {
	s, err := readSnapshot(ix.cachePath)
	if err != nil {
		return err
	}
	if err := s.validate(ix.embedder.Name()); err != nil {
		return err
	}
	if stateful, ok := ix.embedder.(embed.Stateful); ok {
		if len(s.EmbedderState) == 0 {
			return fmt.Errorf("cache is missing embedder state for model %q", s.Model)
		}
		if err := stateful.Restore(s.EmbedderState); err != nil {
			return err
		}
	}
	ix.chunks = s.Chunks
	ix.vectors = s.Vectors
	return nil
}
