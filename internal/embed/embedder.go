// ABOUTME: Embedder interface and provider factory for text embedding models
// ABOUTME: Vectors are always L2-normalized so cosine similarity is a dot product
package embed

import (
	"context"
	"fmt"
	"math"

	"github.com/finrag/finrag/internal/config"
)

// Embedder converts text into fixed-dimension normalized vectors. The same
// embedder instance must be used for both corpus chunks and queries;
// vectors from different models are not comparable.
type Embedder interface {
	// Name identifies the model. It is stored in the index cache snapshot
	// and validated on load.
	Name() string

	// Dimension reports the vector length. For corpus-fitted embedders this
	// is only meaningful after Prepare or Restore.
	Dimension() int

	// Prepare gives the embedder a chance to fit itself to the corpus
	// before any Embed calls. Model-backed embedders treat this as a no-op.
	Prepare(ctx context.Context, corpus []string) error

	// Embed returns the normalized vector for text.
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Stateful is implemented by embedders whose fitted state must survive a
// cache reload (the TF-IDF vocabulary, for example).
type Stateful interface {
	State() ([]byte, error)
	Restore(state []byte) error
}

// New builds the embedder selected by the configuration.
func New(cfg *config.Config) (Embedder, error) {
	switch cfg.EmbedProvider {
	case config.ProviderOpenAI:
		return NewOpenAIEmbedder(OpenAIConfig{
			APIKey:     cfg.OpenAIKey,
			Model:      cfg.EmbeddingModel,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
			Timeout:    cfg.Timeout,
		})
	case config.ProviderTFIDF:
		return NewTFIDFEmbedder(), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbedProvider)
	}
}

// Normalize scales vec to unit length in place and returns it. Zero vectors
// are returned unchanged.
func Normalize(vec []float64) []float64 {
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// Dot returns the dot product of two equal-length vectors. For normalized
// vectors this equals their cosine similarity.
func Dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
