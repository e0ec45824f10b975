// ABOUTME: OpenAI embedding client with retry logic and normalization
// ABOUTME: Uses text-embedding-3-small by default, configurable via FINRAG_EMBEDDING_MODEL
package embed

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/finrag/finrag/internal/util"
)

// DefaultEmbeddingModel is the model used when none is configured.
const DefaultEmbeddingModel = string(openai.SmallEmbedding3)

// Known dimensions for OpenAI embedding models.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// OpenAIConfig holds configuration for the OpenAI embedder.
type OpenAIConfig struct {
	APIKey     string
	Model      string
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
}

// OpenAIEmbedder produces embeddings via the OpenAI API.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      string
	dimension  int
	maxRetries int
	retryDelay time.Duration
	timeout    time.Duration
}

// NewOpenAIEmbedder creates an embedder backed by the OpenAI API.
func NewOpenAIEmbedder(cfg OpenAIConfig) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required (set OPENAI_API_KEY)")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultEmbeddingModel
	}
	dim, ok := modelDimensions[model]
	if !ok {
		return nil, fmt.Errorf("unknown embedding model %q", model)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	return &OpenAIEmbedder{
		client:     openai.NewClient(cfg.APIKey),
		model:      model,
		dimension:  dim,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		timeout:    cfg.Timeout,
	}, nil
}

// Name returns the model identifier stored in cache snapshots.
func (e *OpenAIEmbedder) Name() string { return "openai/" + e.model }

// Dimension returns the embedding vector length for the configured model.
func (e *OpenAIEmbedder) Dimension() int { return e.dimension }

// Prepare is a no-op; the model is pretrained.
func (e *OpenAIEmbedder) Prepare(ctx context.Context, corpus []string) error { return nil }

// Embed generates a normalized embedding vector for text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	var vector []float64

	err := util.Retry(ctx, e.maxRetries, e.retryDelay, func(ctx context.Context) error {
		reqCtx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()

		resp, err := e.client.CreateEmbeddings(reqCtx, openai.EmbeddingRequestStrings{
			Input: []string{text},
			Model: openai.EmbeddingModel(e.model),
		})
		if err != nil {
			return err
		}
		if len(resp.Data) == 0 {
			return fmt.Errorf("no embeddings returned")
		}

		embedding32 := resp.Data[0].Embedding
		vector = make([]float64, len(embedding32))
		for i, v := range embedding32 {
			vector[i] = float64(v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("generating embedding: %w", err)
	}

	if len(vector) != e.dimension {
		return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d", e.dimension, len(vector))
	}

	return Normalize(vector), nil
}
