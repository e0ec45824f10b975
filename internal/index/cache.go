// ABOUTME: Cache snapshot persistence for the embedding index
// ABOUTME: Binds model tag, embedder state, vectors, and chunks as one atomic unit
package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/finrag/finrag/internal/models"
)

// CacheFile is the snapshot filename inside the vector store directory.
const CacheFile = "embeddings.json"

// snapshot is the persisted index state. Vectors[i] always corresponds to
// Chunks[i]; a snapshot is only valid for the embedder whose Name matches
// Model.
type snapshot struct {
	Model         string          `json:"model"`
	Dimension     int             `json:"dimension"`
	EmbedderState json.RawMessage `json:"embedder_state,omitempty"`
	Vectors       [][]float64     `json:"vectors"`
	Chunks        []models.Chunk  `json:"chunks"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (s *snapshot) validate(model string) error {
	if s.Model != model {
		return fmt.Errorf("cache built with model %q, index uses %q", s.Model, model)
	}
	if len(s.Vectors) != len(s.Chunks) {
		return fmt.Errorf("corrupt cache: %d vectors for %d chunks", len(s.Vectors), len(s.Chunks))
	}
	for i, v := range s.Vectors {
		if len(v) != s.Dimension {
			return fmt.Errorf("corrupt cache: vector %d has dimension %d, expected %d", i, len(v), s.Dimension)
		}
	}
	return nil
}

func writeSnapshot(path string, s *snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling cache snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), CacheFile+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing cache snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing cache snapshot: %w", err)
	}
	return nil
}

func readSnapshot(path string) (*snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding cache snapshot: %w", err)
	}
	return &s, nil
}
