// ABOUTME: Centralized configuration for the financial filing RAG system
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Embedding provider names accepted by FINRAG_EMBED_PROVIDER.
const (
	ProviderOpenAI = "openai"
	ProviderTFIDF  = "tfidf"
)

// Company describes one tracked filer. The decomposer substitutes Name into
// comparative queries; the SEC client resolves filings by CIK.
type Company struct {
	Ticker string
	Name   string
	CIK    string
}

// Config holds all configuration for the RAG system
type Config struct {
	// Data layout
	DataDir string

	// Tracked corpus
	Companies []Company
	Years     []int

	// Chunking
	ChunkSize     int // words per chunk (document processor)
	ChunkOverlap  int // word overlap between adjacent chunks
	MinChunkChars int // chunks shorter than this are discarded

	// Retrieval
	RetrievalTopK int

	// Embedding settings
	EmbedProvider  string
	EmbeddingModel string
	OpenAIKey      string

	// SEC-API settings
	SECAPIKey     string
	SECAPIBaseURL string

	// HTTP client behavior
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DataDir:        getEnv("FINRAG_DATA_DIR", "data"),
		Companies:      parseCompanies(getEnv("FINRAG_COMPANIES", defaultCompanies)),
		Years:          parseYears(getEnv("FINRAG_YEARS", "2022,2023,2024")),
		ChunkSize:      getEnvInt("FINRAG_CHUNK_SIZE", 500),
		ChunkOverlap:   getEnvInt("FINRAG_CHUNK_OVERLAP", 50),
		MinChunkChars:  getEnvInt("FINRAG_MIN_CHUNK_CHARS", 100),
		RetrievalTopK:  getEnvInt("FINRAG_TOP_K", 3),
		EmbedProvider:  getEnv("FINRAG_EMBED_PROVIDER", ProviderOpenAI),
		EmbeddingModel: getEnv("FINRAG_EMBEDDING_MODEL", "text-embedding-3-small"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		SECAPIKey:      os.Getenv("SEC_API_KEY"),
		SECAPIBaseURL:  getEnv("SEC_API_BASE_URL", "https://api.sec-api.io"),
		Timeout:        getEnvDuration("FINRAG_HTTP_TIMEOUT", 60*time.Second),
		MaxRetries:     getEnvInt("FINRAG_MAX_RETRIES", 3),
		RetryDelay:     getEnvDuration("FINRAG_RETRY_DELAY", time.Second),
	}

	return cfg, cfg.Validate()
}

// defaultCompanies covers the fixed three-company corpus of the system.
const defaultCompanies = "MSFT:Microsoft:789019,GOOGL:Google:1652044,NVDA:NVIDIA:1045810"

func (c *Config) Validate() error {
	if len(c.Companies) == 0 {
		return fmt.Errorf("FINRAG_COMPANIES must list at least one ticker:name:cik entry")
	}
	if len(c.Years) == 0 {
		return fmt.Errorf("FINRAG_YEARS must list at least one fiscal year")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("FINRAG_CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("FINRAG_CHUNK_OVERLAP must be in [0, chunk size), got %d", c.ChunkOverlap)
	}
	if c.RetrievalTopK <= 0 {
		return fmt.Errorf("FINRAG_TOP_K must be positive, got %d", c.RetrievalTopK)
	}
	if c.EmbedProvider != ProviderOpenAI && c.EmbedProvider != ProviderTFIDF {
		return fmt.Errorf("FINRAG_EMBED_PROVIDER must be %q or %q, got %q", ProviderOpenAI, ProviderTFIDF, c.EmbedProvider)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("FINRAG_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	return nil
}

// RawFilingsDir is where downloaded filing HTML and SEC-API document sets live.
func (c *Config) RawFilingsDir() string { return filepath.Join(c.DataDir, "raw_filings") }

// ProcessedDir is where chunked document sets are written.
func (c *Config) ProcessedDir() string { return filepath.Join(c.DataDir, "processed") }

// VectorStoreDir holds the embedding cache snapshot.
func (c *Config) VectorStoreDir() string { return filepath.Join(c.DataDir, "vector_store") }

// EnsureDirs creates the data directory tree.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.RawFilingsDir(), c.ProcessedDir(), c.VectorStoreDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// CompanyNames returns the display names in configured order.
func (c *Config) CompanyNames() []string {
	names := make([]string, len(c.Companies))
	for i, company := range c.Companies {
		names[i] = company.Name
	}
	return names
}

// parseCompanies parses "TICKER:Name:CIK,..." entries. Malformed entries are
// skipped rather than fatal; Validate catches a fully empty result.
func parseCompanies(s string) []Company {
	var companies []Company
	for _, entry := range strings.Split(s, ",") {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
			continue
		}
		companies = append(companies, Company{Ticker: parts[0], Name: parts[1], CIK: parts[2]})
	}
	return companies
}

func parseYears(s string) []int {
	var years []int
	for _, entry := range strings.Split(s, ",") {
		if y, err := strconv.Atoi(strings.TrimSpace(entry)); err == nil {
			years = append(years, y)
		}
	}
	return years
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
