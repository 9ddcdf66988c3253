package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/mobilcari/mobil-cari/internal/pkg/errors"
	"github.com/mobilcari/mobil-cari/internal/pkg/logger"
)

const (
	// DefaultModel is the default Ollama embedding model.
	DefaultModel = "nomic-embed-text"

	// DefaultBaseURL is the default Ollama endpoint.
	DefaultBaseURL = "http://localhost:11434"

	// DefaultTimeout bounds one embedding request.
	DefaultTimeout = 30 * time.Second
)

// OllamaConfig holds configuration for the Ollama embedding client.
type OllamaConfig struct {
	// BaseURL is the Ollama server URL.
	BaseURL string

	// Model is the embedding model name.
	Model string

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// CacheSize is the embedding cache capacity (0 disables caching).
	CacheSize int
}

// DefaultOllamaConfig returns sensible defaults for local development.
func DefaultOllamaConfig() OllamaConfig {
	return OllamaConfig{
		BaseURL:   DefaultBaseURL,
		Model:     DefaultModel,
		Timeout:   DefaultTimeout,
		CacheSize: 10000,
	}
}

// OllamaService implements Service using Ollama's HTTP API.
type OllamaService struct {
	cfg    OllamaConfig
	client *http.Client
	cache  *EmbeddingCache
	log    *logger.Logger
}

// NewOllamaService creates an Ollama-backed embedding service.
func NewOllamaService(cfg OllamaConfig, log *logger.Logger) *OllamaService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	var cache *EmbeddingCache
	if cfg.CacheSize > 0 {
		cache = NewEmbeddingCache(cfg.CacheSize)
	}

	return &OllamaService{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		cache:  cache,
		log:    log,
	}
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed implements Service. Texts are embedded one by one; the Ollama
// embeddings endpoint takes a single prompt per call.
func (s *OllamaService) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if s.cache != nil {
			if emb, ok := s.cache.Get(text); ok {
				out[i] = emb
				continue
			}
		}

		emb, err := s.embed(ctx, text)
		if err != nil {
			return nil, apperrors.EmbedError(fmt.Sprintf("embedding text %d", i), err)
		}

		if s.cache != nil {
			s.cache.Put(text, emb)
		}
		out[i] = emb
	}
	return out, nil
}

func (s *OllamaService) embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{Model: s.cfg.Model, Prompt: text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama embed: status %d", resp.StatusCode)
	}

	var result embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("ollama embed decode: %w", err)
	}
	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("ollama embed: empty embedding")
	}

	vec := make([]float32, len(result.Embedding))
	for i, v := range result.Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}

// Health implements Service by probing the Ollama version endpoint.
func (s *OllamaService) Health(ctx context.Context) HealthStatus {
	status := HealthStatus{Model: s.cfg.Model}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+"/api/version", nil)
	if err != nil {
		status.Error = err.Error()
		return status
	}

	resp, err := s.client.Do(req)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		status.Error = fmt.Sprintf("status %d", resp.StatusCode)
		return status
	}

	status.Healthy = true
	return status
}

// Close implements Service.
func (s *OllamaService) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
