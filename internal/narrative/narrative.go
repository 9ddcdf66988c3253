// Package narrative renders a recommendation list into a conversational
// Indonesian answer using an Ollama LLM. The narrative is an optional
// layer: when the LLM is unreachable the structured results still stand
// on their own.
package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/mobilcari/mobil-cari/internal/pkg/errors"
	"github.com/mobilcari/mobil-cari/internal/pkg/logger"
	"github.com/mobilcari/mobil-cari/internal/recommend"
)

const (
	// DefaultModel is the default Ollama generation model.
	DefaultModel = "mistral"

	// DefaultBaseURL is the default Ollama endpoint.
	DefaultBaseURL = "http://localhost:11434"

	// DefaultTimeout bounds one generation request. Generation is slow
	// compared to embedding.
	DefaultTimeout = 120 * time.Second
)

// Generator produces a conversational answer for a recommendation list.
type Generator interface {
	Answer(ctx context.Context, question string, results []recommend.Result) (string, error)
}

// Config holds configuration for the Ollama generator.
type Config struct {
	// BaseURL is the Ollama server URL.
	BaseURL string

	// Model is the generation model name.
	Model string

	// Timeout bounds each HTTP request.
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults for local development.
func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Model:   DefaultModel,
		Timeout: DefaultTimeout,
	}
}

// OllamaGenerator implements Generator using Ollama's generate API.
type OllamaGenerator struct {
	cfg    Config
	client *http.Client
	log    *logger.Logger
}

// NewOllamaGenerator creates an Ollama-backed narrative generator.
func NewOllamaGenerator(cfg Config, log *logger.Logger) *OllamaGenerator {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &OllamaGenerator{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Answer implements Generator.
func (g *OllamaGenerator) Answer(ctx context.Context, question string, results []recommend.Result) (string, error) {
	prompt := BuildPrompt(question, results)

	body, err := json.Marshal(generateRequest{
		Model:  g.cfg.Model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", apperrors.LLMError("calling ollama", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperrors.LLMError(fmt.Sprintf("ollama status %d", resp.StatusCode), nil)
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", apperrors.LLMError("decoding ollama response", err)
	}

	return strings.TrimSpace(result.Response), nil
}

// BuildPrompt assembles the Indonesian recommendation prompt with the
// structured results as context.
func BuildPrompt(question string, results []recommend.Result) string {
	var context strings.Builder
	for _, r := range results {
		fmt.Fprintf(&context, "%s | %s | %d | %s | %s | %s\n",
			r.Name, r.Brand, r.Year, r.Transmission, r.FuelType, r.PriceDisplay)
	}

	return fmt.Sprintf(`Saya sedang mencari rekomendasi mobil.
Pertanyaan saya: %s

Berikut data mobil yang mungkin relevan:
%s
Tolong beri rekomendasi mobil terbaik berdasarkan data di atas.`, question, context.String())
}
