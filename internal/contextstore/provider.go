package contextstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"net/http"
	"strings"
	"time"
)

// Provider defines the interface for embedding providers
type Provider interface {
	// Embed generates an embedding vector for the given text
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the dimensionality of embeddings produced by this provider
	Dimensions() int

	// Name returns the provider name for identification
	Name() string
}

// ProviderConfig represents embedding provider configuration
type ProviderConfig struct {
	Provider   string
	Model      string
	APIKey     string
	BaseURL    string
	Dimensions int
}

// Provider name constants
const (
	ProviderHash   = "hash"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// NewProvider creates an embedding provider from configuration
func NewProvider(cfg ProviderConfig) (Provider, error) {
	switch cfg.Provider {
	case ProviderHash, "":
		return NewHashProvider(cfg.Dimensions), nil
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("API key is required for OpenAI embedding provider")
		}

		if cfg.BaseURL == "" {
			cfg.BaseURL = "https://api.openai.com/v1"
		}

		return &OpenAIProvider{config: cfg, httpClient: newHTTPClient()}, nil
	case ProviderOllama:
		if cfg.BaseURL == "" {
			cfg.BaseURL = "http://localhost:11434"
		}

		return &OllamaProvider{config: cfg, httpClient: newHTTPClient()}, nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}

// HashProvider generates deterministic bag-of-words embeddings by hashing
// tokens into a fixed number of buckets. It needs no network or model and
// is the default so retrieval works offline; semantic quality is limited
// to term overlap.
type HashProvider struct {
	dimensions int
}

// NewHashProvider creates a hashing embedding provider
func NewHashProvider(dimensions int) *HashProvider {
	if dimensions <= 0 {
		dimensions = 384
	}

	return &HashProvider{dimensions: dimensions}
}

// Embed hashes lowercased tokens into buckets and L2-normalizes the result
func (p *HashProvider) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, p.dimensions)

	for _, token := range tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		vec[int(h.Sum32())%p.dimensions]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}

	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}

	return vec, nil
}

func (p *HashProvider) Dimensions() int { return p.dimensions }

func (p *HashProvider) Name() string { return "hash" }

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

// OpenAIProvider generates embeddings via an OpenAI-compatible /embeddings endpoint
type OpenAIProvider struct {
	config     ProviderConfig
	httpClient *http.Client
}

type openAIEmbeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openAIEmbeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Embed requests an embedding for the given text
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody := openAIEmbeddingRequest{
		Model: p.config.Model,
		Input: []string{text},
	}

	respBody, err := postJSON(ctx, p.httpClient, p.config.BaseURL+"/embeddings", reqBody, map[string]string{
		"Authorization": "Bearer " + p.config.APIKey,
	})
	if err != nil {
		return nil, err
	}

	var response openAIEmbeddingResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, fmt.Errorf("failed to parse embedding response: %w", err)
	}

	if response.Error != nil {
		return nil, fmt.Errorf("embedding API error: %s", response.Error.Message)
	}

	if len(response.Data) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(response.Data))
	}

	return response.Data[0].Embedding, nil
}

func (p *OpenAIProvider) Dimensions() int { return p.config.Dimensions }

func (p *OpenAIProvider) Name() string { return "openai:" + p.config.Model }

// OllamaProvider generates embeddings via a local Ollama instance
type OllamaProvider struct {
	config     ProviderConfig
	httpClient *http.Client
}

type ollamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbeddingResponse struct {
	Embedding []float32 `json:"embedding"`
	Error     string    `json:"error,omitempty"`
}

// Embed requests an embedding for the given text
func (p *OllamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody := ollamaEmbeddingRequest{
		Model:  p.config.Model,
		Prompt: text,
	}

	respBody, err := postJSON(ctx, p.httpClient, p.config.BaseURL+"/api/embeddings", reqBody, nil)
	if err != nil {
		return nil, err
	}

	var response ollamaEmbeddingResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, fmt.Errorf("failed to parse embedding response: %w", err)
	}

	if response.Error != "" {
		return nil, fmt.Errorf("embedding API error: %s", response.Error)
	}

	return response.Embedding, nil
}

func (p *OllamaProvider) Dimensions() int { return p.config.Dimensions }

func (p *OllamaProvider) Name() string { return "ollama:" + p.config.Model }

// postJSON posts a JSON body and returns the raw response bytes
func postJSON(
	ctx context.Context,
	client *http.Client,
	url string,
	reqBody interface{},
	headers map[string]string,
) ([]byte, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
