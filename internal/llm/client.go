package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/askdb/askdb/internal/errors"
)

// Client implements the Service interface with multiple provider support.
// Groq and OpenAI share the chat-completions wire format; Anthropic and
// Ollama each have their own.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new LLM client with the given configuration
func NewClient(config Config, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
	}

	if err := client.Configure(config); err != nil {
		return nil, err
	}

	return client, nil
}

// Configure validates and applies the client configuration
func (c *Client) Configure(config Config) error {
	if config.Provider == "" {
		return errors.New(errors.ErrTypeConfig, "LLM provider is required")
	}

	if config.Model == "" {
		return errors.New(errors.ErrTypeConfig, "LLM model is required")
	}

	switch config.Provider {
	case ProviderGroq:
		if config.APIKey == "" {
			return errors.NewCompletionError("API key is required for Groq provider")
		}

		if config.BaseURL == "" {
			config.BaseURL = "https://api.groq.com/openai/v1"
		}
	case ProviderOpenAI:
		if config.APIKey == "" {
			return errors.NewCompletionError("API key is required for OpenAI provider")
		}

		if config.BaseURL == "" {
			config.BaseURL = "https://api.openai.com/v1"
		}
	case ProviderAnthropic:
		if config.APIKey == "" {
			return errors.NewCompletionError("API key is required for Anthropic provider")
		}

		if config.BaseURL == "" {
			config.BaseURL = "https://api.anthropic.com/v1"
		}
	case ProviderOllama:
		if config.BaseURL == "" {
			config.BaseURL = "http://localhost:11434"
		}
	default:
		return errors.Newf(errors.ErrTypeConfig, "unsupported LLM provider: %s", config.Provider)
	}

	c.config = config

	return nil
}

// Complete sends the prompt to the configured provider. Temperature is
// pinned to zero for deterministic SQL generation. Transport or API
// failures propagate to the caller; nothing is retried.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	switch c.config.Provider {
	case ProviderGroq, ProviderOpenAI:
		return c.completeChat(ctx, prompt)
	case ProviderAnthropic:
		return c.completeAnthropic(ctx, prompt)
	case ProviderOllama:
		return c.completeOllama(ctx, prompt)
	default:
		return "", errors.Newf(errors.ErrTypeConfig, "unsupported LLM provider: %s", c.config.Provider)
	}
}

// OpenAI-compatible chat completions structures (also used by Groq)
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *chatError   `json:"error,omitempty"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (c *Client) completeChat(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: 0,
		MaxTokens:   2000,
	}

	respBody, err := c.makeRequest(ctx, "/chat/completions", reqBody, map[string]string{
		"Authorization": "Bearer " + c.config.APIKey,
	})
	if err != nil {
		return "", err
	}

	var response chatResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return "", errors.Wrap(err, errors.ErrTypeCompletion, "failed to parse completion response")
	}

	if response.Error != nil {
		return "", errors.Newf(errors.ErrTypeCompletion, "completion API error: %s", response.Error.Message)
	}

	if len(response.Choices) == 0 {
		return "", errors.New(errors.ErrTypeCompletion, "no completion returned")
	}

	return response.Choices[0].Message.Content, nil
}

// Anthropic API structures
type anthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
	Error   *anthropicError    `json:"error,omitempty"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (c *Client) completeAnthropic(ctx context.Context, prompt string) (string, error) {
	reqBody := anthropicRequest{
		Model:     c.config.Model,
		MaxTokens: 2000,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: 0,
	}

	respBody, err := c.makeRequest(ctx, "/messages", reqBody, map[string]string{
		"x-api-key":         c.config.APIKey,
		"anthropic-version": "2023-06-01",
	})
	if err != nil {
		return "", err
	}

	var response anthropicResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return "", errors.Wrap(err, errors.ErrTypeCompletion, "failed to parse completion response")
	}

	if response.Error != nil {
		return "", errors.Newf(errors.ErrTypeCompletion, "completion API error: %s", response.Error.Message)
	}

	if len(response.Content) == 0 {
		return "", errors.New(errors.ErrTypeCompletion, "no completion returned")
	}

	return response.Content[0].Text, nil
}

// Ollama API structures
type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

func (c *Client) completeOllama(ctx context.Context, prompt string) (string, error) {
	reqBody := ollamaRequest{
		Model:   c.config.Model,
		Prompt:  prompt,
		Stream:  false,
		Options: ollamaOptions{Temperature: 0},
	}

	respBody, err := c.makeRequest(ctx, "/api/generate", reqBody, nil)
	if err != nil {
		return "", err
	}

	var response ollamaResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return "", errors.Wrap(err, errors.ErrTypeCompletion, "failed to parse completion response")
	}

	if response.Error != "" {
		return "", errors.Newf(errors.ErrTypeCompletion, "completion API error: %s", response.Error)
	}

	return response.Response, nil
}

// makeRequest makes an HTTP request to the provider API
func (c *Client) makeRequest(
	ctx context.Context,
	endpoint string,
	reqBody interface{},
	headers map[string]string,
) ([]byte, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeInternal, "failed to marshal request")
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.config.BaseURL+endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeCompletion, "failed to create request")
	}

	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeCompletion, "completion request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeCompletion, "failed to read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf(errors.ErrTypeCompletion,
			"API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
