package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askdb/askdb/internal/errors"
)

func TestConfigure(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
		errType errors.ErrorType
	}{
		{
			name:   "groq with key",
			config: Config{Provider: ProviderGroq, Model: "llama-3.3-70b-versatile", APIKey: "gsk_test"},
		},
		{
			name:   "openai with key",
			config: Config{Provider: ProviderOpenAI, Model: "gpt-4o-mini", APIKey: "sk-test"},
		},
		{
			name:   "anthropic with key",
			config: Config{Provider: ProviderAnthropic, Model: "claude-sonnet-4-20250514", APIKey: "sk-ant-test"},
		},
		{
			name:   "ollama needs no key",
			config: Config{Provider: ProviderOllama, Model: "llama3"},
		},
		{
			name:    "groq without key",
			config:  Config{Provider: ProviderGroq, Model: "llama-3.3-70b-versatile"},
			wantErr: true,
			errType: errors.ErrTypeCompletion,
		},
		{
			name:    "missing provider",
			config:  Config{Model: "gpt-4o-mini"},
			wantErr: true,
			errType: errors.ErrTypeConfig,
		},
		{
			name:    "missing model",
			config:  Config{Provider: ProviderGroq, APIKey: "gsk_test"},
			wantErr: true,
			errType: errors.ErrTypeConfig,
		},
		{
			name:    "unsupported provider",
			config:  Config{Provider: "bedrock", Model: "titan"},
			wantErr: true,
			errType: errors.ErrTypeConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.config, time.Second)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, tt.errType), "expected %s, got %v", tt.errType, err)

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestConfigureDefaultBaseURLs(t *testing.T) {
	client, err := NewClient(Config{Provider: ProviderGroq, Model: "m", APIKey: "k"}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "https://api.groq.com/openai/v1", client.config.BaseURL)

	client, err = NewClient(Config{Provider: ProviderOllama, Model: "m"}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434", client.config.BaseURL)

	client, err = NewClient(Config{Provider: ProviderGroq, Model: "m", APIKey: "k", BaseURL: "http://proxy:8080"}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "http://proxy:8080", client.config.BaseURL)
}

func TestCompleteChat(t *testing.T) {
	var captured chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk_test", r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(chatResponse{
			Choices: []chatChoice{
				{Message: chatMessage{Role: "assistant", Content: "### SQL START ###\nSELECT 1;"}},
			},
		})
	}))
	defer server.Close()

	client, err := NewClient(Config{
		Provider: ProviderGroq,
		Model:    "llama-3.3-70b-versatile",
		APIKey:   "gsk_test",
		BaseURL:  server.URL,
	}, time.Second)
	require.NoError(t, err)

	completion, err := client.Complete(context.Background(), "show all customers")
	require.NoError(t, err)
	assert.Equal(t, "### SQL START ###\nSELECT 1;", completion)

	assert.Equal(t, "llama-3.3-70b-versatile", captured.Model)
	assert.Zero(t, captured.Temperature)
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "user", captured.Messages[0].Role)
	assert.Equal(t, "show all customers", captured.Messages[0].Content)
}

func TestCompleteAnthropic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "k", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		json.NewEncoder(w).Encode(anthropicResponse{
			Content: []anthropicContent{{Type: "text", Text: "SELECT 2;"}},
		})
	}))
	defer server.Close()

	client, err := NewClient(Config{
		Provider: ProviderAnthropic,
		Model:    "claude-sonnet-4-20250514",
		APIKey:   "k",
		BaseURL:  server.URL,
	}, time.Second)
	require.NoError(t, err)

	completion, err := client.Complete(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 2;", completion)
}

func TestCompleteOllama(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)

		json.NewEncoder(w).Encode(ollamaResponse{Response: "SELECT 3;", Done: true})
	}))
	defer server.Close()

	client, err := NewClient(Config{
		Provider: ProviderOllama,
		Model:    "llama3",
		BaseURL:  server.URL,
	}, time.Second)
	require.NoError(t, err)

	completion, err := client.Complete(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 3;", completion)
}

func TestCompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{
			Error: &chatError{Message: "rate limit exceeded", Type: "rate_limit"},
		})
	}))
	defer server.Close()

	client, err := NewClient(Config{
		Provider: ProviderGroq,
		Model:    "m",
		APIKey:   "k",
		BaseURL:  server.URL,
	}, time.Second)
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeCompletion))
	assert.Contains(t, err.Error(), "rate limit exceeded")
}

func TestCompleteHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewClient(Config{
		Provider: ProviderOpenAI,
		Model:    "m",
		APIKey:   "bad",
		BaseURL:  server.URL,
	}, time.Second)
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeCompletion))
	assert.Contains(t, err.Error(), "status 401")
}

func TestCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{})
	}))
	defer server.Close()

	client, err := NewClient(Config{
		Provider: ProviderGroq,
		Model:    "m",
		APIKey:   "k",
		BaseURL:  server.URL,
	}, time.Second)
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no completion returned")
}
