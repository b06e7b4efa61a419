package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askdb/askdb/internal/config"
	"github.com/askdb/askdb/internal/errors"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()

	return &config.Config{
		Database: config.DatabaseConfig{
			Path:         filepath.Join(dir, "demo.sqlite"),
			SampleLimit:  5,
			QueryTimeout: "30s",
		},
		Context: config.ContextConfig{
			Path:       filepath.Join(dir, "context.sqlite"),
			RetrievalK: 3,
		},
		LLM: config.LLMConfig{
			Provider: "ollama",
			Model:    "llama3",
			Timeout:  "60s",
		},
		Embedding: config.EmbeddingConfig{
			Provider:   "hash",
			Dimensions: 64,
		},
	}
}

func TestOpenDatabaseMissingFile(t *testing.T) {
	cfg := testConfig(t)

	_, err := openDatabase(cfg)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeDatabase))

	var structErr *errors.Error
	require.True(t, errors.AsError(err, &structErr))
	assert.NotEmpty(t, structErr.Suggestions)
}

func TestBuildPipeline(t *testing.T) {
	cfg := testConfig(t)

	pipe, cleanup, err := buildPipeline(nil, cfg)
	require.NoError(t, err)

	defer cleanup()

	assert.NotNil(t, pipe)
	assert.NotNil(t, pipe.Executor())
}

func TestBuildPipelineBadEmbeddingProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.Embedding.Provider = "unknown"

	_, _, err := buildPipeline(nil, cfg)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
}

func TestBuildPipelineBadLLMConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLM.Provider = "groq" // requires an API key

	_, _, err := buildPipeline(nil, cfg)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeCompletion))
}
