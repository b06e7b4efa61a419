package cmd

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/askdb/askdb/internal/config"
	"github.com/askdb/askdb/internal/contextstore"
	"github.com/askdb/askdb/internal/errors"
	"github.com/askdb/askdb/internal/llm"
	"github.com/askdb/askdb/internal/pipeline"
	"github.com/askdb/askdb/internal/prompt"
)

// openDatabase opens the active SQLite database, requiring the file to exist
func openDatabase(cfg *config.Config) (*sql.DB, error) {
	if _, err := os.Stat(cfg.Database.Path); err != nil {
		return nil, errors.Newf(errors.ErrTypeDatabase,
			"database not found at %s", cfg.Database.Path).
			WithSuggestion("Run 'askdb seed' to create the demo database").
			WithSuggestion("Point --db at an existing SQLite file")
	}

	db, err := sql.Open("sqlite", cfg.Database.Path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to open database")
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to connect to database")
	}

	return db, nil
}

// buildPipeline wires the context store, LLM client, and prompt template
// around an open database handle. The returned cleanup closes the store.
func buildPipeline(db *sql.DB, cfg *config.Config) (*pipeline.Pipeline, func(), error) {
	provider, err := contextstore.NewProvider(contextstore.ProviderConfig{
		Provider:   cfg.Embedding.Provider,
		Model:      cfg.Embedding.Model,
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Dimensions: cfg.Embedding.Dimensions,
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrTypeConfig, "failed to create embedding provider")
	}

	store, err := contextstore.Open(cfg.Context.Path, provider)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrTypeContextStore, "failed to open context store")
	}

	timeout, err := time.ParseDuration(cfg.LLM.Timeout)
	if err != nil {
		timeout = 60 * time.Second
	}

	client, err := llm.NewClient(llm.Config{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
	}, timeout)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	template, err := prompt.Load(cfg.Prompt.TemplatePath)
	if err != nil {
		store.Close()
		return nil, nil, errors.Wrap(err, errors.ErrTypeConfig, "failed to load prompt template")
	}

	p := pipeline.New(db, cfg.Database.Path, store, client, template, pipeline.Options{
		SampleLimit: cfg.Database.SampleLimit,
		RetrievalK:  cfg.Context.RetrievalK,
	})

	cleanup := func() { _ = store.Close() }

	return p, cleanup, nil
}

// printSuggestions prints resolution hints attached to structured errors
func printSuggestions(err error) {
	var structErr *errors.Error
	if !errors.AsError(err, &structErr) {
		return
	}

	for _, suggestion := range structErr.Suggestions {
		fmt.Fprintf(os.Stderr, "  hint: %s\n", suggestion)
	}
}
