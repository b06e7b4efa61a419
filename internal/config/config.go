package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config represents the application configuration. Environment variables are
// read with the ASKDB_ prefix applied at parse time.
type Config struct {
	Database  DatabaseConfig  `json:"database"`
	Context   ContextConfig   `json:"context"`
	LLM       LLMConfig       `json:"llm"`
	Embedding EmbeddingConfig `json:"embedding"`
	Prompt    PromptConfig    `json:"prompt"`
	Logging   LoggingConfig   `json:"logging"`
}

// DatabaseConfig represents the target relational database configuration
type DatabaseConfig struct {
	Path         string `json:"path"          env:"DB_PATH"          envDefault:"~/.config/askdb/demo.sqlite"`
	SampleLimit  int    `json:"sample_limit"  env:"DB_SAMPLE_LIMIT"  envDefault:"5"`
	QueryTimeout string `json:"query_timeout" env:"DB_QUERY_TIMEOUT" envDefault:"30s"`
}

// ContextConfig represents the embedding-indexed context store configuration
type ContextConfig struct {
	Path       string `json:"path"        env:"CONTEXT_PATH"        envDefault:"~/.config/askdb/context.sqlite"`
	RetrievalK int    `json:"retrieval_k" env:"CONTEXT_RETRIEVAL_K" envDefault:"3"`
}

// LLMConfig represents completion-service configuration
type LLMConfig struct {
	Provider string `json:"provider" env:"LLM_PROVIDER" envDefault:"groq"`
	Model    string `json:"model"    env:"LLM_MODEL"    envDefault:"llama-3.3-70b-versatile"`
	APIKey   string `json:"api_key"  env:"LLM_API_KEY"`
	BaseURL  string `json:"base_url" env:"LLM_BASE_URL"`
	Timeout  string `json:"timeout"  env:"LLM_TIMEOUT"  envDefault:"60s"`
}

// EmbeddingConfig represents embedding-provider configuration
type EmbeddingConfig struct {
	Provider   string `json:"provider"   env:"EMBEDDING_PROVIDER"   envDefault:"hash"`
	Model      string `json:"model"      env:"EMBEDDING_MODEL"      envDefault:"all-minilm"`
	APIKey     string `json:"api_key"    env:"EMBEDDING_API_KEY"`
	BaseURL    string `json:"base_url"   env:"EMBEDDING_BASE_URL"`
	Dimensions int    `json:"dimensions" env:"EMBEDDING_DIMENSIONS" envDefault:"384"`
}

// PromptConfig represents prompt-template configuration
type PromptConfig struct {
	TemplatePath string `json:"template_path" env:"PROMPT_TEMPLATE_PATH"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `json:"level"  env:"LOG_LEVEL"  envDefault:"info"`   // debug, info, warn, error
	Format string `json:"format" env:"LOG_FORMAT" envDefault:"text"`   // text, json
	Output string `json:"output" env:"LOG_OUTPUT" envDefault:"stderr"` // stdout, stderr, file
	File   string `json:"file"   env:"LOG_FILE"   envDefault:"~/.config/askdb/logs/askdb.log"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig() (*Config, error) {
	return LoadConfigWithOverrides(nil)
}

// LoadConfigWithOverrides loads configuration with optional command-line flag
// overrides. Precedence, lowest to highest: envDefault tags, config file,
// environment variables, flags.
func LoadConfigWithOverrides(flagOverrides map[string]interface{}) (*Config, error) {
	// Defaults come from the envDefault tags, parsed against an empty
	// environment so real variables cannot leak in yet
	defaults := &Config{}
	if err := env.ParseWithOptions(defaults, env.Options{
		Prefix:      "ASKDB_",
		Environment: map[string]string{},
	}); err != nil {
		return nil, fmt.Errorf("failed to apply configuration defaults: %w", err)
	}

	config := &Config{}
	*config = *defaults

	// The config file overrides defaults
	configPath := getConfigPath()
	if _, err := os.Stat(configPath); err == nil {
		if err := loadConfigFromFile(config, configPath); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Environment variables override file values. Fields the environment did
	// not set come back holding their defaults and are left alone.
	fromEnv := &Config{}
	if err := env.ParseWithOptions(fromEnv, env.Options{
		Prefix: "ASKDB_",
	}); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	mergeChanged(config, fromEnv, defaults)

	if flagOverrides != nil {
		applyFlagOverrides(config, flagOverrides)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadConfigFromFile loads configuration from a JSON file
func loadConfigFromFile(config *Config, configPath string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fileConfig Config
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	mergeConfigs(config, &fileConfig)

	return nil
}

// applyFlagOverrides applies command-line flag overrides to configuration
func applyFlagOverrides(config *Config, overrides map[string]interface{}) {
	for key, value := range overrides {
		switch key {
		case "db":
			if str, ok := value.(string); ok && str != "" {
				config.Database.Path = str
			}
		case "log-level":
			if str, ok := value.(string); ok && str != "" {
				config.Logging.Level = str
			}
		case "provider":
			if str, ok := value.(string); ok && str != "" {
				config.LLM.Provider = str
			}
		case "model":
			if str, ok := value.(string); ok && str != "" {
				config.LLM.Model = str
			}
		case "template":
			if str, ok := value.(string); ok && str != "" {
				config.Prompt.TemplatePath = str
			}
		}
	}
}

// mergeConfigs merges source configuration into target configuration
func mergeConfigs(target, source *Config) {
	var mergeValues func(t, s reflect.Value)
	mergeValues = func(t, s reflect.Value) {
		if t.Kind() != s.Kind() {
			return
		}

		if t.Kind() == reflect.Struct {
			for i := range s.NumField() {
				mergeValues(t.Field(i), s.Field(i))
			}
		} else if !s.IsZero() {
			t.Set(s)
		}
	}

	mergeValues(reflect.ValueOf(target).Elem(), reflect.ValueOf(source).Elem())
}

// mergeChanged copies into target every source field that differs from its
// default. An env var set to exactly the default value is indistinguishable
// from an unset one and leaves the file value in place.
func mergeChanged(target, source, defaults *Config) {
	var merge func(t, s, d reflect.Value)
	merge = func(t, s, d reflect.Value) {
		if t.Kind() == reflect.Struct {
			for i := range t.NumField() {
				merge(t.Field(i), s.Field(i), d.Field(i))
			}
		} else if !s.Equal(d) {
			t.Set(s)
		}
	}

	merge(reflect.ValueOf(target).Elem(), reflect.ValueOf(source).Elem(), reflect.ValueOf(defaults).Elem())
}

// validateConfig validates the configuration for common errors
func validateConfig(config *Config) error {
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf(
			"invalid log level: %s (must be debug, info, warn, or error)",
			config.Logging.Level,
		)
	}

	validLogFormats := map[string]bool{
		"text": true, "json": true,
	}
	if !validLogFormats[strings.ToLower(config.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", config.Logging.Format)
	}

	validLogOutputs := map[string]bool{
		"stdout": true, "stderr": true, "file": true,
	}
	if !validLogOutputs[strings.ToLower(config.Logging.Output)] {
		return fmt.Errorf(
			"invalid log output: %s (must be stdout, stderr, or file)",
			config.Logging.Output,
		)
	}

	if _, err := time.ParseDuration(config.Database.QueryTimeout); err != nil {
		return fmt.Errorf("invalid database query timeout: %s", config.Database.QueryTimeout)
	}

	if _, err := time.ParseDuration(config.LLM.Timeout); err != nil {
		return fmt.Errorf("invalid LLM timeout: %s", config.LLM.Timeout)
	}

	if config.Database.SampleLimit <= 0 {
		return fmt.Errorf("sample limit must be positive: %d", config.Database.SampleLimit)
	}

	if config.Context.RetrievalK <= 0 {
		return fmt.Errorf("retrieval k must be positive: %d", config.Context.RetrievalK)
	}

	if config.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding dimensions must be positive: %d", config.Embedding.Dimensions)
	}

	return nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *Config) error {
	configPath := getConfigPath()

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// getConfigPath returns the path to the configuration file
func getConfigPath() string {
	if configPath := os.Getenv("ASKDB_CONFIG"); configPath != "" {
		return ExpandPath(configPath)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}

	return filepath.Join(homeDir, ".config", "askdb", "config.json")
}

// ExpandPath expands ~ to home directory in file paths
func ExpandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return homeDir
	}

	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:])
	}

	return path
}

// ExpandAllPaths expands all paths in the configuration
func (c *Config) ExpandAllPaths() {
	c.Database.Path = ExpandPath(c.Database.Path)
	c.Context.Path = ExpandPath(c.Context.Path)
	c.Logging.File = ExpandPath(c.Logging.File)

	if c.Prompt.TemplatePath != "" {
		c.Prompt.TemplatePath = ExpandPath(c.Prompt.TemplatePath)
	}
}

// EnsureDirectories creates necessary directories for the configuration
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		filepath.Dir(c.Database.Path),
		filepath.Dir(c.Context.Path),
		filepath.Dir(c.Logging.File),
	}

	for _, dir := range dirs {
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}

	return nil
}
