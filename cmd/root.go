package cmd

import (
	"github.com/spf13/cobra"

	"github.com/askdb/askdb/internal/config"
	"github.com/askdb/askdb/internal/logging"
)

var (
	flagDB       string
	flagLogLevel string
	flagProvider string
	flagModel    string
	flagTemplate string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "askdb",
	Short: "Ask questions of a SQLite database in plain English",
	Long: `askdb turns natural-language questions into safe, read-only SQL queries.
It introspects the active database schema, grounds generation with an
embedding-indexed context store, asks a language model for a query, and gates
execution behind a deterministic SELECT-only validator.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error

		cfg, err = config.LoadConfigWithOverrides(map[string]interface{}{
			"db":        flagDB,
			"log-level": flagLogLevel,
			"provider":  flagProvider,
			"model":     flagModel,
			"template":  flagTemplate,
		})
		if err != nil {
			return err
		}

		cfg.ExpandAllPaths()

		if err := cfg.EnsureDirectories(); err != nil {
			return err
		}

		if err := logging.InitializeLogger(cfg.Logging); err != nil {
			logging.SetupFallbackLogger()
		}

		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Path to the SQLite database to query")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", "", "LLM provider: groq, openai, anthropic, ollama")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "LLM model name")
	rootCmd.PersistentFlags().StringVar(&flagTemplate, "template", "", "Path to a custom prompt template")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(seedCmd)
}
