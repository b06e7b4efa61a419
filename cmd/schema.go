package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/askdb/askdb/internal/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show the enriched schema of the active database",
	Long: `Print the schema description the model sees: tables, columns with
declared types, sampled values for text columns, and foreign keys.`,
	Args: cobra.NoArgs,
	RunE: runSchema,
}

func runSchema(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	db, err := openDatabase(cfg)
	if err != nil {
		printSuggestions(err)
		return err
	}
	defer db.Close()

	enricher := schema.NewEnricher(db, cfg.Database.SampleLimit)

	text := enricher.Render(ctx)
	if text == "" {
		fmt.Println("The database has no tables.")
		return nil
	}

	fmt.Println(text)

	return nil
}
