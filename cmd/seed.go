package cmd

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/askdb/askdb/internal/logging"
	"github.com/askdb/askdb/internal/seed"
)

var seedForce bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create and populate the demo database",
	Long: `Create the demo database with sample customers and orders tables.

The database is written to the configured database path. Existing demo
tables are dropped and recreated.

Example:
  askdb seed
  askdb seed --db ./demo.sqlite`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "Overwrite an existing database file without prompting")
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if _, err := os.Stat(cfg.Database.Path); err == nil && !seedForce {
		return fmt.Errorf("database already exists at %s (use --force to reseed)", cfg.Database.Path)
	}

	db, err := sql.Open("sqlite", cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := seed.Demo(ctx, db); err != nil {
		return err
	}

	logging.Infof("Seeded demo database at %s", cfg.Database.Path)
	fmt.Printf("Demo database created at %s\n", cfg.Database.Path)
	fmt.Println("Try: askdb ask \"Show all customers in Lahore\"")

	return nil
}
