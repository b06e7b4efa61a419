package cmd

import (
	"fmt"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/askdb/askdb/internal/executor"
	"github.com/askdb/askdb/internal/formatter"
	"github.com/askdb/askdb/internal/validate"
)

var browseLimit int

// Table names are restricted to plain identifiers; anything else would need
// quoting and is not worth supporting in a preview command
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var browseCmd = &cobra.Command{
	Use:   "browse <table>",
	Short: "Preview rows of a table",
	Long: `Show the first rows of a table in the active database.

Example:
  askdb browse customers --limit 10`,
	Args: cobra.ExactArgs(1),
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().IntVar(&browseLimit, "limit", 10, "Maximum number of rows to show")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	tableName := args[0]

	if !identifierPattern.MatchString(tableName) {
		return fmt.Errorf("invalid table name: %s", tableName)
	}

	if browseLimit <= 0 || browseLimit > 1000 {
		return fmt.Errorf("limit must be between 1 and 1000")
	}

	query := fmt.Sprintf("SELECT * FROM %s LIMIT %d;", tableName, browseLimit)

	// Previews go through the same gate as everything else
	if verdict := validate.Query(query); !verdict.Valid {
		return fmt.Errorf("validation error: %s", verdict.Reason)
	}

	db, err := openDatabase(cfg)
	if err != nil {
		printSuggestions(err)
		return err
	}
	defer db.Close()

	result, err := executor.New(db).Run(ctx, query)
	if err != nil {
		return err
	}

	fmt.Println(formatter.RenderResult(result))

	return nil
}
