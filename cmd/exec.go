package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/askdb/askdb/internal/executor"
	"github.com/askdb/askdb/internal/formatter"
	"github.com/askdb/askdb/internal/validate"
)

var execCmd = &cobra.Command{
	Use:   "exec <sql>",
	Short: "Run a hand-written SQL query",
	Long: `Execute a SQL query you wrote yourself. The same validator that gates
generated queries applies: only a single, comment-free SELECT is accepted.

Example:
  askdb exec "SELECT * FROM customers LIMIT 5;"`,
	Args: cobra.ExactArgs(1),
	RunE: runExec,
}

func runExec(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	query := strings.TrimSpace(args[0])

	if verdict := validate.Query(query); !verdict.Valid {
		return fmt.Errorf("validation error: %s", verdict.Reason)
	}

	db, err := openDatabase(cfg)
	if err != nil {
		printSuggestions(err)
		return err
	}
	defer db.Close()

	exec := executor.New(db)

	result, err := exec.Run(ctx, query)

	if entry, ok := exec.LatestEntry(); ok {
		fmt.Println(formatter.RenderLogEntry(entry))
	}

	if err != nil {
		return err
	}

	fmt.Println(formatter.RenderResult(result))

	return nil
}
