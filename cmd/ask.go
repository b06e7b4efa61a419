package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/askdb/askdb/internal/formatter"
	"github.com/askdb/askdb/internal/logging"
)

var askRun bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Generate SQL from a natural-language question",
	Long: `Generate a read-only SQL query from a plain-English question against the
active database. The generated query is shown with the model's reasoning and
the validator's verdict; pass --run to execute it when it passes validation.

Examples:
  askdb ask "Show all customers in Lahore"
  askdb ask --run "What is the total revenue per city?"
  askdb ask --db ./shop.sqlite "Count orders for each status"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askRun, "run", false, "Execute the generated query if it validates")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	question := strings.TrimSpace(args[0])
	if question == "" {
		return fmt.Errorf("question cannot be empty")
	}

	db, err := openDatabase(cfg)
	if err != nil {
		printSuggestions(err)
		return err
	}
	defer db.Close()

	pipe, cleanup, err := buildPipeline(db, cfg)
	if err != nil {
		printSuggestions(err)
		return err
	}
	defer cleanup()

	logging.Debugf("generating SQL for question: %s", question)

	// The model round-trip dominates latency
	spin := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	spin.Suffix = " generating SQL..."
	spin.Start()

	gen, err := pipe.Generate(ctx, question)

	spin.Stop()

	if err != nil {
		printSuggestions(err)
		return err
	}

	if gen.Reasoning != "" {
		fmt.Println("Reasoning:")
		fmt.Println(indent(gen.Reasoning))
		fmt.Println()
	}

	if gen.CannotAnswer() {
		fmt.Println("The model determined it cannot answer this question with the available schema.")
		return nil
	}

	fmt.Println("Generated SQL:")
	fmt.Println(indent(gen.SQL))
	fmt.Println()

	if !gen.Verdict.Valid {
		fmt.Printf("Rejected by validator: %s\n", gen.Verdict.Reason)
		return nil
	}

	if !askRun {
		fmt.Println("Query passed validation. Re-run with --run to execute it.")
		return nil
	}

	result, err := pipe.Execute(ctx, gen)

	if entry, ok := pipe.Executor().LatestEntry(); ok {
		fmt.Println(formatter.RenderLogEntry(entry))
	}

	if err != nil {
		return err
	}

	fmt.Println(formatter.RenderResult(result))

	return nil
}

func indent(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}

	return strings.Join(lines, "\n")
}
