// Package formatter renders query results and log entries for the terminal.
package formatter

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/askdb/askdb/internal/executor"
)

// RenderResult renders a tabular query result. An empty result set still
// shows the column header so the user sees the query shape.
func RenderResult(result *executor.Result) string {
	t := table.NewWriter()

	header := make(table.Row, len(result.Columns))
	for i, col := range result.Columns {
		header[i] = col
	}

	t.AppendHeader(header)

	for _, row := range result.Rows {
		tableRow := make(table.Row, len(row))
		for i, cell := range row {
			tableRow[i] = cell
		}

		t.AppendRow(tableRow)
	}

	t.SetStyle(table.StyleRounded)

	rendered := t.Render()

	return fmt.Sprintf("%s\n%d row(s)", rendered, len(result.Rows))
}

// RenderLogEntry renders a session log entry in a single line
func RenderLogEntry(entry executor.LogEntry) string {
	if entry.Status == executor.StatusError {
		return fmt.Sprintf("[%s] %s (%s)", entry.Status, truncateQuery(entry.Query), entry.Err)
	}

	return fmt.Sprintf("[%s] %s (%.4fs)", entry.Status, truncateQuery(entry.Query),
		entry.Duration.Seconds())
}

func truncateQuery(query string) string {
	query = strings.Join(strings.Fields(query), " ")
	if len(query) > 60 {
		return query[:57] + "..."
	}

	return query
}
