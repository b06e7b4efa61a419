package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/askdb/askdb/internal/executor"
)

func TestRenderResult(t *testing.T) {
	result := &executor.Result{
		Columns: []string{"name", "city"},
		Rows: [][]string{
			{"Ali Khan", "Lahore"},
			{"Sara Ahmed", "Karachi"},
		},
	}

	rendered := RenderResult(result)

	assert.Contains(t, rendered, "NAME")
	assert.Contains(t, rendered, "Ali Khan")
	assert.Contains(t, rendered, "Karachi")
	assert.Contains(t, rendered, "2 row(s)")
}

func TestRenderResultEmpty(t *testing.T) {
	result := &executor.Result{Columns: []string{"amount"}}

	rendered := RenderResult(result)

	assert.Contains(t, rendered, "AMOUNT")
	assert.Contains(t, rendered, "0 row(s)")
}

func TestRenderLogEntry(t *testing.T) {
	success := executor.LogEntry{
		Query:    "SELECT * FROM customers;",
		Status:   executor.StatusSuccess,
		Duration: 12500 * time.Microsecond,
	}
	assert.Equal(t, "[Success] SELECT * FROM customers; (0.0125s)", RenderLogEntry(success))

	failure := executor.LogEntry{
		Query:  "SELECT nope FROM customers;",
		Status: executor.StatusError,
		Err:    "no such column: nope",
	}

	rendered := RenderLogEntry(failure)
	assert.Contains(t, rendered, "[Error]")
	assert.Contains(t, rendered, "no such column: nope")
}

func TestRenderLogEntryTruncatesLongQueries(t *testing.T) {
	entry := executor.LogEntry{
		Query:  "SELECT " + strings.Repeat("really_long_column_name, ", 10) + "id FROM orders;",
		Status: executor.StatusSuccess,
	}

	rendered := RenderLogEntry(entry)
	assert.Contains(t, rendered, "...")
	assert.Less(t, len(rendered), 100)
}

func TestRenderLogEntryCollapsesWhitespace(t *testing.T) {
	entry := executor.LogEntry{
		Query:  "SELECT *\n  FROM   customers",
		Status: executor.StatusSuccess,
	}

	assert.Contains(t, RenderLogEntry(entry), "SELECT * FROM customers")
}
