package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompletion(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		reasoning string
		sql       string
	}{
		{
			name:      "separator path",
			raw:       "The question asks for all customers.\n### SQL START ###\nSELECT * FROM customers;",
			reasoning: "The question asks for all customers.",
			sql:       "SELECT * FROM customers;",
		},
		{
			name:      "separator with fenced sql",
			raw:       "```sql\nLooking at the orders table.\n### SQL START ###\nSELECT id FROM orders;\n```",
			reasoning: "Looking at the orders table.",
			sql:       "SELECT id FROM orders;",
		},
		{
			name: "fenced block without separator",
			raw:  "```sql\nSELECT name FROM customers;\n```",
			sql:  "SELECT name FROM customers;",
		},
		{
			name:      "fallback to first select with preamble",
			raw:       "Here is the query you need:\nSELECT amount FROM orders;",
			reasoning: "Here is the query you need:",
			sql:       "SELECT amount FROM orders;",
		},
		{
			name: "short preamble is not reasoning",
			raw:  "Ok:\nSELECT 1;",
			sql:  "SELECT 1;",
		},
		{
			name: "truncate at first semicolon",
			raw:  "SELECT a FROM b; SELECT c FROM d;",
			sql:  "SELECT a FROM b;",
		},
		{
			name: "trailing note discarded",
			raw:  "SELECT * FROM orders\nNote: this returns every row.",
			sql:  "SELECT * FROM orders",
		},
		{
			name: "trailing explanation discarded",
			raw:  "### SQL START ###\nSELECT status FROM orders;\nExplanation: groups are not needed here.",
			sql:  "SELECT status FROM orders;",
		},
		{
			name: "comment lines dropped",
			raw:  "SELECT * FROM customers\n-- filtered\nWHERE city = 'Lahore';",
			sql:  "SELECT * FROM customers\nWHERE city = 'Lahore';",
		},
		{
			name: "cannot answer sentinel survives",
			raw:  "### SQL START ###\nCANNOT_ANSWER",
			sql:  CannotAnswer,
		},
		{
			name:      "cannot answer with reasoning",
			raw:       "The schema has no revenue column.\n### SQL START ###\nCANNOT_ANSWER",
			reasoning: "The schema has no revenue column.",
			sql:       CannotAnswer,
		},
		{
			name: "no sql at all",
			raw:  "I am not sure what you mean.",
			sql:  "I am not sure what you mean.",
		},
		{
			name: "empty input",
			raw:  "",
			sql:  "",
		},
		{
			name: "lowercase select fallback",
			raw:  "select id from customers;",
			sql:  "select id from customers;",
		},
		{
			name:      "reasoning comment delimiters stripped",
			raw:       "/* checking joins */\n### SQL START ###\nSELECT 1;",
			reasoning: "checking joins",
			sql:       "SELECT 1;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Completion(tt.raw)
			assert.Equal(t, tt.reasoning, result.Reasoning, "reasoning")
			assert.Equal(t, tt.sql, result.SQL, "sql")
		})
	}
}

func TestCompletionNeverPanics(t *testing.T) {
	inputs := []string{
		"```",
		"```sql",
		"### SQL START ###",
		";",
		"```\n```\n```",
	}

	for _, raw := range inputs {
		assert.NotPanics(t, func() { Completion(raw) }, "input %q", raw)
	}
}
