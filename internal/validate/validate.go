// Package validate is the deterministic safety gate between generated SQL
// and the database. It is a conservative syntactic allowlist: only a single,
// comment-free, read-only SELECT passes. It never inspects query intent.
package validate

import (
	"fmt"
	"regexp"
	"strings"
)

// prohibitedKeywords blocks DML, DDL, and engine control statements.
// Matching is whole-word so identifiers like UPDATED_AT pass.
var prohibitedKeywords = []string{
	"INSERT", "UPDATE", "DELETE", "DROP", "ALTER",
	"ATTACH", "DETACH", "PRAGMA", "TRUNCATE", "REPLACE",
	"CREATE", "GRANT", "REVOKE", "COMMIT", "ROLLBACK", "EXEC", "EXECUTE",
}

var (
	selectPattern    = regexp.MustCompile(`(?i)^\s*SELECT`)
	prohibitedRegexp = regexp.MustCompile(`\b(` + strings.Join(prohibitedKeywords, "|") + `)\b`)
)

// Verdict is the result of validating a SQL string. It is a pure function
// of the input with no side effects.
type Verdict struct {
	Valid  bool
	Reason string
}

// Query applies the validation rules in order; the first failure wins.
func Query(query string) Verdict {
	query = strings.TrimSpace(query)

	if query == "" {
		return Verdict{Valid: false, Reason: "query is empty"}
	}

	// A semicolon anywhere except the final character means multiple statements
	if strings.Contains(query[:len(query)-1], ";") {
		return Verdict{Valid: false, Reason: "multiple statements are not allowed"}
	}

	if !selectPattern.MatchString(query) {
		return Verdict{Valid: false, Reason: "only SELECT queries are allowed"}
	}

	if match := prohibitedRegexp.FindString(strings.ToUpper(query)); match != "" {
		return Verdict{Valid: false, Reason: fmt.Sprintf("prohibited keyword detected: %s", match)}
	}

	// Comments can hide statement truncation tricks
	if strings.Contains(query, "--") || strings.Contains(query, "/*") {
		return Verdict{Valid: false, Reason: "SQL comments are not allowed"}
	}

	return Verdict{Valid: true, Reason: "valid SQL"}
}
