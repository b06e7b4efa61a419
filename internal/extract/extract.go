// Package extract parses free-form model completions into (reasoning, SQL).
// The model is untrusted and its output is best-effort text; every stage
// here degrades instead of failing, and the validator remains the single
// enforced safety boundary downstream.
package extract

import (
	"strings"
)

// Separator is the literal marker the prompt template instructs the model
// to emit between reasoning and SQL
const Separator = "### SQL START ###"

// CannotAnswer is the sentinel the model emits when no valid query can be
// produced for the question
const CannotAnswer = "CANNOT_ANSWER"

// Result holds the parsed completion. SQL is the cleaned candidate
// statement: it may be empty, non-SQL garbage, or the CannotAnswer
// sentinel; the validator decides whether it runs.
type Result struct {
	Reasoning string
	SQL       string
}

// Completion parses raw model output using a layered heuristic:
//
//  1. strip fenced code block markers and a leading "sql" language tag
//  2. split on the separator when present (the reliable path)
//  3. otherwise fall back to the first occurrence of SELECT
//  4. drop comment lines and truncate at trailing Note:/Explanation: text
//  5. truncate to the first semicolon so at most one statement survives
//
// It never fails; malformed input yields an empty or unhelpful SQL string.
func Completion(raw string) Result {
	text := strings.TrimSpace(raw)
	text = stripFences(text)

	var reasoning string

	// Separator split is the reliable path
	if strings.Contains(text, Separator) {
		parts := strings.SplitN(text, Separator, 2)
		reasoning = strings.TrimSpace(parts[0])
		text = strings.TrimSpace(parts[1])
	} else if idx := strings.Index(strings.ToUpper(text), "SELECT"); idx >= 0 {
		// Fallback: treat the first SELECT as the statement start; anything
		// substantial before it is reasoning
		pre := strings.TrimSpace(text[:idx])
		if len(pre) > 5 {
			reasoning = pre
		}

		text = text[idx:]
	}

	text = cleanLines(text)

	// Keep at most one statement: cut at the first semicolon, inclusive
	if idx := strings.Index(text, ";"); idx >= 0 {
		text = text[:idx+1]
	}

	return Result{
		Reasoning: cleanReasoning(reasoning),
		SQL:       strings.TrimSpace(text),
	}
}

// stripFences removes markdown code fences and a leading language tag
func stripFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}

	parts := strings.Split(text, "```")
	if len(parts) < 2 {
		return text
	}

	text = strings.TrimSpace(parts[1])
	if strings.HasPrefix(strings.ToLower(text), "sql") {
		text = strings.TrimSpace(text[3:])
	}

	return text
}

// cleanLines walks the candidate line by line: everything from the first
// Note:/Explanation: line onward is discarded, and comment lines are
// dropped while the rest keep their original order
func cleanLines(text string) string {
	var kept []string

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "Note:") || strings.HasPrefix(trimmed, "Explanation:") {
			break
		}

		if strings.HasPrefix(trimmed, "--") || strings.HasPrefix(trimmed, "/*") {
			continue
		}

		kept = append(kept, line)
	}

	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// cleanReasoning strips residual comment delimiters from isolated reasoning
func cleanReasoning(reasoning string) string {
	reasoning = strings.ReplaceAll(reasoning, "/*", "")
	reasoning = strings.ReplaceAll(reasoning, "*/", "")

	return strings.TrimSpace(reasoning)
}
