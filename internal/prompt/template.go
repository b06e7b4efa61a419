// Package prompt assembles the completion request from the instruction
// template, the enriched schema, the retrieved context, and the question.
package prompt

import (
	"fmt"
	"os"
	"strings"
)

// Placeholders the template must contain
const (
	PlaceholderSchema    = "{schema_context}"
	PlaceholderRetrieved = "{retrieved_context}"
	PlaceholderQuestion  = "{user_question}"
)

// defaultTemplate instructs the model to emit reasoning, then the
// "### SQL START ###" separator, then exactly one statement, or the
// CANNOT_ANSWER sentinel. The extractor depends on this contract.
const defaultTemplate = `You are an expert SQLite query writer. Answer the user's question by writing exactly one read-only SQL query against the database described below.

Database schema:
{schema_context}

Relevant reference context:
{retrieved_context}

User question: {user_question}

Instructions:
1. Briefly explain your reasoning: which tables, joins, and filters you need.
2. Then write the line: ### SQL START ###
3. After the separator, write exactly one SQLite SELECT statement terminated by a semicolon. Nothing else.
4. Only SELECT statements are allowed. Never write queries that modify data or schema.
5. Use only tables and columns that appear in the schema above.
6. If the question cannot be answered from this schema, write CANNOT_ANSWER after the separator instead of SQL.`

// Request carries the per-query substitution values. It is ephemeral and
// never persisted.
type Request struct {
	SchemaContext    string
	RetrievedContext string
	UserQuestion     string
}

// Template is an instruction template with the three required placeholders
type Template struct {
	text string
}

// Default returns the built-in instruction template
func Default() Template {
	return Template{text: defaultTemplate}
}

// FromFile loads a template from a file and verifies it carries all
// required placeholders
func FromFile(path string) (Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("failed to read prompt template: %w", err)
	}

	text := string(data)

	for _, placeholder := range []string{PlaceholderSchema, PlaceholderRetrieved, PlaceholderQuestion} {
		if !strings.Contains(text, placeholder) {
			return Template{}, fmt.Errorf("prompt template is missing placeholder %s", placeholder)
		}
	}

	return Template{text: text}, nil
}

// Load returns the template at path, or the default when path is empty
func Load(path string) (Template, error) {
	if path == "" {
		return Default(), nil
	}

	return FromFile(path)
}

// Fill substitutes the request values into the template
func (t Template) Fill(req Request) string {
	replacer := strings.NewReplacer(
		PlaceholderSchema, req.SchemaContext,
		PlaceholderRetrieved, req.RetrievedContext,
		PlaceholderQuestion, req.UserQuestion,
	)

	return replacer.Replace(t.text)
}
