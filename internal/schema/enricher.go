package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Enricher renders an introspected schema as text, annotating text-typed
// columns with sampled values so the model knows what data actually exists
type Enricher struct {
	db           *sql.DB
	introspector *Introspector
	sampleLimit  int
}

// NewEnricher creates an enricher for the given database handle
func NewEnricher(db *sql.DB, sampleLimit int) *Enricher {
	if sampleLimit <= 0 {
		sampleLimit = DefaultSampleLimit
	}

	return &Enricher{
		db:           db,
		introspector: NewIntrospector(db),
		sampleLimit:  sampleLimit,
	}
}

// Render introspects the database and returns the enriched schema text.
// Introspection failures degrade to a descriptive error string so callers
// always have something to put in the prompt.
func (e *Enricher) Render(ctx context.Context) string {
	desc, err := e.introspector.Describe(ctx)
	if err != nil {
		return fmt.Sprintf("Error extracting schema: %v", err)
	}

	return e.RenderDescription(ctx, desc)
}

// RenderDescription renders a schema description, sampling values for
// text-like columns. Each table block starts with the TableMarker prefix
// and blocks are separated by a blank line.
func (e *Enricher) RenderDescription(ctx context.Context, desc *Description) string {
	var blocks []string

	for _, table := range desc.Tables {
		var lines []string

		lines = append(lines, TableMarker+table.Name)

		for _, col := range table.Columns {
			line := fmt.Sprintf("- %s (%s)", col.Name, strings.ToUpper(col.Type))

			if isTextType(col.Type) {
				values := SampleValues(ctx, e.db, table.Name, col.Name, e.sampleLimit)
				if len(values) > 0 {
					line += fmt.Sprintf(" (Sample Values: %s)", strings.Join(values, ", "))
				}
			}

			lines = append(lines, line)
		}

		for _, fk := range table.ForeignKeys {
			lines = append(lines, fmt.Sprintf("- Foreign Key: %s -> %s.%s",
				fk.Column, fk.RefTable, fk.RefColumn))
		}

		blocks = append(blocks, strings.Join(lines, "\n"))
	}

	return strings.Join(blocks, "\n\n")
}

// isTextType reports whether a declared type looks like a text/character
// column. Only these are sampled; numeric, date, and id columns are not.
func isTextType(declaredType string) bool {
	upper := strings.ToUpper(declaredType)
	return strings.Contains(upper, "TEXT") || strings.Contains(upper, "CHAR")
}
