package schema

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/askdb/askdb/internal/logging"
)

// DefaultSampleLimit is the number of distinct values fetched per column
const DefaultSampleLimit = 5

// SampleValues fetches up to limit distinct values observed in a column.
// The values are the first N distinct rows the engine happens to return,
// in no particular order; they are not ranked by frequency. Any failure
// degrades to an empty list so enrichment never fails the caller.
func SampleValues(ctx context.Context, db *sql.DB, table, column string, limit int) []string {
	if limit <= 0 {
		limit = DefaultSampleLimit
	}

	query := fmt.Sprintf("SELECT DISTINCT %q FROM %q LIMIT ?", column, table)

	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		logging.Debugf("value sampling failed for %s.%s: %v", table, column, err)
		return nil
	}
	defer rows.Close()

	var values []string

	for rows.Next() {
		var value any
		if err := rows.Scan(&value); err != nil {
			logging.Debugf("value sampling scan failed for %s.%s: %v", table, column, err)
			return nil
		}

		values = append(values, stringifyValue(value))
	}

	if err := rows.Err(); err != nil {
		logging.Debugf("value sampling failed for %s.%s: %v", table, column, err)
		return nil
	}

	return values
}

func stringifyValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}
