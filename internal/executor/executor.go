// Package executor runs validated SQL against the relational engine and
// keeps the in-memory session log. It trusts that its input has already
// passed the validator; nothing else in the process may reach the engine
// with generated SQL.
package executor

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/askdb/askdb/internal/errors"
)

// Status of a logged execution
type Status string

const (
	StatusSuccess Status = "Success"
	StatusError   Status = "Error"
)

// maxLogEntries bounds the session log as a most-recent-first ring; the
// oldest entries are dropped past this point
const maxLogEntries = 100

// LogEntry records one execution attempt
type LogEntry struct {
	Query    string
	Status   Status
	Duration time.Duration
	Err      string
	At       time.Time
}

// Result is a tabular query result
type Result struct {
	Columns []string
	Rows    [][]string
}

// Executor runs queries and records execution log entries
type Executor struct {
	db *sql.DB

	mu  sync.Mutex
	log []LogEntry
}

// New creates an executor for the given database handle
func New(db *sql.DB) *Executor {
	return &Executor{db: db}
}

// Run executes the query, measures wall-clock duration, and prepends a log
// entry. Engine failures are returned verbatim and logged as errors.
func (e *Executor) Run(ctx context.Context, query string) (*Result, error) {
	start := time.Now()

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		e.record(LogEntry{
			Query:  query,
			Status: StatusError,
			Err:    err.Error(),
			At:     start,
		})

		return nil, errors.Wrap(err, errors.ErrTypeDatabase, "query execution failed")
	}
	defer rows.Close()

	result, err := collectRows(rows)
	if err != nil {
		e.record(LogEntry{
			Query:  query,
			Status: StatusError,
			Err:    err.Error(),
			At:     start,
		})

		return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to read query results")
	}

	e.record(LogEntry{
		Query:    query,
		Status:   StatusSuccess,
		Duration: time.Since(start),
		At:       start,
	})

	return result, nil
}

// Log returns a copy of the session log, newest first
func (e *Executor) Log() []LogEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	entries := make([]LogEntry, len(e.log))
	copy(entries, e.log)

	return entries
}

// LatestEntry returns the most recent log entry, if any
func (e *Executor) LatestEntry() (LogEntry, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.log) == 0 {
		return LogEntry{}, false
	}

	return e.log[0], true
}

func (e *Executor) record(entry LogEntry) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.log = append([]LogEntry{entry}, e.log...)

	if len(e.log) > maxLogEntries {
		e.log = e.log[:maxLogEntries]
	}
}

func collectRows(rows *sql.Rows) (*Result, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &Result{Columns: columns}

	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))

		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := make([]string, len(columns))
		for i, value := range values {
			row[i] = formatValue(value)
		}

		result.Rows = append(result.Rows, row)
	}

	return result, rows.Err()
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(v)
	case time.Time:
		return v.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(v)
	}
}
