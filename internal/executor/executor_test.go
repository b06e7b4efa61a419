package executor

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/askdb/askdb/internal/errors"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT, city TEXT)`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO customers (id, name, city) VALUES
		(1, 'Ali Khan', 'Lahore'),
		(2, 'Sara Ahmed', 'Karachi'),
		(3, 'Bilal Raza', NULL)`)
	require.NoError(t, err)

	return db
}

func TestRunSuccess(t *testing.T) {
	exec := New(openTestDB(t))

	result, err := exec.Run(context.Background(), "SELECT id, name, city FROM customers ORDER BY id")
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name", "city"}, result.Columns)
	require.Len(t, result.Rows, 3)
	assert.Equal(t, []string{"1", "Ali Khan", "Lahore"}, result.Rows[0])
	assert.Equal(t, "NULL", result.Rows[2][2])
}

func TestRunEmptyResult(t *testing.T) {
	exec := New(openTestDB(t))

	result, err := exec.Run(context.Background(), "SELECT name FROM customers WHERE city = 'Quetta'")
	require.NoError(t, err)

	assert.Equal(t, []string{"name"}, result.Columns)
	assert.Empty(t, result.Rows)
}

func TestRunEngineError(t *testing.T) {
	exec := New(openTestDB(t))

	result, err := exec.Run(context.Background(), "SELECT missing_column FROM customers")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.IsType(err, errors.ErrTypeDatabase))

	entry, ok := exec.LatestEntry()
	require.True(t, ok)
	assert.Equal(t, StatusError, entry.Status)
	assert.NotEmpty(t, entry.Err)
}

func TestLogNewestFirst(t *testing.T) {
	exec := New(openTestDB(t))
	ctx := context.Background()

	_, err := exec.Run(ctx, "SELECT 1")
	require.NoError(t, err)

	_, _ = exec.Run(ctx, "SELECT nope FROM customers")

	_, err = exec.Run(ctx, "SELECT 3")
	require.NoError(t, err)

	log := exec.Log()
	require.Len(t, log, 3)
	assert.Equal(t, "SELECT 3", log[0].Query)
	assert.Equal(t, StatusSuccess, log[0].Status)
	assert.Equal(t, StatusError, log[1].Status)
	assert.Equal(t, "SELECT 1", log[2].Query)
}

func TestLogIsBounded(t *testing.T) {
	exec := New(openTestDB(t))
	ctx := context.Background()

	for i := 0; i < maxLogEntries+20; i++ {
		_, err := exec.Run(ctx, fmt.Sprintf("SELECT %d", i))
		require.NoError(t, err)
	}

	log := exec.Log()
	assert.Len(t, log, maxLogEntries)
	assert.Equal(t, fmt.Sprintf("SELECT %d", maxLogEntries+19), log[0].Query)
}

func TestLogReturnsCopy(t *testing.T) {
	exec := New(openTestDB(t))

	_, err := exec.Run(context.Background(), "SELECT 1")
	require.NoError(t, err)

	log := exec.Log()
	log[0].Query = "mutated"

	entry, ok := exec.LatestEntry()
	require.True(t, ok)
	assert.Equal(t, "SELECT 1", entry.Query)
}

func TestLatestEntryEmpty(t *testing.T) {
	exec := New(openTestDB(t))

	_, ok := exec.LatestEntry()
	assert.False(t, ok)
}
