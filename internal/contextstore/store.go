// Package contextstore persists embedding-indexed text snippets and serves
// nearest-neighbor retrieval for grounding SQL generation. It holds two kinds
// of snippets: a static corpus of generic SQL patterns (kind "logic") seeded
// once, and per-table schema chunks (kind "schema") fully replaced whenever
// the active database changes.
package contextstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/askdb/askdb/internal/logging"
	"github.com/askdb/askdb/internal/schema"
)

// Snippet kinds
const (
	KindLogic  = "logic"
	KindSchema = "schema"
)

// Snippet is a retrievable piece of context
type Snippet struct {
	ID    string
	Kind  string
	Topic string
	Text  string
	Score float64
}

// Store is an embedding-indexed snippet collection backed by a SQLite file
type Store struct {
	db       *sql.DB
	provider Provider
}

// logicCorpus is the static set of generic SQL-pattern snippets
var logicCorpus = []string{
	"To calculate total, use SUM(column).",
	"To count items, use COUNT(column).",
	"To filter results, use WHERE column = 'value'.",
	"To sort results, use ORDER BY column DESC/ASC.",
	"To group data, use GROUP BY column.",
	"To limit results, use LIMIT N.",
	"For 'top N per category', use window function: RANK() OVER (PARTITION BY category ORDER BY val DESC).",
	"For recursive hierarchies (e.g. org chart), use WITH RECURSIVE cte AS (...).",
	"For moving averages, use AVG(val) OVER (ORDER BY date ROWS BETWEEN 6 PRECEDING AND CURRENT ROW).",
	"For year-over-year growth, use LAG(val) OVER (ORDER BY date).",
}

const storeSchema = `
CREATE TABLE IF NOT EXISTS snippets (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	topic      TEXT NOT NULL,
	content    TEXT NOT NULL,
	embedding  TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_snippets_kind ON snippets(kind);

CREATE TABLE IF NOT EXISTS index_state (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

const indexedDatabaseKey = "indexed_database"

// Open opens (creating if needed) a context store at the given path
func Open(path string, provider Provider) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create context store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open context store: %w", err)
	}

	if _, err := db.Exec(storeSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize context store schema: %w", err)
	}

	return &Store{db: db, provider: provider}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// SeedLogic inserts the static SQL-pattern corpus. It is idempotent: if any
// logic snippets already exist, it is a no-op.
func (s *Store) SeedLogic(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM snippets WHERE kind = ?`, KindLogic).Scan(&count); err != nil {
		return fmt.Errorf("failed to check logic corpus: %w", err)
	}

	if count > 0 {
		return nil
	}

	logging.Debugf("seeding context store with %d generic SQL snippets", len(logicCorpus))

	for i, text := range logicCorpus {
		embedding, err := s.provider.Embed(ctx, text)
		if err != nil {
			return fmt.Errorf("failed to embed logic snippet: %w", err)
		}

		if err := s.insert(ctx, Snippet{
			ID:    fmt.Sprintf("logic_%d", i),
			Kind:  KindLogic,
			Topic: "generic_sql",
			Text:  text,
		}, embedding); err != nil {
			return err
		}
	}

	return nil
}

// ReindexSchema replaces all schema snippets with chunks of the given schema
// text, one per table, and records dbIdentity as the indexed database. The
// delete-then-insert is not transactional across the embedding calls; a crash
// mid-way leaves the store without schema context until the next reindex.
func (s *Store) ReindexSchema(ctx context.Context, schemaText, dbIdentity string) error {
	// Deleting when nothing matches is a harmless no-op
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM snippets WHERE kind = ?`, KindSchema); err != nil {
		return fmt.Errorf("failed to delete stale schema snippets: %w", err)
	}

	chunks := strings.Split(schemaText, schema.TableMarker)
	inserted := 0

	for _, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}

		tableName := strings.TrimSpace(strings.SplitN(chunk, "\n", 2)[0])
		fullChunk := schema.TableMarker + chunk

		embedding, err := s.provider.Embed(ctx, fullChunk)
		if err != nil {
			return fmt.Errorf("failed to embed schema chunk for %s: %w", tableName, err)
		}

		if err := s.insert(ctx, Snippet{
			ID:    fmt.Sprintf("schema_%s_%s", tableName, uuid.NewString()),
			Kind:  KindSchema,
			Topic: tableName,
			Text:  strings.TrimSpace(fullChunk),
		}, embedding); err != nil {
			return err
		}

		inserted++
	}

	if err := s.setIndexedDatabase(ctx, dbIdentity); err != nil {
		return err
	}

	logging.WithFields(map[string]interface{}{
		"database": dbIdentity,
		"chunks":   inserted,
	}).Debug("indexed schema snippets")

	return nil
}

// IndexedDatabase returns the identity of the database whose schema is
// currently indexed, or empty if none has been indexed yet
func (s *Store) IndexedDatabase(ctx context.Context) (string, error) {
	var value string

	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM index_state WHERE key = ?`, indexedDatabaseKey).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("failed to read index state: %w", err)
	}

	return value, nil
}

// NeedsReindex reports whether the schema snippets belong to a different
// database than the given one
func (s *Store) NeedsReindex(ctx context.Context, dbIdentity string) bool {
	indexed, err := s.IndexedDatabase(ctx)
	if err != nil {
		return true
	}

	return indexed != dbIdentity
}

// Retrieve embeds the question and returns the k nearest snippets of any
// kind by cosine similarity. An empty store yields an empty result, not an
// error.
func (s *Store) Retrieve(ctx context.Context, question string, k int) ([]Snippet, error) {
	if k <= 0 {
		k = 3
	}

	queryVec, err := s.provider.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, topic, content, embedding FROM snippets`)
	if err != nil {
		return nil, fmt.Errorf("failed to scan snippets: %w", err)
	}
	defer rows.Close()

	var results []Snippet

	for rows.Next() {
		var (
			snippet      Snippet
			embeddingRaw string
		)

		if err := rows.Scan(&snippet.ID, &snippet.Kind, &snippet.Topic,
			&snippet.Text, &embeddingRaw); err != nil {
			return nil, fmt.Errorf("failed to scan snippet row: %w", err)
		}

		var embedding []float32
		if err := json.Unmarshal([]byte(embeddingRaw), &embedding); err != nil {
			logging.Warnf("skipping snippet %s with unreadable embedding: %v", snippet.ID, err)
			continue
		}

		// Stale vectors from a differently-sized provider are not comparable
		if len(embedding) != len(queryVec) {
			continue
		}

		snippet.Score = cosineSimilarity(queryVec, embedding)
		results = append(results, snippet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read snippets: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > k {
		results = results[:k]
	}

	return results, nil
}

func (s *Store) insert(ctx context.Context, snippet Snippet, embedding []float32) error {
	embeddingJSON, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("failed to encode embedding: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snippets (id, kind, topic, content, embedding) VALUES (?, ?, ?, ?, ?)`,
		snippet.ID, snippet.Kind, snippet.Topic, snippet.Text, string(embeddingJSON))
	if err != nil {
		return fmt.Errorf("failed to insert snippet %s: %w", snippet.ID, err)
	}

	return nil
}

func (s *Store) setIndexedDatabase(ctx context.Context, dbIdentity string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO index_state (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		indexedDatabaseKey, dbIdentity)
	if err != nil {
		return fmt.Errorf("failed to record indexed database: %w", err)
	}

	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64

	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
