// Package schema reads table, column, and foreign-key metadata from the
// active SQLite database and renders it as text context for SQL generation.
package schema

import (
	"context"
	"database/sql"
	"fmt"
)

// TableMarker heads every rendered table block. The context store splits the
// rendered schema on this exact prefix, one chunk per table.
const TableMarker = "Table: "

// Column describes a single column of an introspected table
type Column struct {
	Name         string
	Type         string
	SampleValues []string
}

// ForeignKey describes a foreign-key reference from a column to another table
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// Table describes an introspected table
type Table struct {
	Name        string
	Columns     []Column
	ForeignKeys []ForeignKey
}

// Description is a point-in-time snapshot of the database structure. It is
// built fresh on every introspection call and never mutated afterwards.
type Description struct {
	Tables []Table
}

// Introspector reads structure metadata from a SQLite database
type Introspector struct {
	db *sql.DB
}

// NewIntrospector creates an introspector for the given database handle
func NewIntrospector(db *sql.DB) *Introspector {
	return &Introspector{db: db}
}

// Describe enumerates all user tables with their columns and foreign keys.
// An empty database yields an empty Description, not an error.
func (i *Introspector) Describe(ctx context.Context) (*Description, error) {
	names, err := i.tableNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	desc := &Description{}

	for _, name := range names {
		table := Table{Name: name}

		columns, err := i.columns(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read columns of %s: %w", name, err)
		}

		table.Columns = columns

		fks, err := i.foreignKeys(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read foreign keys of %s: %w", name, err)
		}

		table.ForeignKeys = fks

		desc.Tables = append(desc.Tables, table)
	}

	return desc, nil
}

// tableNames lists user tables, excluding SQLite internals
func (i *Introspector) tableNames(ctx context.Context) ([]string, error) {
	rows, err := i.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}

		names = append(names, name)
	}

	return names, rows.Err()
}

func (i *Introspector) columns(ctx context.Context, table string) ([]Column, error) {
	// PRAGMA arguments cannot be bound as parameters
	rows, err := i.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []Column

	for rows.Next() {
		var (
			cid        int
			name       string
			typ        string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)

		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return nil, err
		}

		columns = append(columns, Column{Name: name, Type: typ})
	}

	return columns, rows.Err()
}

func (i *Introspector) foreignKeys(ctx context.Context, table string) ([]ForeignKey, error) {
	rows, err := i.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%q)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fks []ForeignKey

	for rows.Next() {
		var (
			id, seq                     int
			refTable, from              string
			to                          sql.NullString
			onUpdate, onDelete, matchBy string
		)

		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &matchBy); err != nil {
			return nil, err
		}

		// A NULL "to" column means the FK references the target's primary key
		refColumn := to.String
		if !to.Valid {
			refColumn = "id"
		}

		fks = append(fks, ForeignKey{Column: from, RefTable: refTable, RefColumn: refColumn})
	}

	return fks, rows.Err()
}
