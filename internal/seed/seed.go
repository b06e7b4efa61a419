// Package seed creates the synthetic e-commerce demo database: 50 customers
// and 200 orders linked by a foreign key, suitable for testing joins,
// aggregations, and window functions.
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"time"
)

const (
	customerCount = 50
	orderCount    = 200
)

var (
	cities = []string{
		"Lahore", "Karachi", "Islamabad", "Multan",
		"Faisalabad", "Rawalpindi", "Peshawar", "Quetta",
	}
	firstNames = []string{
		"Ali", "Bilal", "Zara", "Sara", "Ahmed", "Omer",
		"Fatima", "Ayesha", "Hassan", "Zainab", "Usman", "Hamza",
	}
	lastNames = []string{
		"Khan", "Ahmed", "Ali", "Butt", "Sheikh", "Malik", "Raja", "Chaudhry",
	}
	statuses = []string{"Pending", "Completed", "Cancelled", "Shipped"}
)

// Demo drops and recreates the demo tables, then fills them with synthetic
// data. Existing data in those tables is lost.
func Demo(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`DROP TABLE IF EXISTS orders`,
		`DROP TABLE IF EXISTS customers`,
		`CREATE TABLE customers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			city TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE orders (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_id INTEGER,
			amount REAL NOT NULL,
			status TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (customer_id) REFERENCES customers(id)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create demo tables: %w", err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seeding transaction: %w", err)
	}

	defer func() { _ = tx.Rollback() }()

	now := time.Now()

	for range customerCount {
		name := fmt.Sprintf("%s %s",
			firstNames[rand.Intn(len(firstNames))],
			lastNames[rand.Intn(len(lastNames))])
		city := cities[rand.Intn(len(cities))]
		createdAt := now.AddDate(0, 0, -rand.Intn(1000)-1)

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO customers (name, city, created_at) VALUES (?, ?, ?)`,
			name, city, createdAt); err != nil {
			return fmt.Errorf("failed to insert customer: %w", err)
		}
	}

	// Reuse real customer ids so the foreign key holds
	rows, err := tx.QueryContext(ctx, `SELECT id FROM customers`)
	if err != nil {
		return fmt.Errorf("failed to list customer ids: %w", err)
	}

	var customerIDs []int64

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan customer id: %w", err)
		}

		customerIDs = append(customerIDs, id)
	}

	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("failed to read customer ids: %w", err)
	}

	rows.Close()

	for range orderCount {
		customerID := customerIDs[rand.Intn(len(customerIDs))]
		amount := 100 + rand.Float64()*9900
		status := statuses[rand.Intn(len(statuses))]
		createdAt := now.AddDate(0, 0, -rand.Intn(365)-1)

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO orders (customer_id, amount, status, created_at) VALUES (?, ?, ?, ?)`,
			customerID, amount, status, createdAt); err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed data: %w", err)
	}

	return nil
}
