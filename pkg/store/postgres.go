package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Postgres stores one row per encoded region, ordered by position
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens a connection using a lib/pq connection string
func NewPostgres(ctx context.Context, connStr string) (*Postgres, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// A single writer rewrites the table, so a small pool is plenty
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Postgres{db: db}, nil
}

// InitSchema creates the regions table if needed
func (p *Postgres) InitSchema(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS regions (
		position INTEGER PRIMARY KEY,
		encoded  TEXT NOT NULL
	);`

	if _, err := p.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create regions table: %w", err)
	}
	return nil
}

// Save rewrites the table with encoded inside one transaction
func (p *Postgres) Save(ctx context.Context, encoded []string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM regions`); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear regions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO regions (position, encoded) VALUES ($1, $2)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, text := range encoded {
		if _, err := stmt.ExecContext(ctx, i, text); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert region %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit regions: %w", err)
	}
	return nil
}

// Load returns the stored rows in position order
func (p *Postgres) Load(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT encoded FROM regions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	encoded := []string{}
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		encoded = append(encoded, text)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return encoded, nil
}

// Close closes the database connection
func (p *Postgres) Close() error {
	return p.db.Close()
}
