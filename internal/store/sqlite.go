// Package store keeps the stopwords and the labeled corpus in a SQLite
// database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/tsawler/reviewsense"
)

const schema = `
CREATE TABLE IF NOT EXISTS stopwords (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	line TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS corpus (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	line       TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// SQLite is a reviewsense.Source backed by a SQLite database. Lines are
// returned in insertion order.
type SQLite struct {
	db *sql.DB
}

var _ reviewsense.Source = (*SQLite)(nil)

// Open opens or creates the database at path and ensures the schema exists.
func Open(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// LoadStopwords returns the stopword lines.
func (s *SQLite) LoadStopwords(ctx context.Context) ([]string, error) {
	return s.lines(ctx, "SELECT line FROM stopwords ORDER BY id")
}

// LoadCorpus returns the corpus lines.
func (s *SQLite) LoadCorpus(ctx context.Context) ([]string, error) {
	return s.lines(ctx, "SELECT line FROM corpus ORDER BY id")
}

// AppendCorpus inserts line at the end of the corpus.
func (s *SQLite) AppendCorpus(ctx context.Context, line string) error {
	if _, err := s.db.ExecContext(ctx, "INSERT INTO corpus (line) VALUES (?)", line); err != nil {
		return fmt.Errorf("failed to insert corpus line: %w", err)
	}
	return nil
}

// ImportStats reports how many lines an Import stored.
type ImportStats struct {
	Stopwords int
	Corpus    int
}

// Import replaces both tables with the lines read from src, in one
// transaction.
func (s *SQLite) Import(ctx context.Context, src reviewsense.Source) (ImportStats, error) {
	var stats ImportStats

	stopwords, err := src.LoadStopwords(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to read stopwords: %w", err)
	}
	corpus, err := src.LoadCorpus(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to read corpus: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := replaceLines(ctx, tx, "stopwords", stopwords); err != nil {
		return stats, err
	}
	if err := replaceLines(ctx, tx, "corpus", corpus); err != nil {
		return stats, err
	}
	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("failed to commit import: %w", err)
	}

	stats.Stopwords = len(stopwords)
	stats.Corpus = len(corpus)
	return stats, nil
}

func replaceLines(ctx context.Context, tx *sql.Tx, table string, lines []string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO "+table+" (line) VALUES (?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert into %s: %w", table, err)
	}
	defer stmt.Close()

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, line); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}
	return nil
}

func (s *SQLite) lines(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
