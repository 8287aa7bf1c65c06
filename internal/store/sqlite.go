// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-digest/pkg/types"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLite stores records as JSON payloads alongside a few indexed columns.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and applies pending
// migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func migrateUp(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("reading migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

func (s *SQLite) PutTask(ctx context.Context, task *types.Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encoding task: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, status, stage, payload, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET status = excluded.status, stage = excluded.stage,
		   payload = excluded.payload, updated_at = excluded.updated_at`,
		task.ID, string(task.Status), string(task.Stage), payload, task.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("writing task %s: %w", task.ID, err)
	}
	return nil
}

func (s *SQLite) GetTask(ctx context.Context, id string) (*types.Task, error) {
	var t types.Task
	if err := s.get(ctx, `SELECT payload FROM tasks WHERE id = ?`, id, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *SQLite) PutSummary(ctx context.Context, summary *types.PaperSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO summaries (id, paper_id, payload, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET paper_id = excluded.paper_id, payload = excluded.payload`,
		summary.ID, summary.PaperID, payload, summary.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("writing summary %s: %w", summary.ID, err)
	}
	return nil
}

func (s *SQLite) GetSummary(ctx context.Context, id string) (*types.PaperSummary, error) {
	var ps types.PaperSummary
	if err := s.get(ctx, `SELECT payload FROM summaries WHERE id = ?`, id, &ps); err != nil {
		return nil, err
	}
	return &ps, nil
}

func (s *SQLite) get(ctx context.Context, query, id string, dst any) error {
	var payload []byte
	err := s.db.QueryRowContext(ctx, query, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", id, err)
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("decoding %s: %w", id, err)
	}
	return nil
}

// Close releases the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}
