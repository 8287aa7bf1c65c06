// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists background tasks and finished paper summaries,
// keyed by ID. Backends: an in-process map, SQLite, and Redis. All backends
// satisfy the same contract and are safe for concurrent use.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// ErrNotFound is returned when no record exists for an ID.
var ErrNotFound = errors.New("not found")

// Store is the task and summary repository.
type Store interface {
	// PutTask inserts or replaces a task.
	PutTask(ctx context.Context, task *types.Task) error
	GetTask(ctx context.Context, id string) (*types.Task, error)

	// PutSummary inserts or replaces a summary.
	PutSummary(ctx context.Context, summary *types.PaperSummary) error
	GetSummary(ctx context.Context, id string) (*types.PaperSummary, error)

	Close() error
}

// Backend names.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Open returns the backend named by cfg.Backend.
func Open(ctx context.Context, cfg types.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemory(), nil
	case BackendSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath)
	case BackendRedis:
		return OpenRedis(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
