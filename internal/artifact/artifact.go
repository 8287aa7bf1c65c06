// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package artifact stores the files the service produces or receives:
// uploaded and downloaded PDFs, and synthesized audio. Keys are
// slash-separated relative paths such as "uploads/<task>.pdf".
package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// ErrNotFound is returned when a key has no stored object.
var ErrNotFound = errors.New("artifact not found")

// Conventional key prefixes.
const (
	UploadsPrefix = "uploads/"
	AudioPrefix   = "audio/"
)

// Store reads and writes artifacts by key.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error

	// Prune deletes objects under prefix last modified before cutoff and
	// returns how many were removed.
	Prune(ctx context.Context, prefix string, cutoff time.Time) (int, error)

	Close() error
}

// Open returns the backend named by cfg.Backend.
func Open(ctx context.Context, cfg types.ArtifactConfig) (Store, error) {
	switch cfg.Backend {
	case "local", "":
		return NewLocal(cfg.Dir)
	case "gcs":
		return NewGCS(ctx, cfg.Bucket, cfg.Prefix)
	default:
		return nil, fmt.Errorf("unknown artifact backend %q", cfg.Backend)
	}
}

// UploadKey is the key for a task's source PDF.
func UploadKey(taskID string) string { return UploadsPrefix + taskID + ".pdf" }

// AudioKey is the key for a summary's narration.
func AudioKey(summaryID string) string { return AudioPrefix + summaryID + ".mp3" }

func validKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || path.Clean(key) != key || strings.HasPrefix(key, "../") || key == ".." {
		return fmt.Errorf("invalid artifact key %q", key)
	}
	return nil
}

// pather is implemented by stores whose objects already live on the local
// filesystem.
type pather interface {
	Path(key string) string
}

// LocalPath returns a filesystem path holding the object at key. Local
// objects are returned in place; others are copied into a temporary file
// that cleanup removes.
func LocalPath(ctx context.Context, s Store, key string) (p string, cleanup func(), err error) {
	if ps, ok := s.(pather); ok {
		p := ps.Path(key)
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				return "", nil, ErrNotFound
			}
			return "", nil, err
		}
		return p, func() {}, nil
	}

	rc, err := s.Open(ctx, key)
	if err != nil {
		return "", nil, err
	}
	defer rc.Close()

	f, err := os.CreateTemp("", "paper-digest-*"+path.Ext(key))
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}
	cleanup = func() { os.Remove(f.Name()) }
	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("copying %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("copying %s: %w", key, err)
	}
	return f.Name(), cleanup, nil
}
