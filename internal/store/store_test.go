// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pdiddy/paper-digest/pkg/types"
)

var created = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func sampleTask(id string) *types.Task {
	return &types.Task{
		ID:        id,
		Status:    types.TaskPending,
		Stage:     types.StageReceived,
		Source:    types.SourceDOI,
		Input:     "10.1000/xyz123",
		Topics:    []string{"graphs", "nlp"},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func sampleSummary(id string) *types.PaperSummary {
	pub := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	return &types.PaperSummary{
		ID:      id,
		PaperID: "task-1",
		Metadata: types.PaperMetadata{
			Title:           "Graph Transformers",
			Authors:         []string{"A. Author", "B. Author"},
			PublicationDate: &pub,
			Topics:          []string{"graphs"},
			Source:          types.SourceArxiv,
		},
		StructuredSummary: types.StructuredSummary{
			Summary:      "Final summary.",
			KeyFindings:  []string{"A finding that is long enough."},
			Methodology:  types.IncludedInSummary,
			Implications: types.IncludedInSummary,
			Citations:    []string{},
		},
		AudioPath: "audio/s-1.mp3",
		Warnings:  []string{"audio skipped"},
		CreatedAt: created,
	}
}

// runContract exercises the behavior every backend must share.
func runContract(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("missing records", func(t *testing.T) {
		_, err := s.GetTask(ctx, "nope")
		assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
		_, err = s.GetSummary(ctx, "nope")
		assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
	})

	t.Run("task round trip and overwrite", func(t *testing.T) {
		task := sampleTask("task-1")
		require.NoError(t, s.PutTask(ctx, task))

		got, err := s.GetTask(ctx, "task-1")
		require.NoError(t, err)
		assert.Equal(t, task, got)

		task.Status = types.TaskFailed
		task.Stage = types.StageFailed
		task.Message = "boom"
		require.NoError(t, s.PutTask(ctx, task))

		got, err = s.GetTask(ctx, "task-1")
		require.NoError(t, err)
		assert.Equal(t, types.TaskFailed, got.Status)
		assert.Equal(t, "boom", got.Message)
	})

	t.Run("summary round trip", func(t *testing.T) {
		sum := sampleSummary("sum-1")
		require.NoError(t, s.PutSummary(ctx, sum))

		got, err := s.GetSummary(ctx, "sum-1")
		require.NoError(t, err)
		assert.Equal(t, sum.StructuredSummary, got.StructuredSummary)
		assert.Equal(t, sum.Metadata.Title, got.Metadata.Title)
		assert.True(t, sum.Metadata.PublicationDate.Equal(*got.Metadata.PublicationDate))
		assert.Equal(t, sum.AudioPath, got.AudioPath)
		assert.Equal(t, sum.Warnings, got.Warnings)
	})

	t.Run("concurrent writers", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, s.PutTask(ctx, sampleTask(fmt.Sprintf("c-%d", i))))
			}()
		}
		wg.Wait()
		for i := range 16 {
			_, err := s.GetTask(ctx, fmt.Sprintf("c-%d", i))
			assert.NoError(t, err)
		}
	})
}

func TestMemory(t *testing.T) {
	runContract(t, NewMemory())
}

func TestMemory_CopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	task := sampleTask("t")
	require.NoError(t, m.PutTask(ctx, task))
	task.Topics[0] = "mutated"

	got, err := m.GetTask(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, "graphs", got.Topics[0])

	got.Topics[1] = "mutated"
	again, err := m.GetTask(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, "nlp", again.Topics[1])
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "paper-digest.db")
	s, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	defer s.Close()

	runContract(t, s)
}

func TestSQLite_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "paper-digest.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.PutSummary(ctx, sampleSummary("persisted")))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetSummary(ctx, "persisted")
	require.NoError(t, err)
	assert.Equal(t, "Final summary.", got.Summary)
}

func TestOpen(t *testing.T) {
	s, err := Open(context.Background(), types.StoreConfig{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	_, err = Open(context.Background(), types.StoreConfig{Backend: "etcd"})
	assert.Error(t, err)
}

func TestRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("redis container test skipped in -short mode")
	}
	ctx := context.Background()

	container, err := tcredis.Run(ctx,
		"docker.io/redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("* Ready to accept connections").
				WithOccurrence(1).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		t.Skipf("redis container unavailable: %v", err)
	}
	defer func() { _ = container.Terminate(ctx) }()

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	require.NoError(t, client.Ping(ctx).Err())

	s := NewRedis(client, "test:", time.Hour)
	defer s.Close()
	runContract(t, s)

	ttl, err := client.TTL(ctx, "test:task:task-1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
