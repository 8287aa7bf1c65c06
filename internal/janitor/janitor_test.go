// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package janitor

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-digest/internal/artifact"
)

func putAged(t *testing.T, s *artifact.Local, key string, age time.Duration) {
	t.Helper()
	require.NoError(t, s.Put(context.Background(), key, strings.NewReader("data")))
	when := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(s.Path(key), when, when))
}

// failingStore fails every prune.
type failingStore struct {
	artifact.Store
}

func (failingStore) Prune(context.Context, string, time.Time) (int, error) {
	return 0, errors.New("bucket unavailable")
}

func TestRunOnce(t *testing.T) {
	outputs, err := artifact.NewLocal(t.TempDir())
	require.NoError(t, err)
	papers, err := artifact.NewLocal(t.TempDir())
	require.NoError(t, err)

	putAged(t, outputs, "uploads/old.pdf", 48*time.Hour)
	putAged(t, outputs, "uploads/new.pdf", time.Minute)
	putAged(t, outputs, "audio/old.mp3", 48*time.Hour)
	putAged(t, papers, "raw/old.pdf", 72*time.Hour)

	j := New(context.Background(), []Target{
		{Store: outputs, Prefix: artifact.UploadsPrefix},
		{Store: papers, Prefix: "raw/"},
	}, 24*time.Hour, nil)

	removed, err := j.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	for key, want := range map[string]bool{
		"uploads/old.pdf": false,
		"uploads/new.pdf": true,
		"audio/old.mp3":   true,
	} {
		ok, err := outputs.Exists(context.Background(), key)
		require.NoError(t, err)
		assert.Equal(t, want, ok, key)
	}
	ok, err := papers.Exists(context.Background(), "raw/old.pdf")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRunOnceContinuesPastFailures(t *testing.T) {
	outputs, err := artifact.NewLocal(t.TempDir())
	require.NoError(t, err)
	putAged(t, outputs, "uploads/old.pdf", 48*time.Hour)

	j := New(context.Background(), []Target{
		{Store: failingStore{}, Prefix: "uploads/"},
		{Store: outputs, Prefix: "uploads/"},
	}, time.Hour, nil)

	removed, err := j.RunOnce(context.Background())
	assert.ErrorContains(t, err, "bucket unavailable")
	assert.Equal(t, 1, removed)
}

func TestStart(t *testing.T) {
	j := New(context.Background(), nil, time.Hour, nil)
	require.NoError(t, j.Start(""))
	j.Stop()

	assert.Error(t, New(context.Background(), nil, time.Hour, nil).Start("not a schedule"))
	assert.Error(t, New(context.Background(), nil, 0, nil).Start(DefaultSpec))
}
