// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"sync"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// Memory keeps records in process. Values are copied in and out so callers
// cannot mutate stored state.
type Memory struct {
	mu        sync.RWMutex
	tasks     map[string]types.Task
	summaries map[string]types.PaperSummary
}

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{
		tasks:     make(map[string]types.Task),
		summaries: make(map[string]types.PaperSummary),
	}
}

func (m *Memory) PutTask(_ context.Context, task *types.Task) error {
	t := *task
	t.Topics = cloneStrings(task.Topics)
	m.mu.Lock()
	m.tasks[t.ID] = t
	m.mu.Unlock()
	return nil
}

func (m *Memory) GetTask(_ context.Context, id string) (*types.Task, error) {
	m.mu.RLock()
	t, ok := m.tasks[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	t.Topics = cloneStrings(t.Topics)
	return &t, nil
}

func (m *Memory) PutSummary(_ context.Context, summary *types.PaperSummary) error {
	s := cloneSummary(*summary)
	m.mu.Lock()
	m.summaries[s.ID] = s
	m.mu.Unlock()
	return nil
}

func (m *Memory) GetSummary(_ context.Context, id string) (*types.PaperSummary, error) {
	m.mu.RLock()
	s, ok := m.summaries[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	s = cloneSummary(s)
	return &s, nil
}

func (m *Memory) Close() error { return nil }

func cloneSummary(s types.PaperSummary) types.PaperSummary {
	s.KeyFindings = cloneStrings(s.KeyFindings)
	s.Citations = cloneStrings(s.Citations)
	s.Warnings = cloneStrings(s.Warnings)
	s.Metadata.Authors = cloneStrings(s.Metadata.Authors)
	s.Metadata.Topics = cloneStrings(s.Metadata.Topics)
	return s
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
