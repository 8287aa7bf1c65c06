// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// TaskStatus is the externally visible state of a background task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskProcessing TaskStatus = "processing"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// Stage tracks a task through the summarization pipeline:
// received, drafting, reviewing, then done; failed is terminal.
type Stage string

const (
	StageReceived  Stage = "received"
	StageDrafting  Stage = "drafting"
	StageReviewing Stage = "reviewing"
	StageDone      Stage = "done"
	StageFailed    Stage = "failed"
)

// Terminal reports whether no further transitions are possible.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed
}

// Task records one background processing request.
type Task struct {
	ID     string     `json:"task_id" yaml:"task_id"`
	Status TaskStatus `json:"status" yaml:"status"`
	Stage  Stage      `json:"stage" yaml:"stage"`

	// Message carries the failure cause for failed tasks.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`

	// SummaryID is set once the task completes.
	SummaryID string `json:"summary_id,omitempty" yaml:"summary_id,omitempty"`

	// Source and Input describe what was submitted: an artifact key for
	// uploads, a URL, a DOI, or an arXiv ID.
	Source PaperSource `json:"source" yaml:"source"`
	Input  string      `json:"input" yaml:"input"`

	Topics []string `json:"topics,omitempty" yaml:"topics,omitempty"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}
