// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-digest/internal/store"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// Dispatcher errors.
var (
	ErrQueueFull = errors.New("task queue is full")
	ErrStopped   = errors.New("dispatcher is shut down")
)

// Processor runs one task. *Pipeline implements it.
type Processor interface {
	Process(ctx context.Context, taskID string, in Input) (*types.PaperSummary, error)
}

type job struct {
	taskID string
	in     Input
}

// Dispatcher runs submitted tasks on a fixed pool of workers fed by a
// buffered queue.
type Dispatcher struct {
	proc   Processor
	store  store.Store
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	queue  chan job
	wg     sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// NewDispatcher starts workers goroutines. Tasks run under a context
// derived from ctx; Shutdown cancels it if draining times out.
func NewDispatcher(ctx context.Context, proc Processor, st store.Store, workers, queueSize int, logger *zap.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(ctx)
	d := &Dispatcher{
		proc:   proc,
		store:  st,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		queue:  make(chan job, queueSize),
	}
	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.work()
	}
	return d
}

// Submit records a pending task for in and queues it. The returned task
// reflects the state at submission time.
func (d *Dispatcher) Submit(ctx context.Context, in Input) (*types.Task, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return nil, ErrStopped
	}

	now := time.Now().UTC()
	task := &types.Task{
		ID:        uuid.NewString(),
		Status:    types.TaskPending,
		Stage:     types.StageReceived,
		Source:    in.Source,
		Input:     in.Ref,
		Topics:    in.Topics,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := d.store.PutTask(ctx, task); err != nil {
		return nil, fmt.Errorf("saving task: %w", err)
	}

	select {
	case d.queue <- job{taskID: task.ID, in: in}:
		d.logger.Info("task submitted", zap.String("task_id", task.ID), zap.String("source", string(in.Source)))
		return task, nil
	default:
		task.Status = types.TaskFailed
		task.Stage = types.StageFailed
		task.Message = ErrQueueFull.Error()
		task.UpdatedAt = time.Now().UTC()
		if err := d.store.PutTask(ctx, task); err != nil {
			d.logger.Error("recording rejected task", zap.String("task_id", task.ID), zap.Error(err))
		}
		return nil, ErrQueueFull
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for j := range d.queue {
		if _, err := d.proc.Process(d.ctx, j.taskID, j.in); err != nil {
			d.logger.Debug("task returned error", zap.String("task_id", j.taskID), zap.Error(err))
		}
	}
}

// Shutdown stops accepting tasks and waits for queued ones to finish. If
// ctx expires first, running tasks are cancelled and ctx's error returned.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return ctx.Err()
	}
}
