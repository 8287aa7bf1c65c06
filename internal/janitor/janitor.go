// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package janitor periodically removes uploaded and downloaded PDFs once
// they are older than the retention period.
package janitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-digest/internal/artifact"
)

// DefaultSpec runs the sweep at the top of every hour.
const DefaultSpec = "@hourly"

const sweepTimeout = 5 * time.Minute

// Target is one prefix of an artifact store to sweep.
type Target struct {
	Store  artifact.Store
	Prefix string
}

// Janitor sweeps its targets on a cron schedule.
type Janitor struct {
	ctx       context.Context
	cron      *cron.Cron
	targets   []Target
	retention time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// New returns a Janitor that deletes objects older than retention. Sweeps
// run under ctx.
func New(ctx context.Context, targets []Target, retention time.Duration, logger *zap.Logger) *Janitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Janitor{
		ctx:       ctx,
		cron:      cron.New(cron.WithLocation(time.UTC)),
		targets:   targets,
		retention: retention,
		logger:    logger,
		now:       time.Now,
	}
}

// Start schedules the sweep with spec (DefaultSpec when empty).
func (j *Janitor) Start(spec string) error {
	if j.retention <= 0 {
		return fmt.Errorf("janitor: retention must be positive, got %s", j.retention)
	}
	if spec == "" {
		spec = DefaultSpec
	}
	if _, err := j.cron.AddFunc(spec, j.sweep); err != nil {
		return fmt.Errorf("janitor: scheduling %q: %w", spec, err)
	}
	j.cron.Start()
	j.logger.Info("janitor started", zap.String("spec", spec), zap.Duration("retention", j.retention))
	return nil
}

// Stop halts scheduling and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}

func (j *Janitor) sweep() {
	ctx, cancel := context.WithTimeout(j.ctx, sweepTimeout)
	defer cancel()
	if _, err := j.RunOnce(ctx); err != nil {
		j.logger.Error("janitor sweep failed", zap.Error(err))
	}
}

// RunOnce sweeps every target and returns the number of objects removed.
// A failing target does not stop the others.
func (j *Janitor) RunOnce(ctx context.Context) (int, error) {
	cutoff := j.now().Add(-j.retention)
	total := 0
	var errs []error
	for _, t := range j.targets {
		n, err := t.Store.Prune(ctx, t.Prefix, cutoff)
		total += n
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if n > 0 {
			j.logger.Info("pruned expired files", zap.String("prefix", t.Prefix), zap.Int("removed", n))
		}
	}
	return total, errors.Join(errs...)
}
