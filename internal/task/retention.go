package task

import (
	"context"
	"sync"
	"time"

	"aircheck/internal/logger"
	"aircheck/internal/repository"
)

// RetentionJanitor periodically prunes stored projects whose last update is
// older than the configured retention window. Generated reports are never
// stored, so project descriptors are the only state to expire.
type RetentionJanitor struct {
	projectRepo   repository.ProjectRepository
	retentionDays int
	checkInterval time.Duration
	stopCh        chan struct{}
	wg            sync.WaitGroup
	log           *logger.Logger
}

// NewRetentionJanitor creates a new RetentionJanitor. A retention of zero
// days disables pruning; Start becomes a no-op.
func NewRetentionJanitor(projectRepo repository.ProjectRepository, retentionDays int, checkInterval time.Duration) *RetentionJanitor {
	return &RetentionJanitor{
		projectRepo:   projectRepo,
		retentionDays: retentionDays,
		checkInterval: checkInterval,
		stopCh:        make(chan struct{}),
		log:           logger.GetGlobalLogger(),
	}
}

// Start begins the background pruning loop
func (j *RetentionJanitor) Start(ctx context.Context) {
	if j.retentionDays <= 0 {
		return
	}
	j.wg.Add(1)
	go j.run(ctx)
}

// Stop gracefully stops the janitor
func (j *RetentionJanitor) Stop() {
	close(j.stopCh)
	j.wg.Wait()
}

// run is the main loop that periodically prunes stale projects
func (j *RetentionJanitor) run(ctx context.Context) {
	defer j.wg.Done()

	ticker := time.NewTicker(j.checkInterval)
	defer ticker.Stop()

	// Run immediately on start
	j.prune(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-j.stopCh:
			return
		case <-ticker.C:
			j.prune(ctx)
		}
	}
}

// prune deletes projects older than the retention window
func (j *RetentionJanitor) prune(ctx context.Context) {
	cutoff := time.Now().AddDate(0, 0, -j.retentionDays)

	removed, err := j.projectRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		j.log.Error("Retention prune failed", map[string]interface{}{"error": err.Error()})
		return
	}

	if removed > 0 {
		j.log.Info("Pruned stale projects", map[string]interface{}{
			"removed": removed,
			"cutoff":  cutoff.Format(time.RFC3339),
		})
	}
}
