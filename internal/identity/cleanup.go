package identity

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// CleanupWorker periodically prunes expired refresh tokens.
type CleanupWorker struct {
	repo     Repository
	interval time.Duration

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewCleanupWorker creates a new cleanup worker.
func NewCleanupWorker(repo Repository, interval time.Duration) *CleanupWorker {
	return &CleanupWorker{
		repo:     repo,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the worker goroutine.
func (w *CleanupWorker) Start(ctx context.Context) {
	slog.Info("starting refresh token cleanup worker", "interval", w.interval)

	w.wg.Add(1)
	go w.run(ctx)
}

// Stop gracefully stops the worker.
func (w *CleanupWorker) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	slog.Info("refresh token cleanup worker stopped")
}

func (w *CleanupWorker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.prune(ctx)
		}
	}
}

func (w *CleanupWorker) prune(ctx context.Context) {
	removed, err := w.repo.DeleteExpiredRefreshTokens(ctx)
	if err != nil {
		slog.Error("prune expired refresh tokens", "error", err)
		return
	}
	if removed > 0 {
		slog.Info("pruned expired refresh tokens", "count", removed)
	}
}
