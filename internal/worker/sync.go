package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/retro-games-platform/internal/config"
	"github.com/retro-games-platform/internal/postgres"
	"github.com/retro-games-platform/internal/redis"
)

// SyncWorker periodically rebuilds the Redis leaderboard cache for every
// active game from the high score table in PostgreSQL. PostgreSQL is the
// system of record; the cache only exists to serve reads, so the worker
// always copies database -> cache, never the other way around.
type SyncWorker struct {
	cache   *redis.Leaderboards
	repo    *postgres.Repository
	config  *config.SyncConfig
	logger  *slog.Logger
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool
}

// NewSyncWorker creates a new sync worker
func NewSyncWorker(
	cache *redis.Leaderboards,
	repo *postgres.Repository,
	cfg *config.SyncConfig,
	logger *slog.Logger,
) *SyncWorker {
	return &SyncWorker{
		cache:  cache,
		repo:   repo,
		config: cfg,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start begins the background sync process
func (w *SyncWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info("sync worker started", "interval", w.config.Interval)

	go w.run(ctx)
	return nil
}

// Stop stops the background sync process
func (w *SyncWorker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("sync worker stopped")
	return nil
}

// run is the main worker loop
func (w *SyncWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.syncAll(ctx)
		}
	}
}

// syncAll rebuilds the cache for every active game
func (w *SyncWorker) syncAll(ctx context.Context) {
	w.logger.Info("starting sync cycle")
	startTime := time.Now()

	games, err := w.repo.ListActiveGames(ctx)
	if err != nil {
		w.logger.Error("failed to list games for sync", "error", err)
		return
	}

	syncedCount := 0
	errorCount := 0

	for _, game := range games {
		if err := w.SyncGame(ctx, game.ID); err != nil {
			w.logger.Error("failed to sync game leaderboard",
				"game_id", game.ID,
				"error", err,
			)
			errorCount++
		} else {
			syncedCount++
		}
	}

	duration := time.Since(startTime)
	w.logger.Info("sync cycle completed",
		"duration", duration,
		"synced", syncedCount,
		"errors", errorCount,
	)
}

// SyncGame rebuilds a single game's cached leaderboard from the database
func (w *SyncWorker) SyncGame(ctx context.Context, gameID string) error {
	w.logger.Debug("rebuilding leaderboard cache", "game_id", gameID)

	scores, err := w.repo.GameScores(ctx, gameID)
	if err != nil {
		return err
	}

	if err := w.cache.Rebuild(ctx, gameID, scores); err != nil {
		return err
	}

	w.logger.Debug("rebuilt leaderboard cache",
		"game_id", gameID,
		"player_count", len(scores),
	)

	return nil
}

// SyncAll rebuilds every active game's cached leaderboard. Called at boot so
// a cold or flushed Redis starts from the database's state.
func (w *SyncWorker) SyncAll(ctx context.Context) error {
	w.logger.Info("rebuilding all leaderboard caches from database")

	games, err := w.repo.ListActiveGames(ctx)
	if err != nil {
		return err
	}

	for _, game := range games {
		if err := w.SyncGame(ctx, game.ID); err != nil {
			w.logger.Error("failed to rebuild leaderboard cache",
				"game_id", game.ID,
				"error", err,
			)
			// Continue with the other games
		}
	}

	w.logger.Info("completed rebuilding leaderboard caches", "count", len(games))
	return nil
}

// IsRunning returns whether the worker is currently running
func (w *SyncWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// RunOnce runs a single sync cycle (useful for manual triggers)
func (w *SyncWorker) RunOnce(ctx context.Context) {
	w.syncAll(ctx)
}
