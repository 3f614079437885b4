package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/retro-games-platform/internal/config"
	"github.com/retro-games-platform/internal/domain"
)

// ScoreService applies the high-score ratchet and serves leaderboards
type ScoreService struct {
	users  UserStore
	scores ScoreStore
	cache  ScoreCache
	hub    Broadcaster
	config *config.LeaderboardConfig
	logger *slog.Logger
}

// NewScoreService creates a new score service. cache may be nil; leaderboard
// reads then go straight to the database.
func NewScoreService(
	users UserStore,
	scores ScoreStore,
	cache ScoreCache,
	cfg *config.LeaderboardConfig,
	logger *slog.Logger,
) *ScoreService {
	return &ScoreService{
		users:  users,
		scores: scores,
		cache:  cache,
		config: cfg,
		logger: logger,
	}
}

// SetHub sets the broadcaster used to push score updates to websocket clients
func (s *ScoreService) SetHub(hub Broadcaster) {
	s.hub = hub
}

// Update applies a score submission. The stored high score is a ratchet: it
// only changes when the submitted score beats it, and the write is a single
// atomic statement so concurrent submissions cannot lose an update. Unknown
// user ids are provisioned as guest accounts.
func (s *ScoreService) Update(ctx context.Context, sub domain.ScoreSubmission) (*domain.ScoreResult, error) {
	if sub.UserID == "" || sub.GameID == "" || sub.Score < 0 {
		return nil, domain.ErrInvalidRequest
	}

	user, err := s.users.GetUser(ctx, sub.UserID)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		user, err = s.provisionGuest(ctx, sub.UserID)
		if err != nil {
			return nil, err
		}
	}

	previous, best, err := s.scores.UpsertHighScore(ctx, sub.UserID, sub.GameID, sub.Score)
	if err != nil {
		return nil, err
	}
	newHigh := sub.Score > previous

	if s.cache != nil {
		if err := s.cache.SetScoreIfHigher(ctx, sub.GameID, sub.UserID, sub.Score); err != nil {
			s.logger.Warn("failed to update leaderboard cache", "game_id", sub.GameID, "error", err)
		}
	}

	if newHigh && s.hub != nil {
		s.hub.BroadcastScoreUpdate(sub.GameID, domain.LeaderboardEntry{
			UserID:   user.ID,
			Username: user.Username,
			Score:    best,
		})
	}

	return &domain.ScoreResult{
		NewHigh:      newHigh,
		Score:        sub.Score,
		PreviousHigh: previous,
		Best:         best,
	}, nil
}

// UpdateBatch applies multiple submissions, continuing past individual
// failures. Used by the Kafka ingestion path.
func (s *ScoreService) UpdateBatch(ctx context.Context, batch domain.BatchScoreSubmission) error {
	for _, sub := range batch.Scores {
		if _, err := s.Update(ctx, sub); err != nil {
			s.logger.Error("failed to apply score submission",
				"user_id", sub.UserID,
				"game_id", sub.GameID,
				"error", err,
			)
		}
	}
	return nil
}

// Leaderboard returns the top scorers for a game, highest first, ties broken
// by user id ascending. Serves from the Redis cache when it is warm,
// otherwise from the database, queueing a cache rebuild.
func (s *ScoreService) Leaderboard(ctx context.Context, gameID string, limit int) ([]domain.LeaderboardEntry, error) {
	if gameID == "" {
		return nil, domain.ErrInvalidRequest
	}
	if limit <= 0 {
		limit = s.config.DefaultLimit
	}
	if limit > s.config.MaxLimit {
		limit = s.config.MaxLimit
	}

	if s.cache != nil {
		entries, err := s.cache.Top(ctx, gameID, limit)
		if err != nil {
			s.logger.Warn("leaderboard cache read failed, falling back to database", "game_id", gameID, "error", err)
		} else if len(entries) > 0 {
			if err := s.resolveUsernames(ctx, entries); err != nil {
				return nil, err
			}
			return entries, nil
		}
	}

	entries, err := s.scores.Leaderboard(ctx, gameID, limit)
	if err != nil {
		return nil, fmt.Errorf("reading leaderboard: %w", err)
	}

	// Cold cache with recorded scores: rebuild off the request path
	if s.cache != nil && len(entries) > 0 {
		go s.rebuildCache(gameID)
	}
	return entries, nil
}

func (s *ScoreService) resolveUsernames(ctx context.Context, entries []domain.LeaderboardEntry) error {
	ids := make([]string, len(entries))
	for i, entry := range entries {
		ids[i] = entry.UserID
	}
	names, err := s.users.GetUsernames(ctx, ids)
	if err != nil {
		return fmt.Errorf("resolving usernames: %w", err)
	}
	for i := range entries {
		if name, ok := names[entries[i].UserID]; ok {
			entries[i].Username = name
		} else {
			entries[i].Username = entries[i].UserID
		}
	}
	return nil
}

func (s *ScoreService) rebuildCache(gameID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	scores, err := s.scores.GameScores(ctx, gameID)
	if err != nil {
		s.logger.Warn("failed to read scores for cache rebuild", "game_id", gameID, "error", err)
		return
	}
	if err := s.cache.Rebuild(ctx, gameID, scores); err != nil {
		s.logger.Warn("failed to rebuild leaderboard cache", "game_id", gameID, "error", err)
		return
	}
	s.logger.Debug("leaderboard cache rebuilt", "game_id", gameID, "entries", len(scores))
}

// provisionGuest creates an account for an unrecognized user id submitting a
// score. Guests carry no credentials and cannot log in; the id is kept so
// the client's local identity keeps working.
func (s *ScoreService) provisionGuest(ctx context.Context, userID string) (*domain.User, error) {
	guest := &domain.User{
		ID:           userID,
		Username:     guestUsername(userID),
		Email:        fmt.Sprintf("guest-%s@retro-games.local", userID),
		PasswordHash: "",
		IsAdmin:      false,
		CreatedAt:    time.Now(),
		HighScores:   map[string]int64{},
	}
	if err := s.users.CreateUser(ctx, guest); err != nil {
		// Concurrent submission may have provisioned the same guest
		if errors.Is(err, domain.ErrEmailTaken) {
			return s.users.GetUser(ctx, userID)
		}
		return nil, fmt.Errorf("provisioning guest: %w", err)
	}
	s.logger.Info("guest account provisioned", "user_id", userID)
	return guest, nil
}

func guestUsername(userID string) string {
	suffix := userID
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return "Guest-" + suffix
}
