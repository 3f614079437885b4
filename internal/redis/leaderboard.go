package redis

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/retro-games-platform/internal/config"
	"github.com/retro-games-platform/internal/domain"
)

// Leaderboards provides Redis sorted-set leaderboards, one per game. Postgres
// stays the system of record; this cache serves the hot read path and is
// rebuilt by the sync worker.
type Leaderboards struct {
	client *redis.Client
	logger *slog.Logger
}

// New creates a Redis leaderboard cache
func New(cfg *config.RedisConfig, logger *slog.Logger) (*Leaderboards, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &Leaderboards{
		client: client,
		logger: logger,
	}, nil
}

// NewWithClient wraps an existing Redis client (used by tests)
func NewWithClient(client *redis.Client, logger *slog.Logger) *Leaderboards {
	return &Leaderboards{client: client, logger: logger}
}

// Close closes the Redis connection
func (l *Leaderboards) Close() error {
	return l.client.Close()
}

// key returns the Redis key for a game's sorted set
func (l *Leaderboards) key(gameID string) string {
	return fmt.Sprintf("game:%s:leaderboard", gameID)
}

// SetScore sets a user's score in a game's leaderboard unconditionally
func (l *Leaderboards) SetScore(ctx context.Context, gameID, userID string, score int64) error {
	err := l.client.ZAdd(ctx, l.key(gameID), redis.Z{
		Score:  float64(score),
		Member: userID,
	}).Err()
	if err != nil {
		return fmt.Errorf("setting score: %w", err)
	}
	return nil
}

// SetScoreIfHigher updates a user's cached score only when the new score is
// higher, mirroring the Postgres ratchet. ZADD GT makes it a single atomic
// Redis operation.
func (l *Leaderboards) SetScoreIfHigher(ctx context.Context, gameID, userID string, score int64) error {
	err := l.client.ZAddGT(ctx, l.key(gameID), redis.Z{
		Score:  float64(score),
		Member: userID,
	}).Err()
	if err != nil {
		return fmt.Errorf("setting score if higher: %w", err)
	}
	return nil
}

// Top returns up to n entries, score descending, ties by user id ascending
// so the cache agrees with the SQL leaderboard order. Redis breaks score ties
// by member descending, so when the window ends inside a run of tied scores
// the raw range may hold the wrong members; every member at the boundary
// score is fetched before the cut is made.
func (l *Leaderboards) Top(ctx context.Context, gameID string, n int) ([]domain.LeaderboardEntry, error) {
	if n <= 0 {
		return nil, nil
	}

	key := l.key(gameID)
	results, err := l.client.ZRevRangeWithScores(ctx, key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("getting top n: %w", err)
	}

	if len(results) == n {
		boundary := results[len(results)-1].Score
		boundaryStr := strconv.FormatFloat(boundary, 'f', -1, 64)
		tied, err := l.client.ZRangeByScoreWithScores(ctx, key, &redis.ZRangeBy{
			Min: boundaryStr,
			Max: boundaryStr,
		}).Result()
		if err != nil {
			return nil, fmt.Errorf("getting boundary ties: %w", err)
		}
		seen := make(map[string]bool, len(results))
		for _, result := range results {
			seen[result.Member.(string)] = true
		}
		for _, result := range tied {
			if !seen[result.Member.(string)] {
				results = append(results, result)
			}
		}
	}

	entries := make([]domain.LeaderboardEntry, len(results))
	for i, result := range results {
		entries[i] = domain.LeaderboardEntry{
			UserID: result.Member.(string),
			Score:  int64(result.Score),
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].UserID < entries[j].UserID
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	for i := range entries {
		entries[i].Rank = int64(i + 1)
	}
	return entries, nil
}

// Score returns a user's cached score for a game, or ErrUserNotFound
func (l *Leaderboards) Score(ctx context.Context, gameID, userID string) (int64, error) {
	score, err := l.client.ZScore(ctx, l.key(gameID), userID).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, domain.ErrUserNotFound
		}
		return 0, fmt.Errorf("getting score: %w", err)
	}
	return int64(score), nil
}

// Count returns the number of users on a game's leaderboard
func (l *Leaderboards) Count(ctx context.Context, gameID string) (int64, error) {
	count, err := l.client.ZCard(ctx, l.key(gameID)).Result()
	if err != nil {
		return 0, fmt.Errorf("getting count: %w", err)
	}
	return count, nil
}

// Rebuild atomically replaces a game's leaderboard with the given scores
func (l *Leaderboards) Rebuild(ctx context.Context, gameID string, scores map[string]int64) error {
	key := l.key(gameID)
	pipe := l.client.TxPipeline()
	pipe.Del(ctx, key)
	for userID, score := range scores {
		pipe.ZAdd(ctx, key, redis.Z{
			Score:  float64(score),
			Member: userID,
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rebuilding leaderboard: %w", err)
	}
	return nil
}

// RemoveGame deletes a game's leaderboard
func (l *Leaderboards) RemoveGame(ctx context.Context, gameID string) error {
	if err := l.client.Del(ctx, l.key(gameID)).Err(); err != nil {
		return fmt.Errorf("removing leaderboard: %w", err)
	}
	return nil
}
