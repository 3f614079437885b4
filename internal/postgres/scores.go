package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/retro-games-platform/internal/domain"
)

// UpsertHighScore applies the high-score ratchet as a single atomic
// statement: the stored value only ever grows, even under concurrent updates
// for the same (user, game). Returns the previous and resulting best scores.
func (r *Repository) UpsertHighScore(ctx context.Context, userID, gameID string, score int64) (previous, best int64, err error) {
	query := `
		WITH old AS (
			SELECT score FROM high_scores WHERE user_id = $1 AND game_id = $2
		)
		INSERT INTO high_scores AS hs (user_id, game_id, score, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, game_id) DO UPDATE
		SET score = GREATEST(hs.score, EXCLUDED.score),
		    updated_at = CASE WHEN EXCLUDED.score > hs.score THEN EXCLUDED.updated_at ELSE hs.updated_at END
		RETURNING score, COALESCE((SELECT score FROM old), 0)
	`
	err = r.pool.QueryRow(ctx, query, userID, gameID, score, time.Now()).Scan(&best, &previous)
	if err != nil {
		return 0, 0, fmt.Errorf("upserting high score: %w", err)
	}
	return previous, best, nil
}

// GetHighScores returns a user's recorded scores as a sparse game_id map
func (r *Repository) GetHighScores(ctx context.Context, userID string) (map[string]int64, error) {
	query := `SELECT game_id, score FROM high_scores WHERE user_id = $1`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("getting high scores: %w", err)
	}
	defer rows.Close()

	scores := make(map[string]int64)
	for rows.Next() {
		var gameID string
		var score int64
		if err := rows.Scan(&gameID, &score); err != nil {
			return nil, fmt.Errorf("scanning high score: %w", err)
		}
		scores[gameID] = score
	}
	return scores, nil
}

// Leaderboard returns the top scorers for a game, highest first. Ties break
// by user id ascending so results are reproducible.
func (r *Repository) Leaderboard(ctx context.Context, gameID string, limit int) ([]domain.LeaderboardEntry, error) {
	query := `
		SELECT hs.user_id, COALESCE(u.username, hs.user_id), hs.score,
		       ROW_NUMBER() OVER (ORDER BY hs.score DESC, hs.user_id ASC) AS rank
		FROM high_scores hs
		LEFT JOIN users u ON u.id = hs.user_id
		WHERE hs.game_id = $1
		ORDER BY hs.score DESC, hs.user_id ASC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, gameID, limit)
	if err != nil {
		return nil, fmt.Errorf("getting leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var entry domain.LeaderboardEntry
		if err := rows.Scan(&entry.UserID, &entry.Username, &entry.Score, &entry.Rank); err != nil {
			return nil, fmt.Errorf("scanning leaderboard entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// GameScores returns every recorded score for a game, keyed by user id.
// Used by the sync worker to rebuild the Redis sorted set.
func (r *Repository) GameScores(ctx context.Context, gameID string) (map[string]int64, error) {
	query := `SELECT user_id, score FROM high_scores WHERE game_id = $1`
	rows, err := r.pool.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("getting game scores: %w", err)
	}
	defer rows.Close()

	scores := make(map[string]int64)
	for rows.Next() {
		var userID string
		var score int64
		if err := rows.Scan(&userID, &score); err != nil {
			return nil, fmt.Errorf("scanning game score: %w", err)
		}
		scores[userID] = score
	}
	return scores, nil
}
