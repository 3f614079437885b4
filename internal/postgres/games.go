package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/retro-games-platform/internal/domain"
)

// maxCatalogResults bounds unpaginated catalog listings
const maxCatalogResults = 100

// SeedGame inserts a game if no record with its id exists. Idempotent, safe
// to run on every boot.
func (r *Repository) SeedGame(ctx context.Context, game domain.Game) (bool, error) {
	query := `
		INSERT INTO games (id, name, description, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`
	createdAt := game.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	tag, err := r.pool.Exec(ctx, query, game.ID, game.Name, game.Description, game.IsActive, createdAt)
	if err != nil {
		return false, fmt.Errorf("seeding game: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetGame retrieves a game by id
func (r *Repository) GetGame(ctx context.Context, gameID string) (*domain.Game, error) {
	query := `
		SELECT id, name, description, is_active, created_at
		FROM games
		WHERE id = $1
	`
	var game domain.Game
	err := r.pool.QueryRow(ctx, query, gameID).Scan(
		&game.ID,
		&game.Name,
		&game.Description,
		&game.IsActive,
		&game.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrGameNotFound
		}
		return nil, fmt.Errorf("getting game: %w", err)
	}
	return &game, nil
}

// ListActiveGames retrieves all active games in insertion order
func (r *Repository) ListActiveGames(ctx context.Context) ([]domain.Game, error) {
	query := `
		SELECT id, name, description, is_active, created_at
		FROM games
		WHERE is_active = TRUE
		ORDER BY created_at
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, maxCatalogResults)
	if err != nil {
		return nil, fmt.Errorf("listing active games: %w", err)
	}
	defer rows.Close()

	var games []domain.Game
	for rows.Next() {
		var game domain.Game
		err := rows.Scan(
			&game.ID,
			&game.Name,
			&game.Description,
			&game.IsActive,
			&game.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning game: %w", err)
		}
		games = append(games, game)
	}
	return games, nil
}

// CountActiveGames returns the number of active games
func (r *Repository) CountActiveGames(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM games WHERE is_active = TRUE`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting active games: %w", err)
	}
	return count, nil
}
