package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/retro-games-platform/internal/config"
	"github.com/retro-games-platform/internal/domain"
)

// CatalogService provides the game catalog
type CatalogService struct {
	games  GameStore
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(games GameStore, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		games:  games,
		logger: logger,
	}
}

// ListActive returns all active games
func (s *CatalogService) ListActive(ctx context.Context) ([]domain.Game, error) {
	games, err := s.games.ListActiveGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing active games: %w", err)
	}
	return games, nil
}

// Get returns a game by id
func (s *CatalogService) Get(ctx context.Context, gameID string) (*domain.Game, error) {
	return s.games.GetGame(ctx, gameID)
}

// SeedDefaults inserts the configured game definitions that do not exist
// yet. Idempotent, runs on every boot.
func (s *CatalogService) SeedDefaults(ctx context.Context, seeds []config.SeedGame) error {
	for _, seed := range seeds {
		created, err := s.games.SeedGame(ctx, domain.Game{
			ID:          seed.ID,
			Name:        seed.Name,
			Description: seed.Description,
			IsActive:    true,
			CreatedAt:   time.Now(),
		})
		if err != nil {
			return fmt.Errorf("seeding game %s: %w", seed.ID, err)
		}
		if created {
			s.logger.Info("game seeded", "game_id", seed.ID, "name", seed.Name)
		}
	}
	return nil
}
