package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/retro-games-platform/internal/domain"
)

// PlatformName identifies this deployment in health and stats responses
const PlatformName = "Retro Games Platform"

// StatsService aggregates platform-wide counts
type StatsService struct {
	users  UserStore
	games  GameStore
	saves  SaveStore
	logger *slog.Logger
}

// NewStatsService creates a new stats service
func NewStatsService(users UserStore, games GameStore, saves SaveStore, logger *slog.Logger) *StatsService {
	return &StatsService{
		users:  users,
		games:  games,
		saves:  saves,
		logger: logger,
	}
}

// Platform returns total users, active games and save slots
func (s *StatsService) Platform(ctx context.Context) (*domain.PlatformStats, error) {
	users, err := s.users.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}
	games, err := s.games.CountActiveGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting games: %w", err)
	}
	saves, err := s.saves.CountSaves(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting saves: %w", err)
	}

	return &domain.PlatformStats{
		TotalUsers:   users,
		TotalGames:   games,
		TotalSaves:   saves,
		PlatformName: PlatformName,
	}, nil
}
