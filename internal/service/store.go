package service

import (
	"context"

	"github.com/retro-games-platform/internal/domain"
)

// Store interfaces decouple the services from the Postgres repository so
// tests can run against in-memory fakes. *postgres.Repository satisfies all
// of them.

// GameStore provides catalog persistence
type GameStore interface {
	SeedGame(ctx context.Context, game domain.Game) (bool, error)
	GetGame(ctx context.Context, gameID string) (*domain.Game, error)
	ListActiveGames(ctx context.Context) ([]domain.Game, error)
	CountActiveGames(ctx context.Context) (int64, error)
}

// UserStore provides account persistence
type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUsernames(ctx context.Context, userIDs []string) (map[string]string, error)
	CountUsers(ctx context.Context) (int64, error)
}

// ScoreStore provides high-score persistence
type ScoreStore interface {
	UpsertHighScore(ctx context.Context, userID, gameID string, score int64) (previous, best int64, err error)
	GetHighScores(ctx context.Context, userID string) (map[string]int64, error)
	Leaderboard(ctx context.Context, gameID string, limit int) ([]domain.LeaderboardEntry, error)
	GameScores(ctx context.Context, gameID string) (map[string]int64, error)
}

// SaveStore provides save-slot persistence
type SaveStore interface {
	UpsertSave(ctx context.Context, save *domain.SaveSlot) (overwritten bool, err error)
	ListSaves(ctx context.Context, userID, gameID string) ([]domain.SaveSlot, error)
	GetSave(ctx context.Context, userID, gameID string, slot int) (*domain.SaveSlot, error)
	DeleteSave(ctx context.Context, userID, gameID string, slot int) error
	CountSaves(ctx context.Context) (int64, error)
}

// ScoreCache is the Redis leaderboard layer; services tolerate its absence
// and fall back to SQL reads
type ScoreCache interface {
	SetScoreIfHigher(ctx context.Context, gameID, userID string, score int64) error
	Top(ctx context.Context, gameID string, n int) ([]domain.LeaderboardEntry, error)
	Rebuild(ctx context.Context, gameID string, scores map[string]int64) error
}

// Broadcaster pushes live updates to connected websocket clients
type Broadcaster interface {
	BroadcastScoreUpdate(gameID string, entry domain.LeaderboardEntry)
}
