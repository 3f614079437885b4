package domain

import "time"

// Game represents a playable game in the catalog. The id is a stable slug
// (e.g. "snake-game") assigned at seed time and never regenerated.
type Game struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// PlatformStats contains aggregate counts for the admin dashboard
type PlatformStats struct {
	TotalUsers   int64  `json:"total_users"`
	TotalGames   int64  `json:"total_games"`
	TotalSaves   int64  `json:"total_saves"`
	PlatformName string `json:"platform_name"`
}
