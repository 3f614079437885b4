package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Save slot bounds. Each (user, game) pair gets exactly this many slots.
const (
	MinSlot = 1
	MaxSlot = 10
)

// SaveSlot represents one saved game snapshot. GameData is an opaque payload
// produced and consumed by the game client; the service never inspects it.
// The composite key (user_id, game_id, slot_number) is unique at all times.
type SaveSlot struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	GameID     string          `json:"game_id"`
	SlotNumber int             `json:"slot_number"`
	GameData   json.RawMessage `json:"game_data"`
	Score      int64           `json:"score"`
	SavedAt    time.Time       `json:"saved_at"`
	Name       string          `json:"name"`
}

// SaveRequest represents a request to save a game state into a slot
type SaveRequest struct {
	GameID     string          `json:"game_id"`
	SlotNumber int             `json:"slot_number"`
	GameData   json.RawMessage `json:"game_data"`
	Score      int64           `json:"score"`
	Name       string          `json:"name,omitempty"`
}

// ValidSlot reports whether a slot number is within the allowed range
func ValidSlot(n int) bool {
	return n >= MinSlot && n <= MaxSlot
}

// DefaultSaveName returns the name used when the client does not supply one
func DefaultSaveName(slot int) string {
	return fmt.Sprintf("Save Slot %d", slot)
}
