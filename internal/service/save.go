package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/retro-games-platform/internal/domain"
)

// SaveService provides per-slot game-state persistence
type SaveService struct {
	saves  SaveStore
	logger *slog.Logger
}

// NewSaveService creates a new save service
func NewSaveService(saves SaveStore, logger *slog.Logger) *SaveService {
	return &SaveService{
		saves:  saves,
		logger: logger,
	}
}

// Save stores a snapshot into a slot, replacing any existing save for the
// same (user, game, slot). Validation happens before any write; an invalid
// slot never touches the store. Returns the stored record and whether an
// existing slot was overwritten.
func (s *SaveService) Save(ctx context.Context, userID string, req domain.SaveRequest) (*domain.SaveSlot, bool, error) {
	if userID == "" || req.GameID == "" {
		return nil, false, domain.ErrInvalidRequest
	}
	if !domain.ValidSlot(req.SlotNumber) {
		return nil, false, domain.ErrInvalidSlot
	}

	name := req.Name
	if name == "" {
		name = domain.DefaultSaveName(req.SlotNumber)
	}

	save := &domain.SaveSlot{
		ID:         uuid.New().String(),
		UserID:     userID,
		GameID:     req.GameID,
		SlotNumber: req.SlotNumber,
		GameData:   req.GameData,
		Score:      req.Score,
		SavedAt:    time.Now(),
		Name:       name,
	}

	overwritten, err := s.saves.UpsertSave(ctx, save)
	if err != nil {
		return nil, false, err
	}
	return save, overwritten, nil
}

// List returns all slots for a (user, game) pair, slot order ascending
func (s *SaveService) List(ctx context.Context, userID, gameID string) ([]domain.SaveSlot, error) {
	return s.saves.ListSaves(ctx, userID, gameID)
}

// Load returns the save in a specific slot
func (s *SaveService) Load(ctx context.Context, userID, gameID string, slot int) (*domain.SaveSlot, error) {
	if !domain.ValidSlot(slot) {
		return nil, domain.ErrInvalidSlot
	}
	return s.saves.GetSave(ctx, userID, gameID, slot)
}

// Delete removes the save in a specific slot
func (s *SaveService) Delete(ctx context.Context, userID, gameID string, slot int) error {
	if !domain.ValidSlot(slot) {
		return domain.ErrInvalidSlot
	}
	return s.saves.DeleteSave(ctx, userID, gameID, slot)
}
