package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/retro-games-platform/internal/domain"
)

// UpsertSave stores a save slot, replacing any existing record for the same
// (user_id, game_id, slot_number) in a single atomic statement. The replaced
// row keeps the composite key but takes the new record id and saved_at.
// Returns true when an existing slot was overwritten.
func (r *Repository) UpsertSave(ctx context.Context, save *domain.SaveSlot) (overwritten bool, err error) {
	query := `
		INSERT INTO game_states (id, user_id, game_id, slot_number, game_data, score, name, saved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, game_id, slot_number) DO UPDATE
		SET id = EXCLUDED.id,
		    game_data = EXCLUDED.game_data,
		    score = EXCLUDED.score,
		    name = EXCLUDED.name,
		    saved_at = EXCLUDED.saved_at
		RETURNING (xmax <> 0)
	`
	err = r.pool.QueryRow(ctx, query,
		save.ID,
		save.UserID,
		save.GameID,
		save.SlotNumber,
		save.GameData,
		save.Score,
		save.Name,
		save.SavedAt,
	).Scan(&overwritten)
	if err != nil {
		return false, fmt.Errorf("upserting save: %w", err)
	}
	return overwritten, nil
}

// ListSaves returns all slots for a (user, game) pair, slot order ascending
func (r *Repository) ListSaves(ctx context.Context, userID, gameID string) ([]domain.SaveSlot, error) {
	query := `
		SELECT id, user_id, game_id, slot_number, game_data, score, name, saved_at
		FROM game_states
		WHERE user_id = $1 AND game_id = $2
		ORDER BY slot_number
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, userID, gameID, domain.MaxSlot)
	if err != nil {
		return nil, fmt.Errorf("listing saves: %w", err)
	}
	defer rows.Close()

	var saves []domain.SaveSlot
	for rows.Next() {
		var save domain.SaveSlot
		err := rows.Scan(
			&save.ID,
			&save.UserID,
			&save.GameID,
			&save.SlotNumber,
			&save.GameData,
			&save.Score,
			&save.Name,
			&save.SavedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning save: %w", err)
		}
		saves = append(saves, save)
	}
	return saves, nil
}

// GetSave retrieves a single save slot
func (r *Repository) GetSave(ctx context.Context, userID, gameID string, slot int) (*domain.SaveSlot, error) {
	query := `
		SELECT id, user_id, game_id, slot_number, game_data, score, name, saved_at
		FROM game_states
		WHERE user_id = $1 AND game_id = $2 AND slot_number = $3
	`
	var save domain.SaveSlot
	err := r.pool.QueryRow(ctx, query, userID, gameID, slot).Scan(
		&save.ID,
		&save.UserID,
		&save.GameID,
		&save.SlotNumber,
		&save.GameData,
		&save.Score,
		&save.Name,
		&save.SavedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrSaveNotFound
		}
		return nil, fmt.Errorf("getting save: %w", err)
	}
	return &save, nil
}

// DeleteSave removes a save slot; ErrSaveNotFound when nothing was deleted
func (r *Repository) DeleteSave(ctx context.Context, userID, gameID string, slot int) error {
	query := `DELETE FROM game_states WHERE user_id = $1 AND game_id = $2 AND slot_number = $3`
	result, err := r.pool.Exec(ctx, query, userID, gameID, slot)
	if err != nil {
		return fmt.Errorf("deleting save: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrSaveNotFound
	}
	return nil
}

// CountSaves returns the total number of save slots on the platform
func (r *Repository) CountSaves(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM game_states`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting saves: %w", err)
	}
	return count, nil
}
