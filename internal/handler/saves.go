package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/retro-games-platform/internal/domain"
)

// defaultUserID is the guest identity assumed when a client does not supply
// a user_id query parameter
const defaultUserID = "demo-user"

func userIDParam(r *http.Request) string {
	if id := r.URL.Query().Get("user_id"); id != "" {
		return id
	}
	return defaultUserID
}

func slotParam(r *http.Request) (int, error) {
	slot, err := strconv.Atoi(chi.URLParam(r, "slotNumber"))
	if err != nil {
		return 0, domain.ErrInvalidSlot
	}
	return slot, nil
}

// SaveGameState upserts a save slot for the calling user
func (h *Handler) SaveGameState(w http.ResponseWriter, r *http.Request) {
	var req domain.SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	save, overwritten, err := h.saves.Save(r.Context(), userIDParam(r), req)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	message := fmt.Sprintf("Game saved to slot %d", save.SlotNumber)
	if overwritten {
		message += " (overwritten)"
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":   message,
		"save_data": save,
	})
}

// ListGameStates returns all save slots for a user and game
func (h *Handler) ListGameStates(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	gameID := chi.URLParam(r, "gameID")

	saves, err := h.saves.List(r.Context(), userID, gameID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if saves == nil {
		saves = []domain.SaveSlot{}
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"saves": saves})
}

// LoadGameState returns the save in a specific slot
func (h *Handler) LoadGameState(w http.ResponseWriter, r *http.Request) {
	slot, err := slotParam(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	save, err := h.saves.Load(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "gameID"), slot)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, save)
}

// DeleteGameState removes the save in a specific slot
func (h *Handler) DeleteGameState(w http.ResponseWriter, r *http.Request) {
	slot, err := slotParam(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.saves.Delete(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "gameID"), slot); err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Save slot %d deleted", slot),
	})
}
