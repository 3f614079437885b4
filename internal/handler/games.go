package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/retro-games-platform/internal/domain"
)

// ListGames returns all active games
func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.catalog.ListActive(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if games == nil {
		games = []domain.Game{}
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"games": games})
}

// GetGame returns a single game by id
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	game, err := h.catalog.Get(r.Context(), gameID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, game)
}
