package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/retro-games-platform/internal/domain"
)

// UpdateScore applies the high-score ratchet for a user and game. The
// submission arrives as query parameters; a JSON body is accepted as a
// fallback for clients that prefer it.
func (h *Handler) UpdateScore(w http.ResponseWriter, r *http.Request) {
	sub := domain.ScoreSubmission{
		UserID: userIDParam(r),
		GameID: r.URL.Query().Get("game_id"),
	}
	if sub.GameID != "" {
		// Query-style submission: score is required
		score, err := strconv.ParseInt(r.URL.Query().Get("score"), 10, 64)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
			return
		}
		sub.Score = score
	} else {
		var body domain.ScoreSubmission
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
			return
		}
		if body.UserID != "" {
			sub.UserID = body.UserID
		}
		sub.GameID = body.GameID
		sub.Score = body.Score
	}

	result, err := h.scores.Update(r.Context(), sub)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	if result.NewHigh {
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"message":       "New high score!",
			"score":         result.Score,
			"previous_high": result.PreviousHigh,
		})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Score recorded",
		"score":      result.Score,
		"high_score": result.Best,
	})
}

// GetLeaderboard returns the top scorers for a game
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")

	limit := 0
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		if l, err := strconv.Atoi(rawLimit); err == nil && l > 0 {
			limit = l
		}
	}

	entries, err := h.scores.Leaderboard(r.Context(), gameID, limit)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"leaderboard": entries})
}
