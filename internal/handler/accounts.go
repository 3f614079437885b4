package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/retro-games-platform/internal/domain"
)

// Register creates a new account and returns it with a session token
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	user, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":    user,
		"token":   token,
		"message": "User registered successfully",
	})
}

// Login authenticates an account and returns it with a session token
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	user, err := h.accounts.Login(r.Context(), req)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":    user,
		"token":   token,
		"message": "Login successful",
	})
}

// GetProfile returns a user profile with recorded high scores
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	user, err := h.accounts.Profile(r.Context(), userID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}
