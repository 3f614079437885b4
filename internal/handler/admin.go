package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/retro-games-platform/internal/domain"
)

var errForbidden = errors.New("admin access required")

// requireAdmin gates a route behind a bearer token carrying the admin claim
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			h.writeError(w, http.StatusUnauthorized, domain.ErrInvalidCredentials)
			return
		}

		claims, err := h.tokens.Parse(token)
		if err != nil {
			h.writeError(w, http.StatusUnauthorized, domain.ErrInvalidCredentials)
			return
		}
		if !claims.Admin {
			h.writeError(w, http.StatusForbidden, errForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ListUsers returns all accounts, credentials stripped
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.ListAll(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if users == nil {
		users = []domain.User{}
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

// GetStats returns platform-wide aggregate counts
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Platform(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}
