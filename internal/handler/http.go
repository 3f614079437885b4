package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/retro-games-platform/internal/auth"
	"github.com/retro-games-platform/internal/domain"
	"github.com/retro-games-platform/internal/service"
	"github.com/retro-games-platform/internal/websocket"
)

// Handler provides HTTP handlers for the platform API
type Handler struct {
	catalog  *service.CatalogService
	accounts *service.AccountService
	scores   *service.ScoreService
	saves    *service.SaveService
	stats    *service.StatsService
	tokens   *auth.Manager
	hub      *websocket.Hub
	logger   *slog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	catalog *service.CatalogService,
	accounts *service.AccountService,
	scores *service.ScoreService,
	saves *service.SaveService,
	stats *service.StatsService,
	tokens *auth.Manager,
	hub *websocket.Hub,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		catalog:  catalog,
		accounts: accounts,
		scores:   scores,
		saves:    saves,
		stats:    stats,
		tokens:   tokens,
		hub:      hub,
		logger:   logger,
	}
}

// Router creates and configures the HTTP router
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(corsMiddleware)

	// Health checks
	r.Get("/health", h.HealthCheck)
	r.Get("/ready", h.ReadyCheck)

	// WebSocket endpoint for live leaderboard updates
	if h.hub != nil {
		r.Get("/ws", h.HandleWebSocket)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HealthCheck)

		// Catalog
		r.Get("/games", h.ListGames)
		r.Get("/games/{gameID}", h.GetGame)

		// Accounts
		r.Post("/users/register", h.Register)
		r.Post("/users/login", h.Login)
		r.Get("/users/{userID}/profile", h.GetProfile)

		// Save slots
		r.Post("/game-states/save", h.SaveGameState)
		r.Get("/game-states/{userID}/{gameID}", h.ListGameStates)
		r.Get("/game-states/{userID}/{gameID}/{slotNumber}", h.LoadGameState)
		r.Delete("/game-states/{userID}/{gameID}/{slotNumber}", h.DeleteGameState)

		// Scores
		r.Post("/scores/update", h.UpdateScore)
		r.Get("/scores/leaderboard/{gameID}", h.GetLeaderboard)

		// Admin
		r.Route("/admin", func(r chi.Router) {
			r.Use(h.requireAdmin)
			r.Get("/users", h.ListUsers)
			r.Get("/stats", h.GetStats)
		})
	})

	return r
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error JSON response
func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeDomainError maps a domain error to its HTTP status. Unexpected errors
// surface as a generic 500 with no internal detail.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidSlot),
		errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrEmailTaken):
		h.writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, domain.ErrInvalidCredentials):
		h.writeError(w, http.StatusUnauthorized, err)
	case domain.IsNotFoundError(err):
		h.writeError(w, http.StatusNotFound, err)
	default:
		h.logger.Error("request failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
	}
}

// HandleWebSocket handles WebSocket upgrade requests
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWs(h.hub, h.logger, w, r)
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": service.PlatformName + " API",
	})
}

// ReadyCheck returns service readiness status
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
