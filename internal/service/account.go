package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/retro-games-platform/internal/auth"
	"github.com/retro-games-platform/internal/domain"
)

// AccountService provides registration, authentication and profiles
type AccountService struct {
	users      UserStore
	scores     ScoreStore
	bcryptCost int
	logger     *slog.Logger
}

// NewAccountService creates a new account service
func NewAccountService(users UserStore, scores ScoreStore, bcryptCost int, logger *slog.Logger) *AccountService {
	return &AccountService{
		users:      users,
		scores:     scores,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register creates a new account. The email must not already be registered;
// the password is bcrypt-hashed before any write.
func (s *AccountService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" || email == "" || req.Password == "" {
		return nil, domain.ErrInvalidRequest
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      false,
		CreatedAt:    time.Now(),
		HighScores:   map[string]int64{},
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login authenticates by email and password. Unknown email and wrong
// password return the same error so responses never reveal whether an email
// is registered.
func (s *AccountService) Login(ctx context.Context, req domain.LoginRequest) (*domain.User, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, domain.ErrInvalidCredentials
	}
	if err := s.attachHighScores(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Profile returns a user by id with recorded high scores attached
func (s *AccountService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.attachHighScores(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListAll returns every account with high scores attached. Admin view; the
// handler gates access.
func (s *AccountService) ListAll(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if err := s.attachHighScores(ctx, &users[i]); err != nil {
			return nil, err
		}
	}
	return users, nil
}

// EnsureAdmin creates the configured admin account if its email is absent.
// Idempotent, runs on every boot.
func (s *AccountService) EnsureAdmin(ctx context.Context, username, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	_, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}
	admin := &domain.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      true,
		CreatedAt:    time.Now(),
		HighScores:   map[string]int64{},
	}
	if err := s.users.CreateUser(ctx, admin); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil
		}
		return err
	}
	s.logger.Info("admin account created", "email", email)
	return nil
}

func (s *AccountService) attachHighScores(ctx context.Context, user *domain.User) error {
	scores, err := s.scores.GetHighScores(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("loading high scores: %w", err)
	}
	user.HighScores = scores
	return nil
}
