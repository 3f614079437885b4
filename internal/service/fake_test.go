package service

import (
	"context"
	"sort"
	"sync"

	"github.com/retro-games-platform/internal/domain"
)

// memStore is an in-memory stand-in for the Postgres repository. It mirrors
// the repository's semantics: email uniqueness, the GREATEST ratchet, and
// replace-on-conflict save slots.
type memStore struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	games  map[string]*domain.Game
	scores map[string]map[string]int64 // userID -> gameID -> score
	saves  map[saveKey]*domain.SaveSlot
}

type saveKey struct {
	userID string
	gameID string
	slot   int
}

func newMemStore() *memStore {
	return &memStore{
		users:  make(map[string]*domain.User),
		games:  make(map[string]*domain.Game),
		scores: make(map[string]map[string]int64),
		saves:  make(map[saveKey]*domain.SaveSlot),
	}
}

func (m *memStore) CreateUser(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *memStore) GetUser(_ context.Context, userID string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memStore) ListUsers(_ context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]domain.User, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, *user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (m *memStore) GetUsernames(_ context.Context, userIDs []string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make(map[string]string)
	for _, id := range userIDs {
		if user, ok := m.users[id]; ok {
			names[id] = user.Username
		}
	}
	return names, nil
}

func (m *memStore) CountUsers(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

func (m *memStore) SeedGame(_ context.Context, game domain.Game) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[game.ID]; ok {
		return false, nil
	}
	copied := game
	m.games[game.ID] = &copied
	return true, nil
}

func (m *memStore) GetGame(_ context.Context, gameID string) (*domain.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	game, ok := m.games[gameID]
	if !ok {
		return nil, domain.ErrGameNotFound
	}
	copied := *game
	return &copied, nil
}

func (m *memStore) ListActiveGames(_ context.Context) ([]domain.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var games []domain.Game
	for _, game := range m.games {
		if game.IsActive {
			games = append(games, *game)
		}
	}
	sort.Slice(games, func(i, j int) bool { return games[i].CreatedAt.Before(games[j].CreatedAt) })
	return games, nil
}

func (m *memStore) CountActiveGames(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, game := range m.games {
		if game.IsActive {
			count++
		}
	}
	return count, nil
}

func (m *memStore) UpsertHighScore(_ context.Context, userID, gameID string, score int64) (int64, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scores[userID] == nil {
		m.scores[userID] = make(map[string]int64)
	}
	previous := m.scores[userID][gameID]
	best := previous
	if score > best {
		best = score
	}
	m.scores[userID][gameID] = best
	return previous, best, nil
}

func (m *memStore) GetHighScores(_ context.Context, userID string) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	scores := make(map[string]int64)
	for gameID, score := range m.scores[userID] {
		scores[gameID] = score
	}
	return scores, nil
}

func (m *memStore) Leaderboard(_ context.Context, gameID string, limit int) ([]domain.LeaderboardEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var entries []domain.LeaderboardEntry
	for userID, games := range m.scores {
		score, ok := games[gameID]
		if !ok {
			continue
		}
		username := userID
		if user, exists := m.users[userID]; exists {
			username = user.Username
		}
		entries = append(entries, domain.LeaderboardEntry{UserID: userID, Username: username, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].UserID < entries[j].UserID
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = int64(i + 1)
	}
	return entries, nil
}

func (m *memStore) GameScores(_ context.Context, gameID string) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	scores := make(map[string]int64)
	for userID, games := range m.scores {
		if score, ok := games[gameID]; ok {
			scores[userID] = score
		}
	}
	return scores, nil
}

func (m *memStore) UpsertSave(_ context.Context, save *domain.SaveSlot) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := saveKey{save.UserID, save.GameID, save.SlotNumber}
	_, overwritten := m.saves[key]
	copied := *save
	m.saves[key] = &copied
	return overwritten, nil
}

func (m *memStore) ListSaves(_ context.Context, userID, gameID string) ([]domain.SaveSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var saves []domain.SaveSlot
	for key, save := range m.saves {
		if key.userID == userID && key.gameID == gameID {
			saves = append(saves, *save)
		}
	}
	sort.Slice(saves, func(i, j int) bool { return saves[i].SlotNumber < saves[j].SlotNumber })
	return saves, nil
}

func (m *memStore) GetSave(_ context.Context, userID, gameID string, slot int) (*domain.SaveSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	save, ok := m.saves[saveKey{userID, gameID, slot}]
	if !ok {
		return nil, domain.ErrSaveNotFound
	}
	copied := *save
	return &copied, nil
}

func (m *memStore) DeleteSave(_ context.Context, userID, gameID string, slot int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := saveKey{userID, gameID, slot}
	if _, ok := m.saves[key]; !ok {
		return domain.ErrSaveNotFound
	}
	delete(m.saves, key)
	return nil
}

func (m *memStore) CountSaves(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.saves)), nil
}

// fakeHub records broadcasts for assertions
type fakeHub struct {
	mu      sync.Mutex
	updates []domain.LeaderboardEntry
}

func (h *fakeHub) BroadcastScoreUpdate(_ string, entry domain.LeaderboardEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.updates = append(h.updates, entry)
}

func (h *fakeHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.updates)
}
