package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retro-games-platform/internal/config"
	"github.com/retro-games-platform/internal/domain"
)

func newScoreService(store *memStore) *ScoreService {
	cfg := &config.LeaderboardConfig{DefaultLimit: 10, MaxLimit: 100}
	return NewScoreService(store, store, nil, cfg, slog.Default())
}

func addUser(t *testing.T, store *memStore, id, username string) {
	t.Helper()
	err := store.CreateUser(context.Background(), &domain.User{
		ID:        id,
		Username:  username,
		Email:     username + "@example.com",
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
}

func TestScoreRatchetSequence(t *testing.T) {
	store := newMemStore()
	svc := newScoreService(store)
	ctx := context.Background()
	addUser(t, store, "u1", "alice")

	// 50 over 0: new high
	res, err := svc.Update(ctx, domain.ScoreSubmission{UserID: "u1", GameID: "snake-game", Score: 50})
	require.NoError(t, err)
	assert.True(t, res.NewHigh)
	assert.Equal(t, int64(0), res.PreviousHigh)
	assert.Equal(t, int64(50), res.Best)

	// 30: not a new high, best stays 50
	res, err = svc.Update(ctx, domain.ScoreSubmission{UserID: "u1", GameID: "snake-game", Score: 30})
	require.NoError(t, err)
	assert.False(t, res.NewHigh)
	assert.Equal(t, int64(50), res.Best)

	// 80: new high over 50
	res, err = svc.Update(ctx, domain.ScoreSubmission{UserID: "u1", GameID: "snake-game", Score: 80})
	require.NoError(t, err)
	assert.True(t, res.NewHigh)
	assert.Equal(t, int64(50), res.PreviousHigh)
	assert.Equal(t, int64(80), res.Best)

	scores, err := store.GetHighScores(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(80), scores["snake-game"])
}

func TestScoreUpdateProvisionsGuest(t *testing.T) {
	store := newMemStore()
	svc := newScoreService(store)
	ctx := context.Background()

	res, err := svc.Update(ctx, domain.ScoreSubmission{UserID: "wandering-soul", GameID: "snake-game", Score: 12})
	require.NoError(t, err)
	assert.True(t, res.NewHigh)

	guest, err := store.GetUser(ctx, "wandering-soul")
	require.NoError(t, err)
	assert.Equal(t, "Guest-wanderin", guest.Username)
	assert.False(t, guest.IsAdmin)
	assert.Empty(t, guest.PasswordHash)
}

func TestScoreUpdateRejectsInvalid(t *testing.T) {
	svc := newScoreService(newMemStore())
	ctx := context.Background()

	_, err := svc.Update(ctx, domain.ScoreSubmission{GameID: "snake-game", Score: 5})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	_, err = svc.Update(ctx, domain.ScoreSubmission{UserID: "u1", Score: 5})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	_, err = svc.Update(ctx, domain.ScoreSubmission{UserID: "u1", GameID: "snake-game", Score: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestScoreUpdateBroadcastsNewHighsOnly(t *testing.T) {
	store := newMemStore()
	svc := newScoreService(store)
	hub := &fakeHub{}
	svc.SetHub(hub)
	ctx := context.Background()
	addUser(t, store, "u1", "alice")

	_, err := svc.Update(ctx, domain.ScoreSubmission{UserID: "u1", GameID: "snake-game", Score: 50})
	require.NoError(t, err)
	_, err = svc.Update(ctx, domain.ScoreSubmission{UserID: "u1", GameID: "snake-game", Score: 30})
	require.NoError(t, err)

	assert.Equal(t, 1, hub.count())
}

func TestLeaderboardSortedWithTieBreak(t *testing.T) {
	store := newMemStore()
	svc := newScoreService(store)
	ctx := context.Background()
	addUser(t, store, "b-user", "bob")
	addUser(t, store, "a-user", "alice")
	addUser(t, store, "c-user", "carol")
	addUser(t, store, "d-user", "dave")

	for _, sub := range []domain.ScoreSubmission{
		{UserID: "b-user", GameID: "snake-game", Score: 100},
		{UserID: "a-user", GameID: "snake-game", Score: 100},
		{UserID: "c-user", GameID: "snake-game", Score: 250},
		{UserID: "d-user", GameID: "pong-game", Score: 999},
	} {
		_, err := svc.Update(ctx, sub)
		require.NoError(t, err)
	}

	entries, err := svc.Leaderboard(ctx, "snake-game", 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "carol", entries[0].Username)
	assert.Equal(t, int64(250), entries[0].Score)
	// Ties order by user id ascending
	assert.Equal(t, "alice", entries[1].Username)
	assert.Equal(t, "bob", entries[2].Username)
	// dave only scored in pong, so never appears here
	for _, entry := range entries {
		assert.NotEqual(t, "dave", entry.Username)
	}
}

func TestLeaderboardLimitClamped(t *testing.T) {
	store := newMemStore()
	svc := newScoreService(store)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		id := string(rune('a'+i)) + "-user"
		addUser(t, store, id, id)
		_, err := svc.Update(ctx, domain.ScoreSubmission{UserID: id, GameID: "snake-game", Score: int64(i + 1)})
		require.NoError(t, err)
	}

	// limit 0 falls back to the default of 10
	entries, err := svc.Leaderboard(ctx, "snake-game", 0)
	require.NoError(t, err)
	assert.Len(t, entries, 10)

	entries, err = svc.Leaderboard(ctx, "snake-game", 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestUpdateBatchContinuesPastFailures(t *testing.T) {
	store := newMemStore()
	svc := newScoreService(store)
	ctx := context.Background()
	addUser(t, store, "u1", "alice")

	err := svc.UpdateBatch(ctx, domain.BatchScoreSubmission{Scores: []domain.ScoreSubmission{
		{UserID: "", GameID: "snake-game", Score: 10}, // invalid, skipped
		{UserID: "u1", GameID: "snake-game", Score: 42},
	}})
	require.NoError(t, err)

	scores, err := store.GetHighScores(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), scores["snake-game"])
}
