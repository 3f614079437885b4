package kafka

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retro-games-platform/internal/config"
	"github.com/retro-games-platform/internal/domain"
	"github.com/retro-games-platform/internal/service"
)

// The score service is the production handler
var _ ScoreHandler = (*service.ScoreService)(nil)

type recordingHandler struct {
	mu      sync.Mutex
	batches []domain.BatchScoreSubmission
}

func (h *recordingHandler) UpdateBatch(_ context.Context, batch domain.BatchScoreSubmission) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.batches = append(h.batches, batch)
	return nil
}

func (h *recordingHandler) submissions() []domain.ScoreSubmission {
	h.mu.Lock()
	defer h.mu.Unlock()
	var subs []domain.ScoreSubmission
	for _, batch := range h.batches {
		subs = append(subs, batch.Scores...)
	}
	return subs
}

type stubSession struct {
	ctx    context.Context
	mu     sync.Mutex
	marked []int64
}

func (s *stubSession) Claims() map[string][]int32               { return nil }
func (s *stubSession) MemberID() string                         { return "test-member" }
func (s *stubSession) GenerationID() int32                      { return 1 }
func (s *stubSession) MarkOffset(string, int32, int64, string)  {}
func (s *stubSession) Commit()                                  {}
func (s *stubSession) ResetOffset(string, int32, int64, string) {}
func (s *stubSession) Context() context.Context                 { return s.ctx }

func (s *stubSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked = append(s.marked, msg.Offset)
}

type stubClaim struct {
	messages chan *sarama.ConsumerMessage
}

func (c *stubClaim) Topic() string                            { return "game-scores" }
func (c *stubClaim) Partition() int32                         { return 0 }
func (c *stubClaim) InitialOffset() int64                     { return 0 }
func (c *stubClaim) HighWaterMarkOffset() int64               { return 0 }
func (c *stubClaim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

func newClaimHandler(handler ScoreHandler, batchSize int) (*consumerGroupHandler, *stubSession, *stubClaim) {
	consumer := &Consumer{
		config: &config.KafkaConfig{
			Topic:        "game-scores",
			BatchSize:    batchSize,
			BatchTimeout: 50 * time.Millisecond,
		},
		handler: handler,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	session := &stubSession{ctx: context.Background()}
	claim := &stubClaim{messages: make(chan *sarama.ConsumerMessage, 16)}
	return &consumerGroupHandler{consumer: consumer, ready: make(chan bool)}, session, claim
}

func message(offset int64, value string) *sarama.ConsumerMessage {
	return &sarama.ConsumerMessage{
		Topic:  "game-scores",
		Offset: offset,
		Value:  []byte(value),
	}
}

func TestConsumeClaimBatchesValidSubmissions(t *testing.T) {
	handler := &recordingHandler{}
	h, session, claim := newClaimHandler(handler, 10)

	claim.messages <- message(1, `{"user_id":"u1","game_id":"snake-game","score":100}`)
	claim.messages <- message(2, `{"user_id":"u2","game_id":"snake-game","score":200}`)
	close(claim.messages)

	require.NoError(t, h.ConsumeClaim(session, claim))

	subs := handler.submissions()
	require.Len(t, subs, 2)
	assert.Equal(t, domain.ScoreSubmission{UserID: "u1", GameID: "snake-game", Score: 100}, subs[0])
	assert.Equal(t, domain.ScoreSubmission{UserID: "u2", GameID: "snake-game", Score: 200}, subs[1])
	assert.Equal(t, []int64{1, 2}, session.marked)
}

func TestConsumeClaimSkipsInvalidMessages(t *testing.T) {
	handler := &recordingHandler{}
	h, session, claim := newClaimHandler(handler, 10)

	claim.messages <- message(1, `not json`)
	claim.messages <- message(2, `{"user_id":"","game_id":"snake-game","score":5}`)
	claim.messages <- message(3, `{"user_id":"u1","game_id":"","score":5}`)
	claim.messages <- message(4, `{"user_id":"u1","game_id":"snake-game","score":5}`)
	close(claim.messages)

	require.NoError(t, h.ConsumeClaim(session, claim))

	subs := handler.submissions()
	require.Len(t, subs, 1)
	assert.Equal(t, "u1", subs[0].UserID)
	// Bad messages are still marked so the partition keeps moving
	assert.Equal(t, []int64{1, 2, 3, 4}, session.marked)
}

func TestConsumeClaimFlushesFullBatches(t *testing.T) {
	handler := &recordingHandler{}
	h, session, claim := newClaimHandler(handler, 2)

	for i := int64(1); i <= 5; i++ {
		claim.messages <- message(i, `{"user_id":"u1","game_id":"snake-game","score":10}`)
	}
	close(claim.messages)

	require.NoError(t, h.ConsumeClaim(session, claim))

	// 5 messages at batch size 2: two full batches plus the remainder
	require.Len(t, handler.batches, 3)
	assert.Len(t, handler.batches[0].Scores, 2)
	assert.Len(t, handler.batches[1].Scores, 2)
	assert.Len(t, handler.batches[2].Scores, 1)
}
