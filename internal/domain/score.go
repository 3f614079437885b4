package domain

// ScoreSubmission represents a score reported for a user and game. It arrives
// either through the REST endpoint or from the Kafka ingestion topic.
type ScoreSubmission struct {
	UserID string `json:"user_id"`
	GameID string `json:"game_id"`
	Score  int64  `json:"score"`
}

// BatchScoreSubmission represents multiple score submissions
type BatchScoreSubmission struct {
	Scores []ScoreSubmission `json:"scores"`
}

// ScoreResult describes the outcome of a high-score update. The stored value
// is a ratchet: Best only ever increases.
type ScoreResult struct {
	NewHigh      bool  `json:"new_high"`
	Score        int64 `json:"score"`
	PreviousHigh int64 `json:"previous_high"`
	Best         int64 `json:"best"`
}

// LeaderboardEntry represents a single row of a game's leaderboard, projected
// to the caller as username plus score
type LeaderboardEntry struct {
	Rank     int64  `json:"rank"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Score    int64  `json:"score"`
}
