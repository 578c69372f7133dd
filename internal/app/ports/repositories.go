package ports

import (
	"context"
	"encoding/json"
	"time"
)

type UserRecord struct {
	UserID       string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type UserRepository interface {
	// Create returns ErrConflict when the email is taken.
	Create(ctx context.Context, user UserRecord) error
	GetByEmail(ctx context.Context, email string) (UserRecord, error)
	GetByID(ctx context.Context, userID string) (UserRecord, error)
}

type Scores struct {
	LowSugarShockFall int `json:"lowSugarShockFall"`
	StrokeFall        int `json:"strokeFall"`
	WaterSlipFall     int `json:"waterSlipFall"`
}

func (s Scores) Sum() int {
	return s.LowSugarShockFall + s.StrokeFall + s.WaterSlipFall
}

// SessionResultRecord is one stored game session. Nil pointers are absent
// values and are stored as NULL.
type SessionResultRecord struct {
	SessionID            string
	UserID               string
	Username             string
	Scores               Scores
	TotalScore           int
	Saved                *int
	Lost                 *int
	TimeRemainingSeconds *int
	GameDurationSeconds  *int
	TimeSpentSeconds     *int
	EndedReason          *string
	Feedback             *string
	Scenario             *string
	Metadata             json.RawMessage
	Source               string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type SessionResultRepository interface {
	// Upsert inserts the full record or, when the session id exists,
	// overwrites every mutable field. CreatedAt and Source are insert-only.
	Upsert(ctx context.Context, rec SessionResultRecord) error
	GetBySessionID(ctx context.Context, sessionID string) (SessionResultRecord, error)
	UpdateFeedback(ctx context.Context, sessionID, feedback string, updatedAt time.Time) error
}

type UserSessionStats struct {
	TotalSessions int
	BestScore     int
	AverageScore  float64
	TotalSaved    int
	TotalLost     int
	LastPlayedAt  *time.Time
}

type LeaderboardRow struct {
	UserID    string
	Username  string
	BestScore int
	BestSaved int
	Sessions  int
}

type SessionStatsRepository interface {
	ListByUserID(ctx context.Context, userID string, limit int) ([]SessionResultRecord, error)
	StatsByUserID(ctx context.Context, userID string) (UserSessionStats, error)
	// Leaderboard ranks users by best total score, then best saved count.
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error)
	// RankByUserID is the 1-based leaderboard position, 0 for users without sessions.
	RankByUserID(ctx context.Context, userID string) (int, error)
}
