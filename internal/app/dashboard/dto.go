package dashboard

import (
	"encoding/json"

	"rescuesim/internal/app/ports"
)

type SessionsRequest struct {
	UserID string
	Limit  int
}

type SessionView struct {
	SessionID            string          `json:"sessionId"`
	UserID               string          `json:"userId"`
	Username             string          `json:"username"`
	Scores               ports.Scores    `json:"scores"`
	TotalScore           int             `json:"totalScore"`
	Saved                *int            `json:"saved"`
	Lost                 *int            `json:"lost"`
	TimeRemainingSeconds *int            `json:"timeRemainingSeconds"`
	GameDurationSeconds  *int            `json:"gameDurationSeconds"`
	TimeSpentSeconds     *int            `json:"timeSpentSeconds"`
	EndedReason          *string         `json:"endedReason"`
	Feedback             *string         `json:"feedback"`
	Scenario             *string         `json:"scenario"`
	Metadata             json.RawMessage `json:"metadata,omitempty"`
	Source               string          `json:"source"`
	CreatedAt            string          `json:"createdAt"`
	UpdatedAt            string          `json:"updatedAt"`
}

type SessionsResponse struct {
	Sessions []SessionView `json:"sessions"`
}

type StatsRequest struct {
	UserID string
	Email  string
}

type StatsResponse struct {
	UserID        string  `json:"userId"`
	Username      string  `json:"username"`
	TotalSessions int     `json:"totalSessions"`
	BestScore     int     `json:"bestScore"`
	AverageScore  int     `json:"averageScore"`
	TotalSaved    int     `json:"totalSaved"`
	TotalLost     int     `json:"totalLost"`
	Rank          int     `json:"rank"`
	LastPlayedAt  *string `json:"lastPlayedAt"`
}

type LeaderboardRequest struct {
	Limit int
}

type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Score     int    `json:"score"`
	BestSaved int    `json:"bestSaved"`
	Sessions  int    `json:"sessions"`
}

type LeaderboardResponse struct {
	Entries []LeaderboardEntry `json:"entries"`
}

type FeedbackRequest struct {
	UserID    string
	SessionID string `json:"sessionId"`
	Feedback  string `json:"feedback"`
}

type FeedbackResponse struct {
	OK        bool   `json:"ok"`
	SessionID string `json:"sessionId"`
}
