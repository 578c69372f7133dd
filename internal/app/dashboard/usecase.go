// Package dashboard serves the signed-in player's history and the global
// leaderboard from stored game sessions.
package dashboard

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"rescuesim/internal/app/ports"
)

const (
	DefaultLimit      = 20
	MaxLimit          = 100
	MaxFeedbackLength = 2000
)

var ErrInvalidRequest = errors.New("invalid dashboard request")

type SessionsUseCase struct {
	Stats ports.SessionStatsRepository
}

type StatsUseCase struct {
	Stats ports.SessionStatsRepository
}

type LeaderboardUseCase struct {
	Stats ports.SessionStatsRepository
}

type FeedbackUseCase struct {
	TxManager ports.TxManager
	Sessions  ports.SessionResultRepository
	Now       func() time.Time
}

func (u SessionsUseCase) Execute(ctx context.Context, req SessionsRequest) (SessionsResponse, error) {
	if strings.TrimSpace(req.UserID) == "" || u.Stats == nil {
		return SessionsResponse{}, ErrInvalidRequest
	}
	rows, err := u.Stats.ListByUserID(ctx, req.UserID, clampLimit(req.Limit))
	if err != nil {
		return SessionsResponse{}, err
	}
	out := SessionsResponse{Sessions: make([]SessionView, 0, len(rows))}
	for _, rec := range rows {
		out.Sessions = append(out.Sessions, toSessionView(rec))
	}
	return out, nil
}

func (u StatsUseCase) Execute(ctx context.Context, req StatsRequest) (StatsResponse, error) {
	if strings.TrimSpace(req.UserID) == "" || u.Stats == nil {
		return StatsResponse{}, ErrInvalidRequest
	}
	stats, err := u.Stats.StatsByUserID(ctx, req.UserID)
	if err != nil {
		return StatsResponse{}, err
	}
	rank, err := u.Stats.RankByUserID(ctx, req.UserID)
	if err != nil {
		return StatsResponse{}, err
	}
	out := StatsResponse{
		UserID:        req.UserID,
		Username:      req.Email,
		TotalSessions: stats.TotalSessions,
		BestScore:     stats.BestScore,
		AverageScore:  int(math.Round(stats.AverageScore)),
		TotalSaved:    stats.TotalSaved,
		TotalLost:     stats.TotalLost,
		Rank:          rank,
	}
	if stats.LastPlayedAt != nil {
		s := stats.LastPlayedAt.UTC().Format(time.RFC3339)
		out.LastPlayedAt = &s
	}
	return out, nil
}

func (u LeaderboardUseCase) Execute(ctx context.Context, req LeaderboardRequest) (LeaderboardResponse, error) {
	if u.Stats == nil {
		return LeaderboardResponse{}, ErrInvalidRequest
	}
	rows, err := u.Stats.Leaderboard(ctx, clampLimit(req.Limit))
	if err != nil {
		return LeaderboardResponse{}, err
	}
	out := LeaderboardResponse{Entries: make([]LeaderboardEntry, 0, len(rows))}
	for i, row := range rows {
		out.Entries = append(out.Entries, LeaderboardEntry{
			Rank:      i + 1,
			UserID:    row.UserID,
			Username:  row.Username,
			Score:     row.BestScore,
			BestSaved: row.BestSaved,
			Sessions:  row.Sessions,
		})
	}
	return out, nil
}

// Execute sets the feedback text on one of the caller's own sessions.
// Sessions owned by someone else look exactly like missing ones.
func (u FeedbackUseCase) Execute(ctx context.Context, req FeedbackRequest) (FeedbackResponse, error) {
	req.SessionID = strings.TrimSpace(req.SessionID)
	req.Feedback = strings.TrimSpace(req.Feedback)
	if req.UserID == "" || req.SessionID == "" || req.Feedback == "" ||
		utf8.RuneCountInString(req.Feedback) > MaxFeedbackLength ||
		u.TxManager == nil || u.Sessions == nil {
		return FeedbackResponse{}, ErrInvalidRequest
	}
	nowFn := u.Now
	if nowFn == nil {
		nowFn = time.Now
	}

	err := u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		rec, err := u.Sessions.GetBySessionID(txCtx, req.SessionID)
		if err != nil {
			return err
		}
		if rec.UserID != req.UserID {
			return ports.ErrNotFound
		}
		return u.Sessions.UpdateFeedback(txCtx, req.SessionID, req.Feedback, nowFn().UTC())
	})
	if err != nil {
		return FeedbackResponse{}, err
	}
	return FeedbackResponse{OK: true, SessionID: req.SessionID}, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func toSessionView(rec ports.SessionResultRecord) SessionView {
	return SessionView{
		SessionID:            rec.SessionID,
		UserID:               rec.UserID,
		Username:             rec.Username,
		Scores:               rec.Scores,
		TotalScore:           rec.TotalScore,
		Saved:                rec.Saved,
		Lost:                 rec.Lost,
		TimeRemainingSeconds: rec.TimeRemainingSeconds,
		GameDurationSeconds:  rec.GameDurationSeconds,
		TimeSpentSeconds:     rec.TimeSpentSeconds,
		EndedReason:          rec.EndedReason,
		Feedback:             rec.Feedback,
		Scenario:             rec.Scenario,
		Metadata:             rec.Metadata,
		Source:               rec.Source,
		CreatedAt:            rec.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:            rec.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
