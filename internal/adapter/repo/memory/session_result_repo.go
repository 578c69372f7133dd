package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"rescuesim/internal/app/ports"
)

type SessionResultRepo struct {
	store *Store
}

func NewSessionResultRepo(store *Store) SessionResultRepo {
	return SessionResultRepo{store: store}
}

func (r SessionResultRepo) Upsert(ctx context.Context, rec ports.SessionResultRecord) error {
	defer r.store.lock(ctx)()
	rec = cloneSession(rec)
	if prev, ok := r.store.sessions[rec.SessionID]; ok {
		rec.CreatedAt = prev.CreatedAt
		rec.Source = prev.Source
	}
	r.store.sessions[rec.SessionID] = rec
	return nil
}

func (r SessionResultRepo) GetBySessionID(ctx context.Context, sessionID string) (ports.SessionResultRecord, error) {
	defer r.store.lock(ctx)()
	rec, ok := r.store.sessions[sessionID]
	if !ok {
		return ports.SessionResultRecord{}, ports.ErrNotFound
	}
	return cloneSession(rec), nil
}

func (r SessionResultRepo) UpdateFeedback(ctx context.Context, sessionID, feedback string, updatedAt time.Time) error {
	defer r.store.lock(ctx)()
	rec, ok := r.store.sessions[sessionID]
	if !ok {
		return ports.ErrNotFound
	}
	rec.Feedback = &feedback
	rec.UpdatedAt = updatedAt
	r.store.sessions[sessionID] = rec
	return nil
}

func (r SessionResultRepo) ListByUserID(ctx context.Context, userID string, limit int) ([]ports.SessionResultRecord, error) {
	defer r.store.lock(ctx)()
	out := make([]ports.SessionResultRecord, 0)
	for _, rec := range r.store.sessions {
		if rec.UserID == userID {
			out = append(out, cloneSession(rec))
		}
	}
	slices.SortFunc(out, func(a, b ports.SessionResultRecord) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.SessionID, b.SessionID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r SessionResultRepo) StatsByUserID(ctx context.Context, userID string) (ports.UserSessionStats, error) {
	defer r.store.lock(ctx)()
	var (
		stats ports.UserSessionStats
		sum   int
	)
	for _, rec := range r.store.sessions {
		if rec.UserID != userID {
			continue
		}
		if stats.TotalSessions == 0 || rec.TotalScore > stats.BestScore {
			stats.BestScore = rec.TotalScore
		}
		stats.TotalSessions++
		sum += rec.TotalScore
		if rec.Saved != nil {
			stats.TotalSaved += *rec.Saved
		}
		if rec.Lost != nil {
			stats.TotalLost += *rec.Lost
		}
		if stats.LastPlayedAt == nil || rec.CreatedAt.After(*stats.LastPlayedAt) {
			last := rec.CreatedAt
			stats.LastPlayedAt = &last
		}
	}
	if stats.TotalSessions > 0 {
		stats.AverageScore = float64(sum) / float64(stats.TotalSessions)
	}
	return stats, nil
}

func (r SessionResultRepo) Leaderboard(ctx context.Context, limit int) ([]ports.LeaderboardRow, error) {
	defer r.store.lock(ctx)()
	rows := r.rankedLocked()
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (r SessionResultRepo) RankByUserID(ctx context.Context, userID string) (int, error) {
	defer r.store.lock(ctx)()
	for i, row := range r.rankedLocked() {
		if row.UserID == userID {
			return i + 1, nil
		}
	}
	return 0, nil
}

func (r SessionResultRepo) rankedLocked() []ports.LeaderboardRow {
	byUser := map[string]*ports.LeaderboardRow{}
	for _, rec := range r.store.sessions {
		row, ok := byUser[rec.UserID]
		if !ok {
			row = &ports.LeaderboardRow{UserID: rec.UserID, Username: rec.Username, BestScore: rec.TotalScore}
			byUser[rec.UserID] = row
		}
		row.Sessions++
		if rec.TotalScore > row.BestScore {
			row.BestScore = rec.TotalScore
			row.Username = rec.Username
		}
		if rec.Saved != nil && *rec.Saved > row.BestSaved {
			row.BestSaved = *rec.Saved
		}
	}
	rows := make([]ports.LeaderboardRow, 0, len(byUser))
	for _, row := range byUser {
		rows = append(rows, *row)
	}
	slices.SortFunc(rows, compareRows)
	return rows
}

func compareRows(a, b ports.LeaderboardRow) int {
	if c := cmp.Compare(b.BestScore, a.BestScore); c != 0 {
		return c
	}
	if c := cmp.Compare(b.BestSaved, a.BestSaved); c != 0 {
		return c
	}
	return cmp.Compare(a.UserID, b.UserID)
}
