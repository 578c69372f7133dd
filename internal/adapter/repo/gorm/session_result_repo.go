package gormrepo

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"rescuesim/internal/adapter/repo/gorm/model"
	"rescuesim/internal/app/ports"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// every column except session_id, created_at and source
var sessionMutableColumns = []string{
	"user_id",
	"username",
	"low_sugar_shock_fall",
	"stroke_fall",
	"water_slip_fall",
	"total_score",
	"saved",
	"lost",
	"time_remaining_seconds",
	"game_duration_seconds",
	"time_spent_seconds",
	"ended_reason",
	"feedback",
	"scenario",
	"metadata",
	"updated_at",
}

type SessionResultRepo struct {
	db *gorm.DB
}

func NewSessionResultRepo(db *gorm.DB) SessionResultRepo {
	return SessionResultRepo{db: db}
}

func (r SessionResultRepo) Upsert(ctx context.Context, rec ports.SessionResultRecord) error {
	row := toGameSessionModel(rec)
	return getDBFromCtx(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns(sessionMutableColumns),
		}).
		Create(&row).Error
}

func (r SessionResultRepo) GetBySessionID(ctx context.Context, sessionID string) (ports.SessionResultRecord, error) {
	var row model.GameSession
	if err := getDBFromCtx(ctx, r.db).Where("session_id = ?", sessionID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.SessionResultRecord{}, ports.ErrNotFound
		}
		return ports.SessionResultRecord{}, err
	}
	return toSessionResultRecord(row), nil
}

func (r SessionResultRepo) UpdateFeedback(ctx context.Context, sessionID, feedback string, updatedAt time.Time) error {
	res := getDBFromCtx(ctx, r.db).
		Model(&model.GameSession{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]any{
			"feedback":   feedback,
			"updated_at": updatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r SessionResultRepo) ListByUserID(ctx context.Context, userID string, limit int) ([]ports.SessionResultRecord, error) {
	q := getDBFromCtx(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("session_id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []model.GameSession
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ports.SessionResultRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, toSessionResultRecord(row))
	}
	return out, nil
}

type userStatsRow struct {
	TotalSessions int64
	BestScore     int64
	AverageScore  float64
	TotalSaved    int64
	TotalLost     int64
	LastPlayedAt  *time.Time
}

func (r SessionResultRepo) StatsByUserID(ctx context.Context, userID string) (ports.UserSessionStats, error) {
	var row userStatsRow
	err := getDBFromCtx(ctx, r.db).
		Model(&model.GameSession{}).
		Select(`COUNT(*) AS total_sessions,
			COALESCE(MAX(total_score), 0) AS best_score,
			COALESCE(AVG(total_score), 0)::float8 AS average_score,
			COALESCE(SUM(saved), 0) AS total_saved,
			COALESCE(SUM(lost), 0) AS total_lost,
			MAX(created_at) AS last_played_at`).
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return ports.UserSessionStats{}, err
	}
	return ports.UserSessionStats{
		TotalSessions: int(row.TotalSessions),
		BestScore:     int(row.BestScore),
		AverageScore:  row.AverageScore,
		TotalSaved:    int(row.TotalSaved),
		TotalLost:     int(row.TotalLost),
		LastPlayedAt:  row.LastPlayedAt,
	}, nil
}

const leaderboardBoardCTE = `
WITH board AS (
  SELECT user_id,
         MAX(total_score) AS best_score,
         COALESCE(MAX(saved), 0) AS best_saved,
         COUNT(*) AS sessions,
         (ARRAY_AGG(username ORDER BY total_score DESC, created_at DESC))[1] AS username
  FROM game_sessions
  GROUP BY user_id
)`

type leaderboardRow struct {
	UserID    string
	Username  string
	BestScore int64
	BestSaved int64
	Sessions  int64
}

func (r SessionResultRepo) Leaderboard(ctx context.Context, limit int) ([]ports.LeaderboardRow, error) {
	if limit <= 0 {
		limit = math.MaxInt32
	}
	var rows []leaderboardRow
	err := getDBFromCtx(ctx, r.db).Raw(leaderboardBoardCTE+`
SELECT user_id, username, best_score, best_saved, sessions
FROM board
ORDER BY best_score DESC, best_saved DESC, user_id ASC
LIMIT ?`, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]ports.LeaderboardRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, ports.LeaderboardRow{
			UserID:    row.UserID,
			Username:  row.Username,
			BestScore: int(row.BestScore),
			BestSaved: int(row.BestSaved),
			Sessions:  int(row.Sessions),
		})
	}
	return out, nil
}

func (r SessionResultRepo) RankByUserID(ctx context.Context, userID string) (int, error) {
	var rank int64
	err := getDBFromCtx(ctx, r.db).Raw(leaderboardBoardCTE+`
SELECT ranked.rank FROM (
  SELECT user_id, ROW_NUMBER() OVER (ORDER BY best_score DESC, best_saved DESC, user_id ASC) AS rank
  FROM board
) ranked
WHERE ranked.user_id = ?`, userID).Scan(&rank).Error
	if err != nil {
		return 0, err
	}
	return int(rank), nil
}

func toGameSessionModel(rec ports.SessionResultRecord) model.GameSession {
	row := model.GameSession{
		SessionID:            rec.SessionID,
		UserID:               rec.UserID,
		Username:             rec.Username,
		LowSugarShockFall:    int32(rec.Scores.LowSugarShockFall),
		StrokeFall:           int32(rec.Scores.StrokeFall),
		WaterSlipFall:        int32(rec.Scores.WaterSlipFall),
		TotalScore:           int32(rec.TotalScore),
		Saved:                toInt32Ptr(rec.Saved),
		Lost:                 toInt32Ptr(rec.Lost),
		TimeRemainingSeconds: toInt32Ptr(rec.TimeRemainingSeconds),
		GameDurationSeconds:  toInt32Ptr(rec.GameDurationSeconds),
		TimeSpentSeconds:     toInt32Ptr(rec.TimeSpentSeconds),
		EndedReason:          rec.EndedReason,
		Feedback:             rec.Feedback,
		Scenario:             rec.Scenario,
		Source:               rec.Source,
		CreatedAt:            rec.CreatedAt,
		UpdatedAt:            rec.UpdatedAt,
	}
	if len(rec.Metadata) > 0 {
		row.Metadata = datatypes.JSON(rec.Metadata)
	}
	return row
}

func toSessionResultRecord(row model.GameSession) ports.SessionResultRecord {
	rec := ports.SessionResultRecord{
		SessionID: row.SessionID,
		UserID:    row.UserID,
		Username:  row.Username,
		Scores: ports.Scores{
			LowSugarShockFall: int(row.LowSugarShockFall),
			StrokeFall:        int(row.StrokeFall),
			WaterSlipFall:     int(row.WaterSlipFall),
		},
		TotalScore:           int(row.TotalScore),
		Saved:                fromInt32Ptr(row.Saved),
		Lost:                 fromInt32Ptr(row.Lost),
		TimeRemainingSeconds: fromInt32Ptr(row.TimeRemainingSeconds),
		GameDurationSeconds:  fromInt32Ptr(row.GameDurationSeconds),
		TimeSpentSeconds:     fromInt32Ptr(row.TimeSpentSeconds),
		EndedReason:          row.EndedReason,
		Feedback:             row.Feedback,
		Scenario:             row.Scenario,
		Source:               row.Source,
		CreatedAt:            row.CreatedAt,
		UpdatedAt:            row.UpdatedAt,
	}
	if len(row.Metadata) > 0 {
		rec.Metadata = json.RawMessage(row.Metadata)
	}
	return rec
}

func toInt32Ptr(v *int) *int32 {
	if v == nil {
		return nil
	}
	c := int32(*v)
	return &c
}

func fromInt32Ptr(v *int32) *int {
	if v == nil {
		return nil
	}
	c := int(*v)
	return &c
}
