package ingest

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"rescuesim/internal/app/auth"
	"rescuesim/internal/app/ports"
)

const SourceUnity = "unity"

type Verifier interface {
	Execute(ctx context.Context, req auth.VerifyRequest) (auth.Identity, error)
}

type Response struct {
	OK        bool   `json:"ok"`
	SessionID string `json:"sessionId"`
}

type UseCase struct {
	Auth         Verifier
	Sessions     ports.SessionResultRepository
	Metrics      ports.IngestMetrics
	Now          func() time.Time
	NewSessionID func() string
}

// Submit decodes a raw body and runs Execute on it.
func (u UseCase) Submit(ctx context.Context, body []byte) (Response, error) {
	req, err := DecodeRequest(body)
	if err != nil {
		u.record(func(m ports.IngestMetrics) { m.RecordRejected() })
		return Response{}, err
	}
	return u.Execute(ctx, req)
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if u.Auth == nil || u.Sessions == nil {
		return Response{}, ErrInvalidRequest
	}
	id, err := u.Auth.Execute(ctx, auth.VerifyRequest{Email: req.Email, Password: req.Password})
	req.Password = ""
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			u.record(func(m ports.IngestMetrics) { m.RecordUnauthorized() })
		case errors.Is(err, auth.ErrInvalidRequest):
			u.record(func(m ports.IngestMetrics) { m.RecordRejected() })
		default:
			u.record(func(m ports.IngestMetrics) { m.RecordFailure() })
		}
		return Response{}, err
	}

	rec := u.buildRecord(id, req)
	if err := u.Sessions.Upsert(ctx, rec); err != nil {
		u.record(func(m ports.IngestMetrics) { m.RecordFailure() })
		return Response{}, err
	}

	reason := ""
	if rec.EndedReason != nil {
		reason = *rec.EndedReason
	}
	u.record(func(m ports.IngestMetrics) { m.RecordAccepted(reason) })
	return Response{OK: true, SessionID: rec.SessionID}, nil
}

func (u UseCase) buildRecord(id auth.Identity, req Request) ports.SessionResultRecord {
	nowFn := u.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	now := nowFn().UTC()

	sessionID := req.SessionID
	if sessionID == "" {
		newID := u.NewSessionID
		if newID == nil {
			newID = func() string { return "session_" + uuid.NewString() }
		}
		sessionID = newID()
	}

	rec := ports.SessionResultRecord{
		SessionID:            sessionID,
		UserID:               id.UserID,
		Username:             id.Email,
		Saved:                req.Saved,
		Lost:                 req.Lost,
		TimeRemainingSeconds: req.TimeRemainingSeconds,
		GameDurationSeconds:  req.GameDurationSeconds,
		Feedback:             req.Feedback,
		Scenario:             req.Scenario,
		Metadata:             req.Metadata,
		Source:               SourceUnity,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if req.CreatedAt != nil {
		rec.CreatedAt = *req.CreatedAt
	}
	if req.EndedReason != nil {
		reason := string(*req.EndedReason)
		rec.EndedReason = &reason
	}
	if req.HasScores {
		rec.Scores = ports.Scores{
			LowSugarShockFall: valueOr(req.LowSugarShockFall, 0),
			StrokeFall:        valueOr(req.StrokeFall, 0),
			WaterSlipFall:     valueOr(req.WaterSlipFall, 0),
		}
		rec.TotalScore = clampInt32(valueOr(req.TotalScore, rec.Scores.Sum()))
	}
	if req.TimeRemainingSeconds != nil && req.GameDurationSeconds != nil {
		spent := clampInt32(max(0, *req.GameDurationSeconds-*req.TimeRemainingSeconds))
		rec.TimeSpentSeconds = &spent
	}
	return rec
}

func (u UseCase) record(fn func(ports.IngestMetrics)) {
	if u.Metrics != nil {
		fn(u.Metrics)
	}
}

func valueOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

// clampInt32 keeps derived values inside the stored integer column range.
func clampInt32(v int) int {
	return min(max(v, math.MinInt32), math.MaxInt32)
}
