package ingest

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"rescuesim/internal/domain/rescue"
)

var (
	ErrInvalidJSON    = errors.New("invalid json")
	ErrInvalidRequest = errors.New("invalid ingest request")
)

// Request is a decoded submission. Pointer fields are nil when the client
// omitted them or sent something that is not the expected JSON type.
type Request struct {
	Email    string
	Password string

	SessionID string

	// gameplay-scores shape
	HasScores         bool
	LowSugarShockFall *int
	StrokeFall        *int
	WaterSlipFall     *int
	TotalScore        *int

	// outcome-counts shape
	HasOutcome bool
	Saved      *int
	Lost       *int

	TimeRemainingSeconds *int
	GameDurationSeconds  *int
	EndedReason          *rescue.EndReason
	CreatedAt            *time.Time
	Feedback             *string
	Scenario             *string
	Metadata             json.RawMessage
}

// DecodeRequest parses one ingest body. It accepts the gameplay-scores
// shape (an object "scores" plus a non-empty string "sessionId"), the
// outcome-counts shape ("saved" or "lost" present) or both at once.
func DecodeRequest(body []byte) (Request, error) {
	if !gjson.ValidBytes(body) {
		return Request{}, ErrInvalidJSON
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return Request{}, ErrInvalidRequest
	}

	email, password := root.Get("email"), root.Get("password")
	if email.Type != gjson.String || password.Type != gjson.String {
		return Request{}, ErrInvalidRequest
	}
	req := Request{Email: email.String(), Password: password.String()}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return Request{}, ErrInvalidRequest
	}

	if sid := root.Get("sessionId"); sid.Type == gjson.String {
		req.SessionID = strings.TrimSpace(sid.String())
	}

	scores := root.Get("scores")
	req.HasScores = scores.IsObject() && req.SessionID != ""
	saved, lost := root.Get("saved"), root.Get("lost")
	req.HasOutcome = saved.Exists() || lost.Exists()
	if !req.HasScores && !req.HasOutcome {
		return Request{}, ErrInvalidRequest
	}

	if req.HasScores {
		req.LowSugarShockFall = intOrNil(scores.Get("lowSugarShockFall"))
		req.StrokeFall = intOrNil(scores.Get("strokeFall"))
		req.WaterSlipFall = intOrNil(scores.Get("waterSlipFall"))
		req.TotalScore = intOrNil(root.Get("totalScore"))
	}
	if req.HasOutcome {
		req.Saved = intOrNil(saved)
		req.Lost = intOrNil(lost)
		if req.Saved == nil || req.Lost == nil || *req.Saved < 0 || *req.Lost < 0 {
			return Request{}, ErrInvalidRequest
		}
	}

	req.TimeRemainingSeconds = intOrNil(root.Get("timeRemainingSeconds"))
	req.GameDurationSeconds = intOrNil(root.Get("gameDurationSeconds"))

	if reason := root.Get("endedReason"); reason.Exists() && reason.Type != gjson.Null {
		r := rescue.EndReasonUnknown
		if reason.Type == gjson.String {
			r = rescue.ParseEndReason(reason.String())
		}
		req.EndedReason = &r
	}
	if created := root.Get("createdAt"); created.Type == gjson.String {
		if ts, err := time.Parse(time.RFC3339Nano, created.String()); err == nil {
			ts = ts.UTC()
			req.CreatedAt = &ts
		}
	}
	req.Feedback = stringOrNil(root.Get("feedback"))
	req.Scenario = stringOrNil(root.Get("scenario"))
	if meta := root.Get("metadata"); meta.IsObject() {
		req.Metadata = json.RawMessage(meta.Raw)
	}
	return req, nil
}

func intOrNil(r gjson.Result) *int {
	if r.Type != gjson.Number {
		return nil
	}
	f := r.Float()
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return nil
	}
	v := int(math.Floor(f))
	return &v
}

func stringOrNil(r gjson.Result) *string {
	if r.Type != gjson.String {
		return nil
	}
	s := r.String()
	return &s
}
