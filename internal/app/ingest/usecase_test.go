package ingest

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"rescuesim/internal/app/auth"
	"rescuesim/internal/app/ports"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newUseCase(sessions *fakeSessionRepo, metrics *fakeMetrics) UseCase {
	return UseCase{
		Auth:         fakeVerifier{email: "a@b.com", password: "correct"},
		Sessions:     sessions,
		Metrics:      metrics,
		Now:          func() time.Time { return fixedNow },
		NewSessionID: func() string { return "session_generated" },
	}
}

func TestSubmit_WrongPasswordWritesNothing(t *testing.T) {
	sessions := newFakeSessionRepo()
	metrics := &fakeMetrics{}
	uc := newUseCase(sessions, metrics)

	_, err := uc.Submit(context.Background(), []byte(`{"email":"a@b.com","password":"wrong","saved":1,"lost":0,"sessionId":"s1"}`))
	if !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(sessions.rows) != 0 || sessions.upserts != 0 {
		t.Fatalf("expected no write, got %d rows", len(sessions.rows))
	}
	if metrics.unauthorized != 1 || metrics.accepted != 0 {
		t.Fatalf("unexpected metrics: %+v", metrics)
	}
}

func TestSubmit_ResubmissionOverwritesSameSession(t *testing.T) {
	sessions := newFakeSessionRepo()
	uc := newUseCase(sessions, &fakeMetrics{})
	ctx := context.Background()

	first, err := uc.Submit(ctx, []byte(`{"email":"a@b.com","password":"correct","saved":3,"lost":0,"sessionId":"s1","createdAt":"2026-02-01T00:00:00Z"}`))
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	uc.Now = func() time.Time { return fixedNow.Add(time.Minute) }
	second, err := uc.Submit(ctx, []byte(`{"email":"a@b.com","password":"correct","saved":3,"lost":1,"sessionId":"s1","createdAt":"2026-02-02T00:00:00Z"}`))
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if first.SessionID != "s1" || second.SessionID != "s1" || !second.OK {
		t.Fatalf("unexpected responses: %+v %+v", first, second)
	}
	if len(sessions.rows) != 1 {
		t.Fatalf("expected one stored session, got %d", len(sessions.rows))
	}
	rec := sessions.rows["s1"]
	if *rec.Saved != 3 || *rec.Lost != 1 {
		t.Fatalf("expected saved=3 lost=1, got %d/%d", *rec.Saved, *rec.Lost)
	}
	if !rec.CreatedAt.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected createdAt from first insert, got %s", rec.CreatedAt)
	}
	if !rec.UpdatedAt.Equal(fixedNow.Add(time.Minute)) {
		t.Fatalf("expected updatedAt from second submit, got %s", rec.UpdatedAt)
	}
}

func TestSubmit_OutcomeOnlyDefaults(t *testing.T) {
	sessions := newFakeSessionRepo()
	uc := newUseCase(sessions, &fakeMetrics{})

	resp, err := uc.Submit(context.Background(), []byte(`{"email":" A@B.com","password":"correct","saved":2,"lost":1,"timeRemainingSeconds":42,"gameDurationSeconds":300}`))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if resp.SessionID != "session_generated" {
		t.Fatalf("expected generated session id, got %q", resp.SessionID)
	}
	rec := sessions.rows[resp.SessionID]
	if rec.UserID != "user-1" || rec.Username != "a@b.com" || rec.Source != SourceUnity {
		t.Fatalf("unexpected identity fields: %+v", rec)
	}
	if rec.Scores != (ports.Scores{}) || rec.TotalScore != 0 {
		t.Fatalf("expected zero scores, got %+v total=%d", rec.Scores, rec.TotalScore)
	}
	if rec.TimeSpentSeconds == nil || *rec.TimeSpentSeconds != 258 {
		t.Fatalf("expected timeSpent 258, got %v", rec.TimeSpentSeconds)
	}
	if rec.EndedReason != nil {
		t.Fatalf("expected absent endedReason to stay nil")
	}
	if !rec.CreatedAt.Equal(fixedNow) {
		t.Fatalf("expected server time as createdAt, got %s", rec.CreatedAt)
	}
}

func TestSubmit_GameplayTotals(t *testing.T) {
	sessions := newFakeSessionRepo()
	uc := newUseCase(sessions, &fakeMetrics{})
	ctx := context.Background()

	if _, err := uc.Submit(ctx, []byte(`{"email":"a@b.com","password":"correct","sessionId":"g1","scores":{"lowSugarShockFall":10,"strokeFall":20,"waterSlipFall":5}}`)); err != nil {
		t.Fatalf("submit g1: %v", err)
	}
	if got := sessions.rows["g1"].TotalScore; got != 35 {
		t.Fatalf("expected summed total 35, got %d", got)
	}

	if _, err := uc.Submit(ctx, []byte(`{"email":"a@b.com","password":"correct","sessionId":"g2","scores":{"strokeFall":20},"totalScore":99}`)); err != nil {
		t.Fatalf("submit g2: %v", err)
	}
	if got := sessions.rows["g2"]; got.TotalScore != 99 || got.Scores.StrokeFall != 20 || got.Saved != nil {
		t.Fatalf("unexpected g2 row: %+v", got)
	}
}

func TestSubmit_TimeSpentNeverNegative(t *testing.T) {
	sessions := newFakeSessionRepo()
	uc := newUseCase(sessions, &fakeMetrics{})
	resp, err := uc.Submit(context.Background(), []byte(`{"email":"a@b.com","password":"correct","saved":0,"lost":0,"timeRemainingSeconds":400,"gameDurationSeconds":300}`))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := sessions.rows[resp.SessionID].TimeSpentSeconds; got == nil || *got != 0 {
		t.Fatalf("expected clamped 0, got %v", got)
	}
}

func TestSubmit_DerivedValuesStayInColumnRange(t *testing.T) {
	sessions := newFakeSessionRepo()
	uc := newUseCase(sessions, &fakeMetrics{})
	_, err := uc.Submit(context.Background(), []byte(`{"email":"a@b.com","password":"correct","sessionId":"big",`+
		`"scores":{"lowSugarShockFall":2000000000,"strokeFall":2000000000,"waterSlipFall":0},`+
		`"saved":1,"lost":0,"gameDurationSeconds":2000000000,"timeRemainingSeconds":-2000000000}`))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	row := sessions.rows["big"]
	if row.TotalScore != math.MaxInt32 {
		t.Fatalf("expected total clamped to %d, got %d", math.MaxInt32, row.TotalScore)
	}
	if row.TimeSpentSeconds == nil || *row.TimeSpentSeconds != math.MaxInt32 {
		t.Fatalf("expected time spent clamped to %d, got %v", math.MaxInt32, row.TimeSpentSeconds)
	}
}

func TestSubmit_RejectionsAreCounted(t *testing.T) {
	metrics := &fakeMetrics{}
	uc := newUseCase(newFakeSessionRepo(), metrics)
	if _, err := uc.Submit(context.Background(), []byte(`{"email":"a@b.com","password":"correct"}`)); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if metrics.rejected != 1 {
		t.Fatalf("expected one rejection, got %+v", metrics)
	}
}

func TestSubmit_StorageFailure(t *testing.T) {
	sessions := newFakeSessionRepo()
	sessions.upsertErr = errors.New("db down")
	metrics := &fakeMetrics{}
	uc := newUseCase(sessions, metrics)

	_, err := uc.Submit(context.Background(), []byte(`{"email":"a@b.com","password":"correct","saved":1,"lost":0}`))
	if err == nil || !errors.Is(err, sessions.upsertErr) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if metrics.failures != 1 || metrics.accepted != 0 {
		t.Fatalf("unexpected metrics: %+v", metrics)
	}
}

func TestSubmit_AcceptedCountsReason(t *testing.T) {
	metrics := &fakeMetrics{}
	uc := newUseCase(newFakeSessionRepo(), metrics)
	if _, err := uc.Submit(context.Background(), []byte(`{"email":"a@b.com","password":"correct","saved":3,"lost":0,"endedReason":"All Cases Resolved"}`)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if metrics.accepted != 1 || metrics.lastReason != "All Cases Resolved" {
		t.Fatalf("unexpected metrics: %+v", metrics)
	}
}

type fakeVerifier struct {
	email    string
	password string
}

func (f fakeVerifier) Execute(_ context.Context, req auth.VerifyRequest) (auth.Identity, error) {
	email, err := auth.NormalizeEmail(req.Email)
	if err != nil {
		return auth.Identity{}, err
	}
	if email != f.email || req.Password != f.password {
		return auth.Identity{}, auth.ErrInvalidCredentials
	}
	return auth.Identity{UserID: "user-1", Email: email}, nil
}

type fakeSessionRepo struct {
	rows      map[string]ports.SessionResultRecord
	upserts   int
	upsertErr error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{rows: map[string]ports.SessionResultRecord{}}
}

func (f *fakeSessionRepo) Upsert(_ context.Context, rec ports.SessionResultRecord) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts++
	if prev, ok := f.rows[rec.SessionID]; ok {
		rec.CreatedAt = prev.CreatedAt
		rec.Source = prev.Source
	}
	f.rows[rec.SessionID] = rec
	return nil
}

func (f *fakeSessionRepo) GetBySessionID(_ context.Context, sessionID string) (ports.SessionResultRecord, error) {
	rec, ok := f.rows[sessionID]
	if !ok {
		return ports.SessionResultRecord{}, ports.ErrNotFound
	}
	return rec, nil
}

func (f *fakeSessionRepo) UpdateFeedback(_ context.Context, sessionID, feedback string, updatedAt time.Time) error {
	rec, ok := f.rows[sessionID]
	if !ok {
		return ports.ErrNotFound
	}
	rec.Feedback = &feedback
	rec.UpdatedAt = updatedAt
	f.rows[sessionID] = rec
	return nil
}

type fakeMetrics struct {
	accepted     int
	rejected     int
	unauthorized int
	failures     int
	lastReason   string
}

func (m *fakeMetrics) RecordAccepted(reason string) {
	m.accepted++
	m.lastReason = reason
}
func (m *fakeMetrics) RecordRejected()     { m.rejected++ }
func (m *fakeMetrics) RecordUnauthorized() { m.unauthorized++ }
func (m *fakeMetrics) RecordFailure()      { m.failures++ }
