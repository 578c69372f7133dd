package ingestclient

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/protocol"

	"rescuesim/internal/domain/rescue"
)

type fakeDoer struct {
	gotURI         string
	gotMethod      string
	gotContentType string
	gotHeader      string
	gotBody        []byte
	gotTimeout     time.Duration

	status int
	body   string
	err    error
}

func (f *fakeDoer) DoTimeout(_ context.Context, req *protocol.Request, resp *protocol.Response, timeout time.Duration) error {
	f.gotURI = string(req.URI().FullURI())
	f.gotMethod = string(req.Method())
	f.gotContentType = string(req.Header.ContentType())
	f.gotHeader = req.Header.Get("X-Ingest-Key")
	f.gotBody = append([]byte(nil), req.Body()...)
	f.gotTimeout = timeout
	if f.err != nil {
		return f.err
	}
	resp.SetStatusCode(f.status)
	resp.SetBodyString(f.body)
	return nil
}

func TestPayloadFromSummary(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	p := PayloadFromSummary(rescue.Summary{
		SessionID:            "s1",
		Saved:                2,
		Lost:                 1,
		TimeRemainingSeconds: 42,
		GameDurationSeconds:  300,
		EndedReason:          rescue.EndReasonAllResolved,
		CreatedAt:            created,
	}, "a@b.com", "pw")

	if p.Saved != 2 || p.Lost != 1 || p.TimeRemainingSeconds != 42 || p.SessionID != "s1" {
		t.Fatalf("unexpected payload: %+v", p)
	}
	if p.GameDurationSeconds == nil || *p.GameDurationSeconds != 300 {
		t.Fatalf("expected game duration 300, got %v", p.GameDurationSeconds)
	}
	if p.EndedReason != "All Cases Resolved" || p.CreatedAt != "2026-03-01T10:00:00Z" {
		t.Fatalf("unexpected reason/createdAt: %q %q", p.EndedReason, p.CreatedAt)
	}

	empty := PayloadFromSummary(rescue.Summary{TimeRemainingSeconds: -3}, "a@b.com", "pw")
	if empty.EndedReason != "Unknown" || empty.TimeRemainingSeconds != 0 || empty.GameDurationSeconds != nil {
		t.Fatalf("unexpected defaults: %+v", empty)
	}
}

func TestSubmit_PostsJSONAndReturnsSessionID(t *testing.T) {
	doer := &fakeDoer{status: 200, body: `{"ok":true,"sessionId":"s1"}`}
	c, err := NewWithDoer(Config{
		Endpoint:    "http://localhost:8080/api/ingest/session",
		HeaderName:  "X-Ingest-Key",
		HeaderValue: "k",
	}, doer)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	id, err := c.Submit(context.Background(), Payload{Email: "a@b.com", Password: "pw", Saved: 1, SessionID: "s1"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if id != "s1" {
		t.Fatalf("expected s1, got %q", id)
	}
	if doer.gotMethod != "POST" || doer.gotContentType != "application/json" || doer.gotHeader != "k" {
		t.Fatalf("unexpected request: method=%s ct=%s header=%s", doer.gotMethod, doer.gotContentType, doer.gotHeader)
	}
	if doer.gotTimeout != DefaultTimeout {
		t.Fatalf("expected default timeout, got %s", doer.gotTimeout)
	}

	var sent map[string]any
	if err := json.Unmarshal(doer.gotBody, &sent); err != nil {
		t.Fatalf("decode sent body: %v", err)
	}
	for _, key := range []string{"email", "password", "saved", "lost", "timeRemainingSeconds", "endedReason", "sessionId", "createdAt"} {
		if _, ok := sent[key]; !ok {
			t.Fatalf("expected key %q in payload %v", key, sent)
		}
	}
	if _, ok := sent["gameDurationSeconds"]; ok {
		t.Fatalf("expected gameDurationSeconds omitted when unknown")
	}
}

func TestSubmit_StatusErrorCarriesEnvelope(t *testing.T) {
	doer := &fakeDoer{status: 401, body: `{"ok":false,"error":{"code":"unauthorized","message":"invalid credentials"}}`}
	c, _ := NewWithDoer(Config{Endpoint: "https://example.test/api/ingest/session"}, doer)

	_, err := c.Submit(context.Background(), Payload{})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Status != 401 || statusErr.Code != "unauthorized" || statusErr.Message != "invalid credentials" {
		t.Fatalf("unexpected status error: %+v", statusErr)
	}
}

func TestSubmit_TransportError(t *testing.T) {
	boom := errors.New("dial failed")
	c, _ := NewWithDoer(Config{Endpoint: "http://x"}, &fakeDoer{err: boom})
	if _, err := c.Submit(context.Background(), Payload{}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
}

func TestNew_RejectsNonHTTPEndpoint(t *testing.T) {
	for _, endpoint := range []string{"", "localhost:8080", "ftp://x"} {
		if _, err := NewWithDoer(Config{Endpoint: endpoint}, &fakeDoer{}); !errors.Is(err, ErrInvalidEndpoint) {
			t.Fatalf("endpoint %q: expected ErrInvalidEndpoint, got %v", endpoint, err)
		}
	}
}
