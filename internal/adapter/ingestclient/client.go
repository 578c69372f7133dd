// Package ingestclient posts finished run summaries to the ingest endpoint
// exactly like the game's end screen does.
package ingestclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/tidwall/gjson"

	"rescuesim/internal/domain/rescue"
)

const DefaultTimeout = 10 * time.Second

var ErrInvalidEndpoint = errors.New("ingest endpoint must be an http(s) url")

// StatusError is returned for any non-2xx answer. Code and Message come from
// the error envelope when the server sent one.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("ingest rejected: status %d", e.Status)
	}
	return fmt.Sprintf("ingest rejected: status %d %s: %s", e.Status, e.Code, e.Message)
}

type Payload struct {
	Email                string `json:"email"`
	Password             string `json:"password"`
	Saved                int    `json:"saved"`
	Lost                 int    `json:"lost"`
	TimeRemainingSeconds int    `json:"timeRemainingSeconds"`
	GameDurationSeconds  *int   `json:"gameDurationSeconds,omitempty"`
	EndedReason          string `json:"endedReason"`
	SessionID            string `json:"sessionId"`
	CreatedAt            string `json:"createdAt"`
}

func PayloadFromSummary(sum rescue.Summary, email, password string) Payload {
	reason := string(sum.EndedReason)
	if reason == "" {
		reason = string(rescue.EndReasonUnknown)
	}
	remaining := sum.TimeRemainingSeconds
	if remaining < 0 {
		remaining = 0
	}
	p := Payload{
		Email:                email,
		Password:             password,
		Saved:                sum.Saved,
		Lost:                 sum.Lost,
		TimeRemainingSeconds: remaining,
		EndedReason:          reason,
		SessionID:            sum.SessionID,
		CreatedAt:            sum.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if sum.GameDurationSeconds > 0 {
		d := sum.GameDurationSeconds
		p.GameDurationSeconds = &d
	}
	return p
}

type Doer interface {
	DoTimeout(ctx context.Context, req *protocol.Request, resp *protocol.Response, timeout time.Duration) error
}

type Config struct {
	Endpoint string
	Timeout  time.Duration
	// optional extra header, e.g. a shared ingest key
	HeaderName  string
	HeaderValue string
}

type Client struct {
	cfg  Config
	doer Doer
}

func New(cfg Config) (*Client, error) {
	cfg, err := normalize(cfg)
	if err != nil {
		return nil, err
	}
	c, err := client.NewClient(client.WithDialTimeout(cfg.Timeout))
	if err != nil {
		return nil, fmt.Errorf("create hertz client: %w", err)
	}
	return &Client{cfg: cfg, doer: c}, nil
}

func NewWithDoer(cfg Config, doer Doer) (*Client, error) {
	cfg, err := normalize(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{cfg: cfg, doer: doer}, nil
}

func normalize(cfg Config) (Config, error) {
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	if !strings.HasPrefix(cfg.Endpoint, "http://") && !strings.HasPrefix(cfg.Endpoint, "https://") {
		return cfg, ErrInvalidEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return cfg, nil
}

// Submit sends one payload and returns the session id the server stored it
// under. It never retries.
func (c *Client) Submit(ctx context.Context, p Payload) (string, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	req.SetMethod(consts.MethodPost)
	req.SetRequestURI(c.cfg.Endpoint)
	req.Header.SetContentTypeBytes([]byte(consts.MIMEApplicationJSON))
	if c.cfg.HeaderName != "" && c.cfg.HeaderValue != "" {
		req.Header.Set(c.cfg.HeaderName, c.cfg.HeaderValue)
	}
	req.SetBody(body)

	if err := c.doer.DoTimeout(ctx, req, resp, c.cfg.Timeout); err != nil {
		return "", fmt.Errorf("post session: %w", err)
	}

	status := resp.StatusCode()
	respBody := resp.Body()
	if status < 200 || status >= 300 {
		return "", &StatusError{
			Status:  status,
			Code:    gjson.GetBytes(respBody, "error.code").String(),
			Message: gjson.GetBytes(respBody, "error.message").String(),
		}
	}
	sessionID := gjson.GetBytes(respBody, "sessionId").String()
	if sessionID == "" {
		sessionID = p.SessionID
	}
	return sessionID, nil
}
