package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"rescuesim/internal/app/auth"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

const DefaultCookieName = "app_session"

const identityKey = "rescuesim.identity"

var errInvalidBody = errors.New("invalid request body")

type CookieConfig struct {
	Name   string
	Secure bool
}

func (c CookieConfig) name() string {
	if c.Name == "" {
		return DefaultCookieName
	}
	return c.Name
}

type authResponse struct {
	OK        bool          `json:"ok"`
	User      auth.Identity `json:"user"`
	ExpiresAt string        `json:"expiresAt"`
}

func (h Handler) register(c context.Context, ctx *app.RequestContext) {
	var body auth.RegisterRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeError(c, ctx, err)
		return
	}
	id, err := h.RegisterUC.Execute(c, body)
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	h.startSession(c, ctx, consts.StatusCreated, id)
}

func (h Handler) login(c context.Context, ctx *app.RequestContext) {
	var body auth.VerifyRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeError(c, ctx, err)
		return
	}
	id, err := h.LoginUC.Execute(c, body)
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	h.startSession(c, ctx, consts.StatusOK, id)
}

func (h Handler) logout(_ context.Context, ctx *app.RequestContext) {
	h.setSessionCookie(ctx, "", protocol.CookieExpireDelete)
	ctx.JSON(consts.StatusOK, map[string]bool{"ok": true})
}

func (h Handler) startSession(c context.Context, ctx *app.RequestContext, status int, id auth.Identity) {
	token, expires, err := h.Tokens.Issue(id)
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	h.setSessionCookie(ctx, token, expires)
	ctx.JSON(status, authResponse{OK: true, User: id, ExpiresAt: expires.Format(time.RFC3339)})
}

func (h Handler) setSessionCookie(ctx *app.RequestContext, value string, expires time.Time) {
	cookie := protocol.AcquireCookie()
	defer protocol.ReleaseCookie(cookie)
	cookie.SetKey(h.Cookie.name())
	cookie.SetValue(value)
	cookie.SetPath("/")
	cookie.SetHTTPOnly(true)
	cookie.SetSecure(h.Cookie.Secure)
	cookie.SetSameSite(protocol.CookieSameSiteLaxMode)
	cookie.SetExpire(expires)
	ctx.Response.Header.SetCookie(cookie)
}

// requireSession accepts the session cookie or an Authorization bearer token
// and stores the identity on the request.
func (h Handler) requireSession(c context.Context, ctx *app.RequestContext) {
	token := string(ctx.Cookie(h.Cookie.name()))
	if token == "" {
		if v, ok := strings.CutPrefix(string(ctx.GetHeader("Authorization")), "Bearer "); ok {
			token = v
		}
	}
	id, err := h.Tokens.Parse(token)
	if err != nil {
		writeError(c, ctx, err)
		ctx.Abort()
		return
	}
	ctx.Set(identityKey, id)
	ctx.Next(c)
}

func sessionIdentity(ctx *app.RequestContext) auth.Identity {
	v, _ := ctx.Get(identityKey)
	id, _ := v.(auth.Identity)
	return id
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return errInvalidBody
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errInvalidBody
	}
	return nil
}
