package httpadapter

import (
	"context"
	"errors"
	"strconv"

	"rescuesim/internal/app/auth"
	"rescuesim/internal/app/dashboard"
	"rescuesim/internal/app/ingest"
	"rescuesim/internal/app/ports"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

type Handler struct {
	IngestUC      ingest.UseCase
	RegisterUC    auth.RegisterUseCase
	LoginUC       auth.VerifyUseCase
	Tokens        auth.TokenIssuer
	SessionsUC    dashboard.SessionsUseCase
	StatsUC       dashboard.StatsUseCase
	LeaderboardUC dashboard.LeaderboardUseCase
	FeedbackUC    dashboard.FeedbackUseCase
	KPI           kpiSnapshotProvider
	Cookie        CookieConfig
	AllowedOrigin string
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware(h.AllowedOrigin))

	api := s.Group("/api")
	api.OPTIONS("/*path", func(context.Context, *app.RequestContext) {})
	api.POST("/ingest/session", h.ingestSession)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.register)
	authGroup.POST("/login", h.login)
	authGroup.POST("/logout", h.logout)

	dash := api.Group("/dashboard", h.requireSession)
	dash.GET("/sessions", h.sessions)
	dash.GET("/stats", h.stats)
	dash.GET("/leaderboard", h.leaderboard)
	dash.POST("/feedback", h.feedback)

	s.GET("/ops/kpi", h.kpi)
}

func (h Handler) ingestSession(c context.Context, ctx *app.RequestContext) {
	resp, err := h.IngestUC.Submit(c, ctx.Request.Body())
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	hlog.CtxInfof(c, "ingest accepted session_id=%s", resp.SessionID)
	ctx.JSON(consts.StatusOK, resp)
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(c context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func queryLimit(ctx *app.RequestContext) int {
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))
	return limit
}

func writeError(c context.Context, ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, ingest.ErrInvalidJSON):
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
	case errors.Is(err, ingest.ErrInvalidRequest),
		errors.Is(err, auth.ErrInvalidRequest),
		errors.Is(err, dashboard.ErrInvalidRequest),
		errors.Is(err, errInvalidBody):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeErrorBody(ctx, consts.StatusUnauthorized, "invalid_credentials", "invalid email or password")
	case errors.Is(err, auth.ErrInvalidToken):
		writeErrorBody(ctx, consts.StatusUnauthorized, "unauthorized", "sign in required")
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", "email already in use")
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", "not found")
	default:
		hlog.CtxErrorf(c, "%s %s failed: %v", ctx.Method(), ctx.Path(), err)
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"ok": false,
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
