package httpadapter

import (
	"context"

	"rescuesim/internal/app/dashboard"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

func (h Handler) sessions(c context.Context, ctx *app.RequestContext) {
	id := sessionIdentity(ctx)
	resp, err := h.SessionsUC.Execute(c, dashboard.SessionsRequest{UserID: id.UserID, Limit: queryLimit(ctx)})
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) stats(c context.Context, ctx *app.RequestContext) {
	id := sessionIdentity(ctx)
	resp, err := h.StatsUC.Execute(c, dashboard.StatsRequest{UserID: id.UserID, Email: id.Email})
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) leaderboard(c context.Context, ctx *app.RequestContext) {
	resp, err := h.LeaderboardUC.Execute(c, dashboard.LeaderboardRequest{Limit: queryLimit(ctx)})
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) feedback(c context.Context, ctx *app.RequestContext) {
	var body dashboard.FeedbackRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeError(c, ctx, err)
		return
	}
	body.UserID = sessionIdentity(ctx).UserID
	resp, err := h.FeedbackUC.Execute(c, body)
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}
