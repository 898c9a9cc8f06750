package handlers

import (
	"net/http"

	"github.com/docket-dev/docket/internal/utils"
	"github.com/gin-gonic/gin"
)

// CaseFeed upgrades a request into a subscription on one case.
type CaseFeed interface {
	Serve(w http.ResponseWriter, r *http.Request, caseID string)
}

type WSHandler struct {
	feed CaseFeed
}

func NewWSHandler(feed CaseFeed) *WSHandler {
	return &WSHandler{feed: feed}
}

func (h *WSHandler) Subscribe(ctx *gin.Context) {
	c, ok := scopedCase(ctx)

	if !ok {
		return
	}

	utils.Logger(ctx).Debug("case feed subscription", "case_id", c.ID)
	h.feed.Serve(ctx.Writer, ctx.Request, c.ID)
}
