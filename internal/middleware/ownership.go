package middleware

import (
	"context"

	"github.com/docket-dev/docket/internal/apperr"
	"github.com/docket-dev/docket/internal/models"
	"github.com/docket-dev/docket/internal/types"
	"github.com/docket-dev/docket/internal/utils"
	"github.com/gin-gonic/gin"
)

type CaseResolver interface {
	Resolve(ctx context.Context, params func(string) string, userID string) (*models.Case, error)
}

// RequireCaseOwnership gates a route group on the caller owning the case
// the path refers to. It must run after AuthMiddleware.
func RequireCaseOwnership(resolver CaseResolver) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID, err := utils.GetCurrentUserID(ctx)

		if err != nil {
			utils.RespondError(ctx, apperr.Unauthenticated(err.Error()))
			return
		}

		c, err := resolver.Resolve(ctx.Request.Context(), ctx.Param, userID)

		if err != nil {
			utils.RespondError(ctx, err)
			return
		}

		ctx.Set(types.ContextCaseKey, c)
		ctx.Next()
	}
}
