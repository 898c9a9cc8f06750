package middleware

import (
	"context"
	"strings"

	"github.com/docket-dev/docket/internal/apperr"
	"github.com/docket-dev/docket/internal/auth"
	"github.com/docket-dev/docket/internal/models"
	"github.com/docket-dev/docket/internal/types"
	"github.com/docket-dev/docket/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// AuthMiddleware is the access gate: it requires a valid, unrevoked
// bearer token for an existing user.
func AuthMiddleware(tokens TokenVerifier, users UserFinder, revoker auth.Revoker) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")

		// Browsers cannot set headers on websocket handshakes.
		if authHeader == "" && websocket.IsWebSocketUpgrade(ctx.Request) && ctx.Query("token") != "" {
			authHeader = "Bearer " + ctx.Query("token")
		}

		if authHeader == "" {
			utils.RespondError(ctx, apperr.Unauthenticated("Not authorized, no token"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)

		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			utils.RespondError(ctx, apperr.Unauthenticated("Authorization header format must be Bearer {token}"))
			return
		}

		tokenString := strings.TrimSpace(parts[1])

		claims, err := tokens.Verify(tokenString)

		if err != nil {
			utils.RespondError(ctx, apperr.Unauthenticated("Not authorized, token failed"))
			return
		}

		revoked, err := revoker.IsRevoked(ctx.Request.Context(), tokenString)

		if err != nil {
			utils.RespondError(ctx, err)
			return
		}

		if revoked {
			utils.RespondError(ctx, apperr.Unauthenticated("Not authorized, token revoked"))
			return
		}

		user, err := users.FindByID(ctx.Request.Context(), claims.UserID)

		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				utils.RespondError(ctx, apperr.Unauthenticated("User not found"))
				return
			}

			utils.RespondError(ctx, err)
			return
		}

		ctx.Set(types.ContextTokenKey, types.BearerToken{Raw: tokenString, Claims: claims})
		ctx.Set(types.ContextUserKey, types.AuthenticatedUser{
			ID:        user.ID,
			Name:      user.Name,
			Email:     user.Email,
			AvatarURL: user.AvatarURL,
		})
		ctx.Next()
	}
}
