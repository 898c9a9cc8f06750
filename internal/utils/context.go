package utils

import (
	"fmt"
	"log/slog"

	"github.com/docket-dev/docket/internal/models"
	"github.com/docket-dev/docket/internal/types"
	"github.com/gin-gonic/gin"
)

func GetCurrentUser(ctx *gin.Context) (types.AuthenticatedUser, error) {
	user, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return types.AuthenticatedUser{}, fmt.Errorf("User not authenticated")
	}

	authenticatedUser, ok := user.(types.AuthenticatedUser)

	if !ok {
		return types.AuthenticatedUser{}, fmt.Errorf("Invalid user type in context")
	}

	return authenticatedUser, nil
}

func GetCurrentUserID(ctx *gin.Context) (string, error) {
	user, err := GetCurrentUser(ctx)

	if err != nil {
		return "", err
	}

	return user.ID, nil
}

func GetBearerToken(ctx *gin.Context) (types.BearerToken, error) {
	value, exists := ctx.Get(types.ContextTokenKey)

	if !exists {
		return types.BearerToken{}, fmt.Errorf("User not authenticated")
	}

	token, ok := value.(types.BearerToken)

	if !ok {
		return types.BearerToken{}, fmt.Errorf("Invalid token type in context")
	}

	return token, nil
}

// GetCurrentCase returns the case resolved by the ownership middleware.
func GetCurrentCase(ctx *gin.Context) (*models.Case, error) {
	value, exists := ctx.Get(types.ContextCaseKey)

	if !exists {
		return nil, fmt.Errorf("Case not resolved")
	}

	c, ok := value.(*models.Case)

	if !ok {
		return nil, fmt.Errorf("Invalid case type in context")
	}

	return c, nil
}

// Logger returns the request-scoped logger, or the default logger.
func Logger(ctx *gin.Context) *slog.Logger {
	if value, exists := ctx.Get(types.ContextLoggerKey); exists {
		if logger, ok := value.(*slog.Logger); ok {
			return logger
		}
	}

	return slog.Default()
}
