package utils

import (
	"net/http"

	"github.com/docket-dev/docket/internal/apperr"
	"github.com/gin-gonic/gin"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Count   *int                `json:"count,omitempty"`
	Data    any                 `json:"data,omitempty"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

func RespondData(ctx *gin.Context, status int, data any) {
	ctx.JSON(status, Envelope{Success: true, Data: data})
}

func RespondList(ctx *gin.Context, data any, count int) {
	ctx.JSON(http.StatusOK, Envelope{Success: true, Count: &count, Data: data})
}

func RespondMessage(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, Envelope{Success: true, Message: message})
}

// RespondError renders err with the status of its kind and aborts the
// chain. Internal errors are logged and reported with a generic message.
func RespondError(ctx *gin.Context, err error) {
	appErr := apperr.From(err)

	if appErr.Kind == apperr.KindInternal {
		Logger(ctx).Error("request failed",
			"method", ctx.Request.Method,
			"path", ctx.FullPath(),
			"error", err,
		)
	}

	ctx.AbortWithStatusJSON(appErr.Kind.Status(), Envelope{
		Success: false,
		Message: appErr.Message,
		Errors:  appErr.Fields,
	})
}
