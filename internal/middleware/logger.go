package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/docket-dev/docket/internal/apperr"
	"github.com/docket-dev/docket/internal/types"
	"github.com/docket-dev/docket/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger attaches a request-scoped logger and writes one line per
// request once it completes.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		requestID := ctx.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx.Header(RequestIDHeader, requestID)

		reqLogger := logger.With("request_id", requestID)
		ctx.Set(types.ContextLoggerKey, reqLogger)

		ctx.Next()

		status := ctx.Writer.Status()
		level := slog.LevelInfo

		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		reqLogger.Log(ctx.Request.Context(), level, "request",
			"method", ctx.Request.Method,
			"path", ctx.Request.URL.Path,
			"route", ctx.FullPath(),
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", ctx.ClientIP(),
		)
	}
}

// Recovery turns panics into the standard 500 envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(ctx *gin.Context, recovered any) {
		utils.Logger(ctx).Error("panic recovered", "panic", recovered, "path", ctx.Request.URL.Path)
		utils.RespondError(ctx, apperr.New(apperr.KindInternal, "Internal server error"))
	})
}
