package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/rolodex/internal/types"
	"github.com/sirupsen/logrus"
)

// RequestLogger emits one structured entry per request.
func RequestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		ctx.Next()

		fields := logrus.Fields{
			"method":    ctx.Request.Method,
			"path":      ctx.Request.URL.Path,
			"status":    ctx.Writer.Status(),
			"latency":   time.Since(start),
			"client_ip": ctx.ClientIP(),
		}

		if user, ok := ctx.Get(types.ContextUserKey); ok {
			if authed, ok := user.(AuthenticatedUser); ok {
				fields["user_id"] = authed.ID
			}
		}

		entry := log.WithFields(fields)

		switch status := ctx.Writer.Status(); {
		case status >= 500:
			entry.Error("request")
		case status >= 400:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}
