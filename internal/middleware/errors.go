package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/rolodex/internal/apperr"
	"github.com/monocle-dev/rolodex/internal/types"
	"github.com/sirupsen/logrus"
)

// ErrorHandler renders the last error attached to the context as
// {"message": ...}. Errors that are not *apperr.Error become 500s.
func ErrorHandler(log logrus.FieldLogger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Next()

		if len(ctx.Errors) == 0 || ctx.Writer.Written() {
			return
		}

		err := ctx.Errors.Last().Err

		appErr, ok := apperr.From(err)
		if !ok {
			appErr = apperr.Internal(err)
		}

		if appErr.Status >= http.StatusInternalServerError {
			log.WithError(err).WithFields(logrus.Fields{
				"method": ctx.Request.Method,
				"path":   ctx.Request.URL.Path,
			}).Error("Request failed")
		}

		ctx.JSON(appErr.Status, types.MessageResponse{Message: appErr.Message})
	}
}

// Recovery turns panics into the same 500 body ErrorHandler produces.
func Recovery(log logrus.FieldLogger) gin.HandlerFunc {
	return gin.CustomRecovery(func(ctx *gin.Context, recovered any) {
		log.WithField("panic", recovered).Error("Recovered from panic")
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, types.MessageResponse{Message: "Server error"})
	})
}

// NotFoundRoute answers requests that matched no route.
func NotFoundRoute(ctx *gin.Context) {
	ctx.JSON(http.StatusNotFound, types.MessageResponse{Message: "Not found route"})
}
