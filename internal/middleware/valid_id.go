package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/monocle-dev/rolodex/internal/apperr"
	"github.com/monocle-dev/rolodex/internal/types"
)

// ValidID rejects malformed ids in the named path parameter before any store
// access and stores the parsed id under types.ContextIDKey.
func ValidID(param string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		raw := ctx.Param(param)

		id, err := uuid.Parse(raw)

		if err != nil || len(raw) != 36 {
			_ = ctx.Error(apperr.BadRequest(fmt.Sprintf("%s is not valid id", raw)))
			ctx.Abort()
			return
		}

		ctx.Set(types.ContextIDKey, id)
		ctx.Next()
	}
}
