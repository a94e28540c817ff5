package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/monocle-dev/rolodex/internal/models"
	"github.com/monocle-dev/rolodex/internal/types"
)

type AuthenticatedUser struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Authenticator resolves an Authorization header to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (*models.User, error)
}

func AuthMiddleware(authenticator Authenticator) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, err := authenticator.Authenticate(ctx.Request.Context(), ctx.GetHeader("Authorization"))

		if err != nil {
			_ = ctx.Error(err)
			ctx.Abort()
			return
		}

		ctx.Set(types.ContextUserKey, AuthenticatedUser{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		})
		ctx.Next()
	}
}
