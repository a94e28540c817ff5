package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/monocle-dev/rolodex/internal/middleware"
	"github.com/monocle-dev/rolodex/internal/types"
)

func GetCurrentUser(ctx *gin.Context) (middleware.AuthenticatedUser, error) {
	user, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return middleware.AuthenticatedUser{}, fmt.Errorf("User not authenticated")
	}

	authenticatedUser, ok := user.(middleware.AuthenticatedUser)

	if !ok {
		return middleware.AuthenticatedUser{}, fmt.Errorf("Invalid user type in context")
	}

	return authenticatedUser, nil
}

func GetCurrentUserID(ctx *gin.Context) (uuid.UUID, error) {
	user, err := GetCurrentUser(ctx)

	if err != nil {
		return uuid.Nil, err
	}

	return user.ID, nil
}

// GetPathID returns the id stored by middleware.ValidID.
func GetPathID(ctx *gin.Context) (uuid.UUID, error) {
	value, exists := ctx.Get(types.ContextIDKey)

	if !exists {
		return uuid.Nil, fmt.Errorf("Path id not validated")
	}

	id, ok := value.(uuid.UUID)

	if !ok {
		return uuid.Nil, fmt.Errorf("Invalid id type in context")
	}

	return id, nil
}
