package services

import (
	"errors"

	"github.com/monocle-dev/rolodex/internal/apperr"
	"gorm.io/gorm"
)

// storeError maps gorm failures onto the HTTP error taxonomy.
func storeError(err error, notFound string) error {
	if err == nil {
		return nil
	}

	if _, ok := apperr.From(err); ok {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(notFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Conflict("")
	case errors.Is(err, gorm.ErrInvalidData),
		errors.Is(err, gorm.ErrInvalidField),
		errors.Is(err, gorm.ErrInvalidValue):
		return apperr.BadRequest(err.Error())
	default:
		return apperr.Internal(err)
	}
}
