package repository

import (
	"errors"
	"fmt"

	"bellissimo/internal/domain"

	"gorm.io/gorm"
)

// translate maps gorm errors onto the domain taxonomy; other errors are wrapped with op.
func translate(err error, op string, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.NotFound("%s not found", what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.AlreadyExists("%s already exists", what)
	}
	return fmt.Errorf("%s: %w", op, err)
}
