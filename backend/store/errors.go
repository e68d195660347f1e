package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrConflict      = errors.New("record already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotEnrolled   = errors.New("user is not enrolled in this course")
	ErrForeignChoice = errors.New("choice does not belong to this course exam")

	ErrAlreadyEnrolled = fmt.Errorf("user is already enrolled in this course: %w", ErrConflict)
)

// IsUniqueViolation reports whether err comes from a unique constraint.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// lookupError turns gorm's not-found into ErrNotFound and wraps anything else.
func lookupError(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("query %s: %w", what, err)
}
