package utils

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"onlinecourse/backend/store"
)

// HTTPStatusFromError maps store errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var fiberErr *fiber.Error
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrNotEnrolled):
		return http.StatusForbidden
	case errors.Is(err, store.ErrConflict), store.IsUniqueViolation(err):
		return http.StatusConflict
	case errors.Is(err, store.ErrForeignChoice), errors.Is(err, store.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	}
	return http.StatusInternalServerError
}
