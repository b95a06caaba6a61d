package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrUnauthenticated        = errors.New("unauthenticated")
	ErrForbidden              = errors.New("forbidden")
	ErrNotFound               = errors.New("not found")
	ErrConflict               = errors.New("conflict")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrStorageUnavailable     = errors.New("storage unavailable")
)

// Invalid builds an ErrInvalidArgument with a caller-facing reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// Storage marks err as a store failure unless it already carries a domain sentinel.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	if HTTPStatus(err) != http.StatusInternalServerError {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
}

func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrInvalidStateTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is safe to return to clients; 5xx details stay in the logs.
func PublicMessage(err error) string {
	if HTTPStatus(err) >= http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}
