package respond

import (
	"errors"
	"net/http"

	"rental-notify/internal/domain/entity"
)

// DomainError maps the domain's sentinel errors onto HTTP statuses and
// writes the sanitized response. Unknown errors fall through to 500.
func DomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrValidation):
		SafeError(w, http.StatusBadRequest, err)
	case errors.Is(err, entity.ErrUnauthenticated):
		SafeError(w, http.StatusUnauthorized, err)
	case errors.Is(err, entity.ErrPermissionDenied):
		SafeError(w, http.StatusForbidden, err)
	case errors.Is(err, entity.ErrNotFound):
		SafeError(w, http.StatusNotFound, err)
	default:
		SafeError(w, http.StatusInternalServerError, err)
	}
}
