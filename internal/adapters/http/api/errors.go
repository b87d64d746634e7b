package api

import (
	"errors"
	"net/http"

	"github.com/okian/admitcalc/internal/adapters/persistence"
	"github.com/okian/admitcalc/internal/domain/model"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrEmptyImport   = errors.New("no valid entries to import")
	ErrMissingTarget = errors.New("institutionId is required")
)

// writeDomainError translates a service error into a status code.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, model.ErrInvalidName):
		writeError(w, http.StatusUnprocessableEntity, "invalid_name", err)
	case errors.Is(err, model.ErrLastSetProtected):
		writeError(w, http.StatusConflict, "last_set_protected", err)
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, ErrEmptyImport),
		errors.Is(err, ErrMissingTarget),
		errors.Is(err, persistence.ErrInvalidPayload):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
