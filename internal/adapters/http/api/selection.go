package api

import (
	"context"
	"net/http"

	"github.com/okian/admitcalc/internal/domain/model"
)

// SelectionDependencies is the slice of the service used by the selection routes.
type SelectionDependencies interface {
	Selection(ctx context.Context) model.Selection
	SelectInstitution(ctx context.Context, institutionID string) (model.Selection, error)
	SelectProgram(ctx context.Context, institutionID, programID string) (model.Selection, error)
	SelectTrack(ctx context.Context, institutionID, programID, trackID string) model.Selection
}

// SelectionHandler serves the current institution/program/track selection.
type SelectionHandler struct {
	deps SelectionDependencies
}

// NewSelectionHandler creates a new selection handler.
func NewSelectionHandler(deps SelectionDependencies) *SelectionHandler {
	return &SelectionHandler{deps: deps}
}

// HandleGet handles GET /selection requests.
func (h *SelectionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Selection(r.Context()))
}

// HandlePut handles PUT /selection requests. The deepest level given wins:
// a track is stored as-is, a program or institution selects its first track.
func (h *SelectionHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	var req model.Selection
	if err := decodeBody(w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	var (
		sel model.Selection
		err error
	)
	switch {
	case req.TrackID != "":
		sel = h.deps.SelectTrack(r.Context(), req.InstitutionID, req.ProgramID, req.TrackID)
	case req.ProgramID != "":
		sel, err = h.deps.SelectProgram(r.Context(), req.InstitutionID, req.ProgramID)
	case req.InstitutionID != "":
		sel, err = h.deps.SelectInstitution(r.Context(), req.InstitutionID)
	default:
		err = ErrMissingTarget
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}
