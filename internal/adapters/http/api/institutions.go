package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/admitcalc/internal/adapters/persistence"
	"github.com/okian/admitcalc/internal/domain/model"
	"github.com/okian/admitcalc/internal/domain/types"
)

// HierarchyDependencies is the slice of the service used by the institution routes.
type HierarchyDependencies interface {
	Institutions(ctx context.Context) []model.Institution
	Institution(ctx context.Context, id string) (model.Institution, error)
	WeightSum(ctx context.Context, trackID string) (float64, error)
	AddInstitution(ctx context.Context) string
	AddProgram(ctx context.Context, institutionID string) (string, error)
	AddTrack(ctx context.Context, institutionID, programID string) (string, error)
	RenameInstitution(ctx context.Context, id, name string) error
	RenameProgram(ctx context.Context, id, name string) error
	RenameTrack(ctx context.Context, id, name string) error
	UpdateTrackWeight(ctx context.Context, trackID, subjectKey, raw string) error
	DeleteInstitution(ctx context.Context, id string) ([]string, error)
	DeleteProgram(ctx context.Context, institutionID, programID string) ([]string, error)
	DeleteTrack(ctx context.Context, institutionID, programID, trackID string) ([]string, error)
	ExportInstitutions(ctx context.Context) []model.Institution
	ImportInstitutions(ctx context.Context, institutions []model.Institution) []string
}

// HierarchyHandler serves the institution/program/track tree.
type HierarchyHandler struct {
	deps HierarchyDependencies
}

// NewHierarchyHandler creates a new hierarchy handler.
func NewHierarchyHandler(deps HierarchyDependencies) *HierarchyHandler {
	return &HierarchyHandler{deps: deps}
}

func (h *HierarchyHandler) register(r chi.Router) {
	r.Route("/institutions", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleAddInstitution)
		r.Get("/export", h.handleExport)
		r.Post("/import", h.handleImport)

		r.Route("/{instID}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Patch("/", h.handleRenameInstitution)
			r.Delete("/", h.handleDeleteInstitution)

			r.Post("/programs", h.handleAddProgram)
			r.Route("/programs/{progID}", func(r chi.Router) {
				r.Patch("/", h.handleRenameProgram)
				r.Delete("/", h.handleDeleteProgram)

				r.Post("/tracks", h.handleAddTrack)
				r.Patch("/tracks/{trackID}", h.handleRenameTrack)
				r.Delete("/tracks/{trackID}", h.handleDeleteTrack)
			})
		})
	})

	r.Get("/tracks/{trackID}/weight-sum", h.handleWeightSum)
	r.Put("/tracks/{trackID}/weights/{subject}", h.handleUpdateWeight)
}

func (h *HierarchyHandler) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Institutions(r.Context()))
}

func (h *HierarchyHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	inst, err := h.deps.Institution(r.Context(), chi.URLParam(r, "instID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inst)
}

func (h *HierarchyHandler) handleAddInstitution(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, idResponse{ID: h.deps.AddInstitution(r.Context())})
}

func (h *HierarchyHandler) handleAddProgram(w http.ResponseWriter, r *http.Request) {
	id, err := h.deps.AddProgram(r.Context(), chi.URLParam(r, "instID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (h *HierarchyHandler) handleAddTrack(w http.ResponseWriter, r *http.Request) {
	id, err := h.deps.AddTrack(r.Context(), chi.URLParam(r, "instID"), chi.URLParam(r, "progID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (h *HierarchyHandler) handleRenameInstitution(w http.ResponseWriter, r *http.Request) {
	h.rename(w, r, chi.URLParam(r, "instID"), h.deps.RenameInstitution)
}

func (h *HierarchyHandler) handleRenameProgram(w http.ResponseWriter, r *http.Request) {
	instID, progID := chi.URLParam(r, "instID"), chi.URLParam(r, "progID")
	if err := h.checkPath(r.Context(), instID, progID, ""); err != nil {
		writeDomainError(w, err)
		return
	}
	h.rename(w, r, progID, h.deps.RenameProgram)
}

func (h *HierarchyHandler) handleRenameTrack(w http.ResponseWriter, r *http.Request) {
	instID, progID, trackID := chi.URLParam(r, "instID"), chi.URLParam(r, "progID"), chi.URLParam(r, "trackID")
	if err := h.checkPath(r.Context(), instID, progID, trackID); err != nil {
		writeDomainError(w, err)
		return
	}
	h.rename(w, r, trackID, h.deps.RenameTrack)
}

// checkPath verifies that the program belongs to the institution and, when
// trackID is set, that the track belongs to the program.
func (h *HierarchyHandler) checkPath(ctx context.Context, instID, progID, trackID string) error {
	inst, err := h.deps.Institution(ctx, instID)
	if err != nil {
		return err
	}
	for _, p := range inst.Programs {
		if p.ID != progID {
			continue
		}
		if trackID == "" {
			return nil
		}
		for _, tr := range p.Tracks {
			if tr.ID == trackID {
				return nil
			}
		}
		return fmt.Errorf("%w: track %q in program %q", model.ErrNotFound, trackID, progID)
	}
	return fmt.Errorf("%w: program %q in institution %q", model.ErrNotFound, progID, instID)
}

func (h *HierarchyHandler) rename(
	w http.ResponseWriter,
	r *http.Request,
	id string,
	fn func(ctx context.Context, id, name string) error,
) {
	var req nameRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := fn(r.Context(), id, req.Name); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HierarchyHandler) handleDeleteInstitution(w http.ResponseWriter, r *http.Request) {
	removed, err := h.deps.DeleteInstitution(r.Context(), chi.URLParam(r, "instID"))
	writeRemoved(w, removed, err)
}

func (h *HierarchyHandler) handleDeleteProgram(w http.ResponseWriter, r *http.Request) {
	removed, err := h.deps.DeleteProgram(r.Context(), chi.URLParam(r, "instID"), chi.URLParam(r, "progID"))
	writeRemoved(w, removed, err)
}

func (h *HierarchyHandler) handleDeleteTrack(w http.ResponseWriter, r *http.Request) {
	removed, err := h.deps.DeleteTrack(r.Context(),
		chi.URLParam(r, "instID"), chi.URLParam(r, "progID"), chi.URLParam(r, "trackID"))
	writeRemoved(w, removed, err)
}

func writeRemoved(w http.ResponseWriter, removed []string, err error) {
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if removed == nil {
		removed = []string{}
	}
	writeJSON(w, http.StatusOK, removedResponse{RemovedTracks: removed})
}

func (h *HierarchyHandler) handleWeightSum(w http.ResponseWriter, r *http.Request) {
	sum, err := h.deps.WeightSum(r.Context(), chi.URLParam(r, "trackID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"sum": sum})
}

func (h *HierarchyHandler) handleUpdateWeight(w http.ResponseWriter, r *http.Request) {
	var req valueRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	err := h.deps.UpdateTrackWeight(r.Context(), chi.URLParam(r, "trackID"), chi.URLParam(r, "subject"), req.Value)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HierarchyHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	raw, err := persistence.EncodeInstitutions(h.deps.ExportInstitutions(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="institutions.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (h *HierarchyHandler) handleImport(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(w, r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	institutions, discarded, err := persistence.DecodeInstitutions(raw)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if len(institutions) == 0 {
		writeDomainError(w, ErrEmptyImport)
		return
	}
	added := h.deps.ImportInstitutions(r.Context(), institutions)
	writeJSON(w, http.StatusOK, types.ImportReport{Added: added, Discarded: discarded})
}
