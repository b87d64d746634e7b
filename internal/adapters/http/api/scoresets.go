package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/admitcalc/internal/adapters/persistence"
	"github.com/okian/admitcalc/internal/domain/model"
	"github.com/okian/admitcalc/internal/domain/types"
)

// ScoreSetDependencies is the slice of the service used by the score set routes.
type ScoreSetDependencies interface {
	ScoreSets(ctx context.Context) types.ScoreSets
	AddScoreSet(ctx context.Context, name string) string
	SwitchScoreSet(ctx context.Context, id string) error
	RenameScoreSet(ctx context.Context, id, name string) error
	DeleteScoreSet(ctx context.Context, id string) error
	UpdateScores(ctx context.Context, scores map[string]string)
	SetScore(ctx context.Context, subjectKey, raw string) error
	ClearScores(ctx context.Context)
	ExportScoreSets(ctx context.Context) []model.ScoreSet
	ImportScoreSets(ctx context.Context, sets []model.ScoreSet) []string
}

// ScoreSetHandler serves the named score sets.
type ScoreSetHandler struct {
	deps ScoreSetDependencies
}

// NewScoreSetHandler creates a new score set handler.
func NewScoreSetHandler(deps ScoreSetDependencies) *ScoreSetHandler {
	return &ScoreSetHandler{deps: deps}
}

func (h *ScoreSetHandler) register(r chi.Router) {
	r.Route("/score-sets", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleAdd)
		r.Get("/export", h.handleExport)
		r.Post("/import", h.handleImport)

		r.Route("/active", func(r chi.Router) {
			r.Put("/", h.handleSwitch)
			r.Put("/scores", h.handleReplaceScores)
			r.Delete("/scores", h.handleClearScores)
			r.Put("/scores/{subject}", h.handleSetScore)
		})

		r.Patch("/{setID}", h.handleRename)
		r.Delete("/{setID}", h.handleDelete)
	})
}

func (h *ScoreSetHandler) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.ScoreSets(r.Context()))
}

func (h *ScoreSetHandler) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if r.ContentLength != 0 {
		if err := decodeBody(w, r, &req); err != nil {
			writeDomainError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: h.deps.AddScoreSet(r.Context(), req.Name)})
}

func (h *ScoreSetHandler) handleSwitch(w http.ResponseWriter, r *http.Request) {
	var req idResponse
	if err := decodeBody(w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.deps.SwitchScoreSet(r.Context(), req.ID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ScoreSetHandler) handleRename(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.deps.RenameScoreSet(r.Context(), chi.URLParam(r, "setID"), req.Name); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ScoreSetHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteScoreSet(r.Context(), chi.URLParam(r, "setID")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ScoreSetHandler) handleReplaceScores(w http.ResponseWriter, r *http.Request) {
	var scores map[string]string
	if err := decodeBody(w, r, &scores); err != nil {
		writeDomainError(w, err)
		return
	}
	h.deps.UpdateScores(r.Context(), scores)
	w.WriteHeader(http.StatusNoContent)
}

func (h *ScoreSetHandler) handleSetScore(w http.ResponseWriter, r *http.Request) {
	var req valueRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.deps.SetScore(r.Context(), chi.URLParam(r, "subject"), req.Value); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ScoreSetHandler) handleClearScores(w http.ResponseWriter, r *http.Request) {
	h.deps.ClearScores(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *ScoreSetHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	raw, err := persistence.EncodeScoreSets(h.deps.ExportScoreSets(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="score-sets.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (h *ScoreSetHandler) handleImport(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(w, r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	sets, discarded, err := persistence.DecodeScoreSets(raw)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if len(sets) == 0 {
		writeDomainError(w, ErrEmptyImport)
		return
	}
	added := h.deps.ImportScoreSets(r.Context(), sets)
	writeJSON(w, http.StatusOK, types.ImportReport{Added: added, Discarded: discarded})
}
