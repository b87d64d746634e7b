package api

import (
	"context"
	"net/http"

	"github.com/okian/admitcalc/internal/domain/model"
	"github.com/okian/admitcalc/internal/domain/types"
)

// ResultDependencies is the slice of the service used by the scoring routes.
type ResultDependencies interface {
	Subjects(ctx context.Context) []model.Subject
	Result(ctx context.Context) types.Result
	Excluded(ctx context.Context) []string
	SetExcluded(ctx context.Context, keys []string) error
}

// ResultHandler serves the subject catalog, exclusions and the computed total.
type ResultHandler struct {
	deps ResultDependencies
}

// NewResultHandler creates a new result handler.
func NewResultHandler(deps ResultDependencies) *ResultHandler {
	return &ResultHandler{deps: deps}
}

type excludedBody struct {
	Subjects []string `json:"subjects"`
}

// HandleSubjects handles GET /subjects requests.
func (h *ResultHandler) HandleSubjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Subjects(r.Context()))
}

// HandleResult handles GET /result requests.
func (h *ResultHandler) HandleResult(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Result(r.Context()))
}

// HandleGetExcluded handles GET /excluded requests.
func (h *ResultHandler) HandleGetExcluded(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, excludedBody{Subjects: h.deps.Excluded(r.Context())})
}

// HandlePutExcluded handles PUT /excluded requests.
func (h *ResultHandler) HandlePutExcluded(w http.ResponseWriter, r *http.Request) {
	var req excludedBody
	if err := decodeBody(w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.deps.SetExcluded(r.Context(), req.Subjects); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, excludedBody{Subjects: h.deps.Excluded(r.Context())})
}
