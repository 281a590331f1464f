package api

import (
	"context"
	"io"
	"net/http"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/adapters/roster"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/pkg/logger"
)

// CandidateDependencies defines candidate storage and roster import.
type CandidateDependencies interface {
	TrendingDependencies
	UpsertCandidate(ctx context.Context, c model.Candidate) (model.Candidate, error)
	GetCandidate(ctx context.Context, id string) (model.Candidate, error)
	ImportRoster(ctx context.Context, r io.Reader) (roster.Result, error)
}

// CandidateHandler handles candidate requests.
type CandidateHandler struct {
	deps      CandidateDependencies
	body      body
	maxImport int64
	log       logger.Logger
}

type importResponse struct {
	Imported int `json:"imported"`
	roster.Result
}

// HandleUpsert handles PUT /candidates.
func (h *CandidateHandler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	var c model.Candidate
	if err := h.body.decode(w, r, &c); err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	saved, err := h.deps.UpsertCandidate(r.Context(), c)
	if err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// HandleGet handles GET /candidates/{playerID}.
func (h *CandidateHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.deps.GetCandidate(r.Context(), r.PathValue("playerID"))
	if err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleImport handles POST /candidates/import with an HTML roster body.
func (h *CandidateHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	res, err := h.deps.ImportRoster(r.Context(), http.MaxBytesReader(w, r.Body, h.maxImport))
	if err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, importResponse{Imported: len(res.Candidates), Result: res})
}
