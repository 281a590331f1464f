package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/discovery"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/pkg/logger"
)

// MatchingDependencies defines the scoring, discovery and need-profile operations.
type MatchingDependencies interface {
	Score(ctx context.Context, need model.NeedProfile, c model.Candidate) (model.MatchResult, error)
	Discover(ctx context.Context, programID string, state discovery.FilterState) ([]model.Candidate, error)
	StateCounts(ctx context.Context, programID string) (map[string]discovery.StateCount, error)
	Matches(ctx context.Context, programID string, state discovery.FilterState, limit int) ([]model.MatchResult, error)
	GetNeeds(ctx context.Context, programID string) (model.NeedProfile, error)
	PutNeeds(ctx context.Context, programID string, n model.NeedProfile) (model.NeedProfile, error)
}

// MatchingHandler handles scoring, discovery and need-profile requests.
type MatchingHandler struct {
	deps MatchingDependencies
	body body
	log  logger.Logger
}

type scoreRequest struct {
	Needs     model.NeedProfile `json:"needs"`
	Candidate model.Candidate   `json:"candidate"`
}

type matchesRequest struct {
	Filters discovery.FilterState `json:"filters"`
	Limit   int                   `json:"limit"`
}

// HandleScore handles POST /score.
func (h *MatchingHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := h.body.decode(w, r, &req); err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	res, err := h.deps.Score(r.Context(), req.Needs, req.Candidate)
	if err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleGetNeeds handles GET /programs/{programID}/needs.
func (h *MatchingHandler) HandleGetNeeds(w http.ResponseWriter, r *http.Request) {
	n, err := h.deps.GetNeeds(r.Context(), r.PathValue("programID"))
	if err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// HandlePutNeeds handles PUT /programs/{programID}/needs.
func (h *MatchingHandler) HandlePutNeeds(w http.ResponseWriter, r *http.Request) {
	var n model.NeedProfile
	if err := h.body.decode(w, r, &n); err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	programID := r.PathValue("programID")
	if n.ProgramID != "" && n.ProgramID != programID {
		writeFailure(w, r, h.log, fmt.Errorf("%w: program_id %q does not match the path", ErrBadRequest, n.ProgramID))
		return
	}
	saved, err := h.deps.PutNeeds(r.Context(), programID, n)
	if err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// HandleDiscover handles POST /programs/{programID}/discover.
func (h *MatchingHandler) HandleDiscover(w http.ResponseWriter, r *http.Request) {
	var state discovery.FilterState
	if err := h.body.decode(w, r, &state); err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	pool, err := h.deps.Discover(r.Context(), r.PathValue("programID"), state)
	if err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, pool)
}

// HandleStateCounts handles GET /programs/{programID}/discover/states.
func (h *MatchingHandler) HandleStateCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.deps.StateCounts(r.Context(), r.PathValue("programID"))
	if err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// HandleMatches handles POST /programs/{programID}/matches.
func (h *MatchingHandler) HandleMatches(w http.ResponseWriter, r *http.Request) {
	var req matchesRequest
	if err := h.body.decode(w, r, &req); err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	if req.Limit < 0 {
		writeFailure(w, r, h.log, fmt.Errorf("%w: limit must not be negative", ErrBadRequest))
		return
	}
	res, err := h.deps.Matches(r.Context(), r.PathValue("programID"), req.Filters, req.Limit)
	if err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
