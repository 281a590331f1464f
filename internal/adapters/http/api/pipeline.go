package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/pipeline"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/pkg/logger"
)

// PipelineDependencies defines pipeline operations.
type PipelineDependencies interface {
	UpsertStatus(ctx context.Context, programID, playerID string, status model.Status, notes *string) (model.PipelineEntry, error)
	AddToPipeline(ctx context.Context, programID, playerID string, status model.Status, notes *string) (model.PipelineEntry, error)
	AddNote(ctx context.Context, programID, playerID, note string) (model.PipelineEntry, error)
	SetPositionRole(ctx context.Context, programID, playerID, role string) (model.PipelineEntry, error)
	RemoveFromPipeline(ctx context.Context, programID, playerID string) error
	ListPipeline(ctx context.Context, programID string, filter model.Status) ([]model.PipelineEntry, error)
	Board(ctx context.Context, programID string, filter model.Status) (pipeline.Board, error)
}

// PipelineHandler handles pipeline requests.
type PipelineHandler struct {
	deps PipelineDependencies
	body body
	log  logger.Logger
}

type pipelinePutRequest struct {
	Status       string  `json:"status"`
	Notes        *string `json:"notes,omitempty"`
	PositionRole *string `json:"position_role,omitempty"`
	CreateOnly   bool    `json:"create_only,omitempty"`
}

type noteRequest struct {
	Note string `json:"note"`
}

// HandleList handles GET /programs/{programID}/pipeline?status=.
func (h *PipelineHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter, err := model.ParseStatusFilter(r.URL.Query().Get("status"))
	if err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	entries, err := h.deps.ListPipeline(r.Context(), r.PathValue("programID"), filter)
	if err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleBoard handles GET /programs/{programID}/pipeline/board?status=.
func (h *PipelineHandler) HandleBoard(w http.ResponseWriter, r *http.Request) {
	filter, err := model.ParseStatusFilter(r.URL.Query().Get("status"))
	if err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	board, err := h.deps.Board(r.Context(), r.PathValue("programID"), filter)
	if err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// HandlePut handles PUT /programs/{programID}/pipeline/{playerID}. With
// create_only the request fails with 409 when the player is already tracked.
func (h *PipelineHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	var req pipelinePutRequest
	if err := h.body.decode(w, r, &req); err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	if req.Status == "" {
		writeFailure(w, r, h.log, fmt.Errorf("%w: status is required", ErrBadRequest))
		return
	}
	status, err := model.ParseStatus(req.Status)
	if err != nil {
		writeFailure(w, r, h.log, err)
		return
	}

	ctx := r.Context()
	programID, playerID := r.PathValue("programID"), r.PathValue("playerID")
	code := http.StatusOK
	var entry model.PipelineEntry
	if req.CreateOnly {
		entry, err = h.deps.AddToPipeline(ctx, programID, playerID, status, req.Notes)
		code = http.StatusCreated
	} else {
		entry, err = h.deps.UpsertStatus(ctx, programID, playerID, status, req.Notes)
	}
	if err == nil && req.PositionRole != nil {
		entry, err = h.deps.SetPositionRole(ctx, programID, playerID, *req.PositionRole)
	}
	if err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	writeJSON(w, code, entry)
}

// HandleAddNote handles POST /programs/{programID}/pipeline/{playerID}/notes.
func (h *PipelineHandler) HandleAddNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := h.body.decode(w, r, &req); err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	entry, err := h.deps.AddNote(r.Context(), r.PathValue("programID"), r.PathValue("playerID"), req.Note)
	if err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// HandleDelete handles DELETE /programs/{programID}/pipeline/{playerID}.
// Removing an untracked player succeeds.
func (h *PipelineHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.RemoveFromPipeline(r.Context(), r.PathValue("programID"), r.PathValue("playerID")); err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
