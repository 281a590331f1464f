package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/pkg/logger"
)

// Idempotency headers.
const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"
)

// CalendarDependencies defines the calendar operations.
type CalendarDependencies interface {
	CreateEvent(ctx context.Context, programID, idempotencyKey string, in model.EventInput) (model.CalendarEvent, bool, error)
	UpdateEvent(ctx context.Context, programID, eventID string, patch model.EventPatch) (model.CalendarEvent, error)
	DeleteEvent(ctx context.Context, programID, eventID string) (bool, error)
	ListUpcoming(ctx context.Context, programID string, today model.Date, days int) ([]model.CalendarEvent, error)
	ListForPlayer(ctx context.Context, programID, playerID string) ([]model.CalendarEvent, error)
	ListEvents(ctx context.Context, programID string) ([]model.CalendarEvent, error)
	SearchTrackedPlayers(ctx context.Context, programID, query string) ([]model.Candidate, error)
}

// EventsHandler handles calendar event requests.
type EventsHandler struct {
	deps CalendarDependencies
	body body
	log  logger.Logger
}

type deleteResponse struct {
	Deleted bool `json:"deleted"`
}

// HandleCreate handles POST /programs/{programID}/events. A retried
// Idempotency-Key returns the original event with 200 instead of 201.
func (h *EventsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in model.EventInput
	if err := h.body.decode(w, r, &in); err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	key := strings.TrimSpace(r.Header.Get(HeaderIdempotencyKey))
	ev, replayed, err := h.deps.CreateEvent(r.Context(), r.PathValue("programID"), key, in)
	if err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	if replayed {
		w.Header().Set(HeaderReplayed, "true")
		writeJSON(w, http.StatusOK, ev)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

// HandleList handles GET /programs/{programID}/events.
func (h *EventsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	evs, err := h.deps.ListEvents(r.Context(), r.PathValue("programID"))
	if err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, evs)
}

// HandleUpcoming handles GET /programs/{programID}/events/upcoming?days=&today=.
func (h *EventsHandler) HandleUpcoming(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "days")
	if err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	var today model.Date
	if raw := r.URL.Query().Get("today"); raw != "" {
		if today, err = model.ParseDate(raw); err != nil {
			writeFailure(w, r, h.log, err)
			return
		}
	}
	evs, err := h.deps.ListUpcoming(r.Context(), r.PathValue("programID"), today, days)
	if err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, evs)
}

// HandleUpdate handles PATCH /programs/{programID}/events/{eventID}.
func (h *EventsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch model.EventPatch
	if err := h.body.decode(w, r, &patch); err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	ev, err := h.deps.UpdateEvent(r.Context(), r.PathValue("programID"), r.PathValue("eventID"), patch)
	if err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// HandleDelete handles DELETE /programs/{programID}/events/{eventID}.
func (h *EventsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.deps.DeleteEvent(r.Context(), r.PathValue("programID"), r.PathValue("eventID"))
	if err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Deleted: deleted})
}

// HandleForPlayer handles GET /programs/{programID}/players/{playerID}/events.
func (h *EventsHandler) HandleForPlayer(w http.ResponseWriter, r *http.Request) {
	evs, err := h.deps.ListForPlayer(r.Context(), r.PathValue("programID"), r.PathValue("playerID"))
	if err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, evs)
}

// HandleSearchPlayers handles GET /programs/{programID}/events/players?q=,
// the tracked players an event can be linked to.
func (h *EventsHandler) HandleSearchPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.deps.SearchTrackedPlayers(r.Context(), r.PathValue("programID"), r.URL.Query().Get("q"))
	if err != nil {
		writeFailure(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}
