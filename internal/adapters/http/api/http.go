// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/pkg/logger"
)

const (
	defaultMaxBodyBytes   = 1 << 20
	defaultMaxImportBytes = 8 << 20
)

// Dependencies bundles every operation the handlers call. Each handler only
// sees the slice it needs.
type Dependencies interface {
	MatchingDependencies
	CandidateDependencies
	PipelineDependencies
	CalendarDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	matchingHandler  *MatchingHandler
	trendingHandler  *TrendingHandler
	candidateHandler *CandidateHandler
	pipelineHandler  *PipelineHandler
	eventsHandler    *EventsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	o := options{
		maxBodyBytes:   defaultMaxBodyBytes,
		maxImportBytes: defaultMaxImportBytes,
		maxLimit:       100,
		logger:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	b := body{max: o.maxBodyBytes}
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(deps),
		matchingHandler:  &MatchingHandler{deps: deps, body: b, log: o.logger},
		trendingHandler:  NewTrendingHandler(deps, o.maxLimit),
		candidateHandler: &CandidateHandler{deps: deps, body: b, maxImport: o.maxImportBytes, log: o.logger},
		pipelineHandler:  &PipelineHandler{deps: deps, body: b, log: o.logger},
		eventsHandler:    &EventsHandler{deps: deps, body: b, log: o.logger},
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	route := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, MetricsMiddleware(h, endpoint))
	}

	route("GET /healthz", "healthz", s.healthHandler.HandleHealth)
	route("GET /stats", "stats", s.statsHandler.HandleStats)

	route("POST /score", "score", s.matchingHandler.HandleScore)
	route("GET /trending", "trending", s.trendingHandler.HandleGetTrending)

	route("PUT /candidates", "candidates_upsert", s.candidateHandler.HandleUpsert)
	route("POST /candidates/import", "candidates_import", s.candidateHandler.HandleImport)
	route("GET /candidates/{playerID}", "candidates_get", s.candidateHandler.HandleGet)

	route("GET /programs/{programID}/needs", "needs_get", s.matchingHandler.HandleGetNeeds)
	route("PUT /programs/{programID}/needs", "needs_put", s.matchingHandler.HandlePutNeeds)
	route("POST /programs/{programID}/discover", "discover", s.matchingHandler.HandleDiscover)
	route("GET /programs/{programID}/discover/states", "discover_states", s.matchingHandler.HandleStateCounts)
	route("POST /programs/{programID}/matches", "matches", s.matchingHandler.HandleMatches)

	route("GET /programs/{programID}/pipeline", "pipeline_list", s.pipelineHandler.HandleList)
	route("GET /programs/{programID}/pipeline/board", "pipeline_board", s.pipelineHandler.HandleBoard)
	route("PUT /programs/{programID}/pipeline/{playerID}", "pipeline_put", s.pipelineHandler.HandlePut)
	route("POST /programs/{programID}/pipeline/{playerID}/notes", "pipeline_note", s.pipelineHandler.HandleAddNote)
	route("DELETE /programs/{programID}/pipeline/{playerID}", "pipeline_delete", s.pipelineHandler.HandleDelete)

	route("GET /programs/{programID}/events", "events_list", s.eventsHandler.HandleList)
	route("POST /programs/{programID}/events", "events_create", s.eventsHandler.HandleCreate)
	route("GET /programs/{programID}/events/players", "events_players", s.eventsHandler.HandleSearchPlayers)
	route("GET /programs/{programID}/events/upcoming", "events_upcoming", s.eventsHandler.HandleUpcoming)
	route("PATCH /programs/{programID}/events/{eventID}", "events_update", s.eventsHandler.HandleUpdate)
	route("DELETE /programs/{programID}/events/{eventID}", "events_delete", s.eventsHandler.HandleDelete)
	route("GET /programs/{programID}/players/{playerID}/events", "events_for_player", s.eventsHandler.HandleForPlayer)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps a domain or decode error to its status. Server-side
// failures are logged; client errors are not.
func writeFailure(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error(r.Context(), "request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Error(err))
	}
	writeError(w, status, code, err)
}

// body decodes size-limited JSON request bodies.
type body struct {
	max int64
}

func (b body) decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, b.max))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: limit is %d bytes", ErrPayloadTooLarge, tooLarge.Limit)
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", ErrBadRequest)
		}
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}

// intParam reads an optional non-negative integer query parameter.
func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", ErrBadRequest, name)
	}
	return n, nil
}
