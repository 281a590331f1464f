package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"
)

// TrendingDependencies defines the interface for trending lookups.
type TrendingDependencies interface {
	Trending(ctx context.Context, limit int) ([]model.TrendingResult, error)
}

// TrendingHandler handles trending requests.
type TrendingHandler struct {
	deps     TrendingDependencies
	maxLimit int
}

// NewTrendingHandler creates a new trending handler.
func NewTrendingHandler(deps TrendingDependencies, maxLimit int) *TrendingHandler {
	return &TrendingHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetTrending handles GET /trending?limit=N requests. A missing limit
// means the maximum.
func (h *TrendingHandler) HandleGetTrending(w http.ResponseWriter, r *http.Request) {
	n := h.maxLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		if v > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", ErrBadRequest)
			return
		}
		n = v
	}
	res, err := h.deps.Trending(r.Context(), n)
	if err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
