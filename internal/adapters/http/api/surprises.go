package api

import (
	"context"
	"net/http"

	"github.com/okian/fplpredict/internal/domain/types"
)

// SurprisesDependencies defines the interface for surprise reads.
type SurprisesDependencies interface {
	Surprises(ctx context.Context, round, limit int) ([]types.Surprise, error)
	CurrentRound() int
}

// SurprisesHandler handles surprise requests.
type SurprisesHandler struct {
	deps   SurprisesDependencies
	limits Limits
}

// NewSurprisesHandler creates a new surprises handler.
func NewSurprisesHandler(deps SurprisesDependencies, limits Limits) *SurprisesHandler {
	return &SurprisesHandler{deps: deps, limits: limits}
}

type surprisesResponse struct {
	Round     int              `json:"round"`
	Surprises []types.Surprise `json:"surprises"`
}

// HandleGetSurprises handles GET /surprises?round&limit.
func (h *SurprisesHandler) HandleGetSurprises(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_surprises"
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	v := r.URL.Query()
	round, err := parseRound(v, h.deps.CurrentRound(), h.limits.MaxRound)
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	limit, err := parseLimit(v, "limit", h.limits.SurpriseLimit, h.limits.MaxLimit)
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	out, err := h.deps.Surprises(r.Context(), round, limit)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, surprisesResponse{Round: round, Surprises: out})
}
