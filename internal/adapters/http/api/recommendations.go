package api

import (
	"context"
	"net/http"

	"github.com/okian/fplpredict/internal/domain/ranking"
	"github.com/okian/fplpredict/internal/domain/types"
)

// RecommendationsDependencies defines the interface for recommendation reads.
type RecommendationsDependencies interface {
	Recommend(ctx context.Context, q ranking.Query) ([]types.Recommendation, error)
	CurrentRound() int
}

// RecommendationsHandler handles recommendation requests.
type RecommendationsHandler struct {
	deps   RecommendationsDependencies
	limits Limits
}

// NewRecommendationsHandler creates a new recommendations handler.
func NewRecommendationsHandler(deps RecommendationsDependencies, limits Limits) *RecommendationsHandler {
	return &RecommendationsHandler{deps: deps, limits: limits}
}

type recommendationsResponse struct {
	Round           int                    `json:"round"`
	Recommendations []types.Recommendation `json:"recommendations"`
}

// HandleGetRecommendations handles GET /recommendations?round&position&budget&limit.
func (h *RecommendationsHandler) HandleGetRecommendations(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_recommendations"
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	q, err := parseQuery(r, h.deps.CurrentRound(), h.limits)
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	recs, err := h.deps.Recommend(r.Context(), q)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, recommendationsResponse{Round: q.Round, Recommendations: recs})
}

// parseQuery reads the recommendation filters shared with /board.
func parseQuery(r *http.Request, current int, limits Limits) (ranking.Query, error) {
	v := r.URL.Query()
	round, err := parseRound(v, current, limits.MaxRound)
	if err != nil {
		return ranking.Query{}, err
	}
	pos, err := parsePosition(v)
	if err != nil {
		return ranking.Query{}, err
	}
	budget, err := parseBudget(v)
	if err != nil {
		return ranking.Query{}, err
	}
	limit, err := parseLimit(v, "limit", limits.DefaultLimit, limits.MaxLimit)
	if err != nil {
		return ranking.Query{}, err
	}
	return ranking.Query{Round: round, Position: pos, MaxCost: budget, Limit: limit}, nil
}
