package api

import (
	"context"
	"net/http"

	"github.com/okian/fplpredict/internal/domain/ranking"
	"github.com/okian/fplpredict/internal/domain/types"
)

// BoardDependencies defines the interface for dashboard reads.
type BoardDependencies interface {
	Board(ctx context.Context, q ranking.BoardQuery) (types.Board, error)
	CurrentRound() int
}

// BoardHandler serves both dashboard lists and their summary.
type BoardHandler struct {
	deps   BoardDependencies
	limits Limits
}

// NewBoardHandler creates a new board handler.
func NewBoardHandler(deps BoardDependencies, limits Limits) *BoardHandler {
	return &BoardHandler{deps: deps, limits: limits}
}

// HandleGetBoard handles GET /board?round&position&budget&limit&surprise_limit.
func (h *BoardHandler) HandleGetBoard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_board"
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	q, err := parseQuery(r, h.deps.CurrentRound(), h.limits)
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	surpriseLimit, err := parseLimit(r.URL.Query(), "surprise_limit", h.limits.SurpriseLimit, h.limits.MaxLimit)
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	board, err := h.deps.Board(r.Context(), ranking.BoardQuery{Query: q, SurpriseLimit: surpriseLimit})
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, board)
}
