package api

import (
	"context"
	"net/http"

	"github.com/okian/fplpredict/internal/domain/types"
	"github.com/okian/fplpredict/pkg/logger"
)

// RefreshDependencies defines the interface for snapshot refreshes.
type RefreshDependencies interface {
	Refresh(ctx context.Context) (types.Status, error)
}

// RefreshHandler triggers an upstream refresh.
type RefreshHandler struct {
	deps   RefreshDependencies
	logger logger.Logger
}

// NewRefreshHandler creates a new refresh handler.
func NewRefreshHandler(deps RefreshDependencies, l logger.Logger) *RefreshHandler {
	return &RefreshHandler{deps: deps, logger: l}
}

type refreshFailure struct {
	errorResponse
	Status types.Status `json:"status"`
}

// HandleRefresh handles POST /refresh. A failed fetch answers 502 with the
// status of the snapshot that keeps serving.
func (h *RefreshHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	const op = "api.refresh"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	st, err := h.deps.Refresh(r.Context())
	if err != nil {
		err = WrapKind(op, ErrRefresh, err)
		h.logger.Warn(r.Context(), "manual refresh failed", logger.Error(err))
		writeJSON(w, http.StatusBadGateway, refreshFailure{
			errorResponse: errorResponse{Code: "upstream_error", Message: err.Error()},
			Status:        st,
		})
		return
	}
	writeJSON(w, http.StatusOK, st)
}
