// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/okian/fplpredict/internal/domain/ranking"
	"github.com/okian/fplpredict/internal/domain/types"
	"github.com/okian/fplpredict/pkg/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Read operations rank players from the current snapshot.
	Recommend(ctx context.Context, q ranking.Query) ([]types.Recommendation, error)
	Surprises(ctx context.Context, round, limit int) ([]types.Surprise, error)
	Board(ctx context.Context, q ranking.BoardQuery) (types.Board, error)
	CurrentRound() int

	// Refresh replaces the snapshot from upstream.
	Refresh(ctx context.Context) (types.Status, error)
	Status() types.Status
}

// Limits bound query parameters.
type Limits struct {
	DefaultLimit  int
	MaxLimit      int
	SurpriseLimit int
	MaxRound      int
}

// DefaultLimits match the dashboard defaults.
var DefaultLimits = Limits{
	DefaultLimit:  15,
	MaxLimit:      100,
	SurpriseLimit: 5,
	MaxRound:      38,
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler          *HealthHandler
	statsHandler           *StatsHandler
	recommendationsHandler *RecommendationsHandler
	surprisesHandler       *SurprisesHandler
	boardHandler           *BoardHandler
	refreshHandler         *RefreshHandler
	dashboardHandler       *dashboardHandler
}

// Option configures a Server.
type Option func(*serverOptions)

type serverOptions struct {
	limits Limits
	logger logger.Logger
}

// WithLimits overrides DefaultLimits. Zero fields keep the default.
func WithLimits(l Limits) Option {
	return func(o *serverOptions) {
		if l.DefaultLimit > 0 {
			o.limits.DefaultLimit = l.DefaultLimit
		}
		if l.MaxLimit > 0 {
			o.limits.MaxLimit = l.MaxLimit
		}
		if l.SurpriseLimit > 0 {
			o.limits.SurpriseLimit = l.SurpriseLimit
		}
		if l.MaxRound > 0 {
			o.limits.MaxRound = l.MaxRound
		}
	}
}

// WithLogger sets the logger used by handlers.
func WithLogger(l logger.Logger) Option {
	return func(o *serverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	o := serverOptions{limits: DefaultLimits, logger: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler:          NewHealthHandler(),
		statsHandler:           NewStatsHandler(statsProvider),
		recommendationsHandler: NewRecommendationsHandler(deps, o.limits),
		surprisesHandler:       NewSurprisesHandler(deps, o.limits),
		boardHandler:           NewBoardHandler(deps, o.limits),
		refreshHandler:         NewRefreshHandler(deps, o.logger),
		dashboardHandler:       newDashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/recommendations", MetricsMiddleware(s.recommendationsHandler.HandleGetRecommendations, "recommendations"))
	mux.HandleFunc("/surprises", MetricsMiddleware(s.surprisesHandler.HandleGetSurprises, "surprises"))
	mux.HandleFunc("/board", MetricsMiddleware(s.boardHandler.HandleGetBoard, "board"))
	mux.HandleFunc("/refresh", MetricsMiddleware(s.refreshHandler.HandleRefresh, "refresh"))
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

// writeFailure maps err to a status and error code.
func writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, types.ErrNoData):
		writeError(w, http.StatusServiceUnavailable, "no_data", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
}
