// Package service owns the current snapshot and exposes the ranking
// operations required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/fplpredict/internal/domain/model"
	"github.com/okian/fplpredict/internal/domain/ranking"
	"github.com/okian/fplpredict/internal/domain/snapshot"
	"github.com/okian/fplpredict/internal/domain/types"
	"github.com/okian/fplpredict/pkg/logger"
	"github.com/okian/fplpredict/pkg/metrics"
)

// ErrNoFetcher is returned by Start and Refresh when no data source is set.
var ErrNoFetcher = errors.New("no fetcher configured")

const defaultFetchTimeout = 15 * time.Second

// Fetcher retrieves a complete dataset from the data source.
type Fetcher interface {
	Fetch(ctx context.Context) (model.Dataset, error)
}

// Service serves rankings from the latest successfully fetched snapshot.
// Reads never block; refreshes are serialised.
type Service struct {
	current   atomic.Pointer[snapshot.Snapshot]
	refreshMu sync.Mutex

	mu          sync.RWMutex // guards the fields below
	started     bool
	lastAttempt time.Time
	lastErr     error

	fetcher      Fetcher
	engine       *ranking.Engine
	fetchTimeout time.Duration
	now          func() time.Time
	logger       logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithFetcher sets the data source.
func WithFetcher(f Fetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithEngine sets the ranking engine.
func WithEngine(e *ranking.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithFetchTimeout bounds each refresh.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// WithClock overrides the time source used for fetched-at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		engine:       ranking.NewEngine(),
		fetchTimeout: defaultFetchTimeout,
		now:          time.Now,
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs the initial refresh. A failed first fetch is logged and kept in
// Status; the service still starts and later refreshes may succeed.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	if s.fetcher == nil {
		s.mu.Unlock()
		return ErrNoFetcher
	}
	s.started = true
	s.mu.Unlock()

	s.logger.Info(ctx, "starting predictor service...")
	if _, err := s.Refresh(ctx); err != nil {
		s.logger.Warn(ctx, "initial refresh failed; serving no data until a refresh succeeds",
			logger.Error(err),
		)
		return nil
	}
	st := s.Status()
	s.logger.Info(ctx, "predictor service started",
		logger.String("snapshot_id", st.SnapshotID),
		logger.Int("round", st.CurrentRound),
		logger.Int("players", st.Players),
	)
	return nil
}

// Stop marks the service stopped. The last snapshot stays readable.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "predictor service stopped")
}

// Refresh fetches a new dataset and swaps it in. On failure the previous
// snapshot keeps serving and the error is recorded in Status.
func (s *Service) Refresh(ctx context.Context) (types.Status, error) {
	if s.fetcher == nil {
		return s.Status(), ErrNoFetcher
	}
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	start := time.Now()
	s.mu.Lock()
	s.lastAttempt = s.now()
	s.mu.Unlock()

	fctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	ds, err := s.fetcher.Fetch(fctx)
	took := time.Since(start)
	if err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		metrics.RecordRefresh("failure", float64(took.Milliseconds()))
		metrics.RecordErrorByComponent("refresh", "fetch")
		s.logger.Error(ctx, "refresh failed",
			logger.Duration("took", took),
			logger.Error(err),
		)
		return s.Status(), fmt.Errorf("refresh: %w", err)
	}

	snap := snapshot.Build(ds, s.now())
	s.current.Store(snap)
	s.mu.Lock()
	s.lastErr = nil
	s.mu.Unlock()

	players, fixtures, teams := snap.Counts()
	metrics.UpdateSnapshot(players, fixtures, teams, snap.CurrentRound, snap.FetchedAt)
	metrics.RecordRefresh("success", float64(took.Milliseconds()))
	s.logger.Info(ctx, "snapshot refreshed",
		logger.String("snapshot_id", snap.ID),
		logger.Int("round", snap.CurrentRound),
		logger.Int("players", players),
		logger.Int("fixtures", fixtures),
		logger.Int("teams", teams),
		logger.Duration("took", took),
	)
	return s.Status(), nil
}

// Recommend ranks players for q. Round 0 means the current round.
func (s *Service) Recommend(ctx context.Context, q ranking.Query) ([]types.Recommendation, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, types.ErrNoData
	}
	if q.Round <= 0 {
		q.Round = snap.CurrentRound
	}
	return s.engine.Recommend(ctx, snap, q), nil
}

// Surprises ranks low-ownership players for round. Round 0 means the
// current round.
func (s *Service) Surprises(ctx context.Context, round, limit int) ([]types.Surprise, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, types.ErrNoData
	}
	if round <= 0 {
		round = snap.CurrentRound
	}
	return s.engine.Surprises(ctx, snap, round, limit), nil
}

// Board builds both dashboard lists and their summary from one snapshot.
func (s *Service) Board(ctx context.Context, q ranking.BoardQuery) (types.Board, error) {
	snap := s.current.Load()
	if snap == nil {
		return types.Board{}, types.ErrNoData
	}
	if q.Round <= 0 {
		q.Round = snap.CurrentRound
	}
	recs := s.engine.Recommend(ctx, snap, q.Query)
	surprises := s.engine.Surprises(ctx, snap, q.Round, q.SurpriseLimit)
	return types.Board{
		Round:           q.Round,
		SnapshotID:      snap.ID,
		Recommendations: recs,
		Surprises:       surprises,
		Summary:         ranking.Summarize(recs, surprises),
	}, nil
}

// CurrentRound returns the round of the loaded snapshot, or 1.
func (s *Service) CurrentRound() int {
	if snap := s.current.Load(); snap != nil {
		return snap.CurrentRound
	}
	return 1
}

// Status reports readiness and the outcome of the last refresh.
func (s *Service) Status() types.Status {
	s.mu.RLock()
	st := types.Status{LastAttempt: s.lastAttempt, CurrentRound: 1}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	s.mu.RUnlock()

	if snap := s.current.Load(); snap != nil {
		st.Ready = true
		st.SnapshotID = snap.ID
		st.FetchedAt = snap.FetchedAt
		st.CurrentRound = snap.CurrentRound
		st.Players, st.Fixtures, st.Teams = snap.Counts()
	}
	return st
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	st := s.Status()
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      started,
		"ready":        st.Ready,
		"currentRound": st.CurrentRound,
		"players":      st.Players,
		"fixtures":     st.Fixtures,
		"teams":        st.Teams,
		"weights":      s.engine.Weights(),
	}
	if st.Ready {
		stats["snapshotId"] = st.SnapshotID
		stats["fetchedAt"] = st.FetchedAt
	}
	if !st.LastAttempt.IsZero() {
		stats["lastAttempt"] = st.LastAttempt
	}
	if st.LastError != "" {
		stats["lastError"] = st.LastError
	}
	return stats
}
