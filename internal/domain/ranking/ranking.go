// Package ranking scores players for a round and returns the top candidates.
package ranking

import (
	"context"
	"errors"
	"sort"

	"github.com/okian/fplpredict/internal/domain/fixture"
	"github.com/okian/fplpredict/internal/domain/model"
	"github.com/okian/fplpredict/internal/domain/snapshot"
	"github.com/okian/fplpredict/internal/domain/stats"
	"github.com/okian/fplpredict/internal/domain/types"
	"github.com/okian/fplpredict/pkg/logger"
	"github.com/okian/fplpredict/pkg/metrics"
)

// Default surprise pre-filter cutoffs.
const (
	defaultOwnershipCutoff = 5.0
	defaultFormCutoff      = 3.0
	minutesPerMatch        = 90.0
	fullOwnership          = 100.0
)

// Weights are the coefficients of the predicted score.
type Weights struct {
	Form         float64 `json:"form"`
	MinuteRate   float64 `json:"minute_rate"`
	Value        float64 `json:"value"`
	Difficulty   float64 `json:"difficulty"`
	Differential float64 `json:"differential"`
	Surprise     float64 `json:"surprise"`
}

// DefaultWeights is the stock recommendation formula.
var DefaultWeights = Weights{
	Form:         2.0,
	MinuteRate:   1.5,
	Value:        0.7,
	Difficulty:   0.8,
	Differential: 0.4,
	Surprise:     0.6,
}

func (w Weights) merge(m map[string]float64) Weights {
	for k, v := range m {
		switch k {
		case "form":
			w.Form = v
		case "minute_rate":
			w.MinuteRate = v
		case "value":
			w.Value = v
		case "difficulty":
			w.Difficulty = v
		case "differential":
			w.Differential = v
		case "surprise":
			w.Surprise = v
		}
	}
	return w
}

// SurpriseWeights are the coefficients of the surprise score.
type SurpriseWeights struct {
	Form       float64
	MinuteRate float64
	Difficulty float64
	Ownership  float64 // applied to (100 - ownership)
}

// DefaultSurpriseWeights is the stock surprise formula.
var DefaultSurpriseWeights = SurpriseWeights{
	Form:       2.5,
	MinuteRate: 120,
	Difficulty: 1.5,
	Ownership:  1.0,
}

func (w SurpriseWeights) merge(m map[string]float64) SurpriseWeights {
	for k, v := range m {
		switch k {
		case "form":
			w.Form = v
		case "minute_rate":
			w.MinuteRate = v
		case "difficulty":
			w.Difficulty = v
		case "ownership":
			w.Ownership = v
		}
	}
	return w
}

// Query selects and limits a recommendation list.
type Query struct {
	Round    int
	Position model.Position // PositionAny disables the filter
	MaxCost  int            // tenths; 0 disables the ceiling
	Limit    int
}

// BoardQuery selects both dashboard lists from one snapshot.
type BoardQuery struct {
	Query
	SurpriseLimit int
}

// Engine ranks the players of a snapshot. It holds no per-call state.
type Engine struct {
	weights         Weights
	surprise        SurpriseWeights
	ownershipCutoff float64
	formCutoff      float64
	logger          logger.Logger
}

// NewEngine creates an engine with the stock formulas.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		weights:         DefaultWeights,
		surprise:        DefaultSurpriseWeights,
		ownershipCutoff: defaultOwnershipCutoff,
		formCutoff:      defaultFormCutoff,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Weights returns the active recommendation weights.
func (e *Engine) Weights() Weights { return e.weights }

// Predict returns the predicted score of p given a fixture difficulty.
func (e *Engine) Predict(p stats.Rated, difficulty float64) float64 {
	w := e.weights
	return w.Form*p.Form +
		w.MinuteRate*(p.PointsPerMinute*minutesPerMatch) +
		w.Value*p.ValueIndex -
		w.Difficulty*difficulty +
		w.Differential*p.DifferentialIndex +
		w.Surprise*p.SurpriseIndex
}

// SurpriseScore returns the surprise score of p given a fixture difficulty.
func (e *Engine) SurpriseScore(p stats.Rated, difficulty float64) float64 {
	w := e.surprise
	return w.Form*p.Form +
		w.MinuteRate*p.PointsPerMinute -
		w.Difficulty*difficulty +
		w.Ownership*(fullOwnership-p.Ownership)
}

// IsSurpriseCandidate reports whether p passes the surprise pre-filter.
func (e *Engine) IsSurpriseCandidate(p stats.Rated) bool {
	return p.Ownership < e.ownershipCutoff && p.Form > e.formCutoff
}

type scored struct {
	player stats.Rated
	res    fixture.Resolution
	score  float64
}

// Recommend returns the top q.Limit players by predicted score, descending.
// Ties keep snapshot order.
func (e *Engine) Recommend(ctx context.Context, snap *snapshot.Snapshot, q Query) []types.Recommendation {
	metrics.RecordRankingRequest("recommend")
	if snap == nil || q.Limit <= 0 {
		return []types.Recommendation{}
	}

	var diag diagnostics
	candidates := make([]scored, 0, len(snap.Players()))
	for _, p := range snap.Players() {
		if q.Position != model.PositionAny && p.Position != q.Position {
			continue
		}
		if q.MaxCost > 0 && p.Cost > q.MaxCost {
			continue
		}
		res := snap.Resolver().Resolve(p.ID, q.Round)
		diag.observe(res)
		candidates = append(candidates, scored{player: p, res: res, score: e.Predict(p, res.Difficulty)})
	}
	e.report(ctx, "recommend", q.Round, diag)

	top := selectTop(candidates, q.Limit)
	out := make([]types.Recommendation, len(top))
	for i, c := range top {
		out[i] = types.Recommendation{Pick: pickOf(c), PredictedScore: c.score}
	}
	return out
}

// Surprises returns the top limit low-ownership, in-form players for round.
func (e *Engine) Surprises(ctx context.Context, snap *snapshot.Snapshot, round, limit int) []types.Surprise {
	metrics.RecordRankingRequest("surprises")
	if snap == nil || limit <= 0 {
		return []types.Surprise{}
	}

	var diag diagnostics
	candidates := make([]scored, 0)
	for _, p := range snap.Players() {
		if !e.IsSurpriseCandidate(p) {
			continue
		}
		res := snap.Resolver().Resolve(p.ID, round)
		diag.observe(res)
		candidates = append(candidates, scored{player: p, res: res, score: e.SurpriseScore(p, res.Difficulty)})
	}
	e.report(ctx, "surprises", round, diag)

	top := selectTop(candidates, limit)
	out := make([]types.Surprise, len(top))
	for i, c := range top {
		out[i] = types.Surprise{
			Pick:          pickOf(c),
			TeamName:      snap.TeamName(c.player.TeamID),
			SurpriseScore: c.score,
		}
	}
	return out
}

// Summarize averages the lists the dashboard shows. Empty lists give 0.
func Summarize(recs []types.Recommendation, surprises []types.Surprise) types.Summary {
	var s types.Summary
	if n := len(recs); n > 0 {
		var price, predicted float64
		for _, r := range recs {
			price += r.Price
			predicted += r.PredictedScore
		}
		s.AveragePrice = price / float64(n)
		s.AveragePredicted = predicted / float64(n)
	}
	if n := len(surprises); n > 0 {
		var own float64
		for _, r := range surprises {
			own += r.Ownership
		}
		s.AverageSurpriseOwnership = own / float64(n)
	}
	return s
}

func selectTop(c []scored, limit int) []scored {
	sort.SliceStable(c, func(i, j int) bool { return c[i].score > c[j].score })
	if len(c) > limit {
		c = c[:limit]
	}
	return c
}

func pickOf(c scored) types.Pick {
	p := c.player
	return types.Pick{
		PlayerID:          p.ID,
		Name:              p.Name,
		Position:          p.Position.Label(),
		PositionCode:      p.Position.Code(),
		Cost:              p.Cost,
		Price:             p.Price(),
		TotalPoints:       p.TotalPoints,
		PointsPerGame:     p.PointsPerGame,
		Ownership:         p.Ownership,
		FixtureDifficulty: c.res.Difficulty,
		Opponent:          c.res.Opponent,
	}
}

// diagnostics counts fixture fallbacks of one ranking pass by kind.
type diagnostics struct {
	notFound  int
	malformed int
	lastErr   error // last malformed cause
}

func (d *diagnostics) observe(res fixture.Resolution) {
	switch {
	case res.Err == nil:
		return
	case errors.Is(res.Err, fixture.ErrNoFixture):
		d.notFound++
		metrics.RecordFixtureFallback("not_found")
	default:
		d.malformed++
		d.lastErr = res.Err
		metrics.RecordFixtureFallback("malformed")
	}
}

func (e *Engine) report(ctx context.Context, pass string, round int, d diagnostics) {
	if e.logger == nil {
		return
	}
	if d.notFound > 0 {
		e.logger.Debug(ctx, "fixture not found; using neutral difficulty",
			logger.String("pass", pass),
			logger.Int("round", round),
			logger.Int("players", d.notFound),
		)
	}
	if d.malformed > 0 {
		e.logger.Warn(ctx, "malformed fixture data; using neutral difficulty",
			logger.String("pass", pass),
			logger.Int("round", round),
			logger.Int("players", d.malformed),
			logger.Error(d.lastErr),
		)
	}
}
