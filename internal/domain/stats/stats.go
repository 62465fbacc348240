// Package stats derives per-player metrics from raw season fields.
package stats

import (
	"math"

	"github.com/okian/fplpredict/internal/domain/model"
)

// Derivation constants.
const (
	formIndexFactor       = 1.5
	surpriseOwnershipMark = 5.0
	surpriseBoost         = 2.0
	fullOwnership         = 100.0
	costScale             = 10.0
)

// Derived holds the computed columns of one player.
type Derived struct {
	PointsPerMinute   float64
	ValueIndex        float64
	RecentFormIndex   float64
	DifferentialIndex float64
	SurpriseIndex     float64
}

// Rated is a player paired with its derived metrics.
type Rated struct {
	model.Player
	Derived
}

// Compute derives the metrics of p. Zero denominators and non-finite
// results yield 0.
func Compute(p model.Player) Derived {
	d := Derived{
		RecentFormIndex:   p.Form * formIndexFactor,
		DifferentialIndex: (fullOwnership - p.Ownership) * p.PointsPerGame,
		SurpriseIndex:     p.PointsPerGame,
	}
	if p.Minutes > 0 {
		d.PointsPerMinute = float64(p.TotalPoints) / float64(p.Minutes)
	}
	if p.Cost > 0 {
		d.ValueIndex = float64(p.TotalPoints) / (float64(p.Cost) / costScale)
	}
	if p.Ownership < surpriseOwnershipMark {
		d.SurpriseIndex = p.PointsPerGame * surpriseBoost
	}

	d.PointsPerMinute = finite(d.PointsPerMinute)
	d.ValueIndex = finite(d.ValueIndex)
	d.RecentFormIndex = finite(d.RecentFormIndex)
	d.DifferentialIndex = finite(d.DifferentialIndex)
	d.SurpriseIndex = finite(d.SurpriseIndex)
	return d
}

// Augment returns players in input order with derived metrics attached.
func Augment(players []model.Player) []Rated {
	out := make([]Rated, len(players))
	for i, p := range players {
		out[i] = Rated{Player: p, Derived: Compute(p)}
	}
	return out
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
