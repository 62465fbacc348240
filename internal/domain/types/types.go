// Package types contains the read shapes returned by the API.
package types

import (
	"errors"
	"time"
)

// ErrNoData is returned by read operations before any snapshot has loaded.
var ErrNoData = errors.New("no player data loaded")

// Pick is the row shared by recommendations and surprises.
type Pick struct {
	PlayerID          int     `json:"player_id"`
	Name              string  `json:"name"`
	Position          string  `json:"position"`
	PositionCode      string  `json:"position_code"`
	Cost              int     `json:"cost"`
	Price             float64 `json:"price"`
	TotalPoints       int     `json:"total_points"`
	PointsPerGame     float64 `json:"points_per_game"`
	Ownership         float64 `json:"ownership"`
	FixtureDifficulty float64 `json:"fixture_difficulty"`
	Opponent          string  `json:"opponent"`
}

// Recommendation is one row of the recommendation list.
type Recommendation struct {
	Pick
	PredictedScore float64 `json:"predicted_score"`
}

// Surprise is one row of the surprise list.
type Surprise struct {
	Pick
	TeamName      string  `json:"team_name"`
	SurpriseScore float64 `json:"surprise_score"`
}

// Summary holds the dashboard's headline averages.
type Summary struct {
	AveragePrice             float64 `json:"average_price"`
	AveragePredicted         float64 `json:"average_predicted"`
	AverageSurpriseOwnership float64 `json:"average_surprise_ownership"`
}

// Board bundles everything the dashboard renders for one round.
type Board struct {
	Round           int              `json:"round"`
	SnapshotID      string           `json:"snapshot_id"`
	Recommendations []Recommendation `json:"recommendations"`
	Surprises       []Surprise       `json:"surprises"`
	Summary         Summary          `json:"summary"`
}

// Status describes the currently loaded snapshot and the last refresh.
type Status struct {
	Ready        bool      `json:"ready"`
	SnapshotID   string    `json:"snapshot_id,omitempty"`
	FetchedAt    time.Time `json:"fetched_at,omitempty"`
	CurrentRound int       `json:"current_round"`
	Players      int       `json:"players"`
	Fixtures     int       `json:"fixtures"`
	Teams        int       `json:"teams"`
	LastAttempt  time.Time `json:"last_attempt,omitempty"`
	LastError    string    `json:"last_error,omitempty"`
}
