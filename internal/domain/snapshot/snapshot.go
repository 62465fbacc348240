// Package snapshot holds the immutable dataset every ranking call reads.
package snapshot

import (
	"time"

	"github.com/google/uuid"

	"github.com/okian/fplpredict/internal/domain/fixture"
	"github.com/okian/fplpredict/internal/domain/model"
	"github.com/okian/fplpredict/internal/domain/stats"
)

const firstRound = 1

// Snapshot is built once per refresh and never mutated afterwards.
type Snapshot struct {
	ID           string
	FetchedAt    time.Time
	CurrentRound int

	players  []stats.Rated
	teams    []model.Team
	fixtures int
	resolver *fixture.Resolver
}

// Build derives metrics and indexes fixtures for ds.
func Build(ds model.Dataset, fetchedAt time.Time) *Snapshot {
	round := ds.CurrentRound
	if round < firstRound {
		round = firstRound
	}
	return &Snapshot{
		ID:           uuid.NewString(),
		FetchedAt:    fetchedAt,
		CurrentRound: round,
		players:      stats.Augment(ds.Players),
		teams:        append([]model.Team(nil), ds.Teams...),
		fixtures:     len(ds.Fixtures),
		resolver:     fixture.NewResolver(ds.Players, ds.Teams, ds.Fixtures),
	}
}

// Players returns the rated players in upstream order. Callers must not
// modify the slice.
func (s *Snapshot) Players() []stats.Rated { return s.players }

// Resolver returns the fixture resolver for this snapshot.
func (s *Snapshot) Resolver() *fixture.Resolver { return s.resolver }

// TeamName returns the display name of a team.
func (s *Snapshot) TeamName(teamID int) string { return s.resolver.TeamName(teamID) }

// Counts returns the number of players, fixtures and teams.
func (s *Snapshot) Counts() (players, fixtures, teams int) {
	return len(s.players), s.fixtures, len(s.teams)
}
