// Package fixture resolves a player's fixture, difficulty and opponent for a round.
package fixture

import (
	"errors"
	"fmt"

	"github.com/okian/fplpredict/internal/domain/model"
)

// Fallback values used whenever a lookup cannot be resolved.
const (
	NeutralDifficulty = 3.0
	UnknownOpponent   = "unknown"

	minDifficulty = 1
	maxDifficulty = 5
)

// Sentinel kinds. Both resolve to the same fallback values.
var (
	ErrNoFixture = errors.New("no fixture for round")
	ErrMalformed = errors.New("malformed fixture data")
)

// Match is a resolved fixture from the player's team point of view.
type Match struct {
	Fixture    model.Fixture
	TeamID     int
	OpponentID int
	Home       bool
	Difficulty int
}

// Venue returns "home" or "away".
func (m Match) Venue() string {
	if m.Home {
		return "home"
	}
	return "away"
}

// Resolution carries the values to rank with plus the first lookup error.
type Resolution struct {
	Difficulty float64
	Opponent   string
	Err        error
}

// Fallback reports whether any default was substituted.
func (r Resolution) Fallback() bool { return r.Err != nil }

// Resolver answers fixture questions against one immutable dataset.
type Resolver struct {
	playerTeam map[int]int
	teamNames  map[int]string
	byRound    map[int][]model.Fixture
}

// NewResolver indexes players, teams and fixtures. Fixture order within a
// round follows the input order.
func NewResolver(players []model.Player, teams []model.Team, fixtures []model.Fixture) *Resolver {
	r := &Resolver{
		playerTeam: make(map[int]int, len(players)),
		teamNames:  make(map[int]string, len(teams)),
		byRound:    make(map[int][]model.Fixture),
	}
	for _, p := range players {
		r.playerTeam[p.ID] = p.TeamID
	}
	for _, t := range teams {
		r.teamNames[t.ID] = t.Name
	}
	for _, f := range fixtures {
		r.byRound[f.Round] = append(r.byRound[f.Round], f)
	}
	return r
}

// TeamName returns the display name of a team, "" when unknown.
func (r *Resolver) TeamName(teamID int) string {
	return r.teamNames[teamID]
}

// Lookup finds the first fixture of the player's team in round.
func (r *Resolver) Lookup(playerID, round int) (Match, error) {
	teamID, ok := r.playerTeam[playerID]
	if !ok {
		return Match{}, fmt.Errorf("%w: unknown player %d", ErrMalformed, playerID)
	}
	for _, f := range r.byRound[round] {
		switch teamID {
		case f.HomeTeamID:
			return Match{Fixture: f, TeamID: teamID, OpponentID: f.AwayTeamID, Home: true, Difficulty: f.HomeDifficulty}, nil
		case f.AwayTeamID:
			return Match{Fixture: f, TeamID: teamID, OpponentID: f.HomeTeamID, Home: false, Difficulty: f.AwayDifficulty}, nil
		}
	}
	return Match{}, fmt.Errorf("%w: team %d round %d", ErrNoFixture, teamID, round)
}

// Difficulty returns the rating of the player's side, or NeutralDifficulty.
func (r *Resolver) Difficulty(playerID, round int) float64 {
	m, err := r.Lookup(playerID, round)
	if err != nil {
		return NeutralDifficulty
	}
	d, _ := difficultyOf(m)
	return d
}

// Opponent returns "<name> (home|away)", or UnknownOpponent.
func (r *Resolver) Opponent(playerID, round int) string {
	m, err := r.Lookup(playerID, round)
	if err != nil {
		return UnknownOpponent
	}
	o, _ := r.opponentOf(m)
	return o
}

// Resolve looks the fixture up once and returns both values with the first
// error met, for diagnostics.
func (r *Resolver) Resolve(playerID, round int) Resolution {
	m, err := r.Lookup(playerID, round)
	if err != nil {
		return Resolution{Difficulty: NeutralDifficulty, Opponent: UnknownOpponent, Err: err}
	}
	d, derr := difficultyOf(m)
	o, oerr := r.opponentOf(m)
	if derr != nil {
		err = derr
	} else {
		err = oerr
	}
	return Resolution{Difficulty: d, Opponent: o, Err: err}
}

func difficultyOf(m Match) (float64, error) {
	if m.Difficulty < minDifficulty || m.Difficulty > maxDifficulty {
		return NeutralDifficulty, fmt.Errorf("%w: fixture %d difficulty %d", ErrMalformed, m.Fixture.ID, m.Difficulty)
	}
	return float64(m.Difficulty), nil
}

func (r *Resolver) opponentOf(m Match) (string, error) {
	name, ok := r.teamNames[m.OpponentID]
	if !ok || name == "" {
		return UnknownOpponent, fmt.Errorf("%w: unknown opponent team %d", ErrMalformed, m.OpponentID)
	}
	return fmt.Sprintf("%s (%s)", name, m.Venue()), nil
}
