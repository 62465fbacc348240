// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Position is the upstream element_type code of a player.
type Position int

// Position codes as published by the FPL API.
const (
	PositionAny Position = iota // no filter
	Goalkeeper
	Defender
	Midfielder
	Forward
)

// Code returns the short code, e.g. "GKP". Unknown codes return "UNK".
func (p Position) Code() string {
	switch p {
	case Goalkeeper:
		return "GKP"
	case Defender:
		return "DEF"
	case Midfielder:
		return "MID"
	case Forward:
		return "FWD"
	default:
		return "UNK"
	}
}

// Label returns the display label of the position.
func (p Position) Label() string {
	switch p {
	case Goalkeeper:
		return "Goalkeeper"
	case Defender:
		return "Defender"
	case Midfielder:
		return "Midfielder"
	case Forward:
		return "Forward"
	default:
		return "Unknown"
	}
}

// ParsePosition maps a filter value to a Position. Empty and "all" map to
// PositionAny.
func ParsePosition(code string) (Position, error) {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "", "ALL":
		return PositionAny, nil
	case "GKP", "GK":
		return Goalkeeper, nil
	case "DEF":
		return Defender, nil
	case "MID":
		return Midfielder, nil
	case "FWD":
		return Forward, nil
	}
	return PositionAny, fmt.Errorf("%w: %q", ErrUnknownPosition, code)
}

// Player is one upstream element with numerics already parsed.
type Player struct {
	ID          int
	Name        string // web_name
	TeamID      int
	Position    Position
	Cost        int // tenths of a currency unit
	TotalPoints int
	Minutes     int
	Goals       int
	Assists     int
	CleanSheets int

	Form          float64
	Ownership     float64 // percent of managers, 0..100
	PointsPerGame float64
}

// Price returns the cost in currency units.
func (p Player) Price() float64 {
	return float64(p.Cost) / 10
}

// Team is read-only reference data.
type Team struct {
	ID        int
	Name      string
	ShortName string
}

// Fixture is one scheduled match. Round is 0 when unscheduled.
type Fixture struct {
	ID             int
	Round          int
	HomeTeamID     int
	AwayTeamID     int
	HomeDifficulty int
	AwayDifficulty int
	Kickoff        time.Time
	Finished       bool
}

// Dataset is everything one fetch returns.
type Dataset struct {
	Players      []Player
	Fixtures     []Fixture
	Teams        []Team
	CurrentRound int
}
