package upstream

import (
	"bytes"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/okian/fplpredict/internal/domain/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// flexString holds a numeric field that may arrive as a JSON string, a
// number or null.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
	default:
		*f = flexString(b)
	}
	return nil
}

type bootstrapPayload struct {
	Elements []elementPayload `json:"elements"`
	Teams    []teamPayload    `json:"teams"`
	Events   []eventPayload   `json:"events"`
}

type elementPayload struct {
	ID                int        `json:"id"`
	WebName           string     `json:"web_name"`
	Team              int        `json:"team"`
	ElementType       int        `json:"element_type"`
	NowCost           int        `json:"now_cost"`
	TotalPoints       int        `json:"total_points"`
	Minutes           int        `json:"minutes"`
	GoalsScored       int        `json:"goals_scored"`
	Assists           int        `json:"assists"`
	CleanSheets       int        `json:"clean_sheets"`
	Form              flexString `json:"form"`
	SelectedByPercent flexString `json:"selected_by_percent"`
	PointsPerGame     flexString `json:"points_per_game"`
}

type teamPayload struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

type eventPayload struct {
	ID        int  `json:"id"`
	IsCurrent bool `json:"is_current"`
	IsNext    bool `json:"is_next"`
}

type fixturePayload struct {
	ID              int     `json:"id"`
	Event           *int    `json:"event"`
	TeamH           int     `json:"team_h"`
	TeamA           int     `json:"team_a"`
	TeamHDifficulty int     `json:"team_h_difficulty"`
	TeamADifficulty int     `json:"team_a_difficulty"`
	KickoffTime     *string `json:"kickoff_time"`
	Finished        bool    `json:"finished"`
}

// coercions counts string numerics replaced by defaults, per field.
type coercions struct {
	form          int
	ownership     int
	pointsPerGame int
}

func (c coercions) total() int { return c.form + c.ownership + c.pointsPerGame }

func (e elementPayload) toPlayer(c *coercions) model.Player {
	form, ok := model.ParseDecimal(string(e.Form), model.DefaultForm)
	if !ok {
		c.form++
	}
	own, ok := model.ParseDecimal(string(e.SelectedByPercent), model.DefaultOwnership)
	if !ok {
		c.ownership++
	}
	ppg, ok := model.ParseDecimal(string(e.PointsPerGame), model.DefaultPointsPerGame)
	if !ok {
		c.pointsPerGame++
	}
	return model.Player{
		ID:            e.ID,
		Name:          e.WebName,
		TeamID:        e.Team,
		Position:      model.Position(e.ElementType),
		Cost:          e.NowCost,
		TotalPoints:   e.TotalPoints,
		Minutes:       e.Minutes,
		Goals:         e.GoalsScored,
		Assists:       e.Assists,
		CleanSheets:   e.CleanSheets,
		Form:          form,
		Ownership:     own,
		PointsPerGame: ppg,
	}
}

func (f fixturePayload) toFixture() model.Fixture {
	out := model.Fixture{
		ID:             f.ID,
		HomeTeamID:     f.TeamH,
		AwayTeamID:     f.TeamA,
		HomeDifficulty: f.TeamHDifficulty,
		AwayDifficulty: f.TeamADifficulty,
		Finished:       f.Finished,
	}
	if f.Event != nil {
		out.Round = *f.Event
	}
	if f.KickoffTime != nil {
		if t, err := time.Parse(time.RFC3339, strings.TrimSpace(*f.KickoffTime)); err == nil {
			out.Kickoff = t
		}
	}
	return out
}

// currentRound picks the current event, then the next one, then 1.
func currentRound(events []eventPayload) int {
	for _, e := range events {
		if e.IsCurrent {
			return e.ID
		}
	}
	for _, e := range events {
		if e.IsNext {
			return e.ID
		}
	}
	return 1
}
