package snapshot_test

import (
	"testing"
	"time"

	"github.com/okian/fplpredict/internal/domain/model"
	"github.com/okian/fplpredict/internal/domain/snapshot"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBuild(t *testing.T) {
	Convey("Given a fetched dataset", t, func() {
		now := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)
		ds := model.Dataset{
			Players: []model.Player{
				{ID: 1, TeamID: 1, TotalPoints: 20, Minutes: 200, Cost: 50},
				{ID: 2, TeamID: 2},
			},
			Teams:    []model.Team{{ID: 1, Name: "Arsenal"}, {ID: 2, Name: "Chelsea"}},
			Fixtures: []model.Fixture{{ID: 9, Round: 3, HomeTeamID: 1, AwayTeamID: 2, HomeDifficulty: 2, AwayDifficulty: 4}},
		}

		Convey("When building a snapshot", func() {
			snap := snapshot.Build(ds, now)

			Convey("Then metrics are derived once and indexes are ready", func() {
				So(snap.ID, ShouldNotBeEmpty)
				So(snap.FetchedAt, ShouldEqual, now)
				So(len(snap.Players()), ShouldEqual, 2)
				So(snap.Players()[0].PointsPerMinute, ShouldAlmostEqual, 0.1)
				So(snap.Resolver().Opponent(2, 3), ShouldEqual, "Arsenal (away)")
				So(snap.TeamName(2), ShouldEqual, "Chelsea")
			})

			Convey("And a missing current round defaults to the first", func() {
				So(snap.CurrentRound, ShouldEqual, 1)
			})

			Convey("And counts reflect the dataset", func() {
				p, f, tm := snap.Counts()
				So(p, ShouldEqual, 2)
				So(f, ShouldEqual, 1)
				So(tm, ShouldEqual, 2)
			})
		})

		Convey("When building twice", func() {
			a := snapshot.Build(ds, now)
			b := snapshot.Build(ds, now)

			Convey("Then each snapshot gets its own id", func() {
				So(a.ID, ShouldNotEqual, b.ID)
			})
		})
	})
}
