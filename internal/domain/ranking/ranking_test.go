package ranking_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/fplpredict/internal/domain/fixture"
	"github.com/okian/fplpredict/internal/domain/model"
	"github.com/okian/fplpredict/internal/domain/ranking"
	"github.com/okian/fplpredict/internal/domain/snapshot"
	"github.com/okian/fplpredict/internal/domain/stats"
	"github.com/okian/fplpredict/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func build(players []model.Player, teams []model.Team, fixtures []model.Fixture) *snapshot.Snapshot {
	return snapshot.Build(model.Dataset{Players: players, Teams: teams, Fixtures: fixtures}, time.Now())
}

// examplePlayers mirrors the two-player worked example.
func examplePlayers() []model.Player {
	return []model.Player{
		{ID: 1, Name: "One", TeamID: 1, Position: model.Midfielder, Form: 5.0, Minutes: 450, TotalPoints: 45, Cost: 50, Ownership: 2.0, PointsPerGame: 9.0},
		{ID: 2, Name: "Two", TeamID: 2, Position: model.Defender, Form: 1.0, Minutes: 0, TotalPoints: 0, Cost: 40, Ownership: 30.0, PointsPerGame: 0},
	}
}

func TestEngine_RecommendExample(t *testing.T) {
	Convey("Given the two-player example and a round without fixtures", t, func() {
		ctx := context.Background()
		snap := build(examplePlayers(), nil, nil)
		engine := ranking.NewEngine()

		Convey("When recommending the top 1", func() {
			recs := engine.Recommend(ctx, snap, ranking.Query{Round: 10, Limit: 1})

			Convey("Then player 1 is chosen with neutral fixture values", func() {
				So(len(recs), ShouldEqual, 1)
				So(recs[0].PlayerID, ShouldEqual, 1)
				So(recs[0].FixtureDifficulty, ShouldEqual, fixture.NeutralDifficulty)
				So(recs[0].Opponent, ShouldEqual, fixture.UnknownOpponent)
				// 10 + 13.5 + 6.3 - 2.4 + 352.8 + 10.8
				So(recs[0].PredictedScore, ShouldAlmostEqual, 391.0, 1e-9)
			})
		})

		Convey("When recommending both", func() {
			recs := engine.Recommend(ctx, snap, ranking.Query{Round: 10, Limit: 5})

			Convey("Then player 2 also falls back and scores near zero", func() {
				So(len(recs), ShouldEqual, 2)
				So(recs[1].PlayerID, ShouldEqual, 2)
				So(recs[1].Opponent, ShouldEqual, fixture.UnknownOpponent)
				So(recs[1].FixtureDifficulty, ShouldEqual, 3.0)
				So(recs[1].PredictedScore, ShouldAlmostEqual, -0.4, 1e-9)
			})

			Convey("And output rows carry display fields", func() {
				So(recs[0].Name, ShouldEqual, "One")
				So(recs[0].Position, ShouldEqual, "Midfielder")
				So(recs[0].PositionCode, ShouldEqual, "MID")
				So(recs[0].Price, ShouldEqual, 5.0)
				So(recs[0].TotalPoints, ShouldEqual, 45)
			})
		})
	})
}

func manyPlayers() []model.Player {
	return []model.Player{
		{ID: 1, TeamID: 1, Position: model.Goalkeeper, Form: 4, Minutes: 900, TotalPoints: 60, Cost: 55, Ownership: 20, PointsPerGame: 6},
		{ID: 2, TeamID: 1, Position: model.Defender, Form: 6, Minutes: 900, TotalPoints: 80, Cost: 60, Ownership: 40, PointsPerGame: 7},
		{ID: 3, TeamID: 2, Position: model.Goalkeeper, Form: 2, Minutes: 450, TotalPoints: 20, Cost: 45, Ownership: 3, PointsPerGame: 4},
		{ID: 4, TeamID: 2, Position: model.Forward, Form: 8, Minutes: 800, TotalPoints: 90, Cost: 120, Ownership: 60, PointsPerGame: 8},
		{ID: 5, TeamID: 3, Position: model.Midfielder, Form: 3, Minutes: 300, TotalPoints: 25, Cost: 50, Ownership: 1, PointsPerGame: 3},
		{ID: 6, TeamID: 3, Position: 7, Form: 9, Minutes: 900, TotalPoints: 99, Cost: 70, Ownership: 2, PointsPerGame: 9},
	}
}

func TestEngine_RecommendFilters(t *testing.T) {
	Convey("Given a snapshot with mixed positions and fixtures", t, func() {
		ctx := context.Background()
		teams := []model.Team{{ID: 1, Name: "Arsenal"}, {ID: 2, Name: "Brighton"}, {ID: 3, Name: "Chelsea"}}
		fixtures := []model.Fixture{{ID: 1, Round: 4, HomeTeamID: 1, AwayTeamID: 2, HomeDifficulty: 2, AwayDifficulty: 4}}
		snap := build(manyPlayers(), teams, fixtures)
		engine := ranking.NewEngine()

		Convey("When filtering by goalkeeper", func() {
			recs := engine.Recommend(ctx, snap, ranking.Query{Round: 4, Position: model.Goalkeeper, Limit: 10})

			Convey("Then only goalkeepers are returned", func() {
				So(len(recs), ShouldEqual, 2)
				for _, r := range recs {
					So(r.PositionCode, ShouldEqual, "GKP")
				}
			})
		})

		Convey("When applying a budget ceiling", func() {
			recs := engine.Recommend(ctx, snap, ranking.Query{Round: 4, MaxCost: 55, Limit: 10})

			Convey("Then nobody above the ceiling is returned", func() {
				So(len(recs), ShouldEqual, 3)
				for _, r := range recs {
					So(r.Cost, ShouldBeLessThanOrEqualTo, 55)
				}
			})
		})

		Convey("When asking for k rows", func() {
			for _, k := range []int{0, 1, 3, 6, 50} {
				recs := engine.Recommend(ctx, snap, ranking.Query{Round: 4, Limit: k})
				want := k
				if want > 6 {
					want = 6
				}

				So(len(recs), ShouldEqual, want)
				for i := 1; i < len(recs); i++ {
					So(recs[i-1].PredictedScore, ShouldBeGreaterThanOrEqualTo, recs[i].PredictedScore)
				}
			}
		})

		Convey("When a player has a fixture in the round", func() {
			recs := engine.Recommend(ctx, snap, ranking.Query{Round: 4, Position: model.Defender, Limit: 1})

			Convey("Then the resolved difficulty and opponent are used", func() {
				So(recs[0].PlayerID, ShouldEqual, 2)
				So(recs[0].FixtureDifficulty, ShouldEqual, 2.0)
				So(recs[0].Opponent, ShouldEqual, "Brighton (home)")
			})
		})

		Convey("When the snapshot is nil", func() {
			Convey("Then an empty list is returned", func() {
				So(engine.Recommend(ctx, nil, ranking.Query{Limit: 5}), ShouldBeEmpty)
			})
		})
	})
}

func TestEngine_Ties(t *testing.T) {
	Convey("Given identical players", t, func() {
		ctx := context.Background()
		players := []model.Player{
			{ID: 7, Form: 2, PointsPerGame: 2, Ownership: 10},
			{ID: 3, Form: 2, PointsPerGame: 2, Ownership: 10},
			{ID: 5, Form: 2, PointsPerGame: 2, Ownership: 10},
		}
		snap := build(players, nil, nil)

		Convey("Then snapshot order breaks ties", func() {
			recs := ranking.NewEngine().Recommend(ctx, snap, ranking.Query{Round: 1, Limit: 3})
			So(recs[0].PlayerID, ShouldEqual, 7)
			So(recs[1].PlayerID, ShouldEqual, 3)
			So(recs[2].PlayerID, ShouldEqual, 5)
		})
	})
}

func TestEngine_Surprises(t *testing.T) {
	Convey("Given players around the surprise cutoffs", t, func() {
		ctx := context.Background()
		players := []model.Player{
			{ID: 1, TeamID: 1, Form: 5.0, Ownership: 4.99, Minutes: 100, TotalPoints: 10},
			{ID: 2, TeamID: 1, Form: 5.0, Ownership: 5.0},
			{ID: 3, TeamID: 2, Form: 3.0, Ownership: 1.0},
			{ID: 4, TeamID: 2, Form: 3.01, Ownership: 1.0},
		}
		teams := []model.Team{{ID: 1, Name: "Fulham"}, {ID: 2, Name: "Wolves"}}
		snap := build(players, teams, nil)
		engine := ranking.NewEngine()

		Convey("When listing surprises", func() {
			got := engine.Surprises(ctx, snap, 3, 10)
			ids := make([]int, len(got))
			for i, s := range got {
				ids[i] = s.PlayerID
			}

			Convey("Then only strict passes of both cutoffs survive", func() {
				So(ids, ShouldContain, 1)
				So(ids, ShouldContain, 4)
				So(ids, ShouldNotContain, 2)
				So(ids, ShouldNotContain, 3)
			})

			Convey("And scores follow the surprise formula", func() {
				// 12.5 + 120*0.1 - 4.5 + 95.01
				So(got[0].PlayerID, ShouldEqual, 1)
				So(got[0].SurpriseScore, ShouldAlmostEqual, 115.01, 1e-9)
				So(got[0].TeamName, ShouldEqual, "Fulham")
				So(got[1].TeamName, ShouldEqual, "Wolves")
			})
		})

		Convey("When the limit is smaller than the eligible count", func() {
			So(len(engine.Surprises(ctx, snap, 3, 1)), ShouldEqual, 1)
		})
	})

	Convey("Given the two-player example", t, func() {
		ctx := context.Background()
		engine := ranking.NewEngine()

		Convey("When player 1 owns 2 percent", func() {
			got := engine.Surprises(ctx, build(examplePlayers(), nil, nil), 1, 5)

			Convey("Then player 1 is a surprise and player 2 is not", func() {
				So(len(got), ShouldEqual, 1)
				So(got[0].PlayerID, ShouldEqual, 1)
			})
		})

		Convey("When player 1 owns 5 percent", func() {
			players := examplePlayers()
			players[0].Ownership = 5.0
			got := engine.Surprises(ctx, build(players, nil, nil), 1, 5)

			Convey("Then nobody qualifies", func() {
				So(got, ShouldBeEmpty)
			})
		})
	})
}

func TestEngine_Options(t *testing.T) {
	Convey("Given configured weights and cutoffs", t, func() {
		engine := ranking.NewEngine(
			ranking.WithWeightsFromConfig(map[string]float64{"form": 1, "bogus": 99}),
			ranking.WithSurpriseWeightsFromConfig(map[string]float64{"ownership": 0}),
			ranking.WithSurpriseCutoffs(10, 1),
		)
		p := stats.Rated{Player: model.Player{Form: 2, Ownership: 8}}

		Convey("Then only known keys change", func() {
			w := engine.Weights()
			So(w.Form, ShouldEqual, 1.0)
			So(w.Value, ShouldEqual, ranking.DefaultWeights.Value)
		})

		Convey("Then the scores use them", func() {
			So(engine.Predict(p, 3), ShouldAlmostEqual, 2-2.4, 1e-9)
			So(engine.SurpriseScore(p, 0), ShouldAlmostEqual, 5.0, 1e-9)
		})

		Convey("Then the cutoffs move", func() {
			So(engine.IsSurpriseCandidate(p), ShouldBeTrue)
		})
	})

	Convey("Given a zero form cutoff", t, func() {
		engine := ranking.NewEngine(ranking.WithSurpriseCutoffs(5, 0))

		Convey("Then any positive form passes and zero form does not", func() {
			So(engine.IsSurpriseCandidate(stats.Rated{Player: model.Player{Form: 0.5, Ownership: 1}}), ShouldBeTrue)
			So(engine.IsSurpriseCandidate(stats.Rated{Player: model.Player{Form: 0, Ownership: 1}}), ShouldBeFalse)
		})
	})
}

func TestSummarize(t *testing.T) {
	Convey("Given recommendation and surprise lists", t, func() {
		recs := []types.Recommendation{
			{Pick: types.Pick{Price: 5.0}, PredictedScore: 10},
			{Pick: types.Pick{Price: 7.0}, PredictedScore: 20},
		}
		surprises := []types.Surprise{
			{Pick: types.Pick{Ownership: 1.0}},
			{Pick: types.Pick{Ownership: 4.0}},
		}

		Convey("Then averages are computed", func() {
			s := ranking.Summarize(recs, surprises)
			So(s.AveragePrice, ShouldAlmostEqual, 6.0)
			So(s.AveragePredicted, ShouldAlmostEqual, 15.0)
			So(s.AverageSurpriseOwnership, ShouldAlmostEqual, 2.5)
		})

		Convey("Then empty lists average to zero", func() {
			s := ranking.Summarize(nil, nil)
			So(s, ShouldResemble, types.Summary{})
		})
	})
}
