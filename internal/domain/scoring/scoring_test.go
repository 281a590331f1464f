package scoring_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/errs"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func candidate(id, pos string, year int) model.Candidate {
	return model.Candidate{ID: id, PrimaryPosition: pos, GradYear: year}
}

func TestScorer_Score(t *testing.T) {
	Convey("Given a scorer with default weights", t, func() {
		s := scoring.New()
		need := model.NeedProfile{
			ProgramID:   "p1",
			GradYears:   []int{2026},
			Positions:   []string{"SS"},
			MinExitVelo: model.Float(90),
		}

		Convey("When a candidate satisfies every constraint", func() {
			c := candidate("A", "ss", 2026)
			c.ExitVelo = model.Float(92)
			res, err := s.Score(need, c)

			Convey("Then it should sum the weights and explain why", func() {
				So(err, ShouldBeNil)
				So(res.Score, ShouldEqual, 70)
				So(res.Reasons, ShouldHaveLength, 3)
				So(res.Reasons[0].Kind, ShouldEqual, model.ReasonPosition)
				So(res.Reasons[1].Kind, ShouldEqual, model.ReasonGradYear)
				So(res.Reasons[2].Value, ShouldEqual, "92 mph")
			})
		})

		Convey("When a candidate matches only on a secondary position", func() {
			c := candidate("B", "2B", 2025)
			c.SecondaryPosition = "SS"
			res, err := s.Score(need, c)

			Convey("Then it should earn the secondary weight", func() {
				So(err, ShouldBeNil)
				So(res.Score, ShouldEqual, 15)
				So(res.Reasons[0].Kind, ShouldEqual, model.ReasonSecondaryPosition)
			})
		})

		Convey("When a candidate matches nothing", func() {
			res, err := s.Score(need, candidate("C", "C", 2030))

			Convey("Then it should score zero with no reasons, not fail", func() {
				So(err, ShouldBeNil)
				So(res.Score, ShouldEqual, 0)
				So(res.Reasons, ShouldBeEmpty)
			})
		})

		Convey("When the candidate lacks an optional metric", func() {
			res, err := s.Score(need, candidate("D", "SS", 2026))

			Convey("Then the threshold should simply not score", func() {
				So(err, ShouldBeNil)
				So(res.Score, ShouldEqual, 55)
			})
		})

		Convey("When every constraint fires", func() {
			full := model.NeedProfile{
				ProgramName:     "State U",
				GradYears:       []int{2026},
				Positions:       []string{"RHP"},
				PreferredStates: []string{"tx"},
				MinPitchVelo:    model.Float(88),
				MinExitVelo:     model.Float(85),
				MaxSprintTime:   model.Float(7.0),
				MinHeight:       model.Float(70),
				MaxHeight:       model.Float(78),
			}
			c := candidate("E", "RHP", 2026)
			c.State = "TX"
			c.PitchVelo = model.Float(91)
			c.ExitVelo = model.Float(88)
			c.SprintTime = model.Float(6.8)
			c.Height = model.Float(74)
			c.TopSchools = []string{"state u"}
			res, err := s.Score(full, c)

			Convey("Then the score should be capped at 100 and reasons truncated", func() {
				So(err, ShouldBeNil)
				So(res.Score, ShouldEqual, scoring.MaxScore)
				So(res.Reasons, ShouldHaveLength, 3)
			})
		})

		Convey("When the input is structurally invalid", func() {
			_, errNeed := s.Score(model.NeedProfile{MinExitVelo: model.Float(-1)}, candidate("A", "SS", 2026))
			_, errCand := s.Score(need, candidate("A", "", 2026))
			bad := candidate("A", "SS", 2026)
			bad.SprintTime = model.Float(-6.5)
			_, errMetric := s.Score(need, bad)

			Convey("Then it should return validation errors", func() {
				So(errors.Is(errNeed, errs.ErrValidation), ShouldBeTrue)
				So(errors.Is(errCand, errs.ErrValidation), ShouldBeTrue)
				So(errors.Is(errMetric, errs.ErrValidation), ShouldBeTrue)
			})
		})

		Convey("When scoring the same pair repeatedly from many goroutines", func() {
			c := candidate("A", "SS", 2026)
			c.ExitVelo = model.Float(95)
			first, _ := s.Score(need, c)
			var wg sync.WaitGroup
			results := make([]model.MatchResult, 32)
			for i := range results {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					results[i], _ = s.Score(need, c)
				}(i)
			}
			wg.Wait()

			Convey("Then every result should be identical", func() {
				for _, r := range results {
					So(r, ShouldResemble, first)
				}
			})
		})
	})
}

func TestScorer_Monotonic(t *testing.T) {
	Convey("Given two candidates where one satisfies a superset of constraints", t, func() {
		s := scoring.New()
		need := model.NeedProfile{
			GradYears:       []int{2026},
			Positions:       []string{"CF"},
			PreferredStates: []string{"GA"},
			MaxSprintTime:   model.Float(6.9),
		}
		base := candidate("x", "CF", 2026)
		better := base
		better.ID = "y"
		better.State = "GA"
		better.SprintTime = model.Float(6.6)

		a, _ := s.Score(need, base)
		b, _ := s.Score(need, better)

		So(b.Score, ShouldBeGreaterThanOrEqualTo, a.Score)
	})
}

func TestScorer_Rank(t *testing.T) {
	Convey("Given a need for a 2026 SS with exit velo 90+", t, func() {
		s := scoring.New()
		need := model.NeedProfile{GradYears: []int{2026}, Positions: []string{"SS"}, MinExitVelo: model.Float(90)}
		a := candidate("A", "SS", 2026)
		a.ExitVelo = model.Float(92)
		b := candidate("B", "SS", 2025)
		b.ExitVelo = model.Float(92)
		c := candidate("C", "2B", 2025)
		c.ExitVelo = model.Float(80)

		Convey("When ranking the pool", func() {
			out, err := s.Rank(need, []model.Candidate{c, b, a})

			Convey("Then A should outrank B which outranks C", func() {
				So(err, ShouldBeNil)
				So(out, ShouldHaveLength, 3)
				So(out[0].CandidateID, ShouldEqual, "A")
				So(out[1].CandidateID, ShouldEqual, "B")
				So(out[2].CandidateID, ShouldEqual, "C")
				So(out[0].Rank, ShouldEqual, 1)
				So(out[2].Rank, ShouldEqual, 3)
				So(out[2].Score, ShouldEqual, 0)
			})
		})

		Convey("When scores tie", func() {
			now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
			old := candidate("old", "SS", 2026)
			old.LastActivity = now.AddDate(0, 0, -30)
			fresh := candidate("fresh", "SS", 2026)
			fresh.LastActivity = now
			z := candidate("z", "SS", 2026)
			y := candidate("y", "SS", 2026)

			out, err := s.Rank(need, []model.Candidate{z, old, y, fresh})

			Convey("Then recent activity wins and ids break the rest", func() {
				So(err, ShouldBeNil)
				ids := []string{out[0].CandidateID, out[1].CandidateID, out[2].CandidateID, out[3].CandidateID}
				So(ids, ShouldResemble, []string{"fresh", "old", "y", "z"})
			})
		})

		Convey("When the need profile is empty", func() {
			_, err := s.Rank(model.NeedProfile{ProgramID: "p1"}, []model.Candidate{a})

			Convey("Then it should report insufficient needs", func() {
				So(scoring.IsInsufficientNeeds(err), ShouldBeTrue)
				So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)
			})
		})

		Convey("When one candidate is invalid", func() {
			_, err := s.Rank(need, []model.Candidate{a, candidate("bad", "SS", 0)})

			Convey("Then the whole ranking should fail validation", func() {
				So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "bad")
			})
		})

		Convey("When the pool is empty", func() {
			out, err := s.Rank(need, nil)

			Convey("Then it should return an empty ranking", func() {
				So(err, ShouldBeNil)
				So(out, ShouldBeEmpty)
			})
		})
	})
}

func TestScorer_Options(t *testing.T) {
	Convey("Given custom weights", t, func() {
		s := scoring.New(
			scoring.WithWeights(map[string]float64{"grad_year": 50, "unknown": 99, "state": -4}),
			scoring.WithMaxReasons(1),
		)

		Convey("Then known kinds are overridden and the rest ignored", func() {
			So(s.Weight(model.ReasonGradYear), ShouldEqual, 50)
			So(s.Weight(model.ReasonState), ShouldEqual, 20)

			res, err := s.Score(model.NeedProfile{GradYears: []int{2026}, Positions: []string{"C"}}, candidate("a", "C", 2026))
			So(err, ShouldBeNil)
			So(res.Score, ShouldEqual, 80)
			So(res.Reasons, ShouldHaveLength, 1)
			So(res.Reasons[0].Kind, ShouldEqual, model.ReasonGradYear)
		})

		Convey("When a weight is zeroed", func() {
			z := scoring.New(scoring.WithWeights(map[string]float64{"position": 0}))
			res, _ := z.Score(model.NeedProfile{Positions: []string{"C"}}, candidate("a", "C", 2026))

			Convey("Then the constraint neither scores nor explains", func() {
				So(res.Score, ShouldEqual, 0)
				So(res.Reasons, ShouldBeEmpty)
			})
		})
	})
}

func TestScorer_Trending(t *testing.T) {
	Convey("Given candidates with engagement", t, func() {
		s := scoring.New()
		now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

		hot := candidate("hot", "SS", 2026)
		hot.Engagement = model.Engagement{RecentViews: 10, WatchlistAdds: 2, RecentUpdates: 1}
		hot.LastActivity = now.Add(-36 * time.Hour)
		hot.HasVideo = true

		cold := candidate("cold", "C", 2026)
		cold.Engagement = model.Engagement{RecentViews: 2}
		cold.LastActivity = now.AddDate(0, 0, -60)

		hidden := candidate("hidden", "P", 2026)
		hidden.Hidden = true
		hidden.Engagement.RecentViews = 1000

		Convey("When computing a single score", func() {
			Convey("Then views, adds, updates, recency and video should add up", func() {
				// 15 + 6 + 2 + (14-1)*2 + 10
				So(s.Trending(hot, now), ShouldEqual, 59)
				So(s.Trending(cold, now), ShouldEqual, 3)
			})
		})

		Convey("When ranking", func() {
			out := s.RankTrending([]model.Candidate{cold, hidden, hot}, now, 10)

			Convey("Then hidden candidates are skipped and order is by score", func() {
				So(out, ShouldHaveLength, 2)
				So(out[0].CandidateID, ShouldEqual, "hot")
				So(out[0].Rank, ShouldEqual, 1)
				So(out[1].CandidateID, ShouldEqual, "cold")
			})

			Convey("And limit should truncate", func() {
				So(s.RankTrending([]model.Candidate{cold, hot}, now, 1), ShouldHaveLength, 1)
			})
		})
	})
}
