package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/adapters/repository"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/errs"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var t0 = time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)

func TestMemoryStore_Players(t *testing.T) {
	Convey("Given a memory store seeded with players", t, func() {
		ctx := context.Background()
		s := repository.NewMemoryStore(repository.WithPlayers(
			model.Candidate{ID: "b", PrimaryPosition: "SS", GradYear: 2026, TopSchools: []string{"State"}},
			model.Candidate{ID: "a", PrimaryPosition: "C", GradYear: 2025},
		))

		Convey("When listing", func() {
			list, err := s.ListPlayers(ctx)

			Convey("Then players come back ordered by id", func() {
				So(err, ShouldBeNil)
				So(list, ShouldHaveLength, 2)
				So(list[0].ID, ShouldEqual, "a")
				n, _ := s.CountPlayers(ctx)
				So(n, ShouldEqual, 2)
			})
		})

		Convey("When a caller mutates a returned player", func() {
			p, _ := s.GetPlayer(ctx, "b")
			p.TopSchools[0] = "Other"

			Convey("Then the stored copy is unaffected", func() {
				again, _ := s.GetPlayer(ctx, "b")
				So(again.TopSchools[0], ShouldEqual, "State")
			})
		})

		Convey("When getting an unknown player", func() {
			_, err := s.GetPlayer(ctx, "zzz")

			Convey("Then it is not found", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				So(errors.Is(err, errs.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			Convey("Then the call fails", func() {
				So(s.UpsertPlayer(cctx, model.Candidate{ID: "x"}), ShouldNotBeNil)
			})
		})
	})
}

func TestMemoryStore_Needs(t *testing.T) {
	Convey("Given a memory store", t, func() {
		ctx := context.Background()
		s := repository.NewMemoryStore()

		_, err := s.GetNeeds(ctx, "p1")
		So(errors.Is(err, errs.ErrNotFound), ShouldBeTrue)

		So(s.PutNeeds(ctx, model.NeedProfile{ProgramID: "p1", GradYears: []int{2026}}), ShouldBeNil)
		n, err := s.GetNeeds(ctx, "p1")
		So(err, ShouldBeNil)
		So(n.GradYears, ShouldResemble, []int{2026})
	})
}

func TestMemoryStore_Pipeline(t *testing.T) {
	Convey("Given a memory store", t, func() {
		ctx := context.Background()
		s := repository.NewMemoryStore()
		w := repository.PipelineWrite{ID: "e1", ProgramID: "p1", PlayerID: "x", Status: model.StatusWatchlist, At: t0}

		Convey("When upserting the same pair twice", func() {
			first, err1 := s.UpsertEntry(ctx, w)
			w2 := w
			w2.ID = "e2"
			w2.Status = model.StatusHighPriority
			w2.At = t0.Add(time.Minute)
			second, err2 := s.UpsertEntry(ctx, w2)

			Convey("Then one entry exists with the new status and the original identity", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(second.ID, ShouldEqual, first.ID)
				So(second.Status, ShouldEqual, model.StatusHighPriority)
				So(second.CreatedAt, ShouldEqual, t0)
				So(second.UpdatedAt, ShouldEqual, t0.Add(time.Minute))
				all, _ := s.ListEntries(ctx, "p1", model.StatusAll)
				So(all, ShouldHaveLength, 1)
			})
		})

		Convey("When a write carries an older timestamp", func() {
			_, _ = s.UpsertEntry(ctx, w)
			w2 := w
			w2.At = t0.Add(-time.Hour)
			e, _ := s.UpsertEntry(ctx, w2)

			Convey("Then updated_at does not move backwards", func() {
				So(e.UpdatedAt, ShouldEqual, t0)
			})
		})

		Convey("When inserting an existing pair", func() {
			_, _ = s.InsertEntry(ctx, w)
			_, err := s.InsertEntry(ctx, w)

			Convey("Then it conflicts", func() {
				So(errors.Is(err, errs.ErrConflict), ShouldBeTrue)
			})
		})

		Convey("When an update-only write targets a missing pair", func() {
			role := "SS"
			_, err := s.UpsertEntry(ctx, repository.PipelineWrite{ProgramID: "p1", PlayerID: "ghost", PositionRole: &role, At: t0})

			Convey("Then it is not found", func() {
				So(errors.Is(err, errs.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When appending notes", func() {
			created, _ := s.AppendNote(ctx, w, "first")
			later := w
			later.At = t0.Add(time.Hour)
			appended, _ := s.AppendNote(ctx, later, "second")

			Convey("Then the entry is created once and notes accumulate", func() {
				So(created.Notes, ShouldEqual, "first")
				So(created.Status, ShouldEqual, model.StatusWatchlist)
				So(appended.Notes, ShouldEqual, "first\n\nsecond")
				So(appended.UpdatedAt, ShouldEqual, t0.Add(time.Hour))
			})
		})

		Convey("When deleting", func() {
			_, _ = s.UpsertEntry(ctx, w)
			other := w
			other.PlayerID = "y"
			_, _ = s.UpsertEntry(ctx, other)

			removed, err := s.DeleteEntry(ctx, "p1", "x")
			again, err2 := s.DeleteEntry(ctx, "p1", "x")

			Convey("Then the first delete removes and the second is a no-op", func() {
				So(err, ShouldBeNil)
				So(removed, ShouldBeTrue)
				So(err2, ShouldBeNil)
				So(again, ShouldBeFalse)
				left, _ := s.ListEntries(ctx, "p1", model.StatusAll)
				So(left, ShouldHaveLength, 1)
				So(left[0].PlayerID, ShouldEqual, "y")
			})
		})

		Convey("When many goroutines upsert the same pair", func() {
			var wg sync.WaitGroup
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					wi := w
					wi.ID = fmt.Sprintf("id-%d", i)
					_, _ = s.UpsertEntry(ctx, wi)
				}(i)
			}
			wg.Wait()

			Convey("Then exactly one entry exists", func() {
				all, _ := s.ListEntries(ctx, "p1", model.StatusAll)
				So(all, ShouldHaveLength, 1)
			})
		})

		Convey("When listing by status", func() {
			_, _ = s.UpsertEntry(ctx, w)
			c := w
			c.PlayerID = "z"
			c.Status = model.StatusCommitted
			_, _ = s.UpsertEntry(ctx, c)
			_, _ = s.UpsertEntry(ctx, repository.PipelineWrite{ProgramID: "p2", PlayerID: "x", Status: model.StatusCommitted, At: t0})

			committed, _ := s.ListEntries(ctx, "p1", model.StatusCommitted)

			Convey("Then only the program's matching entries are returned", func() {
				So(committed, ShouldHaveLength, 1)
				So(committed[0].PlayerID, ShouldEqual, "z")
			})
		})
	})
}

func TestMemoryStore_Calendar(t *testing.T) {
	Convey("Given a memory store with an event linking two players", t, func() {
		ctx := context.Background()
		s := repository.NewMemoryStore()
		ev := model.CalendarEvent{
			ID: "ev1", ProgramID: "p1", Type: model.EventEvaluation, Title: "Fall Eval",
			Date: "2025-03-01", PlayerIDs: []string{"p-1", "p-2"}, CreatedAt: t0, UpdatedAt: t0,
		}
		So(s.CreateEvent(ctx, ev), ShouldBeNil)

		Convey("When updating without replacing links", func() {
			upd := ev
			upd.Title = "Fall Evaluation"
			upd.PlayerIDs = nil
			So(s.UpdateEvent(ctx, upd, false), ShouldBeNil)

			Convey("Then links are untouched", func() {
				got, _ := s.GetEvent(ctx, "ev1")
				So(got.Title, ShouldEqual, "Fall Evaluation")
				So(got.PlayerIDs, ShouldResemble, []string{"p-1", "p-2"})
			})
		})

		Convey("When replacing links", func() {
			upd := ev
			upd.PlayerIDs = []string{"p-2"}
			So(s.UpdateEvent(ctx, upd, true), ShouldBeNil)

			Convey("Then p-1 no longer sees it and p-2 still does", func() {
				p1, _ := s.ListEventsForPlayer(ctx, "p1", "p-1")
				p2, _ := s.ListEventsForPlayer(ctx, "p1", "p-2")
				So(p1, ShouldBeEmpty)
				So(p2, ShouldHaveLength, 1)
			})
		})

		Convey("When deleting", func() {
			ok, err := s.DeleteEvent(ctx, "ev1")
			again, _ := s.DeleteEvent(ctx, "ev1")

			Convey("Then links disappear with the event", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(again, ShouldBeFalse)
				p1, _ := s.ListEventsForPlayer(ctx, "p1", "p-1")
				So(p1, ShouldBeEmpty)
				n, _ := s.CountEvents(ctx)
				So(n, ShouldEqual, 0)
			})
		})

		Convey("When listing a date range", func() {
			later := ev
			later.ID = "ev2"
			later.Date = "2025-03-10"
			So(s.CreateEvent(ctx, later), ShouldBeNil)

			in, _ := s.ListEvents(ctx, "p1", "2025-03-01", "2025-03-10")
			open, _ := s.ListEvents(ctx, "p1", "", "")
			other, _ := s.ListEvents(ctx, "p2", "", "")

			Convey("Then the upper bound is exclusive", func() {
				So(in, ShouldHaveLength, 1)
				So(in[0].ID, ShouldEqual, "ev1")
				So(open, ShouldHaveLength, 2)
				So(other, ShouldBeEmpty)
			})
		})

		Convey("When updating a missing event", func() {
			missing := ev
			missing.ID = "nope"

			Convey("Then it is not found", func() {
				So(errors.Is(s.UpdateEvent(ctx, missing, true), errs.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}
