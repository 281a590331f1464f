package calendar_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/adapters/repository"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/calendar"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/errs"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"
)

func str(s string) *string { return &s }

func newService() (*calendar.Service, *repository.MemoryStore) {
	store := repository.NewMemoryStore(repository.WithPlayers(
		model.Candidate{ID: "p1", PrimaryPosition: "SS", GradYear: 2026},
		model.Candidate{ID: "p2", PrimaryPosition: "C", GradYear: 2026},
		model.Candidate{ID: "p3", PrimaryPosition: "CF", GradYear: 2027, Hidden: true},
	))
	now := func() time.Time { return time.Date(2025, 2, 20, 8, 0, 0, 0, time.UTC) }
	return calendar.New(store, store, store, calendar.WithClock(now)), store
}

func TestFallEvalScenario(t *testing.T) {
	Convey("Given an evaluation linked to p1 and p2", t, func() {
		ctx := context.Background()
		svc, _ := newService()

		ev, err := svc.CreateEvent(ctx, "prog", model.EventInput{
			Type:      model.EventEvaluation,
			Title:     "Fall Eval",
			Date:      "2025-03-01",
			PlayerIDs: []string{"p1", "p2"},
		})
		So(err, ShouldBeNil)
		So(ev.PlayerIDs, ShouldResemble, []string{"p1", "p2"})

		Convey("When the links are replaced with only p2", func() {
			_, err := svc.UpdateEvent(ctx, "prog", ev.ID, model.EventPatch{PlayerIDs: &[]string{"p2"}})
			So(err, ShouldBeNil)

			Convey("Then p1 has no events and p2 still has it", func() {
				p1, err := svc.ListForPlayer(ctx, "prog", "p1")
				So(err, ShouldBeNil)
				So(p1, ShouldBeEmpty)

				p2, err := svc.ListForPlayer(ctx, "prog", "p2")
				So(err, ShouldBeNil)
				So(p2, ShouldHaveLength, 1)
				So(p2[0].Title, ShouldEqual, "Fall Eval")
			})
		})

		Convey("When an update omits the links they are kept", func() {
			upd, err := svc.UpdateEvent(ctx, "prog", ev.ID, model.EventPatch{Title: str("Fall Eval II")})
			So(err, ShouldBeNil)
			So(upd.Title, ShouldEqual, "Fall Eval II")
			So(upd.PlayerIDs, ShouldResemble, []string{"p1", "p2"})
		})

		Convey("When an update passes an empty link set they are cleared", func() {
			upd, err := svc.UpdateEvent(ctx, "prog", ev.ID, model.EventPatch{PlayerIDs: &[]string{}})
			So(err, ShouldBeNil)
			So(upd.PlayerIDs, ShouldBeEmpty)

			p2, err := svc.ListForPlayer(ctx, "prog", "p2")
			So(err, ShouldBeNil)
			So(p2, ShouldBeEmpty)
		})

		Convey("When the event is deleted the links go with it", func() {
			ok, err := svc.DeleteEvent(ctx, "prog", ev.ID)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)

			p1, err := svc.ListForPlayer(ctx, "prog", "p1")
			So(err, ShouldBeNil)
			So(p1, ShouldBeEmpty)

			Convey("And deleting again reports false without error", func() {
				ok, err := svc.DeleteEvent(ctx, "prog", ev.ID)
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("Another program can neither see nor change it", func() {
			_, err := svc.UpdateEvent(ctx, "other", ev.ID, model.EventPatch{Title: str("mine")})
			So(errors.Is(err, errs.ErrNotFound), ShouldBeTrue)

			ok, err := svc.DeleteEvent(ctx, "other", ev.ID)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)

			evs, err := svc.ListForPlayer(ctx, "other", "p1")
			So(err, ShouldBeNil)
			So(evs, ShouldBeEmpty)
		})
	})
}

func TestCreateValidation(t *testing.T) {
	Convey("Given a calendar service", t, func() {
		ctx := context.Background()
		svc, store := newService()

		valid := func() model.EventInput {
			return model.EventInput{Type: model.EventCamp, Title: "Winter Camp", Date: "2025-01-15"}
		}

		Convey("Type, title and a real date are required", func() {
			in := valid()
			in.Type = "scrimmage"
			_, err := svc.CreateEvent(ctx, "prog", in)
			So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)

			in = valid()
			in.Title = "  "
			_, err = svc.CreateEvent(ctx, "prog", in)
			So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)

			in = valid()
			in.Date = "2025-02-30"
			_, err = svc.CreateEvent(ctx, "prog", in)
			So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)
		})

		Convey("Times must be HH:MM and end must not precede start", func() {
			in := valid()
			in.StartTime = str("9am")
			_, err := svc.CreateEvent(ctx, "prog", in)
			So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)

			in = valid()
			in.StartTime, in.EndTime = str("14:00"), str("09:30")
			_, err = svc.CreateEvent(ctx, "prog", in)
			So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)

			in.EndTime = str("16:30")
			ev, err := svc.CreateEvent(ctx, "prog", in)
			So(err, ShouldBeNil)
			So(*ev.StartTime, ShouldEqual, "14:00")
		})

		Convey("Opponent event names belong to evaluations only", func() {
			in := valid()
			in.OpponentEventName = "PG Showcase"
			_, err := svc.CreateEvent(ctx, "prog", in)
			So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)

			in.Type = model.EventEvaluation
			ev, err := svc.CreateEvent(ctx, "prog", in)
			So(err, ShouldBeNil)
			So(ev.OpponentEventName, ShouldEqual, "PG Showcase")
		})

		Convey("Player ids are de-duplicated", func() {
			in := valid()
			in.PlayerIDs = []string{"p1", "p1", "p2"}
			ev, err := svc.CreateEvent(ctx, "prog", in)
			So(err, ShouldBeNil)
			So(ev.PlayerIDs, ShouldResemble, []string{"p1", "p2"})
		})

		Convey("Unknown players are not found", func() {
			in := valid()
			in.PlayerIDs = []string{"p1", "ghost"}
			_, err := svc.CreateEvent(ctx, "prog", in)
			So(errors.Is(err, errs.ErrNotFound), ShouldBeTrue)
		})

		Convey("Hidden players need to be in the program's pipeline", func() {
			in := valid()
			in.PlayerIDs = []string{"p3"}
			_, err := svc.CreateEvent(ctx, "prog", in)
			So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)

			_, err = store.UpsertEntry(ctx, repository.PipelineWrite{
				ID: "e1", ProgramID: "prog", PlayerID: "p3", Status: model.StatusWatchlist, At: time.Now(),
			})
			So(err, ShouldBeNil)
			ev, err := svc.CreateEvent(ctx, "prog", in)
			So(err, ShouldBeNil)
			So(ev.PlayerIDs, ShouldResemble, []string{"p3"})
		})

		Convey("A patch can clear a start time", func() {
			in := valid()
			in.StartTime = str("10:00")
			ev, err := svc.CreateEvent(ctx, "prog", in)
			So(err, ShouldBeNil)

			upd, err := svc.UpdateEvent(ctx, "prog", ev.ID, model.EventPatch{StartTime: str("")})
			So(err, ShouldBeNil)
			So(upd.StartTime, ShouldBeNil)
		})

		Convey("A patch that breaks the time order is rejected", func() {
			in := valid()
			in.StartTime, in.EndTime = str("10:00"), str("12:00")
			ev, err := svc.CreateEvent(ctx, "prog", in)
			So(err, ShouldBeNil)

			_, err = svc.UpdateEvent(ctx, "prog", ev.ID, model.EventPatch{EndTime: str("08:00")})
			So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)
		})
	})
}

func TestListUpcoming(t *testing.T) {
	Convey("Given events spread over a few weeks", t, func() {
		ctx := context.Background()
		svc, _ := newService()

		create := func(title, date string, start *string) {
			_, err := svc.CreateEvent(ctx, "prog", model.EventInput{Type: model.EventVisit, Title: title, Date: date, StartTime: start})
			So(err, ShouldBeNil)
		}
		create("yesterday", "2025-02-28", nil)
		create("today late", "2025-03-01", str("15:00"))
		create("today early", "2025-03-01", str("08:00"))
		create("today untimed", "2025-03-01", nil)
		create("next week", "2025-03-08", nil)
		create("edge", "2025-03-15", nil)

		Convey("The window includes today and excludes today+days", func() {
			evs, err := svc.ListUpcoming(ctx, "prog", "2025-03-01", 14)
			So(err, ShouldBeNil)
			titles := make([]string, len(evs))
			for i, ev := range evs {
				titles[i] = ev.Title
			}
			So(titles, ShouldResemble, []string{"today untimed", "today early", "today late", "next week"})
		})

		Convey("A one-day window covers today only", func() {
			evs, err := svc.ListUpcoming(ctx, "prog", "2025-03-01", 1)
			So(err, ShouldBeNil)
			So(evs, ShouldHaveLength, 3)
		})

		Convey("Nothing upcoming yields an empty list", func() {
			evs, err := svc.ListUpcoming(ctx, "prog", "2026-01-01", 7)
			So(err, ShouldBeNil)
			So(evs, ShouldNotBeNil)
			So(evs, ShouldBeEmpty)
		})

		Convey("Bad arguments are validation errors", func() {
			_, err := svc.ListUpcoming(ctx, "prog", "2025-03-01", 0)
			So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)

			_, err = svc.ListUpcoming(ctx, "prog", "03/01/2025", 7)
			So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)
		})

		Convey("The longest window still covers every later event", func() {
			evs, err := svc.ListUpcoming(ctx, "prog", "2025-03-01", calendar.MaxWindowDays)
			So(err, ShouldBeNil)
			So(evs, ShouldHaveLength, 5)
		})

		Convey("A window past the cap is rejected instead of wrapping", func() {
			_, err := svc.ListUpcoming(ctx, "prog", "2025-03-01", 3000000)
			So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)
		})
	})
}

func TestList(t *testing.T) {
	Convey("Given events in the past and far ahead", t, func() {
		ctx := context.Background()
		svc, _ := newService()

		for _, in := range []model.EventInput{
			{Type: model.EventCamp, Title: "next year", Date: "2026-06-01"},
			{Type: model.EventVisit, Title: "last fall", Date: "2024-10-12"},
			{Type: model.EventEvaluation, Title: "spring", Date: "2025-03-01", StartTime: str("09:00")},
		} {
			_, err := svc.CreateEvent(ctx, "prog", in)
			So(err, ShouldBeNil)
		}
		_, err := svc.CreateEvent(ctx, "other", model.EventInput{Type: model.EventVisit, Title: "elsewhere", Date: "2025-03-01"})
		So(err, ShouldBeNil)

		Convey("Then List returns all of the program's events in date order", func() {
			evs, err := svc.List(ctx, "prog")
			So(err, ShouldBeNil)
			titles := make([]string, len(evs))
			for i, ev := range evs {
				titles[i] = ev.Title
			}
			So(titles, ShouldResemble, []string{"last fall", "spring", "next year"})
		})

		Convey("Then a program without events gets an empty list", func() {
			evs, err := svc.List(ctx, "empty")
			So(err, ShouldBeNil)
			So(evs, ShouldNotBeNil)
			So(evs, ShouldBeEmpty)
		})

		Convey("Then a missing program id is a validation error", func() {
			_, err := svc.List(ctx, "")
			So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)
		})
	})
}

func TestSort(t *testing.T) {
	Convey("Sort orders by date, untimed first, then id", t, func() {
		evs := []model.CalendarEvent{
			{ID: "b", Date: "2025-03-02"},
			{ID: "c", Date: "2025-03-01", StartTime: str("09:00")},
			{ID: "z", Date: "2025-03-01"},
			{ID: "a", Date: "2025-03-01", StartTime: str("09:00")},
		}
		out := calendar.Sort(evs)
		ids := []string{out[0].ID, out[1].ID, out[2].ID, out[3].ID}
		So(ids, ShouldResemble, []string{"z", "a", "c", "b"})
		So(calendar.Sort(nil), ShouldNotBeNil)
	})
}
