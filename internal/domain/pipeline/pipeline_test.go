package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/adapters/repository"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/errs"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/pipeline"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type recordingEmitter struct {
	mu   sync.Mutex
	seen []model.Activity
}

func (r *recordingEmitter) Enqueue(_ context.Context, a model.Activity) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, a)
	return true
}

func (r *recordingEmitter) kinds() []model.ActivityKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.ActivityKind, len(r.seen))
	for i, a := range r.seen {
		out[i] = a.Kind
	}
	return out
}

type brokenStore struct {
	*repository.MemoryStore
}

func (brokenStore) ListEntries(context.Context, string, model.Status) ([]model.PipelineEntry, error) {
	return nil, errs.WrapKind("test.ListEntries", errs.ErrStorage, errors.New("connection reset"))
}

func players() []model.Candidate {
	return []model.Candidate{
		{ID: "p1", Name: "Ace", PrimaryPosition: "RHP", GradYear: 2026},
		{ID: "p2", Name: "Backstop", PrimaryPosition: "C", GradYear: 2026},
		{ID: "p3", Name: "Slick", PrimaryPosition: "SS", GradYear: 2027},
		{ID: "p4", Name: "Swiss", PrimaryPosition: "DH", GradYear: 2027},
	}
}

func TestUpsertStatus(t *testing.T) {
	Convey("Given a pipeline service over an in-memory store", t, func() {
		ctx := context.Background()
		clock := &fakeClock{now: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
		emitter := &recordingEmitter{}
		store := repository.NewMemoryStore(repository.WithPlayers(players()...))
		svc := pipeline.New(store, store, pipeline.WithClock(clock.Now), pipeline.WithEmitter(emitter))

		Convey("The first upsert creates the entry with the given status", func() {
			e, err := svc.UpsertStatus(ctx, "prog", "p1", model.StatusHighPriority, nil)
			So(err, ShouldBeNil)
			So(e.Status, ShouldEqual, model.StatusHighPriority)
			So(e.ID, ShouldNotBeEmpty)
			So(e.CreatedAt, ShouldEqual, clock.Now())
			So(emitter.kinds(), ShouldResemble, []model.ActivityKind{model.ActivityStatusChanged})

			Convey("Repeating it keeps one entry and refreshes UpdatedAt", func() {
				clock.Advance(time.Minute)
				again, err := svc.UpsertStatus(ctx, "prog", "p1", model.StatusHighPriority, nil)
				So(err, ShouldBeNil)
				So(again.ID, ShouldEqual, e.ID)
				So(again.UpdatedAt.After(e.UpdatedAt), ShouldBeTrue)

				all, err := svc.ListByStatus(ctx, "prog", model.StatusAll)
				So(err, ShouldBeNil)
				So(all, ShouldHaveLength, 1)
			})

			Convey("Any transition is legal, including out of terminal statuses", func() {
				_, err := svc.UpsertStatus(ctx, "prog", "p1", model.StatusCommitted, nil)
				So(err, ShouldBeNil)
				back, err := svc.UpsertStatus(ctx, "prog", "p1", model.StatusWatchlist, nil)
				So(err, ShouldBeNil)
				So(back.Status, ShouldEqual, model.StatusWatchlist)
			})

			Convey("Notes replace the stored notes only when given", func() {
				n := "strong arm"
				withNotes, err := svc.UpsertStatus(ctx, "prog", "p1", model.StatusOfferExtended, &n)
				So(err, ShouldBeNil)
				So(withNotes.Notes, ShouldEqual, "strong arm")

				kept, err := svc.UpsertStatus(ctx, "prog", "p1", model.StatusCommitted, nil)
				So(err, ShouldBeNil)
				So(kept.Notes, ShouldEqual, "strong arm")
			})
		})

		Convey("An unknown player is not found", func() {
			_, err := svc.UpsertStatus(ctx, "prog", "ghost", model.StatusWatchlist, nil)
			So(errors.Is(err, errs.ErrNotFound), ShouldBeTrue)
		})

		Convey("An unknown status is a validation error", func() {
			_, err := svc.UpsertStatus(ctx, "prog", "p1", model.Status("signed"), nil)
			So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)
		})

		Convey("Missing ids are a validation error", func() {
			_, err := svc.UpsertStatus(ctx, "", "p1", model.StatusWatchlist, nil)
			So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)
		})

		Convey("Concurrent upserts of one pair still leave one entry", func() {
			var wg sync.WaitGroup
			for i := 0; i < 32; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					status := model.Statuses()[i%len(model.Statuses())]
					_, _ = svc.UpsertStatus(ctx, "prog", "p2", status, nil)
				}(i)
			}
			wg.Wait()

			all, err := svc.ListByStatus(ctx, "prog", model.StatusAll)
			So(err, ShouldBeNil)
			So(all, ShouldHaveLength, 1)
		})
	})
}

func TestAddAndNotes(t *testing.T) {
	Convey("Given a pipeline service", t, func() {
		ctx := context.Background()
		clock := &fakeClock{now: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
		store := repository.NewMemoryStore(repository.WithPlayers(players()...))
		svc := pipeline.New(store, store, pipeline.WithClock(clock.Now))

		Convey("Add refuses a pair that is already tracked", func() {
			_, err := svc.Add(ctx, "prog", "p3", model.StatusWatchlist, nil)
			So(err, ShouldBeNil)
			_, err = svc.Add(ctx, "prog", "p3", model.StatusHighPriority, nil)
			So(errors.Is(err, errs.ErrConflict), ShouldBeTrue)

			Convey("But another program may track the same player", func() {
				_, err := svc.Add(ctx, "other", "p3", model.StatusWatchlist, nil)
				So(err, ShouldBeNil)
			})
		})

		Convey("AddNote puts an untracked player on the watchlist", func() {
			e, err := svc.AddNote(ctx, "prog", "p4", "  saw him at the showcase ")
			So(err, ShouldBeNil)
			So(e.Status, ShouldEqual, model.StatusWatchlist)
			So(e.Notes, ShouldEqual, "[2025-03-01T10:00:00Z] saw him at the showcase")

			Convey("And later notes are appended with timestamps", func() {
				clock.Advance(24 * time.Hour)
				e, err := svc.AddNote(ctx, "prog", "p4", "called dad")
				So(err, ShouldBeNil)
				lines := strings.Split(e.Notes, "\n\n")
				So(lines, ShouldHaveLength, 2)
				So(lines[1], ShouldEqual, "[2025-03-02T10:00:00Z] called dad")
			})
		})

		Convey("AddNote keeps the current status of a tracked player", func() {
			_, err := svc.UpsertStatus(ctx, "prog", "p1", model.StatusOfferExtended, nil)
			So(err, ShouldBeNil)
			e, err := svc.AddNote(ctx, "prog", "p1", "offer sent")
			So(err, ShouldBeNil)
			So(e.Status, ShouldEqual, model.StatusOfferExtended)
		})

		Convey("An empty note is rejected", func() {
			_, err := svc.AddNote(ctx, "prog", "p1", "   ")
			So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)
		})

		Convey("SetPositionRole needs a tracked player", func() {
			_, err := svc.SetPositionRole(ctx, "prog", "p1", "1b")
			So(errors.Is(err, errs.ErrNotFound), ShouldBeTrue)

			_, err = svc.UpsertStatus(ctx, "prog", "p1", model.StatusWatchlist, nil)
			So(err, ShouldBeNil)
			e, err := svc.SetPositionRole(ctx, "prog", "p1", "1b")
			So(err, ShouldBeNil)
			So(e.PositionRole, ShouldEqual, "1B")
			So(e.Status, ShouldEqual, model.StatusWatchlist)
		})
	})
}

func TestRemoveAndList(t *testing.T) {
	Convey("Given a program tracking several players", t, func() {
		ctx := context.Background()
		clock := &fakeClock{now: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
		emitter := &recordingEmitter{}
		store := repository.NewMemoryStore(repository.WithPlayers(players()...))
		svc := pipeline.New(store, store, pipeline.WithClock(clock.Now), pipeline.WithEmitter(emitter))

		for _, id := range []string{"p3", "p1", "p2"} {
			_, err := svc.UpsertStatus(ctx, "prog", id, model.StatusWatchlist, nil)
			So(err, ShouldBeNil)
		}
		clock.Advance(time.Hour)
		_, err := svc.UpsertStatus(ctx, "prog", "p4", model.StatusCommitted, nil)
		So(err, ShouldBeNil)

		Convey("Listing orders by most recent update then player id", func() {
			all, err := svc.ListByStatus(ctx, "prog", model.StatusAll)
			So(err, ShouldBeNil)
			ids := make([]string, len(all))
			for i, e := range all {
				ids[i] = e.PlayerID
			}
			So(ids, ShouldResemble, []string{"p4", "p1", "p2", "p3"})
		})

		Convey("Listing filters by status", func() {
			committed, err := svc.ListByStatus(ctx, "prog", model.StatusCommitted)
			So(err, ShouldBeNil)
			So(committed, ShouldHaveLength, 1)

			none, err := svc.ListByStatus(ctx, "prog", model.StatusOfferExtended)
			So(err, ShouldBeNil)
			So(none, ShouldNotBeNil)
			So(none, ShouldBeEmpty)

			_, err = svc.ListByStatus(ctx, "prog", model.Status("bogus"))
			So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)
		})

		Convey("Removing leaves other pairs alone", func() {
			So(svc.Remove(ctx, "prog", "p1"), ShouldBeNil)
			all, err := svc.ListByStatus(ctx, "prog", model.StatusAll)
			So(err, ShouldBeNil)
			So(all, ShouldHaveLength, 3)
			So(emitter.kinds()[len(emitter.kinds())-1], ShouldEqual, model.ActivityRemoved)

			Convey("And removing again is a silent no-op", func() {
				before := len(emitter.kinds())
				So(svc.Remove(ctx, "prog", "p1"), ShouldBeNil)
				So(svc.Remove(ctx, "prog", "never-tracked"), ShouldBeNil)
				So(emitter.kinds(), ShouldHaveLength, before)
			})
		})

		Convey("Storage failures keep their kind", func() {
			broken := pipeline.New(store, brokenStore{store})
			_, err := broken.ListByStatus(ctx, "prog", model.StatusAll)
			So(errors.Is(err, errs.ErrStorage), ShouldBeTrue)
		})
	})
}

func TestBoard(t *testing.T) {
	Convey("Given a pipeline with players at different positions", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(repository.WithPlayers(players()...))
		svc := pipeline.New(store, store)

		for _, id := range []string{"p1", "p2", "p3", "p4"} {
			_, err := svc.UpsertStatus(ctx, "prog", id, model.StatusWatchlist, nil)
			So(err, ShouldBeNil)
		}
		_, err := svc.UpsertStatus(ctx, "prog", "p2", model.StatusCommitted, nil)
		So(err, ShouldBeNil)

		Convey("Every slot is listed in display order", func() {
			b, err := svc.Board(ctx, "prog", model.StatusAll)
			So(err, ShouldBeNil)
			So(b.Columns, ShouldHaveLength, len(model.Slots()))
			for i, slot := range model.Slots() {
				So(b.Columns[i].Slot, ShouldEqual, slot)
			}
		})

		Convey("Entries land in the slot of the player's primary position", func() {
			b, err := svc.Board(ctx, "prog", model.StatusAll)
			So(err, ShouldBeNil)
			slotOf := boardIndex(b)
			So(slotOf["p1"], ShouldEqual, model.SlotP)
			So(slotOf["p2"], ShouldEqual, model.SlotC)
			So(slotOf["p3"], ShouldEqual, model.SlotSS)
			So(slotOf["p4"], ShouldEqual, model.SlotUtil)
		})

		Convey("A position role overrides the primary position", func() {
			_, err := svc.SetPositionRole(ctx, "prog", "p3", "2B")
			So(err, ShouldBeNil)
			b, err := svc.Board(ctx, "prog", model.StatusAll)
			So(err, ShouldBeNil)
			So(boardIndex(b)["p3"], ShouldEqual, model.Slot2B)
		})

		Convey("Terminal statuses are flagged", func() {
			b, err := svc.Board(ctx, "prog", model.StatusCommitted)
			So(err, ShouldBeNil)
			var cards []pipeline.Card
			for _, col := range b.Columns {
				cards = append(cards, col.Cards...)
			}
			So(cards, ShouldHaveLength, 1)
			So(cards[0].Terminal, ShouldBeTrue)
			So(cards[0].PlayerName, ShouldEqual, "Backstop")
		})

		Convey("The board reflects position changes at read time", func() {
			So(store.UpsertPlayer(ctx, model.Candidate{ID: "p4", Name: "Swiss", PrimaryPosition: "CF", GradYear: 2027}), ShouldBeNil)
			b, err := svc.Board(ctx, "prog", model.StatusAll)
			So(err, ShouldBeNil)
			So(boardIndex(b)["p4"], ShouldEqual, model.SlotCF)
		})
	})
}

func boardIndex(b pipeline.Board) map[string]model.Slot {
	out := make(map[string]model.Slot)
	for _, col := range b.Columns {
		for _, c := range col.Cards {
			out[c.Entry.PlayerID] = col.Slot
		}
	}
	return out
}

func ExampleService_UpsertStatus() {
	ctx := context.Background()
	store := repository.NewMemoryStore(repository.WithPlayers(model.Candidate{ID: "p1", PrimaryPosition: "SS", GradYear: 2026}))
	svc := pipeline.New(store, store)

	e, _ := svc.UpsertStatus(ctx, "prog", "p1", model.StatusHighPriority, nil)
	fmt.Println(e.Status)
	// Output: high_priority
}
