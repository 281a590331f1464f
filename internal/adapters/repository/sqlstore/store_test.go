package sqlstore_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/adapters/repository"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/adapters/repository/sqlstore"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/errs"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"
)

func openStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	s, err := sqlstore.Open(context.Background(), sqlstore.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := sqlstore.Open(context.Background(), "mongo", "x")
	require.Error(t, err)
	require.ErrorIs(t, err, sqlstore.ErrUnknownDriver)
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestPlayers(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	seen := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	c := model.Candidate{
		ID:              "p2",
		Name:            "Jake",
		PrimaryPosition: "SS",
		GradYear:        2026,
		State:           "TX",
		PitchVelo:       model.Float(88),
		TopSchools:      []string{"Rice", "TCU"},
		LastActivity:    seen,
		Engagement:      model.Engagement{RecentViews: 4},
	}
	require.NoError(t, s.UpsertPlayer(ctx, c))
	require.NoError(t, s.UpsertPlayer(ctx, model.Candidate{ID: "p1", PrimaryPosition: "C", GradYear: 2027, Hidden: true}))

	got, err := s.GetPlayer(ctx, "p2")
	require.NoError(t, err)
	require.Equal(t, "Jake", got.Name)
	require.Equal(t, []string{"Rice", "TCU"}, got.TopSchools)
	require.NotNil(t, got.PitchVelo)
	require.InDelta(t, 88, *got.PitchVelo, 1e-9)
	require.Nil(t, got.ExitVelo)
	require.True(t, got.LastActivity.Equal(seen))
	require.Equal(t, 4, got.Engagement.RecentViews)

	c.State = "OK"
	require.NoError(t, s.UpsertPlayer(ctx, c))
	got, err = s.GetPlayer(ctx, "p2")
	require.NoError(t, err)
	require.Equal(t, "OK", got.State)

	all, err := s.ListPlayers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "p1", all[0].ID)
	require.True(t, all[0].Hidden)

	n, err := s.CountPlayers(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	_, err = s.GetPlayer(ctx, "nope")
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestNeeds(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	_, err := s.GetNeeds(ctx, "prog")
	require.ErrorIs(t, err, errs.ErrNotFound)

	n := model.NeedProfile{
		ProgramID:    "prog",
		GradYears:    []int{2026, 2027},
		Positions:    []string{"SS"},
		MinPitchVelo: model.Float(85),
	}
	require.NoError(t, s.PutNeeds(ctx, n))
	n.PreferredStates = []string{"TX"}
	require.NoError(t, s.PutNeeds(ctx, n))

	got, err := s.GetNeeds(ctx, "prog")
	require.NoError(t, err)
	require.Equal(t, []int{2026, 2027}, got.GradYears)
	require.Equal(t, []string{"TX"}, got.PreferredStates)
	require.InDelta(t, 85, *got.MinPitchVelo, 1e-9)
}

func TestPipeline(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	t0 := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

	t.Run("insert then conflict", func(t *testing.T) {
		e, err := s.InsertEntry(ctx, repository.PipelineWrite{
			ID: "e1", ProgramID: "prog", PlayerID: "p1", Status: model.StatusWatchlist, At: t0,
		})
		require.NoError(t, err)
		require.Equal(t, model.StatusWatchlist, e.Status)

		_, err = s.InsertEntry(ctx, repository.PipelineWrite{
			ID: "e2", ProgramID: "prog", PlayerID: "p1", Status: model.StatusHighPriority, At: t0,
		})
		require.ErrorIs(t, err, errs.ErrConflict)
	})

	t.Run("upsert updates in place and keeps updated_at monotonic", func(t *testing.T) {
		e, err := s.UpsertEntry(ctx, repository.PipelineWrite{
			ID: "ignored", ProgramID: "prog", PlayerID: "p1", Status: model.StatusOfferExtended, At: t0.Add(time.Hour),
		})
		require.NoError(t, err)
		require.Equal(t, "e1", e.ID)
		require.Equal(t, model.StatusOfferExtended, e.Status)
		require.True(t, e.UpdatedAt.Equal(t0.Add(time.Hour)))

		e, err = s.UpsertEntry(ctx, repository.PipelineWrite{
			ProgramID: "prog", PlayerID: "p1", Status: model.StatusCommitted, At: t0,
		})
		require.NoError(t, err)
		require.Equal(t, model.StatusCommitted, e.Status)
		require.True(t, e.UpdatedAt.Equal(t0.Add(time.Hour)))
		require.True(t, e.CreatedAt.Equal(t0))
	})

	t.Run("update-only write on a missing pair", func(t *testing.T) {
		role := "SS"
		_, err := s.UpsertEntry(ctx, repository.PipelineWrite{
			ProgramID: "prog", PlayerID: "ghost", PositionRole: &role, At: t0,
		})
		require.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("append note creates then joins", func(t *testing.T) {
		w := repository.PipelineWrite{ID: "e3", ProgramID: "prog", PlayerID: "p3", Status: model.StatusWatchlist, At: t0}
		e, err := s.AppendNote(ctx, w, "first")
		require.NoError(t, err)
		require.Equal(t, "first", e.Notes)

		e, err = s.AppendNote(ctx, w, "second")
		require.NoError(t, err)
		require.Equal(t, "first\n\nsecond", e.Notes)
		require.Equal(t, model.StatusWatchlist, e.Status)
	})

	t.Run("list filters by status", func(t *testing.T) {
		all, err := s.ListEntries(ctx, "prog", model.StatusAll)
		require.NoError(t, err)
		require.Len(t, all, 2)

		watch, err := s.ListEntries(ctx, "prog", model.StatusWatchlist)
		require.NoError(t, err)
		require.Len(t, watch, 1)
		require.Equal(t, "p3", watch[0].PlayerID)

		other, err := s.ListEntries(ctx, "other", model.StatusAll)
		require.NoError(t, err)
		require.Empty(t, other)
	})

	t.Run("delete reports existence", func(t *testing.T) {
		ok, err := s.DeleteEntry(ctx, "prog", "p3")
		require.NoError(t, err)
		require.True(t, ok)
		ok, err = s.DeleteEntry(ctx, "prog", "p3")
		require.NoError(t, err)
		require.False(t, ok)
	})
}

func TestPipelineConcurrentUpserts(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	t0 := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	errCh := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.UpsertEntry(ctx, repository.PipelineWrite{
				ID:        uuid.NewString(),
				ProgramID: "prog",
				PlayerID:  "p1",
				Status:    model.StatusHighPriority,
				At:        t0.Add(time.Duration(i) * time.Minute),
			})
			errCh <- err
		}(i)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}

	all, err := s.ListEntries(ctx, "prog", model.StatusAll)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.True(t, all[0].UpdatedAt.Equal(t0.Add(15*time.Minute)))
}

func TestCalendar(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	now := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	start := "09:00"

	ev := model.CalendarEvent{
		ID:        "ev1",
		ProgramID: "prog",
		Type:      model.EventEvaluation,
		Title:     "Fall Eval",
		Date:      "2025-03-01",
		StartTime: &start,
		PlayerIDs: []string{"p1", "p2"},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.CreateEvent(ctx, ev))
	require.NoError(t, s.CreateEvent(ctx, model.CalendarEvent{
		ID: "ev2", ProgramID: "prog", Type: model.EventCamp, Title: "Camp", Date: "2025-03-10", CreatedAt: now, UpdatedAt: now,
	}))

	got, err := s.GetEvent(ctx, "ev1")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"p1", "p2"}, got.PlayerIDs)
	require.Equal(t, "09:00", *got.StartTime)
	require.Nil(t, got.EndTime)

	camp, err := s.GetEvent(ctx, "ev2")
	require.NoError(t, err)
	require.NotNil(t, camp.PlayerIDs)
	require.Empty(t, camp.PlayerIDs)

	t.Run("window is half open", func(t *testing.T) {
		evs, err := s.ListEvents(ctx, "prog", "2025-03-01", "2025-03-10")
		require.NoError(t, err)
		require.Len(t, evs, 1)
		require.Equal(t, "ev1", evs[0].ID)

		evs, err = s.ListEvents(ctx, "prog", "", "")
		require.NoError(t, err)
		require.Len(t, evs, 2)
	})

	t.Run("update keeps or replaces links", func(t *testing.T) {
		upd := got
		upd.Title = "Spring Eval"
		upd.PlayerIDs = nil
		require.NoError(t, s.UpdateEvent(ctx, upd, false))
		after, err := s.GetEvent(ctx, "ev1")
		require.NoError(t, err)
		require.Equal(t, "Spring Eval", after.Title)
		require.Len(t, after.PlayerIDs, 2)
		require.True(t, after.CreatedAt.Equal(now))

		upd.PlayerIDs = []string{"p3"}
		require.NoError(t, s.UpdateEvent(ctx, upd, true))
		after, err = s.GetEvent(ctx, "ev1")
		require.NoError(t, err)
		require.Equal(t, []string{"p3"}, after.PlayerIDs)

		err = s.UpdateEvent(ctx, model.CalendarEvent{ID: "missing"}, false)
		require.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("player listing follows links", func(t *testing.T) {
		evs, err := s.ListEventsForPlayer(ctx, "prog", "p3")
		require.NoError(t, err)
		require.Len(t, evs, 1)
		require.Equal(t, "ev1", evs[0].ID)

		evs, err = s.ListEventsForPlayer(ctx, "prog", "p1")
		require.NoError(t, err)
		require.Empty(t, evs)
	})

	t.Run("delete cascades links", func(t *testing.T) {
		ok, err := s.DeleteEvent(ctx, "ev1")
		require.NoError(t, err)
		require.True(t, ok)

		evs, err := s.ListEventsForPlayer(ctx, "prog", "p3")
		require.NoError(t, err)
		require.Empty(t, evs)

		ok, err = s.DeleteEvent(ctx, "ev1")
		require.NoError(t, err)
		require.False(t, ok)

		n, err := s.CountEvents(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, n)

		_, err = s.GetEvent(ctx, "ev1")
		require.True(t, errors.Is(err, repository.ErrNotFound))
	})
}
