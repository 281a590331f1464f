// Package calendar schedules program events and links them to players.
//
// Links are replace-not-merge: an update either leaves them untouched or
// swaps the whole set. Deleting an event removes its links with it.
package calendar

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/adapters/repository"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/errs"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/pkg/logger"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/pkg/metrics"
)

// Emitter accepts activity records for asynchronous delivery.
type Emitter interface {
	Enqueue(ctx context.Context, a model.Activity) bool
}

// Service implements calendar operations.
type Service struct {
	events   repository.CalendarStore
	players  repository.PlayerStore
	pipeline repository.PipelineStore
	emitter  Emitter
	now      func() time.Time
	newID    func() string
	log      logger.Logger
}

// New creates a calendar service. The pipeline store backs the hidden-player
// visibility check.
func New(events repository.CalendarStore, players repository.PlayerStore, pipeline repository.PipelineStore, opts ...Option) *Service {
	s := &Service{
		events:   events,
		players:  players,
		pipeline: pipeline,
		now:      time.Now,
		newID:    uuid.NewString,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateEvent validates in and stores a new event.
func (s *Service) CreateEvent(ctx context.Context, programID string, in model.EventInput) (model.CalendarEvent, error) {
	const op = "calendar.CreateEvent"
	if programID == "" {
		return model.CalendarEvent{}, errs.Validationf(op, "program id is required")
	}
	date, err := model.ParseDate(in.Date)
	if err != nil {
		return model.CalendarEvent{}, errs.Wrap(op, err)
	}
	now := s.now()
	ev := model.CalendarEvent{
		ID:                s.newID(),
		ProgramID:         programID,
		Type:              model.EventType(strings.ToLower(strings.TrimSpace(string(in.Type)))),
		Title:             strings.TrimSpace(in.Title),
		Date:              date,
		StartTime:         in.StartTime,
		EndTime:           in.EndTime,
		Location:          in.Location,
		Notes:             in.Notes,
		CampEventID:       in.CampEventID,
		OpponentEventName: in.OpponentEventName,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := normalize(op, &ev); err != nil {
		return model.CalendarEvent{}, err
	}
	ids, err := s.resolvePlayers(ctx, op, programID, in.PlayerIDs)
	if err != nil {
		return model.CalendarEvent{}, err
	}
	ev.PlayerIDs = ids

	if err := s.events.CreateEvent(ctx, ev); err != nil {
		return model.CalendarEvent{}, errs.Wrap(op, err)
	}
	metrics.RecordCalendarMutation("create")
	s.emit(ctx, model.ActivityEventCreated, ev)
	return ev, nil
}

// UpdateEvent applies patch to an event of programID. A nil patch.PlayerIDs
// keeps the links; any non-nil slice replaces them.
func (s *Service) UpdateEvent(ctx context.Context, programID, eventID string, patch model.EventPatch) (model.CalendarEvent, error) {
	const op = "calendar.UpdateEvent"
	ev, err := s.owned(ctx, op, programID, eventID)
	if err != nil {
		return model.CalendarEvent{}, err
	}

	if patch.Type != nil {
		ev.Type = model.EventType(strings.ToLower(strings.TrimSpace(string(*patch.Type))))
	}
	if patch.Title != nil {
		ev.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Date != nil {
		d, err := model.ParseDate(*patch.Date)
		if err != nil {
			return model.CalendarEvent{}, errs.Wrap(op, err)
		}
		ev.Date = d
	}
	if patch.StartTime != nil {
		ev.StartTime = clearable(*patch.StartTime)
	}
	if patch.EndTime != nil {
		ev.EndTime = clearable(*patch.EndTime)
	}
	if patch.Location != nil {
		ev.Location = *patch.Location
	}
	if patch.Notes != nil {
		ev.Notes = *patch.Notes
	}
	if patch.CampEventID != nil {
		ev.CampEventID = *patch.CampEventID
	}
	if patch.OpponentEventName != nil {
		ev.OpponentEventName = *patch.OpponentEventName
	}
	if err := normalize(op, &ev); err != nil {
		return model.CalendarEvent{}, err
	}

	replace := patch.PlayerIDs != nil
	if replace {
		ids, err := s.resolvePlayers(ctx, op, programID, *patch.PlayerIDs)
		if err != nil {
			return model.CalendarEvent{}, err
		}
		ev.PlayerIDs = ids
	}
	if now := s.now(); now.After(ev.UpdatedAt) {
		ev.UpdatedAt = now
	}

	if err := s.events.UpdateEvent(ctx, ev, replace); err != nil {
		return model.CalendarEvent{}, errs.Wrap(op, err)
	}
	metrics.RecordCalendarMutation("update")
	s.emit(ctx, model.ActivityEventUpdated, ev)
	return ev, nil
}

// DeleteEvent removes an event and its links. Deleting an absent event
// reports false without error.
func (s *Service) DeleteEvent(ctx context.Context, programID, eventID string) (bool, error) {
	const op = "calendar.DeleteEvent"
	ev, err := s.owned(ctx, op, programID, eventID)
	if errors.Is(err, errs.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	deleted, err := s.events.DeleteEvent(ctx, eventID)
	if err != nil {
		return false, errs.Wrap(op, err)
	}
	if deleted {
		metrics.RecordCalendarMutation("delete")
		s.emit(ctx, model.ActivityEventDeleted, ev)
	}
	return deleted, nil
}

// MaxWindowDays caps the look-ahead of ListUpcoming. Dates past year 9999
// no longer sort lexically.
const MaxWindowDays = 3650

// List returns every event of the program, past and future.
func (s *Service) List(ctx context.Context, programID string) ([]model.CalendarEvent, error) {
	const op = "calendar.List"
	if programID == "" {
		return nil, errs.Validationf(op, "program id is required")
	}
	out, err := s.events.ListEvents(ctx, programID, "", "")
	if err != nil {
		return nil, errs.Wrap(op, err)
	}
	return Sort(out), nil
}

// ListUpcoming returns events with today <= date < today+withinDays.
func (s *Service) ListUpcoming(ctx context.Context, programID string, today model.Date, withinDays int) ([]model.CalendarEvent, error) {
	const op = "calendar.ListUpcoming"
	if programID == "" {
		return nil, errs.Validationf(op, "program id is required")
	}
	if withinDays <= 0 || withinDays > MaxWindowDays {
		return nil, errs.Validationf(op, "within days must be in [1, %d], got %d", MaxWindowDays, withinDays)
	}
	from, err := model.ParseDate(string(today))
	if err != nil {
		return nil, errs.Wrap(op, err)
	}
	out, err := s.events.ListEvents(ctx, programID, from, from.AddDays(withinDays))
	if err != nil {
		return nil, errs.Wrap(op, err)
	}
	return Sort(out), nil
}

// ListForPlayer returns every event of the program linked to playerID.
func (s *Service) ListForPlayer(ctx context.Context, programID, playerID string) ([]model.CalendarEvent, error) {
	const op = "calendar.ListForPlayer"
	if programID == "" || playerID == "" {
		return nil, errs.Validationf(op, "program id and player id are required")
	}
	out, err := s.events.ListEventsForPlayer(ctx, programID, playerID)
	if err != nil {
		return nil, errs.Wrap(op, err)
	}
	return Sort(out), nil
}

// Sort orders events by date, then start time with untimed events first, then id.
// A nil slice comes back empty.
func Sort(evs []model.CalendarEvent) []model.CalendarEvent {
	if evs == nil {
		return []model.CalendarEvent{}
	}
	sort.SliceStable(evs, func(i, j int) bool {
		a, b := evs[i], evs[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		as, bs := clockKey(a.StartTime), clockKey(b.StartTime)
		if as != bs {
			return as < bs
		}
		return a.ID < b.ID
	})
	return evs
}

// clockKey sorts nil before any "HH:MM".
func clockKey(t *string) string {
	if t == nil {
		return ""
	}
	return *t
}

func clearable(v string) *string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}

// normalize validates the scalar fields of ev in place.
func normalize(op string, ev *model.CalendarEvent) error {
	if !ev.Type.Valid() {
		return errs.Validationf(op, "unknown event type %q", ev.Type)
	}
	if ev.Title == "" {
		return errs.Validationf(op, "title is required")
	}
	for _, t := range []**string{&ev.StartTime, &ev.EndTime} {
		if *t == nil {
			continue
		}
		v, err := model.ParseClock(**t)
		if err != nil {
			return errs.Wrap(op, err)
		}
		*t = &v
	}
	if ev.StartTime != nil && ev.EndTime != nil && *ev.EndTime < *ev.StartTime {
		return errs.Validationf(op, "end time %s is before start time %s", *ev.EndTime, *ev.StartTime)
	}
	ev.OpponentEventName = strings.TrimSpace(ev.OpponentEventName)
	if ev.OpponentEventName != "" && ev.Type != model.EventEvaluation {
		return errs.Validationf(op, "opponent event name is only valid for evaluations")
	}
	return nil
}

// owned loads an event and hides events of other programs.
func (s *Service) owned(ctx context.Context, op, programID, eventID string) (model.CalendarEvent, error) {
	if programID == "" || eventID == "" {
		return model.CalendarEvent{}, errs.Validationf(op, "program id and event id are required")
	}
	ev, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return model.CalendarEvent{}, errs.Wrap(op, err)
	}
	if ev.ProgramID != programID {
		return model.CalendarEvent{}, errs.NotFoundf(op, "event %s", eventID)
	}
	return ev, nil
}

// resolvePlayers de-duplicates ids and checks each is visible to the program.
// Hidden players are visible only when the program already tracks them.
func (s *Service) resolvePlayers(ctx context.Context, op, programID string, ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if id == "" {
			return nil, errs.Validationf(op, "player id must not be empty")
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		p, err := s.players.GetPlayer(ctx, id)
		if err != nil {
			return nil, errs.Wrap(op, err)
		}
		if p.Hidden {
			_, err := s.pipeline.GetEntry(ctx, programID, id)
			if errors.Is(err, errs.ErrNotFound) {
				return nil, errs.Validationf(op, "player %s is not visible to program %s", id, programID)
			}
			if err != nil {
				return nil, errs.Wrap(op, err)
			}
		}
		out = append(out, id)
	}
	return out, nil
}

func (s *Service) emit(ctx context.Context, kind model.ActivityKind, ev model.CalendarEvent) {
	if s.emitter == nil {
		return
	}
	a := model.Activity{
		ID:        s.newID(),
		Kind:      kind,
		ProgramID: ev.ProgramID,
		PlayerIDs: ev.PlayerIDs,
		EventID:   ev.ID,
		At:        s.now(),
	}
	if !s.emitter.Enqueue(ctx, a) {
		s.log.Warn(ctx, "activity dropped",
			logger.String("kind", string(kind)),
			logger.String("event_id", ev.ID))
	}
}
