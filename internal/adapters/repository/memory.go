package repository

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/pkg/metrics"
)

const noteSeparator = "\n\n"

type pairKey struct {
	programID string
	playerID  string
}

// MemoryStore is a mutex-guarded Store. Uniqueness of pipeline pairs is the
// map key; event links live on the event so deletes cascade by construction.
type MemoryStore struct {
	mu      sync.RWMutex
	players map[string]model.Candidate
	needs   map[string]model.NeedProfile
	entries map[pairKey]model.PipelineEntry
	events  map[string]model.CalendarEvent
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		players: make(map[string]model.Candidate),
		needs:   make(map[string]model.NeedProfile),
		entries: make(map[pairKey]model.PipelineEntry),
		events:  make(map[string]model.CalendarEvent),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

func observe(op string, start time.Time) {
	metrics.RecordRepositoryLatency(op, float64(time.Since(start).Microseconds())/1000)
}

// UpsertPlayer stores c, replacing any previous snapshot.
func (s *MemoryStore) UpsertPlayer(ctx context.Context, c model.Candidate) error {
	defer observe("upsert_player", time.Now())
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[c.ID] = cloneCandidate(c)
	return nil
}

// GetPlayer returns one player.
func (s *MemoryStore) GetPlayer(ctx context.Context, id string) (model.Candidate, error) {
	defer observe("get_player", time.Now())
	if err := ctx.Err(); err != nil {
		return model.Candidate{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.players[id]
	if !ok {
		return model.Candidate{}, fmt.Errorf("player %s: %w", id, ErrNotFound)
	}
	return cloneCandidate(c), nil
}

// ListPlayers returns every player ordered by id.
func (s *MemoryStore) ListPlayers(ctx context.Context) ([]model.Candidate, error) {
	defer observe("list_players", time.Now())
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]model.Candidate, 0, len(s.players))
	for _, c := range s.players {
		out = append(out, cloneCandidate(c))
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CountPlayers returns the pool size.
func (s *MemoryStore) CountPlayers(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players), nil
}

// PutNeeds replaces a program's need profile.
func (s *MemoryStore) PutNeeds(ctx context.Context, n model.NeedProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.needs[n.ProgramID] = cloneNeeds(n)
	return nil
}

// GetNeeds returns a program's need profile.
func (s *MemoryStore) GetNeeds(ctx context.Context, programID string) (model.NeedProfile, error) {
	if err := ctx.Err(); err != nil {
		return model.NeedProfile{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.needs[programID]
	if !ok {
		return model.NeedProfile{}, fmt.Errorf("needs of program %s: %w", programID, ErrNotFound)
	}
	return cloneNeeds(n), nil
}

// GetEntry returns one pipeline entry.
func (s *MemoryStore) GetEntry(ctx context.Context, programID, playerID string) (model.PipelineEntry, error) {
	defer observe("get_entry", time.Now())
	if err := ctx.Err(); err != nil {
		return model.PipelineEntry{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[pairKey{programID, playerID}]
	if !ok {
		return model.PipelineEntry{}, fmt.Errorf("pipeline entry %s/%s: %w", programID, playerID, ErrNotFound)
	}
	return e, nil
}

// InsertEntry creates an entry or fails with ErrConflict.
func (s *MemoryStore) InsertEntry(ctx context.Context, w PipelineWrite) (model.PipelineEntry, error) {
	defer observe("insert_entry", time.Now())
	if err := ctx.Err(); err != nil {
		return model.PipelineEntry{}, err
	}
	key := pairKey{w.ProgramID, w.PlayerID}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; ok {
		return model.PipelineEntry{}, fmt.Errorf("pipeline entry %s/%s: %w", w.ProgramID, w.PlayerID, ErrConflict)
	}
	e := newEntry(w)
	s.entries[key] = e
	return e, nil
}

// UpsertEntry creates or updates an entry under the store lock.
func (s *MemoryStore) UpsertEntry(ctx context.Context, w PipelineWrite) (model.PipelineEntry, error) {
	defer observe("upsert_entry", time.Now())
	if err := ctx.Err(); err != nil {
		return model.PipelineEntry{}, err
	}
	key := pairKey{w.ProgramID, w.PlayerID}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		if w.Status == "" {
			return model.PipelineEntry{}, fmt.Errorf("pipeline entry %s/%s: %w", w.ProgramID, w.PlayerID, ErrNotFound)
		}
		e = newEntry(w)
		s.entries[key] = e
		return e, nil
	}
	applyWrite(&e, w)
	s.entries[key] = e
	return e, nil
}

// AppendNote appends a note line, creating the entry when needed.
func (s *MemoryStore) AppendNote(ctx context.Context, w PipelineWrite, line string) (model.PipelineEntry, error) {
	defer observe("append_note", time.Now())
	if err := ctx.Err(); err != nil {
		return model.PipelineEntry{}, err
	}
	key := pairKey{w.ProgramID, w.PlayerID}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		w.Notes = &line
		e = newEntry(w)
		s.entries[key] = e
		return e, nil
	}
	e.Notes = JoinNotes(e.Notes, line)
	e.UpdatedAt = laterOf(e.UpdatedAt, w.At)
	s.entries[key] = e
	return e, nil
}

// DeleteEntry removes an entry if present.
func (s *MemoryStore) DeleteEntry(ctx context.Context, programID, playerID string) (bool, error) {
	defer observe("delete_entry", time.Now())
	if err := ctx.Err(); err != nil {
		return false, err
	}
	key := pairKey{programID, playerID}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[key]
	delete(s.entries, key)
	return ok, nil
}

// ListEntries returns a program's entries filtered by status.
func (s *MemoryStore) ListEntries(ctx context.Context, programID string, status model.Status) ([]model.PipelineEntry, error) {
	defer observe("list_entries", time.Now())
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.PipelineEntry
	for k, e := range s.entries {
		if k.programID != programID {
			continue
		}
		if status != model.StatusAll && e.Status != status {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// CreateEvent stores a new event.
func (s *MemoryStore) CreateEvent(ctx context.Context, ev model.CalendarEvent) error {
	defer observe("create_event", time.Now())
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[ev.ID]; ok {
		return fmt.Errorf("event %s: %w", ev.ID, ErrConflict)
	}
	s.events[ev.ID] = cloneEvent(ev)
	return nil
}

// GetEvent returns one event.
func (s *MemoryStore) GetEvent(ctx context.Context, id string) (model.CalendarEvent, error) {
	defer observe("get_event", time.Now())
	if err := ctx.Err(); err != nil {
		return model.CalendarEvent{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, ok := s.events[id]
	if !ok {
		return model.CalendarEvent{}, fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	return cloneEvent(ev), nil
}

// UpdateEvent overwrites an event, keeping links unless replaceLinks is set.
func (s *MemoryStore) UpdateEvent(ctx context.Context, ev model.CalendarEvent, replaceLinks bool) error {
	defer observe("update_event", time.Now())
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.events[ev.ID]
	if !ok {
		return fmt.Errorf("event %s: %w", ev.ID, ErrNotFound)
	}
	next := cloneEvent(ev)
	if !replaceLinks {
		next.PlayerIDs = slices.Clone(prev.PlayerIDs)
	}
	next.CreatedAt = prev.CreatedAt
	s.events[ev.ID] = next
	return nil
}

// DeleteEvent removes an event and, with it, its links.
func (s *MemoryStore) DeleteEvent(ctx context.Context, id string) (bool, error) {
	defer observe("delete_event", time.Now())
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.events[id]
	delete(s.events, id)
	return ok, nil
}

// ListEvents returns a program's events inside [from, to).
func (s *MemoryStore) ListEvents(ctx context.Context, programID string, from, to model.Date) ([]model.CalendarEvent, error) {
	defer observe("list_events", time.Now())
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.CalendarEvent
	for _, ev := range s.events {
		if ev.ProgramID != programID {
			continue
		}
		if (from != "" && ev.Date < from) || (to != "" && ev.Date >= to) {
			continue
		}
		out = append(out, cloneEvent(ev))
	}
	return out, nil
}

// ListEventsForPlayer returns a program's events linked to a player.
func (s *MemoryStore) ListEventsForPlayer(ctx context.Context, programID, playerID string) ([]model.CalendarEvent, error) {
	defer observe("list_events_for_player", time.Now())
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.CalendarEvent
	for _, ev := range s.events {
		if ev.ProgramID == programID && slices.Contains(ev.PlayerIDs, playerID) {
			out = append(out, cloneEvent(ev))
		}
	}
	return out, nil
}

// CountEvents returns the number of events across programs.
func (s *MemoryStore) CountEvents(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events), nil
}

func newEntry(w PipelineWrite) model.PipelineEntry {
	e := model.PipelineEntry{
		ID:        w.ID,
		ProgramID: w.ProgramID,
		PlayerID:  w.PlayerID,
		Status:    w.Status,
		CreatedAt: w.At,
		UpdatedAt: w.At,
	}
	if w.Notes != nil {
		e.Notes = *w.Notes
	}
	if w.PositionRole != nil {
		e.PositionRole = *w.PositionRole
	}
	return e
}

func applyWrite(e *model.PipelineEntry, w PipelineWrite) {
	if w.Status != "" {
		e.Status = w.Status
	}
	if w.Notes != nil {
		e.Notes = *w.Notes
	}
	if w.PositionRole != nil {
		e.PositionRole = *w.PositionRole
	}
	e.UpdatedAt = laterOf(e.UpdatedAt, w.At)
}

// JoinNotes appends line to existing notes with a blank line between.
func JoinNotes(existing, line string) string {
	if existing == "" {
		return line
	}
	return existing + noteSeparator + line
}

func laterOf(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
