// Package pipeline tracks where each player stands in a program's recruiting
// funnel. One entry exists per (program, player); the store enforces that.
package pipeline

import (
	"context"
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

// Service implements pipeline operations on top of the repository.
type Service struct {
	players repository.PlayerStore
	entries repository.PipelineStore
	emitter Emitter
	now     func() time.Time
	newID   func() string
	log     logger.Logger
}

// New creates a pipeline service.
func New(players repository.PlayerStore, entries repository.PipelineStore, opts ...Option) *Service {
	s := &Service{
		players: players,
		entries: entries,
		now:     time.Now,
		newID:   uuid.NewString,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UpsertStatus moves a player to status, creating the entry on first touch.
// A non-nil notes replaces the stored notes.
func (s *Service) UpsertStatus(ctx context.Context, programID, playerID string, status model.Status, notes *string) (model.PipelineEntry, error) {
	const op = "pipeline.UpsertStatus"
	if err := s.checkPair(ctx, op, programID, playerID); err != nil {
		return model.PipelineEntry{}, err
	}
	if !status.Valid() {
		return model.PipelineEntry{}, errs.Validationf(op, "unknown status %q", status)
	}

	e, err := s.entries.UpsertEntry(ctx, repository.PipelineWrite{
		ID:        s.newID(),
		ProgramID: programID,
		PlayerID:  playerID,
		Status:    status,
		Notes:     notes,
		At:        s.now(),
	})
	if err != nil {
		return model.PipelineEntry{}, errs.Wrap(op, err)
	}
	metrics.RecordPipelineTransition(string(status))
	s.emit(ctx, model.ActivityStatusChanged, e)
	return e, nil
}

// Add creates an entry and fails with a conflict when the pair is already tracked.
func (s *Service) Add(ctx context.Context, programID, playerID string, status model.Status, notes *string) (model.PipelineEntry, error) {
	const op = "pipeline.Add"
	if err := s.checkPair(ctx, op, programID, playerID); err != nil {
		return model.PipelineEntry{}, err
	}
	if !status.Valid() {
		return model.PipelineEntry{}, errs.Validationf(op, "unknown status %q", status)
	}

	e, err := s.entries.InsertEntry(ctx, repository.PipelineWrite{
		ID:        s.newID(),
		ProgramID: programID,
		PlayerID:  playerID,
		Status:    status,
		Notes:     notes,
		At:        s.now(),
	})
	if err != nil {
		return model.PipelineEntry{}, errs.Wrap(op, err)
	}
	metrics.RecordPipelineTransition(string(status))
	s.emit(ctx, model.ActivityStatusChanged, e)
	return e, nil
}

// AddNote appends a timestamped line to the entry's notes. Untracked players
// land on the watchlist.
func (s *Service) AddNote(ctx context.Context, programID, playerID, note string) (model.PipelineEntry, error) {
	const op = "pipeline.AddNote"
	note = strings.TrimSpace(note)
	if note == "" {
		return model.PipelineEntry{}, errs.Validationf(op, "note must not be empty")
	}
	if err := s.checkPair(ctx, op, programID, playerID); err != nil {
		return model.PipelineEntry{}, err
	}

	at := s.now()
	line := "[" + at.UTC().Format(time.RFC3339) + "] " + note
	e, err := s.entries.AppendNote(ctx, repository.PipelineWrite{
		ID:        s.newID(),
		ProgramID: programID,
		PlayerID:  playerID,
		Status:    model.StatusWatchlist,
		At:        at,
	}, line)
	if err != nil {
		return model.PipelineEntry{}, errs.Wrap(op, err)
	}
	metrics.RecordPipelineNote()
	s.emit(ctx, model.ActivityNoteAdded, e)
	return e, nil
}

// SetPositionRole pins the board slot of a tracked player. An empty role
// falls back to the player's primary position.
func (s *Service) SetPositionRole(ctx context.Context, programID, playerID, role string) (model.PipelineEntry, error) {
	const op = "pipeline.SetPositionRole"
	if programID == "" || playerID == "" {
		return model.PipelineEntry{}, errs.Validationf(op, "program id and player id are required")
	}
	role = strings.ToUpper(strings.TrimSpace(role))
	e, err := s.entries.UpsertEntry(ctx, repository.PipelineWrite{
		ProgramID:    programID,
		PlayerID:     playerID,
		PositionRole: &role,
		At:           s.now(),
	})
	if err != nil {
		return model.PipelineEntry{}, errs.Wrap(op, err)
	}
	return e, nil
}

// Remove drops a player from the pipeline. Removing an untracked pair is a no-op.
func (s *Service) Remove(ctx context.Context, programID, playerID string) error {
	const op = "pipeline.Remove"
	if programID == "" || playerID == "" {
		return errs.Validationf(op, "program id and player id are required")
	}
	removed, err := s.entries.DeleteEntry(ctx, programID, playerID)
	if err != nil {
		return errs.Wrap(op, err)
	}
	if removed {
		metrics.RecordPipelineRemoval()
		s.emit(ctx, model.ActivityRemoved, model.PipelineEntry{ProgramID: programID, PlayerID: playerID, UpdatedAt: s.now()})
	}
	return nil
}

// ListByStatus returns a program's entries, most recently updated first.
// model.StatusAll lists every status.
func (s *Service) ListByStatus(ctx context.Context, programID string, filter model.Status) ([]model.PipelineEntry, error) {
	const op = "pipeline.ListByStatus"
	if programID == "" {
		return nil, errs.Validationf(op, "program id is required")
	}
	if filter != model.StatusAll && !filter.Valid() {
		return nil, errs.Validationf(op, "unknown status filter %q", filter)
	}
	out, err := s.entries.ListEntries(ctx, programID, filter)
	if err != nil {
		return nil, errs.Wrap(op, err)
	}
	SortEntries(out)
	if out == nil {
		out = []model.PipelineEntry{}
	}
	return out, nil
}

// SortEntries orders by UpdatedAt desc, then player id asc.
func SortEntries(entries []model.PipelineEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.PlayerID < b.PlayerID
	})
}

// checkPair validates ids and that the player exists.
func (s *Service) checkPair(ctx context.Context, op, programID, playerID string) error {
	if programID == "" || playerID == "" {
		return errs.Validationf(op, "program id and player id are required")
	}
	if _, err := s.players.GetPlayer(ctx, playerID); err != nil {
		return errs.Wrap(op, err)
	}
	return nil
}

func (s *Service) emit(ctx context.Context, kind model.ActivityKind, e model.PipelineEntry) {
	if s.emitter == nil {
		return
	}
	a := model.Activity{
		ID:        s.newID(),
		Kind:      kind,
		ProgramID: e.ProgramID,
		PlayerIDs: []string{e.PlayerID},
		Status:    e.Status,
		At:        e.UpdatedAt,
	}
	if !s.emitter.Enqueue(ctx, a) {
		s.log.Warn(ctx, "activity dropped",
			logger.String("kind", string(kind)),
			logger.String("program_id", e.ProgramID),
			logger.String("player_id", e.PlayerID))
	}
}
