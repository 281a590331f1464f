// Package repository defines the storage contracts of the recruiting engine
// and an in-memory implementation.
//
// Stores own two integrity guarantees: at most one pipeline entry per
// (program, player) pair, and deleting an event removes its player links.
// Failures are classified with the kinds from the errs package so domain
// services can pass them through untouched.
package repository

import (
	"context"
	"time"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"
)

// PlayerStore holds the candidate pool.
type PlayerStore interface {
	UpsertPlayer(ctx context.Context, c model.Candidate) error
	// GetPlayer returns ErrNotFound for unknown ids.
	GetPlayer(ctx context.Context, id string) (model.Candidate, error)
	// ListPlayers returns every player, hidden ones included, ordered by id.
	ListPlayers(ctx context.Context) ([]model.Candidate, error)
	CountPlayers(ctx context.Context) (int, error)
}

// NeedStore holds one need profile per program.
type NeedStore interface {
	PutNeeds(ctx context.Context, n model.NeedProfile) error
	// GetNeeds returns ErrNotFound when the program never declared needs.
	GetNeeds(ctx context.Context, programID string) (model.NeedProfile, error)
}

// PipelineWrite describes an insert-or-update of one pipeline entry.
// Nil pointers and an empty Status leave the stored value untouched on update.
type PipelineWrite struct {
	ID           string // used only when a new row is created
	ProgramID    string
	PlayerID     string
	Status       model.Status
	Notes        *string
	PositionRole *string
	At           time.Time
}

// PipelineStore holds pipeline entries keyed by (program, player).
type PipelineStore interface {
	GetEntry(ctx context.Context, programID, playerID string) (model.PipelineEntry, error)
	// InsertEntry creates the entry or fails with ErrConflict.
	InsertEntry(ctx context.Context, w PipelineWrite) (model.PipelineEntry, error)
	// UpsertEntry creates or updates atomically. UpdatedAt never moves backwards.
	// An update-only write (empty Status) on a missing pair fails with ErrNotFound.
	UpsertEntry(ctx context.Context, w PipelineWrite) (model.PipelineEntry, error)
	// AppendNote appends line to the notes, creating the entry with w.Status when absent.
	AppendNote(ctx context.Context, w PipelineWrite, line string) (model.PipelineEntry, error)
	// DeleteEntry reports whether a row was removed.
	DeleteEntry(ctx context.Context, programID, playerID string) (bool, error)
	// ListEntries returns entries of a program; model.StatusAll selects every status.
	ListEntries(ctx context.Context, programID string, status model.Status) ([]model.PipelineEntry, error)
}

// CalendarStore holds events and their player links.
type CalendarStore interface {
	CreateEvent(ctx context.Context, ev model.CalendarEvent) error
	GetEvent(ctx context.Context, id string) (model.CalendarEvent, error)
	// UpdateEvent overwrites scalar fields; links are replaced only when replaceLinks is set.
	UpdateEvent(ctx context.Context, ev model.CalendarEvent, replaceLinks bool) error
	// DeleteEvent removes the event and its links, reporting whether it existed.
	DeleteEvent(ctx context.Context, id string) (bool, error)
	// ListEvents returns events of a program with from <= date < to. Empty bounds are open.
	ListEvents(ctx context.Context, programID string, from, to model.Date) ([]model.CalendarEvent, error)
	ListEventsForPlayer(ctx context.Context, programID, playerID string) ([]model.CalendarEvent, error)
	CountEvents(ctx context.Context) (int, error)
}

// Store bundles every collaborator the engine needs.
type Store interface {
	PlayerStore
	NeedStore
	PipelineStore
	CalendarStore
	Close() error
}
