// Package fixture loads seed data from YAML into a repository.
package fixture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/adapters/repository"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"
)

// ErrInvalidFixture wraps every decode or validation failure.
var ErrInvalidFixture = errors.New("invalid fixture")

// Fixture is the on-disk seed format.
type Fixture struct {
	Players  []model.Candidate   `yaml:"players"`
	Needs    []model.NeedProfile `yaml:"needs"`
	Pipeline []PipelineSeed      `yaml:"pipeline"`
	Events   []EventSeed         `yaml:"events"`
}

// PipelineSeed places a player in a program's pipeline.
type PipelineSeed struct {
	ProgramID    string `yaml:"program_id"`
	PlayerID     string `yaml:"player_id"`
	Status       string `yaml:"status"`
	PositionRole string `yaml:"position_role"`
	Notes        string `yaml:"notes"`
}

// EventSeed is a calendar event with an optional fixed id.
type EventSeed struct {
	ID               string `yaml:"id"`
	ProgramID        string `yaml:"program_id"`
	model.EventInput `yaml:",inline"`
}

// Stats counts what Apply wrote.
type Stats struct {
	Players  int
	Needs    int
	Pipeline int
	Events   int
}

// Decode parses and validates a fixture.
func Decode(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFixture, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadFile decodes the fixture at path.
func LoadFile(path string) (*Fixture, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer func() { _ = fh.Close() }()
	return Decode(fh)
}

// Validate checks records and the references between them.
func (f *Fixture) Validate() error {
	players := make(map[string]struct{}, len(f.Players))
	for i, p := range f.Players {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%w: players[%d]: %w", ErrInvalidFixture, i, err)
		}
		players[p.ID] = struct{}{}
	}
	for i, n := range f.Needs {
		if n.ProgramID == "" {
			return fmt.Errorf("%w: needs[%d]: program_id is required", ErrInvalidFixture, i)
		}
		if err := n.Validate(); err != nil {
			return fmt.Errorf("%w: needs[%d]: %w", ErrInvalidFixture, i, err)
		}
	}
	for i, s := range f.Pipeline {
		if s.ProgramID == "" {
			return fmt.Errorf("%w: pipeline[%d]: program_id is required", ErrInvalidFixture, i)
		}
		if _, ok := players[s.PlayerID]; !ok {
			return fmt.Errorf("%w: pipeline[%d]: unknown player %q", ErrInvalidFixture, i, s.PlayerID)
		}
		if _, err := model.ParseStatus(s.Status); err != nil {
			return fmt.Errorf("%w: pipeline[%d]: %w", ErrInvalidFixture, i, err)
		}
	}
	for i, e := range f.Events {
		if e.ProgramID == "" {
			return fmt.Errorf("%w: events[%d]: program_id is required", ErrInvalidFixture, i)
		}
		if !e.Type.Valid() {
			return fmt.Errorf("%w: events[%d]: unknown type %q", ErrInvalidFixture, i, e.Type)
		}
		if _, err := model.ParseDate(e.Date); err != nil {
			return fmt.Errorf("%w: events[%d]: %w", ErrInvalidFixture, i, err)
		}
		for _, id := range e.PlayerIDs {
			if _, ok := players[id]; !ok {
				return fmt.Errorf("%w: events[%d]: unknown player %q", ErrInvalidFixture, i, id)
			}
		}
	}
	return nil
}

// Apply writes the fixture into store. Records are upserted so applying the
// same fixture twice leaves one copy of each, except events without an id.
func (f *Fixture) Apply(ctx context.Context, store repository.Store, now time.Time) (Stats, error) {
	var st Stats
	for _, p := range f.Players {
		if err := store.UpsertPlayer(ctx, p); err != nil {
			return st, fmt.Errorf("seed player %s: %w", p.ID, err)
		}
		st.Players++
	}
	for _, n := range f.Needs {
		if err := store.PutNeeds(ctx, n); err != nil {
			return st, fmt.Errorf("seed needs %s: %w", n.ProgramID, err)
		}
		st.Needs++
	}
	for _, s := range f.Pipeline {
		status, _ := model.ParseStatus(s.Status)
		w := repository.PipelineWrite{
			ID:        uuid.NewString(),
			ProgramID: s.ProgramID,
			PlayerID:  s.PlayerID,
			Status:    status,
			At:        now,
		}
		if s.Notes != "" {
			w.Notes = &s.Notes
		}
		if s.PositionRole != "" {
			w.PositionRole = &s.PositionRole
		}
		if _, err := store.UpsertEntry(ctx, w); err != nil {
			return st, fmt.Errorf("seed pipeline %s/%s: %w", s.ProgramID, s.PlayerID, err)
		}
		st.Pipeline++
	}
	for _, e := range f.Events {
		ev, err := e.event(now)
		if err != nil {
			return st, err
		}
		if e.ID != "" {
			if _, err := store.GetEvent(ctx, e.ID); err == nil {
				if err := store.UpdateEvent(ctx, ev, true); err != nil {
					return st, fmt.Errorf("seed event %s: %w", ev.ID, err)
				}
				st.Events++
				continue
			}
		}
		if err := store.CreateEvent(ctx, ev); err != nil {
			return st, fmt.Errorf("seed event %s: %w", ev.ID, err)
		}
		st.Events++
	}
	return st, nil
}

func (e EventSeed) event(now time.Time) (model.CalendarEvent, error) {
	date, err := model.ParseDate(e.Date)
	if err != nil {
		return model.CalendarEvent{}, err
	}
	id := e.ID
	if id == "" {
		id = uuid.NewString()
	}
	ids := e.PlayerIDs
	if ids == nil {
		ids = []string{}
	}
	return model.CalendarEvent{
		ID:                id,
		ProgramID:         e.ProgramID,
		Type:              e.Type,
		Title:             e.Title,
		Date:              date,
		StartTime:         e.StartTime,
		EndTime:           e.EndTime,
		Location:          e.Location,
		Notes:             e.Notes,
		CampEventID:       e.CampEventID,
		OpponentEventName: e.OpponentEventName,
		PlayerIDs:         ids,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}
