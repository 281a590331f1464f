// Package sqlstore implements repository.Store on GORM, backed by SQLite or
// PostgreSQL. Pipeline uniqueness is a unique index on (program_id,
// player_id) and event links cascade with their event.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/adapters/repository"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/errs"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/pkg/metrics"
)

// Drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrUnknownDriver is returned by Open for unsupported drivers.
var ErrUnknownDriver = errors.New("unknown sql driver")

// Store is a GORM-backed repository.Store.
type Store struct {
	db *gorm.DB
}

var _ repository.Store = (*Store)(nil)

// Open connects to the database and migrates the schema unless disabled.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*Store, error) {
	const op = "sqlstore.Open"
	o := options{autoMigrate: true, logLevel: gormlogger.Silent}
	for _, opt := range opts {
		opt(&o)
	}

	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, errs.WrapKind(op, errs.ErrValidation, fmt.Errorf("%w: %q", ErrUnknownDriver, driver))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(o.logLevel),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, errs.WrapKind(op, errs.ErrStorage, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errs.WrapKind(op, errs.ErrStorage, err)
	}
	if driver == DriverSQLite {
		// one writer; avoids SQLITE_BUSY inside transactions
		sqlDB.SetMaxOpenConns(1)
	} else if o.maxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(o.maxOpenConns)
	}

	s := &Store{db: db}
	if o.autoMigrate {
		if err := s.Migrate(ctx); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}
	return s, nil
}

// Migrate creates or updates the schema.
func (s *Store) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(&playerRow{}, &needRow{}, &pipelineRow{}, &eventRow{}, &eventPlayerRow{})
	return classify("sqlstore.Migrate", err)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return classify("sqlstore.Close", err)
	}
	return classify("sqlstore.Close", sqlDB.Close())
}

func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, repository.ErrConflict)
	default:
		metrics.RecordErrorByComponent("repository", "storage")
		return errs.WrapKind(op, errs.ErrStorage, err)
	}
}

func observe(op string, start time.Time) {
	metrics.RecordRepositoryLatency(op, float64(time.Since(start).Microseconds())/1000)
}

// UpsertPlayer inserts or replaces a player snapshot.
func (s *Store) UpsertPlayer(ctx context.Context, c model.Candidate) error {
	defer observe("upsert_player", time.Now())
	row := toPlayerRow(c)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&row).Error
	return classify("sqlstore.UpsertPlayer", err)
}

// GetPlayer returns one player.
func (s *Store) GetPlayer(ctx context.Context, id string) (model.Candidate, error) {
	defer observe("get_player", time.Now())
	var row playerRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return model.Candidate{}, classify("sqlstore.GetPlayer "+id, err)
	}
	return row.toModel(), nil
}

// ListPlayers returns every player ordered by id.
func (s *Store) ListPlayers(ctx context.Context) ([]model.Candidate, error) {
	defer observe("list_players", time.Now())
	var rows []playerRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, classify("sqlstore.ListPlayers", err)
	}
	out := make([]model.Candidate, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// CountPlayers returns the pool size.
func (s *Store) CountPlayers(ctx context.Context) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&playerRow{}).Count(&n).Error
	return int(n), classify("sqlstore.CountPlayers", err)
}

// PutNeeds inserts or replaces a need profile.
func (s *Store) PutNeeds(ctx context.Context, n model.NeedProfile) error {
	row := toNeedRow(n)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "program_id"}},
		UpdateAll: true,
	}).Create(&row).Error
	return classify("sqlstore.PutNeeds", err)
}

// GetNeeds returns a program's need profile.
func (s *Store) GetNeeds(ctx context.Context, programID string) (model.NeedProfile, error) {
	var row needRow
	if err := s.db.WithContext(ctx).First(&row, "program_id = ?", programID).Error; err != nil {
		return model.NeedProfile{}, classify("sqlstore.GetNeeds "+programID, err)
	}
	return row.toModel(), nil
}

// GetEntry returns one pipeline entry.
func (s *Store) GetEntry(ctx context.Context, programID, playerID string) (model.PipelineEntry, error) {
	defer observe("get_entry", time.Now())
	var row pipelineRow
	err := s.db.WithContext(ctx).
		Where("program_id = ? AND player_id = ?", programID, playerID).
		First(&row).Error
	if err != nil {
		return model.PipelineEntry{}, classify("sqlstore.GetEntry", err)
	}
	return row.toModel(), nil
}

// InsertEntry creates an entry; the unique index turns duplicates into ErrConflict.
func (s *Store) InsertEntry(ctx context.Context, w repository.PipelineWrite) (model.PipelineEntry, error) {
	defer observe("insert_entry", time.Now())
	row := newRow(w)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return model.PipelineEntry{}, classify("sqlstore.InsertEntry", err)
	}
	return row.toModel(), nil
}

// UpsertEntry creates or updates an entry inside a transaction. A concurrent
// insert that loses the unique-index race is retried as an update.
func (s *Store) UpsertEntry(ctx context.Context, w repository.PipelineWrite) (model.PipelineEntry, error) {
	defer observe("upsert_entry", time.Now())
	return s.writeEntry(ctx, "sqlstore.UpsertEntry", w, func(row *pipelineRow) {
		if w.Status != "" {
			row.Status = string(w.Status)
		}
		if w.Notes != nil {
			row.Notes = *w.Notes
		}
		if w.PositionRole != nil {
			row.PositionRole = *w.PositionRole
		}
	})
}

// AppendNote appends a note line, creating the entry when absent.
func (s *Store) AppendNote(ctx context.Context, w repository.PipelineWrite, line string) (model.PipelineEntry, error) {
	defer observe("append_note", time.Now())
	w.Notes = &line
	return s.writeEntry(ctx, "sqlstore.AppendNote", w, func(row *pipelineRow) {
		row.Notes = repository.JoinNotes(row.Notes, line)
	})
}

func (s *Store) writeEntry(ctx context.Context, op string, w repository.PipelineWrite, mutate func(*pipelineRow)) (model.PipelineEntry, error) {
	var out pipelineRow
	attempt := func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var row pipelineRow
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("program_id = ? AND player_id = ?", w.ProgramID, w.PlayerID).
				Take(&row).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				if w.Status == "" {
					return repository.ErrNotFound
				}
				out = newRow(w)
				return tx.Create(&out).Error
			case err != nil:
				return err
			}
			mutate(&row)
			if w.At.After(row.UpdatedAt) {
				row.UpdatedAt = w.At.UTC()
			}
			out = row
			return tx.Save(&out).Error
		})
	}
	err := attempt()
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = attempt()
	}
	if errors.Is(err, repository.ErrNotFound) {
		return model.PipelineEntry{}, fmt.Errorf("%s %s/%s: %w", op, w.ProgramID, w.PlayerID, err)
	}
	if err != nil {
		return model.PipelineEntry{}, classify(op, err)
	}
	return out.toModel(), nil
}

func newRow(w repository.PipelineWrite) pipelineRow {
	row := pipelineRow{
		ID:        w.ID,
		ProgramID: w.ProgramID,
		PlayerID:  w.PlayerID,
		Status:    string(w.Status),
		CreatedAt: w.At.UTC(),
		UpdatedAt: w.At.UTC(),
	}
	if w.Notes != nil {
		row.Notes = *w.Notes
	}
	if w.PositionRole != nil {
		row.PositionRole = *w.PositionRole
	}
	return row
}

// DeleteEntry removes an entry if present.
func (s *Store) DeleteEntry(ctx context.Context, programID, playerID string) (bool, error) {
	defer observe("delete_entry", time.Now())
	res := s.db.WithContext(ctx).
		Where("program_id = ? AND player_id = ?", programID, playerID).
		Delete(&pipelineRow{})
	if res.Error != nil {
		return false, classify("sqlstore.DeleteEntry", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ListEntries returns a program's entries filtered by status.
func (s *Store) ListEntries(ctx context.Context, programID string, status model.Status) ([]model.PipelineEntry, error) {
	defer observe("list_entries", time.Now())
	q := s.db.WithContext(ctx).Where("program_id = ?", programID)
	if status != model.StatusAll {
		q = q.Where("status = ?", string(status))
	}
	var rows []pipelineRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, classify("sqlstore.ListEntries", err)
	}
	out := make([]model.PipelineEntry, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// CreateEvent stores an event with its links.
func (s *Store) CreateEvent(ctx context.Context, ev model.CalendarEvent) error {
	defer observe("create_event", time.Now())
	row := toEventRow(ev)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
			return err
		}
		if len(ev.PlayerIDs) == 0 {
			return nil
		}
		links := linkRows(ev.ID, ev.PlayerIDs)
		return tx.Create(&links).Error
	})
	return classify("sqlstore.CreateEvent", err)
}

// GetEvent returns one event with its links.
func (s *Store) GetEvent(ctx context.Context, id string) (model.CalendarEvent, error) {
	defer observe("get_event", time.Now())
	var row eventRow
	if err := s.db.WithContext(ctx).Preload("Links").First(&row, "id = ?", id).Error; err != nil {
		return model.CalendarEvent{}, classify("sqlstore.GetEvent "+id, err)
	}
	return row.toModel(), nil
}

// UpdateEvent overwrites an event and optionally replaces its links.
func (s *Store) UpdateEvent(ctx context.Context, ev model.CalendarEvent, replaceLinks bool) error {
	defer observe("update_event", time.Now())
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prev eventRow
		if err := tx.First(&prev, "id = ?", ev.ID).Error; err != nil {
			return err
		}
		row := toEventRow(ev)
		row.CreatedAt = prev.CreatedAt
		if err := tx.Omit(clause.Associations).Save(&row).Error; err != nil {
			return err
		}
		if !replaceLinks {
			return nil
		}
		if err := tx.Where("event_id = ?", ev.ID).Delete(&eventPlayerRow{}).Error; err != nil {
			return err
		}
		if len(ev.PlayerIDs) == 0 {
			return nil
		}
		links := linkRows(ev.ID, ev.PlayerIDs)
		return tx.Create(&links).Error
	})
	return classify("sqlstore.UpdateEvent "+ev.ID, err)
}

// DeleteEvent removes an event and its links.
func (s *Store) DeleteEvent(ctx context.Context, id string) (bool, error) {
	defer observe("delete_event", time.Now())
	var deleted bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&eventPlayerRow{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&eventRow{}, "id = ?", id)
		deleted = res.RowsAffected > 0
		return res.Error
	})
	if err != nil {
		return false, classify("sqlstore.DeleteEvent", err)
	}
	return deleted, nil
}

// ListEvents returns a program's events inside [from, to).
func (s *Store) ListEvents(ctx context.Context, programID string, from, to model.Date) ([]model.CalendarEvent, error) {
	defer observe("list_events", time.Now())
	q := s.db.WithContext(ctx).Preload("Links").Where("program_id = ?", programID)
	if from != "" {
		q = q.Where("date >= ?", string(from))
	}
	if to != "" {
		q = q.Where("date < ?", string(to))
	}
	var rows []eventRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, classify("sqlstore.ListEvents", err)
	}
	return toEvents(rows), nil
}

// ListEventsForPlayer returns a program's events linked to a player.
func (s *Store) ListEventsForPlayer(ctx context.Context, programID, playerID string) ([]model.CalendarEvent, error) {
	defer observe("list_events_for_player", time.Now())
	var rows []eventRow
	err := s.db.WithContext(ctx).
		Preload("Links").
		Joins("JOIN calendar_event_players l ON l.event_id = calendar_events.id").
		Where("calendar_events.program_id = ? AND l.player_id = ?", programID, playerID).
		Find(&rows).Error
	if err != nil {
		return nil, classify("sqlstore.ListEventsForPlayer", err)
	}
	return toEvents(rows), nil
}

// CountEvents returns the number of events.
func (s *Store) CountEvents(ctx context.Context) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&eventRow{}).Count(&n).Error
	return int(n), classify("sqlstore.CountEvents", err)
}

func toEvents(rows []eventRow) []model.CalendarEvent {
	out := make([]model.CalendarEvent, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out
}
