// Package service wires the recruiting domain together and implements the
// operations exposed by the HTTP API and the MCP tool server.
package service

import (
	"context"
	"errors"
	"io"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/adapters/mq/queue"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/adapters/mq/worker"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/adapters/notify"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/adapters/repository"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/adapters/roster"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/calendar"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/dedupe"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/discovery"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/errs"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/pipeline"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/scoring"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/pkg/logger"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/pkg/metrics"
)

const (
	defaultMaxMatchLimit = 100
	defaultUpcomingDays  = 14
)

// Stats is a point-in-time summary for monitoring.
type Stats struct {
	Started            bool   `json:"started"`
	Candidates         int    `json:"candidates"`
	Events             int    `json:"events"`
	WorkerCount        int    `json:"worker_count"`
	QueueLength        int    `json:"queue_length"`
	QueueCapacity      int    `json:"queue_capacity"`
	IdempotencyEntries int64  `json:"idempotency_entries"`
	Goroutines         int    `json:"goroutines"`
	Uptime             string `json:"uptime"`
}

// Service implements the recruiting operations.
type Service struct {
	mu sync.Mutex

	store    repository.Store
	scorer   *scoring.Scorer
	filter   *discovery.Filter
	pipeline *pipeline.Service
	calendar *calendar.Service
	importer *roster.Importer
	keys     dedupe.Keys
	queue    *queue.InMemoryQueue
	pool     *worker.Pool

	publisher     worker.Publisher
	workerCount   int
	queueSize     int
	keyCacheSize  int
	scoringOpts   []scoring.Option
	discoveryOpts []discovery.Option
	maxLimit      int
	upcomingDays  int
	now           func() time.Time

	started   bool
	startedAt time.Time
	logger    logger.Logger
}

// New builds the service around store. Activity delivery starts with Start.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:        store,
		workerCount:  runtime.NumCPU(),
		queueSize:    10_000,
		keyCacheSize: 50_000,
		maxLimit:     defaultMaxMatchLimit,
		upcomingDays: defaultUpcomingDays,
		now:          time.Now,
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.publisher == nil {
		s.publisher = notify.NewLogPublisher(s.logger.Named("activity"))
	}

	s.scorer = scoring.New(s.scoringOpts...)
	s.filter = discovery.New(append([]discovery.Option{discovery.WithClock(s.now)}, s.discoveryOpts...)...)
	s.keys = dedupe.NewInMemoryKeys(dedupe.WithMaxSize(s.keyCacheSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.importer = roster.New()
	s.pipeline = pipeline.New(store, store,
		pipeline.WithEmitter(s.queue),
		pipeline.WithClock(s.now),
		pipeline.WithLogger(s.logger.Named("pipeline")),
	)
	s.calendar = calendar.New(store, store, store,
		calendar.WithEmitter(s.queue),
		calendar.WithClock(s.now),
		calendar.WithLogger(s.logger.Named("calendar")),
	)
	return s
}

// Start launches the activity workers. Calling it twice is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	if s.queue.IsClosed() {
		return errors.New("service cannot be restarted after Stop")
	}

	s.pool = worker.NewPool(s.workerCount, s.queue, s.publisher, worker.WithLogger(s.logger.Named("worker")))
	s.pool.Start(ctx)
	s.started = true
	s.startedAt = s.now()
	s.logger.Info(ctx, "recruiting service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queue_size", s.queueSize),
		logger.Int("idempotency_cache_size", s.keyCacheSize),
	)
	return nil
}

// Stop drains pending activity and stops the workers.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	err := s.pool.Shutdown(ctx)
	s.started = false
	s.logger.Info(ctx, "recruiting service stopped")
	return err
}

// Score matches one candidate against one need profile.
func (s *Service) Score(_ context.Context, need model.NeedProfile, c model.Candidate) (model.MatchResult, error) {
	start := time.Now()
	res, err := s.scorer.Score(need, c)
	outcome := "ok"
	if err != nil {
		outcome = "invalid"
	}
	metrics.RecordCandidateScored(outcome, float64(time.Since(start).Microseconds())/1000)
	return res, err
}

// RankCandidates ranks the program's visible pool against its stored needs.
func (s *Service) RankCandidates(ctx context.Context, programID string, limit int) ([]model.MatchResult, error) {
	const op = "service.RankCandidates"
	need, err := s.store.GetNeeds(ctx, programID)
	if err != nil {
		return nil, errs.Wrap(op, err)
	}
	pool, err := s.visiblePool(ctx, programID)
	if err != nil {
		return nil, errs.Wrap(op, err)
	}
	return s.rank(op, need, pool, limit)
}

// Discover filters the program's visible pool.
func (s *Service) Discover(ctx context.Context, programID string, state discovery.FilterState) ([]model.Candidate, error) {
	const op = "service.Discover"
	if err := state.Validate(); err != nil {
		return nil, errs.Wrap(op, err)
	}
	pool, err := s.visiblePool(ctx, programID)
	if err != nil {
		return nil, errs.Wrap(op, err)
	}
	out := s.filter.Apply(pool, state)
	metrics.RecordFilter(len(pool), len(out))
	return out, nil
}

// StateCounts breaks the program's visible pool down by home state and grad year.
func (s *Service) StateCounts(ctx context.Context, programID string) (map[string]discovery.StateCount, error) {
	const op = "service.StateCounts"
	pool, err := s.visiblePool(ctx, programID)
	if err != nil {
		return nil, errs.Wrap(op, err)
	}
	return discovery.StateCounts(pool), nil
}

// Matches filters the visible pool and ranks what remains against the program's needs.
func (s *Service) Matches(ctx context.Context, programID string, state discovery.FilterState, limit int) ([]model.MatchResult, error) {
	const op = "service.Matches"
	need, err := s.store.GetNeeds(ctx, programID)
	if err != nil {
		return nil, errs.Wrap(op, err)
	}
	pool, err := s.Discover(ctx, programID, state)
	if err != nil {
		return nil, errs.Wrap(op, err)
	}
	return s.rank(op, need, pool, limit)
}

// Trending lists candidates by engagement. Hidden candidates are never listed.
func (s *Service) Trending(ctx context.Context, limit int) ([]model.TrendingResult, error) {
	const op = "service.Trending"
	pool, err := s.store.ListPlayers(ctx)
	if err != nil {
		return nil, errs.Wrap(op, err)
	}
	return s.scorer.RankTrending(pool, s.now(), s.clampLimit(limit)), nil
}

func (s *Service) rank(op string, need model.NeedProfile, pool []model.Candidate, limit int) ([]model.MatchResult, error) {
	start := time.Now()
	out, err := s.scorer.Rank(need, pool)
	if err != nil {
		metrics.RecordCandidateScored("invalid", float64(time.Since(start).Microseconds())/1000)
		return nil, errs.Wrap(op, err)
	}
	metrics.RecordRank(len(pool))
	if n := s.clampLimit(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 || limit > s.maxLimit {
		return s.maxLimit
	}
	return limit
}

// visiblePool returns every player the program may see: all public players
// plus hidden ones it already tracks.
func (s *Service) visiblePool(ctx context.Context, programID string) ([]model.Candidate, error) {
	if programID == "" {
		return nil, errs.Validationf("service.visiblePool", "program id is required")
	}
	players, err := s.store.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	tracked := map[string]struct{}{}
	for _, p := range players {
		if p.Hidden {
			entries, err := s.store.ListEntries(ctx, programID, model.StatusAll)
			if err != nil {
				return nil, err
			}
			for _, e := range entries {
				tracked[e.PlayerID] = struct{}{}
			}
			break
		}
	}
	out := players[:0]
	for _, p := range players {
		if _, ok := tracked[p.ID]; ok || !p.Hidden {
			out = append(out, p)
		}
	}
	return out, nil
}

// UpsertStatus moves a player to status in the program's pipeline.
func (s *Service) UpsertStatus(ctx context.Context, programID, playerID string, status model.Status, notes *string) (model.PipelineEntry, error) {
	return s.pipeline.UpsertStatus(ctx, programID, playerID, status, notes)
}

// AddToPipeline starts tracking a player and fails when already tracked.
func (s *Service) AddToPipeline(ctx context.Context, programID, playerID string, status model.Status, notes *string) (model.PipelineEntry, error) {
	return s.pipeline.Add(ctx, programID, playerID, status, notes)
}

// AddNote appends a timestamped note.
func (s *Service) AddNote(ctx context.Context, programID, playerID, note string) (model.PipelineEntry, error) {
	return s.pipeline.AddNote(ctx, programID, playerID, note)
}

// SetPositionRole pins the board slot of a tracked player.
func (s *Service) SetPositionRole(ctx context.Context, programID, playerID, role string) (model.PipelineEntry, error) {
	return s.pipeline.SetPositionRole(ctx, programID, playerID, role)
}

// RemoveFromPipeline stops tracking a player.
func (s *Service) RemoveFromPipeline(ctx context.Context, programID, playerID string) error {
	return s.pipeline.Remove(ctx, programID, playerID)
}

// ListPipeline lists entries by status; model.StatusAll lists everything.
func (s *Service) ListPipeline(ctx context.Context, programID string, filter model.Status) ([]model.PipelineEntry, error) {
	return s.pipeline.ListByStatus(ctx, programID, filter)
}

// SearchTrackedPlayers finds players in the program's pipeline whose name
// contains query, ignoring case. Used to pick players to link to an event.
func (s *Service) SearchTrackedPlayers(ctx context.Context, programID, query string) ([]model.Candidate, error) {
	const op = "service.SearchTrackedPlayers"
	if programID == "" {
		return nil, errs.Validationf(op, "program id is required")
	}
	if strings.TrimSpace(query) == "" {
		return nil, errs.Validationf(op, "search query is required")
	}
	entries, err := s.store.ListEntries(ctx, programID, model.StatusAll)
	if err != nil {
		return nil, errs.Wrap(op, err)
	}
	tracked := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		tracked[e.PlayerID] = struct{}{}
	}
	players, err := s.store.ListPlayers(ctx)
	if err != nil {
		return nil, errs.Wrap(op, err)
	}
	pool := make([]model.Candidate, 0, len(tracked))
	for _, p := range players {
		if _, ok := tracked[p.ID]; ok {
			pool = append(pool, p)
		}
	}
	return discovery.SearchByName(pool, query), nil
}

// Board returns the positional view of the pipeline.
func (s *Service) Board(ctx context.Context, programID string, filter model.Status) (pipeline.Board, error) {
	return s.pipeline.Board(ctx, programID, filter)
}

// CreateEvent creates a calendar event. A non-empty idempotency key makes
// retries return the event created by the first request.
func (s *Service) CreateEvent(ctx context.Context, programID, idempotencyKey string, in model.EventInput) (model.CalendarEvent, bool, error) {
	const op = "service.CreateEvent"
	if idempotencyKey == "" {
		ev, err := s.calendar.CreateEvent(ctx, programID, in)
		return ev, false, err
	}

	key := programID + "\x00" + idempotencyKey
	if eventID, seen := s.keys.Reserve(ctx, key); seen {
		if eventID == "" {
			return model.CalendarEvent{}, false, errs.WrapKind(op, errs.ErrConflict,
				errors.New("a request with this idempotency key is still in progress"))
		}
		ev, err := s.store.GetEvent(ctx, eventID)
		if err != nil {
			return model.CalendarEvent{}, false, errs.Wrap(op, err)
		}
		metrics.RecordIdempotentReplay()
		return ev, true, nil
	}

	ev, err := s.calendar.CreateEvent(ctx, programID, in)
	if err != nil {
		s.keys.Release(ctx, key)
		return model.CalendarEvent{}, false, err
	}
	s.keys.Complete(ctx, key, ev.ID)
	return ev, false, nil
}

// UpdateEvent patches an event.
func (s *Service) UpdateEvent(ctx context.Context, programID, eventID string, patch model.EventPatch) (model.CalendarEvent, error) {
	return s.calendar.UpdateEvent(ctx, programID, eventID, patch)
}

// DeleteEvent removes an event, reporting whether it existed.
func (s *Service) DeleteEvent(ctx context.Context, programID, eventID string) (bool, error) {
	return s.calendar.DeleteEvent(ctx, programID, eventID)
}

// ListUpcoming lists events in [today, today+days). An empty today means the
// service's local date and days == 0 means the configured default.
func (s *Service) ListUpcoming(ctx context.Context, programID string, today model.Date, days int) ([]model.CalendarEvent, error) {
	if today == "" {
		today = model.DateOf(s.now())
	}
	if days == 0 {
		days = s.upcomingDays
	}
	return s.calendar.ListUpcoming(ctx, programID, today, days)
}

// ListEvents lists every event of the program in display order.
func (s *Service) ListEvents(ctx context.Context, programID string) ([]model.CalendarEvent, error) {
	return s.calendar.List(ctx, programID)
}

// ListForPlayer lists the program's events linked to a player.
func (s *Service) ListForPlayer(ctx context.Context, programID, playerID string) ([]model.CalendarEvent, error) {
	return s.calendar.ListForPlayer(ctx, programID, playerID)
}

// GetNeeds returns a program's need profile.
func (s *Service) GetNeeds(ctx context.Context, programID string) (model.NeedProfile, error) {
	const op = "service.GetNeeds"
	n, err := s.store.GetNeeds(ctx, programID)
	if err != nil {
		return model.NeedProfile{}, errs.Wrap(op, err)
	}
	return n, nil
}

// PutNeeds replaces a program's need profile.
func (s *Service) PutNeeds(ctx context.Context, programID string, n model.NeedProfile) (model.NeedProfile, error) {
	const op = "service.PutNeeds"
	if programID == "" {
		return model.NeedProfile{}, errs.Validationf(op, "program id is required")
	}
	n.ProgramID = programID
	if err := n.Validate(); err != nil {
		return model.NeedProfile{}, errs.Wrap(op, err)
	}
	if err := s.store.PutNeeds(ctx, n); err != nil {
		return model.NeedProfile{}, errs.Wrap(op, err)
	}
	return n, nil
}

// UpsertCandidate stores a candidate snapshot.
func (s *Service) UpsertCandidate(ctx context.Context, c model.Candidate) (model.Candidate, error) {
	const op = "service.UpsertCandidate"
	if err := c.Validate(); err != nil {
		return model.Candidate{}, errs.Wrap(op, err)
	}
	if err := s.store.UpsertPlayer(ctx, c); err != nil {
		return model.Candidate{}, errs.Wrap(op, err)
	}
	return c, nil
}

// GetCandidate returns one candidate.
func (s *Service) GetCandidate(ctx context.Context, id string) (model.Candidate, error) {
	const op = "service.GetCandidate"
	c, err := s.store.GetPlayer(ctx, id)
	if err != nil {
		return model.Candidate{}, errs.Wrap(op, err)
	}
	return c, nil
}

// ImportRoster parses an HTML roster and upserts every valid row.
func (s *Service) ImportRoster(ctx context.Context, r io.Reader) (roster.Result, error) {
	const op = "service.ImportRoster"
	res, err := s.importer.Parse(r)
	if err != nil {
		return roster.Result{}, errs.Wrap(op, err)
	}
	for _, c := range res.Candidates {
		if err := s.store.UpsertPlayer(ctx, c); err != nil {
			return roster.Result{}, errs.Wrap(op, err)
		}
	}
	s.logger.Info(ctx, "roster imported",
		logger.Int("candidates", len(res.Candidates)),
		logger.Int("skipped", len(res.Skipped)))
	return res, nil
}

// GetStats returns service statistics and refreshes the matching gauges.
func (s *Service) GetStats(ctx context.Context) (Stats, error) {
	const op = "service.GetStats"
	candidates, err := s.store.CountPlayers(ctx)
	if err != nil {
		return Stats{}, errs.Wrap(op, err)
	}
	events, err := s.store.CountEvents(ctx)
	if err != nil {
		return Stats{}, errs.Wrap(op, err)
	}

	s.mu.Lock()
	st := Stats{
		Started:            s.started,
		Candidates:         candidates,
		Events:             events,
		QueueLength:        s.queue.Len(),
		QueueCapacity:      s.queueSize,
		IdempotencyEntries: s.keys.Size(),
		Goroutines:         runtime.NumGoroutine(),
	}
	if s.started {
		st.WorkerCount = s.pool.Size()
		st.Uptime = s.now().Sub(s.startedAt).Round(time.Second).String()
	}
	s.mu.Unlock()

	metrics.UpdateTotalCandidates(candidates)
	metrics.UpdateTotalEvents(events)
	metrics.UpdateQueueSize(st.QueueLength)
	return st, nil
}
