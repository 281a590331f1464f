package loadgen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/pkg/logger"
)

// Idempotency headers understood by the event endpoint.
const (
	headerIdempotencyKey = "Idempotency-Key"
	headerReplayed       = "Idempotent-Replayed"
)

// eventLinkLimit caps how many top matches the evaluation event links.
const eventLinkLimit = 3

// Runner executes load runs against one service.
type Runner struct {
	config *Config
	client *HTTPClient
	now    func() time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithHTTPClient replaces the transport, mostly for tests.
func WithHTTPClient(hc *http.Client) RunnerOption {
	return func(r *Runner) {
		if hc != nil {
			r.client = NewHTTPClient(r.config.BaseURL, r.config.Timeout, hc)
		}
	}
}

// WithClock overrides the time source used for generated data.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRunner normalizes config and builds a Runner.
func NewRunner(config *Config, opts ...RunnerOption) *Runner {
	config.Normalize()
	r := &Runner{
		config: config,
		client: NewHTTPClient(config.BaseURL, config.Timeout, nil),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the complete load run.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	return NewRunner(config).Run(ctx)
}

// Run executes the complete load run and returns its statistics.
func (r *Runner) Run(ctx context.Context) (*Stats, error) {
	config := r.config
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()

	log.Info(ctx, "starting recruiting load run",
		logger.String("baseURL", config.BaseURL),
		logger.String("programID", config.ProgramID),
		logger.Int("candidates", config.Candidates),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("topN", config.TopN),
		logger.Bool("verbose", config.Verbose))

	// Step 1: Check service health
	if err := r.checkServiceHealth(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Publish the needs profile
	now := r.now()
	needs := generateNeeds(config.ProgramID, now)
	if _, err := r.client.Do(ctx, http.MethodPut, r.programPath("needs"), needs, nil, nil, http.StatusOK); err != nil {
		return stats, fmt.Errorf("publishing needs failed: %w", err)
	}

	// Step 3: Generate and submit candidates
	candidates, err := generateCandidates(ctx, config, now, stats)
	if err != nil {
		return stats, fmt.Errorf("candidate generation failed: %w", err)
	}
	if err := submitCandidates(ctx, config, r.client, candidates, stats); err != nil {
		return stats, fmt.Errorf("candidate submission failed: %w", err)
	}

	// Step 4: Rank and fetch trending
	var res runResult
	if _, err := r.client.Do(ctx, http.MethodPost, r.programPath("matches"), matchesRequest{Limit: config.TopN}, &res.matches, nil, http.StatusOK); err != nil {
		return stats, fmt.Errorf("match retrieval failed: %w", err)
	}
	stats.MatchesRetrieved = len(res.matches)

	q := url.Values{"limit": {strconv.Itoa(config.TopN)}}
	if _, err := r.client.Do(ctx, http.MethodGet, "/trending?"+q.Encode(), nil, &res.trending, nil, http.StatusOK); err != nil {
		return stats, fmt.Errorf("trending retrieval failed: %w", err)
	}
	stats.TrendingEntries = len(res.trending)

	// Step 5: Track the top matches and read the board back
	if err := r.trackMatches(ctx, res.matches, stats); err != nil {
		return stats, fmt.Errorf("pipeline tracking failed: %w", err)
	}
	if _, err := r.client.Do(ctx, http.MethodGet, r.programPath("pipeline/board"), nil, &res.board, nil, http.StatusOK); err != nil {
		return stats, fmt.Errorf("board retrieval failed: %w", err)
	}

	// Step 6: Schedule an evaluation and retry it with the same key
	replayed, err := r.scheduleEvaluation(ctx, res.matches, now)
	if err != nil {
		return stats, fmt.Errorf("event scheduling failed: %w", err)
	}
	stats.EventReplayed = replayed

	// Step 7: Verify results
	if err := verifyResults(ctx, config, res, candidates, stats); err != nil {
		return stats, fmt.Errorf("result verification failed: %w", err)
	}

	// Step 8: Save candidates to file
	if config.OutputFile != "" {
		if err := saveCandidatesToFile(ctx, config.OutputFile, candidates); err != nil {
			log.Warn(ctx, "failed to save candidates to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	log.Info(ctx, "load run completed successfully")
	return stats, nil
}

func (r *Runner) programPath(suffix string) string {
	return "/programs/" + url.PathEscape(r.config.ProgramID) + "/" + suffix
}

// checkServiceHealth verifies the service is running.
func (r *Runner) checkServiceHealth(ctx context.Context) error {
	logger.Get().Info(ctx, "checking service health")
	if _, err := r.client.Do(ctx, http.MethodGet, "/healthz", nil, nil, nil, http.StatusOK); err != nil {
		return fmt.Errorf("failed to reach service: %w", err)
	}
	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// trackMatches puts every returned match on the watchlist.
func (r *Runner) trackMatches(ctx context.Context, matches []model.MatchResult, stats *Stats) error {
	for _, m := range matches {
		body := pipelineRequest{
			Status: string(model.StatusWatchlist),
			Notes:  fmt.Sprintf("load run: rank %d, score %.1f", m.Rank, m.Score),
		}
		path := r.programPath("pipeline/" + url.PathEscape(m.CandidateID))
		if _, err := r.client.Do(ctx, http.MethodPut, path, body, nil, nil, http.StatusOK, http.StatusCreated); err != nil {
			return err
		}
		stats.PipelineTracked++
	}
	logger.Get().Info(ctx, "tracked top matches", logger.Int("count", stats.PipelineTracked))
	return nil
}

// scheduleEvaluation creates one event twice under the same Idempotency-Key
// and reports whether the retry was answered as a replay of the first.
func (r *Runner) scheduleEvaluation(ctx context.Context, matches []model.MatchResult, now time.Time) (bool, error) {
	in := model.EventInput{
		Type:  model.EventEvaluation,
		Title: "Load run evaluation",
		Date:  string(model.DateOf(now).AddDays(7)),
	}
	for i := 0; i < len(matches) && i < eventLinkLimit; i++ {
		in.PlayerIDs = append(in.PlayerIDs, matches[i].CandidateID)
	}
	header := http.Header{headerIdempotencyKey: {uuid.NewString()}}

	var first, second model.CalendarEvent
	if _, err := r.client.Do(ctx, http.MethodPost, r.programPath("events"), in, &first, header, http.StatusCreated); err != nil {
		return false, err
	}
	resp, err := r.client.Do(ctx, http.MethodPost, r.programPath("events"), in, &second, header, http.StatusOK, http.StatusCreated)
	if err != nil {
		return false, err
	}
	replayed := resp.StatusCode == http.StatusOK && resp.Header.Get(headerReplayed) == "true"
	if replayed && first.ID != second.ID {
		return false, fmt.Errorf("replayed event %s does not match original %s", second.ID, first.ID)
	}
	logger.Get().Info(ctx, "scheduled evaluation",
		logger.String("eventID", first.ID),
		logger.Int("linkedPlayers", len(first.PlayerIDs)),
		logger.Bool("replayed", replayed))
	return replayed, nil
}

// saveCandidatesToFile writes the generated pool as indented JSON.
func saveCandidatesToFile(ctx context.Context, filename string, candidates []model.Candidate) error {
	if len(candidates) == 0 {
		return fmt.Errorf("no candidates to save")
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal candidates: %w", err)
	}
	if err := os.WriteFile(filename, data, logFilePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	logger.Get().Info(ctx, "candidates saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var acceptRate, perSecond float64
	if stats.CandidatesSubmitted > 0 {
		acceptRate = float64(stats.CandidatesAccepted) / float64(stats.CandidatesSubmitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.CandidatesSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("candidatesGenerated", stats.CandidatesGenerated),
		logger.Int("candidatesSubmitted", stats.CandidatesSubmitted),
		logger.Int("candidatesAccepted", stats.CandidatesAccepted),
		logger.Int("candidatesRejected", stats.CandidatesRejected),
		logger.Int("candidatesFailed", stats.CandidatesFailed),
		logger.Int("matchesRetrieved", stats.MatchesRetrieved),
		logger.Int("trendingEntries", stats.TrendingEntries),
		logger.Int("pipelineTracked", stats.PipelineTracked),
		logger.Bool("eventReplayed", stats.EventReplayed),
		logger.Duration("duration", stats.Duration),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("candidatesPerSecond", perSecond))
}
