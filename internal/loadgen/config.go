// Package loadgen drives a running recruiting service end to end: it
// publishes a needs profile, upserts a generated candidate pool, ranks it
// and checks that the responses are internally consistent.
package loadgen

import (
	"runtime"
	"strings"
	"time"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/pipeline"
)

// Config holds configuration for a load run.
type Config struct {
	BaseURL    string        // Base URL of the service
	ProgramID  string        // Program the run acts on
	Candidates int           // Number of candidates to generate
	TopN       int           // Number of ranked candidates to fetch and track
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Output file for generated candidates
	LogFile    string        // Log file for run output
	Verbose    bool          // Enable verbose logging
}

// Normalize fills zero fields with defaults.
func (c *Config) Normalize() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.ProgramID == "" {
		c.ProgramID = DefaultProgramID
	}
	if c.Candidates <= 0 {
		c.Candidates = DefaultCandidates
	}
	if c.TopN <= 0 {
		c.TopN = DefaultTopN
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU() * WorkerChannelMultiplier
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
}

// Stats holds run statistics.
type Stats struct {
	CandidatesGenerated int
	CandidatesSubmitted int
	CandidatesAccepted  int
	CandidatesRejected  int
	CandidatesFailed    int
	MatchesRetrieved    int
	TrendingEntries     int
	PipelineTracked     int
	EventReplayed       bool
	StartTime           time.Time
	EndTime             time.Time
	Duration            time.Duration
}

// matchesRequest mirrors the body of POST /programs/{id}/matches.
type matchesRequest struct {
	Limit int `json:"limit"`
}

type pipelineRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

// runResult is what Run hands to verification.
type runResult struct {
	matches  []model.MatchResult
	trending []model.TrendingResult
	board    pipeline.Board
}
