package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/pkg/logger"
)

// HTTPClient wraps http.Client with a base URL and JSON helpers.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// StatusError reports an unexpected response status.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// NewHTTPClient creates a client with timeout. A nil hc uses a fresh http.Client.
func NewHTTPClient(baseURL string, timeout time.Duration, hc *http.Client) *HTTPClient {
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	return &HTTPClient{client: hc, baseURL: baseURL}
}

// Do sends body as JSON (when non-nil) and decodes the response into out
// (when non-nil). Any status outside want is a *StatusError.
func (c *HTTPClient) Do(ctx context.Context, method, path string, body, out any, header http.Header, want ...int) (*http.Response, error) {
	var rd io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, fmt.Errorf("failed to read response body: %w", err)
	}
	if !statusIn(resp.StatusCode, want) {
		return resp, &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(bytes.TrimSpace(data))}
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp, fmt.Errorf("failed to decode %s %s: %w", method, path, err)
		}
	}
	return resp, nil
}

func statusIn(code int, want []int) bool {
	if len(want) == 0 {
		return code >= 200 && code < 300
	}
	for _, w := range want {
		if code == w {
			return true
		}
	}
	return false
}

// submitCandidates upserts candidates concurrently using a worker pool.
func submitCandidates(ctx context.Context, config *Config, client *HTTPClient, candidates []model.Candidate, stats *Stats) error {
	log := logger.Get()
	log.Info(ctx, "submitting candidates",
		logger.Int("count", len(candidates)),
		logger.Int("workers", config.Workers))

	var (
		accepted   int64
		rejected   int64
		failed     int64
		submitted  int64
		lastReport atomic.Int64
	)

	candChan := make(chan model.Candidate, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for c := range candChan {
				if ctx.Err() != nil {
					return
				}
				switch submitSingleCandidate(ctx, client, c) {
				case resultAccepted:
					atomic.AddInt64(&accepted, 1)
				case resultRejected:
					atomic.AddInt64(&rejected, 1)
				default:
					atomic.AddInt64(&failed, 1)
				}
				total := atomic.AddInt64(&submitted, 1)

				now := time.Now().UnixNano()
				last := lastReport.Load()
				if config.Verbose && now-last >= int64(progressInterval) && lastReport.CompareAndSwap(last, now) {
					log.Debug(ctx, "submission progress",
						logger.Int("submitted", int(total)),
						logger.Int("total", len(candidates)),
						logger.Int("accepted", int(atomic.LoadInt64(&accepted))),
						logger.Int("rejected", int(atomic.LoadInt64(&rejected))),
						logger.Int("failed", int(atomic.LoadInt64(&failed))))
				}
			}
		}()
	}

	go func() {
		defer close(candChan)
		for _, c := range candidates {
			select {
			case <-ctx.Done():
				return
			case candChan <- c:
			}
		}
	}()

	wg.Wait()

	stats.CandidatesSubmitted = int(atomic.LoadInt64(&submitted))
	stats.CandidatesAccepted = int(atomic.LoadInt64(&accepted))
	stats.CandidatesRejected = int(atomic.LoadInt64(&rejected))
	stats.CandidatesFailed = int(atomic.LoadInt64(&failed))

	log.Info(ctx, "candidate submission completed",
		logger.Int("accepted", stats.CandidatesAccepted),
		logger.Int("rejected", stats.CandidatesRejected),
		logger.Int("failed", stats.CandidatesFailed))

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("submission interrupted: %w", err)
	}
	if stats.CandidatesAccepted == 0 {
		return fmt.Errorf("no candidates accepted out of %d", stats.CandidatesSubmitted)
	}
	return nil
}

type submitResult int

const (
	resultFailed submitResult = iota
	resultAccepted
	resultRejected
)

// submitSingleCandidate upserts one candidate. A 4xx is a rejection by
// validation; anything else that is not 200 counts as a failure.
func submitSingleCandidate(ctx context.Context, client *HTTPClient, c model.Candidate) submitResult {
	_, err := client.Do(ctx, http.MethodPut, "/candidates", c, nil, nil, http.StatusOK)
	if err == nil {
		return resultAccepted
	}
	var se *StatusError
	if errors.As(err, &se) && se.Code >= 400 && se.Code < 500 {
		return resultRejected
	}
	return resultFailed
}
