package loadgen

import (
	"context"
	"errors"
	"fmt"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/pkg/logger"
)

// ErrNoMatches is returned when the service ranked nothing.
var ErrNoMatches = errors.New("no matches to verify")

// verifyResults checks that rankings, trending and the board agree with
// what the run submitted.
func verifyResults(ctx context.Context, config *Config, res runResult, candidates []model.Candidate, stats *Stats) error {
	log := logger.Get()
	log.Info(ctx, "verifying results")

	if len(res.matches) == 0 {
		return ErrNoMatches
	}
	known := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		known[c.ID] = struct{}{}
	}

	if err := verifyMatchOrder(res.matches, known); err != nil {
		return err
	}
	if err := verifyTrendingOrder(res.trending); err != nil {
		return err
	}
	if tracked := countCards(res); tracked < stats.PipelineTracked {
		return fmt.Errorf("board shows %d cards, tracked %d", tracked, stats.PipelineTracked)
	}
	if !stats.EventReplayed {
		log.Warn(ctx, "event retry was not answered as a replay")
	}

	displayTopMatches(ctx, res.matches, config.Verbose)
	log.Info(ctx, "result verification completed")
	return nil
}

// verifyMatchOrder checks ranks run 1..n, scores never increase and every
// candidate is one the run submitted, listed once.
func verifyMatchOrder(matches []model.MatchResult, known map[string]struct{}) error {
	seen := make(map[string]struct{}, len(matches))
	for i, m := range matches {
		if m.Rank != i+1 {
			return fmt.Errorf("match %d has rank %d", i, m.Rank)
		}
		if i > 0 && m.Score > matches[i-1].Score {
			return fmt.Errorf("matches not properly sorted: entry %d has higher score than entry %d", i, i-1)
		}
		if _, ok := known[m.CandidateID]; !ok && known != nil {
			return fmt.Errorf("match %d references unknown candidate %s", i, m.CandidateID)
		}
		if _, dup := seen[m.CandidateID]; dup {
			return fmt.Errorf("candidate %s ranked twice", m.CandidateID)
		}
		seen[m.CandidateID] = struct{}{}
	}
	return nil
}

// verifyTrendingOrder checks the trending list is ranked by descending score.
func verifyTrendingOrder(trending []model.TrendingResult) error {
	for i, t := range trending {
		if t.Rank != i+1 {
			return fmt.Errorf("trending entry %d has rank %d", i, t.Rank)
		}
		if i > 0 && t.Score > trending[i-1].Score {
			return fmt.Errorf("trending not properly sorted: entry %d has higher score than entry %d", i, i-1)
		}
	}
	return nil
}

func countCards(res runResult) int {
	n := 0
	for _, col := range res.board.Columns {
		n += len(col.Cards)
	}
	return n
}

// displayTopMatches logs the head of the ranking.
func displayTopMatches(ctx context.Context, matches []model.MatchResult, verbose bool) {
	topN := 10
	if len(matches) < topN {
		topN = len(matches)
	}
	log := logger.Get()
	for _, m := range matches[:topN] {
		log.Info(ctx, "top match",
			logger.Int("rank", m.Rank),
			logger.String("candidateID", m.CandidateID),
			logger.Float64("score", m.Score),
			logger.Int("reasons", len(m.Reasons)))
	}

	if verbose {
		log.Info(ctx, "score statistics",
			logger.Float64("average", calculateAverageScore(matches)),
			logger.Float64("maximum", matches[0].Score),
			logger.Float64("minimum", matches[len(matches)-1].Score))
	}
}

// calculateAverageScore calculates the average score of matches.
func calculateAverageScore(matches []model.MatchResult) float64 {
	if len(matches) == 0 {
		return 0
	}
	sum := 0.0
	for _, m := range matches {
		sum += m.Score
	}
	return sum / float64(len(matches))
}
