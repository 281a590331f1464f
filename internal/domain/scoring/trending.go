package scoring

import (
	"math"
	"sort"
	"time"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"
)

// Trending weights.
const (
	viewWeight      = 1.5
	watchlistWeight = 3
	updateWeight    = 2
	recencyWeight   = 2
	videoBonus      = 10
)

// Trending scores a candidate's recent engagement at the instant now.
// Recently active candidates earn up to recencyDays*2 points, decaying by day.
func (s *Scorer) Trending(c model.Candidate, now time.Time) float64 {
	e := c.Engagement
	score := float64(e.RecentViews)*viewWeight +
		float64(e.WatchlistAdds)*watchlistWeight +
		float64(e.RecentUpdates)*updateWeight
	if !c.LastActivity.IsZero() {
		days := math.Floor(now.Sub(c.LastActivity).Hours() / 24)
		score += math.Max(0, float64(s.recencyDays)-math.Max(0, days)) * recencyWeight
	}
	if c.HasVideo {
		score += videoBonus
	}
	return score
}

// RankTrending orders candidates by trending score with the Rank tie-break.
// Hidden candidates are skipped. limit <= 0 returns everything.
func (s *Scorer) RankTrending(candidates []model.Candidate, now time.Time, limit int) []model.TrendingResult {
	type scored struct {
		c     model.Candidate
		score float64
	}
	items := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		if c.Hidden {
			continue
		}
		items = append(items, scored{c: c, score: s.Trending(c, now)})
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if !a.c.LastActivity.Equal(b.c.LastActivity) {
			return a.c.LastActivity.After(b.c.LastActivity)
		}
		return a.c.ID < b.c.ID
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	out := make([]model.TrendingResult, len(items))
	for i, it := range items {
		out[i] = model.TrendingResult{Rank: i + 1, CandidateID: it.c.ID, Name: it.c.Name, Score: it.score}
	}
	return out
}
