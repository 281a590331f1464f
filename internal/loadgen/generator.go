package loadgen

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	activityWindowDays = 30
	maxEngagement      = 40
)

// Metric ranges per performer tier.
const (
	pitchVeloMin   = 68.0
	pitchVeloRange = 28.0
	exitVeloMin    = 70.0
	exitVeloRange  = 35.0
	sprintMin      = 6.4
	sprintRange    = 1.4
	heightMin      = 64.0
	heightRange    = 14.0
	weightMin      = 140.0
	weightRange    = 90.0
	eliteBoost     = 0.85
	eliteChance    = 8
)

var (
	positions  = []string{"P", "C", "1B", "2B", "3B", "SS", "LF", "CF", "RF"}
	states     = []string{"TX", "OK", "CA", "FL", "GA", "AZ", "LA", "NC"}
	hands      = []string{"R", "L", "S"}
	firstNames = []string{"Alex", "Ben", "Cole", "Diego", "Eli", "Finn", "Gabe", "Hayden", "Isaac", "Jace"}
	lastNames  = []string{"Reyes", "Walker", "Nguyen", "Hart", "Brooks", "Soto", "Price", "Lane"}
)

// getRandomFloat returns a random float64 in [0, 1) using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// getRandomInt returns a random int in [0, n).
func getRandomInt(n int) int {
	if n <= 0 {
		return 0
	}
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

func pick[T any](xs []T) T {
	return xs[getRandomInt(len(xs))]
}

// round1 keeps generated metrics to one decimal.
func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}

// generateNeeds builds the needs profile the run ranks against.
func generateNeeds(programID string, now time.Time) model.NeedProfile {
	year := now.Year()
	return model.NeedProfile{
		ProgramID:       programID,
		ProgramName:     "Load Generator University",
		GradYears:       []int{year + 1, year + 2},
		Positions:       []string{"SS", "CF", "P"},
		PreferredStates: []string{"TX", "OK"},
		MinPitchVelo:    model.Float(85),
		MinExitVelo:     model.Float(90),
		MaxSprintTime:   model.Float(7.0),
	}
}

// generateCandidates creates the configured number of candidates with unique IDs.
func generateCandidates(ctx context.Context, config *Config, now time.Time, stats *Stats) ([]model.Candidate, error) {
	logger.Get().Info(ctx, "generating candidates", logger.Int("count", config.Candidates))

	candidates := make([]model.Candidate, config.Candidates)
	for i := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during generation: %w", err)
		}
		candidates[i] = generateSingleCandidate(uuid.NewString(), now)
	}

	stats.CandidatesGenerated = len(candidates)
	logger.Get().Info(ctx, "generated candidates successfully", logger.Int("count", len(candidates)))
	return candidates, nil
}

// generateSingleCandidate creates a candidate with a varied metric
// distribution. Roughly one in eliteChance is an elite prospect.
func generateSingleCandidate(id string, now time.Time) model.Candidate {
	tier := getRandomFloat()
	if getRandomInt(eliteChance) == 0 {
		tier = eliteBoost + getRandomFloat()*(1-eliteBoost)
	}
	primary := pick(positions)

	c := model.Candidate{
		ID:              id,
		Name:            pick(firstNames) + " " + pick(lastNames),
		PrimaryPosition: primary,
		GradYear:        now.Year() + getRandomInt(4),
		State:           pick(states),
		Bats:            pick(hands),
		Throws:          pick(hands[:2]),
		Height:          model.Float(round1(heightMin + getRandomFloat()*heightRange)),
		Weight:          model.Float(round1(weightMin + getRandomFloat()*weightRange)),
		ExitVelo:        model.Float(round1(exitVeloMin + tier*exitVeloRange)),
		SprintTime:      model.Float(round1(sprintMin + (1-tier)*sprintRange)),
		Verified:        getRandomInt(2) == 0,
		HasVideo:        getRandomInt(3) > 0,
		LastActivity:    now.Add(-time.Duration(getRandomInt(activityWindowDays*24)) * time.Hour).UTC(),
		Engagement: model.Engagement{
			RecentViews:   getRandomInt(maxEngagement),
			WatchlistAdds: getRandomInt(maxEngagement / 4),
			RecentUpdates: getRandomInt(maxEngagement / 8),
		},
	}
	if primary == "P" || getRandomInt(5) == 0 {
		c.PitchVelo = model.Float(round1(pitchVeloMin + tier*pitchVeloRange))
	}
	if second := pick(positions); second != primary {
		c.SecondaryPosition = second
	}
	return c
}
