// Package scoring ranks candidates against a program's need profile.
//
// Scores are additive: each satisfied constraint contributes its weight and
// the total is capped at MaxScore. An absent constraint contributes nothing and
// missing candidate data is never an error, so a candidate that satisfies a
// superset of another's constraints never scores lower.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/errs"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"
)

// MaxScore is the upper bound of a match score.
const MaxScore = 100

const (
	defaultMaxReasons  = 3
	defaultRecencyDays = 14
)

// DefaultWeights returns the stock weight per constraint.
func DefaultWeights() map[model.ReasonKind]float64 {
	return map[model.ReasonKind]float64{
		model.ReasonPosition:          30,
		model.ReasonSecondaryPosition: 15,
		model.ReasonGradYear:          25,
		model.ReasonState:             20,
		model.ReasonPitchVelo:         20,
		model.ReasonExitVelo:          15,
		model.ReasonSprintTime:        10,
		model.ReasonMinHeight:         5,
		model.ReasonMaxHeight:         5,
		model.ReasonProgramInterest:   10,
	}
}

// Scorer is a pure, stateless-after-construction matcher. Safe for concurrent use.
type Scorer struct {
	weights     map[model.ReasonKind]float64
	maxReasons  int
	recencyDays int
}

// New creates a Scorer with default weights.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		weights:     DefaultWeights(),
		maxReasons:  defaultMaxReasons,
		recencyDays: defaultRecencyDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weight returns the configured weight of a constraint.
func (s *Scorer) Weight(kind model.ReasonKind) float64 { return s.weights[kind] }

// Score computes the match of one candidate against one need profile.
func (s *Scorer) Score(need model.NeedProfile, c model.Candidate) (model.MatchResult, error) {
	const op = "scoring.Score"
	if err := need.Validate(); err != nil {
		return model.MatchResult{}, errs.Wrap(op, err)
	}
	if err := c.Validate(); err != nil {
		return model.MatchResult{}, errs.Wrap(op, err)
	}
	return s.score(need, c), nil
}

func (s *Scorer) score(need model.NeedProfile, c model.Candidate) model.MatchResult {
	var reasons []model.Reason
	add := func(kind model.ReasonKind, value string) {
		if w := s.weights[kind]; w > 0 {
			reasons = append(reasons, model.Reason{Kind: kind, Value: value, Points: w})
		}
	}

	switch {
	case containsFold(need.Positions, c.PrimaryPosition):
		add(model.ReasonPosition, strings.ToUpper(c.PrimaryPosition))
	case c.SecondaryPosition != "" && containsFold(need.Positions, c.SecondaryPosition):
		add(model.ReasonSecondaryPosition, strings.ToUpper(c.SecondaryPosition))
	}
	if slices.Contains(need.GradYears, c.GradYear) {
		add(model.ReasonGradYear, strconv.Itoa(c.GradYear))
	}
	if c.State != "" && containsFold(need.PreferredStates, c.State) {
		add(model.ReasonState, strings.ToUpper(c.State))
	}
	if atLeast(c.PitchVelo, need.MinPitchVelo) {
		add(model.ReasonPitchVelo, fmt.Sprintf("%s mph", num(*c.PitchVelo)))
	}
	if atLeast(c.ExitVelo, need.MinExitVelo) {
		add(model.ReasonExitVelo, fmt.Sprintf("%s mph", num(*c.ExitVelo)))
	}
	if atMost(c.SprintTime, need.MaxSprintTime) {
		add(model.ReasonSprintTime, fmt.Sprintf("%ss", num(*c.SprintTime)))
	}
	if atLeast(c.Height, need.MinHeight) {
		add(model.ReasonMinHeight, fmt.Sprintf("%s in", num(*c.Height)))
	}
	if atMost(c.Height, need.MaxHeight) {
		add(model.ReasonMaxHeight, fmt.Sprintf("%s in", num(*c.Height)))
	}
	if need.ProgramName != "" && containsFold(c.TopSchools, need.ProgramName) {
		add(model.ReasonProgramInterest, need.ProgramName)
	}

	var total float64
	for _, r := range reasons {
		total += r.Points
	}
	sort.SliceStable(reasons, func(i, j int) bool { return reasons[i].Points > reasons[j].Points })
	if len(reasons) > s.maxReasons {
		reasons = reasons[:s.maxReasons]
	}
	if reasons == nil {
		reasons = []model.Reason{}
	}

	return model.MatchResult{
		CandidateID:  c.ID,
		Score:        math.Min(MaxScore, total),
		Reasons:      reasons,
		LastActivity: c.LastActivity,
	}
}

// Rank scores every candidate and orders them by score desc, then more recent
// activity, then candidate id. Ranks start at 1.
func (s *Scorer) Rank(need model.NeedProfile, candidates []model.Candidate) ([]model.MatchResult, error) {
	const op = "scoring.Rank"
	if err := need.Validate(); err != nil {
		return nil, errs.Wrap(op, err)
	}
	if need.IsEmpty() {
		return nil, ErrInsufficientNeeds
	}
	out := make([]model.MatchResult, 0, len(candidates))
	for _, c := range candidates {
		if err := c.Validate(); err != nil {
			return nil, errs.Wrap(op, err)
		}
		out = append(out, s.score(need, c))
	}
	SortResults(out)
	return out, nil
}

// SortResults orders results and assigns ranks in place.
func SortResults(results []model.MatchResult) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.LastActivity.Equal(b.LastActivity) {
			return a.LastActivity.After(b.LastActivity)
		}
		return a.CandidateID < b.CandidateID
	})
	for i := range results {
		results[i].Rank = i + 1
	}
}

// IsInsufficientNeeds reports whether err came from ranking against an empty profile.
func IsInsufficientNeeds(err error) bool {
	return errors.Is(err, ErrInsufficientNeeds)
}

func containsFold(list []string, v string) bool {
	v = strings.TrimSpace(v)
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), v) {
			return true
		}
	}
	return false
}

func atLeast(v, minimum *float64) bool {
	return v != nil && minimum != nil && *v >= *minimum
}

func atMost(v, maximum *float64) bool {
	return v != nil && maximum != nil && *v <= *maximum
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
