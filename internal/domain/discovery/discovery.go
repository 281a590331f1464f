// Package discovery narrows a candidate pool with a conjunction of predicates.
package discovery

import (
	"slices"
	"strings"
	"time"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/errs"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"
)

const defaultRecencyWindow = 14 * 24 * time.Hour

// FilterState is the set of active predicates. Zero values are inactive.
type FilterState struct {
	Positions      []string `json:"positions,omitempty"`
	GradYears      []int    `json:"grad_years,omitempty"`
	States         []string `json:"states,omitempty"`
	Bats           []string `json:"bats,omitempty"`
	Throws         []string `json:"throws,omitempty"`
	MinHeight      *float64 `json:"min_height,omitempty"`
	MaxHeight      *float64 `json:"max_height,omitempty"`
	MinWeight      *float64 `json:"min_weight,omitempty"`
	MaxWeight      *float64 `json:"max_weight,omitempty"`
	MaxSprintTime  *float64 `json:"max_sprint_time,omitempty"`
	MinPitchVelo   *float64 `json:"min_pitch_velo,omitempty"`
	MinExitVelo    *float64 `json:"min_exit_velo,omitempty"`
	HasVideo       bool     `json:"has_video,omitempty"`
	VerifiedOnly   bool     `json:"verified_only,omitempty"`
	RecentActivity bool     `json:"recent_activity,omitempty"`
}

// Validate rejects negative bounds and inverted ranges.
func (f FilterState) Validate() error {
	const op = "discovery.FilterState.Validate"
	bounds := []struct {
		name string
		v    *float64
	}{
		{"min_height", f.MinHeight}, {"max_height", f.MaxHeight},
		{"min_weight", f.MinWeight}, {"max_weight", f.MaxWeight},
		{"max_sprint_time", f.MaxSprintTime}, {"min_pitch_velo", f.MinPitchVelo},
		{"min_exit_velo", f.MinExitVelo},
	}
	for _, b := range bounds {
		if b.v != nil && *b.v < 0 {
			return errs.Validationf(op, "%s must not be negative", b.name)
		}
	}
	if f.MinHeight != nil && f.MaxHeight != nil && *f.MinHeight > *f.MaxHeight {
		return errs.Validationf(op, "height range is inverted")
	}
	if f.MinWeight != nil && f.MaxWeight != nil && *f.MinWeight > *f.MaxWeight {
		return errs.Validationf(op, "weight range is inverted")
	}
	return nil
}

// Filter applies FilterStates. The clock and recency window are the only state.
type Filter struct {
	window time.Duration
	now    func() time.Time
}

// New creates a Filter with a 14 day recency window and the wall clock.
func New(opts ...Option) *Filter {
	f := &Filter{window: defaultRecencyWindow, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Apply returns the candidates satisfying every active predicate, in input order.
func (f *Filter) Apply(pool []model.Candidate, state FilterState) []model.Candidate {
	preds := f.predicates(state)
	out := make([]model.Candidate, 0, len(pool))
	for _, c := range pool {
		if matchesAll(c, preds) {
			out = append(out, c)
		}
	}
	return out
}

type predicate func(model.Candidate) bool

func matchesAll(c model.Candidate, preds []predicate) bool {
	for _, p := range preds {
		if !p(c) {
			return false
		}
	}
	return true
}

func (f *Filter) predicates(s FilterState) []predicate {
	var preds []predicate
	if len(s.Positions) > 0 {
		preds = append(preds, func(c model.Candidate) bool {
			return inFold(s.Positions, c.PrimaryPosition) ||
				(c.SecondaryPosition != "" && inFold(s.Positions, c.SecondaryPosition))
		})
	}
	if len(s.GradYears) > 0 {
		preds = append(preds, func(c model.Candidate) bool { return slices.Contains(s.GradYears, c.GradYear) })
	}
	if len(s.States) > 0 {
		preds = append(preds, func(c model.Candidate) bool { return inFold(s.States, c.State) })
	}
	if len(s.Bats) > 0 {
		preds = append(preds, func(c model.Candidate) bool { return inFold(s.Bats, c.Bats) })
	}
	if len(s.Throws) > 0 {
		preds = append(preds, func(c model.Candidate) bool { return inFold(s.Throws, c.Throws) })
	}
	if s.MinHeight != nil {
		preds = append(preds, func(c model.Candidate) bool { return c.Height != nil && *c.Height >= *s.MinHeight })
	}
	if s.MaxHeight != nil {
		preds = append(preds, func(c model.Candidate) bool { return c.Height != nil && *c.Height <= *s.MaxHeight })
	}
	if s.MinWeight != nil {
		preds = append(preds, func(c model.Candidate) bool { return c.Weight != nil && *c.Weight >= *s.MinWeight })
	}
	if s.MaxWeight != nil {
		preds = append(preds, func(c model.Candidate) bool { return c.Weight != nil && *c.Weight <= *s.MaxWeight })
	}
	if s.MaxSprintTime != nil {
		preds = append(preds, func(c model.Candidate) bool { return c.SprintTime != nil && *c.SprintTime <= *s.MaxSprintTime })
	}
	if s.MinPitchVelo != nil {
		preds = append(preds, func(c model.Candidate) bool { return c.PitchVelo != nil && *c.PitchVelo >= *s.MinPitchVelo })
	}
	if s.MinExitVelo != nil {
		preds = append(preds, func(c model.Candidate) bool { return c.ExitVelo != nil && *c.ExitVelo >= *s.MinExitVelo })
	}
	if s.HasVideo {
		preds = append(preds, func(c model.Candidate) bool { return c.HasVideo })
	}
	if s.VerifiedOnly {
		preds = append(preds, func(c model.Candidate) bool { return c.Verified })
	}
	if s.RecentActivity {
		cutoff := f.now().Add(-f.window)
		preds = append(preds, func(c model.Candidate) bool {
			return !c.LastActivity.IsZero() && !c.LastActivity.Before(cutoff)
		})
	}
	return preds
}

func inFold(list []string, v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), v) {
			return true
		}
	}
	return false
}
