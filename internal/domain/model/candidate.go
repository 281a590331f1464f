package model

import (
	"time"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/errs"
)

// Candidate is the snapshot of a player's measurable attributes used for
// discovery and matching. Optional metrics are nil when unknown.
type Candidate struct {
	ID                string     `json:"id" yaml:"id"`
	Name              string     `json:"name,omitempty" yaml:"name"`
	PrimaryPosition   string     `json:"primary_position" yaml:"primary_position"`
	SecondaryPosition string     `json:"secondary_position,omitempty" yaml:"secondary_position"`
	GradYear          int        `json:"grad_year" yaml:"grad_year"`
	State             string     `json:"state,omitempty" yaml:"state"`
	Bats              string     `json:"bats,omitempty" yaml:"bats"`
	Throws            string     `json:"throws,omitempty" yaml:"throws"`
	Height            *float64   `json:"height,omitempty" yaml:"height"`
	Weight            *float64   `json:"weight,omitempty" yaml:"weight"`
	PitchVelo         *float64   `json:"pitch_velo,omitempty" yaml:"pitch_velo"`
	ExitVelo          *float64   `json:"exit_velo,omitempty" yaml:"exit_velo"`
	SprintTime        *float64   `json:"sprint_time,omitempty" yaml:"sprint_time"`
	Verified          bool       `json:"verified" yaml:"verified"`
	HasVideo          bool       `json:"has_video" yaml:"has_video"`
	LastActivity      time.Time  `json:"last_activity,omitempty" yaml:"last_activity"`
	TopSchools        []string   `json:"top_schools,omitempty" yaml:"top_schools"`
	Hidden            bool       `json:"hidden,omitempty" yaml:"hidden"`
	Engagement        Engagement `json:"engagement" yaml:"engagement"`
}

// Engagement holds the interest counters behind the trending score.
type Engagement struct {
	RecentViews   int `json:"recent_views" yaml:"recent_views"`
	WatchlistAdds int `json:"watchlist_adds" yaml:"watchlist_adds"`
	RecentUpdates int `json:"recent_updates" yaml:"recent_updates"`
}

// Validate checks the minimum a candidate must carry to be scored.
func (c Candidate) Validate() error {
	const op = "model.Candidate.Validate"
	switch {
	case c.ID == "":
		return errs.Validationf(op, "candidate id is required")
	case c.PrimaryPosition == "":
		return errs.Validationf(op, "candidate %s: primary position is required", c.ID)
	case c.GradYear <= 0:
		return errs.Validationf(op, "candidate %s: grad year must be positive, got %d", c.ID, c.GradYear)
	}
	metrics := []struct {
		name string
		v    *float64
	}{
		{"height", c.Height},
		{"weight", c.Weight},
		{"pitch_velo", c.PitchVelo},
		{"exit_velo", c.ExitVelo},
		{"sprint_time", c.SprintTime},
	}
	for _, m := range metrics {
		if m.v != nil && *m.v <= 0 {
			return errs.Validationf(op, "candidate %s: %s must be positive, got %v", c.ID, m.name, *m.v)
		}
	}
	if c.Engagement.RecentViews < 0 || c.Engagement.WatchlistAdds < 0 || c.Engagement.RecentUpdates < 0 {
		return errs.Validationf(op, "candidate %s: engagement counters must not be negative", c.ID)
	}
	return nil
}
