// Package model contains domain models passed between layers.
package model

import (
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/errs"
)

// NeedProfile is a program's declared recruiting requirements.
// A nil threshold means "no constraint".
type NeedProfile struct {
	ProgramID       string   `json:"program_id" yaml:"program_id"`
	ProgramName     string   `json:"program_name,omitempty" yaml:"program_name"`
	GradYears       []int    `json:"grad_years,omitempty" yaml:"grad_years"`
	Positions       []string `json:"positions,omitempty" yaml:"positions"`
	PreferredStates []string `json:"preferred_states,omitempty" yaml:"preferred_states"`
	MinPitchVelo    *float64 `json:"min_pitch_velo,omitempty" yaml:"min_pitch_velo"`
	MinExitVelo     *float64 `json:"min_exit_velo,omitempty" yaml:"min_exit_velo"`
	MaxSprintTime   *float64 `json:"max_sprint_time,omitempty" yaml:"max_sprint_time"`
	MinHeight       *float64 `json:"min_height,omitempty" yaml:"min_height"`
	MaxHeight       *float64 `json:"max_height,omitempty" yaml:"max_height"`
}

// Validate enforces that thresholds are absent or positive.
func (n NeedProfile) Validate() error {
	const op = "model.NeedProfile.Validate"
	for _, y := range n.GradYears {
		if y <= 0 {
			return errs.Validationf(op, "grad year %d must be positive", y)
		}
	}
	thresholds := []struct {
		name string
		v    *float64
	}{
		{"min_pitch_velo", n.MinPitchVelo},
		{"min_exit_velo", n.MinExitVelo},
		{"max_sprint_time", n.MaxSprintTime},
		{"min_height", n.MinHeight},
		{"max_height", n.MaxHeight},
	}
	for _, t := range thresholds {
		if t.v != nil && *t.v <= 0 {
			return errs.Validationf(op, "%s must be positive, got %v", t.name, *t.v)
		}
	}
	if n.MinHeight != nil && n.MaxHeight != nil && *n.MinHeight > *n.MaxHeight {
		return errs.Validationf(op, "min_height %v exceeds max_height %v", *n.MinHeight, *n.MaxHeight)
	}
	return nil
}

// IsEmpty reports whether the profile constrains nothing.
func (n NeedProfile) IsEmpty() bool {
	return len(n.GradYears) == 0 && len(n.Positions) == 0 && len(n.PreferredStates) == 0 &&
		n.MinPitchVelo == nil && n.MinExitVelo == nil && n.MaxSprintTime == nil &&
		n.MinHeight == nil && n.MaxHeight == nil && n.ProgramName == ""
}

// Float returns a pointer to v. Handy for building thresholds and metrics.
func Float(v float64) *float64 { return &v }
