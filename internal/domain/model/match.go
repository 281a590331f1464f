package model

import "time"

// ReasonKind tags why a candidate earned points.
type ReasonKind string

// Reason kinds double as keys of configurable weights.
const (
	ReasonPosition          ReasonKind = "position"
	ReasonSecondaryPosition ReasonKind = "secondary_position"
	ReasonGradYear          ReasonKind = "grad_year"
	ReasonState             ReasonKind = "state"
	ReasonPitchVelo         ReasonKind = "pitch_velo"
	ReasonExitVelo          ReasonKind = "exit_velo"
	ReasonSprintTime        ReasonKind = "sprint_time"
	ReasonMinHeight         ReasonKind = "min_height"
	ReasonMaxHeight         ReasonKind = "max_height"
	ReasonProgramInterest   ReasonKind = "program_interest"
)

// Reason is one satisfied constraint with the value that satisfied it.
type Reason struct {
	Kind   ReasonKind `json:"kind"`
	Value  string     `json:"value"`
	Points float64    `json:"points"`
}

// MatchResult is the outcome of scoring one candidate against one need profile.
type MatchResult struct {
	Rank         int       `json:"rank,omitempty"`
	CandidateID  string    `json:"candidate_id"`
	Score        float64   `json:"score"`
	Reasons      []Reason  `json:"reasons"`
	LastActivity time.Time `json:"last_activity,omitempty"`
}

// TrendingResult is a candidate with its engagement-driven trending score.
type TrendingResult struct {
	Rank        int     `json:"rank"`
	CandidateID string  `json:"candidate_id"`
	Name        string  `json:"name,omitempty"`
	Score       float64 `json:"score"`
}
