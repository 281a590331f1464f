package repository

import (
	"slices"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"
)

// Stored values never share slices or pointers with callers.

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneCandidate(c model.Candidate) model.Candidate {
	c.Height = cloneFloat(c.Height)
	c.Weight = cloneFloat(c.Weight)
	c.PitchVelo = cloneFloat(c.PitchVelo)
	c.ExitVelo = cloneFloat(c.ExitVelo)
	c.SprintTime = cloneFloat(c.SprintTime)
	c.TopSchools = slices.Clone(c.TopSchools)
	return c
}

func cloneNeeds(n model.NeedProfile) model.NeedProfile {
	n.GradYears = slices.Clone(n.GradYears)
	n.Positions = slices.Clone(n.Positions)
	n.PreferredStates = slices.Clone(n.PreferredStates)
	n.MinPitchVelo = cloneFloat(n.MinPitchVelo)
	n.MinExitVelo = cloneFloat(n.MinExitVelo)
	n.MaxSprintTime = cloneFloat(n.MaxSprintTime)
	n.MinHeight = cloneFloat(n.MinHeight)
	n.MaxHeight = cloneFloat(n.MaxHeight)
	return n
}

func cloneEvent(ev model.CalendarEvent) model.CalendarEvent {
	ev.StartTime = cloneString(ev.StartTime)
	ev.EndTime = cloneString(ev.EndTime)
	ev.PlayerIDs = slices.Clone(ev.PlayerIDs)
	if ev.PlayerIDs == nil {
		ev.PlayerIDs = []string{}
	}
	return ev
}
