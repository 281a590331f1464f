package sqlstore

import (
	"time"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"
)

type playerRow struct {
	ID                string `gorm:"primaryKey"`
	Name              string
	PrimaryPosition   string `gorm:"index;not null"`
	SecondaryPosition string
	GradYear          int    `gorm:"index;not null"`
	State             string `gorm:"index"`
	Bats              string
	Throws            string
	Height            *float64
	Weight            *float64
	PitchVelo         *float64
	ExitVelo          *float64
	SprintTime        *float64
	Verified          bool
	HasVideo          bool
	Hidden            bool `gorm:"index"`
	LastActivity      *time.Time
	TopSchools        []string `gorm:"serializer:json"`
	RecentViews       int
	WatchlistAdds     int
	RecentUpdates     int
}

func (playerRow) TableName() string { return "players" }

type needRow struct {
	ProgramID       string `gorm:"primaryKey"`
	ProgramName     string
	GradYears       []int    `gorm:"serializer:json"`
	Positions       []string `gorm:"serializer:json"`
	PreferredStates []string `gorm:"serializer:json"`
	MinPitchVelo    *float64
	MinExitVelo     *float64
	MaxSprintTime   *float64
	MinHeight       *float64
	MaxHeight       *float64
}

func (needRow) TableName() string { return "need_profiles" }

// pipelineRow is unique per (program_id, player_id).
type pipelineRow struct {
	ID           string `gorm:"primaryKey"`
	ProgramID    string `gorm:"uniqueIndex:idx_pipeline_program_player;not null"`
	PlayerID     string `gorm:"uniqueIndex:idx_pipeline_program_player;not null"`
	Status       string `gorm:"type:varchar(32);index;not null"`
	PositionRole string
	Notes        string
	CreatedAt    time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime:false;index"`
}

func (pipelineRow) TableName() string { return "pipeline_entries" }

type eventRow struct {
	ID                string `gorm:"primaryKey"`
	ProgramID         string `gorm:"index;not null"`
	Type              string `gorm:"type:varchar(16);not null"`
	Title             string `gorm:"not null"`
	Date              string `gorm:"type:char(10);index;not null"`
	StartTime         *string
	EndTime           *string
	Location          string
	Notes             string
	CampEventID       string
	OpponentEventName string
	CreatedAt         time.Time        `gorm:"autoCreateTime:false"`
	UpdatedAt         time.Time        `gorm:"autoUpdateTime:false"`
	Links             []eventPlayerRow `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
}

func (eventRow) TableName() string { return "calendar_events" }

type eventPlayerRow struct {
	EventID  string `gorm:"primaryKey"`
	PlayerID string `gorm:"primaryKey;index"`
}

func (eventPlayerRow) TableName() string { return "calendar_event_players" }

func toPlayerRow(c model.Candidate) playerRow {
	r := playerRow{
		ID:                c.ID,
		Name:              c.Name,
		PrimaryPosition:   c.PrimaryPosition,
		SecondaryPosition: c.SecondaryPosition,
		GradYear:          c.GradYear,
		State:             c.State,
		Bats:              c.Bats,
		Throws:            c.Throws,
		Height:            c.Height,
		Weight:            c.Weight,
		PitchVelo:         c.PitchVelo,
		ExitVelo:          c.ExitVelo,
		SprintTime:        c.SprintTime,
		Verified:          c.Verified,
		HasVideo:          c.HasVideo,
		Hidden:            c.Hidden,
		TopSchools:        c.TopSchools,
		RecentViews:       c.Engagement.RecentViews,
		WatchlistAdds:     c.Engagement.WatchlistAdds,
		RecentUpdates:     c.Engagement.RecentUpdates,
	}
	if !c.LastActivity.IsZero() {
		t := c.LastActivity.UTC()
		r.LastActivity = &t
	}
	return r
}

func (r playerRow) toModel() model.Candidate {
	c := model.Candidate{
		ID:                r.ID,
		Name:              r.Name,
		PrimaryPosition:   r.PrimaryPosition,
		SecondaryPosition: r.SecondaryPosition,
		GradYear:          r.GradYear,
		State:             r.State,
		Bats:              r.Bats,
		Throws:            r.Throws,
		Height:            r.Height,
		Weight:            r.Weight,
		PitchVelo:         r.PitchVelo,
		ExitVelo:          r.ExitVelo,
		SprintTime:        r.SprintTime,
		Verified:          r.Verified,
		HasVideo:          r.HasVideo,
		Hidden:            r.Hidden,
		TopSchools:        r.TopSchools,
		Engagement: model.Engagement{
			RecentViews:   r.RecentViews,
			WatchlistAdds: r.WatchlistAdds,
			RecentUpdates: r.RecentUpdates,
		},
	}
	if r.LastActivity != nil {
		c.LastActivity = *r.LastActivity
	}
	return c
}

func toNeedRow(n model.NeedProfile) needRow {
	return needRow{
		ProgramID:       n.ProgramID,
		ProgramName:     n.ProgramName,
		GradYears:       n.GradYears,
		Positions:       n.Positions,
		PreferredStates: n.PreferredStates,
		MinPitchVelo:    n.MinPitchVelo,
		MinExitVelo:     n.MinExitVelo,
		MaxSprintTime:   n.MaxSprintTime,
		MinHeight:       n.MinHeight,
		MaxHeight:       n.MaxHeight,
	}
}

func (r needRow) toModel() model.NeedProfile {
	return model.NeedProfile{
		ProgramID:       r.ProgramID,
		ProgramName:     r.ProgramName,
		GradYears:       r.GradYears,
		Positions:       r.Positions,
		PreferredStates: r.PreferredStates,
		MinPitchVelo:    r.MinPitchVelo,
		MinExitVelo:     r.MinExitVelo,
		MaxSprintTime:   r.MaxSprintTime,
		MinHeight:       r.MinHeight,
		MaxHeight:       r.MaxHeight,
	}
}

func (r pipelineRow) toModel() model.PipelineEntry {
	return model.PipelineEntry{
		ID:           r.ID,
		ProgramID:    r.ProgramID,
		PlayerID:     r.PlayerID,
		Status:       model.Status(r.Status),
		PositionRole: r.PositionRole,
		Notes:        r.Notes,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func toEventRow(ev model.CalendarEvent) eventRow {
	return eventRow{
		ID:                ev.ID,
		ProgramID:         ev.ProgramID,
		Type:              string(ev.Type),
		Title:             ev.Title,
		Date:              string(ev.Date),
		StartTime:         ev.StartTime,
		EndTime:           ev.EndTime,
		Location:          ev.Location,
		Notes:             ev.Notes,
		CampEventID:       ev.CampEventID,
		OpponentEventName: ev.OpponentEventName,
		CreatedAt:         ev.CreatedAt.UTC(),
		UpdatedAt:         ev.UpdatedAt.UTC(),
	}
}

func linkRows(eventID string, playerIDs []string) []eventPlayerRow {
	rows := make([]eventPlayerRow, len(playerIDs))
	for i, id := range playerIDs {
		rows[i] = eventPlayerRow{EventID: eventID, PlayerID: id}
	}
	return rows
}

func (r eventRow) toModel() model.CalendarEvent {
	ids := make([]string, len(r.Links))
	for i, l := range r.Links {
		ids[i] = l.PlayerID
	}
	return model.CalendarEvent{
		ID:                r.ID,
		ProgramID:         r.ProgramID,
		Type:              model.EventType(r.Type),
		Title:             r.Title,
		Date:              model.Date(r.Date),
		StartTime:         r.StartTime,
		EndTime:           r.EndTime,
		Location:          r.Location,
		Notes:             r.Notes,
		CampEventID:       r.CampEventID,
		OpponentEventName: r.OpponentEventName,
		PlayerIDs:         ids,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}
