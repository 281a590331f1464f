package model

import "time"

// ActivityKind names a pipeline or calendar mutation.
type ActivityKind string

// Activity kinds.
const (
	ActivityStatusChanged ActivityKind = "pipeline.status_changed"
	ActivityNoteAdded     ActivityKind = "pipeline.note_added"
	ActivityRemoved       ActivityKind = "pipeline.removed"
	ActivityEventCreated  ActivityKind = "calendar.event_created"
	ActivityEventUpdated  ActivityKind = "calendar.event_updated"
	ActivityEventDeleted  ActivityKind = "calendar.event_deleted"
)

// Activity records a completed mutation for downstream subscribers.
type Activity struct {
	ID        string       `json:"id"`
	Kind      ActivityKind `json:"kind"`
	ProgramID string       `json:"program_id"`
	PlayerIDs []string     `json:"player_ids,omitempty"`
	EventID   string       `json:"event_id,omitempty"`
	Status    Status       `json:"status,omitempty"`
	At        time.Time    `json:"at"`
}
