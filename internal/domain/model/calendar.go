package model

import (
	"strings"
	"time"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/errs"
)

// EventType classifies calendar events.
type EventType string

// Calendar event types.
const (
	EventCamp       EventType = "camp"
	EventEvaluation EventType = "evaluation"
	EventVisit      EventType = "visit"
	EventOther      EventType = "other"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case EventCamp, EventEvaluation, EventVisit, EventOther:
		return true
	}
	return false
}

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// Date is a calendar day formatted YYYY-MM-DD. Lexical order is chronological.
type Date string

// ParseDate validates and normalizes a YYYY-MM-DD string.
func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return "", errs.Validationf("model.ParseDate", "date %q must be YYYY-MM-DD", raw)
	}
	return Date(t.Format(dateLayout)), nil
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

// AddDays returns the date n days later. d must be valid.
func (d Date) AddDays(n int) Date {
	t, err := time.Parse(dateLayout, string(d))
	if err != nil {
		return d
	}
	return Date(t.AddDate(0, 0, n).Format(dateLayout))
}

// ParseClock validates and normalizes an HH:MM string.
func ParseClock(raw string) (string, error) {
	t, err := time.Parse(clockLayout, strings.TrimSpace(raw))
	if err != nil {
		return "", errs.Validationf("model.ParseClock", "time %q must be HH:MM", raw)
	}
	return t.Format(clockLayout), nil
}

// CalendarEvent is a scheduled program activity optionally linked to players.
type CalendarEvent struct {
	ID                string    `json:"id"`
	ProgramID         string    `json:"program_id"`
	Type              EventType `json:"type"`
	Title             string    `json:"title"`
	Date              Date      `json:"date"`
	StartTime         *string   `json:"start_time,omitempty"`
	EndTime           *string   `json:"end_time,omitempty"`
	Location          string    `json:"location,omitempty"`
	Notes             string    `json:"notes,omitempty"`
	CampEventID       string    `json:"camp_event_id,omitempty"`
	OpponentEventName string    `json:"opponent_event_name,omitempty"`
	PlayerIDs         []string  `json:"player_ids"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// EventInput carries the fields of a new event.
type EventInput struct {
	Type              EventType `json:"type" yaml:"type"`
	Title             string    `json:"title" yaml:"title"`
	Date              string    `json:"date" yaml:"date"`
	StartTime         *string   `json:"start_time,omitempty" yaml:"start_time"`
	EndTime           *string   `json:"end_time,omitempty" yaml:"end_time"`
	Location          string    `json:"location,omitempty" yaml:"location"`
	Notes             string    `json:"notes,omitempty" yaml:"notes"`
	CampEventID       string    `json:"camp_event_id,omitempty" yaml:"camp_event_id"`
	OpponentEventName string    `json:"opponent_event_name,omitempty" yaml:"opponent_event_name"`
	PlayerIDs         []string  `json:"player_ids,omitempty" yaml:"player_ids"`
}

// EventPatch is a partial update. Nil fields are left untouched.
// A non-nil PlayerIDs replaces the whole link set, an empty slice clears it.
type EventPatch struct {
	Type              *EventType `json:"type,omitempty"`
	Title             *string    `json:"title,omitempty"`
	Date              *string    `json:"date,omitempty"`
	StartTime         *string    `json:"start_time,omitempty"`
	EndTime           *string    `json:"end_time,omitempty"`
	Location          *string    `json:"location,omitempty"`
	Notes             *string    `json:"notes,omitempty"`
	CampEventID       *string    `json:"camp_event_id,omitempty"`
	OpponentEventName *string    `json:"opponent_event_name,omitempty"`
	PlayerIDs         *[]string  `json:"player_ids,omitempty"`
}
