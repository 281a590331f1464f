package model

import (
	"strings"
	"time"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/errs"
)

// Status is a player's recruiting state within one program.
type Status string

// Pipeline statuses. Any status may move to any other.
const (
	StatusWatchlist     Status = "watchlist"
	StatusHighPriority  Status = "high_priority"
	StatusOfferExtended Status = "offer_extended"
	StatusCommitted     Status = "committed"
	StatusUninterested  Status = "uninterested"
)

// StatusAll selects every status when listing.
const StatusAll Status = "all"

// Statuses lists every valid status in funnel order.
func Statuses() []Status {
	return []Status{StatusWatchlist, StatusHighPriority, StatusOfferExtended, StatusCommitted, StatusUninterested}
}

// Valid reports whether s is a known pipeline status.
func (s Status) Valid() bool {
	switch s {
	case StatusWatchlist, StatusHighPriority, StatusOfferExtended, StatusCommitted, StatusUninterested:
		return true
	}
	return false
}

// Terminal marks statuses grouped apart for display. Transitions out of them are still allowed.
func (s Status) Terminal() bool {
	return s == StatusCommitted || s == StatusUninterested
}

// ParseStatus normalizes and validates a status string.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", errs.Validationf("model.ParseStatus", "unknown status %q", raw)
	}
	return s, nil
}

// ParseStatusFilter accepts a status or "all"; empty means all.
func ParseStatusFilter(raw string) (Status, error) {
	if t := strings.ToLower(strings.TrimSpace(raw)); t == "" || t == string(StatusAll) {
		return StatusAll, nil
	}
	return ParseStatus(raw)
}

// PipelineEntry tracks one player inside one program's pipeline.
type PipelineEntry struct {
	ID           string    `json:"id"`
	ProgramID    string    `json:"program_id"`
	PlayerID     string    `json:"player_id"`
	Status       Status    `json:"status"`
	PositionRole string    `json:"position_role,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Slot is a diamond position bucket used by the board view.
type Slot string

// Board slots in display order.
const (
	SlotP    Slot = "P"
	SlotC    Slot = "C"
	Slot1B   Slot = "1B"
	Slot2B   Slot = "2B"
	Slot3B   Slot = "3B"
	SlotSS   Slot = "SS"
	SlotLF   Slot = "LF"
	SlotCF   Slot = "CF"
	SlotRF   Slot = "RF"
	SlotUtil Slot = "UTIL"
)

// Slots returns every slot in display order.
func Slots() []Slot {
	return []Slot{SlotP, SlotC, Slot1B, Slot2B, Slot3B, SlotSS, SlotLF, SlotCF, SlotRF, SlotUtil}
}

// SlotFor maps a free-form position to its diamond slot.
func SlotFor(position string) Slot {
	p := strings.ToUpper(strings.TrimSpace(position))
	switch p {
	case "P", "RHP", "LHP", "SP", "RP", "PITCHER":
		return SlotP
	case "C", "CATCHER":
		return SlotC
	case "1B", "2B", "3B", "SS", "LF", "CF", "RF":
		return Slot(p)
	}
	return SlotUtil
}
