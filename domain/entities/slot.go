package entities

import (
	"fmt"
	"time"
)

// SlotType distinguishes the two draw games.
type SlotType string

const (
	SlotTypeLD SlotType = "LD" // Lucky Draw: single number 1..37
	SlotTypeJP SlotType = "JP" // Jackpot: six-number combo, numbers 1..37
)

// IsValid returns true for a known slot type.
func (t SlotType) IsValid() bool {
	return t == SlotTypeLD || t == SlotTypeJP
}

// SlotStatus is the slot lifecycle state.
type SlotStatus string

const (
	SlotStatusOpen      SlotStatus = "OPEN"
	SlotStatusClosed    SlotStatus = "CLOSED"
	SlotStatusCompleted SlotStatus = "COMPLETED"
)

// Slot is a scheduled draw. Settings are snapshotted at creation so the
// slot prices with the configuration that was live when it was scheduled.
type Slot struct {
	ID            int64            `db:"id"`
	Code          string           `db:"code"`
	Type          SlotType         `db:"slot_type"`
	SlotTime      time.Time        `db:"slot_time"`
	WindowCloseAt time.Time        `db:"window_close_at"`
	Status        SlotStatus       `db:"status"`
	Settings      SettingsSnapshot `db:"settings"`
	CreatedAt     time.Time        `db:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at"`
}

// NewSlot builds a slot for the given draw time with a settings snapshot.
// The betting window closes a fixed lead before the draw.
func NewSlot(slotType SlotType, slotTime time.Time, settings SettingsSnapshot) *Slot {
	return &Slot{
		Code:          BuildSlotCode(slotType, slotTime),
		Type:          slotType,
		SlotTime:      slotTime,
		WindowCloseAt: slotTime.Add(-settings.WindowLead()),
		Status:        SlotStatusOpen,
		Settings:      settings,
	}
}

// BuildSlotCode derives the human-readable slot code from type and time.
func BuildSlotCode(slotType SlotType, slotTime time.Time) string {
	return fmt.Sprintf("%s-%s", slotType, slotTime.UTC().Format("20060102-1504"))
}

// IsCompleted returns true once a draw result has been persisted.
func (s *Slot) IsCompleted() bool {
	return s.Status == SlotStatusCompleted
}

// AcceptsBids returns true while the betting window is open.
func (s *Slot) AcceptsBids(now time.Time) bool {
	return s.Status == SlotStatusOpen && now.Before(s.WindowCloseAt)
}

// WindowExpired returns true once the betting window has passed.
func (s *Slot) WindowExpired(now time.Time) bool {
	return now.After(s.WindowCloseAt)
}

// CanAnnounce returns true when a result may be announced: the window has
// closed and no result exists yet.
func (s *Slot) CanAnnounce(now time.Time) bool {
	return !s.IsCompleted() && s.WindowExpired(now)
}

// Close transitions OPEN -> CLOSED. A no-op on any other state.
func (s *Slot) Close() {
	if s.Status == SlotStatusOpen {
		s.Status = SlotStatusClosed
	}
}

// Complete transitions to COMPLETED. Terminal.
func (s *Slot) Complete() {
	s.Status = SlotStatusCompleted
}
