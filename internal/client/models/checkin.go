// Package models defines the client-side records persisted in the local store
// and exchanged with the sync authority.
package models

import "time"

// DateLayout is the calendar-day key format used by check-ins ("YYYY-MM-DD").
const DateLayout = "2006-01-02"

// SyncStatus tracks a record's position in the sync lifecycle.
type SyncStatus string

const (
	SyncStatusPending  SyncStatus = "pending"
	SyncStatusSynced   SyncStatus = "synced"
	SyncStatusConflict SyncStatus = "conflict"
)

// Mood classifies the optional mood annotation on a check-in.
type Mood string

const (
	MoodHappy   Mood = "happy"
	MoodCalm    Mood = "calm"
	MoodTired   Mood = "tired"
	MoodSad     Mood = "sad"
	MoodAnxious Mood = "anxious"
	MoodExcited Mood = "excited"
)

// Checkin is one calendar-day confirmation entry.
//
// ID is assigned client-side at creation time so records created offline never
// collide across devices. Date is unique within a device's store: checking in
// twice on the same day updates one record instead of creating a duplicate.
type Checkin struct {
	ID       string
	Date     string // DateLayout key, the de-duplication key for same-day edits
	Content  string
	Photo    string // opaque storage key, uploaded separately
	Mood     Mood
	IsMakeup bool // true if backdated within the makeup window

	CreatedAt time.Time
	UpdatedAt time.Time

	// SyncStatus and ServerVersion are local bookkeeping only and never cross
	// the wire.
	SyncStatus    SyncStatus
	ServerVersion *int64
}

// Clone returns a deep copy, so callers can hand records to the sync manager
// without sharing mutable state.
func (c *Checkin) Clone() *Checkin {
	out := *c
	if c.ServerVersion != nil {
		v := *c.ServerVersion
		out.ServerVersion = &v
	}
	return &out
}
