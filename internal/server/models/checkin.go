// Package models holds the authority-side record shapes. Unlike the client
// models they carry the owning user and no sync bookkeeping; the authority's
// updated_at is the staleness basis for conflict decisions.
package models

import "time"

// Checkin is a stored check-in record for one user.
type Checkin struct {
	ID        string
	UserID    string
	Date      string
	Content   string
	Photo     string
	Mood      string
	IsMakeup  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
