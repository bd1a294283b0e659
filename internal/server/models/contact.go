package models

import "time"

// Contact is a stored contact record for one user. Deleted rows are kept so
// other devices learn about the removal on pull.
type Contact struct {
	ID         string
	UserID     string
	Name       string
	Gender     string
	Birthday   string
	BirthYear  int
	Photo      string
	MBTI       string
	Impression string
	Experience string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Deleted    bool
}
