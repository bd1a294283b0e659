package models

import "time"

// Gender is the optional gender annotation on a contact.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// DeleteState is the explicit contact deletion lifecycle. A contact is active,
// then pending-delete once the user removes it (kept locally as a dirty record
// until the authority acknowledges), and finally purged. Purged means
// physically removed, so purged contacts have no state value of their own.
type DeleteState string

const (
	DeleteStateActive        DeleteState = "active"
	DeleteStatePendingDelete DeleteState = "pending_delete"
)

// Contact is a remembered person profile.
type Contact struct {
	ID         string
	Name       string
	Gender     Gender
	Birthday   string // "MM-DD", no year
	BirthYear  int    // 0 when unknown
	Photo      string
	MBTI       string
	Impression string
	Experience string

	CreatedAt time.Time
	UpdatedAt time.Time

	SyncStatus    SyncStatus
	ServerVersion *int64
	DeleteState   DeleteState
}

// Deleted reports whether the contact awaits deletion acknowledgement.
// Such records stay queryable for sync scanning but are excluded from
// product-facing listings.
func (c *Contact) Deleted() bool {
	return c.DeleteState == DeleteStatePendingDelete
}

// Clone returns a deep copy.
func (c *Contact) Clone() *Contact {
	out := *c
	if c.ServerVersion != nil {
		v := *c.ServerVersion
		out.ServerVersion = &v
	}
	return &out
}
