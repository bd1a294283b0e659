// Package protocol defines the transport-agnostic request/response shapes
// exchanged between a device and the sync authority. Timestamps travel as
// epoch milliseconds; record shapes mirror the local ones minus the
// local-only bookkeeping fields (sync status, server version).
package protocol

import "encoding/json"

const (
	CollectionCheckins = "checkins"
	CollectionContacts = "contacts"

	OperationUpsert = "upsert"
	OperationDelete = "delete"
)

// Checkin is the wire shape of a check-in record.
type Checkin struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Content   string `json:"content,omitempty"`
	Photo     string `json:"photo,omitempty"`
	Mood      string `json:"mood,omitempty"`
	IsMakeup  bool   `json:"isMakeup"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// Contact is the wire shape of a contact record.
type Contact struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Gender     string `json:"gender,omitempty"`
	Birthday   string `json:"birthday,omitempty"`
	BirthYear  int    `json:"birthYear,omitempty"`
	Photo      string `json:"photo,omitempty"`
	MBTI       string `json:"mbti,omitempty"`
	Impression string `json:"impression,omitempty"`
	Experience string `json:"experience,omitempty"`
	CreatedAt  int64  `json:"createdAt"`
	UpdatedAt  int64  `json:"updatedAt"`
	// Deleted marks a contact removed on another device; pull applies it as a
	// purge instead of an upsert.
	Deleted bool `json:"deleted,omitempty"`
}

// DeleteData is the payload of a delete change.
type DeleteData struct {
	ID string `json:"id"`
}

// Change is one locally-made edit inside a push.
type Change struct {
	Collection     string          `json:"collection"`
	Operation      string          `json:"operation"`
	Data           json.RawMessage `json:"data"`
	LocalUpdatedAt int64           `json:"localUpdatedAt"`
}

// PushRequest carries all pending edits plus the device's watermark.
type PushRequest struct {
	Watermark int64    `json:"watermark"`
	Changes   []Change `json:"changes"`
}

// Conflict reports a rejected change together with the authority's current
// copy, so the device can offer a manual choice.
type Conflict struct {
	ID         string          `json:"id"`
	Collection string          `json:"collection"`
	ServerData json.RawMessage `json:"serverData"`
}

// PushResponse is the authority's verdict on a push.
type PushResponse struct {
	SyncedAt  int64      `json:"syncedAt"`
	Accepted  []string   `json:"accepted"`
	Conflicts []Conflict `json:"conflicts"`
}

// PullRequest asks for everything modified after the watermark.
type PullRequest struct {
	Watermark int64 `json:"watermark"`
}

// PullResponse carries authority-side changes for both collections.
type PullResponse struct {
	Checkins   []Checkin `json:"checkins"`
	Contacts   []Contact `json:"contacts"`
	ServerTime int64     `json:"serverTime"`
}
