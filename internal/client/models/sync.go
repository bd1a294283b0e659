package models

import "time"

// Collection names the two synchronized record collections.
type Collection string

const (
	CollectionCheckins Collection = "checkins"
	CollectionContacts Collection = "contacts"
)

// Operation is the kind of pending change sent to the authority.
type Operation string

const (
	OperationUpsert Operation = "upsert"
	OperationDelete Operation = "delete"
)

// Payload carries at most one record; which pointer is set follows the
// collection of the enclosing change or conflict.
type Payload struct {
	Checkin *Checkin
	Contact *Contact
}

// PendingChange is a derived view over dirty records: one locally-made edit
// awaiting transmission. It is produced by scanning both collections, never
// persisted on its own.
type PendingChange struct {
	ID         string
	Collection Collection
	Operation  Operation
	Payload    Payload
	Timestamp  time.Time // local edit time, the authority's staleness basis
}

// Conflict is a push rejected because the authority's copy was modified more
// recently than the local edit's declared basis. Held in memory until the user
// picks a resolution.
type Conflict struct {
	ID         string
	Collection Collection
	Local      Payload
	Server     Payload
}

// Resolution is the user's manual conflict choice.
type Resolution string

const (
	ResolutionKeepLocal  Resolution = "keep_local"
	ResolutionKeepServer Resolution = "keep_server"
)
