package syncer

import (
	"time"

	"github.com/wh131462/stillalive/internal/client/models"
)

// Result summarizes one completed sync cycle.
type Result struct {
	// Synced counts push-accepted plus pull-applied records.
	Synced int
	// Conflicts lists only the conflicts discovered by this cycle's push.
	Conflicts []models.Conflict
}

// Status is the inspectable view of the manager.
type Status struct {
	State        State
	LastSyncAt   time.Time
	PendingCount int
}

// Listener receives sync lifecycle notifications. All fields are optional.
// Callbacks run on the syncing goroutine and must not block; a headless
// auto-sync loop relies on them instead of returned errors.
type Listener struct {
	OnStart       func()
	OnComplete    func(Result)
	OnError       func(error)
	OnStateChange func(State)
}
