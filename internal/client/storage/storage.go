// Package storage provides the device-local record store: durable, queryable
// persistence for check-ins and contacts with dirty-tracking for sync, plus
// the watermark and settings blob. It has no network knowledge.
//
// Two implementations satisfy the same contract: SQLiteStore for real devices
// and MemoryStore for tests and ephemeral use.
package storage

import (
	"context"
	"time"

	"github.com/wh131462/stillalive/internal/client/models"
)

// Store is the local store capability handed to the sync manager, the stats
// calculator, and user-facing operations. One instance per device database.
type Store interface {
	// Check-in operations. Save forces SyncStatus = pending and UpdatedAt =
	// now unless the caller explicitly supplies SyncStatus = synced (pull
	// application and conflict resolution do). A save for an already-taken
	// date updates that day's record instead of creating a duplicate.
	GetCheckin(ctx context.Context, id string) (*models.Checkin, error)
	GetCheckinByDate(ctx context.Context, date string) (*models.Checkin, error)
	ListCheckins(ctx context.Context) ([]models.Checkin, error)
	ListCheckinsByMonth(ctx context.Context, year int, month time.Month) ([]models.Checkin, error)
	ListCheckinsByDateRange(ctx context.Context, start, end string) ([]models.Checkin, error)
	SaveCheckin(ctx context.Context, c *models.Checkin) (*models.Checkin, error)
	DeleteCheckin(ctx context.Context, id string) error

	// Contact operations. SoftDeleteContact moves the record to the
	// pending-delete state; PurgeContact physically removes it once the
	// authority has acknowledged the deletion.
	GetContact(ctx context.Context, id string) (*models.Contact, error)
	ListContacts(ctx context.Context) ([]models.Contact, error)
	ListContactsByBirthday(ctx context.Context, monthDay string) ([]models.Contact, error)
	SaveContact(ctx context.Context, c *models.Contact) (*models.Contact, error)
	SoftDeleteContact(ctx context.Context, id string) error
	PurgeContact(ctx context.Context, id string) error

	// Sync support. ListPending scans both collections and yields changes
	// ordered by edit time ascending. BulkApply is used only by pull and
	// forces every written record to SyncStatus = synced.
	ListPending(ctx context.Context) ([]models.PendingChange, error)
	MarkSynced(ctx context.Context, ids []string) error
	MarkConflict(ctx context.Context, ids []string) error
	BulkApplyCheckins(ctx context.Context, records []models.Checkin) error
	BulkApplyContacts(ctx context.Context, records []models.Contact) error

	// Watermark returns the zero time when no sync has completed yet.
	Watermark(ctx context.Context) (time.Time, error)
	SetWatermark(ctx context.Context, t time.Time) error

	// Settings hold local-only preferences, never synchronized.
	Settings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, s models.Settings) error

	Close() error
}

// monthRange returns the first and last day keys of a month.
func monthRange(year int, month time.Month) (string, string) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format(models.DateLayout), last.Format(models.DateLayout)
}
