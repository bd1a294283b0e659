package contacts

import (
	"context"

	"github.com/wh131462/stillalive/internal/client/models"
)

// Repository describes the raw persistence operations for contact records.
type Repository interface {
	// Upsert writes the record by id exactly as given.
	Upsert(ctx context.Context, c *models.Contact) error

	// GetByID returns a contact by its identifier, including records awaiting
	// deletion acknowledgement.
	GetByID(ctx context.Context, id string) (*models.Contact, error)

	// ListActive returns contacts not awaiting deletion, ordered by name.
	ListActive(ctx context.Context) ([]models.Contact, error)

	// ListByBirthday returns active contacts whose birthday matches the
	// "MM-DD" key.
	ListByBirthday(ctx context.Context, monthDay string) ([]models.Contact, error)

	// ListPending returns dirty contacts, deletion candidates included,
	// oldest edit first.
	ListPending(ctx context.Context) ([]models.Contact, error)

	// SoftDelete moves a contact to the pending-delete state and marks it
	// dirty at the given edit time.
	SoftDelete(ctx context.Context, id string, editedAtMs int64) error

	// Delete physically removes a contact (the purge step after the authority
	// acknowledges the deletion).
	Delete(ctx context.Context, id string) error

	// SetStatus applies a bulk sync-status transition.
	SetStatus(ctx context.Context, ids []string, status models.SyncStatus) error
}
