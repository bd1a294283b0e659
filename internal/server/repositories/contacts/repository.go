// Package contacts persists authority-side contact records.
package contacts

import (
	"context"
	"time"

	"github.com/wh131462/stillalive/internal/server/models"
)

// Repository describes per-user contact persistence. Deleted records stay in
// place with the deleted flag set so pulls can propagate the removal.
type Repository interface {
	// Get returns one record by id, shared.ErrNotFound when absent.
	Get(ctx context.Context, userID, id string) (*models.Contact, error)

	// Upsert writes the record by id exactly as given.
	Upsert(ctx context.Context, c *models.Contact) error

	// MarkDeleted flags a record deleted and stamps updated_at so the
	// deletion is pulled by other devices. Missing ids are not an error.
	MarkDeleted(ctx context.Context, userID, id string, at time.Time) error

	// ListUpdatedSince returns records (deleted included) modified strictly
	// after since, ordered by updated_at ascending.
	ListUpdatedSince(ctx context.Context, userID string, since time.Time) ([]models.Contact, error)
}
