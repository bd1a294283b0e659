// Package checkins persists authority-side check-in records.
package checkins

import (
	"context"
	"time"

	"github.com/wh131462/stillalive/internal/server/models"
)

// Repository describes per-user check-in persistence.
type Repository interface {
	// Get returns one record by id, shared.ErrNotFound when absent.
	Get(ctx context.Context, userID, id string) (*models.Checkin, error)

	// Upsert writes the record by id exactly as given.
	Upsert(ctx context.Context, c *models.Checkin) error

	// Delete physically removes a record. Missing ids are not an error;
	// pushed deletes must be idempotent.
	Delete(ctx context.Context, userID, id string) error

	// DeleteByDateExcept removes any record holding the given day under a
	// different id, keeping the date unique per user across devices.
	DeleteByDateExcept(ctx context.Context, userID, date, keepID string) error

	// ListUpdatedSince returns records modified strictly after since,
	// ordered by updated_at ascending.
	ListUpdatedSince(ctx context.Context, userID string, since time.Time) ([]models.Checkin, error)
}
