package checkins

import (
	"context"

	"github.com/wh131462/stillalive/internal/client/models"
)

// Repository describes the raw persistence operations for check-in records.
// Implementations are backed by the local SQLite database; higher-level
// semantics (dirty-marking, date de-duplication) live in the storage facade.
type Repository interface {
	// Upsert writes the record by id exactly as given.
	Upsert(ctx context.Context, c *models.Checkin) error

	// GetByID returns a check-in by its identifier.
	GetByID(ctx context.Context, id string) (*models.Checkin, error)

	// GetByDate returns the check-in for a calendar-day key, if any.
	GetByDate(ctx context.Context, date string) (*models.Checkin, error)

	// List returns all check-ins ordered by date ascending.
	List(ctx context.Context) ([]models.Checkin, error)

	// ListByDateRange returns check-ins with start <= date <= end.
	ListByDateRange(ctx context.Context, start, end string) ([]models.Checkin, error)

	// ListPending returns check-ins awaiting sync, oldest edit first.
	ListPending(ctx context.Context) ([]models.Checkin, error)

	// Delete physically removes a check-in.
	Delete(ctx context.Context, id string) error

	// DeleteByDateExcept removes any record holding the given date under a
	// different id. Used when a pulled record claims an already-taken day.
	DeleteByDateExcept(ctx context.Context, date, keepID string) error

	// SetStatus applies a bulk sync-status transition.
	SetStatus(ctx context.Context, ids []string, status models.SyncStatus) error
}
