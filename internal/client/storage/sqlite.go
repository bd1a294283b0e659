package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/wh131462/stillalive/internal/client/models"
	"github.com/wh131462/stillalive/internal/client/repositories/checkins"
	"github.com/wh131462/stillalive/internal/client/repositories/contacts"
	"github.com/wh131462/stillalive/internal/client/repositories/syncmeta"
	"github.com/wh131462/stillalive/internal/dbx"
	"github.com/wh131462/stillalive/internal/shared"
)

const (
	metaKeyWatermark = "watermark"
	metaKeySettings  = "settings"
)

// SQLiteStore implements Store over the device SQLite database.
type SQLiteStore struct {
	db       *sql.DB
	checkins checkins.Repository
	contacts contacts.Repository
	meta     syncmeta.Repository
	now      func() time.Time
}

// NewSQLiteStore wires the per-collection repositories over an opened,
// migrated database handle.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{
		db:       db,
		checkins: checkins.NewSQLiteRepository(db),
		contacts: contacts.NewSQLiteRepository(db),
		meta:     syncmeta.NewSQLiteRepository(db),
		now:      time.Now,
	}
}

// WithClock replaces the time source. Tests only.
func (s *SQLiteStore) WithClock(now func() time.Time) *SQLiteStore {
	s.now = now
	return s
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ---- check-ins ----

func (s *SQLiteStore) GetCheckin(ctx context.Context, id string) (*models.Checkin, error) {
	return s.checkins.GetByID(ctx, id)
}

func (s *SQLiteStore) GetCheckinByDate(ctx context.Context, date string) (*models.Checkin, error) {
	return s.checkins.GetByDate(ctx, date)
}

func (s *SQLiteStore) ListCheckins(ctx context.Context) ([]models.Checkin, error) {
	return s.checkins.List(ctx)
}

func (s *SQLiteStore) ListCheckinsByMonth(ctx context.Context, year int, month time.Month) ([]models.Checkin, error) {
	start, end := monthRange(year, month)
	return s.checkins.ListByDateRange(ctx, start, end)
}

func (s *SQLiteStore) ListCheckinsByDateRange(ctx context.Context, start, end string) ([]models.Checkin, error) {
	return s.checkins.ListByDateRange(ctx, start, end)
}

// SaveCheckin upserts by calendar day: a save for a date that already has a
// record adopts that record's identity, so same-day edits never duplicate.
func (s *SQLiteStore) SaveCheckin(ctx context.Context, c *models.Checkin) (*models.Checkin, error) {
	if c.Date == "" {
		return nil, fmt.Errorf("%w: checkin date is required", shared.ErrValidation)
	}
	if _, err := time.Parse(models.DateLayout, c.Date); err != nil {
		return nil, fmt.Errorf("%w: bad checkin date %q", shared.ErrValidation, c.Date)
	}

	cp := c.Clone()
	if cp.SyncStatus != models.SyncStatusSynced {
		cp.SyncStatus = models.SyncStatusPending
		cp.UpdatedAt = s.now()
	}

	existing, err := s.checkins.GetByDate(ctx, cp.Date)
	switch {
	case err == nil:
		cp.ID = existing.ID
		cp.CreatedAt = existing.CreatedAt
	case errors.Is(err, shared.ErrNotFound):
		if cp.ID == "" {
			cp.ID = uuid.NewString()
		}
		if cp.CreatedAt.IsZero() {
			cp.CreatedAt = s.now()
		}
	default:
		return nil, err
	}

	if err := s.checkins.Upsert(ctx, cp); err != nil {
		return nil, err
	}
	return cp, nil
}

func (s *SQLiteStore) DeleteCheckin(ctx context.Context, id string) error {
	return s.checkins.Delete(ctx, id)
}

// ---- contacts ----

func (s *SQLiteStore) GetContact(ctx context.Context, id string) (*models.Contact, error) {
	return s.contacts.GetByID(ctx, id)
}

func (s *SQLiteStore) ListContacts(ctx context.Context) ([]models.Contact, error) {
	return s.contacts.ListActive(ctx)
}

func (s *SQLiteStore) ListContactsByBirthday(ctx context.Context, monthDay string) ([]models.Contact, error) {
	return s.contacts.ListByBirthday(ctx, monthDay)
}

func (s *SQLiteStore) SaveContact(ctx context.Context, c *models.Contact) (*models.Contact, error) {
	if c.Name == "" {
		return nil, fmt.Errorf("%w: contact name is required", shared.ErrValidation)
	}

	cp := c.Clone()
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = s.now()
	}
	if cp.DeleteState == "" {
		cp.DeleteState = models.DeleteStateActive
	}
	if cp.SyncStatus != models.SyncStatusSynced {
		cp.SyncStatus = models.SyncStatusPending
		cp.UpdatedAt = s.now()
	}

	if err := s.contacts.Upsert(ctx, cp); err != nil {
		return nil, err
	}
	return cp, nil
}

func (s *SQLiteStore) SoftDeleteContact(ctx context.Context, id string) error {
	return s.contacts.SoftDelete(ctx, id, s.now().UnixMilli())
}

func (s *SQLiteStore) PurgeContact(ctx context.Context, id string) error {
	return s.contacts.Delete(ctx, id)
}

// ---- sync support ----

func (s *SQLiteStore) ListPending(ctx context.Context) ([]models.PendingChange, error) {
	pendingCheckins, err := s.checkins.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	pendingContacts, err := s.contacts.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	changes := make([]models.PendingChange, 0, len(pendingCheckins)+len(pendingContacts))
	for i := range pendingCheckins {
		c := pendingCheckins[i].Clone()
		changes = append(changes, models.PendingChange{
			ID:         c.ID,
			Collection: models.CollectionCheckins,
			Operation:  models.OperationUpsert,
			Payload:    models.Payload{Checkin: c},
			Timestamp:  c.UpdatedAt,
		})
	}
	for i := range pendingContacts {
		c := pendingContacts[i].Clone()
		op := models.OperationUpsert
		if c.Deleted() {
			op = models.OperationDelete
		}
		changes = append(changes, models.PendingChange{
			ID:         c.ID,
			Collection: models.CollectionContacts,
			Operation:  op,
			Payload:    models.Payload{Contact: c},
			Timestamp:  c.UpdatedAt,
		})
	}

	// oldest edits first, an ordering hint for the authority
	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].Timestamp.Before(changes[j].Timestamp)
	})
	return changes, nil
}

func (s *SQLiteStore) MarkSynced(ctx context.Context, ids []string) error {
	return s.setStatus(ctx, ids, models.SyncStatusSynced)
}

func (s *SQLiteStore) MarkConflict(ctx context.Context, ids []string) error {
	return s.setStatus(ctx, ids, models.SyncStatusConflict)
}

func (s *SQLiteStore) setStatus(ctx context.Context, ids []string, status models.SyncStatus) error {
	if len(ids) == 0 {
		return nil
	}
	return dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		if err := checkins.NewSQLiteRepository(tx).SetStatus(ctx, ids, status); err != nil {
			return err
		}
		return contacts.NewSQLiteRepository(tx).SetStatus(ctx, ids, status)
	})
}

// BulkApplyCheckins writes pulled records with SyncStatus forced to synced.
// A pulled record claiming an already-taken date displaces the local copy:
// the date is the de-duplication key across devices.
func (s *SQLiteStore) BulkApplyCheckins(ctx context.Context, records []models.Checkin) error {
	if len(records) == 0 {
		return nil
	}
	return dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := checkins.NewSQLiteRepository(tx)
		for i := range records {
			rec := records[i].Clone()
			rec.SyncStatus = models.SyncStatusSynced
			if err := repo.DeleteByDateExcept(ctx, rec.Date, rec.ID); err != nil {
				return err
			}
			if err := repo.Upsert(ctx, rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteStore) BulkApplyContacts(ctx context.Context, records []models.Contact) error {
	if len(records) == 0 {
		return nil
	}
	return dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := contacts.NewSQLiteRepository(tx)
		for i := range records {
			rec := records[i].Clone()
			rec.SyncStatus = models.SyncStatusSynced
			rec.DeleteState = models.DeleteStateActive
			if err := repo.Upsert(ctx, rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// ---- watermark and settings ----

func (s *SQLiteStore) Watermark(ctx context.Context) (time.Time, error) {
	v, err := s.meta.Get(ctx, metaKeyWatermark)
	if err != nil {
		return time.Time{}, err
	}
	if v == "" {
		return time.Time{}, nil
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt watermark %q: %w", v, err)
	}
	return time.UnixMilli(ms).UTC(), nil
}

func (s *SQLiteStore) SetWatermark(ctx context.Context, t time.Time) error {
	return s.meta.Set(ctx, metaKeyWatermark, strconv.FormatInt(t.UnixMilli(), 10))
}

func (s *SQLiteStore) Settings(ctx context.Context) (models.Settings, error) {
	v, err := s.meta.Get(ctx, metaKeySettings)
	if err != nil {
		return models.Settings{}, err
	}
	if v == "" {
		return models.DefaultSettings(), nil
	}
	var out models.Settings
	if err := json.Unmarshal([]byte(v), &out); err != nil {
		return models.Settings{}, fmt.Errorf("corrupt settings: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) SaveSettings(ctx context.Context, settings models.Settings) error {
	b, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return s.meta.Set(ctx, metaKeySettings, string(b))
}
