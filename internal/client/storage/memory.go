package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wh131462/stillalive/internal/client/models"
	"github.com/wh131462/stillalive/internal/shared"
)

// MemoryStore is the in-memory Store implementation. It satisfies the exact
// same contract as SQLiteStore and backs the sync-manager and stats tests.
type MemoryStore struct {
	mu        sync.Mutex
	checkins  map[string]*models.Checkin // by id
	contacts  map[string]*models.Contact // by id
	watermark time.Time
	settings  *models.Settings
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		checkins: make(map[string]*models.Checkin),
		contacts: make(map[string]*models.Contact),
		now:      time.Now,
	}
}

// WithClock replaces the time source. Tests only.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Close() error { return nil }

// ---- check-ins ----

func (s *MemoryStore) GetCheckin(ctx context.Context, id string) (*models.Checkin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.checkins[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return c.Clone(), nil
}

func (s *MemoryStore) GetCheckinByDate(ctx context.Context, date string) (*models.Checkin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c := s.findByDateLocked(date); c != nil {
		return c.Clone(), nil
	}
	return nil, shared.ErrNotFound
}

func (s *MemoryStore) findByDateLocked(date string) *models.Checkin {
	for _, c := range s.checkins {
		if c.Date == date {
			return c
		}
	}
	return nil
}

func (s *MemoryStore) ListCheckins(ctx context.Context) ([]models.Checkin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Checkin, 0, len(s.checkins))
	for _, c := range s.checkins {
		out = append(out, *c.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s *MemoryStore) ListCheckinsByMonth(ctx context.Context, year int, month time.Month) ([]models.Checkin, error) {
	start, end := monthRange(year, month)
	return s.ListCheckinsByDateRange(ctx, start, end)
}

func (s *MemoryStore) ListCheckinsByDateRange(ctx context.Context, start, end string) ([]models.Checkin, error) {
	all, err := s.ListCheckins(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Checkin, 0, len(all))
	for _, c := range all {
		if c.Date >= start && c.Date <= end {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *MemoryStore) SaveCheckin(ctx context.Context, c *models.Checkin) (*models.Checkin, error) {
	if c.Date == "" {
		return nil, fmt.Errorf("%w: checkin date is required", shared.ErrValidation)
	}
	if _, err := time.Parse(models.DateLayout, c.Date); err != nil {
		return nil, fmt.Errorf("%w: bad checkin date %q", shared.ErrValidation, c.Date)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := c.Clone()
	if cp.SyncStatus != models.SyncStatusSynced {
		cp.SyncStatus = models.SyncStatusPending
		cp.UpdatedAt = s.now()
	}

	if existing := s.findByDateLocked(cp.Date); existing != nil {
		cp.ID = existing.ID
		cp.CreatedAt = existing.CreatedAt
	} else {
		if cp.ID == "" {
			cp.ID = uuid.NewString()
		}
		if cp.CreatedAt.IsZero() {
			cp.CreatedAt = s.now()
		}
	}

	s.checkins[cp.ID] = cp
	return cp.Clone(), nil
}

func (s *MemoryStore) DeleteCheckin(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.checkins[id]; !ok {
		return shared.ErrNotFound
	}
	delete(s.checkins, id)
	return nil
}

// ---- contacts ----

func (s *MemoryStore) GetContact(ctx context.Context, id string) (*models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contacts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return c.Clone(), nil
}

func (s *MemoryStore) ListContacts(ctx context.Context) ([]models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		if c.DeleteState == models.DeleteStateActive {
			out = append(out, *c.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) ListContactsByBirthday(ctx context.Context, monthDay string) ([]models.Contact, error) {
	all, err := s.ListContacts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Contact, 0, len(all))
	for _, c := range all {
		if c.Birthday == monthDay {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *MemoryStore) SaveContact(ctx context.Context, c *models.Contact) (*models.Contact, error) {
	if c.Name == "" {
		return nil, fmt.Errorf("%w: contact name is required", shared.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

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

	s.contacts[cp.ID] = cp
	return cp.Clone(), nil
}

func (s *MemoryStore) SoftDeleteContact(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contacts[id]
	if !ok || c.DeleteState != models.DeleteStateActive {
		return shared.ErrNotFound
	}
	c.DeleteState = models.DeleteStatePendingDelete
	c.SyncStatus = models.SyncStatusPending
	c.UpdatedAt = s.now()
	return nil
}

func (s *MemoryStore) PurgeContact(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contacts[id]; !ok {
		return shared.ErrNotFound
	}
	delete(s.contacts, id)
	return nil
}

// ---- sync support ----

func (s *MemoryStore) ListPending(ctx context.Context) ([]models.PendingChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changes []models.PendingChange
	for _, c := range s.checkins {
		if c.SyncStatus != models.SyncStatusPending {
			continue
		}
		changes = append(changes, models.PendingChange{
			ID:         c.ID,
			Collection: models.CollectionCheckins,
			Operation:  models.OperationUpsert,
			Payload:    models.Payload{Checkin: c.Clone()},
			Timestamp:  c.UpdatedAt,
		})
	}
	for _, c := range s.contacts {
		if c.SyncStatus != models.SyncStatusPending {
			continue
		}
		op := models.OperationUpsert
		if c.Deleted() {
			op = models.OperationDelete
		}
		changes = append(changes, models.PendingChange{
			ID:         c.ID,
			Collection: models.CollectionContacts,
			Operation:  op,
			Payload:    models.Payload{Contact: c.Clone()},
			Timestamp:  c.UpdatedAt,
		})
	}

	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].Timestamp.Before(changes[j].Timestamp)
	})
	return changes, nil
}

func (s *MemoryStore) MarkSynced(ctx context.Context, ids []string) error {
	return s.setStatus(ids, models.SyncStatusSynced)
}

func (s *MemoryStore) MarkConflict(ctx context.Context, ids []string) error {
	return s.setStatus(ids, models.SyncStatusConflict)
}

func (s *MemoryStore) setStatus(ids []string, status models.SyncStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if c, ok := s.checkins[id]; ok {
			c.SyncStatus = status
		}
		if c, ok := s.contacts[id]; ok {
			c.SyncStatus = status
		}
	}
	return nil
}

func (s *MemoryStore) BulkApplyCheckins(ctx context.Context, records []models.Checkin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range records {
		rec := records[i].Clone()
		rec.SyncStatus = models.SyncStatusSynced
		if existing := s.findByDateLocked(rec.Date); existing != nil && existing.ID != rec.ID {
			delete(s.checkins, existing.ID)
		}
		s.checkins[rec.ID] = rec
	}
	return nil
}

func (s *MemoryStore) BulkApplyContacts(ctx context.Context, records []models.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range records {
		rec := records[i].Clone()
		rec.SyncStatus = models.SyncStatusSynced
		rec.DeleteState = models.DeleteStateActive
		s.contacts[rec.ID] = rec
	}
	return nil
}

// ---- watermark and settings ----

func (s *MemoryStore) Watermark(ctx context.Context) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watermark, nil
}

func (s *MemoryStore) SetWatermark(ctx context.Context, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watermark = t
	return nil
}

func (s *MemoryStore) Settings(ctx context.Context) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings == nil {
		return models.DefaultSettings(), nil
	}
	return *s.settings, nil
}

func (s *MemoryStore) SaveSettings(ctx context.Context, settings models.Settings) error {
	// round-trip through JSON to keep parity with the SQLite blob
	b, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	var cp models.Settings
	if err := json.Unmarshal(b, &cp); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = &cp
	return nil
}
