package checkins

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wh131462/stillalive/internal/server/models"
	"github.com/wh131462/stillalive/internal/shared"
)

// MemoryRepository is an in-memory Repository for tests.
type MemoryRepository struct {
	mu      sync.Mutex
	records map[string]models.Checkin
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]models.Checkin)}
}

func (r *MemoryRepository) Get(_ context.Context, userID, id string) (*models.Checkin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.records[id]
	if !ok || c.UserID != userID {
		return nil, shared.ErrNotFound
	}
	cp := c
	return &cp, nil
}

func (r *MemoryRepository) Upsert(_ context.Context, c *models.Checkin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[c.ID] = *c
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.records[id]; ok && c.UserID == userID {
		delete(r.records, id)
	}
	return nil
}

func (r *MemoryRepository) DeleteByDateExcept(_ context.Context, userID, date, keepID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.records {
		if c.UserID == userID && c.Date == date && id != keepID {
			delete(r.records, id)
		}
	}
	return nil
}

func (r *MemoryRepository) ListUpdatedSince(_ context.Context, userID string, since time.Time) ([]models.Checkin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Checkin
	for _, c := range r.records {
		if c.UserID == userID && c.UpdatedAt.After(since) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out, nil
}
