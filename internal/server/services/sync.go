// Package services implements the authority's application logic: the push
// verdict (accept vs. conflict), the pull feed, and photo upload URLs.
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wh131462/stillalive/internal/dbx"
	"github.com/wh131462/stillalive/internal/protocol"
	"github.com/wh131462/stillalive/internal/server/repositories/checkins"
	"github.com/wh131462/stillalive/internal/server/repositories/contacts"
	"github.com/wh131462/stillalive/internal/server/repositories/repomanager"
	"github.com/wh131462/stillalive/internal/shared"
)

// SyncService decides, per pushed change, whether the device's edit is still
// based on the current server copy. A change is rejected as a conflict only
// when the stored record was modified strictly after the change's declared
// local-edit time; otherwise the change is applied. Upserts are idempotent so
// a full resend after a failed push does not duplicate.
type SyncService struct {
	db  *sql.DB
	rm  repomanager.RepositoryManager
	now func() time.Time
}

// NewSyncService wires a service over the database and repository manager.
// db may be nil when rm hands out in-memory repositories.
func NewSyncService(db *sql.DB, rm repomanager.RepositoryManager) *SyncService {
	return &SyncService{db: db, rm: rm, now: time.Now}
}

// WithClock replaces the wall clock, for tests.
func (s *SyncService) WithClock(now func() time.Time) *SyncService {
	s.now = now
	return s
}

func (s *SyncService) inTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	if s.db == nil {
		return fn(ctx, nil)
	}
	return dbx.WithTx(ctx, s.db, fn)
}

// Push applies a device's pending changes and reports the verdict.
func (s *SyncService) Push(ctx context.Context, userID string, req *protocol.PushRequest) (*protocol.PushResponse, error) {
	resp := &protocol.PushResponse{SyncedAt: s.now().UnixMilli()}

	err := s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		checkinRepo := s.rm.Checkins(tx)
		contactRepo := s.rm.Contacts(tx)

		for i := range req.Changes {
			ch := &req.Changes[i]
			switch ch.Collection {
			case protocol.CollectionCheckins:
				if err := s.applyCheckinChange(ctx, checkinRepo, userID, ch, resp); err != nil {
					return err
				}
			case protocol.CollectionContacts:
				if err := s.applyContactChange(ctx, contactRepo, userID, ch, resp); err != nil {
					return err
				}
			default:
				return fmt.Errorf("%w: %s", shared.ErrUnknownCollection, ch.Collection)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *SyncService) applyCheckinChange(ctx context.Context, repo checkins.Repository, userID string, ch *protocol.Change, resp *protocol.PushResponse) error {
	if ch.Operation == protocol.OperationDelete {
		var d protocol.DeleteData
		if err := json.Unmarshal(ch.Data, &d); err != nil {
			return fmt.Errorf("decoding checkin delete: %w", err)
		}
		if err := repo.Delete(ctx, userID, d.ID); err != nil {
			return err
		}
		resp.Accepted = append(resp.Accepted, d.ID)
		return nil
	}

	var w protocol.Checkin
	if err := json.Unmarshal(ch.Data, &w); err != nil {
		return fmt.Errorf("decoding checkin upsert: %w", err)
	}

	existing, err := repo.Get(ctx, userID, w.ID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	if existing != nil && existing.UpdatedAt.After(time.UnixMilli(ch.LocalUpdatedAt)) {
		raw, err := json.Marshal(checkinToWire(existing))
		if err != nil {
			return err
		}
		resp.Conflicts = append(resp.Conflicts, protocol.Conflict{
			ID:         w.ID,
			Collection: protocol.CollectionCheckins,
			ServerData: raw,
		})
		return nil
	}

	// One record per user per day; a same-date record pushed from another
	// device under a different id is displaced.
	if err := repo.DeleteByDateExcept(ctx, userID, w.Date, w.ID); err != nil {
		return err
	}
	if err := repo.Upsert(ctx, checkinFromWire(userID, &w)); err != nil {
		return err
	}
	resp.Accepted = append(resp.Accepted, w.ID)
	return nil
}

func (s *SyncService) applyContactChange(ctx context.Context, repo contacts.Repository, userID string, ch *protocol.Change, resp *protocol.PushResponse) error {
	basis := time.UnixMilli(ch.LocalUpdatedAt)

	if ch.Operation == protocol.OperationDelete {
		var d protocol.DeleteData
		if err := json.Unmarshal(ch.Data, &d); err != nil {
			return fmt.Errorf("decoding contact delete: %w", err)
		}
		existing, err := repo.Get(ctx, userID, d.ID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if existing != nil && !existing.Deleted && existing.UpdatedAt.After(basis) {
			raw, err := json.Marshal(contactToWire(existing))
			if err != nil {
				return err
			}
			resp.Conflicts = append(resp.Conflicts, protocol.Conflict{
				ID:         d.ID,
				Collection: protocol.CollectionContacts,
				ServerData: raw,
			})
			return nil
		}
		if err := repo.MarkDeleted(ctx, userID, d.ID, basis); err != nil {
			return err
		}
		resp.Accepted = append(resp.Accepted, d.ID)
		return nil
	}

	var w protocol.Contact
	if err := json.Unmarshal(ch.Data, &w); err != nil {
		return fmt.Errorf("decoding contact upsert: %w", err)
	}

	existing, err := repo.Get(ctx, userID, w.ID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	if existing != nil && existing.UpdatedAt.After(basis) {
		raw, err := json.Marshal(contactToWire(existing))
		if err != nil {
			return err
		}
		resp.Conflicts = append(resp.Conflicts, protocol.Conflict{
			ID:         w.ID,
			Collection: protocol.CollectionContacts,
			ServerData: raw,
		})
		return nil
	}

	if err := repo.Upsert(ctx, contactFromWire(userID, &w)); err != nil {
		return err
	}
	resp.Accepted = append(resp.Accepted, w.ID)
	return nil
}

// Pull returns both collections' records modified after the watermark,
// deleted contacts included.
func (s *SyncService) Pull(ctx context.Context, userID string, req *protocol.PullRequest) (*protocol.PullResponse, error) {
	since := time.UnixMilli(req.Watermark)

	checkinList, err := s.rm.Checkins(s.db).ListUpdatedSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	contactList, err := s.rm.Contacts(s.db).ListUpdatedSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	resp := &protocol.PullResponse{ServerTime: s.now().UnixMilli()}
	for i := range checkinList {
		resp.Checkins = append(resp.Checkins, *checkinToWire(&checkinList[i]))
	}
	for i := range contactList {
		resp.Contacts = append(resp.Contacts, *contactToWire(&contactList[i]))
	}
	return resp, nil
}
