// Package syncer orchestrates the push/pull cycle between the local store and
// the sync authority: it collects dirty records, uploads them, applies the
// authority's verdict, pulls remote changes past the watermark, and surfaces
// conflicts for manual resolution.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wh131462/stillalive/internal/client/models"
	"github.com/wh131462/stillalive/internal/client/storage"
	"github.com/wh131462/stillalive/internal/client/transport"
	"github.com/wh131462/stillalive/internal/logging"
	"github.com/wh131462/stillalive/internal/protocol"
	"github.com/wh131462/stillalive/internal/shared"
)

// State is the manager's lifecycle phase. error and offline are both
// recoverable by a later Sync call.
type State string

const (
	StateIdle    State = "idle"
	StateSyncing State = "syncing"
	StateError   State = "error"
	StateOffline State = "offline"
)

// Manager drives synchronization for one device. Sync is single-flight: the
// state field guards the entry point, so the auto-sync timer and manual calls
// cannot race into two concurrent cycles.
type Manager struct {
	store  storage.Store
	api    transport.API
	logger logging.Logger
	now    func() time.Time

	mu        sync.Mutex
	state     State
	lastSync  time.Time
	conflicts map[string]models.Conflict

	listener Listener

	autoMu     sync.Mutex
	autoCancel context.CancelFunc
	autoDone   chan struct{}
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithListener installs lifecycle callbacks.
func WithListener(l Listener) Option {
	return func(m *Manager) { m.listener = l }
}

// NewManager wires a manager over an opened store and a transport.
func NewManager(store storage.Store, api transport.API, logger logging.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		api:       api,
		logger:    logger,
		now:       time.Now,
		state:     StateIdle,
		conflicts: make(map[string]models.Conflict),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Sync runs one push/pull cycle. It returns shared.ErrSyncInProgress when a
// cycle is already running and shared.ErrOffline when the authority is
// unreachable; any transport or storage failure aborts the cycle with the
// watermark unchanged and every pending record still pending.
func (m *Manager) Sync(ctx context.Context) (*Result, error) {
	m.mu.Lock()
	if m.state == StateSyncing {
		m.mu.Unlock()
		return nil, shared.ErrSyncInProgress
	}
	m.state = StateSyncing
	m.mu.Unlock()

	m.emitState(StateSyncing)
	if m.listener.OnStart != nil {
		m.listener.OnStart()
	}

	res, err := m.run(ctx)
	if err != nil {
		next := StateError
		if errors.Is(err, shared.ErrOffline) {
			next = StateOffline
		}
		m.setState(next)
		m.logger.Warn(ctx, "sync failed", "error", err)
		if m.listener.OnError != nil {
			m.listener.OnError(err)
		}
		return nil, err
	}

	m.mu.Lock()
	m.state = StateIdle
	m.lastSync = m.now()
	m.mu.Unlock()
	m.emitState(StateIdle)
	if m.listener.OnComplete != nil {
		m.listener.OnComplete(*res)
	}
	return res, nil
}

func (m *Manager) run(ctx context.Context) (*Result, error) {
	if err := m.api.Probe(ctx); err != nil {
		m.logger.Info(ctx, "authority unreachable", "error", err)
		return nil, shared.ErrOffline
	}

	watermark, err := m.store.Watermark(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading watermark: %w", err)
	}

	res := &Result{}
	if err := m.push(ctx, watermark, res); err != nil {
		return nil, err
	}
	if err := m.pull(ctx, watermark, res); err != nil {
		return nil, err
	}

	if err := m.store.SetWatermark(ctx, m.now()); err != nil {
		return nil, fmt.Errorf("advancing watermark: %w", err)
	}
	m.logger.Info(ctx, "sync complete", "synced", res.Synced, "conflicts", len(res.Conflicts))
	return res, nil
}

func (m *Manager) push(ctx context.Context, watermark time.Time, res *Result) error {
	pending, err := m.store.ListPending(ctx)
	if err != nil {
		return fmt.Errorf("listing pending changes: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	req := &protocol.PushRequest{Watermark: watermarkMillis(watermark)}
	byID := make(map[string]*models.PendingChange, len(pending))
	for i := range pending {
		p := &pending[i]
		ch, err := transport.ChangeFromPending(p)
		if err != nil {
			return err
		}
		req.Changes = append(req.Changes, *ch)
		byID[p.ID] = p
	}

	resp, err := m.api.Push(ctx, req)
	if err != nil {
		return fmt.Errorf("push: %w", err)
	}

	var synced, purged []string
	for _, id := range resp.Accepted {
		p, ok := byID[id]
		if ok && p.Operation == models.OperationDelete {
			purged = append(purged, id)
		} else {
			synced = append(synced, id)
		}
	}
	if len(synced) > 0 {
		if err := m.store.MarkSynced(ctx, synced); err != nil {
			return fmt.Errorf("marking synced: %w", err)
		}
	}
	for _, id := range purged {
		if err := m.store.PurgeContact(ctx, id); err != nil {
			return fmt.Errorf("purging contact %s: %w", id, err)
		}
	}

	if len(resp.Conflicts) > 0 {
		if err := m.recordConflicts(ctx, resp.Conflicts, byID, res); err != nil {
			return err
		}
	}
	res.Synced += len(resp.Accepted)
	return nil
}

func (m *Manager) recordConflicts(ctx context.Context, wire []protocol.Conflict, byID map[string]*models.PendingChange, res *Result) error {
	ids := make([]string, 0, len(wire))
	found := make([]models.Conflict, 0, len(wire))
	for _, wc := range wire {
		server, err := transport.DecodeConflict(&wc)
		if err != nil {
			return err
		}
		c := models.Conflict{
			ID:         wc.ID,
			Collection: models.Collection(wc.Collection),
			Server:     server,
		}
		if p, ok := byID[wc.ID]; ok {
			c.Local = p.Payload
		}
		ids = append(ids, wc.ID)
		found = append(found, c)
	}

	if err := m.store.MarkConflict(ctx, ids); err != nil {
		return fmt.Errorf("marking conflicts: %w", err)
	}

	m.mu.Lock()
	for _, c := range found {
		m.conflicts[c.ID] = c
	}
	m.mu.Unlock()

	res.Conflicts = append(res.Conflicts, found...)
	return nil
}

func (m *Manager) pull(ctx context.Context, watermark time.Time, res *Result) error {
	resp, err := m.api.Pull(ctx, &protocol.PullRequest{Watermark: watermarkMillis(watermark)})
	if err != nil {
		return fmt.Errorf("pull: %w", err)
	}

	if len(resp.Checkins) > 0 {
		records := make([]models.Checkin, 0, len(resp.Checkins))
		for i := range resp.Checkins {
			records = append(records, *transport.CheckinFromWire(&resp.Checkins[i]))
		}
		if err := m.store.BulkApplyCheckins(ctx, records); err != nil {
			return fmt.Errorf("applying pulled check-ins: %w", err)
		}
	}

	var live []models.Contact
	var removed []string
	for i := range resp.Contacts {
		if resp.Contacts[i].Deleted {
			removed = append(removed, resp.Contacts[i].ID)
			continue
		}
		live = append(live, *transport.ContactFromWire(&resp.Contacts[i]))
	}
	if len(live) > 0 {
		if err := m.store.BulkApplyContacts(ctx, live); err != nil {
			return fmt.Errorf("applying pulled contacts: %w", err)
		}
	}
	for _, id := range removed {
		if err := m.store.PurgeContact(ctx, id); err != nil && !errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("purging contact %s: %w", id, err)
		}
	}

	res.Synced += len(resp.Checkins) + len(resp.Contacts)
	return nil
}

// Status reports the current state, last successful sync time, and pending
// record count. It is safe to call while a sync runs.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	pending, err := m.store.ListPending(ctx)
	if err != nil {
		return Status{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{
		State:        m.state,
		LastSyncAt:   m.lastSync,
		PendingCount: len(pending),
	}, nil
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Conflicts returns the unresolved conflicts, ordered by id.
func (m *Manager) Conflicts() []models.Conflict {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Conflict, 0, len(m.conflicts))
	for _, c := range m.conflicts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ResolveConflict applies the user's choice for one conflicted record.
//
// keep_server writes the authority's copy locally and marks it synced.
// keep_local re-marks the local record pending so the next push resends it
// with a fresh edit timestamp.
func (m *Manager) ResolveConflict(ctx context.Context, id string, r models.Resolution) error {
	m.mu.Lock()
	c, ok := m.conflicts[id]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrUnknownConflict, id)
	}

	var err error
	switch r {
	case models.ResolutionKeepServer:
		err = m.applyServerCopy(ctx, c)
	case models.ResolutionKeepLocal:
		err = m.requeueLocalCopy(ctx, c)
	default:
		return fmt.Errorf("%w: unknown resolution %q", shared.ErrValidation, r)
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.conflicts, id)
	m.mu.Unlock()
	return nil
}

// ResolveAllConflicts applies one choice to every unresolved conflict.
func (m *Manager) ResolveAllConflicts(ctx context.Context, r models.Resolution) error {
	for _, c := range m.Conflicts() {
		if err := m.ResolveConflict(ctx, c.ID, r); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) applyServerCopy(ctx context.Context, c models.Conflict) error {
	switch c.Collection {
	case models.CollectionCheckins:
		rec := c.Server.Checkin.Clone()
		rec.SyncStatus = models.SyncStatusSynced
		_, err := m.store.SaveCheckin(ctx, rec)
		return err
	case models.CollectionContacts:
		rec := c.Server.Contact.Clone()
		rec.SyncStatus = models.SyncStatusSynced
		_, err := m.store.SaveContact(ctx, rec)
		return err
	default:
		return fmt.Errorf("%w: %s", shared.ErrUnknownCollection, c.Collection)
	}
}

func (m *Manager) requeueLocalCopy(ctx context.Context, c models.Conflict) error {
	switch c.Collection {
	case models.CollectionCheckins:
		rec, err := m.store.GetCheckin(ctx, c.ID)
		if err != nil {
			return err
		}
		_, err = m.store.SaveCheckin(ctx, rec)
		return err
	case models.CollectionContacts:
		rec, err := m.store.GetContact(ctx, c.ID)
		if err != nil {
			return err
		}
		_, err = m.store.SaveContact(ctx, rec)
		return err
	default:
		return fmt.Errorf("%w: %s", shared.ErrUnknownCollection, c.Collection)
	}
}

// StartAutoSync launches a background loop: one immediate sync, then one per
// interval. While offline it probes the authority every onlineCheck and runs
// exactly one sync when connectivity returns. Calling it again restarts the
// loop with the new periods.
func (m *Manager) StartAutoSync(interval, onlineCheck time.Duration) {
	m.StopAutoSync()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	m.autoMu.Lock()
	m.autoCancel = cancel
	m.autoDone = done
	m.autoMu.Unlock()

	go func() {
		defer close(done)
		m.syncQuietly(ctx)

		ticker := time.NewTicker(interval)
		probe := time.NewTicker(onlineCheck)
		defer ticker.Stop()
		defer probe.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.syncQuietly(ctx)
			case <-probe.C:
				if m.State() == StateOffline && m.api.Probe(ctx) == nil {
					m.syncQuietly(ctx)
				}
			}
		}
	}()
}

// StopAutoSync stops the background loop and waits for it to exit.
func (m *Manager) StopAutoSync() {
	m.autoMu.Lock()
	cancel, done := m.autoCancel, m.autoDone
	m.autoCancel, m.autoDone = nil, nil
	m.autoMu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// syncQuietly runs a sync on the background loop; failures are already
// reported through state and listener callbacks.
func (m *Manager) syncQuietly(ctx context.Context) {
	if _, err := m.Sync(ctx); err != nil && !errors.Is(err, shared.ErrSyncInProgress) {
		m.logger.Debug(ctx, "auto-sync cycle failed", "error", err)
	}
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
	m.emitState(s)
}

func (m *Manager) emitState(s State) {
	if m.listener.OnStateChange != nil {
		m.listener.OnStateChange(s)
	}
}

// watermarkMillis renders the watermark for the wire; the zero time becomes 0
// so a fresh device pulls everything.
func watermarkMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
