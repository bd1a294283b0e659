package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wh131462/stillalive/internal/protocol"
	"github.com/wh131462/stillalive/internal/server/repositories/repomanager"
	"github.com/wh131462/stillalive/internal/shared"
)

var serverBase = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func newSyncService() *SyncService {
	return NewSyncService(nil, repomanager.NewMemory()).WithClock(func() time.Time { return serverBase })
}

func checkinChange(t *testing.T, w *protocol.Checkin) protocol.Change {
	t.Helper()
	raw, err := json.Marshal(w)
	require.NoError(t, err)
	return protocol.Change{
		Collection:     protocol.CollectionCheckins,
		Operation:      protocol.OperationUpsert,
		Data:           raw,
		LocalUpdatedAt: w.UpdatedAt,
	}
}

func contactChange(t *testing.T, w *protocol.Contact) protocol.Change {
	t.Helper()
	raw, err := json.Marshal(w)
	require.NoError(t, err)
	return protocol.Change{
		Collection:     protocol.CollectionContacts,
		Operation:      protocol.OperationUpsert,
		Data:           raw,
		LocalUpdatedAt: w.UpdatedAt,
	}
}

func deleteChange(t *testing.T, collection, id string, at int64) protocol.Change {
	t.Helper()
	raw, err := json.Marshal(protocol.DeleteData{ID: id})
	require.NoError(t, err)
	return protocol.Change{
		Collection:     collection,
		Operation:      protocol.OperationDelete,
		Data:           raw,
		LocalUpdatedAt: at,
	}
}

func wireCheckin(id, date string, updatedAt int64) *protocol.Checkin {
	return &protocol.Checkin{
		ID:        id,
		Date:      date,
		Content:   "made it through",
		Mood:      "calm",
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
}

func TestPush_AcceptsNewRecords(t *testing.T) {
	t.Parallel()
	svc := newSyncService()
	ctx := context.Background()

	c := wireCheckin("chk-1", "2024-01-10", serverBase.UnixMilli())
	p := &protocol.Contact{ID: "con-1", Name: "Mira", Birthday: "03-15", CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}

	resp, err := svc.Push(ctx, "user-1", &protocol.PushRequest{
		Changes: []protocol.Change{checkinChange(t, c), contactChange(t, p)},
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"chk-1", "con-1"}, resp.Accepted)
	assert.Empty(t, resp.Conflicts)
	assert.Equal(t, serverBase.UnixMilli(), resp.SyncedAt)
}

func TestPush_ConflictWhenServerCopyNewer(t *testing.T) {
	t.Parallel()
	svc := newSyncService()
	ctx := context.Background()

	t1 := serverBase.UnixMilli()
	first := wireCheckin("chk-1", "2024-01-10", t1+1000)
	_, err := svc.Push(ctx, "user-1", &protocol.PushRequest{Changes: []protocol.Change{checkinChange(t, first)}})
	require.NoError(t, err)

	// A second device edits the same record based on an older copy.
	stale := wireCheckin("chk-1", "2024-01-10", t1)
	stale.Content = "stale edit"
	resp, err := svc.Push(ctx, "user-1", &protocol.PushRequest{Changes: []protocol.Change{checkinChange(t, stale)}})
	require.NoError(t, err)

	assert.Empty(t, resp.Accepted)
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, "chk-1", resp.Conflicts[0].ID)
	assert.Equal(t, protocol.CollectionCheckins, resp.Conflicts[0].Collection)

	var server protocol.Checkin
	require.NoError(t, json.Unmarshal(resp.Conflicts[0].ServerData, &server))
	assert.Equal(t, "made it through", server.Content)
	assert.Equal(t, t1+1000, server.UpdatedAt)
}

func TestPush_ResendIsIdempotent(t *testing.T) {
	t.Parallel()
	svc := newSyncService()
	ctx := context.Background()

	c := wireCheckin("chk-1", "2024-01-10", serverBase.UnixMilli())
	req := &protocol.PushRequest{Changes: []protocol.Change{checkinChange(t, c)}}

	_, err := svc.Push(ctx, "user-1", req)
	require.NoError(t, err)

	// The device never got the response and resends the same batch.
	resp, err := svc.Push(ctx, "user-1", req)
	require.NoError(t, err)
	assert.Equal(t, []string{"chk-1"}, resp.Accepted)
	assert.Empty(t, resp.Conflicts)

	pull, err := svc.Pull(ctx, "user-1", &protocol.PullRequest{})
	require.NoError(t, err)
	assert.Len(t, pull.Checkins, 1)
}

func TestPush_DeleteOfMissingRecordAccepted(t *testing.T) {
	t.Parallel()
	svc := newSyncService()
	ctx := context.Background()

	resp, err := svc.Push(ctx, "user-1", &protocol.PushRequest{
		Changes: []protocol.Change{
			deleteChange(t, protocol.CollectionCheckins, "never-existed", serverBase.UnixMilli()),
			deleteChange(t, protocol.CollectionContacts, "also-missing", serverBase.UnixMilli()),
		},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"never-existed", "also-missing"}, resp.Accepted)
	assert.Empty(t, resp.Conflicts)
}

func TestPush_SameDateFromOtherDeviceDisplaces(t *testing.T) {
	t.Parallel()
	svc := newSyncService()
	ctx := context.Background()

	t1 := serverBase.UnixMilli()
	a := wireCheckin("chk-a", "2024-01-10", t1)
	_, err := svc.Push(ctx, "user-1", &protocol.PushRequest{Changes: []protocol.Change{checkinChange(t, a)}})
	require.NoError(t, err)

	b := wireCheckin("chk-b", "2024-01-10", t1+500)
	resp, err := svc.Push(ctx, "user-1", &protocol.PushRequest{Changes: []protocol.Change{checkinChange(t, b)}})
	require.NoError(t, err)
	assert.Equal(t, []string{"chk-b"}, resp.Accepted)

	pull, err := svc.Pull(ctx, "user-1", &protocol.PullRequest{})
	require.NoError(t, err)
	require.Len(t, pull.Checkins, 1)
	assert.Equal(t, "chk-b", pull.Checkins[0].ID)
}

func TestPush_ContactDeleteConflictsWhenServerNewer(t *testing.T) {
	t.Parallel()
	svc := newSyncService()
	ctx := context.Background()

	t1 := serverBase.UnixMilli()
	p := &protocol.Contact{ID: "con-1", Name: "Mira", CreatedAt: t1, UpdatedAt: t1 + 1000}
	_, err := svc.Push(ctx, "user-1", &protocol.PushRequest{Changes: []protocol.Change{contactChange(t, p)}})
	require.NoError(t, err)

	// Delete based on a copy older than the server's edit.
	resp, err := svc.Push(ctx, "user-1", &protocol.PushRequest{
		Changes: []protocol.Change{deleteChange(t, protocol.CollectionContacts, "con-1", t1)},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Accepted)
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, "con-1", resp.Conflicts[0].ID)

	// Record stays live.
	pull, err := svc.Pull(ctx, "user-1", &protocol.PullRequest{})
	require.NoError(t, err)
	require.Len(t, pull.Contacts, 1)
	assert.False(t, pull.Contacts[0].Deleted)
}

func TestPush_UnknownCollectionRejected(t *testing.T) {
	t.Parallel()
	svc := newSyncService()

	_, err := svc.Push(context.Background(), "user-1", &protocol.PushRequest{
		Changes: []protocol.Change{{Collection: "moods", Operation: protocol.OperationUpsert, Data: json.RawMessage(`{}`)}},
	})
	require.ErrorIs(t, err, shared.ErrUnknownCollection)
}

func TestPush_UsersAreIsolated(t *testing.T) {
	t.Parallel()
	svc := newSyncService()
	ctx := context.Background()

	c := wireCheckin("chk-1", "2024-01-10", serverBase.UnixMilli())
	_, err := svc.Push(ctx, "user-1", &protocol.PushRequest{Changes: []protocol.Change{checkinChange(t, c)}})
	require.NoError(t, err)

	pull, err := svc.Pull(ctx, "user-2", &protocol.PullRequest{})
	require.NoError(t, err)
	assert.Empty(t, pull.Checkins)
}

func TestPull_SinceWatermarkIncludesDeletedContacts(t *testing.T) {
	t.Parallel()
	svc := newSyncService()
	ctx := context.Background()

	t1 := serverBase.UnixMilli()
	old := wireCheckin("chk-old", "2024-01-08", t1-5000)
	fresh := wireCheckin("chk-new", "2024-01-10", t1+1000)
	p := &protocol.Contact{ID: "con-1", Name: "Mira", CreatedAt: t1 - 5000, UpdatedAt: t1 - 5000}

	_, err := svc.Push(ctx, "user-1", &protocol.PushRequest{
		Changes: []protocol.Change{checkinChange(t, old), checkinChange(t, fresh), contactChange(t, p)},
	})
	require.NoError(t, err)

	// Contact deleted after the watermark; its tombstone must be pulled.
	_, err = svc.Push(ctx, "user-1", &protocol.PushRequest{
		Changes: []protocol.Change{deleteChange(t, protocol.CollectionContacts, "con-1", t1+2000)},
	})
	require.NoError(t, err)

	pull, err := svc.Pull(ctx, "user-1", &protocol.PullRequest{Watermark: t1})
	require.NoError(t, err)

	require.Len(t, pull.Checkins, 1)
	assert.Equal(t, "chk-new", pull.Checkins[0].ID)
	require.Len(t, pull.Contacts, 1)
	assert.Equal(t, "con-1", pull.Contacts[0].ID)
	assert.True(t, pull.Contacts[0].Deleted)
	assert.Equal(t, t1+2000, pull.Contacts[0].UpdatedAt)
	assert.Equal(t, serverBase.UnixMilli(), pull.ServerTime)
}

func TestPushThenPull_RoundTripPreservesFields(t *testing.T) {
	t.Parallel()
	svc := newSyncService()
	ctx := context.Background()

	c := &protocol.Checkin{
		ID:        "chk-1",
		Date:      "2024-01-09",
		Content:   "quiet day",
		Photo:     "users/u/2024/1/9/p.jpg",
		Mood:      "tired",
		IsMakeup:  true,
		CreatedAt: serverBase.UnixMilli() - 100,
		UpdatedAt: serverBase.UnixMilli(),
	}
	_, err := svc.Push(ctx, "user-1", &protocol.PushRequest{Changes: []protocol.Change{checkinChange(t, c)}})
	require.NoError(t, err)

	pull, err := svc.Pull(ctx, "user-1", &protocol.PullRequest{})
	require.NoError(t, err)
	require.Len(t, pull.Checkins, 1)
	assert.Equal(t, *c, pull.Checkins[0])
}
