package checkins

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wh131462/stillalive/internal/client/models"
	"github.com/wh131462/stillalive/internal/shared"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE checkins (
  id TEXT PRIMARY KEY,
  date TEXT NOT NULL UNIQUE,
  content TEXT NOT NULL DEFAULT '',
  photo TEXT NOT NULL DEFAULT '',
  mood TEXT NOT NULL DEFAULT '',
  is_makeup INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL,
  sync_status TEXT NOT NULL DEFAULT 'pending',
  server_version INTEGER
);
`)
	require.NoError(t, err)

	return db
}

func sampleCheckin(id, date string) *models.Checkin {
	now := time.UnixMilli(1704700800000).UTC() // 2024-01-08T08:00:00Z
	return &models.Checkin{
		ID:         id,
		Date:       date,
		Content:    "still here",
		Mood:       models.MoodCalm,
		CreatedAt:  now,
		UpdatedAt:  now,
		SyncStatus: models.SyncStatusPending,
	}
}

func TestUpsert_InsertAndUpdate(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	c := sampleCheckin("id1", "2024-01-08")
	require.NoError(t, r.Upsert(ctx, c))

	got, err := r.GetByID(ctx, "id1")
	require.NoError(t, err)
	assert.Equal(t, "still here", got.Content)
	assert.Equal(t, models.MoodCalm, got.Mood)
	assert.Equal(t, models.SyncStatusPending, got.SyncStatus)

	// update under the same id
	c.Content = "updated"
	c.SyncStatus = models.SyncStatusSynced
	require.NoError(t, r.Upsert(ctx, c))

	got, err = r.GetByID(ctx, "id1")
	require.NoError(t, err)
	assert.Equal(t, "updated", got.Content)
	assert.Equal(t, models.SyncStatusSynced, got.SyncStatus)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM checkins`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestGetByDate(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, sampleCheckin("id1", "2024-01-08")))

	got, err := r.GetByDate(ctx, "2024-01-08")
	require.NoError(t, err)
	assert.Equal(t, "id1", got.ID)

	_, err = r.GetByDate(ctx, "2024-01-09")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListByDateRange(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	for _, d := range []string{"2024-01-08", "2024-01-10", "2024-02-01"} {
		require.NoError(t, r.Upsert(ctx, sampleCheckin("id-"+d, d)))
	}

	got, err := r.ListByDateRange(ctx, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-08", got[0].Date)
	assert.Equal(t, "2024-01-10", got[1].Date)
}

func TestListPending_OrderedByEditTime(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	older := sampleCheckin("old", "2024-01-08")
	older.UpdatedAt = time.UnixMilli(1000).UTC()
	newer := sampleCheckin("new", "2024-01-09")
	newer.UpdatedAt = time.UnixMilli(2000).UTC()
	synced := sampleCheckin("done", "2024-01-10")
	synced.SyncStatus = models.SyncStatusSynced

	require.NoError(t, r.Upsert(ctx, newer))
	require.NoError(t, r.Upsert(ctx, older))
	require.NoError(t, r.Upsert(ctx, synced))

	got, err := r.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "old", got[0].ID)
	assert.Equal(t, "new", got[1].ID)
}

func TestDelete(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, sampleCheckin("id1", "2024-01-08")))
	require.NoError(t, r.Delete(ctx, "id1"))
	require.ErrorIs(t, r.Delete(ctx, "id1"), shared.ErrNotFound)
}

func TestDeleteByDateExcept(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, sampleCheckin("local", "2024-01-08")))
	require.NoError(t, r.DeleteByDateExcept(ctx, "2024-01-08", "server"))

	_, err := r.GetByID(ctx, "local")
	require.ErrorIs(t, err, shared.ErrNotFound)

	// keeps the record when the id matches
	require.NoError(t, r.Upsert(ctx, sampleCheckin("server", "2024-01-08")))
	require.NoError(t, r.DeleteByDateExcept(ctx, "2024-01-08", "server"))
	_, err = r.GetByID(ctx, "server")
	require.NoError(t, err)
}

func TestSetStatus(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, sampleCheckin("a", "2024-01-08")))
	require.NoError(t, r.Upsert(ctx, sampleCheckin("b", "2024-01-09")))

	require.NoError(t, r.SetStatus(ctx, []string{"a", "b"}, models.SyncStatusSynced))

	for _, id := range []string{"a", "b"} {
		got, err := r.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.SyncStatusSynced, got.SyncStatus)
	}

	// no-op on empty input
	require.NoError(t, r.SetStatus(ctx, nil, models.SyncStatusConflict))
}
