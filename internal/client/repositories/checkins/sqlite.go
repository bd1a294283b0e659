package checkins

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wh131462/stillalive/internal/client/models"
	"github.com/wh131462/stillalive/internal/dbx"
	"github.com/wh131462/stillalive/internal/shared"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const checkinColumns = `id, date, content, photo, mood, is_makeup, created_at, updated_at, sync_status, server_version`

// Upsert writes the record by id; conflicting columns are replaced.
func (r *SQLiteRepository) Upsert(ctx context.Context, c *models.Checkin) error {
	query := `INSERT INTO checkins (id, date, content, photo, mood, is_makeup, created_at, updated_at, sync_status, server_version)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET date = excluded.date,
				content = excluded.content,
				photo = excluded.photo,
				mood = excluded.mood,
				is_makeup = excluded.is_makeup,
				updated_at = excluded.updated_at,
				sync_status = excluded.sync_status,
				server_version = excluded.server_version
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Date, c.Content, c.Photo, string(c.Mood), boolToInt(c.IsMakeup),
		c.CreatedAt.UnixMilli(), c.UpdatedAt.UnixMilli(), string(c.SyncStatus), c.ServerVersion)
	if err != nil {
		return fmt.Errorf("failed to upsert checkin: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Checkin, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+checkinColumns+` FROM checkins WHERE id = ?`, id)
	return scanCheckin(row)
}

func (r *SQLiteRepository) GetByDate(ctx context.Context, date string) (*models.Checkin, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+checkinColumns+` FROM checkins WHERE date = ?`, date)
	return scanCheckin(row)
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.Checkin, error) {
	return r.selectMany(ctx, `SELECT `+checkinColumns+` FROM checkins ORDER BY date ASC`)
}

func (r *SQLiteRepository) ListByDateRange(ctx context.Context, start, end string) ([]models.Checkin, error) {
	return r.selectMany(ctx, `SELECT `+checkinColumns+` FROM checkins WHERE date >= ? AND date <= ? ORDER BY date ASC`, start, end)
}

// ListPending returns dirty check-ins sorted by edit time ascending so the
// oldest edits go to the authority first.
func (r *SQLiteRepository) ListPending(ctx context.Context) ([]models.Checkin, error) {
	return r.selectMany(ctx, `SELECT `+checkinColumns+` FROM checkins WHERE sync_status = ? ORDER BY updated_at ASC`,
		string(models.SyncStatusPending))
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM checkins WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete checkin: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n != 1 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteByDateExcept(ctx context.Context, date, keepID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM checkins WHERE date = ? AND id != ?`, date, keepID)
	if err != nil {
		return fmt.Errorf("failed to delete checkin by date: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SetStatus(ctx context.Context, ids []string, status models.SyncStatus) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, 0, len(ids)+1)
	args = append(args, string(status))
	for _, id := range ids {
		args = append(args, id)
	}
	query := `UPDATE checkins SET sync_status = ? WHERE id IN (?` + strings.Repeat(", ?", len(ids)-1) + `)`
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to set checkin status: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) selectMany(ctx context.Context, query string, args ...any) ([]models.Checkin, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select checkins: %w", err)
	}
	defer rows.Close()

	var result []models.Checkin
	for rows.Next() {
		item, err := scanCheckinRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanCheckin(row *sql.Row) (*models.Checkin, error) {
	c, err := scanCheckinRow(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	return c, err
}

func scanCheckinRow(scan func(dest ...any) error) (*models.Checkin, error) {
	var (
		c         models.Checkin
		mood      string
		status    string
		isMakeup  int
		createdMs int64
		updatedMs int64
	)
	if err := scan(&c.ID, &c.Date, &c.Content, &c.Photo, &mood, &isMakeup,
		&createdMs, &updatedMs, &status, &c.ServerVersion); err != nil {
		return nil, err
	}
	c.Mood = models.Mood(mood)
	c.IsMakeup = isMakeup != 0
	c.CreatedAt = time.UnixMilli(createdMs).UTC()
	c.UpdatedAt = time.UnixMilli(updatedMs).UTC()
	c.SyncStatus = models.SyncStatus(status)
	return &c, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
