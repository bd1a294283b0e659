package checkins

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/wh131462/stillalive/internal/dbx"
	"github.com/wh131462/stillalive/internal/server/models"
	"github.com/wh131462/stillalive/internal/shared"
)

// PostgresRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository returns a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const checkinColumns = `id, user_id, date, content, photo, mood, is_makeup, created_at, updated_at`

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Checkin, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+checkinColumns+` FROM checkins WHERE user_id = $1 AND id = $2`, userID, id)
	return scanCheckin(row)
}

func (r *PostgresRepository) Upsert(ctx context.Context, c *models.Checkin) error {
	query := `INSERT INTO checkins (id, user_id, date, content, photo, mood, is_makeup, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT(id) DO UPDATE SET date = excluded.date,
			content = excluded.content,
			photo = excluded.photo,
			mood = excluded.mood,
			is_makeup = excluded.is_makeup,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.UserID, c.Date, c.Content, c.Photo, c.Mood, c.IsMakeup,
		c.CreatedAt.UnixMilli(), c.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to upsert checkin: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM checkins WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete checkin: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteByDateExcept(ctx context.Context, userID, date, keepID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM checkins WHERE user_id = $1 AND date = $2 AND id <> $3`, userID, date, keepID)
	if err != nil {
		return fmt.Errorf("failed to delete displaced checkin: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListUpdatedSince(ctx context.Context, userID string, since time.Time) ([]models.Checkin, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+checkinColumns+` FROM checkins WHERE user_id = $1 AND updated_at > $2 ORDER BY updated_at ASC`,
		userID, since.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to list updated checkins: %w", err)
	}
	defer rows.Close()

	var out []models.Checkin
	for rows.Next() {
		c, err := scanCheckinRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func scanCheckin(row *sql.Row) (*models.Checkin, error) {
	var c models.Checkin
	var createdMs, updatedMs int64
	err := row.Scan(&c.ID, &c.UserID, &c.Date, &c.Content, &c.Photo, &c.Mood, &c.IsMakeup, &createdMs, &updatedMs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan checkin: %w", err)
	}
	c.CreatedAt = time.UnixMilli(createdMs)
	c.UpdatedAt = time.UnixMilli(updatedMs)
	return &c, nil
}

func scanCheckinRow(rows *sql.Rows) (*models.Checkin, error) {
	var c models.Checkin
	var createdMs, updatedMs int64
	if err := rows.Scan(&c.ID, &c.UserID, &c.Date, &c.Content, &c.Photo, &c.Mood, &c.IsMakeup, &createdMs, &updatedMs); err != nil {
		return nil, fmt.Errorf("failed to scan checkin: %w", err)
	}
	c.CreatedAt = time.UnixMilli(createdMs)
	c.UpdatedAt = time.UnixMilli(updatedMs)
	return &c, nil
}
