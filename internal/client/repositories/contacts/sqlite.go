package contacts

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

const contactColumns = `id, name, gender, birthday, birth_year, photo, mbti, impression, experience,
	created_at, updated_at, sync_status, server_version, delete_state`

func (r *SQLiteRepository) Upsert(ctx context.Context, c *models.Contact) error {
	query := `INSERT INTO contacts (id, name, gender, birthday, birth_year, photo, mbti, impression, experience,
				created_at, updated_at, sync_status, server_version, delete_state)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name,
				gender = excluded.gender,
				birthday = excluded.birthday,
				birth_year = excluded.birth_year,
				photo = excluded.photo,
				mbti = excluded.mbti,
				impression = excluded.impression,
				experience = excluded.experience,
				updated_at = excluded.updated_at,
				sync_status = excluded.sync_status,
				server_version = excluded.server_version,
				delete_state = excluded.delete_state
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Name, string(c.Gender), c.Birthday, c.BirthYear, c.Photo, c.MBTI, c.Impression, c.Experience,
		c.CreatedAt.UnixMilli(), c.UpdatedAt.UnixMilli(), string(c.SyncStatus), c.ServerVersion, string(c.DeleteState))
	if err != nil {
		return fmt.Errorf("failed to upsert contact: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id)
	c, err := scanContactRow(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	return c, err
}

func (r *SQLiteRepository) ListActive(ctx context.Context) ([]models.Contact, error) {
	return r.selectMany(ctx, `SELECT `+contactColumns+` FROM contacts WHERE delete_state = ? ORDER BY name ASC`,
		string(models.DeleteStateActive))
}

func (r *SQLiteRepository) ListByBirthday(ctx context.Context, monthDay string) ([]models.Contact, error) {
	return r.selectMany(ctx, `SELECT `+contactColumns+` FROM contacts WHERE birthday = ? AND delete_state = ? ORDER BY name ASC`,
		monthDay, string(models.DeleteStateActive))
}

func (r *SQLiteRepository) ListPending(ctx context.Context) ([]models.Contact, error) {
	return r.selectMany(ctx, `SELECT `+contactColumns+` FROM contacts WHERE sync_status = ? ORDER BY updated_at ASC`,
		string(models.SyncStatusPending))
}

func (r *SQLiteRepository) SoftDelete(ctx context.Context, id string, editedAtMs int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE contacts SET delete_state = ?, sync_status = ?, updated_at = ? WHERE id = ? AND delete_state = ?`,
		string(models.DeleteStatePendingDelete), string(models.SyncStatusPending), editedAtMs,
		id, string(models.DeleteStateActive))
	if err != nil {
		return fmt.Errorf("failed to soft-delete contact: %w", err)
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

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
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

func (r *SQLiteRepository) SetStatus(ctx context.Context, ids []string, status models.SyncStatus) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, 0, len(ids)+1)
	args = append(args, string(status))
	for _, id := range ids {
		args = append(args, id)
	}
	query := `UPDATE contacts SET sync_status = ? WHERE id IN (?` + strings.Repeat(", ?", len(ids)-1) + `)`
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to set contact status: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) selectMany(ctx context.Context, query string, args ...any) ([]models.Contact, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select contacts: %w", err)
	}
	defer rows.Close()

	var result []models.Contact
	for rows.Next() {
		item, err := scanContactRow(rows.Scan)
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

func scanContactRow(scan func(dest ...any) error) (*models.Contact, error) {
	var (
		c           models.Contact
		gender      string
		status      string
		deleteState string
		createdMs   int64
		updatedMs   int64
	)
	if err := scan(&c.ID, &c.Name, &gender, &c.Birthday, &c.BirthYear, &c.Photo, &c.MBTI,
		&c.Impression, &c.Experience, &createdMs, &updatedMs, &status, &c.ServerVersion, &deleteState); err != nil {
		return nil, err
	}
	c.Gender = models.Gender(gender)
	c.CreatedAt = time.UnixMilli(createdMs).UTC()
	c.UpdatedAt = time.UnixMilli(updatedMs).UTC()
	c.SyncStatus = models.SyncStatus(status)
	c.DeleteState = models.DeleteState(deleteState)
	return &c, nil
}
