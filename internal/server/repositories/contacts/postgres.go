package contacts

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

const contactColumns = `id, user_id, name, gender, birthday, birth_year, photo, mbti, impression, experience, created_at, updated_at, deleted`

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Contact, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE user_id = $1 AND id = $2`, userID, id)
	return scanContact(row)
}

func (r *PostgresRepository) Upsert(ctx context.Context, c *models.Contact) error {
	query := `INSERT INTO contacts (id, user_id, name, gender, birthday, birth_year, photo, mbti, impression, experience, created_at, updated_at, deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name,
			gender = excluded.gender,
			birthday = excluded.birthday,
			birth_year = excluded.birth_year,
			photo = excluded.photo,
			mbti = excluded.mbti,
			impression = excluded.impression,
			experience = excluded.experience,
			updated_at = excluded.updated_at,
			deleted = excluded.deleted
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.UserID, c.Name, c.Gender, c.Birthday, c.BirthYear, c.Photo, c.MBTI,
		c.Impression, c.Experience, c.CreatedAt.UnixMilli(), c.UpdatedAt.UnixMilli(), c.Deleted)
	if err != nil {
		return fmt.Errorf("failed to upsert contact: %w", err)
	}
	return nil
}

func (r *PostgresRepository) MarkDeleted(ctx context.Context, userID, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE contacts SET deleted = TRUE, updated_at = $3 WHERE user_id = $1 AND id = $2`,
		userID, id, at.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to mark contact deleted: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListUpdatedSince(ctx context.Context, userID string, since time.Time) ([]models.Contact, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE user_id = $1 AND updated_at > $2 ORDER BY updated_at ASC`,
		userID, since.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to list updated contacts: %w", err)
	}
	defer rows.Close()

	var out []models.Contact
	for rows.Next() {
		c, err := scanContactRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func scanContact(row *sql.Row) (*models.Contact, error) {
	var c models.Contact
	var createdMs, updatedMs int64
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Gender, &c.Birthday, &c.BirthYear,
		&c.Photo, &c.MBTI, &c.Impression, &c.Experience, &createdMs, &updatedMs, &c.Deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan contact: %w", err)
	}
	c.CreatedAt = time.UnixMilli(createdMs)
	c.UpdatedAt = time.UnixMilli(updatedMs)
	return &c, nil
}

func scanContactRow(rows *sql.Rows) (*models.Contact, error) {
	var c models.Contact
	var createdMs, updatedMs int64
	if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Gender, &c.Birthday, &c.BirthYear,
		&c.Photo, &c.MBTI, &c.Impression, &c.Experience, &createdMs, &updatedMs, &c.Deleted); err != nil {
		return nil, fmt.Errorf("failed to scan contact: %w", err)
	}
	c.CreatedAt = time.UnixMilli(createdMs)
	c.UpdatedAt = time.UnixMilli(updatedMs)
	return &c, nil
}
