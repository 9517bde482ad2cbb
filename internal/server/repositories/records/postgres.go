package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/dbx"
	"github.com/dmitrijs2005/gophjournal/internal/server/models"
)

const selectColumns = `id, user_id, natural_key, kind, title, body, items, flags, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListKeys(ctx context.Context, userID string) ([]string, error) {
	query :=
		`SELECT natural_key FROM records
		 WHERE user_id = $1
		 ORDER BY natural_key
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return keys, nil
}

// SelectByKeys returns the user's records whose natural key is in keys,
// newest key first.
func (r *PostgresRepository) SelectByKeys(ctx context.Context, userID string, keys []string) ([]models.Record, error) {
	if len(keys) == 0 {
		return []models.Record{}, nil
	}

	args := make([]any, 0, len(keys)+1)
	args = append(args, userID)
	placeholders := make([]string, len(keys))
	for i, k := range keys {
		placeholders[i] = "$" + strconv.Itoa(i+2)
		args = append(args, k)
	}

	query := `SELECT ` + selectColumns + ` FROM records
		 WHERE user_id = $1 AND natural_key IN (` + strings.Join(placeholders, ", ") + `)
		 ORDER BY natural_key DESC`

	return r.query(ctx, query, args...)
}

func (r *PostgresRepository) SelectAll(ctx context.Context, userID string) ([]models.Record, error) {
	query := `SELECT ` + selectColumns + ` FROM records
		 WHERE user_id = $1
		 ORDER BY natural_key DESC`

	return r.query(ctx, query, userID)
}

func (r *PostgresRepository) FindByKey(ctx context.Context, userID, naturalKey string) (*models.Record, error) {
	query := `SELECT ` + selectColumns + ` FROM records
		 WHERE user_id = $1 AND natural_key = $2`

	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, userID, naturalKey))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}

// Upsert inserts rec or overwrites the row with the same id. A row owned by
// another user is never touched; that case returns common.ErrUnauthorized.
func (r *PostgresRepository) Upsert(ctx context.Context, rec *models.Record) error {
	items, flags, err := encodeJSON(rec)
	if err != nil {
		return err
	}

	query :=
		`INSERT INTO records (id, user_id, natural_key, kind, title, body, items, flags, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (id) DO UPDATE SET
		   natural_key = EXCLUDED.natural_key,
		   kind = EXCLUDED.kind,
		   title = EXCLUDED.title,
		   body = EXCLUDED.body,
		   items = EXCLUDED.items,
		   flags = EXCLUDED.flags,
		   updated_at = EXCLUDED.updated_at
		 WHERE records.user_id = EXCLUDED.user_id
		 RETURNING created_at, updated_at
		 `

	err = r.db.QueryRowContext(ctx, query,
		rec.ID, rec.UserID, rec.NaturalKey, rec.Kind, rec.Title, rec.Body, items, flags, rec.CreatedAt, rec.UpdatedAt,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: record %s belongs to another user", common.ErrUnauthorized, rec.ID)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	query :=
		`DELETE FROM records
		 WHERE user_id = $1 AND id = $2
		 `

	n, err := r.exec(ctx, query, userID, id)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteEntriesBefore removes entries whose day key sorts before cutoffKey.
// YYYY-MM-DD keys order lexically the same way as the dates.
func (r *PostgresRepository) DeleteEntriesBefore(ctx context.Context, userID, cutoffKey string) (int64, error) {
	query :=
		`DELETE FROM records
		 WHERE user_id = $1 AND kind = 'entry' AND natural_key < $2
		 `

	return r.exec(ctx, query, userID, cutoffKey)
}

func (r *PostgresRepository) DeleteTopicsBefore(ctx context.Context, userID string, cutoff time.Time) (int64, error) {
	query :=
		`DELETE FROM records
		 WHERE user_id = $1 AND kind = 'topic' AND updated_at < $2
		 `

	return r.exec(ctx, query, userID, cutoff)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]models.Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]models.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*models.Record, error) {
	var (
		rec          models.Record
		items, flags []byte
	)
	if err := s.Scan(&rec.ID, &rec.UserID, &rec.NaturalKey, &rec.Kind, &rec.Title, &rec.Body,
		&items, &flags, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &rec.Items); err != nil {
			return nil, fmt.Errorf("decode items of %s: %w", rec.ID, err)
		}
	}
	if len(flags) > 0 {
		if err := json.Unmarshal(flags, &rec.Flags); err != nil {
			return nil, fmt.Errorf("decode flags of %s: %w", rec.ID, err)
		}
	}
	return &rec, nil
}

func encodeJSON(rec *models.Record) ([]byte, []byte, error) {
	items := rec.Items
	if items == nil {
		items = []models.Item{}
	}
	flags := rec.Flags
	if flags == nil {
		flags = map[string]bool{}
	}
	ib, err := json.Marshal(items)
	if err != nil {
		return nil, nil, fmt.Errorf("encode items: %w", err)
	}
	fb, err := json.Marshal(flags)
	if err != nil {
		return nil, nil, fmt.Errorf("encode flags: %w", err)
	}
	return ib, fb, nil
}
