package chunks

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/client/models"
	"github.com/dmitrijs2005/gophjournal/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, c *models.Chunk) error {
	query := `INSERT OR REPLACE INTO cache_chunks
		(id, user_id, chunk_index, total_chunks, payload, original_size, compressed_size, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.UserID, c.ChunkIndex, c.TotalChunks, c.Payload,
		c.OriginalSize, c.CompressedSize, c.Timestamp.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert chunk %d: %w", c.ChunkIndex, err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, userID string) ([]models.Chunk, error) {
	query := `SELECT id, user_id, chunk_index, total_chunks, payload, original_size, compressed_size, created_at
		FROM cache_chunks WHERE user_id = ? ORDER BY chunk_index`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select chunks: %w", err)
	}
	defer rows.Close()

	result := make([]models.Chunk, 0)
	for rows.Next() {
		var (
			c       models.Chunk
			created int64
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.ChunkIndex, &c.TotalChunks, &c.Payload,
			&c.OriginalSize, &c.CompressedSize, &created); err != nil {
			return nil, fmt.Errorf("failed to scan chunk row: %w", err)
		}
		c.Timestamp = time.UnixMilli(created).UTC()
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chunk rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cache_chunks WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear chunks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Count(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cache_chunks WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return n, nil
}
