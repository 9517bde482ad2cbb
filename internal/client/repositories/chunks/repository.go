package chunks

import (
	"context"

	"github.com/dmitrijs2005/gophjournal/internal/client/models"
)

// Repository persists cache chunks per user.
type Repository interface {
	// Insert stores one chunk. A chunk with the same ID is replaced.
	Insert(ctx context.Context, chunk *models.Chunk) error

	// List returns the user's chunks ordered by chunk index.
	List(ctx context.Context, userID string) ([]models.Chunk, error)

	// Clear removes every chunk of the user and reports how many were removed.
	Clear(ctx context.Context, userID string) (int64, error)

	// Count returns the number of persisted chunks of the user.
	Count(ctx context.Context, userID string) (int, error)
}
