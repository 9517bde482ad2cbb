package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/client/models"
)

// Client is the authoritative remote store of journal records.
type Client interface {
	Ping(ctx context.Context) error
	// ListKeys returns the natural keys of every record of the user.
	ListKeys(ctx context.Context, userID string) ([]string, error)
	FetchByKeys(ctx context.Context, userID string, keys []string) ([]models.Record, error)
	FetchAll(ctx context.Context, userID string) ([]models.Record, error)
	// Upsert stores rec and returns it as persisted, with a canonical ID.
	Upsert(ctx context.Context, userID string, rec models.Record) (models.Record, error)
	// Delete reports whether a record with the id existed.
	Delete(ctx context.Context, userID string, id string) (bool, error)
	// DeleteOlderThan removes records of kind older than cutoff: entries by
	// day key, topics by last update.
	DeleteOlderThan(ctx context.Context, userID string, kind models.Kind, cutoff time.Time) (int, error)
	Close() error
}
