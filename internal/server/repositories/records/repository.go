package records

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/server/models"
)

type Repository interface {
	ListKeys(ctx context.Context, userID string) ([]string, error)
	SelectByKeys(ctx context.Context, userID string, keys []string) ([]models.Record, error)
	SelectAll(ctx context.Context, userID string) ([]models.Record, error)
	FindByKey(ctx context.Context, userID, naturalKey string) (*models.Record, error)
	Upsert(ctx context.Context, rec *models.Record) error
	Delete(ctx context.Context, userID, id string) (bool, error)
	DeleteEntriesBefore(ctx context.Context, userID, cutoffKey string) (int64, error)
	DeleteTopicsBefore(ctx context.Context, userID string, cutoff time.Time) (int64, error)
}
