// Package services contains server-side business logic. RecordService keeps
// each user's journal collection: key listing, fetches, upserts with
// canonical id resolution, deletes and retention purges.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/dbx"
	"github.com/dmitrijs2005/gophjournal/internal/server/models"
	"github.com/dmitrijs2005/gophjournal/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophjournal/internal/timex"
	"github.com/google/uuid"
)

type RecordService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewRecordService(db *sql.DB, m repomanager.RepositoryManager) *RecordService {
	return &RecordService{db: db, repomanager: m, now: time.Now}
}

func (s *RecordService) ListKeys(ctx context.Context, userID string) ([]string, error) {
	keys, err := s.repomanager.Records(s.db).ListKeys(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return keys, nil
}

func (s *RecordService) FetchByKeys(ctx context.Context, userID string, keys []string) ([]models.Record, error) {
	recs, err := s.repomanager.Records(s.db).SelectByKeys(ctx, userID, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch records: %w", err)
	}
	return recs, nil
}

func (s *RecordService) FetchAll(ctx context.Context, userID string) ([]models.Record, error) {
	recs, err := s.repomanager.Records(s.db).SelectAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch records: %w", err)
	}
	return recs, nil
}

// Upsert stores rec for its user. The natural key is unique per user: when a
// row already holds the key, its id is reused unless rec carries its own id,
// in which case the old row is replaced. CreatedAt of the replaced row is
// kept and UpdatedAt is set to now.
func (s *RecordService) Upsert(ctx context.Context, rec models.Record) (models.Record, error) {
	if err := rec.Validate(); err != nil {
		return models.Record{}, err
	}
	now := s.now().UTC()

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Records(tx)

		existing, err := repo.FindByKey(ctx, rec.UserID, rec.NaturalKey)
		switch {
		case errors.Is(err, common.ErrNotFound):
		case err != nil:
			return fmt.Errorf("failed to look up %s: %w", rec.NaturalKey, err)
		default:
			if rec.ID == "" {
				rec.ID = existing.ID
			}
			if rec.ID != existing.ID {
				if _, err := repo.Delete(ctx, rec.UserID, existing.ID); err != nil {
					return fmt.Errorf("failed to replace %s: %w", existing.ID, err)
				}
			}
			rec.CreatedAt = existing.CreatedAt
		}

		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		rec.UpdatedAt = now

		return repo.Upsert(ctx, &rec)
	})
	if err != nil {
		return models.Record{}, fmt.Errorf("failed to upsert record: %w", err)
	}
	return rec, nil
}

func (s *RecordService) Delete(ctx context.Context, userID, id string) (bool, error) {
	ok, err := s.repomanager.Records(s.db).Delete(ctx, userID, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete record: %w", err)
	}
	return ok, nil
}

// DeleteOlderThan purges records of one kind that fall before cutoff: entries
// by their day key, topics by their last update.
func (s *RecordService) DeleteOlderThan(ctx context.Context, userID, kind string, cutoff time.Time) (int64, error) {
	repo := s.repomanager.Records(s.db)

	var (
		n   int64
		err error
	)
	switch kind {
	case models.KindEntry:
		n, err = repo.DeleteEntriesBefore(ctx, userID, entryCutoffKey(cutoff))
	case models.KindTopic:
		n, err = repo.DeleteTopicsBefore(ctx, userID, cutoff.UTC())
	default:
		return 0, fmt.Errorf("%w: unknown kind %q", common.ErrValidation, kind)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to delete old %s records: %w", kind, err)
	}
	return n, nil
}

// entryCutoffKey is the smallest day key that is not older than cutoff. An
// entry's day starts at midnight UTC, so a cutoff inside a day also covers
// that day.
func entryCutoffKey(cutoff time.Time) string {
	day := timex.StartOfDay(cutoff)
	if day.Before(cutoff) {
		day = day.AddDate(0, 0, 1)
	}
	return timex.FormatDay(day)
}
