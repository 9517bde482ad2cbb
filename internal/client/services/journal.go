// Package services is the application surface of the journal client: the
// operations the CLI (or any other front end) calls.
package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/client/models"
	"github.com/dmitrijs2005/gophjournal/internal/client/retention"
	"github.com/dmitrijs2005/gophjournal/internal/client/smartsync"
	"github.com/dmitrijs2005/gophjournal/internal/client/stats"
)

// JournalService exposes cached reads, sync, writes, retention and stats for
// one or more users.
//
// Errors wrapping common.ErrCancelled come from a call superseded by a newer
// one for the same user and should not be shown as failures.
type JournalService interface {
	Get(ctx context.Context, userID string, forceRefresh bool) ([]models.Record, models.SyncResult, error)
	SmartSync(ctx context.Context, userID string) ([]models.Record, models.SyncResult, error)
	SaveOne(ctx context.Context, userID string, rec models.Record) (models.Record, error)
	DeleteOne(ctx context.Context, userID, id string) (bool, error)

	GetRetentionSettings(ctx context.Context, userID string) (models.RetentionSettings, error)
	UpdateDaysLimit(ctx context.Context, userID string, days int) (models.RetentionSettings, error)
	ToggleAutoCleanup(ctx context.Context, userID string, enabled bool) (models.RetentionSettings, error)
	ManualCleanup(ctx context.Context, userID string) (models.CleanupResult, error)
	ClearAllUserData(ctx context.Context, userID string, req retention.WipeRequest) error
	// MaybeAutoCleanup runs a cleanup when enabled and due; it reports
	// whether one ran.
	MaybeAutoCleanup(ctx context.Context, userID string, interval time.Duration) (bool, error)

	ComputeStats(ctx context.Context, userID string) (models.Stats, error)
	SyncState(userID string) smartsync.State
}

type journalService struct {
	sync      *smartsync.Engine
	retention *retention.Manager
	stats     *stats.Reporter
}

func NewJournalService(sync *smartsync.Engine, rm *retention.Manager, sr *stats.Reporter) JournalService {
	return &journalService{sync: sync, retention: rm, stats: sr}
}

func (s *journalService) Get(ctx context.Context, userID string, forceRefresh bool) ([]models.Record, models.SyncResult, error) {
	return s.sync.Get(ctx, userID, forceRefresh)
}

func (s *journalService) SmartSync(ctx context.Context, userID string) ([]models.Record, models.SyncResult, error) {
	return s.sync.SmartSync(ctx, userID)
}

func (s *journalService) SaveOne(ctx context.Context, userID string, rec models.Record) (models.Record, error) {
	return s.sync.SaveOne(ctx, userID, rec)
}

func (s *journalService) DeleteOne(ctx context.Context, userID, id string) (bool, error) {
	return s.sync.DeleteOne(ctx, userID, id)
}

func (s *journalService) GetRetentionSettings(ctx context.Context, userID string) (models.RetentionSettings, error) {
	return s.retention.GetSettings(ctx, userID)
}

func (s *journalService) UpdateDaysLimit(ctx context.Context, userID string, days int) (models.RetentionSettings, error) {
	return s.retention.UpdateDaysLimit(ctx, userID, days)
}

func (s *journalService) ToggleAutoCleanup(ctx context.Context, userID string, enabled bool) (models.RetentionSettings, error) {
	return s.retention.ToggleAutoCleanup(ctx, userID, enabled)
}

func (s *journalService) ManualCleanup(ctx context.Context, userID string) (models.CleanupResult, error) {
	return s.retention.ManualCleanup(ctx, userID)
}

func (s *journalService) ClearAllUserData(ctx context.Context, userID string, req retention.WipeRequest) error {
	return s.retention.ClearAllUserData(ctx, userID, req)
}

func (s *journalService) MaybeAutoCleanup(ctx context.Context, userID string, interval time.Duration) (bool, error) {
	return s.retention.MaybeAutoCleanup(ctx, userID, interval)
}

func (s *journalService) ComputeStats(ctx context.Context, userID string) (models.Stats, error) {
	return s.stats.ComputeStats(ctx, userID)
}

func (s *journalService) SyncState(userID string) smartsync.State {
	return s.sync.State(userID)
}
