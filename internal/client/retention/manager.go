// Package retention enforces the per-user "keep N days" policy on both the
// remote store and the local cache.
package retention

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/client/cache"
	"github.com/dmitrijs2005/gophjournal/internal/client/client"
	"github.com/dmitrijs2005/gophjournal/internal/client/models"
	"github.com/dmitrijs2005/gophjournal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"github.com/dmitrijs2005/gophjournal/internal/timex"
)

// wipeCutoff is far enough in the future that every record is older.
var wipeCutoff = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

// WipeRequest must be built by the caller after explicit user confirmation.
type WipeRequest struct {
	Confirmed     bool
	IncludeRemote bool
}

type Manager struct {
	remote client.Client
	caches *cache.Registry
	meta   metadata.Repository
	log    logging.Logger
	now    func() time.Time
}

func NewManager(remote client.Client, caches *cache.Registry, meta metadata.Repository, log logging.Logger) *Manager {
	if log == nil {
		log = logging.Nop{}
	}
	return &Manager{
		remote: remote,
		caches: caches,
		meta:   meta,
		log:    log.With("module", "retention"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// GetSettings returns the stored settings or the defaults on first access.
func (m *Manager) GetSettings(ctx context.Context, userID string) (models.RetentionSettings, error) {
	b, err := m.meta.Get(ctx, metadata.RetentionKey(userID))
	if err != nil {
		return models.RetentionSettings{}, fmt.Errorf("read retention settings: %w", err)
	}
	if b == nil {
		return models.DefaultRetentionSettings(), nil
	}
	var s models.RetentionSettings
	if err := json.Unmarshal(b, &s); err != nil {
		m.log.Warn(ctx, "retention settings are corrupt, using defaults", "user", userID, "err", err)
		return models.DefaultRetentionSettings(), nil
	}
	return s, nil
}

func (m *Manager) save(ctx context.Context, userID string, s models.RetentionSettings) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode retention settings: %w", err)
	}
	if err := m.meta.Set(ctx, metadata.RetentionKey(userID), b); err != nil {
		return fmt.Errorf("write retention settings: %w", err)
	}
	return nil
}

// UpdateDaysLimit stores a new limit in [1,365]. With auto cleanup on, a
// cleanup pass runs right away; its failure is logged, not returned.
func (m *Manager) UpdateDaysLimit(ctx context.Context, userID string, days int) (models.RetentionSettings, error) {
	if days < models.MinCacheDays || days > models.MaxCacheDays {
		return models.RetentionSettings{}, fmt.Errorf("%w: days limit %d is outside [%d,%d]",
			common.ErrValidation, days, models.MinCacheDays, models.MaxCacheDays)
	}
	s, err := m.GetSettings(ctx, userID)
	if err != nil {
		return models.RetentionSettings{}, err
	}
	s.CacheDaysLimit = days
	if err := m.save(ctx, userID, s); err != nil {
		return models.RetentionSettings{}, err
	}

	if s.AutoCleanupEnabled {
		if _, err := m.ManualCleanup(ctx, userID); err != nil {
			m.log.Warn(ctx, "cleanup after limit change failed", "user", userID, "err", err)
		}
		return m.GetSettings(ctx, userID)
	}
	return s, nil
}

func (m *Manager) ToggleAutoCleanup(ctx context.Context, userID string, enabled bool) (models.RetentionSettings, error) {
	s, err := m.GetSettings(ctx, userID)
	if err != nil {
		return models.RetentionSettings{}, err
	}
	s.AutoCleanupEnabled = enabled
	if err := m.save(ctx, userID, s); err != nil {
		return models.RetentionSettings{}, err
	}
	return s, nil
}

// ManualCleanup deletes records older than the configured limit remotely
// and from the cache. A record exactly limit days old is kept.
func (m *Manager) ManualCleanup(ctx context.Context, userID string) (models.CleanupResult, error) {
	s, err := m.GetSettings(ctx, userID)
	if err != nil {
		return models.CleanupResult{}, err
	}
	now := m.now()
	cutoff := timex.RetentionCutoff(now, s.CacheDaysLimit)
	res := models.CleanupResult{Cutoff: cutoff}

	entries, err := m.remote.DeleteOlderThan(ctx, userID, models.KindEntry, cutoff)
	if err != nil {
		return res, fmt.Errorf("delete old entries: %w", err)
	}
	res.DeletedPrimary = entries

	topics, err := m.remote.DeleteOlderThan(ctx, userID, models.KindTopic, cutoff)
	if err != nil {
		return res, fmt.Errorf("delete old topics: %w", err)
	}
	res.DeletedSecondary = topics

	pruned, err := m.caches.For(userID).RemoveWhere(ctx, func(r models.Record) bool { return r.OlderThan(cutoff) })
	if err != nil {
		m.log.Warn(ctx, "cache prune failed", "user", userID, "err", err)
	}
	res.PrunedFromCache = pruned

	s.LastCleanup = now
	if err := m.save(ctx, userID, s); err != nil {
		return res, err
	}
	m.log.Info(ctx, "retention cleanup done", "user", userID, "cutoff", timex.FormatDay(cutoff),
		"entries", res.DeletedPrimary, "topics", res.DeletedSecondary, "cache", res.PrunedFromCache)
	return res, nil
}

// MaybeAutoCleanup runs a cleanup when auto cleanup is on and the last one is
// at least interval old. It reports whether a cleanup ran.
func (m *Manager) MaybeAutoCleanup(ctx context.Context, userID string, interval time.Duration) (bool, error) {
	s, err := m.GetSettings(ctx, userID)
	if err != nil {
		return false, err
	}
	if !s.AutoCleanupEnabled {
		return false, nil
	}
	if !s.LastCleanup.IsZero() && m.now().Sub(s.LastCleanup) < interval {
		return false, nil
	}
	if _, err := m.ManualCleanup(ctx, userID); err != nil {
		return false, err
	}
	return true, nil
}

// Run calls MaybeAutoCleanup immediately and then on every tick until ctx is
// done.
func (m *Manager) Run(ctx context.Context, userID string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := m.MaybeAutoCleanup(ctx, userID, interval); err != nil && ctx.Err() == nil {
			m.log.Warn(ctx, "auto cleanup failed", "user", userID, "err", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// ClearAllUserData wipes the user's cache and settings and, when asked, every
// remote record. It refuses unless the request is confirmed.
func (m *Manager) ClearAllUserData(ctx context.Context, userID string, req WipeRequest) error {
	if !req.Confirmed {
		return common.ErrNotConfirmed
	}
	if req.IncludeRemote {
		for _, kind := range []models.Kind{models.KindEntry, models.KindTopic} {
			if _, err := m.remote.DeleteOlderThan(ctx, userID, kind, wipeCutoff); err != nil {
				return fmt.Errorf("wipe remote %ss: %w", kind, err)
			}
		}
	}
	if err := m.caches.For(userID).Clear(ctx); err != nil {
		return err
	}
	if err := m.meta.Delete(ctx, metadata.RetentionKey(userID)); err != nil {
		return fmt.Errorf("wipe retention settings: %w", err)
	}
	m.log.Info(ctx, "user data wiped", "user", userID, "remote", req.IncludeRemote)
	return nil
}
