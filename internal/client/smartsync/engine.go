// Package smartsync keeps the local cache consistent with the remote store
// while fetching only what the cache is provably missing.
//
// Every fetching call for a user cancels the fetch already in flight for
// that user. A superseded call discards its results and returns
// common.ErrCancelled, which callers treat as silent.
package smartsync

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/VictoriaMetrics/metrics"
	"github.com/dmitrijs2005/gophjournal/internal/client/cache"
	"github.com/dmitrijs2005/gophjournal/internal/client/client"
	"github.com/dmitrijs2005/gophjournal/internal/client/models"
	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"github.com/puzpuzpuz/xsync/v3"
)

// State is the sync lifecycle of one user's cache.
type State string

const (
	StateEmpty   State = "EMPTY"
	StateSyncing State = "SYNCING"
	StateLoaded  State = "LOADED"
	StateError   State = "ERROR"
)

var (
	cacheHits       = metrics.NewCounter("journal_sync_cache_hits_total")
	remoteRecords   = metrics.NewCounter("journal_sync_remote_records_total")
	syncCancelled   = metrics.NewCounter("journal_sync_cancelled_total")
	syncFailures    = metrics.NewCounter("journal_sync_failures_total")
	cachePatchFails = metrics.NewCounter("journal_sync_cache_patch_failures_total")
)

type inflight struct {
	seq    uint64
	cancel context.CancelCauseFunc
}

type Engine struct {
	remote client.Client
	caches *cache.Registry
	log    logging.Logger

	seq      atomic.Uint64
	inflight *xsync.MapOf[string, inflight]
	states   *xsync.MapOf[string, State]
}

func NewEngine(remote client.Client, caches *cache.Registry, log logging.Logger) *Engine {
	if log == nil {
		log = logging.Nop{}
	}
	return &Engine{
		remote:   remote,
		caches:   caches,
		log:      log.With("module", "smartsync"),
		inflight: xsync.NewMapOf[string, inflight](),
		states:   xsync.NewMapOf[string, State](),
	}
}

// State returns the current state of userID, EMPTY if never synced.
func (e *Engine) State(userID string) State {
	if s, ok := e.states.Load(userID); ok {
		return s
	}
	return StateEmpty
}

func (e *Engine) setState(userID string, s State) {
	e.states.Store(userID, s)
}

// begin registers a fetch for userID, cancelling the previous one. The
// returned finish func must be called when the fetch is over.
func (e *Engine) begin(ctx context.Context, userID string) (context.Context, func()) {
	fctx, cancel := context.WithCancelCause(ctx)
	seq := e.seq.Add(1)

	if prev, loaded := e.inflight.LoadAndStore(userID, inflight{seq: seq, cancel: cancel}); loaded {
		prev.cancel(common.ErrCancelled)
	}

	return fctx, func() {
		e.inflight.Compute(userID, func(old inflight, loaded bool) (inflight, bool) {
			return old, !loaded || old.seq == seq
		})
		cancel(nil)
	}
}

func superseded(ctx context.Context) bool {
	return errors.Is(context.Cause(ctx), common.ErrCancelled)
}

func (e *Engine) cancelled(ctx context.Context, userID, op string) error {
	syncCancelled.Inc()
	e.log.Debug(ctx, "fetch superseded", "user", userID, "op", op)
	return fmt.Errorf("%s: %w", op, common.ErrCancelled)
}

// Get returns the cached collection when there is one, otherwise or when
// forceRefresh is set it fetches everything and replaces the snapshot. When
// a forced refresh fails the stale cached collection is returned together
// with the error.
func (e *Engine) Get(ctx context.Context, userID string, forceRefresh bool) ([]models.Record, models.SyncResult, error) {
	c := e.caches.For(userID)

	if !forceRefresh {
		if local := c.Load(ctx); len(local) > 0 {
			cacheHits.Inc()
			e.setState(userID, StateLoaded)
			return local, models.SyncResult{FromCache: len(local), TotalSynced: len(local)}, nil
		}
	}

	fctx, finish := e.begin(ctx, userID)
	defer finish()
	e.setState(userID, StateSyncing)

	recs, err := e.remote.FetchAll(fctx, userID)
	if superseded(fctx) {
		return nil, models.SyncResult{}, e.cancelled(ctx, userID, "fetch all")
	}
	if err != nil {
		return e.fail(ctx, c, userID, fmt.Errorf("fetch all: %w", err))
	}

	models.SortByKeyDesc(recs)
	remoteRecords.Add(len(recs))
	res := models.SyncResult{FromRemote: len(recs), TotalSynced: len(recs)}
	e.setState(userID, StateLoaded)

	if _, err := c.Save(ctx, recs, false); err != nil {
		return recs, res, fmt.Errorf("cache snapshot: %w", err)
	}
	return recs, res, nil
}

// SmartSync fetches only the records whose natural keys the cache lacks,
// merges them in and rewrites the snapshot. Local keys are never dropped.
func (e *Engine) SmartSync(ctx context.Context, userID string) ([]models.Record, models.SyncResult, error) {
	c := e.caches.For(userID)

	fctx, finish := e.begin(ctx, userID)
	defer finish()
	e.setState(userID, StateSyncing)

	local := c.Load(ctx)

	remoteKeys, err := e.remote.ListKeys(fctx, userID)
	if superseded(fctx) {
		return nil, models.SyncResult{}, e.cancelled(ctx, userID, "list keys")
	}
	if err != nil {
		return e.fail(ctx, c, userID, fmt.Errorf("list keys: %w", err))
	}

	missing := models.MissingKeys(remoteKeys, models.KeySet(local))
	fetched := []models.Record{}
	if len(missing) > 0 {
		fetched, err = e.remote.FetchByKeys(fctx, userID, missing)
		if superseded(fctx) {
			return nil, models.SyncResult{}, e.cancelled(ctx, userID, "fetch by keys")
		}
		if err != nil {
			return e.fail(ctx, c, userID, fmt.Errorf("fetch by keys: %w", err))
		}
	}
	remoteRecords.Add(len(fetched))

	merged := models.Merge(local, fetched)
	res := models.SyncResult{
		FromCache:   len(local),
		FromRemote:  len(missing),
		TotalSynced: len(merged),
		MissingKeys: missing,
	}
	e.setState(userID, StateLoaded)

	if _, err := c.Save(ctx, merged, false); err != nil {
		return merged, res, fmt.Errorf("cache snapshot: %w", err)
	}
	e.log.Info(ctx, "smart sync done", "user", userID, "from_cache", res.FromCache, "from_remote", res.FromRemote, "total", res.TotalSynced)
	return merged, res, nil
}

// fail moves the user to ERROR and returns the stale cached collection.
func (e *Engine) fail(ctx context.Context, c *cache.Cache, userID string, err error) ([]models.Record, models.SyncResult, error) {
	syncFailures.Inc()
	e.setState(userID, StateError)
	e.log.Warn(ctx, "remote sync failed", "user", userID, "err", err)

	stale := c.Load(ctx)
	return stale, models.SyncResult{FromCache: len(stale), TotalSynced: len(stale)}, err
}

// SaveOne upserts rec remotely and then patches the cache. A failed cache
// patch is logged; the remote write stands.
func (e *Engine) SaveOne(ctx context.Context, userID string, rec models.Record) (models.Record, error) {
	if err := rec.Validate(); err != nil {
		return models.Record{}, err
	}
	saved, err := e.remote.Upsert(ctx, userID, rec)
	if err != nil {
		return models.Record{}, fmt.Errorf("remote upsert: %w", err)
	}
	if err := e.caches.For(userID).UpsertOne(ctx, saved); err != nil {
		cachePatchFails.Inc()
		e.log.Warn(ctx, "cache patch after upsert failed", "user", userID, "key", saved.NaturalKey, "err", err)
	}
	return saved, nil
}

// DeleteOne deletes the record remotely and then from the cache. It reports
// whether the remote store had the record.
func (e *Engine) DeleteOne(ctx context.Context, userID, id string) (bool, error) {
	existed, err := e.remote.Delete(ctx, userID, id)
	if err != nil {
		return false, fmt.Errorf("remote delete: %w", err)
	}
	if _, err := e.caches.For(userID).RemoveOne(ctx, id); err != nil {
		cachePatchFails.Inc()
		e.log.Warn(ctx, "cache patch after delete failed", "user", userID, "id", id, "err", err)
	}
	return existed, nil
}
