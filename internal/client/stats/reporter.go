// Package stats summarizes a user's cached collection for display.
package stats

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophjournal/internal/client/cache"
	"github.com/dmitrijs2005/gophjournal/internal/client/client"
	"github.com/dmitrijs2005/gophjournal/internal/client/models"
	"github.com/dmitrijs2005/gophjournal/internal/logging"
)

type Reporter struct {
	remote client.Client
	caches *cache.Registry
	log    logging.Logger
}

func NewReporter(remote client.Client, caches *cache.Registry, log logging.Logger) *Reporter {
	if log == nil {
		log = logging.Nop{}
	}
	return &Reporter{remote: remote, caches: caches, log: log.With("module", "stats")}
}

// ComputeStats reads the cache and the remote key index. An unreachable
// remote is not an error: RemoteReachable is false and no keys are reported
// missing.
func (r *Reporter) ComputeStats(ctx context.Context, userID string) (models.Stats, error) {
	if err := ctx.Err(); err != nil {
		return models.Stats{}, fmt.Errorf("compute stats: %w", err)
	}
	c := r.caches.For(userID)
	local := c.Load(ctx)

	st := models.Stats{MissingSyncDates: []string{}}
	for _, rec := range local {
		switch rec.Kind {
		case models.KindEntry:
			st.TotalPrimary++
			if st.OldestDate == "" || rec.NaturalKey < st.OldestDate {
				st.OldestDate = rec.NaturalKey
			}
			if rec.NaturalKey > st.NewestDate {
				st.NewestDate = rec.NaturalKey
			}
		case models.KindTopic:
			st.TotalSecondary++
		}
	}

	if md := c.Stats(ctx); md != nil {
		st.EstimatedSizeBytes = md.CompressedBytes
		st.CompressionRatio = md.CompressionRatio
		st.LastSync = md.LastSync
	}

	keys, err := r.remote.ListKeys(ctx, userID)
	if err != nil {
		r.log.Warn(ctx, "remote key index unavailable", "user", userID, "err", err)
		return st, nil
	}
	st.RemoteReachable = true
	st.MissingSyncDates = models.MissingKeys(keys, models.KeySet(local))
	return st, nil
}
