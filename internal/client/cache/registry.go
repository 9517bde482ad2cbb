package cache

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/client/repositories/chunks"
	"github.com/dmitrijs2005/gophjournal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"github.com/klauspost/compress/zstd"
	"github.com/puzpuzpuz/xsync/v3"
)

// Registry vends one Cache per user. It is safe for concurrent use.
type Registry struct {
	chunks chunks.Repository
	meta   metadata.Repository
	opts   Options
	log    logging.Logger

	enc *zstd.Encoder
	dec *zstd.Decoder

	caches *xsync.MapOf[string, *Cache]
	now    func() time.Time
}

// NewRegistry creates a registry over the given repositories. The zstd
// encoder and decoder are shared by all caches; their EncodeAll and
// DecodeAll methods are safe for concurrent use.
func NewRegistry(chunkRepo chunks.Repository, metaRepo metadata.Repository, opts Options, log logging.Logger) (*Registry, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	if log == nil {
		log = logging.Nop{}
	}
	return &Registry{
		chunks: chunkRepo,
		meta:   metaRepo,
		opts:   opts.withDefaults(),
		log:    log.With("module", "cache"),
		enc:    enc,
		dec:    dec,
		caches: xsync.NewMapOf[string, *Cache](),
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// For returns the cache of userID, creating it on first use.
func (r *Registry) For(userID string) *Cache {
	c, _ := r.caches.LoadOrCompute(userID, func() *Cache {
		return &Cache{
			userID: userID,
			chunks: r.chunks,
			meta:   r.meta,
			opts:   r.opts,
			log:    r.log.With("user", userID),
			enc:    r.enc,
			dec:    r.dec,
			now:    r.now,
		}
	})
	return c
}

// Close releases the compression resources.
func (r *Registry) Close() error {
	r.dec.Close()
	return r.enc.Close()
}
