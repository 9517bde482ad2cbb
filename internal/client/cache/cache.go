package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/dmitrijs2005/gophjournal/internal/client/models"
	"github.com/dmitrijs2005/gophjournal/internal/client/repositories/chunks"
	"github.com/dmitrijs2005/gophjournal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

var (
	chunksWritten       = metrics.NewCounter("journal_cache_chunks_written_total")
	chunkWriteFailures  = metrics.NewCounter("journal_cache_chunk_write_failures_total")
	chunkDecodeFailures = metrics.NewCounter("journal_cache_chunk_decode_failures_total")
)

// marshalChunk is a seam for testing serialization failures.
var marshalChunk = json.Marshal

// WriteReport counts the chunk writes of one Save. Written+Failed == Total.
type WriteReport struct {
	Written int
	Failed  int
	Total   int
}

// Partial reports whether some chunks were not persisted.
func (w WriteReport) Partial() bool { return w.Failed > 0 }

// Cache is the compressed snapshot store of a single user. Obtain one from
// Registry.For. A single writer per user is assumed.
type Cache struct {
	userID string
	chunks chunks.Repository
	meta   metadata.Repository
	opts   Options
	log    logging.Logger

	enc *zstd.Encoder
	dec *zstd.Decoder
	now func() time.Time
}

// UserID returns the owner of the cache.
func (c *Cache) UserID() string { return c.userID }

// Save replaces the persisted snapshot with records. Serialization or
// compression failures abort before anything is written and wrap
// common.ErrCompression. Failed chunk or metadata writes are logged and
// counted in the report but do not fail the call.
func (c *Cache) Save(ctx context.Context, records []models.Record, isPatch bool) (WriteReport, error) {
	if len(records) == 0 {
		return WriteReport{}, nil
	}

	prepared, origBytes, compBytes, err := c.compress(ctx, records)
	if err != nil {
		return WriteReport{}, err
	}

	// From here on the snapshot is written to the end even if ctx is
	// cancelled, so a superseded caller never leaves half a chunk set behind.
	wctx := context.WithoutCancel(ctx)

	var lastSync time.Time
	if isPatch {
		if prev := c.Stats(wctx); prev != nil {
			lastSync = prev.LastSync
		}
	}

	if n, err := c.clearChunks(wctx); err != nil {
		c.log.Warn(ctx, "clear previous chunks failed", "err", err)
	} else if n > 0 {
		c.log.Debug(ctx, "previous chunks cleared", "count", n)
	}

	report := WriteReport{Total: len(prepared)}
	for i := range prepared {
		if err := c.writeChunk(wctx, &prepared[i]); err != nil {
			report.Failed++
			chunkWriteFailures.Inc()
			c.log.Warn(ctx, "chunk write skipped", "chunk", prepared[i].ChunkIndex, "total", report.Total, "err", err)
			continue
		}
		report.Written++
		chunksWritten.Inc()
	}

	now := c.now()
	if !isPatch {
		lastSync = now
	}
	md := models.CacheMetadata{
		TotalRecords:     len(records),
		TotalChunks:      report.Written,
		LastSync:         lastSync,
		LastUpdate:       now,
		CompressionRatio: ratio(origBytes, compBytes),
		OriginalBytes:    origBytes,
		CompressedBytes:  compBytes,
		DeviceInfo:       c.opts.DeviceInfo,
	}
	if err := c.writeMetadata(wctx, md); err != nil {
		c.log.Warn(ctx, "metadata write skipped", "err", err)
	}

	if report.Partial() {
		c.log.Warn(ctx, "snapshot persisted partially", "written", report.Written, "failed", report.Failed)
	}
	return report, nil
}

// compress partitions records into chunks and compresses each of them. It
// yields to the scheduler every YieldEvery chunks and waits while the
// pressure probe reports memory pressure.
func (c *Cache) compress(ctx context.Context, records []models.Record) ([]models.Chunk, int64, int64, error) {
	size := c.opts.ChunkSize
	total := (len(records) + size - 1) / size
	out := make([]models.Chunk, 0, total)
	ts := c.now()

	var origBytes, compBytes int64
	for idx := 0; idx < total; idx++ {
		if idx > 0 && idx%c.opts.YieldEvery == 0 {
			runtime.Gosched()
		}
		if err := c.waitPressure(ctx); err != nil {
			return nil, 0, 0, err
		}

		end := min((idx+1)*size, len(records))
		raw, err := marshalChunk(records[idx*size : end])
		if err != nil {
			return nil, 0, 0, fmt.Errorf("%w: serialize chunk %d: %v", common.ErrCompression, idx, err)
		}
		payload := c.enc.EncodeAll(raw, make([]byte, 0, len(raw)/2))
		if len(payload) == 0 {
			return nil, 0, 0, fmt.Errorf("%w: empty output for chunk %d", common.ErrCompression, idx)
		}

		out = append(out, models.Chunk{
			ID:             uuid.NewString(),
			UserID:         c.userID,
			ChunkIndex:     idx,
			TotalChunks:    total,
			Payload:        payload,
			OriginalSize:   len(raw),
			CompressedSize: len(payload),
			Timestamp:      ts,
		})
		origBytes += int64(len(raw))
		compBytes += int64(len(payload))
	}
	return out, origBytes, compBytes, nil
}

func (c *Cache) waitPressure(ctx context.Context) error {
	if c.opts.Pressure == nil {
		return nil
	}
	for c.opts.Pressure() {
		t := time.NewTimer(c.opts.PressurePause)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("compression interrupted: %w", ctx.Err())
		case <-t.C:
		}
	}
	return nil
}

func (c *Cache) writeChunk(ctx context.Context, ch *models.Chunk) error {
	ctx, cancel := context.WithTimeout(ctx, c.opts.WriteTimeout)
	defer cancel()

	err := c.chunks.Insert(ctx, ch)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: chunk %d: %v", common.ErrStorageTimeout, ch.ChunkIndex, err)
	}
	return err
}

func (c *Cache) writeMetadata(ctx context.Context, md models.CacheMetadata) error {
	b, err := json.Marshal(md)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, c.opts.WriteTimeout)
	defer cancel()
	return c.meta.Set(ctx, metadata.CacheKey(c.userID), b)
}

func (c *Cache) clearChunks(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.WriteTimeout)
	defer cancel()
	return c.chunks.Clear(ctx, c.userID)
}

// Load returns the cached collection in chunk order. It never fails: read
// errors yield an empty collection and undecodable chunks are dropped. Only
// the newest snapshot is read; chunks left over from an earlier Save whose
// clear failed are ignored.
func (c *Cache) Load(ctx context.Context) []models.Record {
	rctx, cancel := context.WithTimeout(ctx, c.opts.ReadTimeout)
	defer cancel()

	rows, err := c.chunks.List(rctx, c.userID)
	if err != nil {
		c.log.Warn(ctx, "load chunks failed", "err", err)
		return []models.Record{}
	}
	if current := latestSnapshot(rows); len(current) < len(rows) {
		c.log.Warn(ctx, "stale chunks ignored", "count", len(rows)-len(current))
		rows = current
	}

	records := make([]models.Record, 0, len(rows)*c.opts.ChunkSize)
	for _, row := range rows {
		part, err := c.decode(row)
		if err != nil {
			chunkDecodeFailures.Inc()
			c.log.Warn(ctx, "chunk dropped", "chunk", row.ChunkIndex, "err", err)
			continue
		}
		records = append(records, part...)
	}
	return records
}

// latestSnapshot keeps the rows written by the most recent Save. All chunks
// of one Save share a timestamp.
func latestSnapshot(rows []models.Chunk) []models.Chunk {
	if len(rows) == 0 {
		return rows
	}
	newest := rows[0].Timestamp
	for _, r := range rows[1:] {
		if r.Timestamp.After(newest) {
			newest = r.Timestamp
		}
	}
	out := make([]models.Chunk, 0, len(rows))
	for _, r := range rows {
		if r.Timestamp.Equal(newest) {
			out = append(out, r)
		}
	}
	return out
}

func (c *Cache) decode(row models.Chunk) ([]models.Record, error) {
	raw, err := c.dec.DecodeAll(row.Payload, make([]byte, 0, row.OriginalSize))
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	var part []models.Record
	if err := json.Unmarshal(raw, &part); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return part, nil
}

// UpsertOne drops every cached record sharing rec's ID or natural key, then
// inserts rec keeping the collection sorted by natural key descending. This
// mirrors the remote, which keeps one record per natural key. The whole
// snapshot is rewritten as a patch.
func (c *Cache) UpsertOne(ctx context.Context, rec models.Record) error {
	loaded := c.Load(ctx)

	records := make([]models.Record, 0, len(loaded)+1)
	for _, r := range loaded {
		if (rec.ID != "" && r.ID == rec.ID) || r.NaturalKey == rec.NaturalKey {
			continue
		}
		records = append(records, r)
	}

	pos := len(records)
	for i := range records {
		if records[i].NaturalKey < rec.NaturalKey {
			pos = i
			break
		}
	}
	records = append(records, models.Record{})
	copy(records[pos+1:], records[pos:])
	records[pos] = rec

	_, err := c.Save(ctx, records, true)
	return err
}

// RemoveOne deletes the record with the given ID. It reports whether the
// record was cached. Removing the last record clears the cache.
func (c *Cache) RemoveOne(ctx context.Context, id string) (bool, error) {
	n, err := c.RemoveWhere(ctx, func(r models.Record) bool { return r.ID == id })
	return n > 0, err
}

// RemoveWhere deletes every record matching pred and returns how many were
// removed. Nothing is written when nothing matches.
func (c *Cache) RemoveWhere(ctx context.Context, pred func(models.Record) bool) (int, error) {
	records := c.Load(ctx)

	kept := make([]models.Record, 0, len(records))
	for _, r := range records {
		if !pred(r) {
			kept = append(kept, r)
		}
	}
	removed := len(records) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if len(kept) == 0 {
		return removed, c.Clear(ctx)
	}
	if _, err := c.Save(ctx, kept, true); err != nil {
		return 0, err
	}
	return removed, nil
}

// Clear deletes all chunks and the metadata row of the user.
func (c *Cache) Clear(ctx context.Context) error {
	if _, err := c.clearChunks(ctx); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, c.opts.WriteTimeout)
	defer cancel()
	if err := c.meta.Delete(ctx, metadata.CacheKey(c.userID)); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// Stats returns the metadata of the last snapshot, or nil when there is
// none or it cannot be read in time. StoredChunks is the actual row count,
// which exceeds TotalChunks when a failed clear left stale chunks behind.
func (c *Cache) Stats(ctx context.Context) *models.CacheMetadata {
	ctx, cancel := context.WithTimeout(ctx, c.opts.ReadTimeout)
	defer cancel()

	b, err := c.meta.Get(ctx, metadata.CacheKey(c.userID))
	if err != nil {
		c.log.Warn(ctx, "read cache metadata failed", "err", err)
		return nil
	}
	if b == nil {
		return nil
	}
	var md models.CacheMetadata
	if err := json.Unmarshal(b, &md); err != nil {
		c.log.Warn(ctx, "cache metadata is corrupt", "err", err)
		return nil
	}

	md.StoredChunks = md.TotalChunks
	if n, err := c.chunks.Count(ctx, c.userID); err != nil {
		c.log.Warn(ctx, "count chunks failed", "err", err)
	} else {
		md.StoredChunks = n
		if n != md.TotalChunks {
			c.log.Warn(ctx, "chunk count mismatch", "stored", n, "expected", md.TotalChunks)
		}
	}
	return &md
}

// ratio is original size over compressed size; above 1 means space saved.
func ratio(orig, comp int64) float64 {
	if comp == 0 {
		return 0
	}
	return float64(orig) / float64(comp)
}
