// Package cache implements the chunked compression cache: a durable,
// zstd-compressed, chunk-sharded copy of one user's record collection in the
// local SQLite store.
//
// A snapshot write partitions the collection into fixed-size chunks,
// compresses every chunk up front, clears the previous chunk set and writes
// the new chunks one by one, each under its own timeout. A failed chunk write
// is logged and skipped, so a snapshot may be persisted partially; readers
// decode every chunk independently and drop the ones they cannot decode.
//
// Clearing before rewriting is not atomic. A crash in between leaves the
// cache empty, which Load reports as an empty collection and callers treat as
// a cache miss.
package cache
