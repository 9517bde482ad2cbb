// Package chunks provides the client-side persistence layer for compressed
// cache chunks.
//
// # Overview
//
// A user's record collection is stored as a sequence of independently
// compressed chunks. Each row carries its position (chunk_index), the total
// the writer intended (total_chunks), the compressed payload and the sizes
// before and after compression. Rows are opaque to this package; encoding
// and decoding belong to internal/client/cache.
//
// # Consistency
//
// The repository never validates that a user's chunk set is complete. A
// snapshot write clears the old rows and then inserts new rows one by one,
// so a reader may observe fewer rows than total_chunks. Readers must treat
// each row independently.
//
// Typical Usage
//
//	repo := chunks.NewSQLiteRepository(db)
//	_ = repo.Clear(ctx, userID)
//	_ = repo.Insert(ctx, &chunk)
//	rows, _ := repo.List(ctx, userID)
package chunks
