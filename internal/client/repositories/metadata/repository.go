// Package metadata is a small key/value store in the local database. The
// cache keeps its snapshot summary here and the retention manager its
// per-user settings.
package metadata

import "context"

// Repository stores opaque values by key. Get returns (nil, nil) for a
// missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// CacheKey is where the cache summary for userID lives.
func CacheKey(userID string) string { return "cache:" + userID }

// RetentionKey is where the retention settings for userID live.
func RetentionKey(userID string) string { return "retention:" + userID }

// SessionKey holds the remembered CLI session.
const SessionKey = "session"
