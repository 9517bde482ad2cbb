package models

import "time"

// Chunk is one independently compressed slice of a user's record collection
// as persisted in the local store.
type Chunk struct {
	ID             string
	UserID         string
	ChunkIndex     int
	TotalChunks    int
	Payload        []byte
	OriginalSize   int
	CompressedSize int
	Timestamp      time.Time
}

// CacheMetadata summarizes the last snapshot written for a user.
// TotalChunks counts chunk rows actually persisted, which can be lower than
// the intended total after a partial write.
type CacheMetadata struct {
	TotalRecords     int       `json:"total_records"`
	TotalChunks      int       `json:"total_chunks"`
	LastSync         time.Time `json:"last_sync"`
	LastUpdate       time.Time `json:"last_update"`
	CompressionRatio float64   `json:"compression_ratio"`
	OriginalBytes    int64     `json:"original_bytes"`
	CompressedBytes  int64     `json:"compressed_bytes"`
	DeviceInfo       string    `json:"device_info"`

	// StoredChunks is filled on read from the chunk table.
	StoredChunks int `json:"-"`
}

// Retention limits, in days.
const (
	MinCacheDays     = 1
	MaxCacheDays     = 365
	DefaultCacheDays = 90
)

// RetentionSettings is owned by the retention manager.
type RetentionSettings struct {
	CacheDaysLimit     int       `json:"cache_days_limit"`
	AutoCleanupEnabled bool      `json:"auto_cleanup_enabled"`
	LastCleanup        time.Time `json:"last_cleanup"`
}

// DefaultRetentionSettings is what a user gets on first access.
func DefaultRetentionSettings() RetentionSettings {
	return RetentionSettings{CacheDaysLimit: DefaultCacheDays, AutoCleanupEnabled: true}
}
