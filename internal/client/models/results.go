package models

import "time"

// SyncResult describes where the records of one sync call came from.
type SyncResult struct {
	FromCache   int
	FromRemote  int
	TotalSynced int
	MissingKeys []string
}

// CleanupResult reports what a retention pass removed. Primary counts dated
// entries, secondary counts topical collections.
type CleanupResult struct {
	DeletedPrimary   int
	DeletedSecondary int
	PrunedFromCache  int
	Cutoff           time.Time
}

// Stats is the read-side summary shown by settings panels.
type Stats struct {
	TotalPrimary       int
	TotalSecondary     int
	OldestDate         string
	NewestDate         string
	MissingSyncDates   []string
	EstimatedSizeBytes int64
	CompressionRatio   float64
	LastSync           time.Time
	RemoteReachable    bool
}
