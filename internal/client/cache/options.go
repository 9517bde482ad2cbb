package cache

import "time"

// Options tunes a cache. The zero value of a field means its default.
type Options struct {
	// ChunkSize is the number of records per chunk.
	ChunkSize int
	// WriteTimeout bounds each chunk and metadata write.
	WriteTimeout time.Duration
	// ReadTimeout bounds reading the chunk set or the metadata row.
	ReadTimeout time.Duration
	// YieldEvery is how many chunks are compressed between scheduler yields.
	YieldEvery int
	// Pressure reports host memory pressure. Compression pauses while it
	// returns true.
	Pressure func() bool
	// PressurePause is how long to wait before probing pressure again.
	PressurePause time.Duration
	// DeviceInfo is stored in the metadata row.
	DeviceInfo string
}

const (
	DefaultChunkSize     = 50
	DefaultWriteTimeout  = 5 * time.Second
	DefaultReadTimeout   = 5 * time.Second
	DefaultYieldEvery    = 3
	DefaultPressurePause = 50 * time.Millisecond
)

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		ChunkSize:     DefaultChunkSize,
		WriteTimeout:  DefaultWriteTimeout,
		ReadTimeout:   DefaultReadTimeout,
		YieldEvery:    DefaultYieldEvery,
		PressurePause: DefaultPressurePause,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ChunkSize <= 0 {
		o.ChunkSize = d.ChunkSize
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = d.WriteTimeout
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = d.ReadTimeout
	}
	if o.YieldEvery <= 0 {
		o.YieldEvery = d.YieldEvery
	}
	if o.PressurePause <= 0 {
		o.PressurePause = d.PressurePause
	}
	return o
}
