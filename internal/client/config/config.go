package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/common"
)

// Remote backends.
const (
	BackendGRPC   = "grpc"
	BackendS3     = "s3"
	BackendMemory = "memory"
)

// S3Config points the client directly at an S3-compatible bucket.
type S3Config struct {
	Bucket          string
	Region          string
	BaseEndpoint    string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// Config holds runtime settings for the journal CLI.
type Config struct {
	Backend             string
	ServerEndpointAddr  string
	AccessToken         string
	CallTimeout         time.Duration
	UserID              string
	DatabasePath        string
	LogFile             string
	Debug               bool
	OnlineCheckInterval time.Duration
	AutoCleanupInterval time.Duration
	ChunkSize           int
	ChunkWriteTimeout   time.Duration
	S3                  S3Config
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Backend = BackendGRPC
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.CallTimeout = 10 * time.Second
	c.DatabasePath = "journal.db"
	c.LogFile = "journal.log"
	c.OnlineCheckInterval = 3 * time.Second
	c.AutoCleanupInterval = 24 * time.Hour
	c.ChunkSize = 50
	c.ChunkWriteTimeout = 5 * time.Second
	c.S3.Region = "us-east-1"
	c.S3.UsePathStyle = true
}

// Validate rejects settings the client cannot start with.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendGRPC:
		if c.ServerEndpointAddr == "" {
			return fmt.Errorf("%w: server address is empty", common.ErrValidation)
		}
	case BackendS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("%w: s3 bucket is empty", common.ErrValidation)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("%w: unknown backend %q", common.ErrValidation, c.Backend)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive", common.ErrValidation)
	}
	return nil
}

// LoadConfig constructs a Config from defaults, JSON, environment and flags,
// later sources taking precedence.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
