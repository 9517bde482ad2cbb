package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/flagx"
	"github.com/dmitrijs2005/gophjournal/internal/timex"
)

// JSONConfig is only used for unmarshalling. Zero values leave the
// corresponding Config field untouched.
type JSONConfig struct {
	Backend             string         `json:"backend"`
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	CallTimeout         timex.Duration `json:"call_timeout"`
	UserID              string         `json:"user_id"`
	DatabasePath        string         `json:"database_path"`
	LogFile             string         `json:"log_file"`
	Debug               *bool          `json:"debug"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	AutoCleanupInterval timex.Duration `json:"auto_cleanup_interval"`
	ChunkSize           int            `json:"chunk_size"`
	ChunkWriteTimeout   timex.Duration `json:"chunk_write_timeout"`
	S3                  *JSONS3Config  `json:"s3"`
}

type JSONS3Config struct {
	Bucket       string `json:"bucket"`
	Region       string `json:"region"`
	BaseEndpoint string `json:"base_endpoint"`
	UsePathStyle *bool  `json:"use_path_style"`
}

// parseJSON overlays Config with the file named by -c/-config. It panics on
// read or decode errors.
func parseJSON(cfg *Config) {
	path := flagx.JSONConfigPath()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.Backend, jc.Backend)
	setString(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setDuration(&cfg.CallTimeout, jc.CallTimeout)
	setString(&cfg.UserID, jc.UserID)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.LogFile, jc.LogFile)
	if jc.Debug != nil {
		cfg.Debug = *jc.Debug
	}
	setDuration(&cfg.OnlineCheckInterval, jc.OnlineCheckInterval)
	setDuration(&cfg.AutoCleanupInterval, jc.AutoCleanupInterval)
	if jc.ChunkSize > 0 {
		cfg.ChunkSize = jc.ChunkSize
	}
	setDuration(&cfg.ChunkWriteTimeout, jc.ChunkWriteTimeout)

	if s3 := jc.S3; s3 != nil {
		setString(&cfg.S3.Bucket, s3.Bucket)
		setString(&cfg.S3.Region, s3.Region)
		setString(&cfg.S3.BaseEndpoint, s3.BaseEndpoint)
		if s3.UsePathStyle != nil {
			cfg.S3.UsePathStyle = *s3.UsePathStyle
		}
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
