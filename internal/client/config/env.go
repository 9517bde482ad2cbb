package config

import "github.com/dmitrijs2005/gophjournal/internal/envx"

// parseEnv overlays JOURNAL_* variables.
func parseEnv(cfg *Config) {
	envx.LoadFiles()

	envx.String("JOURNAL_BACKEND", &cfg.Backend)
	envx.String("JOURNAL_SERVER_ADDR", &cfg.ServerEndpointAddr)
	envx.String("JOURNAL_TOKEN", &cfg.AccessToken)
	envx.Duration("JOURNAL_CALL_TIMEOUT", &cfg.CallTimeout)
	envx.String("JOURNAL_USER", &cfg.UserID)
	envx.String("JOURNAL_DB", &cfg.DatabasePath)
	envx.String("JOURNAL_LOG_FILE", &cfg.LogFile)
	envx.Bool("JOURNAL_DEBUG", &cfg.Debug)
	envx.Duration("JOURNAL_ONLINE_CHECK_INTERVAL", &cfg.OnlineCheckInterval)
	envx.Duration("JOURNAL_AUTO_CLEANUP_INTERVAL", &cfg.AutoCleanupInterval)
	envx.Int("JOURNAL_CHUNK_SIZE", &cfg.ChunkSize)
	envx.Duration("JOURNAL_CHUNK_WRITE_TIMEOUT", &cfg.ChunkWriteTimeout)

	envx.String("JOURNAL_S3_BUCKET", &cfg.S3.Bucket)
	envx.String("JOURNAL_S3_REGION", &cfg.S3.Region)
	envx.String("JOURNAL_S3_ENDPOINT", &cfg.S3.BaseEndpoint)
	envx.String("JOURNAL_S3_ACCESS_KEY", &cfg.S3.AccessKeyID)
	envx.String("JOURNAL_S3_SECRET_KEY", &cfg.S3.SecretAccessKey)
	envx.Bool("JOURNAL_S3_PATH_STYLE", &cfg.S3.UsePathStyle)
}
