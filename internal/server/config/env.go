package config

import "github.com/dmitrijs2005/gophjournal/internal/envx"

// parseEnv overlays JOURNAL_SERVER_* variables.
func parseEnv(cfg *Config) {
	envx.LoadFiles()

	envx.String("JOURNAL_SERVER_GRPC_ADDR", &cfg.EndpointAddrGRPC)
	envx.String("JOURNAL_SERVER_OPS_ADDR", &cfg.OpsAddr)
	envx.String("JOURNAL_SERVER_DSN", &cfg.DatabaseDSN)
	envx.String("JOURNAL_SERVER_SECRET", &cfg.SecretKey)
	envx.Duration("JOURNAL_SERVER_TOKEN_TTL", &cfg.AccessTokenValidityDuration)
	envx.Bool("JOURNAL_SERVER_DEBUG", &cfg.Debug)
}
