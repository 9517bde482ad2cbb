package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestParseJSON(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, map[string]any{
		"endpoint_addr_grpc":             "www.example:9000",
		"database_dsn":                   "postgres://json",
		"secret_key":                     "my_secret_key",
		"access_token_validity_duration": "1h",
		"debug":                          true,
	})

	t.Run("loads from json and keeps unset fields", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", path}
		var c Config
		c.LoadDefaults()
		parseJSON(&c)

		assert.Equal(t, "www.example:9000", c.EndpointAddrGRPC)
		assert.Equal(t, ":8080", c.OpsAddr)
		assert.Equal(t, "postgres://json", c.DatabaseDSN)
		assert.Equal(t, "my_secret_key", c.SecretKey)
		assert.Equal(t, time.Hour, c.AccessTokenValidityDuration)
		assert.True(t, c.Debug)
	})

	t.Run("no flag leaves config untouched", func(t *testing.T) {
		os.Args = []string{"testbin"}
		var c Config
		c.LoadDefaults()
		parseJSON(&c)
		assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(t.TempDir(), "none.json")}
		assert.Panics(t, func() { parseJSON(&Config{}) })
	})

	t.Run("invalid json panics", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
		os.Args = []string{"testbin", "-c", bad}
		assert.Panics(t, func() { parseJSON(&Config{}) })
	})
}
