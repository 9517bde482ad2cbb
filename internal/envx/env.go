// Package envx overlays configuration values from the process environment.
// Values from .env files are loaded first and never override variables that
// are already set.
package envx

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadFiles loads .env and .env.local from the working directory when they
// exist. Missing files are ignored.
func LoadFiles() {
	for _, name := range []string{".env", ".env.local"} {
		if _, err := os.Stat(name); err == nil {
			_ = godotenv.Load(name)
		}
	}
}

func String(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func Int(key string, dst *int) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func Bool(key string, dst *bool) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// Duration accepts Go duration strings ("5s", "24h").
func Duration(key string, dst *time.Duration) {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
