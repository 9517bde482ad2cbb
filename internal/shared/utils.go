// Package shared provides small helpers used by both binaries: random hex
// identifiers and wiping secrets from memory.
package shared

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
)

// MakeRandHexString returns size random bytes encoded as hex, so the result
// is twice as long as size.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WipeByteArray zeroes b in place. Used for access tokens read from the
// terminal. A nil slice is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// DeviceInfo identifies this client installation in cache metadata as
// "<hostname>/<random suffix>".
func DeviceInfo() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	suffix, err := MakeRandHexString(4)
	if err != nil {
		return host
	}
	return fmt.Sprintf("%s/%s", host, suffix)
}
