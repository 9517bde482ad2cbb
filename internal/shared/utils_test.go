package shared

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeRandHexString_LengthAndHex(t *testing.T) {
	s, err := MakeRandHexString(16)
	require.NoError(t, err)
	assert.Len(t, s, 32)
	_, err = hex.DecodeString(s)
	require.NoError(t, err)
}

func TestMakeRandHexString_ZeroSize(t *testing.T) {
	s, err := MakeRandHexString(0)
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestWipeByteArray(t *testing.T) {
	buf := []byte("secret-token")
	WipeByteArray(buf)
	assert.Equal(t, make([]byte, len(buf)), buf)

	WipeByteArray(nil)
}

func TestDeviceInfo(t *testing.T) {
	info := DeviceInfo()
	host, suffix, ok := strings.Cut(info, "/")
	require.True(t, ok, info)
	assert.NotEmpty(t, host)
	assert.Len(t, suffix, 8)
}
