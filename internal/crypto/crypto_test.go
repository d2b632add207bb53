package crypto

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpen(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	blob, err := Seal(key, []byte("api-key-1"))
	require.NoError(t, err)
	assert.NotContains(t, string(blob), "api-key-1")

	plain, err := Open(key, blob)
	require.NoError(t, err)
	assert.Equal(t, "api-key-1", string(plain))
}

func TestOpenRejectsWrongKeyAndTampering(t *testing.T) {
	key, _ := GenerateKey()
	other, _ := GenerateKey()
	blob, err := Seal(key, []byte("secret"))
	require.NoError(t, err)

	_, err = Open(other, blob)
	assert.Error(t, err)

	blob[len(blob)-1] ^= 0xff
	_, err = Open(key, blob)
	assert.Error(t, err)

	_, err = Open(key, []byte{1, 2})
	assert.ErrorIs(t, err, ErrCiphertextTooShort)

	_, err = Seal([]byte("short"), []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidKeyLength)
}

func TestKeyFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "master.key")

	created, err := LoadOrCreateKeyFile(path)
	require.NoError(t, err)
	require.Len(t, created, KeySize)

	loaded, err := LoadOrCreateKeyFile(path)
	require.NoError(t, err)
	assert.Equal(t, created, loaded)

	err = WriteKeyFile(path, created, false)
	assert.ErrorIs(t, err, ErrKeyExists)
	require.NoError(t, WriteKeyFile(path, created, true))
}

func TestParseHexKey(t *testing.T) {
	_, err := ParseHexKey("zz")
	assert.Error(t, err)

	_, err = ParseHexKey("abcd")
	assert.ErrorIs(t, err, ErrInvalidKeyLength)

	key, err := ParseHexKey(strings.Repeat("ab", KeySize) + "\n")
	require.NoError(t, err)
	assert.Len(t, key, KeySize)
}

func TestDeriveSessionKeyDependsOnDevice(t *testing.T) {
	master, _ := GenerateKey()
	a, err := DeriveSessionKey(master, "device-a")
	require.NoError(t, err)
	a2, err := DeriveSessionKey(master, "device-a")
	require.NoError(t, err)
	b, err := DeriveSessionKey(master, "device-b")
	require.NoError(t, err)

	assert.Equal(t, a, a2)
	assert.NotEqual(t, a, b)

	_, err = DeriveSessionKey([]byte("short"), "device-a")
	assert.ErrorIs(t, err, ErrInvalidKeyLength)
}

func TestDeviceFingerprintNotEmpty(t *testing.T) {
	assert.NotEmpty(t, DeviceFingerprint())
}
