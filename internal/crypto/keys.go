package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// KeySize is the length in bytes of master and derived keys.
const KeySize = 32

// ErrInvalidKeyLength is returned when the provided key length is invalid.
var ErrInvalidKeyLength = errors.New("invalid key length")

// ErrKeyExists is returned by WriteKeyFile when it refuses to overwrite a key.
var ErrKeyExists = errors.New("key file already exists")

// GenerateKey returns KeySize random bytes.
func GenerateKey() ([]byte, error) {
	return generateRandomBytes(KeySize)
}

// ParseHexKey decodes a hex master key (64 chars -> 32 bytes).
func ParseHexKey(s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("master key hex decode error: %w", err)
	}
	if len(b) != KeySize {
		return nil, fmt.Errorf("master key must be %d bytes (hex %d chars): %w", KeySize, KeySize*2, ErrInvalidKeyLength)
	}
	return b, nil
}

// LoadKeyFile reads a hex master key from path.
func LoadKeyFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseHexKey(string(data))
}

// WriteKeyFile writes key as hex to path with owner-only permissions.
// Existing files are kept unless force is set.
func WriteKeyFile(path string, key []byte, force bool) error {
	if len(key) != KeySize {
		return ErrInvalidKeyLength
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %w", path, ErrKeyExists)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(hex.EncodeToString(key)+"\n"), 0600)
}

// LoadOrCreateKeyFile returns the key stored at path, creating one first
// when the file does not exist.
func LoadOrCreateKeyFile(path string) ([]byte, error) {
	key, err := LoadKeyFile(path)
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	key, err = GenerateKey()
	if err != nil {
		return nil, err
	}
	if err := WriteKeyFile(path, key, false); err != nil {
		return nil, err
	}
	return key, nil
}

// DeriveSessionKey binds master to a device using HKDF-SHA256, so a copied
// session file does not open on another machine.
func DeriveSessionKey(master []byte, deviceFP string) ([]byte, error) {
	if len(master) != KeySize {
		return nil, ErrInvalidKeyLength
	}
	h := hkdf.New(sha256.New, master, []byte(deviceFP), []byte("chirp-session"))
	out := make([]byte, KeySize)
	if _, err := io.ReadFull(h, out); err != nil {
		return nil, err
	}
	return out, nil
}

// generateRandomBytes generates a slice of random bytes of the given length.
func generateRandomBytes(length int) ([]byte, error) {
	bytes := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, bytes); err != nil {
		return nil, err
	}
	return bytes, nil
}
