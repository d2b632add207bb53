package crypto

import (
	"errors"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrCiphertextTooShort is returned when a sealed blob cannot hold a nonce.
var ErrCiphertextTooShort = errors.New("ciphertext too short")

// Seal encrypts plaintext with XChaCha20-Poly1305. The random nonce is
// prepended to the returned blob.
func Seal(key, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, ErrInvalidKeyLength
	}
	nonce, err := generateRandomBytes(aead.NonceSize())
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, nil), nil
}

// Open reverses Seal.
func Open(key, blob []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, ErrInvalidKeyLength
	}
	if len(blob) < aead.NonceSize() {
		return nil, ErrCiphertextTooShort
	}
	nonce, ct := blob[:aead.NonceSize()], blob[aead.NonceSize():]
	return aead.Open(nil, nonce, ct, nil)
}
