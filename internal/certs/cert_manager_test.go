package certs

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCA(t *testing.T, path, name string, notAfter time.Time) *x509.Certificate {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(time.Now().UnixNano()),
		Subject:               pkix.Name{CommonName: name},
		NotBefore:             notAfter.Add(-48 * time.Hour),
		NotAfter:              notAfter,
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return cert
}

func TestLoadCertificates(t *testing.T) {
	dir := t.TempDir()
	writeCA(t, filepath.Join(dir, "a.crt"), "a", time.Now().Add(time.Hour))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o700))
	writeCA(t, filepath.Join(dir, "sub", "b.pem"), "b", time.Now().Add(time.Hour))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	certs, err := NewCertManager(dir, zerolog.Nop()).LoadCertificates()
	require.NoError(t, err)
	assert.Len(t, certs, 2)
}

func TestLoadCertificatesMissingDir(t *testing.T) {
	certs, err := NewCertManager(filepath.Join(t.TempDir(), "nope"), zerolog.Nop()).LoadCertificates()
	require.NoError(t, err)
	assert.Empty(t, certs)
}

func TestLoadCertificatesRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.pem"), []byte("not pem"), 0o600))

	_, err := NewCertManager(dir, zerolog.Nop()).LoadCertificates()
	assert.ErrorIs(t, err, ErrNoCertificate)
}

func TestPoolSkipsExpired(t *testing.T) {
	dir := t.TempDir()
	valid := writeCA(t, filepath.Join(dir, "valid.crt"), "valid", time.Now().Add(time.Hour))
	expired := writeCA(t, filepath.Join(dir, "expired.crt"), "expired", time.Now().Add(-time.Hour))

	cm := NewCertManager(dir, zerolog.Nop())
	assert.False(t, cm.IsExpired(valid))
	assert.True(t, cm.IsExpired(expired))

	pool, err := cm.Pool()
	require.NoError(t, err)

	_, err = valid.Verify(x509.VerifyOptions{Roots: pool})
	assert.NoError(t, err)
	_, err = expired.Verify(x509.VerifyOptions{Roots: pool, CurrentTime: expired.NotAfter.Add(-time.Minute)})
	assert.Error(t, err, "expired CA must not be trusted")

	cfg, err := cm.TLSConfig()
	require.NoError(t, err)
	assert.NotNil(t, cfg.RootCAs)
}
