// Package certs loads extra CA certificates trusted when talking to the
// backend.
package certs

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrNoCertificate is returned for a file without a CERTIFICATE block.
var ErrNoCertificate = errors.New("no certificate PEM block")

// CertManager manages the certificate files in a directory.
type CertManager struct {
	certDir string
	log     zerolog.Logger
	now     func() time.Time
}

// NewCertManager creates a new CertManager for the given directory.
func NewCertManager(certDir string, log zerolog.Logger) *CertManager {
	return &CertManager{certDir: certDir, log: log, now: time.Now}
}

// LoadCertificates loads every certificate found in .crt and .pem files
// under the cert directory. A missing directory yields no certificates.
func (cm *CertManager) LoadCertificates() ([]*x509.Certificate, error) {
	var certs []*x509.Certificate

	err := filepath.WalkDir(cm.certDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".crt") || strings.HasSuffix(d.Name(), ".pem") {
			found, err := loadCertificates(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			certs = append(certs, found...)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return certs, nil
}

// loadCertificates parses all CERTIFICATE blocks of a PEM file.
func loadCertificates(path string) ([]*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var certs []*x509.Certificate
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, err
		}
		certs = append(certs, cert)
	}
	if len(certs) == 0 {
		return nil, ErrNoCertificate
	}
	return certs, nil
}

// IsExpired checks if a certificate is expired.
func (cm *CertManager) IsExpired(cert *x509.Certificate) bool {
	return cert.NotAfter.Before(cm.now())
}

// Pool returns the system roots plus the directory's unexpired
// certificates. Expired ones are logged and skipped.
func (cm *CertManager) Pool() (*x509.CertPool, error) {
	certs, err := cm.LoadCertificates()
	if err != nil {
		return nil, err
	}
	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	for _, cert := range certs {
		if cm.IsExpired(cert) {
			cm.log.Warn().
				Str("subject", cert.Subject.String()).
				Time("not_after", cert.NotAfter).
				Msg("skipping expired CA certificate")
			continue
		}
		pool.AddCert(cert)
	}
	return pool, nil
}

// TLSConfig returns a client TLS config trusting Pool.
func (cm *CertManager) TLSConfig() (*tls.Config, error) {
	pool, err := cm.Pool()
	if err != nil {
		return nil, err
	}
	return &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}
