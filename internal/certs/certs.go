// Package certs provides a self-signed certificate for serving the API over
// HTTPS on a development machine.
package certs

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"
)

// Validity is how long a generated certificate lasts.
const Validity = 365 * 24 * time.Hour

// DefaultHosts are the names and addresses a generated certificate covers.
var DefaultHosts = []string{"localhost", "127.0.0.1", "::1"}

// FileManager keeps a certificate and key pair in a directory.
type FileManager struct {
	now      func() time.Time
	certDir  string
	certFile string
	keyFile  string
	hosts    []string
}

// NewFileManager stores qapish.crt and qapish.key under certDir. With no
// hosts, DefaultHosts are used.
func NewFileManager(certDir string, hosts ...string) *FileManager {
	if len(hosts) == 0 {
		hosts = DefaultHosts
	}
	return &FileManager{
		now:      time.Now,
		certDir:  certDir,
		certFile: filepath.Join(certDir, "qapish.crt"),
		keyFile:  filepath.Join(certDir, "qapish.key"),
		hosts:    hosts,
	}
}

// CertFile returns the path of the PEM certificate.
func (m *FileManager) CertFile() string { return m.certFile }

// TLSConfig returns a server config using the stored certificate, creating
// or replacing it when missing, expired, or not valid for every host.
func (m *FileManager) TLSConfig() (*tls.Config, error) {
	cert, err := m.GetOrCreateCertificate()
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

// GetOrCreateCertificate loads the stored certificate or generates a new one.
func (m *FileManager) GetOrCreateCertificate() (tls.Certificate, error) {
	exists, err := m.CertificateExists()
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to check certificate existence: %w", err)
	}

	if exists {
		cert, err := tls.LoadX509KeyPair(m.certFile, m.keyFile)
		if err == nil && m.verify(cert) == nil {
			return cert, nil
		}
		if err := m.remove(); err != nil {
			return tls.Certificate{}, fmt.Errorf("failed to remove stale certificate: %w", err)
		}
	}

	return m.generate()
}

// CertificateExists reports whether both files are present.
func (m *FileManager) CertificateExists() (bool, error) {
	for _, path := range []string{m.certFile, m.keyFile} {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return false, nil
			}
			return false, fmt.Errorf("failed to stat %s: %w", path, err)
		}
	}
	return true, nil
}

func (m *FileManager) generate() (tls.Certificate, error) {
	if err := os.MkdirAll(m.certDir, 0o700); err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to create certificate directory: %w", err)
	}

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to generate private key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to generate serial number: %w", err)
	}

	now := m.now()
	template := x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{Organization: []string{"qapish development"}},
		NotBefore:             now.Add(-time.Minute),
		NotAfter:              now.Add(Validity),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	for _, h := range m.hosts {
		if ip := net.ParseIP(h); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else {
			template.DNSNames = append(template.DNSNames, h)
		}
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to create certificate: %w", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(priv)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to marshal private key: %w", err)
	}

	if err := writePEM(m.certFile, "CERTIFICATE", certDER); err != nil {
		return tls.Certificate{}, err
	}
	if err := writePEM(m.keyFile, "EC PRIVATE KEY", keyDER); err != nil {
		return tls.Certificate{}, err
	}

	return tls.LoadX509KeyPair(m.certFile, m.keyFile)
}

func writePEM(path, blockType string, der []byte) error {
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	if err := pem.Encode(out, &pem.Block{Type: blockType, Bytes: der}); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return out.Close()
}

func (m *FileManager) verify(cert tls.Certificate) error {
	if len(cert.Certificate) == 0 {
		return errors.New("no certificates found")
	}

	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return fmt.Errorf("failed to parse certificate: %w", err)
	}

	now := m.now()
	if now.Before(leaf.NotBefore) {
		return errors.New("certificate not yet valid")
	}
	if now.After(leaf.NotAfter) {
		return errors.New("certificate has expired")
	}

	for _, h := range m.hosts {
		if err := leaf.VerifyHostname(h); err != nil {
			return fmt.Errorf("certificate not valid for %s: %w", h, err)
		}
	}
	return nil
}

func (m *FileManager) remove() error {
	for _, path := range []string{m.certFile, m.keyFile} {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}
	return nil
}
