package certs

import (
	"crypto/tls"
	"crypto/x509"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leaf(t *testing.T, cert tls.Certificate) *x509.Certificate {
	t.Helper()
	require.Len(t, cert.Certificate, 1, "should have one certificate")
	x509Cert, err := x509.ParseCertificate(cert.Certificate[0])
	require.NoError(t, err)
	return x509Cert
}

func TestFileManager_GetOrCreateCertificate(t *testing.T) {
	tests := []struct {
		setup          func(t *testing.T, certDir string)
		validateResult func(t *testing.T, cert tls.Certificate, certDir string)
		name           string
		errorContains  string
		wantErr        bool
	}{
		{
			name:  "creates new certificate when none exists",
			setup: func(_ *testing.T, _ string) {},
			validateResult: func(t *testing.T, cert tls.Certificate, _ string) {
				t.Helper()
				x509Cert := leaf(t, cert)
				assert.Equal(t, "qapish development", x509Cert.Subject.Organization[0])
				assert.Contains(t, x509Cert.DNSNames, "localhost")
				assert.True(t, x509Cert.IPAddresses[0].Equal(net.IPv4(127, 0, 0, 1)))
				assert.True(t, x509Cert.NotAfter.After(time.Now().Add(364*24*time.Hour)))
				assert.NoError(t, x509Cert.VerifyHostname("localhost"))
				assert.NoError(t, x509Cert.VerifyHostname("::1"))
			},
		},
		{
			name: "reuses existing valid certificate",
			setup: func(t *testing.T, certDir string) {
				t.Helper()
				_, err := NewFileManager(certDir).GetOrCreateCertificate()
				require.NoError(t, err)
			},
			validateResult: func(t *testing.T, cert tls.Certificate, certDir string) {
				t.Helper()
				again, err := NewFileManager(certDir).GetOrCreateCertificate()
				require.NoError(t, err)
				assert.Equal(t, leaf(t, cert).SerialNumber, leaf(t, again).SerialNumber)
			},
		},
		{
			name: "regenerates invalid certificate",
			setup: func(t *testing.T, certDir string) {
				t.Helper()
				require.NoError(t, os.MkdirAll(certDir, 0o700))
				require.NoError(t, os.WriteFile(filepath.Join(certDir, "qapish.crt"), []byte("invalid certificate data"), 0o600))
				require.NoError(t, os.WriteFile(filepath.Join(certDir, "qapish.key"), []byte("invalid key data"), 0o600))
			},
			validateResult: func(t *testing.T, cert tls.Certificate, _ string) {
				t.Helper()
				assert.True(t, leaf(t, cert).NotBefore.After(time.Now().Add(-2*time.Minute)))
			},
		},
		{
			name: "fails when the directory is a file",
			setup: func(t *testing.T, certDir string) {
				t.Helper()
				require.NoError(t, os.MkdirAll(filepath.Dir(certDir), 0o700))
				require.NoError(t, os.WriteFile(certDir, []byte("not a directory"), 0o600))
			},
			wantErr:       true,
			errorContains: "failed to",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			certDir := filepath.Join(t.TempDir(), "certs")
			tt.setup(t, certDir)

			cert, err := NewFileManager(certDir).GetOrCreateCertificate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			require.NoError(t, err)
			tt.validateResult(t, cert, certDir)
		})
	}
}

func TestFileManager_RegeneratesExpired(t *testing.T) {
	certDir := t.TempDir()
	m := NewFileManager(certDir)
	m.now = func() time.Time { return time.Now().Add(-2 * Validity) }
	old, err := m.GetOrCreateCertificate()
	require.NoError(t, err)

	fresh, err := NewFileManager(certDir).GetOrCreateCertificate()
	require.NoError(t, err)
	assert.NotEqual(t, leaf(t, old).SerialNumber, leaf(t, fresh).SerialNumber)
	assert.True(t, leaf(t, fresh).NotAfter.After(time.Now()))
}

func TestFileManager_RegeneratesForNewHosts(t *testing.T) {
	certDir := t.TempDir()
	_, err := NewFileManager(certDir).GetOrCreateCertificate()
	require.NoError(t, err)

	cert, err := NewFileManager(certDir, "qapish.local").GetOrCreateCertificate()
	require.NoError(t, err)
	assert.Equal(t, []string{"qapish.local"}, leaf(t, cert).DNSNames)
}

func TestFileManager_CertificateExists(t *testing.T) {
	certDir := t.TempDir()
	m := NewFileManager(certDir)

	exists, err := m.CertificateExists()
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, os.WriteFile(m.CertFile(), []byte("x"), 0o600))
	exists, err = m.CertificateExists()
	require.NoError(t, err)
	assert.False(t, exists, "key file still missing")

	_, err = m.GetOrCreateCertificate()
	require.NoError(t, err)
	exists, err = m.CertificateExists()
	require.NoError(t, err)
	assert.True(t, exists)

	info, err := os.Stat(filepath.Join(certDir, "qapish.key"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileManager_TLSConfig(t *testing.T) {
	cfg, err := NewFileManager(t.TempDir()).TLSConfig()
	require.NoError(t, err)
	assert.Len(t, cfg.Certificates, 1)
	assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
}
