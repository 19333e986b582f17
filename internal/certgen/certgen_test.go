package certgen

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parsePEM(t *testing.T, data []byte) *x509.Certificate {
	t.Helper()
	block, _ := pem.Decode(data)
	require.NotNil(t, block)
	require.Equal(t, "CERTIFICATE", block.Type)
	cert, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)
	return cert
}

func TestGenerateCA(t *testing.T) {
	caCert, caKey, bundle, err := GenerateCA("Test CA")
	require.NoError(t, err)
	require.NotNil(t, caKey)

	assert.True(t, caCert.IsCA)
	assert.True(t, caCert.BasicConstraintsValid)
	assert.Equal(t, "Test CA", caCert.Subject.CommonName)
	assert.NotZero(t, caCert.KeyUsage&x509.KeyUsageCertSign)
	assert.Greater(t, caCert.NotAfter.Sub(caCert.NotBefore), 9*365*24*time.Hour)

	assert.Equal(t, caCert.Raw, parsePEM(t, bundle.CertPEM).Raw)
	keyBlock, _ := pem.Decode(bundle.KeyPEM)
	require.NotNil(t, keyBlock)
	assert.Equal(t, "EC PRIVATE KEY", keyBlock.Type)
}

func TestGenerateServerCertificate(t *testing.T) {
	caCert, caKey, _, err := GenerateCA("Test CA")
	require.NoError(t, err)

	bundle, err := GenerateServerCertificate([]string{"localhost", "127.0.0.1", "::1"}, caCert, caKey)
	require.NoError(t, err)

	cert := parsePEM(t, bundle.CertPEM)
	assert.Equal(t, "localhost", cert.Subject.CommonName)
	assert.Equal(t, []string{"localhost"}, cert.DNSNames)
	require.Len(t, cert.IPAddresses, 2)
	assert.Equal(t, []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth}, cert.ExtKeyUsage)

	pool := x509.NewCertPool()
	pool.AddCert(caCert)
	for _, host := range []string{"localhost", "127.0.0.1"} {
		_, err = cert.Verify(x509.VerifyOptions{DNSName: host, Roots: pool})
		assert.NoError(t, err, host)
	}
	_, err = cert.Verify(x509.VerifyOptions{DNSName: "example.com", Roots: pool})
	assert.Error(t, err)

	_, err = tls.X509KeyPair(bundle.CertPEM, bundle.KeyPEM)
	assert.NoError(t, err, "certificate and key must match")
}

func TestGenerateServerCertificate_NoHosts(t *testing.T) {
	caCert, caKey, _, err := GenerateCA("Test CA")
	require.NoError(t, err)

	_, err = GenerateServerCertificate(nil, caCert, caKey)
	assert.Error(t, err)
}

func TestWriteFilesAndLoadCACredentials(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "certs")
	caCert, _, bundle, err := GenerateCA("Test CA")
	require.NoError(t, err)

	certPath, keyPath := filepath.Join(dir, "ca.crt"), filepath.Join(dir, "ca.key")
	require.NoError(t, bundle.WriteFiles(certPath, keyPath))

	info, err := os.Stat(keyPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, key, err := LoadCACredentials(certPath, keyPath)
	require.NoError(t, err)
	assert.Equal(t, caCert.Raw, loaded.Raw)
	assert.NotNil(t, key)

	_, err = GenerateServerCertificate([]string{"localhost"}, loaded, key)
	assert.NoError(t, err, "loaded credentials can sign")
}

func TestLoadCACredentials_Errors(t *testing.T) {
	dir := t.TempDir()
	caCert, caKey, caBundle, err := GenerateCA("Test CA")
	require.NoError(t, err)
	leaf, err := GenerateServerCertificate([]string{"localhost"}, caCert, caKey)
	require.NoError(t, err)

	write := func(name string, data []byte) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, data, 0o600))
		return p
	}
	goodCert := write("ca.crt", caBundle.CertPEM)
	goodKey := write("ca.key", caBundle.KeyPEM)
	garbage := write("garbage", []byte("not pem"))
	leafCert := write("leaf.crt", leaf.CertPEM)
	wrongType := write("wrong.key", pem.EncodeToMemory(&pem.Block{Type: "OPENSSH PRIVATE KEY", Bytes: []byte("x")}))

	tests := []struct {
		name     string
		certPath string
		keyPath  string
	}{
		{"missing cert", filepath.Join(dir, "nope"), goodKey},
		{"missing key", goodCert, filepath.Join(dir, "nope")},
		{"cert not pem", garbage, goodKey},
		{"key not pem", goodCert, garbage},
		{"not a CA", leafCert, goodKey},
		{"unsupported key", goodCert, wrongType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := LoadCACredentials(tt.certPath, tt.keyPath)
			assert.Error(t, err)
		})
	}
}
