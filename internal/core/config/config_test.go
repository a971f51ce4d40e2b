package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestParseDefaultsAndFile(t *testing.T) {
	p := writeYAML(t, `
app:
  http:
    port: 9090
jwt:
  secret: file-secret
order:
  transactional: false
`)
	c, err := Parse(p)
	require.NoError(t, err)

	assert.Equal(t, 9090, c.App.HTTP.Port)
	assert.Equal(t, "/api/v1", c.App.APIPrefix)
	assert.Equal(t, "file-secret", c.JWT.Secret)
	assert.False(t, c.Order.Transactional)
	assert.Equal(t, "Pending", c.Order.DefaultStatus)
	assert.Equal(t, 10, c.Upload.MaxGallery)
	assert.Equal(t, "http://127.0.0.1:9090/public/uploads", c.Upload.PublicBaseURL)
}

func TestParseEnvOverride(t *testing.T) {
	p := writeYAML(t, "jwt:\n  secret: file-secret\n")
	t.Setenv("APP_JWT_SECRET", "env-secret")
	t.Setenv("APP_UPLOAD_PUBLICBASEURL", "https://cdn.example.com/uploads/")

	c, err := Parse(p)
	require.NoError(t, err)
	assert.Equal(t, "env-secret", c.JWT.Secret)
	assert.Equal(t, "https://cdn.example.com/uploads", c.Upload.PublicBaseURL)
}

func TestParseRequiresSecret(t *testing.T) {
	p := writeYAML(t, "app:\n  name: shop\n")
	_, err := Parse(p)
	assert.ErrorContains(t, err, "jwt.secret")
}

func TestParseMissingFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
