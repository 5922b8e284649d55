package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load reads so the developer's shell cannot
// leak into the tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG", "API_URL", "REQUEST_TIMEOUT", "ADDRESS", "MAX_UPLOAD_BYTES",
		"PREVIEW_WORKERS", "SESSION_SECRET", "SESSION_TTL", "BLOB_BACKEND",
		"S3_ENDPOINT", "S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_USE_SSL",
		"S3_REGION", "S3_BUCKET", "LOG_LEVEL", "LOG_FORMAT", "INLINE_PREVIEW_BYTES",
	} {
		t.Setenv(envPrefix+key, "")
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cinebook.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	def := Defaults()
	assert.Equal(t, def.APIURL, cfg.APIURL)
	assert.Equal(t, def.RequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, def.SessionTTL, cfg.SessionTTL)
	assert.Equal(t, def.S3.Bucket, cfg.S3.Bucket)
	assert.Equal(t, BackendMemory, cfg.BlobBackend)
	assert.Equal(t, int64(1<<20), cfg.InlinePreviewBytes)
	assert.Len(t, cfg.SessionKey, 32)
	assert.Empty(t, cfg.Source)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
api_url: https://api.example.com/api/v1/cinemas/
request_timeout: 5s
preview_workers: 8
session_secret: from-file
s3:
  bucket: posters
  use_ssl: true
`)
	t.Setenv("CINEBOOK_PREVIEW_WORKERS", "2")
	t.Setenv("CINEBOOK_S3_REGION", "eu-west-1")
	t.Setenv("CINEBOOK_S3_ACCESS_KEY", "minio")
	t.Setenv("CINEBOOK_S3_USE_SSL", "false")
	t.Setenv("CINEBOOK_SESSION_TTL", "45m")
	t.Setenv("CINEBOOK_INLINE_PREVIEW_BYTES", "4096")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Source)
	assert.Equal(t, "https://api.example.com/api/v1/cinemas", cfg.APIURL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 2, cfg.PreviewWorkers)
	assert.Equal(t, "posters", cfg.S3.Bucket)
	assert.False(t, cfg.S3.UseSSL, "environment overrides the file")
	assert.Equal(t, "eu-west-1", cfg.S3.Region)
	assert.Equal(t, "minio", cfg.S3.AccessKey)
	assert.Equal(t, 45*time.Minute, cfg.SessionTTL)
	assert.Equal(t, int64(4096), cfg.InlinePreviewBytes)
	assert.Equal(t, "localhost:9000", cfg.S3.Endpoint)
	assert.Equal(t, []byte("from-file"), cfg.SessionKey)
}

func TestLoadConfigFromEnvPath(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "address: \":9999\"\n")
	t.Setenv("CINEBOOK_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Address)
}

func TestLoadRepairsAndRejects(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	t.Setenv("CINEBOOK_PREVIEW_WORKERS", "-3")
	t.Setenv("CINEBOOK_INLINE_PREVIEW_BYTES", "0")
	t.Setenv("CINEBOOK_SESSION_TTL", "-1m")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults().PreviewWorkers, cfg.PreviewWorkers)
	assert.Equal(t, Defaults().InlinePreviewBytes, cfg.InlinePreviewBytes)
	assert.Equal(t, Defaults().SessionTTL, cfg.SessionTTL)

	t.Setenv("CINEBOOK_SESSION_TTL", "not-a-duration")
	_, err = Load("")
	assert.ErrorContains(t, err, "decode config")
	t.Setenv("CINEBOOK_SESSION_TTL", "")

	t.Setenv("CINEBOOK_BLOB_BACKEND", "gcs")
	_, err = Load("")
	assert.ErrorContains(t, err, "blob backend")

	t.Setenv("CINEBOOK_BLOB_BACKEND", "S3")
	t.Setenv("CINEBOOK_API_URL", "localhost:8080")
	_, err = Load("")
	assert.ErrorContains(t, err, "api url")
}

func TestEnvKey(t *testing.T) {
	cases := map[string]string{
		"CINEBOOK_API_URL":              "api_url",
		"CINEBOOK_S3_ACCESS_KEY":        "s3.access_key",
		"CINEBOOK_S3_USE_SSL":           "s3.use_ssl",
		"CINEBOOK_INLINE_PREVIEW_BYTES": "inline_preview_bytes",
		"CINEBOOK_CONFIG":               "",
	}
	for in, want := range cases {
		key, _ := envKey(in, "x")
		assert.Equal(t, want, key, in)
	}
	key, _ := envKey("CINEBOOK_ADDRESS", "")
	assert.Empty(t, key, "empty variables are skipped")
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
