// Package config centralizes how CineBook reads its settings and exposes them
// as strongly typed Go values. Sources are layered: built-in defaults, an
// optional YAML file, then CINEBOOK_* environment variables (a .env file in
// the working directory is loaded into the environment first).
package config

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config represents runtime configuration shared by the web front end and
// the CLI.
type Config struct {
	APIURL         string        `koanf:"api_url"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
	Address        string        `koanf:"address"`
	MaxUploadBytes int64         `koanf:"max_upload_bytes"`
	PreviewWorkers int           `koanf:"preview_workers"`
	SessionSecret  string        `koanf:"session_secret"`
	SessionTTL     time.Duration `koanf:"session_ttl"`
	BlobBackend    string        `koanf:"blob_backend"`
	S3             S3            `koanf:"s3"`
	LogLevel       string        `koanf:"log_level"`
	LogFormat      string        `koanf:"log_format"`

	// InlinePreviewBytes caps the size of images previewed as data URLs.
	// Larger images and all videos are streamed from the media route.
	InlinePreviewBytes int64 `koanf:"inline_preview_bytes"`

	// SessionKey is the HMAC key derived from SessionSecret, random when no
	// secret is configured.
	SessionKey []byte `koanf:"-"`
	// Source is the YAML file that was loaded, empty when none.
	Source string `koanf:"-"`
}

// S3 configures the S3-compatible blob store.
type S3 struct {
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	UseSSL    bool   `koanf:"use_ssl"`
	Region    string `koanf:"region"`
	Bucket    string `koanf:"bucket"`
}

const (
	BackendMemory = "memory"
	BackendS3     = "s3"

	FormatText = "text"
	FormatJSON = "json"

	// DefaultFile is read when present and no other file was named.
	DefaultFile = "cinebook.yaml"
	envPrefix   = "CINEBOOK_"
)

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		APIURL:         "http://localhost:8080/api/v1/cinemas",
		RequestTimeout: 15 * time.Second,
		Address:        ":3000",
		MaxUploadBytes: 200 << 20, // 200 MiB, trailers are large
		PreviewWorkers: 4,
		SessionTTL:     2 * time.Hour,
		BlobBackend:    BackendMemory,
		S3: S3{
			Endpoint: "localhost:9000",
			Region:   "us-east-1",
			Bucket:   "cinebook-staging",
		},
		LogLevel:  "info",
		LogFormat: FormatText,

		InlinePreviewBytes: 1 << 20,
	}
}

// Load reads configuration. path names a YAML file; when empty,
// CINEBOOK_CONFIG is consulted and then DefaultFile if it exists.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	source, err := resolvePath(path)
	if err != nil {
		return nil, err
	}
	if source != "" {
		if err := k.Load(file.Provider(source), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", source, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Source = source

	cfg.SessionKey = parseSecret(cfg.SessionSecret)
	if cfg.SessionKey == nil {
		cfg.SessionKey = randomSecret()
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return path, nil
	}
	if v := os.Getenv(envPrefix + "CONFIG"); v != "" {
		return resolvePath(v)
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return DefaultFile, nil
	}
	return "", nil
}

// envKey maps CINEBOOK_S3_ACCESS_KEY to s3.access_key and
// CINEBOOK_API_URL to api_url. Empty variables are ignored.
func envKey(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	if value == "" || key == "config" {
		return "", nil
	}
	if rest, ok := strings.CutPrefix(key, "s3_"); ok {
		key = "s3." + rest
	}
	return key, value
}

// normalize repairs out-of-range numbers with defaults and rejects values
// that cannot be repaired.
func (c *Config) normalize() error {
	def := Defaults()
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = def.RequestTimeout
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = def.MaxUploadBytes
	}
	if c.PreviewWorkers <= 0 {
		c.PreviewWorkers = def.PreviewWorkers
	}
	if c.InlinePreviewBytes <= 0 {
		c.InlinePreviewBytes = def.InlinePreviewBytes
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = def.SessionTTL
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api url %q must be an absolute http(s) URL", c.APIURL)
	}
	c.BlobBackend = strings.ToLower(c.BlobBackend)
	switch c.BlobBackend {
	case BackendMemory, BackendS3:
	default:
		return fmt.Errorf("unknown blob backend %q", c.BlobBackend)
	}
	c.LogFormat = strings.ToLower(c.LogFormat)
	switch c.LogFormat {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

func parseSecret(v string) []byte {
	if v == "" {
		return nil
	}
	return []byte(v)
}

func randomSecret() []byte {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("crypto/rand: %v", err))
	}
	return buf
}
