package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithDefaults_MissingFile(t *testing.T) {
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, "futures-bot", cfg.ServiceName)
	assert.Equal(t, 5000, cfg.HTTP.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "https://testnet.binancefuture.com", cfg.Exchange.BaseURL)
	assert.Equal(t, 5000, cfg.Exchange.RecvWindow)
	assert.False(t, cfg.Exchange.ClientOrderIDs)
	assert.Equal(t, "file", cfg.Metadata.Snapshot)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
service_name = "futures-custom"

[http]
port = 8080

[kafka]
brokers = ["localhost:9092"]

[metadata]
snapshot = "redis"
redis_key = "custom:info"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "futures-custom", cfg.ServiceName)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "redis", cfg.Metadata.Snapshot)
	assert.Equal(t, "custom:info", cfg.Metadata.RedisKey)
	assert.Equal(t, "127.0.0.1", cfg.HTTP.Host)
}

func TestLoad_CredentialsFromEnv(t *testing.T) {
	t.Setenv("BINANCE_API_KEY", "key-from-env")
	t.Setenv("BINANCE_API_SECRET", "secret-from-env")

	cfg, err := LoadWithDefaults("")
	require.NoError(t, err)
	assert.Equal(t, "key-from-env", cfg.Exchange.APIKey)
	assert.True(t, cfg.Exchange.HasCredentials())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			ServiceName: "svc",
			HTTP:        HTTPConfig{Port: 5000},
			Database:    DatabaseConfig{Driver: "sqlite"},
			Exchange:    ExchangeConfig{BaseURL: "https://example.com"},
			Metadata:    MetadataConfig{Snapshot: "file", Path: "info.json"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"ok", func(*Config) {}, ""},
		{"missing service", func(c *Config) { c.ServiceName = "" }, "service_name is required"},
		{"bad port", func(c *Config) { c.HTTP.Port = 70000 }, "invalid HTTP port"},
		{"mysql without dsn", func(c *Config) { c.Database.Driver = "mysql" }, "database DSN is required"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }, "unsupported database driver"},
		{"missing base url", func(c *Config) { c.Exchange.BaseURL = "" }, "base_url is required"},
		{"file without path", func(c *Config) { c.Metadata.Path = "" }, "metadata path is required"},
		{"redis without host", func(c *Config) { c.Metadata.Snapshot = "redis" }, "redis host is required"},
		{"unknown snapshot", func(c *Config) { c.Metadata.Snapshot = "s3" }, "unsupported metadata snapshot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
