package config

import (
	"crypto/tls"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"CONFIG_FILE", "HOST", "PORT", "APP_ENV", "ALLOWED_ORIGINS",
	"STORE_BACKEND", "SQLITE_PATH",
	"MONGODB_URI", "MONGODB_DATABASE", "MONGODB_COLLECTION", "MONGODB_TLS_MIN",
	"JWT_SECRET_KEY", "ADMIN_USERNAME", "ADMIN_PASSWORD_HASH",
	"OPERATION_TIMEOUT", "TOKEN_TTL", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
}

// clearEnv blanks every variable Load reads, so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", c.Addr())
	assert.True(t, c.IsDevelopment())
	assert.Equal(t, []string{"*"}, c.Server.AllowedOrigins)
	assert.Equal(t, "mongo", c.Store.Backend)
	assert.Equal(t, 5*time.Second, c.Store.OperationTimeout.Duration)
	assert.Equal(t, "mongodb://localhost:27017", c.MongoDB.ConnectionString)
	assert.Equal(t, "EmployeeDb", c.MongoDB.DatabaseName)
	assert.Equal(t, "Employees", c.MongoDB.EmployeeCollection)
	assert.Equal(t, 24*time.Hour, c.Auth.TokenTTL.Duration)
	assert.False(t, c.AuthEnabled())
	assert.Equal(t, 20.0, c.RateLimit.RequestsPerSecond)
	assert.Equal(t, 40, c.RateLimit.Burst)

	v, err := c.MinTLSVersion()
	require.NoError(t, err)
	assert.Equal(t, uint16(tls.VersionTLS12), v)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = "9090"
environment = "production"
allowed-origins = ["https://example.com"]

[store]
backend = "sqlite"
sqlite-path = "/tmp/employees.db"
operation-timeout = "250ms"

[mongodb]
database-name = "Staff"
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", c.Addr())
	assert.False(t, c.IsDevelopment())
	assert.Equal(t, []string{"https://example.com"}, c.Server.AllowedOrigins)
	assert.Equal(t, "sqlite", c.Store.Backend)
	assert.Equal(t, "/tmp/employees.db", c.Store.SQLitePath)
	assert.Equal(t, 250*time.Millisecond, c.Store.OperationTimeout.Duration)
	assert.Equal(t, "Staff", c.MongoDB.DatabaseName)
	assert.Equal(t, "Employees", c.MongoDB.EmployeeCollection, "unset keys keep their defaults")
}

func TestLoadFileFromEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[store]\nbackend = \"memory\"\n"), 0o644))
	t.Setenv("CONFIG_FILE", path)

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "memory", c.Store.Backend)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = \"9090\"\n"), 0o644))

	t.Setenv("PORT", "7070")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("MONGODB_URI", "mongodb+srv://cluster.example.net")
	t.Setenv("MONGODB_COLLECTION", "Staff")
	t.Setenv("MONGODB_TLS_MIN", "Tls13")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abc")
	t.Setenv("OPERATION_TIMEOUT", "2s")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("RATE_LIMIT_RPS", "0")
	t.Setenv("RATE_LIMIT_BURST", "5")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:7070", c.Addr())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.Server.AllowedOrigins)
	assert.Equal(t, "memory", c.Store.Backend)
	assert.Equal(t, "mongodb+srv://cluster.example.net", c.MongoDB.ConnectionString)
	assert.Equal(t, "Staff", c.MongoDB.EmployeeCollection)
	assert.True(t, c.AuthEnabled())
	assert.Equal(t, "$2a$10$abc", c.Auth.AdminPasswordHash)
	assert.Equal(t, 2*time.Second, c.Store.OperationTimeout.Duration)
	assert.Equal(t, time.Hour, c.Auth.TokenTTL.Duration)
	assert.Equal(t, 0.0, c.RateLimit.RequestsPerSecond)
	assert.Equal(t, 5, c.RateLimit.Burst)

	v, err := c.MinTLSVersion()
	require.NoError(t, err)
	assert.Equal(t, uint16(tls.VersionTLS13), v)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown backend", map[string]string{"STORE_BACKEND": "cassandra"}},
		{"bad tls version", map[string]string{"MONGODB_TLS_MIN": "2.0"}},
		{"bad timeout", map[string]string{"OPERATION_TIMEOUT": "soon"}},
		{"bad rps", map[string]string{"RATE_LIMIT_RPS": "fast"}},
		{"bad burst", map[string]string{"RATE_LIMIT_BURST": "many"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		clearEnv(t)
		_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
		assert.Error(t, err)
	})
}

func TestMinTLSVersion(t *testing.T) {
	tests := map[string]uint16{
		"1.0":   tls.VersionTLS10,
		"TLS11": tls.VersionTLS11,
		"":      tls.VersionTLS12,
		"tls12": tls.VersionTLS12,
		"1.3":   tls.VersionTLS13,
		"Tls13": tls.VersionTLS13,
	}
	for in, want := range tests {
		c := &Config{MongoDB: MongoDBConfig{TLSMinVersion: in}}
		got, err := c.MinTLSVersion()
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := (&Config{MongoDB: MongoDBConfig{TLSMinVersion: "ssl3"}}).MinTLSVersion()
	assert.Error(t, err)
}
