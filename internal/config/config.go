// Package config loads the service settings: built-in defaults, an optional TOML
// file, a .env file, then environment variables, in that order of precedence.
package config

import (
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const defaultConfig = `
# Service configuration.

[server]
host = "0.0.0.0"
port = "8080"
# development enables the swagger UI
environment = "development"
allowed-origins = ["*"]

[store]
# mongo, sqlite or memory
backend = "mongo"
sqlite-path = "./employees.db"
operation-timeout = "5s"

[mongodb]
connection-string = "mongodb://localhost:27017"
database-name = "EmployeeDb"
employee-collection = "Employees"
# minimum TLS version used when the connection string enables TLS
tls-min-version = "1.2"

[auth]
# auth on database operations is enabled only when jwt-secret is set
jwt-secret = ""
token-ttl = "24h"
admin-username = "admin"
admin-password-hash = ""

[rate-limit]
requests-per-second = 20.0
burst = 40
`

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Store     StoreConfig     `toml:"store"`
	MongoDB   MongoDBConfig   `toml:"mongodb"`
	Auth      AuthConfig      `toml:"auth"`
	RateLimit RateLimitConfig `toml:"rate-limit"`
}

type ServerConfig struct {
	Host           string   `toml:"host"`
	Port           string   `toml:"port"`
	Environment    string   `toml:"environment"`
	AllowedOrigins []string `toml:"allowed-origins"`
}

type StoreConfig struct {
	Backend          string   `toml:"backend"`
	SQLitePath       string   `toml:"sqlite-path"`
	OperationTimeout Duration `toml:"operation-timeout"`
}

type MongoDBConfig struct {
	ConnectionString   string `toml:"connection-string"`
	DatabaseName       string `toml:"database-name"`
	EmployeeCollection string `toml:"employee-collection"`
	TLSMinVersion      string `toml:"tls-min-version"`
}

type AuthConfig struct {
	JWTSecret         string   `toml:"jwt-secret"`
	TokenTTL          Duration `toml:"token-ttl"`
	AdminUsername     string   `toml:"admin-username"`
	AdminPasswordHash string   `toml:"admin-password-hash"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `toml:"requests-per-second"`
	Burst             int     `toml:"burst"`
}

// Duration decodes TOML strings such as "5s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Load builds the configuration. path may be empty; CONFIG_FILE is used then.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config.Load(): ignoring .env: %v", err)
	}

	c := new(Config)
	if _, err := toml.Decode(defaultConfig, c); err != nil {
		return nil, fmt.Errorf("decode default config: %w", err)
	}

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, c); err != nil {
			return nil, fmt.Errorf("decode config file %s: %w", path, err)
		}
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Host, "HOST")
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.Environment, "APP_ENV")
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}

	setString(&c.Store.Backend, "STORE_BACKEND")
	setString(&c.Store.SQLitePath, "SQLITE_PATH")

	setString(&c.MongoDB.ConnectionString, "MONGODB_URI")
	setString(&c.MongoDB.DatabaseName, "MONGODB_DATABASE")
	setString(&c.MongoDB.EmployeeCollection, "MONGODB_COLLECTION")
	setString(&c.MongoDB.TLSMinVersion, "MONGODB_TLS_MIN")

	setString(&c.Auth.JWTSecret, "JWT_SECRET_KEY")
	setString(&c.Auth.AdminUsername, "ADMIN_USERNAME")
	setString(&c.Auth.AdminPasswordHash, "ADMIN_PASSWORD_HASH")

	for key, d := range map[string]*Duration{
		"OPERATION_TIMEOUT": &c.Store.OperationTimeout,
		"TOKEN_TTL":         &c.Auth.TokenTTL,
	} {
		if v := os.Getenv(key); v != "" {
			if err := d.UnmarshalText([]byte(v)); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
		}
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		c.RateLimit.RequestsPerSecond = rps
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_BURST: %w", err)
		}
		c.RateLimit.Burst = burst
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case "mongo":
		if c.MongoDB.ConnectionString == "" {
			return errors.New("mongodb connection-string is required")
		}
	case "sqlite":
		if c.Store.SQLitePath == "" {
			return errors.New("store sqlite-path is required")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.MongoDB.DatabaseName == "" || c.MongoDB.EmployeeCollection == "" {
		return errors.New("mongodb database-name and employee-collection are required")
	}
	if _, err := c.MinTLSVersion(); err != nil {
		return err
	}
	if c.Auth.JWTSecret != "" && c.Auth.AdminPasswordHash == "" {
		log.Println("Warning: JWT_SECRET_KEY is set but ADMIN_PASSWORD_HASH is not. Nobody can log in.")
	}
	return nil
}

// MinTLSVersion converts the configured version ("1.2", "TLS12", "Tls13") to its
// crypto/tls constant.
func (c *Config) MinTLSVersion() (uint16, error) {
	v := strings.ToLower(strings.TrimSpace(c.MongoDB.TLSMinVersion))
	v = strings.TrimPrefix(v, "tls")
	v = strings.TrimPrefix(v, "v")
	switch v {
	case "1.0", "10":
		return tls.VersionTLS10, nil
	case "1.1", "11":
		return tls.VersionTLS11, nil
	case "1.2", "12", "":
		return tls.VersionTLS12, nil
	case "1.3", "13":
		return tls.VersionTLS13, nil
	}
	return 0, fmt.Errorf("unsupported tls-min-version %q", c.MongoDB.TLSMinVersion)
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Server.Environment, "development")
}

func (c *Config) AuthEnabled() bool {
	return c.Auth.JWTSecret != ""
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
