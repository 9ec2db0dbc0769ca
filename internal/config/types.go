// Package config loads noticeboard configuration from defaults, a YAML file,
// NOTICEBOARD_ environment variables and command-line flags.
package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"
)

// Config holds all configuration options.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Query    QueryConfig    `koanf:"query"`
	Log      LogConfig      `koanf:"log"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
	// SessionSecret signs the session cookie
	SessionSecret string `koanf:"session_secret"`
	// TokenSecret signs and encrypts bearer tokens
	TokenSecret     string        `koanf:"token_secret"`
	TokenTTL        time.Duration `koanf:"token_ttl"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// SecureCookies marks the session cookie Secure (HTTPS only)
	SecureCookies bool `koanf:"secure_cookies"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// DatabaseConfig configures the store connection.
type DatabaseConfig struct {
	// Driver is pgx or sqlite
	Driver string `koanf:"driver"`
	// DSN overrides the individual connection fields when set
	DSN      string `koanf:"dsn"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Name     string `koanf:"name"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	SSLMode  string `koanf:"sslmode"`
	// Dialect selects SQL variants: cockroachdb, postgres or sqlite
	Dialect         string        `koanf:"dialect"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

// DataSourceName returns the DSN for the configured driver.
func (d DatabaseConfig) DataSourceName() string {
	if d.DSN != "" {
		return expandEnvVars(d.DSN)
	}
	if d.Driver == DriverSQLite {
		return d.Name
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.Name,
	}
	if d.User != "" {
		password := expandEnvVars(d.Password)
		if password != "" {
			u.User = url.UserPassword(d.User, password)
		} else {
			u.User = url.User(d.User)
		}
	}
	if d.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {d.SSLMode}}.Encode()
	}
	return u.String()
}

// QueryConfig bounds listing pages.
type QueryConfig struct {
	DefaultLimit int `koanf:"default_limit"`
	MaxLimit     int `koanf:"max_limit"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	// Level is debug, info, warn or error
	Level string `koanf:"level"`
	// Format is text or json
	Format string `koanf:"format"`
}

func (c *Config) String() string {
	return fmt.Sprintf("server=%s driver=%s dialect=%s log=%s/%s",
		c.Server.Addr(), c.Database.Driver, c.Database.Dialect, c.Log.Level, c.Log.Format)
}
