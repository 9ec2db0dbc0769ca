package config

import (
	"errors"
	"fmt"
	"time"
)

const minSecretLen = 16

// Validate checks that the configuration is usable for serving.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.TokenTTL < 0 {
		errs = append(errs, fmt.Errorf("server.token_ttl must not be negative"))
	}
	if c.Server.ShutdownTimeout < time.Second {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout must be at least 1s"))
	}

	switch c.Database.Driver {
	case DriverPgx, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("database.driver must be %q or %q, got %q", DriverPgx, DriverSQLite, c.Database.Driver))
	}
	switch c.Database.Dialect {
	case "cockroachdb", "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("database.dialect must be cockroachdb, postgres or sqlite, got %q", c.Database.Dialect))
	}
	if c.Database.Driver == DriverSQLite && c.Database.DSN == "" && c.Database.Name == "" {
		errs = append(errs, fmt.Errorf("database.name (the database file) is required for the sqlite driver"))
	}
	if c.Database.MaxOpenConns < 0 || c.Database.MaxIdleConns < 0 {
		errs = append(errs, fmt.Errorf("database connection limits must not be negative"))
	}

	if c.Query.DefaultLimit <= 0 {
		errs = append(errs, fmt.Errorf("query.default_limit must be positive"))
	}
	if c.Query.MaxLimit < c.Query.DefaultLimit {
		errs = append(errs, fmt.Errorf("query.max_limit (%d) must be at least query.default_limit (%d)", c.Query.MaxLimit, c.Query.DefaultLimit))
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// ValidateSecrets checks the secrets required to serve requests.
// Commands that never issue tokens, such as migrate, skip it.
func (c *Config) ValidateSecrets() error {
	var errs []error
	if len(c.Server.TokenSecret) < minSecretLen {
		errs = append(errs, fmt.Errorf("server.token_secret must be at least %d characters (set %sSERVER__TOKEN_SECRET)", minSecretLen, EnvPrefix))
	}
	if len(c.Server.SessionSecret) < minSecretLen {
		errs = append(errs, fmt.Errorf("server.session_secret must be at least %d characters (set %sSERVER__SESSION_SECRET)", minSecretLen, EnvPrefix))
	}
	return errors.Join(errs...)
}
