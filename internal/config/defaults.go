package config

import "time"

// Supported database drivers.
const (
	DriverPgx    = "pgx"
	DriverSQLite = "sqlite"
)

// Default configuration values.
const (
	DefaultPort            = 8080
	DefaultDatabasePort    = 26257
	DefaultDriver          = DriverPgx
	DefaultDialect         = "cockroachdb"
	DefaultDefaultLimit    = 20
	DefaultMaxLimit        = 100
	DefaultTokenTTL        = 30 * 24 * time.Hour
	DefaultShutdownTimeout = 10 * time.Second
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
)

// ConfigFileName is the name of the config file searched in the working directory.
const ConfigFileName = "noticeboard.yaml"

// ConfigFileNameAlt is the alternate name of the config file.
const ConfigFileNameAlt = "noticeboard.yml"

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "NOTICEBOARD_"

func defaults() map[string]any {
	return map[string]any{
		"server.host":                "",
		"server.port":                DefaultPort,
		"server.token_ttl":           DefaultTokenTTL.String(),
		"server.shutdown_timeout":    DefaultShutdownTimeout.String(),
		"server.secure_cookies":      false,
		"database.driver":            DefaultDriver,
		"database.host":              "localhost",
		"database.port":              DefaultDatabasePort,
		"database.name":              "noticeboard",
		"database.user":              "root",
		"database.sslmode":           "disable",
		"database.dialect":           DefaultDialect,
		"database.max_open_conns":    25,
		"database.max_idle_conns":    5,
		"database.conn_max_lifetime": (30 * time.Minute).String(),
		"query.default_limit":        DefaultDefaultLimit,
		"query.max_limit":            DefaultMaxLimit,
		"log.level":                  DefaultLogLevel,
		"log.format":                 DefaultLogFormat,
	}
}
