// Package commands implements the noticeboard subcommands.
package commands

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/noticeboard/internal/config"
	"github.com/leapstack-labs/noticeboard/pkg/store"
	"github.com/spf13/cobra"
)

type configKey struct{}

type loggerKey struct{}

// WithRuntime stores the loaded configuration and logger in ctx.
func WithRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) context.Context {
	ctx = context.WithValue(ctx, configKey{}, cfg)
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) (*config.Config, error) {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c, nil
	}
	return nil, fmt.Errorf("configuration not loaded")
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg     *config.Config
	Logger  *slog.Logger
	DB      *sql.DB
	Dialect store.Dialect
}

// NewCommandContext opens the configured database.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg, err := GetConfig(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	logger := GetLogger(cmd.Context())

	dialect, err := store.ParseDialect(cfg.Database.Dialect)
	if err != nil {
		return nil, nil, err
	}

	db, err := store.Open(cmd.Context(), store.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DataSourceName(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	cleanup := func() {
		_ = db.Close()
	}
	return &CommandContext{Cfg: cfg, Logger: logger, DB: db, Dialect: dialect}, cleanup, nil
}
