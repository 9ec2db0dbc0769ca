package commands

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/noticeboard/internal/action"
	"github.com/leapstack-labs/noticeboard/internal/authz"
	"github.com/leapstack-labs/noticeboard/internal/config"
	"github.com/leapstack-labs/noticeboard/internal/domain"
	"github.com/leapstack-labs/noticeboard/pkg/store"
)

// App is the wired request pipeline: store, domain service and dispatcher.
type App struct {
	Store      *store.Store
	Tokens     *authz.Tokens
	Registry   *action.Registry
	Dispatcher *action.Dispatcher
}

// NewApp wires the application over db.
func NewApp(db store.DBTX, dialect store.Dialect, cfg *config.Config, logger *slog.Logger) (*App, error) {
	tokens, err := authz.NewTokens(cfg.Server.TokenSecret, cfg.Server.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create token issuer: %w", err)
	}

	st := store.New(db, store.Options{Dialect: dialect, Logger: logger})
	svc, err := domain.New(domain.Config{
		Store:  st,
		Tokens: tokens,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	registry, err := svc.Register()
	if err != nil {
		return nil, err
	}

	return &App{
		Store:      st,
		Tokens:     tokens,
		Registry:   registry,
		Dispatcher: action.NewDispatcher(registry, logger),
	}, nil
}

// Settings returns the per-request settings derived from cfg.
func Settings(cfg *config.Config) action.Settings {
	return action.Settings{
		DefaultLimit: cfg.Query.DefaultLimit,
		MaxLimit:     cfg.Query.MaxLimit,
	}
}
