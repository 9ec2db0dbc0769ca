package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/leapstack-labs/noticeboard/internal/server"
	"github.com/leapstack-labs/noticeboard/pkg/store"
	"github.com/spf13/cobra"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Migrate bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API server.

Every action is available at POST /api/{action} and POST /api/{action}/{id}
with a JSON object body, or as GET with query parameters. Callers authenticate
with an "Authorization: Bearer <token>" header or the session cookie set by
user_signup and user_login.`,
		Example: `  # Serve on the configured port
  noticeboard serve

  # Serve on a custom port, applying pending migrations first
  noticeboard serve --port 9000 --migrate`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().Int("port", 0, "Port to serve on (default: 8080)")
	cmd.Flags().String("host", "", "Interface to listen on (default: all)")
	cmd.Flags().BoolVar(&opts.Migrate, "migrate", false, "Apply pending migrations before serving")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := cmdCtx.Cfg
	if err := cfg.ValidateSecrets(); err != nil {
		return err
	}

	if opts.Migrate {
		if err := store.Migrate(cmdCtx.DB, cmdCtx.Dialect); err != nil {
			return err
		}
	}

	app, err := NewApp(cmdCtx.DB, cmdCtx.Dialect, cfg, cmdCtx.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = app.Store.Close() }()

	srv := server.NewServer(server.Config{
		Dispatcher:      app.Dispatcher,
		Tokens:          app.Tokens,
		Settings:        Settings(cfg),
		Addr:            cfg.Server.Addr(),
		SessionSecret:   cfg.Server.SessionSecret,
		SessionMaxAge:   cfg.Server.TokenTTL,
		SecureCookies:   cfg.Server.SecureCookies,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Logger:          cmdCtx.Logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Serving %d actions on %s\n", len(app.Registry.Actions()), cfg.Server.Addr())
	return srv.Serve(ctx)
}

