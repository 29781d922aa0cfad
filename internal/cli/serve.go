package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/emiliopalmerini/abadmin/internal/auth"
	"github.com/emiliopalmerini/abadmin/internal/migrate"
	"github.com/emiliopalmerini/abadmin/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web dashboard",
	Long: `Start the web dashboard server. Pending migrations are applied first.

Examples:
  abadmin serve              # Listen on ABADMIN_ADDR (default :8080)
  abadmin serve --port 3000  # Listen on port 3000`,
	RunE: runServe,
}

var (
	servePort          int
	serveSkipMigration bool
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides ABADMIN_ADDR)")
	serveCmd.Flags().BoolVar(&serveSkipMigration, "skip-migrations", false, "Do not apply pending migrations on startup")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if !serveSkipMigration {
		m, err := migrate.New(app.DB.DB, app.Logger)
		if err != nil {
			return err
		}
		if _, err := m.Up(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			app.Logger.Info("shutting down", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	cfg := app.Config
	addr := cfg.Addr
	if servePort > 0 {
		addr = fmt.Sprintf(":%d", servePort)
	}

	verifier := auth.NewVerifier(auth.VerifierConfig{
		Secret:     cfg.Auth.JWTSecret,
		Audience:   cfg.Auth.Audience,
		Issuer:     cfg.Auth.Issuer,
		SuperAdmin: cfg.Auth.IsSuperAdmin,
	})
	authn := auth.NewAuthenticator(verifier, cfg.Auth.CookieName, cfg.Auth.LoginURL, app.Logger)

	server := web.NewServer(web.Options{
		Addr:            addr,
		ShutdownTimeout: cfg.ShutdownTimeout,
		BaseURL:         cfg.BaseURL,
		Services:        app.Services,
		Authenticator:   authn,
		Metrics:         app.Metrics,
		Logger:          app.Logger,
	})
	return server.Start(ctx)
}
