package cli

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/abadmin/internal/adapters/analysis"
	"github.com/emiliopalmerini/abadmin/internal/adapters/genai"
	"github.com/emiliopalmerini/abadmin/internal/adapters/otel"
	"github.com/emiliopalmerini/abadmin/internal/adapters/turso"
	"github.com/emiliopalmerini/abadmin/internal/infrastructure/config"
	"github.com/emiliopalmerini/abadmin/internal/infrastructure/database"
	"github.com/emiliopalmerini/abadmin/internal/infrastructure/logging"
	"github.com/emiliopalmerini/abadmin/internal/ports"
	"github.com/emiliopalmerini/abadmin/internal/service"
)

// AppContext holds all shared dependencies for CLI commands.
type AppContext struct {
	Config   *config.Config
	Logger   *zap.Logger
	DB       *database.Client
	Repos    *turso.Repositories
	Services *service.Services
	Metrics  ports.MetricsRecorder
}

// newApp is replaced in tests to run commands against an in-memory database.
var newApp = NewAppContext

// NewAppContext loads configuration from the environment, connects to the
// database and wires the services.
func NewAppContext(ctx context.Context) (*AppContext, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	db, err := database.New(cfg.Database.URL, cfg.Database.AuthToken)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	app, err := newAppContext(ctx, cfg, logger, db)
	if err != nil {
		_ = db.Close()
		_ = logger.Sync()
		return nil, err
	}
	return app, nil
}

// newAppContext wires repositories and services around an open database.
// Optional integrations are left nil when they are not configured.
func newAppContext(ctx context.Context, cfg *config.Config, logger *zap.Logger, db *database.Client) (*AppContext, error) {
	metrics, err := newMetrics(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	repos := turso.NewRepositories(db.DB)
	svcCfg := service.Config{
		Organizations: repos.Organizations,
		Roles:         repos.Roles,
		Members:       repos.Members,
		Invitations:   repos.Invitations,
		Tests:         repos.Tests,
		Versions:      repos.Versions,
		MetricRows:    repos.MetricRows,
		Metrics:       metrics,
		Logger:        logger,
	}

	if cfg.Analysis.URL != "" {
		client, err := analysis.NewClient(cfg.Analysis.URL, cfg.Analysis.Timeout)
		if err != nil {
			return nil, err
		}
		svcCfg.AnalysisClient = client
	} else {
		logger.Info("analysis service not configured")
	}

	if cfg.GenAI.APIKey != "" {
		generator, err := genai.NewGenerator(ctx, cfg.GenAI.APIKey, cfg.GenAI.Model)
		if err != nil {
			return nil, err
		}
		svcCfg.Generator = generator
	} else {
		logger.Info("hypothesis generation not configured")
	}

	return &AppContext{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Repos:    repos,
		Services: service.New(svcCfg),
		Metrics:  metrics,
	}, nil
}

func newMetrics(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.MetricsRecorder, error) {
	if !cfg.OTel.Enabled {
		return otel.NewNoOpRecorder(), nil
	}
	recorder, err := otel.NewRecorder(ctx, otel.Config{
		Endpoint:       cfg.OTel.Endpoint,
		Enabled:        true,
		Insecure:       cfg.OTel.Insecure,
		ServiceVersion: version,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start metrics exporter: %w", err)
	}
	logger.Info("exporting metrics", zap.String("endpoint", cfg.OTel.Endpoint))
	return recorder, nil
}

// Close releases all resources held by the AppContext.
func (a *AppContext) Close() error {
	var errs []error
	if a.Metrics != nil {
		errs = append(errs, a.Metrics.Close(context.Background()))
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	if a.Logger != nil {
		// Sync on stderr returns EINVAL on some platforms.
		_ = a.Logger.Sync()
	}
	return errors.Join(errs...)
}
