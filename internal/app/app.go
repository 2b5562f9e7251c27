package app

import (
	"context"
	"log/slog"
	"net/http"

	"FRELookup/internal/config"
	"FRELookup/internal/domain"
	"FRELookup/internal/infrastructure/dataset"
	"FRELookup/internal/infrastructure/parser"
	"FRELookup/internal/infrastructure/scheduler"
	"FRELookup/internal/logging"
	"FRELookup/internal/resolver"
	"FRELookup/internal/usecase"
	"FRELookup/internal/web"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg         config.Config
	logger      *slog.Logger
	lookup      *usecase.Lookup
	maintenance *usecase.Maintenance
	server      *web.Server
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	loader := dataset.NewLoader(
		&http.Client{Timeout: cfg.Datasets.Timeout},
		cfg.Datasets.FilingsURL,
		cfg.Datasets.PlansURL,
		baseLogger.With("component", "dataset"),
	)
	cached := dataset.NewCached(loader, baseLogger.With("component", "dataset.cache"))

	registry := resolver.NewRegistry()
	registry.Register(resolver.NewStaticStrategy(domain.ItemCodeMap(cfg.Resolver.ItemCodes)))
	registry.Register(resolver.NewDynamicStrategy(parser.NewIndexScraper(
		&http.Client{Timeout: cfg.Resolver.Timeout},
		cfg.Resolver.ViewerBase,
		baseLogger.With("component", "resolver.index"),
	)))

	strategy, err := registry.Resolve(cfg.Resolver.Mode)
	if err != nil {
		return nil, err
	}

	sessions := usecase.NewSessions()
	lookup := usecase.NewLookup(usecase.LookupDeps{
		Source:     cached,
		Strategy:   strategy,
		Sessions:   sessions,
		Reloader:   cached,
		ViewerBase: cfg.Resolver.ViewerBase,
		Logger:     baseLogger.With("component", "lookup"),
	})

	maintenance := usecase.NewMaintenance(
		scheduler.NewTickerScheduler(cfg.Cache.RefreshInterval),
		cached,
		sessions,
		cfg.Cache.SessionIdle,
		baseLogger.With("component", "maintenance"),
	)

	return &Application{
		cfg:         cfg,
		logger:      baseLogger,
		lookup:      lookup,
		maintenance: maintenance,
		server:      web.NewServer(lookup, cfg.Cache.SessionIdle, baseLogger.With("component", "web")),
	}, nil
}

// Lookup exposes the use case to one-shot commands.
func (a *Application) Lookup() *usecase.Lookup {
	return a.lookup
}

// Run serves HTTP until ctx ends.
func (a *Application) Run(ctx context.Context) error {
	if err := a.maintenance.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := a.maintenance.Stop(context.Background()); err != nil {
			a.logger.Warn("maintenance stop", "error", err)
		}
	}()

	a.logger.Info("starting",
		"resolver", a.cfg.Resolver.Mode,
		"filings", a.cfg.Datasets.FilingsURL,
		"plans", a.cfg.Datasets.PlansURL)
	return a.server.Listen(ctx, a.cfg.Server.ListenAddr)
}
