// Package app wires the bot together: record store, event bus, services,
// reconciler and the Discord adapter.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"

	"github.com/grammar-gang/grammar-bot/app/eventbus"
	"github.com/grammar-gang/grammar-bot/app/modules/points"
	"github.com/grammar-gang/grammar-bot/app/modules/role"
	"github.com/grammar-gang/grammar-bot/app/modules/tag"
	"github.com/grammar-gang/grammar-bot/app/reconciler"
	"github.com/grammar-gang/grammar-bot/config"
	"github.com/grammar-gang/grammar-bot/db/bundb"
	"github.com/grammar-gang/grammar-bot/discord"
	"github.com/grammar-gang/grammar-bot/internal/metrics"
)

// App owns every long-lived component and their shutdown order.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	store    *bundb.Service
	bus      eventbus.EventBus
	router   *message.Router
	bot      *discord.Bot
	registry *prometheus.Registry
}

// New builds the full object graph. Nothing is connected to Discord yet;
// Run opens the gateway once the router is consuming.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	store, err := bundb.NewService(ctx, cfg.Postgres.DSN, logger, otel.Tracer("grammar-bot/records"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize record store: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	var bus eventbus.EventBus
	if cfg.NATS.URL != "" {
		bus, err = eventbus.NewNATS(cfg.NATS.URL, logger)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to initialize NATS event bus: %w", err)
		}
		logger.Info("using NATS event bus", "url", cfg.NATS.URL)
	} else {
		bus = eventbus.NewInProcess(logger)
		logger.Info("using in-process event bus")
	}

	tagRepo := &tag.RepositoryImpl{Store: store}
	roleRepo := &role.RepositoryImpl{Store: store}
	pointsRepo := &points.RepositoryImpl{Store: store}

	ledger := points.NewLedger(pointsRepo, m, logger)

	bot, err := discord.New(cfg.Discord, bus, logger)
	if err != nil {
		store.Close()
		return nil, err
	}
	bot.BindServices(
		tag.NewService(tagRepo, logger),
		role.NewService(roleRepo, bot.Gateway(), logger),
		ledger,
	)

	mutator := role.NewMutator(bot.Gateway(), m, logger)
	recon := reconciler.New(roleRepo, pointsRepo, mutator, ledger, bot.Gateway(), m, otel.Tracer("grammar-bot/reconciler"), logger)

	router, err := NewRouter(bus, recon, logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to build event router: %w", err)
	}

	return &App{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		bus:      bus,
		router:   router,
		bot:      bot,
		registry: registry,
	}, nil
}

// Registry exposes the metrics registry for the HTTP listener.
func (a *App) Registry() *prometheus.Registry {
	return a.registry
}

// Run starts the event router, opens the Discord gateway once the router is
// consuming, and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	routerErr := make(chan error, 1)
	go func() {
		routerErr <- a.router.Run(ctx)
	}()

	select {
	case <-a.router.Running():
	case err := <-routerErr:
		return fmt.Errorf("event router stopped before startup finished: %w", err)
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := a.bot.Open(); err != nil {
		return err
	}
	a.logger.Info("bot is running")

	select {
	case <-ctx.Done():
		return nil
	case err := <-routerErr:
		return fmt.Errorf("event router stopped: %w", err)
	}
}

// Close tears the app down in reverse dependency order: gateway first so no
// new events arrive, then the router, bus and store.
func (a *App) Close() {
	if err := a.bot.Close(); err != nil {
		a.logger.Error("error closing Discord session", "error", err)
	}
	if err := a.router.Close(); err != nil {
		a.logger.Error("error closing event router", "error", err)
	}
	if closer, ok := a.bus.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			a.logger.Error("error closing event bus", "error", err)
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Error("error closing record store", "error", err)
	}
	a.logger.Info("shutdown complete")
}
