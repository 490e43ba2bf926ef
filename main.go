package main

import (
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel"

	"github.com/grammar-gang/grammar-bot/app"
	"github.com/grammar-gang/grammar-bot/config"
	"github.com/grammar-gang/grammar-bot/db/bundb"
)

func main() {
	cliApp := &cli.App{
		Name:  "grammar-bot",
		Usage: "Discord community bot: tags, reaction roles and grammar points",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: "config.yaml",
				Usage: "path to the configuration file",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "connect to Discord and serve until interrupted",
				Action: runBot,
			},
			{
				Name:   "migrate",
				Usage:  "create the records table and exit",
				Action: runMigrate,
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runBot(c *cli.Context) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	srv := newHTTPServer(cfg.Metrics.Address, application.Registry(), logger)
	go func() {
		if err := srv.start(); err != nil {
			logger.Error("metrics listener failed", "error", err)
		}
	}()
	defer srv.stop()

	return application.Run(ctx)
}

func runMigrate(c *cli.Context) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}

	store, err := bundb.NewService(c.Context, cfg.Postgres.DSN, logger, otel.Tracer("grammar-bot/records"))
	if err != nil {
		return err
	}
	defer store.Close()

	return store.Migrate(c.Context)
}
