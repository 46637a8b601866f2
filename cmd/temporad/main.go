package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tempora-io/tempora"
	"github.com/tempora-io/tempora/config"
	"github.com/tempora-io/tempora/core"
	"github.com/tempora-io/tempora/modules/attributes"
	"github.com/tempora-io/tempora/modules/publish"
	"github.com/tempora-io/tempora/modules/schedule"
	"github.com/tempora-io/tempora/modules/servers"
)

const shutdownTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "tempora.yaml", "path to the daemon configuration file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger, *configPath); err != nil {
		logger.Error("temporad exited with error", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := buildAttributeStore(ctx, cfg)
	if err != nil {
		return err
	}

	// Seed the trigger attribute when the daemon config carries a document.
	if document, err := cfg.TriggerDocument(); err != nil {
		return err
	} else if document != "" {
		if err := store.Set(ctx, core.AttributeTriggers, document); err != nil {
			return err
		}
	}

	publisher, err := publish.NewChannelPublisher(logger)
	if err != nil {
		return err
	}
	publisher.Use(publish.OTelMiddleware)
	publisher.Subscribe("log-fired-triggers", func(ctx context.Context, event core.TriggerEvent) error {
		logger.Info("trigger event received", "trigger", event.Name, "fire_time", event.FireTime)
		return nil
	})
	go func() {
		if err := publisher.Run(ctx); err != nil {
			logger.Error("publication channel stopped", "error", err)
		}
	}()

	sched, err := schedule.NewInMemorySchedule(publisher, logger)
	if err != nil {
		return err
	}
	sched.Use(
		schedule.LoggingMiddleware(logger),
		schedule.APMMiddleware(nil),
	)

	orchestrator := tempora.NewOrchestrator(sched, logger)
	module := tempora.NewModule(store, orchestrator, logger)
	if err := module.Run(ctx); err != nil {
		return err
	}

	server, err := servers.NewAdminServer(sched, servers.WithConfig(&cfg.Server))
	if err != nil {
		return err
	}
	go func() {
		if err := server.Run(); err != nil {
			logger.Error("admin server stopped", "error", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	module.Shutdown(shutdownCtx, "signal")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("admin server shutdown failed", "error", err)
	}
	return nil
}

func buildAttributeStore(ctx context.Context, cfg *config.Config) (core.Attributes, error) {
	switch cfg.Attributes.Backend {
	case "redis":
		return attributes.NewRedisStore(ctx, &cfg.Attributes.Redis)
	case "postgres":
		return attributes.NewPostgresStore(ctx, &cfg.Attributes.Postgres)
	default:
		return attributes.NewInMemoryStore(nil), nil
	}
}
