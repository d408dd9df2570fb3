package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skotchmaster/storefront/internal/app"
	"github.com/Skotchmaster/storefront/internal/catalog/search"
	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/schema"
	pkgconfig "github.com/Skotchmaster/storefront/pkg/config"
	"github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/kafka"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

func main() {
	pkgconfig.LoadDotEnv()

	cfg, err := config.Load()
	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	if err != nil {
		logger.Error("config_error", "error", err)
		os.Exit(1)
	}

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DBDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		logger.Error("db_init_error", "error", err)
		os.Exit(1)
	}
	if err := schema.Migrate(gdb); err != nil {
		logger.Error("db_migrate_error", "error", err)
		os.Exit(1)
	}

	idx, err := search.Open(search.Config{
		URL:      cfg.Search.URL,
		User:     cfg.Search.User,
		Password: cfg.Search.Password,
		Index:    cfg.Search.Index,
	})
	if err != nil {
		logger.Error("search_init_error", "error", err)
		os.Exit(1)
	}

	a := app.Build(cfg, gdb, idx, nil)

	runCtx, stopRelay := context.WithCancel(logging.IntoContext(context.Background(), logger))
	relayDone := make(chan struct{})
	var producer *kafka.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafka.NewProducer(cfg.Kafka.Brokers)
		if err != nil {
			logger.Error("kafka_init_error", "error", err)
			os.Exit(1)
		}
		go func() {
			defer close(relayDone)
			if err := a.Relay(producer).Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox_relay_stopped", "error", err)
			}
		}()
	} else {
		logger.Warn("kafka_disabled", "reason", "KAFKA_BROKERS not set, outbox events stay pending")
		close(relayDone)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.Handler(logger),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		logger.Info("server_starting", "addr", srv.Addr, "search", idx.Enabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	go func() {
		<-quit
		logger.Warn("force_exit")
		os.Exit(1)
	}()

	logger.Info("shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}

	stopRelay()
	<-relayDone
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka_close_error", "error", err)
		}
	}

	if err := db.Close(gdb); err != nil {
		logger.Error("db_close_error", "error", err)
	}

	logger.Info("shutdown_complete")
}
