package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/app"
	"github.com/Skotchmaster/storefront/internal/catalog/search"
	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/schema"
	"github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/kafka"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

// openDB reads the environment and opens the configured database.
func openDB(ctx context.Context) (config.Config, *gorm.DB, error) {
	cfg := config.FromEnv()
	if err := cfg.DBOnly(); err != nil {
		return cfg, nil, err
	}

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	gdb, err := db.Open(initCtx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, gdb, nil
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	cfg := config.FromEnv()
	ctx := logging.IntoContext(cmd.Context(), logging.New(cfg.LogLevel).With("service", "storefrontctl"))
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd)
			defer stop()

			_, gdb, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close(gdb)

			if err := schema.Migrate(gdb); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func newRelayCmd() *cobra.Command {
	var follow bool

	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Publish pending outbox events to Kafka",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd)
			defer stop()

			cfg, gdb, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close(gdb)

			producer, err := kafka.NewProducer(cfg.Kafka.Brokers)
			if err != nil {
				return fmt.Errorf("KAFKA_BROKERS: %w", err)
			}
			defer producer.Close()

			relay := app.Build(cfg, gdb, nil, nil).Relay(producer)
			if follow {
				return relay.Run(ctx)
			}

			n, err := relay.Drain(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "published %d events\n", n)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep relaying until interrupted")
	return cmd
}

func newReindexCmd() *cobra.Command {
	var batch int

	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Copy every product into the search index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd)
			defer stop()

			cfg, gdb, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close(gdb)

			idx, err := search.Open(search.Config{
				URL:      cfg.Search.URL,
				User:     cfg.Search.User,
				Password: cfg.Search.Password,
				Index:    cfg.Search.Index,
			})
			if err != nil {
				return err
			}

			n, err := app.Build(cfg, gdb, idx, nil).Catalog.Reindex(ctx, batch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d products into %q\n", n, cfg.Search.Index)
			return nil
		},
	}

	cmd.Flags().IntVar(&batch, "batch", 200, "products per batch")
	return cmd
}
