// Command museum-admin runs the admin console API for bilingual artifact
// records.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/xhad/museum/internal/types"
	cfgPkg "github.com/xhad/museum/pkg/config"
	"github.com/xhad/museum/pkg/logging"
	"github.com/xhad/museum/pkg/store"
	"github.com/xhad/museum/server"
)

func main() {
	config, err := parseFlags()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(config.Logging)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config, logger); err != nil {
		logger.Fatal("admin server stopped", zap.Error(err))
	}
}

func parseFlags() (*cfgPkg.Config, error) {
	var configPath, addr, dbURL, logLevel string

	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&addr, "addr", "", "Listen address")
	flag.StringVar(&dbURL, "db-url", "", "PostgreSQL connection string (in-memory store when empty)")
	flag.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.Parse()

	cfg, err := cfgPkg.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Server.AdminAddr = addr
		case "db-url":
			cfg.Database.URL = dbURL
		case "log-level":
			cfg.Logging.Level = logLevel
		}
	})

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errs[0])
	}
	return cfg, nil
}

func run(ctx context.Context, config *cfgPkg.Config, logger *zap.Logger) error {
	var adminStore types.AdminStore = store.NewMemoryAdminStore()
	if config.Database.URL != "" {
		pg, err := store.NewAdminStoreWithConfig(ctx, store.AdminStoreConfig{
			ConnString: config.Database.URL,
			TableName:  config.Database.AdminTable,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize admin store: %w", err)
		}
		adminStore = pg
	} else {
		logger.Warn("no database configured, admin records are kept in memory")
	}
	defer adminStore.Close()

	srv, err := server.NewAdminServer(server.AdminConfig{
		Store:          adminStore,
		AllowedOrigins: config.Server.AllowedOrigins,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize admin server: %w", err)
	}
	return srv.ListenAndServe(ctx, config.Server.AdminAddr)
}
