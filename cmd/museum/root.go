package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xhad/museum/pkg/catalog"
	"github.com/xhad/museum/pkg/client"
	cfgPkg "github.com/xhad/museum/pkg/config"
	"github.com/xhad/museum/pkg/logging"
	"github.com/xhad/museum/pkg/orchestrator"
)

var rootFlags struct {
	configPath string
	apiURL     string
	offline    bool
	logLevel   string
}

var rootCmd = &cobra.Command{
	Use:   "museum",
	Short: "Browse and compare museum artifacts",
	Long: "museum is a terminal client for the gallery API. Every view falls back\n" +
		"to the built-in mock catalog when the API cannot be reached.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.configPath, "config", "", "Path to config file")
	f.StringVar(&rootFlags.apiURL, "api", "", "Gallery API base URL")
	f.BoolVar(&rootFlags.offline, "offline", false, "Use the mock catalog without contacting the API")
	f.StringVar(&rootFlags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(galleryCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(hotspotsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is what every subcommand works with: the merged config, a logger and
// the orchestrator wired to the API client.
type app struct {
	config *cfgPkg.Config
	logger *zap.Logger
	client *client.Client
	orch   *orchestrator.Orchestrator
}

func loadConfig(cmd *cobra.Command) (*cfgPkg.Config, error) {
	cfg, err := cfgPkg.LoadConfig(rootFlags.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("api") {
		cfg.Client.BaseURL = rootFlags.apiURL
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = rootFlags.logLevel
	}
	return cfg, nil
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}

	cat := catalog.Default()
	if cfg.Catalog.Path != "" {
		if cat, err = catalog.Load(cfg.Catalog.Path); err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
	}

	a := &app{config: cfg, logger: logger}
	oc := orchestrator.OrchestratorConfig{Catalog: cat, Logger: logger}
	if !rootFlags.offline {
		c, err := client.NewWithConfig(client.ClientConfig{
			BaseURL:      cfg.Client.BaseURL,
			ProbeTimeout: cfg.Client.ProbeTimeout,
			Logger:       logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize API client: %w", err)
		}
		a.client = c
		oc.API = c
	}
	a.orch = orchestrator.NewWithConfig(oc)
	return a, nil
}

func (a *app) Close() {
	if a.client != nil {
		a.client.Close()
	}
	a.logger.Sync()
}
