package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"domainadmin/internal/config"
	"domainadmin/internal/logger"
	"domainadmin/internal/metrics"
)

var (
	cfgFile     string
	logLevel    string
	metricsAddr string

	// cfg is the effective configuration, loaded before any subcommand runs.
	cfg *config.Config
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "domainadmin",
	Short: "Import domain lists and check the certificates they serve",
	Long: `domainadmin reads domain lists (plain text or CSV exports), normalizes every
entry into host, port and registrable domain, and checks whether the TLS
certificate an endpoint presents actually covers its hostname.`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default "+config.DefaultPath()+")")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	RootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
}

func setup(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}

	loaded, err := config.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg = loaded

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if metricsAddr != "" {
		cfg.Metrics.Address = metricsAddr
	}

	logger.Init(logger.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	metrics.StartServer(cfg.Metrics.Address)
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return metrics.Shutdown(ctx)
}

func GetRootCmd() *cobra.Command {
	return RootCmd
}
