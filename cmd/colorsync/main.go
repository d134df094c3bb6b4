// Package main provides the CLI entry point for colorsync.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/ukaji3/colorsync-go/internal/config"
	"github.com/ukaji3/colorsync-go/internal/logging"
	"github.com/ukaji3/colorsync-go/pkg/colorsync"
	"github.com/ukaji3/colorsync-go/pkg/colorsync/exchange"
	"github.com/ukaji3/colorsync-go/pkg/colorsync/output"
	"github.com/ukaji3/colorsync-go/pkg/colorsync/store"
)

var (
	envFile     string
	dbPath      string
	logLevel    string
	logFormat   string
	metricsFile string
	pretty      bool
)

// app carries the state shared by all commands once configuration is loaded.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	store    *store.Store
}

var current app

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// PersistentPostRunE does not run after a failed command.
		_ = teardown()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "colorsync",
		Short: "Synchronize color analysis results between worksheets, the database and Plot_3D files",
		Long: `colorsync keeps cluster assignments, ΔE values, centroids and plot
properties of sampled color points consistent between a worksheet snapshot,
the SQLite record store and rigid-layout Plot_3D exchange documents.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return teardown()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&envFile, "env-file", "", "Load environment variables from this file (default: .env when present)")
	pf.StringVar(&dbPath, "db", "", "SQLite database path (overrides COLORSYNC_DB)")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&logFormat, "log-format", "", "Log format: text, json")
	pf.StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile after the command")
	pf.BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")

	rootCmd.AddCommand(
		newInitCmd(),
		newSetsCmd(),
		newInfoCmd(),
		newTemplateCmd(),
		newSaveCmd(),
		newRefreshCmd(),
		newImportCmd(),
		newExportCmd(),
		newWatchCmd(),
		newCentroidCmd(),
		newDeleteCmd(),
	)
	return rootCmd
}

func setup(cmd *cobra.Command, args []string) error {
	lookup := config.Lookup(os.LookupEnv)
	if envFile != "" {
		vars, err := godotenv.Read(envFile)
		if err != nil {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
		lookup = config.Overlay(vars, lookup)
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	if current.store != nil {
		_ = current.store.Close()
	}
	cfg, err := config.LoadFrom(lookup)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.Store.Path = dbPath
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = logFormat
	}
	if flags.Changed("metrics-file") {
		cfg.Metrics.Textfile = metricsFile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	current = app{
		cfg:      cfg,
		logger:   logging.Setup(cfg.Logging.Level, cfg.Logging.Format),
		registry: prometheus.NewRegistry(),
	}
	current.logger.Debug("configuration loaded", "config", cfg.String())
	return nil
}

func teardown() error {
	var errs []error
	if current.store != nil {
		errs = append(errs, current.store.Close())
		current.store = nil
	}
	if current.cfg != nil && current.cfg.Metrics.Textfile != "" {
		if err := prometheus.WriteToTextfile(current.cfg.Metrics.Textfile, current.registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	return errors.Join(errs...)
}

// openStore opens the configured record store once per command.
func openStore(ctx context.Context) (*store.Store, error) {
	if current.store != nil {
		return current.store, nil
	}
	opts := store.DefaultOptions()
	opts.RetryDelay = current.cfg.Store.RetryDelay
	opts.Logger = current.logger
	st, err := store.Open(ctx, current.cfg.Store.Path, opts)
	if err != nil {
		return nil, err
	}
	current.store = st
	return st, nil
}

// coordinator builds a coordinator over the configured store.
func coordinator(ctx context.Context) (*colorsync.Coordinator, error) {
	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	opts := colorsync.DefaultOptions()
	opts.Logger = current.logger
	opts.Registerer = current.registry
	opts.ClearEmptyCells = current.cfg.Sync.ClearEmptyCells
	opts.DefaultMarker = current.cfg.Sync.DefaultMarker
	opts.DefaultColor = current.cfg.Sync.DefaultColor
	return colorsync.New(st, exchange.NewAdapter(), opts), nil
}

func printJSON(cmd *cobra.Command, v any) error {
	return output.Write(cmd.OutOrStdout(), v, pretty)
}
