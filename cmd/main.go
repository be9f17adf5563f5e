package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"interpol-harvester/internal/config"
	"interpol-harvester/internal/harvest"
	"interpol-harvester/internal/interpol"
	"interpol-harvester/internal/logging"
	"interpol-harvester/internal/metrics"
	"interpol-harvester/internal/sink"
)

// Version is set at build time via -ldflags "-X main.Version=..."
var Version = "dev"

type app struct {
	cfgPath  string
	logLevel string
	cfg      config.Config
}

func (a *app) harvester(sinks ...sink.Sink) *harvest.Harvester {
	return harvest.New(a.cfg, interpol.NewClient(a.cfg.API), sinks...)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a := &app{}
	root := &cobra.Command{
		Use:     "harvester",
		Short:   "Harvest publicly listed notices from the INTERPOL web API",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if a.logLevel != "" {
				cfg.Log.Level = a.logLevel
			}
			a.cfg = cfg
			logging.Setup(cfg.Log.Level, cfg.Log.File)

			if cfg.Metrics.Listen != "" {
				go func() {
					if err := metrics.Serve(cmd.Context(), cfg.Metrics.Listen); err != nil {
						slog.Warn("metrics listener stopped", "error", err)
					}
				}()
			}
			return nil
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "config.yml", "path to YAML config")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log level (debug|info|warn|error)")

	root.AddCommand(
		redCommand(a),
		yellowCommand(a),
		countriesCommand(a),
		verifyCommand(a),
		retryCommand(a),
	)

	if err := root.ExecuteContext(ctx); err != nil {
		slog.Error("harvester failed", "error", err)
		os.Exit(1)
	}
}
