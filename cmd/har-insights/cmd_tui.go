package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cnharrison/har-insights/internal/analyzer"
	"github.com/cnharrison/har-insights/internal/config"
	"github.com/cnharrison/har-insights/internal/observability"
	"github.com/cnharrison/har-insights/internal/ui"
)

func newTUICmd(root *rootOptions) *cobra.Command {
	var configPath, logFile string

	cmd := &cobra.Command{
		Use:   "tui <file.har>",
		Short: "Open an interactive dashboard of the metrics of a HAR file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err != nil {
				return err
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			// The dashboard owns the terminal, so logs only go to a file
			logger := zerolog.Nop()
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer f.Close()
				logger = observability.NewLoggerTo(f, root.logLevel, observability.FormatJSON)
			}

			app := ui.NewApplication(args[0], ui.Options{
				Analyzer: analyzer.New(analyzer.WithLogger(logger), analyzer.WithThresholds(cfg.Thresholds)),
				Logger:   logger,
			})
			if err := app.Run(); err != nil {
				return fmt.Errorf("running dashboard: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	cmd.Flags().StringVar(&logFile, "log-file", "", "append JSON logs to this file")
	return cmd
}
