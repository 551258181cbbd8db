package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cnharrison/har-insights/internal/observability"
)

// rootOptions holds the flags shared by every command
type rootOptions struct {
	logLevel  string
	logFormat string
	logger    zerolog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "har-insights",
		Short: "Performance and diagnostic metrics for HAR captures",
		Long: `har-insights analyzes browser HAR captures: request timing, sizes,
status codes, caching, insecure requests and WebSocket traffic. It can print a
report, open an interactive dashboard, or run as an HTTP service.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.logger = observability.NewLoggerTo(cmd.ErrOrStderr(), opts.logLevel, opts.logFormat)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", observability.FormatConsole, "log format (console, json)")

	rootCmd.AddCommand(
		newAnalyzeCmd(opts),
		newTUICmd(opts),
		newServeCmd(opts),
	)
	return rootCmd
}
