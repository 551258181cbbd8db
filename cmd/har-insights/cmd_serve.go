package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cnharrison/har-insights/internal/analyzer"
	"github.com/cnharrison/har-insights/internal/api"
	"github.com/cnharrison/har-insights/internal/config"
	"github.com/cnharrison/har-insights/internal/insights"
	"github.com/cnharrison/har-insights/internal/jobs"
	"github.com/cnharrison/har-insights/internal/observability"
	"github.com/cnharrison/har-insights/internal/store"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the analysis HTTP service",
		Long: `Run the analysis HTTP service.

HAR files are uploaded to POST /v1/analyses?persona=<developer|qa|business>,
analyzed by a pool of workers and kept for the configured TTL. Results are
served from GET /v1/analyses/{id}, with live status updates over
GET /v1/analyses/{id}/ws. Prometheus metrics are exposed on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			// Flags win over the config file
			level, format := cfg.LogLevel, cfg.LogFormat
			if cmd.Flags().Changed("log-level") {
				level = root.logLevel
			}
			if cmd.Flags().Changed("log-format") {
				format = root.logFormat
			}
			logger := observability.NewLoggerTo(cmd.ErrOrStderr(), level, format)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, logger, cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	return cmd
}

func runServe(ctx context.Context, logger zerolog.Logger, cfg config.Config) error {
	st, err := store.Open(store.Config{
		Path:     cfg.Store.Path,
		InMemory: cfg.Store.Path == "",
		TTL:      cfg.Store.TTL,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error().Err(err).Msg("store close failed")
		}
	}()

	var generator insights.Generator
	if cfg.Insights.Enabled() {
		g, err := newGenerator(cfg.Insights)
		if err != nil {
			return err
		}
		generator = g
		logger.Info().Str("model", cfg.Insights.Model).Msg("insights enabled")
	} else {
		logger.Info().Msg("no OpenAI API key configured; jobs finish without insights")
	}

	metrics := observability.NewMetrics()
	queue := jobs.New(st, jobs.Options{
		Workers:   cfg.Workers,
		QueueSize: cfg.QueueSize,
		Timeout:   cfg.AnalysisTimeout,
		Analyzer:  analyzer.New(analyzer.WithLogger(logger), analyzer.WithThresholds(cfg.Thresholds)),
		Generator: generator,
		Metrics:   metrics,
		Logger:    logger,
	})

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: api.NewRouter(api.Deps{
			Queue:          queue,
			Store:          st,
			Metrics:        metrics,
			Logger:         logger,
			MaxUploadBytes: cfg.MaxUploadBytes,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return queue.Run(gctx)
	})
	g.Go(func() error {
		st.RunGC(gctx, cfg.Store.GCInterval)
		return nil
	})
	g.Go(func() error {
		logger.Info().
			Str("addr", cfg.Addr).
			Int("workers", cfg.Workers).
			Bool("persistent", cfg.Store.Path != "").
			Msg("starting har-insights")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("server shutdown error")
			return err
		}
		return nil
	})

	err = g.Wait()
	logger.Info().Msg("har-insights stopped")
	return err
}
