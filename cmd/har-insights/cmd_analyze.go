package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cnharrison/har-insights/internal/analyzer"
	"github.com/cnharrison/har-insights/internal/config"
	"github.com/cnharrison/har-insights/internal/export"
	"github.com/cnharrison/har-insights/internal/filter"
	"github.com/cnharrison/har-insights/internal/har"
	"github.com/cnharrison/har-insights/internal/insights"
)

// Output formats of the analyze command
const (
	formatJSON     = "json"
	formatMarkdown = "markdown"
)

type analyzeOptions struct {
	format       string
	persona      string
	host         string
	resourceType string
	errorsOnly   bool
	output       string
	configPath   string
	thresholds   analyzer.Thresholds

	// generator overrides the configured insight backend
	generator insights.Generator
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <file.har>",
		Short: "Compute metrics for a HAR file and print a report",
		Long: `Compute metrics for a HAR file and print them as Markdown or JSON.

With --persona and an OpenAI API key (OPENAI_API_KEY or the insights section of
--config), a short persona-specific summary is generated and appended.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), cmd.OutOrStdout(), root.logger, args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.format, "format", "f", formatMarkdown, "output format (markdown, json)")
	flags.StringVarP(&opts.persona, "persona", "p", "", "generate insights for a persona (developer, qa, business)")
	flags.StringVar(&opts.host, "host", "", "only analyze requests whose hostname contains this value")
	flags.StringVar(&opts.resourceType, "type", "", "only analyze requests of this resource type")
	flags.BoolVar(&opts.errorsOnly, "errors-only", false, "only analyze failed requests (4xx, 5xx, no response)")
	flags.StringVarP(&opts.output, "output", "o", "", "write the report to a file instead of stdout")
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	flags.Float64Var(&opts.thresholds.SlowMs, "slow-ms", 0, "slow request threshold in milliseconds (default 1000)")
	flags.Int64Var(&opts.thresholds.LargeBytes, "large-bytes", 0, "large response threshold in bytes (default 1000000)")
	flags.IntVar(&opts.thresholds.TopK, "top", 0, "length of the slowest and largest lists (default 5)")

	return cmd
}

func runAnalyze(ctx context.Context, out io.Writer, logger zerolog.Logger, path string, opts *analyzeOptions) error {
	if opts.format != formatJSON && opts.format != formatMarkdown {
		return fmt.Errorf("unknown format %q (want %s or %s)", opts.format, formatMarkdown, formatJSON)
	}

	var persona insights.Persona
	if opts.persona != "" {
		p, err := insights.ParsePersona(opts.persona)
		if err != nil {
			return err
		}
		persona = p
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	thresholds := mergeThresholds(cfg.Thresholds, opts.thresholds)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := har.ParseHAR(data)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", path, analyzer.ErrInvalidFormat, err)
	}

	fs := filter.NewFilterState()
	fs.SetHostFilter(opts.host)
	if opts.resourceType != "" {
		fs.SetTypeFilter(opts.resourceType)
	}
	if opts.errorsOnly {
		fs.ToggleErrorsOnly()
	}

	a := analyzer.New(analyzer.WithLogger(logger), analyzer.WithThresholds(thresholds))
	analysis, err := a.Analyze(fs.Apply(doc))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	logger.Info().
		Str("file", path).
		Int("entries", analysis.Metrics.TotalRequests).
		Int("warnings", len(analysis.Warnings)).
		Msg("analysis complete")

	var insight string
	if persona != "" {
		insight = generateInsight(ctx, logger, cfg.Insights, opts.generator, analysis.Metrics, persona)
	}

	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("create %s: %w", opts.output, err)
		}
		defer f.Close()
		out = f
	}

	switch opts.format {
	case formatJSON:
		return export.WriteJSON(out, analysis, insight)
	default:
		_, err := io.WriteString(out, export.GenerateMarkdownReport(analysis.Metrics, analysis.Warnings, insight))
		return err
	}
}

// mergeThresholds lets non-zero flag values override the configured thresholds
func mergeThresholds(base, override analyzer.Thresholds) analyzer.Thresholds {
	if override.SlowMs > 0 {
		base.SlowMs = override.SlowMs
	}
	if override.LargeBytes > 0 {
		base.LargeBytes = override.LargeBytes
	}
	if override.TopK > 0 {
		base.TopK = override.TopK
	}
	return base
}

// generateInsight never fails the command; without a backend or on error the
// report is written without insights
func generateInsight(ctx context.Context, logger zerolog.Logger, cfg config.InsightsConfig, gen insights.Generator, metrics analyzer.Metrics, persona insights.Persona) string {
	if gen == nil {
		if !cfg.Enabled() {
			logger.Warn().Str("persona", string(persona)).Msg("no OpenAI API key configured; skipping insights")
			return ""
		}
		g, err := newGenerator(cfg)
		if err != nil {
			logger.Warn().Err(err).Msg("insight generator unavailable")
			return ""
		}
		gen = g
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	insight, err := gen.Generate(ctx, metrics, persona)
	if err != nil {
		logger.Warn().Err(err).Str("persona", string(persona)).Msg("insight generation failed")
		return ""
	}
	return insight
}

func newGenerator(cfg config.InsightsConfig) (*insights.OpenAIGenerator, error) {
	return insights.NewOpenAIGenerator(insights.OpenAIConfig{
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		BaseURL:   cfg.BaseURL,
		MaxTokens: cfg.MaxTokens,
		Timeout:   cfg.Timeout,
	})
}
