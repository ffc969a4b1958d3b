package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/torosent/volley/internal/config"
	"github.com/torosent/volley/internal/httpclient"
	"github.com/torosent/volley/internal/logging"
	"github.com/torosent/volley/internal/output"
	"github.com/torosent/volley/internal/promexport"
	"github.com/torosent/volley/internal/runner"
	"github.com/torosent/volley/internal/target"
	"github.com/torosent/volley/internal/tracing"
)

const tracingShutdownTimeout = 5 * time.Second

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run returns an error only for problems found before the first request.
// Once dispatch has started, request failures are reported, not returned.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.NewLoader().Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	tgt, err := cfg.ResolveTarget()
	if err != nil {
		return fmt.Errorf("%w (use --help for usage)", err)
	}

	if cfg.Verbose {
		if err := printResolved(stderr, cfg, tgt); err != nil {
			return err
		}
	}
	if cfg.DryRun {
		fmt.Fprintf(stderr, "dry run: would send %d GET requests to %s with concurrency %d\n", cfg.MaxRequests, tgt, cfg.Concurrency)
		return nil
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	runID := ulid.Make().String()

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		logger.Error("tracing init failed", zap.Error(err))
		return err
	}
	defer func() {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), tracingShutdownTimeout)
		defer cancelShutdown()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Error("tracing shutdown failed", zap.Error(err))
		}
	}()

	reporter, err := output.NewReporter(cfg.OutputFormat, stdout)
	if err != nil {
		return err
	}

	var observers []runner.Observer
	if cfg.MetricsAddr != "" {
		exporter := promexport.New(runID, tgt.String(), logger)
		if _, err := exporter.Serve(ctx, cfg.MetricsAddr); err != nil {
			logger.Error("metrics server failed to start", zap.String("addr", cfg.MetricsAddr), zap.Error(err))
			return fmt.Errorf("metrics server: %w", err)
		}
		observers = append(observers, exporter)
	}

	client := httpclient.NewClient(httpclient.ClientOptions{
		MaxConnsPerHost: cfg.Concurrency + httpclient.ConnHeadroom,
		Timeout:         cfg.Timeout,
	})
	executor := httpclient.NewExecutor(client, tgt,
		httpclient.WithTracing(provider),
		httpclient.WithLogger(logger),
	)

	logger.Info("run started",
		zap.String("run_id", runID),
		zap.String("target", tgt.String()),
		zap.Int("concurrency", cfg.Concurrency),
		zap.Int("requests", cfg.MaxRequests),
		zap.Int("rate", cfg.Rate),
		zap.Bool("tracing", provider.Enabled()),
	)

	reporter.Header()
	result := runner.New(runner.Options{
		Concurrency:   cfg.Concurrency,
		TotalRequests: cfg.MaxRequests,
		RatePerSecond: cfg.Rate,
		Executor:      executor,
		Reporter:      reporter,
		Observers:     observers,
		Logger:        logger,
		RunID:         runID,
	}).Run(ctx)

	logger.Info("run finished",
		zap.String("run_id", runID),
		zap.Int64("issued", result.Issued),
		zap.Int64("responses", result.Stats.Count),
		zap.Duration("total_time", result.Stats.TotalTime),
		zap.Bool("interrupted", result.Interrupted),
	)
	return nil
}

// resolvedView is the -v dump of what a run will do.
type resolvedView struct {
	ConfigFile   string                 `yaml:"config_file,omitempty"`
	Target       string                 `yaml:"target"`
	TargetName   string                 `yaml:"target_name,omitempty"`
	Concurrency  int                    `yaml:"concurrency"`
	MaxRequests  int                    `yaml:"max_requests"`
	OutputFormat string                 `yaml:"output_format"`
	Timeout      string                 `yaml:"timeout"`
	Rate         int                    `yaml:"rate"`
	MetricsAddr  string                 `yaml:"metrics_addr,omitempty"`
	TraceTo      string                 `yaml:"trace_endpoint,omitempty"`
	Targets      map[string]target.Spec `yaml:"targets,omitempty"`
}

func printResolved(w io.Writer, cfg *config.Config, tgt target.Target) error {
	view := resolvedView{
		ConfigFile:   cfg.ConfigFile,
		Target:       tgt.String(),
		TargetName:   cfg.TargetName,
		Concurrency:  cfg.Concurrency,
		MaxRequests:  cfg.MaxRequests,
		OutputFormat: string(cfg.OutputFormat),
		Timeout:      cfg.Timeout.String(),
		Rate:         cfg.Rate,
		MetricsAddr:  cfg.MetricsAddr,
		TraceTo:      cfg.Tracing.Endpoint,
		Targets:      cfg.Targets,
	}
	data, err := yaml.Marshal(view)
	if err != nil {
		return fmt.Errorf("render configuration: %w", err)
	}
	fmt.Fprintln(w, "--- resolved configuration ---")
	_, err = w.Write(data)
	return err
}
