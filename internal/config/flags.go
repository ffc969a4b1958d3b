package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "volley [flags] [URL]",
		Short:         "Bounded-concurrency HTTP GET load generator",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

func configureFlags(flags *pflag.FlagSet) {
	// Target selection
	flags.String("config", "", "Path to a config file (JSON or YAML) with settings and targets")
	flags.String("conf", "", "Alias for --config")
	_ = flags.MarkHidden("conf")
	flags.StringP("target", "t", "", "Named target from the config file")

	// Load control
	flags.IntP("concurrency", "c", DefaultConcurrency, "Maximum number of requests in flight")
	flags.IntP("requests", "n", DefaultRequests, "Total number of requests to issue")
	flags.Int("rate", 0, "Maximum requests issued per second (0 means unlimited)")
	flags.Duration("timeout", 0, "Per-request timeout (0 means no timeout)")

	// Output
	flags.StringP("output", "o", string(OutputText), "Output format: text or json")
	flags.BoolP("verbose", "v", false, "Print the resolved configuration and enable debug logging")
	flags.Bool("dry-run", false, "Resolve and validate the configuration without issuing requests")

	// Logging
	flags.String("log-level", LogLevelInfo, "Log level: debug, info, warn, error")
	flags.String("log-format", LogFormatConsole, "Log format: console or json")
	flags.String("log-file", "", "Also write logs to this file (rotated)")

	// Observability
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address during the run (e.g. :9090)")
	flags.String("trace-endpoint", "", "OTLP endpoint for request traces")
	flags.String("trace-protocol", "grpc", "OTLP protocol: grpc or http")
	flags.Bool("trace-insecure", false, "Use a plaintext connection to the OTLP endpoint")
	flags.Float64("trace-sample-rate", 1.0, "Fraction of requests to trace (0.0-1.0)")
}

func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\n%s\n\nFlags:\n", cmd.UseLine(), cmd.Short)
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// configPath returns --config, falling back to the --conf alias.
func configPath(fs *pflag.FlagSet) string {
	if path, _ := fs.GetString("config"); strings.TrimSpace(path) != "" {
		return strings.TrimSpace(path)
	}
	path, _ := fs.GetString("conf")
	return strings.TrimSpace(path)
}

// applyFlagOverrides copies explicitly set flags over config-file values.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("target") {
		val, err := fs.GetString("target")
		if err != nil {
			return err
		}
		cfg.TargetName = strings.TrimSpace(val)
	}
	if fs.Changed("concurrency") {
		val, err := fs.GetInt("concurrency")
		if err != nil {
			return err
		}
		cfg.Concurrency = val
	}
	if fs.Changed("requests") {
		val, err := fs.GetInt("requests")
		if err != nil {
			return err
		}
		cfg.MaxRequests = val
	}
	if fs.Changed("rate") {
		val, err := fs.GetInt("rate")
		if err != nil {
			return err
		}
		cfg.Rate = val
	}
	if fs.Changed("timeout") {
		val, err := fs.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = val
	}
	if fs.Changed("output") {
		val, err := fs.GetString("output")
		if err != nil {
			return err
		}
		cfg.OutputFormat = OutputFormat(strings.ToLower(strings.TrimSpace(val)))
	}
	if fs.Changed("verbose") {
		val, err := fs.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = val
	}
	if fs.Changed("dry-run") {
		val, err := fs.GetBool("dry-run")
		if err != nil {
			return err
		}
		cfg.DryRun = val
	}
	if fs.Changed("log-level") {
		val, err := fs.GetString("log-level")
		if err != nil {
			return err
		}
		cfg.Log.Level = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("log-format") {
		val, err := fs.GetString("log-format")
		if err != nil {
			return err
		}
		cfg.Log.Format = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("log-file") {
		val, err := fs.GetString("log-file")
		if err != nil {
			return err
		}
		cfg.Log.File = strings.TrimSpace(val)
	}
	if fs.Changed("metrics-addr") {
		val, err := fs.GetString("metrics-addr")
		if err != nil {
			return err
		}
		cfg.MetricsAddr = strings.TrimSpace(val)
	}
	if fs.Changed("trace-endpoint") {
		val, err := fs.GetString("trace-endpoint")
		if err != nil {
			return err
		}
		cfg.Tracing.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("trace-protocol") {
		val, err := fs.GetString("trace-protocol")
		if err != nil {
			return err
		}
		cfg.Tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("trace-insecure") {
		val, err := fs.GetBool("trace-insecure")
		if err != nil {
			return err
		}
		cfg.Tracing.Insecure = val
	}
	if fs.Changed("trace-sample-rate") {
		val, err := fs.GetFloat64("trace-sample-rate")
		if err != nil {
			return err
		}
		cfg.Tracing.SampleRate = val
	}
	return nil
}
