package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/torosent/volley/internal/target"
)

const (
	DefaultConcurrency = 20
	DefaultRequests    = 200
)

type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
)

type Config struct {
	ConfigFile   string                 `mapstructure:"-"`
	TargetName   string                 `mapstructure:"-"`
	TargetURL    string                 `mapstructure:"-"`
	Targets      map[string]target.Spec `mapstructure:"targets"`
	Concurrency  int                    `mapstructure:"concurrency"`
	MaxRequests  int                    `mapstructure:"max_requests"`
	OutputFormat OutputFormat           `mapstructure:"output_format"`
	Timeout      time.Duration          `mapstructure:"timeout"`
	Rate         int                    `mapstructure:"rate"`
	Verbose      bool                   `mapstructure:"-"`
	DryRun       bool                   `mapstructure:"-"`
	MetricsAddr  string                 `mapstructure:"metrics_addr"`
	Log          LogConfig              `mapstructure:"log"`
	Tracing      TracingConfig          `mapstructure:"tracing"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Insecure    bool    `mapstructure:"insecure"`
}

// Enabled reports whether spans should be exported.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != ""
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string

	if c.Concurrency > 500 {
		fmt.Fprintf(os.Stderr, "WARNING: High concurrency configured (%d requests in flight). Ensure you have authorization to test the target system.\n", c.Concurrency)
	}

	if c.Concurrency < 1 {
		issues = append(issues, "concurrency must be >= 1")
	}
	if c.MaxRequests < 0 {
		issues = append(issues, "requests must be >= 0")
	}
	switch c.OutputFormat {
	case OutputText, OutputJSON:
	default:
		issues = append(issues, fmt.Sprintf("output format %q is not supported (use text or json)", c.OutputFormat))
	}
	if c.Timeout < 0 {
		issues = append(issues, "timeout must be >= 0")
	}
	if c.Rate < 0 {
		issues = append(issues, "rate must be >= 0")
	}

	issues = append(issues, validateLogConfig(c.Log)...)
	issues = append(issues, validateTracingConfig(c.Tracing)...)

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

// ResolveTarget resolves the endpoint from the literal URL or the named entry.
func (c Config) ResolveTarget() (target.Target, error) {
	return target.Resolve(c.TargetURL, c.TargetName, c.Targets)
}

func validateLogConfig(log LogConfig) []string {
	var issues []string
	switch strings.ToLower(log.Level) {
	case "", LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		issues = append(issues, fmt.Sprintf("log: level %q is not supported", log.Level))
	}
	switch strings.ToLower(log.Format) {
	case "", LogFormatConsole, LogFormatJSON:
	default:
		issues = append(issues, fmt.Sprintf("log: format %q is not supported", log.Format))
	}
	return issues
}

func validateTracingConfig(tr TracingConfig) []string {
	var issues []string
	if tr.SampleRate < 0 || tr.SampleRate > 1 {
		issues = append(issues, fmt.Sprintf("tracing: sample_rate must be between 0.0 and 1.0, got %g", tr.SampleRate))
	}
	switch strings.ToLower(tr.Protocol) {
	case "", "grpc", "http":
	default:
		issues = append(issues, fmt.Sprintf("tracing: protocol must be 'grpc' or 'http', got %q", tr.Protocol))
	}
	return issues
}
