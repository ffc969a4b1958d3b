package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/torosent/volley/internal/config"
	"github.com/torosent/volley/internal/target"
)

func TestParseFlagsDefaults(t *testing.T) {
	cfg, err := config.NewLoader().Load([]string{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.TargetURL != "" || cfg.TargetName != "" {
		t.Errorf("target = %q/%q, want empty", cfg.TargetURL, cfg.TargetName)
	}
	if cfg.Concurrency != 20 {
		t.Errorf("Concurrency = %d, want 20", cfg.Concurrency)
	}
	if cfg.MaxRequests != 200 {
		t.Errorf("MaxRequests = %d, want 200", cfg.MaxRequests)
	}
	if cfg.OutputFormat != config.OutputText {
		t.Errorf("OutputFormat = %q, want text", cfg.OutputFormat)
	}
	if cfg.Timeout != 0 {
		t.Errorf("Timeout = %s, want 0", cfg.Timeout)
	}
	if cfg.Log.Level != config.LogLevelInfo || cfg.Log.Format != config.LogFormatConsole {
		t.Errorf("Log = %+v, want info/console", cfg.Log)
	}
	if cfg.Tracing.Enabled() {
		t.Errorf("tracing enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults error = %v", err)
	}
}

func TestLoadPositionalURL(t *testing.T) {
	cfg, err := config.NewLoader().Load([]string{"-c", "5", "-n", "50", "-o", "json", "localhost:8080/ping"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TargetURL != "localhost:8080/ping" {
		t.Errorf("TargetURL = %q", cfg.TargetURL)
	}
	if cfg.Concurrency != 5 || cfg.MaxRequests != 50 {
		t.Errorf("C/N = %d/%d, want 5/50", cfg.Concurrency, cfg.MaxRequests)
	}
	if cfg.OutputFormat != config.OutputJSON {
		t.Errorf("OutputFormat = %q, want json", cfg.OutputFormat)
	}

	tgt, err := cfg.ResolveTarget()
	if err != nil {
		t.Fatalf("ResolveTarget() error = %v", err)
	}
	if got := tgt.String(); got != "http://localhost:8080/ping" {
		t.Errorf("String() = %q", got)
	}
}

func TestLoadRejectsExtraArguments(t *testing.T) {
	if _, err := config.NewLoader().Load([]string{"http://a", "http://b"}); err == nil {
		t.Fatal("Load() error = nil, want error for two URLs")
	}
}

func TestLoadHelp(t *testing.T) {
	_, err := config.NewLoader().Load([]string{"--help"})
	if !errors.Is(err, config.ErrHelpRequested) {
		t.Fatalf("Load(--help) error = %v, want ErrHelpRequested", err)
	}
}

func TestVerboseForcesDebugLogging(t *testing.T) {
	cfg, err := config.NewLoader().Load([]string{"-v", "--log-level", "error"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Verbose || cfg.Log.Level != config.LogLevelDebug {
		t.Errorf("Verbose=%v Log.Level=%q, want true/debug", cfg.Verbose, cfg.Log.Level)
	}
}

func TestLoadConfigFileJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "volley.json")
	if err := os.WriteFile(path, []byte(`{
		"settings": {
			"concurrency": 8,
			"max_requests": 64,
			"output_format": "json",
			"timeout": "2s",
			"rate": 100,
			"log": {"level": "warn", "format": "json"},
			"tracing": {"endpoint": "localhost:4317", "sample_rate": 0.5, "insecure": true}
		},
		"targets": {
			"local": {"url": "http://localhost:8080/health"}
		}
	}`), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.NewLoader().Load([]string{"--config", path, "-t", "local"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ConfigFile != path {
		t.Errorf("ConfigFile = %q, want %q", cfg.ConfigFile, path)
	}
	if cfg.Concurrency != 8 || cfg.MaxRequests != 64 {
		t.Errorf("C/N = %d/%d, want 8/64", cfg.Concurrency, cfg.MaxRequests)
	}
	if cfg.OutputFormat != config.OutputJSON {
		t.Errorf("OutputFormat = %q, want json", cfg.OutputFormat)
	}
	if cfg.Timeout != 2*time.Second {
		t.Errorf("Timeout = %s, want 2s", cfg.Timeout)
	}
	if cfg.Rate != 100 {
		t.Errorf("Rate = %d, want 100", cfg.Rate)
	}
	if cfg.Log.Level != "warn" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if !cfg.Tracing.Enabled() || cfg.Tracing.SampleRate != 0.5 || !cfg.Tracing.Insecure {
		t.Errorf("Tracing = %+v", cfg.Tracing)
	}
	if cfg.Tracing.Protocol != "grpc" {
		t.Errorf("Tracing.Protocol = %q, want default grpc", cfg.Tracing.Protocol)
	}

	tgt, err := cfg.ResolveTarget()
	if err != nil {
		t.Fatalf("ResolveTarget() error = %v", err)
	}
	if tgt.Host != "localhost" || tgt.Port != 8080 || tgt.Path != "/health" {
		t.Errorf("target = %+v", tgt)
	}
}

func TestLoadConfigFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "volley.yaml")
	if err := os.WriteFile(path, []byte(`
settings:
  concurrency: 3
  max_requests: 9
targets:
  api:
    protocol: https
    host: api.example.com
    port: 443
    path: /v1/status?verbose=1
`), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.NewLoader().Load([]string{"--conf", path, "--target", "api", "-c", "4"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Concurrency != 4 {
		t.Errorf("Concurrency = %d, want flag override 4", cfg.Concurrency)
	}
	if cfg.MaxRequests != 9 {
		t.Errorf("MaxRequests = %d, want 9 from file", cfg.MaxRequests)
	}

	tgt, err := cfg.ResolveTarget()
	if err != nil {
		t.Fatalf("ResolveTarget() error = %v", err)
	}
	want := target.Target{Scheme: "https", Host: "api.example.com", Port: 443, Path: "/v1/status", Query: "verbose=1"}
	if tgt != want {
		t.Errorf("target = %+v, want %+v", tgt, want)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")
	_, err := config.NewLoader().Load([]string{"--config", path})
	if err == nil {
		t.Fatal("Load() error = nil, want missing file error")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %q, want it to mention not found", err)
	}
}

func TestResolveUnknownTargetListsAvailable(t *testing.T) {
	cfg := config.Defaults()
	cfg.TargetName = "prod"
	cfg.Targets = map[string]target.Spec{
		"local":   {URL: "http://localhost"},
		"staging": {Host: "staging.example.com"},
	}
	_, err := cfg.ResolveTarget()
	if !errors.Is(err, target.ErrNoTarget) {
		t.Fatalf("ResolveTarget() error = %v, want ErrNoTarget", err)
	}
	for _, name := range []string{"local", "staging"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not list %q", err, name)
		}
	}
}

func TestConfigValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		have func(*config.Config)
		want []string
	}{
		{
			name: "zero concurrency",
			have: func(c *config.Config) { c.Concurrency = 0 },
			want: []string{"concurrency"},
		},
		{
			name: "negative values",
			have: func(c *config.Config) {
				c.MaxRequests = -1
				c.Rate = -5
				c.Timeout = -time.Second
			},
			want: []string{"requests", "rate", "timeout"},
		},
		{
			name: "unknown output",
			have: func(c *config.Config) { c.OutputFormat = "xml" },
			want: []string{"output format"},
		},
		{
			name: "logging",
			have: func(c *config.Config) {
				c.Log.Level = "trace"
				c.Log.Format = "logfmt"
			},
			want: []string{"log: level", "log: format"},
		},
		{
			name: "tracing",
			have: func(c *config.Config) {
				c.Tracing.SampleRate = 1.5
				c.Tracing.Protocol = "udp"
			},
			want: []string{"sample_rate", "protocol"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Defaults()
			tc.have(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("Validate() error = nil, want error")
			}
			var verr config.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error type = %T, want ValidationError", err)
			}
			if len(verr.Issues()) != len(tc.want) {
				t.Errorf("Issues() = %v, want %d issues", verr.Issues(), len(tc.want))
			}
			for _, want := range tc.want {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("Validate() error %q missing %q", err.Error(), want)
				}
			}
		})
	}
}

func TestZeroRequestsIsValid(t *testing.T) {
	cfg := config.Defaults()
	cfg.MaxRequests = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil for an empty budget", err)
	}
}
