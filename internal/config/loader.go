package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/torosent/volley/internal/target"
)

// Loader builds a Config from command-line arguments and an optional config file.
type Loader struct{}

// ErrHelpRequested is returned when usage was printed because of -h/--help.
var ErrHelpRequested = errors.New("help requested")

func NewLoader() *Loader {
	return &Loader{}
}

// Defaults returns the configuration used when neither a config file nor a
// flag sets a value.
func Defaults() Config {
	return Config{
		Concurrency:  DefaultConcurrency,
		MaxRequests:  DefaultRequests,
		OutputFormat: OutputText,
		Log: LogConfig{
			Level:  LogLevelInfo,
			Format: LogFormatConsole,
		},
		Tracing: TracingConfig{
			Protocol:    "grpc",
			ServiceName: "volley",
			SampleRate:  1.0,
		},
	}
}

// Load parses args, reads the config file named by --config when present and
// applies explicitly set flags last.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}
	flagSet := cmd.Flags()

	cfg := Defaults()
	cfg.ConfigFile = configPath(flagSet)

	if cfg.ConfigFile != "" {
		if err := applyConfigFile(&cfg, cfg.ConfigFile); err != nil {
			return nil, err
		}
	}

	if err := applyFlagOverrides(&cfg, flagSet); err != nil {
		return nil, err
	}

	positional := flagSet.Args()
	if len(positional) > 1 {
		return nil, fmt.Errorf("expected at most one target URL, got %d arguments", len(positional))
	}
	if len(positional) == 1 {
		cfg.TargetURL = strings.TrimSpace(positional[0])
	}

	if cfg.Verbose {
		cfg.Log.Level = LogLevelDebug
	}
	return &cfg, nil
}

func applyConfigFile(cfg *Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("configuration file not found: %s", path)
		}
		return fmt.Errorf("configuration file %s: %w", path, err)
	}

	cfgViper := viper.New()
	cfgViper.SetConfigFile(path)
	if err := cfgViper.ReadInConfig(); err != nil {
		return fmt.Errorf("read configuration file %s: %w", path, err)
	}

	if raw := cfgViper.Get("settings"); raw != nil {
		settings, err := toStringKeyMap(raw)
		if err != nil {
			return fmt.Errorf("settings: %w", err)
		}
		if err := applyConfigSettings(cfg, settings); err != nil {
			return err
		}
	}

	if cfgViper.IsSet("targets") {
		targets := map[string]target.Spec{}
		if err := cfgViper.UnmarshalKey("targets", &targets); err != nil {
			return fmt.Errorf("targets: %w", err)
		}
		cfg.Targets = targets
	}
	return nil
}

// applyConfigSettings applies the `settings` section of a config file.
func applyConfigSettings(cfg *Config, settings map[string]interface{}) error {
	if v, ok := lookupSetting(settings, "concurrency"); ok {
		n, err := asInt(v)
		if err != nil {
			return fmt.Errorf("concurrency: %w", err)
		}
		cfg.Concurrency = n
	}
	if v, ok := lookupSetting(settings, "max_requests", "max-requests", "maxrequests", "requests"); ok {
		n, err := asInt(v)
		if err != nil {
			return fmt.Errorf("max_requests: %w", err)
		}
		cfg.MaxRequests = n
	}
	if v, ok := lookupSetting(settings, "output_format", "output-format", "outputformat", "output"); ok {
		s, err := asString(v)
		if err != nil {
			return fmt.Errorf("output_format: %w", err)
		}
		cfg.OutputFormat = OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	}
	if v, ok := lookupSetting(settings, "rate"); ok {
		n, err := asInt(v)
		if err != nil {
			return fmt.Errorf("rate: %w", err)
		}
		cfg.Rate = n
	}
	if v, ok := lookupSetting(settings, "timeout"); ok {
		d, err := asDuration(v)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if v, ok := lookupSetting(settings, "metrics_addr", "metrics-addr", "metricsaddr"); ok {
		s, err := asString(v)
		if err != nil {
			return fmt.Errorf("metrics_addr: %w", err)
		}
		cfg.MetricsAddr = strings.TrimSpace(s)
	}
	if v, ok := lookupSetting(settings, "log"); ok {
		logCfg, err := parseLogConfig(v, cfg.Log)
		if err != nil {
			return fmt.Errorf("log: %w", err)
		}
		cfg.Log = logCfg
	}
	if v, ok := lookupSetting(settings, "tracing"); ok {
		tr, err := parseTracingConfig(v, cfg.Tracing)
		if err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
		cfg.Tracing = tr
	}
	return nil
}
