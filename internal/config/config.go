package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	defaultPort           = "8080"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
	defaultLogLevel       = "info"

	// SettingsFileKey names the YAML settings file when --config is not given.
	SettingsFileKey = "SETTINGS_FILE"
)

// ServerConfig is the reference host's typed view of the rendered settings.
// Keys missing from the settings fall back to hostDefaults.
type ServerConfig struct {
	Port                 string        `env:"PORT"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD"`
	ReadHeaderTimeout    time.Duration `env:"READ_HEADER_TIMEOUT"`
	WriteTimeout         time.Duration `env:"WRITE_TIMEOUT"`
	IdleTimeout          time.Duration `env:"IDLE_TIMEOUT"`
	EnableRequestLogging bool          `env:"ENABLE_REQUEST_LOGGING"`
	RateLimitRPS         float64       `env:"RATE_LIMIT_RPS"`
	RateLimitBurst       int           `env:"RATE_LIMIT_BURST"`
	LogLevel             string        `env:"LOG_LEVEL"`
}

// hostDefaults are the reference host's defaults, detected by Load and used
// as the fallback when decoding ServerConfig.
var hostDefaults = []struct {
	key   string
	value any
}{
	{"PORT", defaultPort},
	{"SHUTDOWN_GRACE_PERIOD", 10 * time.Second},
	{"READ_HEADER_TIMEOUT", 5 * time.Second},
	{"WRITE_TIMEOUT", 15 * time.Second},
	{"IDLE_TIMEOUT", 60 * time.Second},
	{"ENABLE_REQUEST_LOGGING", true},
	{"RATE_LIMIT_RPS", defaultRateLimitRPS},
	{"RATE_LIMIT_BURST", defaultRateLimitBurst},
	{"LOG_LEVEL", defaultLogLevel},
	{SettingsFileKey, ""},
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	AppName        string
	Port           *string
	RateLimitRPS   *float64
	RateLimitBurst *int
	// Set holds KEY=VALUE pairs applied after every other source.
	Set map[string]string
	// Require lists environment keys that must resolve.
	Require []string
	// Detect maps environment keys to the configuration keys they are stored under.
	Detect map[string]string
}

// Load builds the host's settings store. Host keys are detected from env with
// defaults, then required and renamed keys are detected, then the settings
// file and finally CLI overrides are applied as explicit values.
func Load(overrides *CLIOverrides, environment Environment) (*Store, error) {
	if overrides == nil {
		overrides = &CLIOverrides{}
	}

	opts := []Option{WithEnvironment(environment)}
	if overrides.AppName != "" {
		opts = append(opts, WithAppName(overrides.AppName))
	}
	store := New(opts...)

	if err := detectHostDefaults(store); err != nil {
		return nil, err
	}

	for _, key := range overrides.Require {
		if _, err := store.Detect(key, Required()); err != nil {
			return nil, err
		}
	}

	for _, envKey := range slices.Sorted(maps.Keys(overrides.Detect)) {
		if _, err := store.Detect(envKey, ConfigKey(overrides.Detect[envKey])); err != nil {
			return nil, err
		}
	}

	path := overrides.ConfigFile
	if path == "" {
		if v, err := store.Get(SettingsFileKey); err == nil {
			path, _ = v.(string)
		}
	}
	if path != "" {
		if err := applySettingsFile(store, path); err != nil {
			return nil, fmt.Errorf("load settings file: %w", err)
		}
	}

	if err := applyCLIOverrides(store, overrides); err != nil {
		return nil, err
	}

	return store, nil
}

func detectHostDefaults(store *Store) error {
	for _, d := range hostDefaults {
		if _, err := store.Detect(d.key, Default(d.value)); err != nil {
			return fmt.Errorf("detect %s: %w", d.key, err)
		}
	}
	return nil
}

func applySettingsFile(store *Store, path string) error {
	resolved, err := resolveFile(path)
	if err != nil {
		return err
	}

	file, err := LoadFile(resolved)
	if err != nil {
		return err
	}

	if err := file.ApplyTo(store); err != nil {
		return err
	}
	store.Set(SettingsFileKey, resolved)
	return nil
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(store *Store, overrides *CLIOverrides) error {
	if overrides.Port != nil && *overrides.Port != "" {
		store.Set("PORT", *overrides.Port)
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		store.Set("RATE_LIMIT_RPS", *overrides.RateLimitRPS)
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		store.Set("RATE_LIMIT_BURST", *overrides.RateLimitBurst)
	}

	if len(overrides.Set) > 0 {
		values := make(map[string]any, len(overrides.Set))
		for key, value := range overrides.Set {
			values[key] = value
		}
		if err := store.Apply(values); err != nil {
			return fmt.Errorf("apply --set overrides: %w", err)
		}
	}

	return nil
}

// ServerConfigFrom decodes the host's ServerConfig from the rendered settings,
// falling back to hostDefaults for missing keys, and validates it.
func ServerConfigFrom(store *Store) (ServerConfig, error) {
	defaults := make(map[string]any, len(hostDefaults))
	for _, d := range hostDefaults {
		defaults[d.key] = d.value
	}
	environment := stringify(defaults)
	maps.Copy(environment, stringify(store.Settings()))

	var cfg ServerConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environment}); err != nil {
		return ServerConfig{}, fmt.Errorf("decode server config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

// Validate validates the final configuration.
func (c ServerConfig) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if c.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	return nil
}

// stringify flattens scalar settings back into strings; nested maps are skipped.
func stringify(settings map[string]any) map[string]string {
	out := make(map[string]string, len(settings))
	for key, value := range settings {
		switch v := value.(type) {
		case nil, map[string]any:
			continue
		case string:
			out[key] = v
		case []string:
			out[key] = strings.Join(v, ",")
		case fmt.Stringer:
			out[key] = v.String()
		default:
			out[key] = fmt.Sprint(v)
		}
	}
	return out
}
