package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileEnv names the variable pointing at an optional YAML config file.
const FileEnv = "ML_INTERFACE_CONFIG"

type Config struct {
	Environment  string            `yaml:"environment"`
	LogLevel     string            `yaml:"log_level"`
	Temperature  float64           `yaml:"temperature"`
	HistoryLimit int               `yaml:"history_limit"`
	Disposition  DispositionConfig `yaml:"disposition"`

	OpenAI    ProviderConfig `yaml:"openai"`
	Anthropic ProviderConfig `yaml:"anthropic"`
	Venice    ProviderConfig `yaml:"venice"`
	Ollama    ProviderConfig `yaml:"ollama"`
	Gemini    ProviderConfig `yaml:"gemini"`

	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// DispositionConfig controls the second, rating call.
type DispositionConfig struct {
	Enabled bool `yaml:"enabled"`
	// Strict makes a missing rating fatal. Otherwise the reply is returned
	// without a disposition change.
	Strict bool `yaml:"strict"`
}

// ProviderConfig holds credentials for one text-generation service.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// TelemetryConfig locates the optional telemetry stores. Empty values
// disable the matching sink.
type TelemetryConfig struct {
	RedisURL   string `yaml:"redis_url"`
	MongoDBURI string `yaml:"mongodb_uri"`
	Database   string `yaml:"database"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Environment:  "development",
		LogLevel:     "info",
		Temperature:  0.7,
		HistoryLimit: 20,
		Disposition:  DispositionConfig{Enabled: false, Strict: true},
		OpenAI:       ProviderConfig{Model: "gpt-3.5-turbo"},
		Anthropic:    ProviderConfig{Model: "claude-3-5-haiku-latest"},
		Venice:       ProviderConfig{Model: "llama-3.3-70b"},
		Ollama:       ProviderConfig{Model: "llama3.2", BaseURL: "http://localhost:11434"},
		Gemini:       ProviderConfig{Model: "gemini-2.5-flash"},
		Telemetry:    TelemetryConfig{Database: "openmw_conv"},
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// ML_INTERFACE_CONFIG if set, then environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(FileEnv); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("config: open %q: %w", path, err)
		}
		defer f.Close()
		if err := decode(f, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %q: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromReader decodes YAML over the defaults and validates the result.
// Environment variables are not consulted.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := decode(r, cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: decode yaml: %w", err)
	}
	return nil
}

// Validate returns a joined error listing every invalid value.
func Validate(cfg *Config) error {
	var errs []error
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		errs = append(errs, fmt.Errorf("temperature %v is out of range [0, 2]", cfg.Temperature))
	}
	if cfg.HistoryLimit <= 0 {
		errs = append(errs, fmt.Errorf("history_limit must be positive, got %d", cfg.HistoryLimit))
	}
	if _, ok := logLevels[strings.ToLower(cfg.LogLevel)]; !ok {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	var errs []error
	if v := os.Getenv("TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("TEMPERATURE: %w", err))
		}
		cfg.Temperature = f
	}
	if v := os.Getenv("HISTORY_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("HISTORY_LIMIT: %w", err))
		}
		cfg.HistoryLimit = n
	}
	for key, dst := range map[string]*bool{
		"DISPOSITION_ENABLED": &cfg.Disposition.Enabled,
		"DISPOSITION_STRICT":  &cfg.Disposition.Strict,
	} {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
			}
			*dst = b
		}
	}

	cfg.OpenAI.APIKey = getEnv("OPENAI_API_KEY", cfg.OpenAI.APIKey)
	cfg.OpenAI.Model = getEnv("OPENAI_MODEL", cfg.OpenAI.Model)
	cfg.OpenAI.BaseURL = getEnv("OPENAI_BASE_URL", cfg.OpenAI.BaseURL)
	cfg.Anthropic.APIKey = getEnv("ANTHROPIC_API_KEY", cfg.Anthropic.APIKey)
	cfg.Anthropic.Model = getEnv("ANTHROPIC_MODEL", cfg.Anthropic.Model)
	cfg.Venice.APIKey = getEnv("VENICE_API_KEY", cfg.Venice.APIKey)
	cfg.Venice.Model = getEnv("VENICE_MODEL", cfg.Venice.Model)
	cfg.Ollama.BaseURL = getEnv("OLLAMA_URL", cfg.Ollama.BaseURL)
	cfg.Ollama.Model = getEnv("OLLAMA_MODEL", cfg.Ollama.Model)
	cfg.Gemini.APIKey = getEnv("GEMINI_API_KEY", cfg.Gemini.APIKey)
	cfg.Gemini.Model = getEnv("GEMINI_MODEL", cfg.Gemini.Model)

	cfg.Telemetry.RedisURL = getEnv("TELEMETRY_REDIS_URL", cfg.Telemetry.RedisURL)
	cfg.Telemetry.MongoDBURI = getEnv("TELEMETRY_MONGODB_URI", cfg.Telemetry.MongoDBURI)
	cfg.Telemetry.Database = getEnv("TELEMETRY_DATABASE", cfg.Telemetry.Database)

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Level returns the slog level named by LogLevel.
func (c *Config) Level() slog.Level {
	return parseLogLevel(c.LogLevel)
}

var logLevels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

func parseLogLevel(level string) slog.Level {
	if l, ok := logLevels[strings.ToLower(level)]; ok {
		return l
	}
	return slog.LevelInfo
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
