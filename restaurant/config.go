package restaurant

import (
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/hupe1980/brigade/logging"
	"github.com/hupe1980/brigade/model"
	anthropicmodel "github.com/hupe1980/brigade/model/anthropic"
	openaimodel "github.com/hupe1980/brigade/model/openai"
)

const envPrefix = "BRIGADE_"

// AppConfig holds the settings for the restaurant binaries. Values come from
// an optional YAML file, overridden by BRIGADE_* environment variables
// (BRIGADE_MODEL_NAME maps to model.name, BRIGADE_LOG_LEVEL to log.level).
type AppConfig struct {
	Model   ModelConfig   `koanf:"model"`
	Backend BackendConfig `koanf:"backend"`
	Data    DataConfig    `koanf:"data"`
	Server  ServerConfig  `koanf:"server"`
	Log     LogConfig     `koanf:"log"`
}

// ModelConfig selects the language model driving the staff.
type ModelConfig struct {
	Provider string `koanf:"provider"` // anthropic, openai or mock
	Name     string `koanf:"name"`     // empty uses the provider's default
}

// BackendConfig selects where backend operations run.
type BackendConfig struct {
	// URL of a remote backend server. Empty runs the backend in-process.
	URL string `koanf:"url"`
}

// DataConfig locates the backend's JSON files.
type DataConfig struct {
	Dir string `koanf:"dir"`
}

// ServerConfig configures the backend HTTP server.
type ServerConfig struct {
	Addr string `koanf:"addr"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn or error
	Format string `koanf:"format"` // text or json
}

// LoadAppConfig reads the YAML file at path (skipped when empty) and applies
// environment overrides on top.
func LoadAppConfig(path string) (*AppConfig, error) {
	k := koanf.New(".")

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	// BRIGADE_MODEL_PROVIDER -> model.provider. All keys are two segments,
	// so every underscore becomes a dot.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Model.Provider == "" {
		c.Model.Provider = "anthropic"
	}

	if c.Data.Dir == "" {
		c.Data.Dir = "data"
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":8089"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate rejects values the binaries cannot act on.
func (c *AppConfig) Validate() error {
	switch c.Model.Provider {
	case "anthropic", "openai", "mock":
	default:
		return fmt.Errorf("unknown model provider %q: use anthropic, openai or mock", c.Model.Provider)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q: use debug, info, warn or error", c.Log.Level)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q: use text or json", c.Log.Format)
	}

	return nil
}

// NewLogger builds a structured logger from the log section.
func (c *AppConfig) NewLogger() logging.Logger {
	var level logging.LogLevel

	switch c.Log.Level {
	case "debug":
		level = logging.LogLevelDebug
	case "warn":
		level = logging.LogLevelWarn
	case "error":
		level = logging.LogLevelError
	default:
		level = logging.LogLevelInfo
	}

	return logging.NewSlogLogger(level, c.Log.Format, false)
}

// NewModel builds the configured language model.
func (c *AppConfig) NewModel() model.Model {
	switch c.Model.Provider {
	case "openai":
		return openaimodel.NewModel(func(o *openaimodel.Options) {
			if c.Model.Name != "" {
				o.Model = c.Model.Name
			}
		})
	case "mock":
		name := c.Model.Name
		if name == "" {
			name = "mock-model"
		}

		return model.NewMockModel(name, "mock")
	default:
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			if c.Model.Name != "" {
				o.Model = anthropic.Model(c.Model.Name)
			}
		})
	}
}
