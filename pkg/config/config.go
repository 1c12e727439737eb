package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/zen-systems/genui/pkg/adapter"
	"github.com/zen-systems/genui/pkg/pipeline"
	"github.com/zen-systems/genui/pkg/tracer"
)

// EnvPrefix prefixes environment overrides for any key, e.g.
// GENUI_MODELS_DESIGN or GENUI_SERVER_ADDR.
const EnvPrefix = "GENUI"

// Config holds the application configuration.
type Config struct {
	APIKeys APIKeysConfig `mapstructure:"api_keys"`
	Models  ModelsConfig  `mapstructure:"models"`
	Log     LogConfig     `mapstructure:"log"`
	Server  ServerConfig  `mapstructure:"server"`
	Tracing TracingConfig `mapstructure:"tracing"`

	ConfigDir string `mapstructure:"-"`
}

// APIKeysConfig holds provider credentials.
type APIKeysConfig struct {
	Anthropic string `mapstructure:"anthropic"`
	OpenAI    string `mapstructure:"openai"`
	Google    string `mapstructure:"google"`
	DeepSeek  string `mapstructure:"deepseek"`
}

// ModelsConfig names the default model of each stage. Aliases are allowed.
type ModelsConfig struct {
	Design string `mapstructure:"design"`
	UI     string `mapstructure:"ui"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	Metrics        bool     `mapstructure:"metrics"`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	Endpoint   string  `mapstructure:"endpoint"`
	SampleRate float64 `mapstructure:"sample_rate"`
}

// Load reads ~/.genui/config.yaml when present and applies environment
// overrides. Environment variables take precedence over the file.
func Load() (*Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	cfg, err := LoadFrom(filepath.Join(dir, "config.yaml"))
	if err != nil {
		return nil, err
	}
	cfg.ConfigDir = dir
	return cfg, nil
}

// LoadFrom reads the config file at path. A missing file is not an error.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindProviderEnv(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.ConfigDir = filepath.Dir(path)
	return &cfg, nil
}

// bindProviderEnv maps the providers' conventional variables. The GENUI_
// prefixed form still wins when both are set.
func bindProviderEnv(v *viper.Viper) error {
	bindings := map[string]string{
		"api_keys.anthropic": "ANTHROPIC_API_KEY",
		"api_keys.openai":    "OPENAI_API_KEY",
		"api_keys.google":    "GOOGLE_API_KEY",
		"api_keys.deepseek":  "DEEPSEEK_API_KEY",
	}
	for key, env := range bindings {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("models.design", pipeline.DefaultDesignModel)
	v.SetDefault("models.ui", pipeline.DefaultUIModel)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.metrics", true)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4317")
	v.SetDefault("tracing.sample_rate", 1.0)
}

// APIKeyFor returns the credential configured for a provider.
func (c *Config) APIKeyFor(provider string) string {
	switch provider {
	case "anthropic":
		return c.APIKeys.Anthropic
	case "openai":
		return c.APIKeys.OpenAI
	case "google":
		return c.APIKeys.Google
	case "deepseek":
		return c.APIKeys.DeepSeek
	default:
		return ""
	}
}

// HasProvider returns true if the API key for the given provider is configured.
func (c *Config) HasProvider(name string) bool {
	return c.APIKeyFor(name) != ""
}

// PipelineModels resolves the configured (or overridden) model names through
// aliases and attaches each provider's credential. Empty overrides keep the
// configured model.
func (c *Config) PipelineModels(f *adapter.Factory, aliases *ModelAliases, designModel, uiModel string) pipeline.ModelsConfig {
	if designModel == "" {
		designModel = c.Models.Design
	}
	if uiModel == "" {
		uiModel = c.Models.UI
	}
	return pipeline.ModelsConfig{
		DesignModel: c.modelConfig(f, aliases.Resolve(designModel)),
		UIModel:     c.modelConfig(f, aliases.Resolve(uiModel)),
	}
}

func (c *Config) modelConfig(f *adapter.Factory, model string) adapter.Config {
	cfg := adapter.Config{Model: model}
	if provider, ok := f.ProviderFor(model); ok {
		cfg.APIKey = c.APIKeyFor(provider)
	}
	return cfg
}

// TracerConfig converts the tracing section.
func (c *Config) TracerConfig() tracer.Config {
	return tracer.Config{
		ServiceName: tracer.DefaultServiceName,
		Endpoint:    c.Tracing.Endpoint,
		SampleRate:  c.Tracing.SampleRate,
		Enabled:     c.Tracing.Enabled,
	}
}

// ConfigDir returns ~/.genui. It is not created.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".genui"), nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}
