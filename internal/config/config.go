// Package config layers defaults, an optional config file, environment
// variables and command-line flags into a Config.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ProviderGemini = "gemini"
	ProviderVertex = "vertex"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

type Config struct {
	Provider string        `mapstructure:"provider"`
	Gemini   GeminiConfig  `mapstructure:"gemini"`
	Vertex   VertexConfig  `mapstructure:"vertex"`
	OpenAI   OpenAIConfig  `mapstructure:"openai"`
	Ollama   OllamaConfig  `mapstructure:"ollama"`
	Models   ModelsConfig  `mapstructure:"models"`
	Retry    RetryConfig   `mapstructure:"retry"`
	Breaker  BreakerConfig `mapstructure:"breaker"`
	Prefs    PrefsConfig   `mapstructure:"prefs"`
	Detect   DetectConfig  `mapstructure:"detect"`
	Server   ServerConfig  `mapstructure:"server"`
	Log      LogConfig     `mapstructure:"log"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type VertexConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Project  string `mapstructure:"project"`
	Location string `mapstructure:"location"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type OllamaConfig struct {
	URL string `mapstructure:"url"`
}

// ModelsConfig names the model used for extraction (vision) and for
// translation and improvement (text). Empty means the provider default.
type ModelsConfig struct {
	Vision string `mapstructure:"vision"`
	Text   string `mapstructure:"text"`
}

type RetryConfig struct {
	MaxRetries   int           `mapstructure:"max_retries"`
	InitialDelay time.Duration `mapstructure:"initial_delay"`
	Backoff      float64       `mapstructure:"backoff"`
}

type BreakerConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Failures uint32        `mapstructure:"failures"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// PrefsConfig locates the preference database. An empty path keeps
// preferences in memory.
type PrefsConfig struct {
	Path string `mapstructure:"path"`
}

type DetectConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// envNames are the environment variables read for each key in addition to
// the TRANSLATOR_ prefixed form.
var envNames = map[string][]string{
	"provider":        {"TRANSLATOR_PROVIDER"},
	"gemini.api_key":  {"GEMINI_API_KEY", "NEXT_PUBLIC_GEMINI_API_KEY"},
	"vertex.api_key":  {"GOOGLE_API_KEY"},
	"vertex.project":  {"GOOGLE_CLOUD_PROJECT"},
	"vertex.location": {"GOOGLE_CLOUD_LOCATION"},
	"openai.api_key":  {"OPENAI_API_KEY"},
	"openai.base_url": {"OPENAI_BASE_URL"},
	"ollama.url":      {"OLLAMA_URL", "OLLAMA_HOST"},
	"log.level":       {"LOG_LEVEL"},
}

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"provider":     "provider",
	"vision-model": "models.vision",
	"text-model":   "models.text",
	"port":         "server.port",
	"prefs":        "prefs.path",
	"detect":       "detect.enabled",
	"log-level":    "log.level",
	"max-retries":  "retry.max_retries",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", ProviderGemini)
	v.SetDefault("vertex.location", "us-central1")
	v.SetDefault("ollama.url", "http://localhost:11434")
	v.SetDefault("retry.max_retries", 3)
	v.SetDefault("retry.initial_delay", time.Second)
	v.SetDefault("retry.backoff", 2.0)
	v.SetDefault("breaker.enabled", false)
	v.SetDefault("breaker.failures", 5)
	v.SetDefault("breaker.timeout", 30*time.Second)
	v.SetDefault("prefs.path", defaultPrefsPath())
	v.SetDefault("detect.enabled", false)
	v.SetDefault("server.port", "8888")
	v.SetDefault("log.level", "info")
}

func defaultPrefsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "imagetranslator", "prefs.db")
}

// Load reads configuration. configFile may be empty, in which case
// imagetranslator.{yaml,toml,json} is looked up in the working directory
// and the user config directory. flags may be nil.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("imagetranslator")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "imagetranslator"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix("TRANSLATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envNames {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	switch c.Provider {
	case ProviderGemini, ProviderVertex, ProviderOpenAI, ProviderOllama:
	default:
		return fmt.Errorf("unknown provider %q (want gemini, vertex, openai or ollama)", c.Provider)
	}
	if c.Models.Vision == "" {
		c.Models.Vision = DefaultModel(c.Provider)
	}
	if c.Models.Text == "" {
		c.Models.Text = DefaultModel(c.Provider)
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative, got %d", c.Retry.MaxRetries)
	}
	if c.Retry.Backoff < 1 {
		return fmt.Errorf("retry.backoff must be at least 1, got %g", c.Retry.Backoff)
	}
	return nil
}

// DefaultModel returns the model used for provider when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "gpt-4o"
	case ProviderOllama:
		return "mistral-small3.2:24b"
	default:
		return "gemini-2.0-flash"
	}
}
