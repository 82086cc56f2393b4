// Package config loads process configuration from an optional YAML file and
// AGENT_-prefixed environment variables. Core packages never read the
// environment themselves; everything they need is injected from here.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full process configuration.
type Config struct {
	Server       ServerConfig  `mapstructure:"server"`
	Model        ModelConfig   `mapstructure:"model"`
	Tools        ToolsConfig   `mapstructure:"tools"`
	Uploads      UploadsConfig `mapstructure:"uploads"`
	LogLevel     string        `mapstructure:"log_level"`
	SystemPrompt string        `mapstructure:"system_prompt"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr              string `mapstructure:"addr"`
	ShutdownTimeoutMS int    `mapstructure:"shutdown_timeout_ms"`
}

// ModelConfig selects and configures the chat model endpoint.
type ModelConfig struct {
	Provider     string  `mapstructure:"provider"` // dashscope, gemini, script
	APIKey       string  `mapstructure:"api_key"`
	BaseURL      string  `mapstructure:"base_url"`
	Chat         string  `mapstructure:"chat"`
	Vision       string  `mapstructure:"vision"`
	Temperature  float64 `mapstructure:"temperature"`
	TimeoutMS    int     `mapstructure:"timeout_ms"`
	GeminiAPIKey string  `mapstructure:"gemini_api_key"`
}

// ToolsConfig configures the tool executor and tool backends.
type ToolsConfig struct {
	TimeoutMS      int    `mapstructure:"timeout_ms"`
	WeatherAPIKey  string `mapstructure:"weather_api_key"`
	WeatherBaseURL string `mapstructure:"weather_base_url"`
	TTSBaseURL     string `mapstructure:"tts_base_url"`
	TTSModel       string `mapstructure:"tts_model"`
}

// UploadsConfig controls where uploaded and synthesized artifacts live.
type UploadsConfig struct {
	Dir      string `mapstructure:"dir"`
	MaxBytes int64  `mapstructure:"max_bytes"`
}

const defaultSystemPrompt = `You are a multimodal assistant that can look up weather and stock data, generate images, synthesize speech, and analyze images.
When the user asks about weather, call the get_weather tool for live data.
When the user asks about a stock, call the get_stock tool.
When the user asks for a picture, call the generate_image tool.
When the user asks for spoken output, call the text_to_speech tool.
When the user asks about an uploaded image, call the analyze_image tool.
Answer in friendly natural language once the data is in hand. Never invent data a tool can fetch. Today is {{date}}.`

// Load reads configuration with defaults, then the YAML file at path (if
// any), then environment overrides. Precedence: env > file > defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.shutdown_timeout_ms", 5000)
	v.SetDefault("model.provider", "dashscope")
	v.SetDefault("model.base_url", "https://dashscope.aliyuncs.com/compatible-mode/v1")
	v.SetDefault("model.chat", "qwen-plus")
	v.SetDefault("model.vision", "qwen-vl-max")
	v.SetDefault("model.temperature", 0.7)
	v.SetDefault("model.timeout_ms", 60000)
	v.SetDefault("tools.timeout_ms", 30000)
	v.SetDefault("tools.weather_base_url", "https://api.openweathermap.org")
	v.SetDefault("tools.tts_base_url", "https://dashscope.aliyuncs.com")
	v.SetDefault("tools.tts_model", "cosyvoice-v1")
	v.SetDefault("uploads.dir", "uploads")
	v.SetDefault("uploads.max_bytes", 10<<20)
	v.SetDefault("log_level", "info")
	v.SetDefault("system_prompt", defaultSystemPrompt)

	v.SetEnvPrefix("AGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Model.Provider {
	case "dashscope", "gemini", "script":
	default:
		return fmt.Errorf("unknown model provider %q", c.Model.Provider)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Uploads.MaxBytes <= 0 {
		return fmt.Errorf("uploads.max_bytes must be positive")
	}
	return nil
}

// ModelTimeout returns the per-call model gateway timeout.
func (c *Config) ModelTimeout() time.Duration {
	return time.Duration(c.Model.TimeoutMS) * time.Millisecond
}

// ToolTimeout returns the per-call tool execution timeout.
func (c *Config) ToolTimeout() time.Duration {
	return time.Duration(c.Tools.TimeoutMS) * time.Millisecond
}

// ShutdownTimeout returns the graceful shutdown deadline for the HTTP server.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutMS) * time.Millisecond
}
