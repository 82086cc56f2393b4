// Package builtin provides the five capabilities the agent advertises to the
// model: weather lookup, stock quotes, image generation, speech synthesis,
// and image analysis.
package builtin

import (
	"net/http"
	"time"

	"github.com/baoman007/ai-weather-agent/pkg/provider"
	"github.com/baoman007/ai-weather-agent/pkg/tool"
)

// Config carries the backend settings every builtin tool needs. It is built
// once at startup and injected; tools never read the process environment.
type Config struct {
	// Weather backend. With an empty APIKey the tool serves mock data.
	WeatherAPIKey  string
	WeatherBaseURL string

	// DashScope speech synthesis.
	TTSAPIKey  string
	TTSBaseURL string
	TTSModel   string

	// Directory synthesized audio files are written to.
	AudioDir string

	// Vision-language model used by analyze_image.
	Vision      provider.ChatModel
	VisionModel string

	HTTPClient *http.Client
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// All constructs the builtin tools in catalog order. The order is part of the
// contract: it is the order the model sees the tools in.
func All(cfg Config) []tool.Tool {
	return []tool.Tool{
		NewWeather(cfg),
		NewStock(),
		NewImage(),
		NewSpeech(cfg),
		NewVision(cfg),
	}
}
