package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/baoman007/ai-weather-agent/pkg/agent"
	"github.com/baoman007/ai-weather-agent/pkg/config"
	"github.com/baoman007/ai-weather-agent/pkg/logging"
	"github.com/baoman007/ai-weather-agent/pkg/prompt"
	"github.com/baoman007/ai-weather-agent/pkg/provider"
	"github.com/baoman007/ai-weather-agent/pkg/provider/dashscope"
	"github.com/baoman007/ai-weather-agent/pkg/provider/gemini"
	"github.com/baoman007/ai-weather-agent/pkg/provider/script"
	"github.com/baoman007/ai-weather-agent/pkg/server"
	"github.com/baoman007/ai-weather-agent/pkg/tool"
	"github.com/baoman007/ai-weather-agent/pkg/tool/builtin"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)

	ctx := context.Background()
	model := initProvider(ctx, cfg)

	tools := builtin.All(builtin.Config{
		WeatherAPIKey:  cfg.Tools.WeatherAPIKey,
		WeatherBaseURL: cfg.Tools.WeatherBaseURL,
		TTSAPIKey:      cfg.Model.APIKey,
		TTSBaseURL:     cfg.Tools.TTSBaseURL,
		TTSModel:       cfg.Tools.TTSModel,
		AudioDir:       filepath.Join(cfg.Uploads.Dir, "audio"),
		Vision:         model,
		VisionModel:    cfg.Model.Vision,
	})

	registry, err := tool.NewRegistry(tools...)
	if err != nil {
		slog.Error("tool registry init failed", "error", err)
		os.Exit(1)
	}
	executor := tool.NewExecutor(registry, cfg.ToolTimeout())

	ag, err := agent.New(agent.Config{
		Provider:     model,
		Registry:     registry,
		Executor:     executor,
		SystemPrompt: prompt.NewTemplate(cfg.SystemPrompt),
		Model:        cfg.Model.Chat,
		Temperature:  cfg.Model.Temperature,
	})
	if err != nil {
		slog.Error("agent init failed", "error", err)
		os.Exit(1)
	}

	srv := server.New(server.Config{
		Addr:           cfg.Server.Addr,
		Agent:          ag,
		Registry:       registry,
		Executor:       executor,
		UploadDir:      cfg.Uploads.Dir,
		MaxUploadBytes: cfg.Uploads.MaxBytes,
	})
	srv.Start()
	slog.Info("agent ready", "provider", model.Name(), "model", cfg.Model.Chat, "tools", registry.Names())

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
}

// initProvider builds the configured chat model. When the configured provider
// has no credentials it falls back to the scripted provider so the server
// still starts for local development.
func initProvider(ctx context.Context, cfg *config.Config) provider.ChatModel {
	switch cfg.Model.Provider {
	case "dashscope":
		llm, err := dashscope.NewChatModel(dashscope.Config{
			APIKey:      cfg.Model.APIKey,
			BaseURL:     cfg.Model.BaseURL,
			Model:       cfg.Model.Chat,
			Temperature: cfg.Model.Temperature,
			Timeout:     cfg.ModelTimeout(),
		})
		if err != nil {
			slog.Warn("dashscope init failed, using scripted fallback", "error", err)
			return script.New("script")
		}
		return llm
	case "gemini":
		llm, err := gemini.NewChatModel(ctx, gemini.Config{
			APIKey:      cfg.Model.GeminiAPIKey,
			Model:       cfg.Model.Chat,
			Temperature: cfg.Model.Temperature,
		})
		if err != nil {
			slog.Warn("gemini init failed, using scripted fallback", "error", err)
			return script.New("script")
		}
		return llm
	default:
		return script.New("script")
	}
}
