package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/ziadkadry99/vizlab/internal/assist"
	"github.com/ziadkadry99/vizlab/internal/config"
	"github.com/ziadkadry99/vizlab/internal/export"
	"github.com/ziadkadry99/vizlab/internal/llm"
	"github.com/ziadkadry99/vizlab/internal/render"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `vizlab init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// createLLMProviderFromConfig creates an LLM provider based on config
// settings. The API key is read here, from the provider's conventional
// environment variable, and handed to the llm package.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	opts := llm.Options{
		Provider:          string(cfg.Provider),
		Model:             cfg.Model,
		RequestsPerMinute: cfg.RequestsPerMinute,
	}
	if env := config.APIKeyEnvVar(cfg.Provider); env != "" {
		opts.APIKey = os.Getenv(env)
		if opts.APIKey == "" {
			return nil, fmt.Errorf("%s environment variable is required for the %s provider", env, cfg.Provider)
		}
	}
	if cfg.Provider == config.ProviderOllama {
		opts.BaseURL = cfg.OllamaHost
	}
	return llm.NewProvider(opts)
}

// createAssistantFromConfig builds the AI flow client, or returns nil with
// the reason when no provider can be created.
func createAssistantFromConfig(cfg *config.Config) (*assist.Assistant, error) {
	provider, err := createLLMProviderFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return assist.New(provider, cfg.Model), nil
}

// createRendererFromConfig returns the configured rendering backend.
func createRendererFromConfig(cfg *config.Config) render.Renderer {
	timeout := time.Duration(cfg.Renderer.TimeoutSeconds) * time.Second
	if cfg.Renderer.Kind == config.RendererKroki {
		return render.NewKroki(cfg.Renderer.KrokiURL, timeout)
	}
	return render.NewMMDC(cfg.Renderer.MMDCPath, timeout)
}

// pngOptionsFromConfig returns the configured raster export defaults.
func pngOptionsFromConfig(cfg *config.Config) export.PNGOptions {
	return export.PNGOptions{Scale: cfg.Export.PNGScale, Background: cfg.Export.Background}
}
