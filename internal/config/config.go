package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/vizlab/internal/export"
	"github.com/ziadkadry99/vizlab/internal/render"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = ".vizlab.yml"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (VIZLAB_*). Nested keys are separated
// by a double underscore: VIZLAB_SERVER__PORT -> server.port.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider("VIZLAB_", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// envKey maps VIZLAB_EDITOR__DEBOUNCE_MS to editor.debounce_ms.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, "VIZLAB_"))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validProviders = map[ProviderType]bool{
	ProviderAnthropic:  true,
	ProviderOpenAI:     true,
	ProviderGoogle:     true,
	ProviderOllama:     true,
	ProviderMiniMax:    true,
	ProviderOpenRouter: true,
}

var validQualityTiers = map[QualityTier]bool{
	QualityLite:   true,
	QualityNormal: true,
	QualityMax:    true,
}

var validRenderers = map[RendererKind]bool{
	RendererMMDC:  true,
	RendererKroki: true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if !validProviders[c.Provider] {
		return fmt.Errorf("invalid provider %q: must be one of anthropic, openai, google, ollama, minimax, openrouter", c.Provider)
	}

	if c.Model == "" {
		return fmt.Errorf("model is required")
	}

	if c.Quality != "" && !validQualityTiers[c.Quality] {
		return fmt.Errorf("invalid quality %q: must be one of lite, normal, max", c.Quality)
	}

	if c.RequestsPerMinute < 0 {
		return fmt.Errorf("requests_per_minute must be non-negative")
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}

	if !validRenderers[c.Renderer.Kind] {
		return fmt.Errorf("invalid renderer.kind %q: must be one of mmdc, kroki", c.Renderer.Kind)
	}
	if c.Renderer.Kind == RendererMMDC && c.Renderer.MMDCPath == "" {
		return fmt.Errorf("renderer.mmdc_path is required for the mmdc renderer")
	}
	if c.Renderer.Kind == RendererKroki && c.Renderer.KrokiURL == "" {
		return fmt.Errorf("renderer.kroki_url is required for the kroki renderer")
	}
	if c.Renderer.TimeoutSeconds <= 0 {
		return fmt.Errorf("renderer.timeout_seconds must be positive")
	}

	if c.Editor.DebounceMS < 0 || c.Editor.SettleMS < 0 {
		return fmt.Errorf("editor delays must be non-negative")
	}

	if c.Export.PNGScale <= 0 || c.Export.PNGScale > export.MaxScale {
		return fmt.Errorf("export.png_scale must be in (0, %g]", export.MaxScale)
	}

	if err := c.DiagramOptions().Validate(); err != nil {
		return fmt.Errorf("diagram: %w", err)
	}

	return nil
}

// DiagramOptions converts the configured initial diagram settings into
// rendering options.
func (c *Config) DiagramOptions() render.Options {
	return render.Options{
		Theme:                render.Theme(c.Diagram.Theme),
		FontFamily:           c.Diagram.FontFamily,
		FlowchartUseMaxWidth: c.Diagram.FlowchartUseMaxWidth,
	}
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderGoogle:
		return "GOOGLE_API_KEY"
	case ProviderMiniMax:
		return "MINIMAX_API_KEY"
	case ProviderOpenRouter:
		return "OPENROUTER_API_KEY"
	default:
		return ""
	}
}
