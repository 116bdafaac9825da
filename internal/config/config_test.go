package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != ProviderGoogle {
		t.Errorf("expected default provider %q, got %q", ProviderGoogle, cfg.Provider)
	}
	if cfg.Editor.DebounceMS != 500 {
		t.Errorf("expected default debounce 500ms, got %d", cfg.Editor.DebounceMS)
	}
	if cfg.Export.PNGScale != 2 {
		t.Errorf("expected default png scale 2, got %f", cfg.Export.PNGScale)
	}
	if cfg.Diagram.Theme != "base" {
		t.Errorf("expected default theme base, got %q", cfg.Diagram.Theme)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.vizlab.yml")

	original := DefaultConfig()
	original.Provider = ProviderOpenAI
	original.Model = "gpt-4o"
	original.Quality = QualityMax
	original.Server.Port = 8123
	original.Renderer.Kind = RendererKroki
	original.Diagram.Theme = "forest"
	original.Diagram.FlowchartUseMaxWidth = false
	original.Export.PNGScale = 3

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Provider != original.Provider {
		t.Errorf("provider: got %q, want %q", loaded.Provider, original.Provider)
	}
	if loaded.Model != original.Model {
		t.Errorf("model: got %q, want %q", loaded.Model, original.Model)
	}
	if loaded.Server.Port != 8123 {
		t.Errorf("server.port: got %d, want 8123", loaded.Server.Port)
	}
	if loaded.Renderer.Kind != RendererKroki {
		t.Errorf("renderer.kind: got %q, want %q", loaded.Renderer.Kind, RendererKroki)
	}
	if loaded.Diagram.Theme != "forest" {
		t.Errorf("diagram.theme: got %q, want forest", loaded.Diagram.Theme)
	}
	if loaded.Diagram.FlowchartUseMaxWidth {
		t.Error("diagram.flowchart_use_max_width: got true, want false")
	}
	if loaded.Export.PNGScale != 3 {
		t.Errorf("export.png_scale: got %f, want 3", loaded.Export.PNGScale)
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent.yml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Provider != ProviderGoogle {
		t.Errorf("expected default provider, got %q", cfg.Provider)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yml")
	if err := DefaultConfig().Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("VIZLAB_PROVIDER", "openai")
	t.Setenv("VIZLAB_SERVER__PORT", "7777")
	t.Setenv("VIZLAB_EDITOR__DEBOUNCE_MS", "250")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Provider != ProviderOpenAI {
		t.Errorf("env override failed: got %q, want %q", loaded.Provider, ProviderOpenAI)
	}
	if loaded.Server.Port != 7777 {
		t.Errorf("nested env override failed: got %d, want 7777", loaded.Server.Port)
	}
	if loaded.Editor.DebounceMS != 250 {
		t.Errorf("nested env override failed: got %d, want 250", loaded.Editor.DebounceMS)
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"VIZLAB_PROVIDER", "provider"},
		{"VIZLAB_SERVER__PORT", "server.port"},
		{"VIZLAB_RENDERER__MMDC_PATH", "renderer.mmdc_path"},
	}
	for _, tt := range tests {
		if got := envKey(tt.in); got != tt.want {
			t.Errorf("envKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"empty provider", func(c *Config) { c.Provider = "" }, false},
		{"invalid provider", func(c *Config) { c.Provider = "invalid" }, false},
		{"empty model", func(c *Config) { c.Model = "" }, false},
		{"invalid quality", func(c *Config) { c.Quality = "ultra" }, false},
		{"negative rpm", func(c *Config) { c.RequestsPerMinute = -1 }, false},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, false},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, false},
		{"unknown renderer", func(c *Config) { c.Renderer.Kind = "graphviz" }, false},
		{"kroki without url", func(c *Config) { c.Renderer.Kind = RendererKroki; c.Renderer.KrokiURL = "" }, false},
		{"zero timeout", func(c *Config) { c.Renderer.TimeoutSeconds = 0 }, false},
		{"negative debounce", func(c *Config) { c.Editor.DebounceMS = -5 }, false},
		{"zero scale", func(c *Config) { c.Export.PNGScale = 0 }, false},
		{"scale above limit", func(c *Config) { c.Export.PNGScale = 10000 }, false},
		{"scale at limit", func(c *Config) { c.Export.PNGScale = 10 }, true},
		{"unknown theme", func(c *Config) { c.Diagram.Theme = "solarized" }, false},
		{"unknown font", func(c *Config) { c.Diagram.FontFamily = "Comic Sans" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("expected valid config, got: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	p := GetPreset(ProviderAnthropic, QualityLite)
	if p.Model != "claude-haiku-4-5-20251001" {
		t.Errorf("expected haiku model, got %q", p.Model)
	}

	p = GetPreset(ProviderOpenAI, QualityMax)
	if p.Model != "gpt-4" {
		t.Errorf("expected gpt-4, got %q", p.Model)
	}

	p = GetPreset("unknown", QualityLite)
	if p.Model != "gemini-2.0-flash" {
		t.Errorf("expected fallback to gemini-2.0-flash, got %q", p.Model)
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	tests := []struct {
		provider ProviderType
		want     string
	}{
		{ProviderAnthropic, "ANTHROPIC_API_KEY"},
		{ProviderOpenAI, "OPENAI_API_KEY"},
		{ProviderGoogle, "GOOGLE_API_KEY"},
		{ProviderOpenRouter, "OPENROUTER_API_KEY"},
		{ProviderOllama, ""},
	}
	for _, tt := range tests {
		got := APIKeyEnvVar(tt.provider)
		if got != tt.want {
			t.Errorf("APIKeyEnvVar(%q) = %q, want %q", tt.provider, got, tt.want)
		}
	}
}
