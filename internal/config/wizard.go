package config

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/manifoldco/promptui"
)

// detectRenderer prefers a locally installed mermaid CLI and falls back to
// the public Kroki service.
func detectRenderer() RendererKind {
	if _, err := exec.LookPath("mmdc"); err == nil {
		return RendererMMDC
	}
	return RendererKroki
}

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to vizlab! Let's configure your editor.")
	fmt.Println()

	cfg := DefaultConfig()

	providerPrompt := promptui.Select{
		Label: "Select LLM provider for AI generation and repair",
		Items: []string{"google", "anthropic", "openai", "ollama", "minimax", "openrouter"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)

	qualityPrompt := promptui.Select{
		Label: "Select quality tier",
		Items: []string{
			"lite   — fast & cheap",
			"normal — balanced",
			"max    — highest quality",
		},
	}
	qualityIdx, _, err := qualityPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("quality selection: %w", err)
	}
	tiers := []QualityTier{QualityLite, QualityNormal, QualityMax}
	cfg.Quality = tiers[qualityIdx]
	cfg.Model = GetPreset(cfg.Provider, cfg.Quality).Model

	detected := detectRenderer()
	rendererItems := []string{string(RendererMMDC), string(RendererKroki)}
	if detected == RendererKroki {
		rendererItems = []string{string(RendererKroki), string(RendererMMDC)}
	}
	rendererPrompt := promptui.Select{
		Label: "Select diagram renderer",
		Items: rendererItems,
	}
	_, rendererStr, err := rendererPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("renderer selection: %w", err)
	}
	cfg.Renderer.Kind = RendererKind(rendererStr)

	if cfg.Renderer.Kind == RendererKroki {
		urlPrompt := promptui.Prompt{
			Label:   "Kroki server URL",
			Default: cfg.Renderer.KrokiURL,
		}
		cfg.Renderer.KrokiURL, err = urlPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("kroki url: %w", err)
		}
	}

	portPrompt := promptui.Prompt{
		Label:   "Port for the editor server",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("enter a port between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	themePrompt := promptui.Select{
		Label: "Default diagram theme",
		Items: []string{"base", "default", "dark", "forest", "neutral"},
	}
	_, cfg.Diagram.Theme, err = themePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("theme selection: %w", err)
	}

	envVar := APIKeyEnvVar(cfg.Provider)
	if envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment (or .env) before using AI features.\n", envVar)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}
