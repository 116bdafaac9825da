package config

// QualityTier controls the model selection and trade-off between speed/cost and quality.
type QualityTier string

const (
	QualityLite   QualityTier = "lite"
	QualityNormal QualityTier = "normal"
	QualityMax    QualityTier = "max"
)

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderAnthropic  ProviderType = "anthropic"
	ProviderOpenAI     ProviderType = "openai"
	ProviderGoogle     ProviderType = "google"
	ProviderOllama     ProviderType = "ollama"
	ProviderMiniMax    ProviderType = "minimax"
	ProviderOpenRouter ProviderType = "openrouter"
)

// RendererKind selects the diagram rendering backend.
type RendererKind string

const (
	RendererMMDC  RendererKind = "mmdc"
	RendererKroki RendererKind = "kroki"
)

// Config is the top-level vizlab configuration, corresponding to .vizlab.yml.
type Config struct {
	Provider          ProviderType   `yaml:"provider" koanf:"provider"`
	Model             string         `yaml:"model" koanf:"model"`
	Quality           QualityTier    `yaml:"quality" koanf:"quality"`
	OllamaHost        string         `yaml:"ollama_host" koanf:"ollama_host"`
	RequestsPerMinute int            `yaml:"requests_per_minute" koanf:"requests_per_minute"`
	DataDir           string         `yaml:"data_dir" koanf:"data_dir"`
	Server            ServerConfig   `yaml:"server" koanf:"server"`
	Renderer          RendererConfig `yaml:"renderer" koanf:"renderer"`
	Editor            EditorConfig   `yaml:"editor" koanf:"editor"`
	Export            ExportConfig   `yaml:"export" koanf:"export"`
	Diagram           DiagramConfig  `yaml:"diagram" koanf:"diagram"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// RendererConfig selects and configures the rendering backend.
type RendererConfig struct {
	Kind           RendererKind `yaml:"kind" koanf:"kind"`
	MMDCPath       string       `yaml:"mmdc_path" koanf:"mmdc_path"`
	KrokiURL       string       `yaml:"kroki_url" koanf:"kroki_url"`
	TimeoutSeconds int          `yaml:"timeout_seconds" koanf:"timeout_seconds"`
}

// EditorConfig tunes the edit/render loop.
type EditorConfig struct {
	DebounceMS int `yaml:"debounce_ms" koanf:"debounce_ms"`
	SettleMS   int `yaml:"settle_ms" koanf:"settle_ms"`
}

// ExportConfig holds raster export defaults.
type ExportConfig struct {
	PNGScale   float64 `yaml:"png_scale" koanf:"png_scale"`
	Background string  `yaml:"background" koanf:"background"`
}

// DiagramConfig holds the initial rendering options used when nothing is persisted.
type DiagramConfig struct {
	Theme                string `yaml:"theme" koanf:"theme"`
	FontFamily           string `yaml:"font_family" koanf:"font_family"`
	FlowchartUseMaxWidth bool   `yaml:"flowchart_use_max_width" koanf:"flowchart_use_max_width"`
}
