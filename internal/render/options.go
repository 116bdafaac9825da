package render

import (
	"encoding/json"
	"fmt"
)

// Theme is a diagram colour theme understood by the rendering library.
type Theme string

const (
	ThemeBase    Theme = "base"
	ThemeDefault Theme = "default"
	ThemeDark    Theme = "dark"
	ThemeForest  Theme = "forest"
	ThemeNeutral Theme = "neutral"
)

// Themes lists the offered themes in display order.
var Themes = []Theme{ThemeBase, ThemeDefault, ThemeDark, ThemeForest, ThemeNeutral}

// Font is an offered font family with its display label.
type Font struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Fonts lists the offered font families in display order.
var Fonts = []Font{
	{Value: "Inter", Label: "Inter (App Default)"},
	{Value: "Source Code Pro", Label: "Source Code Pro (Code Font)"},
	{Value: "Arial, Helvetica, sans-serif", Label: "Arial / Helvetica"},
	{Value: "Verdana, Geneva, sans-serif", Label: "Verdana / Geneva"},
	{Value: `"Times New Roman", Times, serif`, Label: "Times New Roman"},
	{Value: "monospace", Label: "Monospace"},
}

// SecurityLevel is always "loose" so that labels may carry HTML.
const SecurityLevel = "loose"

// Options are the user-tunable rendering options.
type Options struct {
	Theme                Theme  `json:"theme"`
	FontFamily           string `json:"font_family"`
	FlowchartUseMaxWidth bool   `json:"flowchart_use_max_width"`
}

// DefaultOptions returns the options used when nothing has been persisted.
func DefaultOptions() Options {
	return Options{
		Theme:                ThemeBase,
		FontFamily:           Fonts[0].Value,
		FlowchartUseMaxWidth: true,
	}
}

// ValidTheme reports whether t is one of the offered themes.
func ValidTheme(t Theme) bool {
	for _, th := range Themes {
		if th == t {
			return true
		}
	}
	return false
}

// ValidFont reports whether f is one of the offered font families.
func ValidFont(f string) bool {
	for _, font := range Fonts {
		if font.Value == f {
			return true
		}
	}
	return false
}

// Validate checks that every option is one of the offered choices.
func (o Options) Validate() error {
	if !ValidTheme(o.Theme) {
		return fmt.Errorf("unknown theme %q", o.Theme)
	}
	if !ValidFont(o.FontFamily) {
		return fmt.Errorf("unknown font family %q", o.FontFamily)
	}
	return nil
}

// FlowchartConfig carries flowchart layout options.
type FlowchartConfig struct {
	UseMaxWidth bool `json:"useMaxWidth"`
}

// LibraryConfig is the configuration object handed to the rendering library.
// It is rebuilt from Options for every render cycle.
type LibraryConfig struct {
	StartOnLoad   bool            `json:"startOnLoad"`
	Theme         Theme           `json:"theme"`
	SecurityLevel string          `json:"securityLevel"`
	FontFamily    string          `json:"fontFamily"`
	Flowchart     FlowchartConfig `json:"flowchart"`
}

// Config builds the library configuration for these options.
func (o Options) Config() LibraryConfig {
	return LibraryConfig{
		StartOnLoad:   false,
		Theme:         o.Theme,
		SecurityLevel: SecurityLevel,
		FontFamily:    o.FontFamily,
		Flowchart:     FlowchartConfig{UseMaxWidth: o.FlowchartUseMaxWidth},
	}
}

// JSON encodes the configuration as the library expects it.
func (c LibraryConfig) JSON() ([]byte, error) {
	return json.Marshal(c)
}

// initDirective is the subset of LibraryConfig accepted inside an inline
// %%{init: ...}%% directive. securityLevel is rejected there by the library.
type initDirective struct {
	Theme      Theme           `json:"theme"`
	FontFamily string          `json:"fontFamily"`
	Flowchart  FlowchartConfig `json:"flowchart"`
}

// Directive returns an inline init directive line carrying the configuration.
func (c LibraryConfig) Directive() (string, error) {
	data, err := json.Marshal(initDirective{
		Theme:      c.Theme,
		FontFamily: c.FontFamily,
		Flowchart:  c.Flowchart,
	})
	if err != nil {
		return "", err
	}
	return "%%{init: " + string(data) + "}%%", nil
}
