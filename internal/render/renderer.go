package render

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Renderer turns diagram source into an SVG document using an external
// rendering library.
type Renderer interface {
	// Render returns the SVG markup for source. id is used as the root
	// element id of the produced graphic. A source rejected by the library
	// yields a *SyntaxError.
	Render(ctx context.Context, id, source string, cfg LibraryConfig) (string, error)
	// Name identifies the backend in logs.
	Name() string
}

// SyntaxError is returned when the rendering library rejects the source.
type SyntaxError struct {
	Message string
}

func (e *SyntaxError) Error() string {
	return e.Message
}

// NewRenderID returns a unique element id for one render invocation.
func NewRenderID() string {
	return "mermaid-diagram-" + uuid.NewString()
}

// cleanLibraryError strips stack frames and blank lines from the library's
// error output, leaving the human readable part.
func cleanLibraryError(raw string) string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "at ") {
			continue
		}
		lines = append(lines, strings.TrimRight(line, " \t\r"))
	}
	msg := strings.Join(lines, "\n")
	msg = strings.TrimPrefix(msg, "Error: ")
	if msg == "" {
		return "Error rendering diagram."
	}
	return msg
}
