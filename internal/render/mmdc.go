package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// MMDC renders diagrams by running the mermaid CLI as a subprocess.
type MMDC struct {
	bin     string
	timeout time.Duration
}

// NewMMDC creates a renderer that invokes bin (usually "mmdc").
func NewMMDC(bin string, timeout time.Duration) *MMDC {
	if bin == "" {
		bin = "mmdc"
	}
	return &MMDC{bin: bin, timeout: timeout}
}

func (m *MMDC) Name() string {
	return "mmdc"
}

func (m *MMDC) Render(ctx context.Context, id, source string, cfg LibraryConfig) (string, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	tmpDir, err := os.MkdirTemp("", "vizlab-render-")
	if err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	inputPath := filepath.Join(tmpDir, "diagram.mmd")
	outputPath := filepath.Join(tmpDir, "diagram.svg")
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(inputPath, []byte(source), 0o644); err != nil {
		return "", fmt.Errorf("writing diagram source: %w", err)
	}
	cfgJSON, err := cfg.JSON()
	if err != nil {
		return "", fmt.Errorf("encoding renderer config: %w", err)
	}
	if err := os.WriteFile(configPath, cfgJSON, 0o644); err != nil {
		return "", fmt.Errorf("writing renderer config: %w", err)
	}

	args := []string{
		"-i", inputPath,
		"-o", outputPath,
		"-c", configPath,
		"-I", id,
		"-b", "transparent",
		"-q",
	}

	cmd := exec.CommandContext(ctx, m.bin, args...)
	cmd.Dir = tmpDir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("mmdc: %w", ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &SyntaxError{Message: cleanLibraryError(stderr.String())}
		}
		return "", fmt.Errorf("running %s: %w", m.bin, err)
	}

	svg, err := os.ReadFile(outputPath)
	if err != nil {
		return "", fmt.Errorf("mmdc produced no SVG: %w", err)
	}
	return string(svg), nil
}
