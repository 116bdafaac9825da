package render

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Kroki renders diagrams through a Kroki server's mermaid endpoint.
// Configuration travels as an inline init directive prepended to the source.
type Kroki struct {
	baseURL string
	client  *http.Client
}

// NewKroki creates a renderer for the Kroki server at baseURL.
func NewKroki(baseURL string, timeout time.Duration) *Kroki {
	return &Kroki{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (k *Kroki) Name() string {
	return "kroki"
}

func (k *Kroki) Render(ctx context.Context, id, source string, cfg LibraryConfig) (string, error) {
	directive, err := cfg.Directive()
	if err != nil {
		return "", fmt.Errorf("encoding init directive: %w", err)
	}
	body := directive + "\n" + source

	url := k.baseURL + "/mermaid/svg"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Accept", "image/svg+xml")

	resp, err := k.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("kroki request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read kroki response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusBadRequest:
		return "", &SyntaxError{Message: cleanLibraryError(string(respBody))}
	default:
		return "", fmt.Errorf("kroki returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return withRootID(string(respBody), id), nil
}

// withRootID sets the id attribute of the root <svg> element. Kroki picks its
// own ids, so the caller's render id is applied afterwards. Mermaid scopes
// its generated styles and marker ids to the root id, so every reference to
// the old id (#old, url(#old...), id="old_...") is renamed with it.
func withRootID(svg, id string) string {
	start := strings.Index(svg, "<svg")
	if start < 0 || id == "" {
		return svg
	}
	end := strings.Index(svg[start:], ">")
	if end < 0 {
		return svg
	}
	tag := svg[start : start+end]
	idx := strings.Index(tag, ` id="`)
	if idx < 0 {
		return svg[:start] + `<svg id="` + id + `"` + svg[start+len("<svg"):]
	}

	valStart := idx + len(` id="`)
	valEnd := strings.Index(tag[valStart:], `"`)
	if valEnd < 0 {
		return svg
	}
	oldID := tag[valStart : valStart+valEnd]
	if oldID == "" || oldID == id {
		newTag := tag[:valStart] + id + tag[valStart+valEnd:]
		return svg[:start] + newTag + svg[start+end:]
	}

	refs := regexp.MustCompile(`([#"])` + regexp.QuoteMeta(oldID) + `([^A-Za-z0-9]|$)`)
	return refs.ReplaceAllString(svg, "${1}"+strings.ReplaceAll(id, "$", "$$")+"${2}")
}
