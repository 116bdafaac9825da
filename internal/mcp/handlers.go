package mcp

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/vizlab/internal/assist"
	"github.com/ziadkadry99/vizlab/internal/export"
	"github.com/ziadkadry99/vizlab/internal/render"
)

const noProviderMessage = "No AI provider is configured. Run `vizlab init` and set the provider's API key."

// handleGenerateDiagram turns a description into Mermaid code.
func (s *Server) handleGenerateDiagram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	description, err := request.RequireString("description")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: description"), nil
	}
	if s.deps.Assistant == nil {
		return mcp.NewToolResultError(noProviderMessage), nil
	}

	out, err := s.deps.Assistant.Generate(ctx, assist.GenerateInput{Description: description})
	if err != nil {
		return mcp.NewToolResultError(flowMessage("generation", err)), nil
	}
	return mcp.NewToolResultText(out.Code), nil
}

// handleRepairDiagram repairs Mermaid code and explains the change.
func (s *Server) handleRepairDiagram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := request.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: code"), nil
	}
	if s.deps.Assistant == nil {
		return mcp.NewToolResultError(noProviderMessage), nil
	}

	out, err := s.deps.Assistant.Repair(ctx, assist.RepairInput{Code: code})
	if err != nil {
		return mcp.NewToolResultError(flowMessage("repair", err)), nil
	}

	status := assist.RepairStatus(out, nil)
	var sb strings.Builder
	sb.WriteString(out.RepairedCode)
	sb.WriteString("\n\n")
	sb.WriteString(status.Message)
	return mcp.NewToolResultText(sb.String()), nil
}

// handleSuggestCompletions lists completion snippets, one block per snippet.
func (s *Server) handleSuggestCompletions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prefix, err := request.RequireString("code_prefix")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: code_prefix"), nil
	}
	if s.deps.Assistant == nil {
		return mcp.NewToolResultError(noProviderMessage), nil
	}

	out, err := s.deps.Assistant.Suggest(ctx, assist.SuggestInput{CodePrefix: prefix})
	if err != nil {
		return mcp.NewToolResultError(flowMessage("suggestion", err)), nil
	}
	if len(out.Suggestions) == 0 {
		return mcp.NewToolResultText("No suggestions."), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d suggestion(s):\n", len(out.Suggestions)))
	for i, sug := range out.Suggestions {
		sb.WriteString(fmt.Sprintf("\n--- Suggestion %d ---\n%s\n", i+1, sug))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleRenderDiagram renders code with the configured renderer.
func (s *Server) handleRenderDiagram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := request.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: code"), nil
	}
	if strings.TrimSpace(code) == "" {
		return mcp.NewToolResultError("code is empty"), nil
	}

	opts := s.deps.Defaults
	if theme := request.GetString("theme", ""); theme != "" {
		opts.Theme = render.Theme(theme)
	}
	if font := request.GetString("font_family", ""); font != "" {
		opts.FontFamily = font
	}
	if err := opts.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	svg, err := s.deps.Renderer.Render(ctx, render.NewRenderID(), code, opts.Config())
	if err != nil {
		var syn *render.SyntaxError
		if errors.As(err, &syn) {
			return mcp.NewToolResultError("Diagram Error: " + syn.Message), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("render failed: %v", err)), nil
	}

	switch format := request.GetString("format", "svg"); format {
	case "svg":
		return mcp.NewToolResultText(svg), nil
	case "png":
		d, err := export.PNG(svg, export.PNGOptions{
			Scale:      s.deps.PNGScale,
			Background: request.GetString("background", ""),
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("png export failed: %v", err)), nil
		}
		return mcp.NewToolResultImage("Rendered "+d.Filename, base64.StdEncoding.EncodeToString(d.Data), d.ContentType), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unsupported format %q", format)), nil
	}
}

// handleListOptions describes the offered themes and fonts.
func (s *Server) handleListOptions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var sb strings.Builder
	sb.WriteString("Themes:\n")
	for _, t := range render.Themes {
		marker := ""
		if t == s.deps.Defaults.Theme {
			marker = " (default)"
		}
		sb.WriteString(fmt.Sprintf("- %s%s\n", t, marker))
	}
	sb.WriteString("\nFont families:\n")
	for _, f := range render.Fonts {
		marker := ""
		if f.Value == s.deps.Defaults.FontFamily {
			marker = " (default)"
		}
		sb.WriteString(fmt.Sprintf("- %s: %s%s\n", f.Value, f.Label, marker))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func flowMessage(what string, err error) string {
	if errors.Is(err, assist.ErrEmptyInput) {
		return "the input is empty"
	}
	return fmt.Sprintf("AI %s failed. Please try again.", what)
}
