package mcp

import "github.com/mark3labs/mcp-go/mcp"

// generateDiagramTool defines the generate_diagram MCP tool.
var generateDiagramTool = mcp.NewTool("generate_diagram",
	mcp.WithDescription("Generate Mermaid diagram code from a natural language description."),
	mcp.WithString("description",
		mcp.Required(),
		mcp.Description("What the diagram should show"),
	),
)

// repairDiagramTool defines the repair_diagram MCP tool.
var repairDiagramTool = mcp.NewTool("repair_diagram",
	mcp.WithDescription("Fix syntax errors in Mermaid code. Valid code is returned unchanged."),
	mcp.WithString("code",
		mcp.Required(),
		mcp.Description("Mermaid code to repair"),
	),
)

// suggestCompletionsTool defines the suggest_completions MCP tool.
var suggestCompletionsTool = mcp.NewTool("suggest_completions",
	mcp.WithDescription("Suggest snippets that complete a partial Mermaid document."),
	mcp.WithString("code_prefix",
		mcp.Required(),
		mcp.Description("The Mermaid code written so far"),
	),
)

// renderDiagramTool defines the render_diagram MCP tool.
var renderDiagramTool = mcp.NewTool("render_diagram",
	mcp.WithDescription("Render Mermaid code to SVG markup or a PNG image. Syntax errors are reported with the renderer's message."),
	mcp.WithString("code",
		mcp.Required(),
		mcp.Description("Mermaid code to render"),
	),
	mcp.WithString("format",
		mcp.Description("Output format (default svg)"),
		mcp.Enum("svg", "png"),
	),
	mcp.WithString("theme",
		mcp.Description("Diagram theme"),
		mcp.Enum("base", "default", "dark", "forest", "neutral"),
	),
	mcp.WithString("font_family",
		mcp.Description("Font family, one of the values listed by list_options"),
	),
	mcp.WithString("background",
		mcp.Description("PNG background colour (default white)"),
	),
)

// listOptionsTool defines the list_options MCP tool.
var listOptionsTool = mcp.NewTool("list_options",
	mcp.WithDescription("List the available diagram themes and font families."),
)
