package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const anthropicAPIURL = "https://api.anthropic.com/v1/messages"

// AnthropicProvider implements Provider using the Anthropic Messages API via direct HTTP.
type AnthropicProvider struct {
	apiKey string
	model  string
	url    string
	client *http.Client
}

// NewAnthropicProvider creates a new Anthropic provider. An empty baseURL
// selects the public API.
func NewAnthropicProvider(apiKey, model, baseURL string) *AnthropicProvider {
	url := anthropicAPIURL
	if baseURL != "" {
		url = strings.TrimRight(baseURL, "/") + "/v1/messages"
	}
	return &AnthropicProvider{
		apiKey: apiKey,
		model:  model,
		url:    url,
		client: newHTTPClient(),
	}
}

func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content    []anthropicContent `json:"content"`
	Model      string             `json:"model"`
	StopReason string             `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (p *AnthropicProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	apiReq := anthropicRequest{
		Model:       req.modelOr(p.model),
		MaxTokens:   req.maxTokensOr(4096),
		Temperature: req.Temperature,
	}

	// The Messages API takes system text separately. JSON mode has no native
	// switch here, so it is requested in the system prompt.
	var system []string
	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
			system = append(system, msg.Content)
		case RoleUser, RoleAssistant:
			apiReq.Messages = append(apiReq.Messages, anthropicMessage{Role: string(msg.Role), Content: msg.Content})
		}
	}
	if req.JSONMode {
		system = append(system, "Respond with a single JSON object and nothing else.")
	}
	apiReq.System = strings.Join(system, "\n\n")

	status, respBody, err := postJSON(ctx, p.client, "anthropic", p.url, map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": "2023-06-01",
	}, apiReq)
	if err != nil {
		return nil, err
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal anthropic response: %w", err)
	}
	if apiResp.Error != nil {
		return nil, fmt.Errorf("anthropic API error (%s): %s", apiResp.Error.Type, apiResp.Error.Message)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("anthropic returned status %d: %s", status, string(respBody))
	}

	var content strings.Builder
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	return &CompletionResponse{
		Content:      content.String(),
		InputTokens:  apiResp.Usage.InputTokens,
		OutputTokens: apiResp.Usage.OutputTokens,
		Model:        apiResp.Model,
		FinishReason: apiResp.StopReason,
	}, nil
}
