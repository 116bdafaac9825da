package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// Base URLs of OpenAI-compatible services.
const (
	minimaxBaseURL    = "https://api.minimax.io/v1"
	openRouterBaseURL = "https://openrouter.ai/api/v1"
)

// OpenAIProvider implements Provider for OpenAI and any service that speaks
// the Chat Completions API (MiniMax, OpenRouter).
type OpenAIProvider struct {
	name   string
	client *openai.Client
	model  string
	// clampTemperature keeps temperature in (0, 1] for services that reject
	// values outside it.
	clampTemperature bool
}

// NewOpenAIProvider creates a provider for the OpenAI API. An empty baseURL
// selects the public API.
func NewOpenAIProvider(apiKey, model, baseURL string) *OpenAIProvider {
	return newOpenAICompatible("openai", apiKey, model, baseURL)
}

func newOpenAICompatible(name, apiKey, model, baseURL string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIProvider{
		name:   name,
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (p *OpenAIProvider) Name() string {
	return p.name
}

func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	temp := req.Temperature
	if p.clampTemperature {
		if temp <= 0 {
			temp = 0.01
		} else if temp > 1.0 {
			temp = 1.0
		}
	}

	apiReq := openai.ChatCompletionRequest{
		Model:       req.modelOr(p.model),
		MaxTokens:   req.maxTokensOr(4096),
		Temperature: float32(temp),
	}
	for _, msg := range req.Messages {
		apiReq.Messages = append(apiReq.Messages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	if req.JSONMode {
		apiReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		return nil, err
	}

	out := &CompletionResponse{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		Model:        resp.Model,
	}
	if len(resp.Choices) > 0 {
		out.Content = resp.Choices[0].Message.Content
		out.FinishReason = string(resp.Choices[0].FinishReason)
	}
	return out, nil
}
