package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// MockProvider is a test provider that records calls and returns canned responses.
type MockProvider struct {
	mu       sync.Mutex
	Calls    []CompletionRequest
	Response *CompletionResponse
	Err      error
	ProvName string
}

func NewMockProvider(name string) *MockProvider {
	return &MockProvider{
		ProvName: name,
		Response: &CompletionResponse{
			Content:      "mock response",
			InputTokens:  10,
			OutputTokens: 20,
			Model:        "mock-model",
			FinishReason: "stop",
		},
	}
}

func (m *MockProvider) Name() string {
	return m.ProvName
}

func (m *MockProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Response, nil
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

func jsonRequest() CompletionRequest {
	return CompletionRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: "be terse"},
			{Role: RoleUser, Content: "hello"},
		},
		Temperature: 0.2,
		JSONMode:    true,
	}
}

// --- Factory ---

func TestFactoryReturnsErrorForMissingAPIKey(t *testing.T) {
	for _, p := range []string{"anthropic", "openai", "google", "minimax", "openrouter"} {
		_, err := NewProvider(Options{Provider: p, Model: "some-model"})
		if err == nil {
			t.Errorf("expected error for provider %q with missing API key", p)
		}
	}
}

func TestFactoryReturnsErrorForUnknownProvider(t *testing.T) {
	_, err := NewProvider(Options{Provider: "unknown", Model: "some-model", APIKey: "k"})
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestFactoryIgnoresEnvironment(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "from-env")
	if _, err := NewProvider(Options{Provider: "google", Model: "gemini-2.0-flash"}); err == nil {
		t.Error("expected error: keys must be passed explicitly")
	}
}

func TestFactoryCreatesOllamaWithDefaultHost(t *testing.T) {
	provider, err := NewProvider(Options{Provider: "ollama", Model: "llama3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ollamaP, ok := provider.(*OllamaProvider)
	if !ok {
		t.Fatal("expected *OllamaProvider")
	}
	if ollamaP.baseURL != "http://localhost:11434" {
		t.Errorf("expected default host, got %q", ollamaP.baseURL)
	}
}

func TestFactoryNames(t *testing.T) {
	for _, name := range []string{"anthropic", "openai", "google", "minimax", "openrouter"} {
		p, err := NewProvider(Options{Provider: name, Model: "m", APIKey: "test-key"})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if p.Name() != name {
			t.Errorf("expected name %q, got %q", name, p.Name())
		}
	}
}

func TestFactoryWrapsRateLimiter(t *testing.T) {
	p, err := NewProvider(Options{Provider: "ollama", Model: "llama3", RequestsPerMinute: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rl, ok := p.(*RateLimitedProvider)
	if !ok {
		t.Fatalf("expected *RateLimitedProvider, got %T", p)
	}
	if _, ok := rl.Unwrap().(*OllamaProvider); !ok {
		t.Errorf("expected wrapped *OllamaProvider, got %T", rl.Unwrap())
	}
}

// --- Providers over HTTP ---

func TestAnthropicProviderComplete(t *testing.T) {
	var got anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "secret" {
			t.Errorf("missing api key header")
		}
		json.NewDecoder(r.Body).Decode(&got)
		io.WriteString(w, `{"content":[{"type":"text","text":"{\"ok\":true}"}],"model":"claude-haiku-4-5-20251001","stop_reason":"end_turn","usage":{"input_tokens":7,"output_tokens":3}}`)
	}))
	defer srv.Close()

	p := NewAnthropicProvider("secret", "claude-haiku-4-5-20251001", srv.URL)
	resp, err := p.Complete(context.Background(), jsonRequest())
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != `{"ok":true}` {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.InputTokens != 7 || resp.OutputTokens != 3 {
		t.Errorf("usage = %d/%d", resp.InputTokens, resp.OutputTokens)
	}
	if !strings.Contains(got.System, "be terse") || !strings.Contains(got.System, "JSON") {
		t.Errorf("system prompt = %q", got.System)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestAnthropicProviderAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"type":"authentication_error","message":"bad key"}}`)
	}))
	defer srv.Close()

	p := NewAnthropicProvider("bad", "m", srv.URL)
	_, err := p.Complete(context.Background(), jsonRequest())
	if err == nil || !strings.Contains(err.Error(), "bad key") {
		t.Errorf("expected API error, got %v", err)
	}
}

func TestGoogleProviderComplete(t *testing.T) {
	var got geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/gemini-2.0-flash:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "secret" {
			t.Errorf("missing key query parameter")
		}
		json.NewDecoder(r.Body).Decode(&got)
		io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"a"},{"text":"b"}]},"finishReason":"STOP"}],"usageMetadata":{"promptTokenCount":4,"candidatesTokenCount":2}}`)
	}))
	defer srv.Close()

	p := NewGoogleProvider("secret", "gemini-2.0-flash", srv.URL)
	resp, err := p.Complete(context.Background(), jsonRequest())
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "ab" || resp.FinishReason != "STOP" {
		t.Errorf("resp = %+v", resp)
	}
	if got.GenerationConfig.ResponseMIMEType != "application/json" {
		t.Errorf("expected JSON response mime type, got %q", got.GenerationConfig.ResponseMIMEType)
	}
	if got.SystemInstruction == nil || got.SystemInstruction.Parts[0].Text != "be terse" {
		t.Errorf("system instruction = %+v", got.SystemInstruction)
	}
}

func TestOllamaProviderComplete(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		io.WriteString(w, `{"message":{"role":"assistant","content":"{}"},"model":"llama3","done_reason":"stop","prompt_eval_count":5,"eval_count":1}`)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL+"/", "llama3")
	resp, err := p.Complete(context.Background(), jsonRequest())
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "{}" || resp.InputTokens != 5 {
		t.Errorf("resp = %+v", resp)
	}
	if got.Format != "json" || got.Stream {
		t.Errorf("request = %+v", got)
	}
}

func TestOllamaProviderStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "missing").Complete(context.Background(), jsonRequest())
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("expected status error, got %v", err)
	}
}

func TestOpenAICompatibleProviderComplete(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"c1","object":"chat.completion","model":"MiniMax-M2.5","choices":[{"index":0,"message":{"role":"assistant","content":"hi"},"finish_reason":"stop"}],"usage":{"prompt_tokens":3,"completion_tokens":2,"total_tokens":5}}`)
	}))
	defer srv.Close()

	p, err := NewProvider(Options{Provider: "minimax", Model: "MiniMax-M2.5", APIKey: "k", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	req := jsonRequest()
	req.Temperature = 0
	resp, err := p.Complete(context.Background(), req)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "hi" || resp.OutputTokens != 2 {
		t.Errorf("resp = %+v", resp)
	}
	if temp, _ := got["temperature"].(float64); temp <= 0 {
		t.Errorf("expected clamped positive temperature, got %v", got["temperature"])
	}
	rf, _ := got["response_format"].(map[string]any)
	if rf["type"] != "json_object" {
		t.Errorf("response_format = %v", got["response_format"])
	}
}

// --- Rate limiting ---

func TestRateLimiterPassesThrough(t *testing.T) {
	mock := NewMockProvider("test")
	rl := NewRateLimitedProvider(mock, 60)

	resp, err := rl.Complete(context.Background(), CompletionRequest{Messages: []Message{{Role: RoleUser, Content: "hello"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "mock response" {
		t.Errorf("expected 'mock response', got %q", resp.Content)
	}
	if rl.Name() != "test" {
		t.Errorf("expected name 'test', got %q", rl.Name())
	}
}

func TestRateLimiterLimitsRequests(t *testing.T) {
	mock := NewMockProvider("test")
	// Allow only 2 requests per minute.
	rl := NewRateLimitedProvider(mock, 2)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	req := CompletionRequest{Messages: []Message{{Role: RoleUser, Content: "hello"}}}
	for i := 0; i < 2; i++ {
		if _, err := rl.Complete(ctx, req); err != nil {
			t.Fatalf("request %d: unexpected error: %v", i, err)
		}
	}

	if _, err := rl.Complete(ctx, req); err == nil {
		t.Error("expected error due to rate limiting + context timeout")
	}
	if mock.CallCount() != 2 {
		t.Errorf("expected 2 calls to reach the provider, got %d", mock.CallCount())
	}
}

// --- Cost ---

func TestEstimateCost(t *testing.T) {
	// claude-sonnet-4-5: $3/1M input, $15/1M output
	cost := EstimateCost("claude-sonnet-4-5-20250929", 1_000_000, 1_000_000)
	if cost < 17.99 || cost > 18.01 {
		t.Errorf("expected cost ~$18, got $%.2f", cost)
	}
	if EstimateCost("unknown-model", 1000, 500) != 0 {
		t.Error("expected 0 for unknown model")
	}
}

func TestEstimateResponseCost(t *testing.T) {
	resp := &CompletionResponse{Model: "models/unlisted", InputTokens: 1_000_000}
	if got := EstimateResponseCost(resp, "gemini-2.0-flash"); got < 0.099 || got > 0.101 {
		t.Errorf("expected fallback pricing ~$0.10, got $%.4f", got)
	}
	if EstimateResponseCost(nil, "gpt-4o") != 0 {
		t.Error("expected 0 for nil response")
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"hi", 1},
		{"hello world!!", 3},
		{"a longer piece of text that has more characters", 11},
	}

	for _, tt := range tests {
		if got := EstimateTokens(tt.text); got != tt.want {
			t.Errorf("EstimateTokens(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
