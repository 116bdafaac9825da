// Package assist implements the three AI flows of the editor: generating
// diagram text from a description, repairing diagram text, and suggesting
// completions for a prefix.
package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/ziadkadry99/vizlab/internal/llm"
)

const (
	flowGenerate = "generate"
	flowRepair   = "repair"
	flowSuggest  = "suggest"
)

// GenerateInput is the input of the generate flow.
type GenerateInput struct {
	Description string `json:"description"`
}

// GenerateOutput is the result of the generate flow.
type GenerateOutput struct {
	Code string `json:"mermaidCode"`
}

// RepairInput is the input of the repair flow.
type RepairInput struct {
	Code string `json:"mermaidCode"`
}

// RepairOutput is the result of the repair flow. Explanation is empty when
// nothing was changed.
type RepairOutput struct {
	RepairedCode string `json:"repairedMermaidCode"`
	Explanation  string `json:"explanation,omitempty"`
}

// SuggestInput is the input of the suggest flow.
type SuggestInput struct {
	CodePrefix string `json:"codePrefix"`
}

// SuggestOutput is the result of the suggest flow.
type SuggestOutput struct {
	Suggestions []string `json:"suggestions"`
}

// Assistant runs the flows against an injected provider. It holds no
// per-request state and is safe for concurrent use.
type Assistant struct {
	provider llm.Provider
	model    string
}

// New creates an Assistant. model overrides the provider's default when set.
func New(provider llm.Provider, model string) *Assistant {
	return &Assistant{provider: provider, model: model}
}

// Generate turns a natural-language description into diagram text.
func (a *Assistant) Generate(ctx context.Context, in GenerateInput) (*GenerateOutput, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, ErrEmptyInput
	}

	var out struct {
		Code *string `json:"mermaidCode"`
	}
	if err := a.run(ctx, flowGenerate, generateSystemPrompt, generatePrompt(in.Description), &out); err != nil {
		return nil, err
	}
	if out.Code == nil {
		return nil, flowErr(flowGenerate, fmt.Errorf("response is missing mermaidCode"))
	}
	code := stripCodeFence(*out.Code)
	if strings.TrimSpace(code) == "" {
		return nil, flowErr(flowGenerate, fmt.Errorf("response contained no diagram text"))
	}
	return &GenerateOutput{Code: code}, nil
}

// Repair returns corrected diagram text. Valid input comes back unchanged
// without an explanation.
func (a *Assistant) Repair(ctx context.Context, in RepairInput) (*RepairOutput, error) {
	var out struct {
		Code        *string `json:"repairedMermaidCode"`
		Explanation string  `json:"explanation"`
	}
	if err := a.run(ctx, flowRepair, repairSystemPrompt, repairPrompt(in.Code), &out); err != nil {
		return nil, err
	}
	if out.Code == nil {
		return nil, flowErr(flowRepair, fmt.Errorf("response is missing repairedMermaidCode"))
	}
	return &RepairOutput{
		RepairedCode: stripCodeFence(*out.Code),
		Explanation:  strings.TrimSpace(out.Explanation),
	}, nil
}

// Suggest returns candidate completions for a code prefix.
func (a *Assistant) Suggest(ctx context.Context, in SuggestInput) (*SuggestOutput, error) {
	var out struct {
		Suggestions *[]string `json:"suggestions"`
	}
	if err := a.run(ctx, flowSuggest, suggestSystemPrompt, suggestPrompt(in.CodePrefix), &out); err != nil {
		return nil, err
	}
	if out.Suggestions == nil {
		return nil, flowErr(flowSuggest, fmt.Errorf("response is missing suggestions"))
	}
	return &SuggestOutput{Suggestions: *out.Suggestions}, nil
}

// run performs exactly one provider call and decodes the JSON reply into out.
func (a *Assistant) run(ctx context.Context, flow, system, user string, out any) error {
	resp, err := a.provider.Complete(ctx, llm.CompletionRequest{
		Model: a.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: system},
			{Role: llm.RoleUser, Content: user},
		},
		MaxTokens:   2048,
		Temperature: 0.2,
		JSONMode:    true,
	})
	if err != nil {
		return flowErr(flow, err)
	}

	if cost := llm.EstimateResponseCost(resp, a.model); cost > 0 {
		log.Printf("assist: %s via %s used %d/%d tokens (~$%.5f)", flow, a.provider.Name(), resp.InputTokens, resp.OutputTokens, cost)
	}

	raw := stripCodeFence(resp.Content)
	if strings.TrimSpace(raw) == "" {
		return flowErr(flow, fmt.Errorf("empty response"))
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return flowErr(flow, fmt.Errorf("json parse: %w", err))
	}
	return nil
}

// stripCodeFence removes one surrounding markdown code fence (```lang ... ```)
// and the whitespace around it. Text without a fence is returned unchanged.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return raw
	}
	lines := strings.Split(s, "\n")
	if len(lines) < 2 {
		return strings.Trim(s, "`")
	}
	end := len(lines)
	if strings.TrimSpace(lines[end-1]) == "```" {
		end--
	}
	return strings.TrimSpace(strings.Join(lines[1:end], "\n"))
}
