package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"legal-assistant-be/pkg/llm"
)

const analysisPrompt = `You are a legal document analyst. Analyze the document below and respond with ONLY a JSON object, no markdown fences, matching this schema:

{
  "document_type": "contract type, e.g. Lease Agreement",
  "risk_level": "low | medium | high",
  "overall_risk_score": 0-100,
  "parties": ["named parties"],
  "main_concerns": ["top concerns, most important first"],
  "recommendation": "one-sentence top recommendation"
}

DOCUMENT (%s):
%s`

// Extraction wants determinism, not creativity.
const analysisTemperature = 0.1

// LLMAnalyzer prompts the configured model for a structured risk record and
// parses the JSON out of the reply. An optional model override lets analysis
// run on a different model than chat.
type LLMAnalyzer struct {
	provider llm.LLMProvider
	model    string
}

var _ Analyzer = &LLMAnalyzer{}

func NewLLMAnalyzer(provider llm.LLMProvider, model string) *LLMAnalyzer {
	return &LLMAnalyzer{
		provider: provider,
		model:    model,
	}
}

func (a *LLMAnalyzer) Analyze(ctx context.Context, file *FileRef) (*Result, error) {
	prompt := fmt.Sprintf(analysisPrompt, file.Name, string(file.Content))

	opts := []llm.Option{llm.WithTemperature(analysisTemperature)}
	if a.model != "" {
		opts = append(opts, llm.WithModel(a.model))
	}

	reply, err := a.provider.Generate(ctx, prompt, opts...)
	if err != nil {
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}

	return parseResult(reply)
}

// parseResult extracts the JSON record from the model reply, tolerating
// markdown fences the model sometimes adds despite instructions.
func parseResult(reply string) (*Result, error) {
	cleaned := strings.TrimSpace(reply)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var result Result
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("parse analysis result: %w", err)
	}
	if result.DocumentType == "" {
		return nil, fmt.Errorf("analysis result missing document type")
	}
	return &result, nil
}
