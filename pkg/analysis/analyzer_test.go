package analysis

import (
	"context"
	"strings"
	"testing"

	"legal-assistant-be/pkg/llm"
)

type scriptedProvider struct {
	reply  string
	err    error
	prompt string
	opts   llm.Options
}

func (p *scriptedProvider) Chat(_ context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return p.Generate(context.Background(), history[len(history)-1].Content, opts...)
}

func (p *scriptedProvider) Generate(_ context.Context, prompt string, opts ...llm.Option) (string, error) {
	p.prompt = prompt
	for _, opt := range opts {
		opt(&p.opts)
	}
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

func TestAnalyzePromptsProviderWithLowTemperature(t *testing.T) {
	provider := &scriptedProvider{
		reply: `{"document_type":"Lease Agreement","risk_level":"medium","overall_risk_score":55}`,
	}
	analyzer := NewLLMAnalyzer(provider, "gemini-1.5-pro")

	result, err := analyzer.Analyze(context.Background(), &FileRef{
		Name:    "lease.pdf",
		Size:    1024,
		Content: []byte("the tenant shall..."),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DocumentType != "Lease Agreement" {
		t.Errorf("document type = %q", result.DocumentType)
	}

	// The prompt carries the file name and content.
	if !strings.Contains(provider.prompt, "lease.pdf") || !strings.Contains(provider.prompt, "the tenant shall") {
		t.Errorf("prompt missing document details:\n%s", provider.prompt)
	}
	if provider.opts.Temperature != analysisTemperature {
		t.Errorf("temperature = %v, want %v", provider.opts.Temperature, analysisTemperature)
	}
	if provider.opts.Model != "gemini-1.5-pro" {
		t.Errorf("model override = %q, want gemini-1.5-pro", provider.opts.Model)
	}
}

func TestAnalyzeWithoutModelOverride(t *testing.T) {
	provider := &scriptedProvider{
		reply: `{"document_type":"NDA","risk_level":"low","overall_risk_score":10}`,
	}
	analyzer := NewLLMAnalyzer(provider, "")

	if _, err := analyzer.Analyze(context.Background(), &FileRef{Name: "nda.pdf"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.opts.Model != "" {
		t.Errorf("model override = %q, want provider default", provider.opts.Model)
	}
}

func TestParseResult(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		wantType string
		wantErr  bool
	}{
		{
			name:     "plain json",
			reply:    `{"document_type":"Lease Agreement","risk_level":"medium","overall_risk_score":55,"parties":["Acme Corp","J. Doe"],"main_concerns":["auto-renewal clause"],"recommendation":"Review clause 7 before signing"}`,
			wantType: "Lease Agreement",
		},
		{
			name:     "fenced json",
			reply:    "```json\n{\"document_type\":\"NDA\",\"risk_level\":\"low\",\"overall_risk_score\":12}\n```",
			wantType: "NDA",
		},
		{
			name:     "fenced without language tag",
			reply:    "```\n{\"document_type\":\"Employment Contract\",\"risk_level\":\"high\",\"overall_risk_score\":81}\n```",
			wantType: "Employment Contract",
		},
		{
			name:    "not json",
			reply:   "I could not analyze this document.",
			wantErr: true,
		},
		{
			name:    "missing document type",
			reply:   `{"risk_level":"low"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseResult(tt.reply)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.DocumentType != tt.wantType {
				t.Errorf("DocumentType = %q, want %q", result.DocumentType, tt.wantType)
			}
		})
	}
}
