package analysis

import (
	"context"
	"time"
)

// FileRef carries an uploaded document into the analysis gateway.
type FileRef struct {
	Name       string
	Size       int64
	Content    []byte
	UploadedAt time.Time
}

// Result is the structured analysis record returned by the gateway.
type Result struct {
	DocumentType     string   `json:"document_type"`
	RiskLevel        string   `json:"risk_level"` // "low" | "medium" | "high"
	OverallRiskScore int      `json:"overall_risk_score"`
	Parties          []string `json:"parties"`
	MainConcerns     []string `json:"main_concerns"`
	Recommendation   string   `json:"recommendation"`
}

// Analyzer is the external document analysis gateway. It is treated as
// fallible and possibly slow; failures are surfaced, not retried.
type Analyzer interface {
	Analyze(ctx context.Context, file *FileRef) (*Result, error)
}
