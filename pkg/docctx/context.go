package docctx

import (
	"fmt"
	"time"
)

// SummaryFields is the small structured subset of a document analysis that
// travels with the conversation. It is never the full raw analysis, to bound
// the payload sent to the generation step.
type SummaryFields struct {
	DocumentType   string   `json:"document_type"`
	RiskLevel      string   `json:"risk_level"`
	RiskScore      int      `json:"risk_score"`
	MainConcerns   []string `json:"main_concerns"`
	Parties        []string `json:"parties"`
	Recommendation string   `json:"recommendation"`
}

// DocumentContext represents the document currently bound to a conversation.
// A new document always produces a new DocumentContext; instances are never
// mutated in place.
type DocumentContext struct {
	Fingerprint string        `json:"fingerprint"`
	Summary     SummaryFields `json:"summary"`
	AnalyzedAt  time.Time     `json:"analyzed_at"`
}

// Fingerprint derives the opaque change-detection identifier from file
// metadata. Content is not compared; name + size + upload time is enough to
// tell "is this a new document".
func Fingerprint(name string, size int64, uploadedAt time.Time) string {
	return fmt.Sprintf("%s-%d-%d", name, size, uploadedAt.UnixMilli())
}
