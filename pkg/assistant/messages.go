package assistant

import (
	"fmt"
	"strings"

	"legal-assistant-be/pkg/docctx"
)

// User-safe canned messages. Raw upstream errors are logged, never shown.
const (
	MsgRateLimited = "I'm handling a lot of requests right now. Please wait a moment and try again."

	MsgGenericFailure = "Sorry, something went wrong while processing your request. Please try again."

	MsgTimeout = "That took longer than expected and timed out. Please try again."

	MsgAnalysisFailed = "I couldn't analyze that document. Your conversation is untouched - please try uploading it again."
)

// SummaryMessage builds the one-time system turn shown when the session
// binds to a new document.
func SummaryMessage(s docctx.SummaryFields) string {
	var sb strings.Builder

	docType := s.DocumentType
	if docType == "" {
		docType = "document"
	}
	sb.WriteString(fmt.Sprintf("New document loaded: %s.", docType))
	if s.RiskLevel != "" {
		sb.WriteString(fmt.Sprintf(" Risk level: %s (%d/100).", s.RiskLevel, s.RiskScore))
	}
	if s.Recommendation != "" {
		sb.WriteString(fmt.Sprintf(" Recommendation: %s", s.Recommendation))
	}

	return sb.String()
}
