package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

type TurnDTO struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type SendMessageRequest struct {
	Message string `json:"message" validate:"required"`
}

type SendMessageResponse struct {
	SessionId uuid.UUID `json:"session_id"`
	Reply     *TurnDTO  `json:"reply,omitempty"`
}

type NarrationRequest struct {
	Text        string `json:"text" validate:"required"`
	UtteranceId string `json:"utterance_id" validate:"required"`
}

type NarrationResponse struct {
	Speaking          bool   `json:"speaking"`
	ActiveUtteranceId string `json:"active_utterance_id"`
}

type DocumentSummaryDTO struct {
	Fingerprint    string   `json:"fingerprint"`
	DocumentType   string   `json:"document_type"`
	RiskLevel      string   `json:"risk_level"`
	RiskScore      int      `json:"risk_score"`
	MainConcerns   []string `json:"main_concerns,omitempty"`
	Parties        []string `json:"parties,omitempty"`
	Recommendation string   `json:"recommendation,omitempty"`
}

type AnalyzeDocumentResponse struct {
	Success  bool                `json:"success"`
	Document *DocumentSummaryDTO `json:"document,omitempty"`
	// The terminal status turn: the system summary on success, the
	// assistant failure message otherwise. Exactly one is produced.
	Turn *TurnDTO `json:"turn,omitempty"`
}

type VisibilityRequest struct {
	Visible bool `json:"visible"`
}

// AssistantEventMessage travels over the in-process event bus from the
// session controller to the websocket/NATS forwarders.
type AssistantEventMessage struct {
	Type              string              `json:"type"` // "document_changed" | "narration_state"
	SessionId         uuid.UUID           `json:"session_id"`
	ActiveUtteranceId string              `json:"active_utterance_id,omitempty"`
	Document          *DocumentSummaryDTO `json:"document,omitempty"`
	OccurredAt        time.Time           `json:"occurred_at"`
}
