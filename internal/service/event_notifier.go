package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"legal-assistant-be/internal/dto"
	"legal-assistant-be/internal/pkg/logger"
	"legal-assistant-be/pkg/assistant"
	"legal-assistant-be/pkg/docctx"
)

const (
	EventDocumentChanged = "document_changed"
	EventNarrationState  = "narration_state"
)

// eventNotifier bridges session controllers onto the in-process event bus.
// Every notifier callback becomes one published message; delivery to the
// websocket hub and NATS happens in the consumer.
type eventNotifier struct {
	sysLogger logger.ILogger
	publisher IPublisherService
}

func NewEventNotifier(publisher IPublisherService, sysLogger logger.ILogger) assistant.Notifier {
	return &eventNotifier{
		sysLogger: sysLogger,
		publisher: publisher,
	}
}

func (n *eventNotifier) DocumentChanged(sessionID uuid.UUID, doc *docctx.DocumentContext) {
	msg := dto.AssistantEventMessage{
		Type:       EventDocumentChanged,
		SessionId:  sessionID,
		OccurredAt: time.Now(),
	}
	if doc != nil {
		msg.Document = &dto.DocumentSummaryDTO{
			Fingerprint:    doc.Fingerprint,
			DocumentType:   doc.Summary.DocumentType,
			RiskLevel:      doc.Summary.RiskLevel,
			RiskScore:      doc.Summary.RiskScore,
			MainConcerns:   doc.Summary.MainConcerns,
			Parties:        doc.Summary.Parties,
			Recommendation: doc.Summary.Recommendation,
		}
	}
	n.publish(msg)
}

func (n *eventNotifier) NarrationState(sessionID uuid.UUID, activeID string) {
	n.publish(dto.AssistantEventMessage{
		Type:              EventNarrationState,
		SessionId:         sessionID,
		ActiveUtteranceId: activeID,
		OccurredAt:        time.Now(),
	})
}

func (n *eventNotifier) publish(msg dto.AssistantEventMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		n.sysLogger.Error("event_notifier", "Failed to marshal assistant event", map[string]interface{}{
			"error": err.Error(),
			"type":  msg.Type,
		})
		return
	}
	if err := n.publisher.Publish(context.Background(), payload); err != nil {
		n.sysLogger.Error("event_notifier", "Failed to publish assistant event", map[string]interface{}{
			"error": err.Error(),
			"type":  msg.Type,
		})
	}
}
