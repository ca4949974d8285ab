package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"legal-assistant-be/internal/dto"
	"legal-assistant-be/internal/pkg/logger"
	"legal-assistant-be/internal/websocket"
	"legal-assistant-be/pkg/events"
	pktNats "legal-assistant-be/pkg/nats"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	wsHub     *websocket.Hub
	natsPub   *pktNats.Publisher
	sysLogger logger.ILogger
}

// NewConsumerService forwards assistant events to connected widgets and
// mirrors them onto NATS for other platform services. natsPub may be nil
// when NATS is unreachable; the mirror is then skipped.
func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	wsHub *websocket.Hub,
	natsPub *pktNats.Publisher,
	sysLogger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		wsHub:     wsHub,
		natsPub:   natsPub,
		sysLogger: sysLogger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.AssistantEventMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.sysLogger.Error("consumer", "Failed to unmarshal assistant event", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // invalid messages would retry forever otherwise
		return
	}

	cs.wsHub.SendToSession(payload.SessionId, payload.Type, payload)

	if cs.natsPub != nil {
		if err := cs.natsPub.Publish(ctx, mirrorEvent(payload)); err != nil {
			cs.sysLogger.Warn("consumer", "Failed to mirror assistant event to NATS", map[string]interface{}{
				"error": err.Error(),
				"type":  payload.Type,
			})
		}
	}

	msg.Ack()
}

func mirrorEvent(payload dto.AssistantEventMessage) events.Event {
	data := map[string]interface{}{
		"session_id": payload.SessionId.String(),
	}
	if payload.Type == EventNarrationState {
		data["active_utterance_id"] = payload.ActiveUtteranceId
	}
	if payload.Document != nil {
		data["fingerprint"] = payload.Document.Fingerprint
		data["document_type"] = payload.Document.DocumentType
		data["risk_level"] = payload.Document.RiskLevel
	}
	return events.BaseEvent{
		Type:       strings.ToUpper(payload.Type),
		Data:       data,
		OccurredAt: payload.OccurredAt,
	}
}
