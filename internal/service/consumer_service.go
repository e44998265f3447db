package service

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"ai-interviewer-be/internal/dto"
	"ai-interviewer-be/internal/pkg/logger"
	"ai-interviewer-be/internal/websocket"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the instruction topic and pushes each payload
// to the session's connected drivers. Push errors are absorbed here; a
// missed instruction just means the driver keeps its previous one.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	hub       *websocket.Hub
	logger    logger.ILogger
}

func NewConsumerService(pubSub *gochannel.GoChannel, topicName string, hub *websocket.Hub, log logger.ILogger) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		hub:       hub,
		logger:    log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	defer msg.Ack()

	var instruction dto.InstructionMessage
	if err := json.Unmarshal(msg.Payload, &instruction); err != nil {
		cs.logger.Warn("Consumer", "Dropping malformed instruction message", map[string]interface{}{"error": err.Error()})
		return
	}

	cs.hub.SendToSession(instruction.SessionId, msg.Payload)
}
