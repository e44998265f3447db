package service

import (
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"ai-interviewer-be/internal/dto"
)

// IPublisherService publishes per-cycle instruction messages to the
// in-process bus, from which the consumer forwards them to drivers.
type IPublisherService interface {
	PublishInstruction(msg *dto.InstructionMessage) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (ps *publisherService) PublishInstruction(instruction *dto.InstructionMessage) error {
	payload, err := json.Marshal(instruction)
	if err != nil {
		return fmt.Errorf("marshal instruction message: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := ps.pubSub.Publish(ps.topicName, msg); err != nil {
		return fmt.Errorf("publish instruction: %w", err)
	}
	return nil
}
