package events

import (
	"time"

	"github.com/google/uuid"
)

func NewInterviewStartedEvent(sessionId uuid.UUID, topic string, targetSeconds int) Event {
	return BaseEvent{
		Type: "INTERVIEW_STARTED",
		Data: map[string]interface{}{
			"session_id":     sessionId.String(),
			"topic":          topic,
			"target_seconds": targetSeconds,
		},
		OccurredAt: time.Now(),
	}
}

func NewInterviewCompletedEvent(sessionId uuid.UUID, topic string, askedQuestions, researchItems int) Event {
	return BaseEvent{
		Type: "INTERVIEW_COMPLETED",
		Data: map[string]interface{}{
			"session_id":      sessionId.String(),
			"topic":           topic,
			"asked_questions": askedQuestions,
			"research_items":  researchItems,
		},
		OccurredAt: time.Now(),
	}
}
