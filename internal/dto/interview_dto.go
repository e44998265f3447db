package dto

import (
	"time"

	"github.com/google/uuid"

	"ai-interviewer-be/pkg/interview/decision"
	"ai-interviewer-be/pkg/interview/notes"
	"ai-interviewer-be/pkg/interview/plan"
	"ai-interviewer-be/pkg/interview/research"
)

type CreateInterviewRequest struct {
	Topic         string `json:"topic" validate:"required,min=3"`
	Background    string `json:"background,omitempty"`
	TargetMinutes int    `json:"target_minutes" validate:"required,min=5,max=180"`
}

type CreateInterviewResponse struct {
	Id            uuid.UUID  `json:"id"`
	Plan          *plan.Plan `json:"plan"`
	TargetSeconds int        `json:"target_seconds"`
	CreatedAt     time.Time  `json:"created_at"`
}

type UtteranceDTO struct {
	Speaker   string    `json:"speaker" validate:"required,oneof=user assistant"`
	Text      string    `json:"text" validate:"required"`
	Timestamp time.Time `json:"timestamp"`
	Final     bool      `json:"final"`
}

type LiveUpdateRequest struct {
	Utterances     []UtteranceDTO `json:"utterances" validate:"dive"`
	ElapsedSeconds float64        `json:"elapsed_seconds" validate:"min=0"`
}

type LiveUpdateResponse struct {
	SessionId    uuid.UUID         `json:"session_id"`
	Decision     decision.Decision `json:"decision"`
	NewResearch  []research.Item   `json:"new_research"`
	Notes        notes.State       `json:"notes"`
	Instructions string            `json:"instructions"`
}

type EndInterviewResponse struct {
	Id          uuid.UUID       `json:"id"`
	Status      string          `json:"status"`
	CompletedAt time.Time       `json:"completed_at"`
	FinalNotes  notes.State     `json:"final_notes"`
	Research    []research.Item `json:"research"`
}

type InterviewSessionResponse struct {
	Id               uuid.UUID       `json:"id"`
	Topic            string          `json:"topic"`
	Status           string          `json:"status"`
	TargetSeconds    int             `json:"target_seconds"`
	Plan             *plan.Plan      `json:"plan,omitempty"`
	Notes            notes.State     `json:"notes"`
	Research         []research.Item `json:"research"`
	AskedQuestionIds []string        `json:"asked_question_ids"`
	CreatedAt        time.Time       `json:"created_at"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
}

// InstructionMessage is the payload published per cycle to the delivery
// consumer, then pushed over the session's websocket.
type InstructionMessage struct {
	SessionId    uuid.UUID `json:"session_id"`
	Phase        string    `json:"phase"`
	Instructions string    `json:"instructions"`
	At           time.Time `json:"at"`
}
