package contract

import (
	"context"

	"github.com/google/uuid"

	"ai-interviewer-be/internal/entity"
)

type InterviewSessionRepository interface {
	Create(ctx context.Context, session *entity.InterviewSession) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.InterviewSession, error)
	UpdateSnapshot(ctx context.Context, session *entity.InterviewSession) error
	MarkCompleted(ctx context.Context, session *entity.InterviewSession) error
}
