package implementation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ai-interviewer-be/internal/entity"
	"ai-interviewer-be/internal/mapper"
	"ai-interviewer-be/internal/model"
	"ai-interviewer-be/internal/repository/contract"
)

type interviewSessionRepository struct {
	db *gorm.DB
}

func NewInterviewSessionRepository(db *gorm.DB) contract.InterviewSessionRepository {
	return &interviewSessionRepository{db: db}
}

func (r *interviewSessionRepository) Create(ctx context.Context, session *entity.InterviewSession) error {
	m, err := mapper.InterviewSessionToModel(session)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *interviewSessionRepository) FindById(ctx context.Context, id uuid.UUID) (*entity.InterviewSession, error) {
	var m model.InterviewSession
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return mapper.InterviewSessionToEntity(&m)
}

func (r *interviewSessionRepository) UpdateSnapshot(ctx context.Context, session *entity.InterviewSession) error {
	m, err := mapper.InterviewSessionToModel(session)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&model.InterviewSession{}).
		Where("id = ?", session.Id).
		Updates(map[string]interface{}{
			"notes":              m.Notes,
			"research":           m.Research,
			"asked_question_ids": m.AskedQuestionIds,
			"phase_floor":        m.PhaseFloor,
		}).Error
}

func (r *interviewSessionRepository) MarkCompleted(ctx context.Context, session *entity.InterviewSession) error {
	m, err := mapper.InterviewSessionToModel(session)
	if err != nil {
		return err
	}
	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.InterviewSession{}).
		Where("id = ?", session.Id).
		Updates(map[string]interface{}{
			"status":             m.Status,
			"notes":              m.Notes,
			"research":           m.Research,
			"asked_question_ids": m.AskedQuestionIds,
			"phase_floor":        m.PhaseFloor,
			"completed_at":       now,
		}).Error
}
