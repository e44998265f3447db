package mapper

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"ai-interviewer-be/internal/entity"
	"ai-interviewer-be/internal/model"
	"ai-interviewer-be/pkg/interview/notes"
	"ai-interviewer-be/pkg/interview/plan"
	"ai-interviewer-be/pkg/interview/research"
)

func InterviewSessionToModel(e *entity.InterviewSession) (*model.InterviewSession, error) {
	planJSON, err := json.Marshal(e.Plan)
	if err != nil {
		return nil, fmt.Errorf("marshal plan: %w", err)
	}
	notesJSON, err := json.Marshal(e.Notes)
	if err != nil {
		return nil, fmt.Errorf("marshal notes: %w", err)
	}
	researchJSON, err := json.Marshal(e.Research)
	if err != nil {
		return nil, fmt.Errorf("marshal research: %w", err)
	}
	askedJSON, err := json.Marshal(e.AskedQuestionIds)
	if err != nil {
		return nil, fmt.Errorf("marshal asked ids: %w", err)
	}

	return &model.InterviewSession{
		Id:               e.Id,
		Topic:            e.Topic,
		Background:       e.Background,
		TargetSeconds:    e.TargetSeconds,
		Status:           e.Status,
		Plan:             datatypes.JSON(planJSON),
		Notes:            datatypes.JSON(notesJSON),
		Research:         datatypes.JSON(researchJSON),
		AskedQuestionIds: datatypes.JSON(askedJSON),
		PhaseFloor:       e.PhaseFloor,
		CompletedAt:      e.CompletedAt,
	}, nil
}

func InterviewSessionToEntity(m *model.InterviewSession) (*entity.InterviewSession, error) {
	e := &entity.InterviewSession{
		Id:            m.Id,
		Topic:         m.Topic,
		Background:    m.Background,
		TargetSeconds: m.TargetSeconds,
		Status:        m.Status,
		PhaseFloor:    m.PhaseFloor,
		CreatedAt:     m.CreatedAt,
		CompletedAt:   m.CompletedAt,
	}
	if !m.UpdatedAt.IsZero() {
		updated := m.UpdatedAt
		e.UpdatedAt = &updated
	}

	if len(m.Plan) > 0 {
		var p plan.Plan
		if err := json.Unmarshal(m.Plan, &p); err != nil {
			return nil, fmt.Errorf("unmarshal plan: %w", err)
		}
		e.Plan = &p
	}
	if len(m.Notes) > 0 {
		var n notes.State
		if err := json.Unmarshal(m.Notes, &n); err != nil {
			return nil, fmt.Errorf("unmarshal notes: %w", err)
		}
		e.Notes = n
	}
	if len(m.Research) > 0 {
		var items []research.Item
		if err := json.Unmarshal(m.Research, &items); err != nil {
			return nil, fmt.Errorf("unmarshal research: %w", err)
		}
		e.Research = items
	}
	if len(m.AskedQuestionIds) > 0 {
		var asked []string
		if err := json.Unmarshal(m.AskedQuestionIds, &asked); err != nil {
			return nil, fmt.Errorf("unmarshal asked ids: %w", err)
		}
		e.AskedQuestionIds = asked
	}

	return e, nil
}
