package entity

import (
	"time"

	"github.com/google/uuid"

	"ai-interviewer-be/pkg/interview/notes"
	"ai-interviewer-be/pkg/interview/plan"
	"ai-interviewer-be/pkg/interview/research"
)

// InterviewSession is the persisted aggregate for one interview: the
// immutable plan plus the latest frozen-or-live snapshot of notes,
// research, and asked-question ids.
type InterviewSession struct {
	Id               uuid.UUID
	Topic            string
	Background       string
	TargetSeconds    int
	Status           string
	Plan             *plan.Plan
	Notes            notes.State
	Research         []research.Item
	AskedQuestionIds []string
	PhaseFloor       string
	CreatedAt        time.Time
	UpdatedAt        *time.Time
	CompletedAt      *time.Time
}
