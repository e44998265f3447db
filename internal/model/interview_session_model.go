package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type InterviewSession struct {
	Id               uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Topic            string         `gorm:"type:text;not null"`
	Background       string         `gorm:"type:text"`
	TargetSeconds    int            `gorm:"not null"`
	Status           string         `gorm:"type:varchar(20);not null;index"`
	Plan             datatypes.JSON `gorm:"type:jsonb"`
	Notes            datatypes.JSON `gorm:"type:jsonb"`
	Research         datatypes.JSON `gorm:"type:jsonb"`
	AskedQuestionIds datatypes.JSON `gorm:"type:jsonb"`
	PhaseFloor       string         `gorm:"type:varchar(20)"`
	CreatedAt        time.Time      `gorm:"autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime"`
	CompletedAt      *time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

func (InterviewSession) TableName() string {
	return "interview_sessions"
}
