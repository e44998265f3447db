package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-interviewer-be/internal/config"
	"ai-interviewer-be/internal/constant"
	"ai-interviewer-be/internal/dto"
	"ai-interviewer-be/internal/entity"
	"ai-interviewer-be/internal/repository/memory"
	"ai-interviewer-be/pkg/llm"
)

// fakeRepo records sessions in a map, standing in for the gorm repository.
type fakeRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entity.InterviewSession
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{sessions: make(map[uuid.UUID]*entity.InterviewSession)}
}

func (f *fakeRepo) Create(ctx context.Context, session *entity.InterviewSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *session
	f.sessions[session.Id] = &copied
	return nil
}

func (f *fakeRepo) FindById(ctx context.Context, id uuid.UUID) (*entity.InterviewSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeRepo) UpdateSnapshot(ctx context.Context, session *entity.InterviewSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[session.Id]; ok {
		s.Notes = session.Notes
		s.Research = session.Research
		s.AskedQuestionIds = session.AskedQuestionIds
		s.PhaseFloor = session.PhaseFloor
	}
	return nil
}

func (f *fakeRepo) MarkCompleted(ctx context.Context, session *entity.InterviewSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *session
	f.sessions[session.Id] = &copied
	return nil
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []*dto.InstructionMessage
}

func (f *fakePublisher) PublishInstruction(msg *dto.InstructionMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// scriptedLLM routes on the system prompt, same trick the agent tests use.
type scriptedLLM struct{}

const plannerReply = `{
	"topic": "Sourdough at scale",
	"research_goal": "how a hobby became a bakery",
	"angle": "craft under pressure",
	"sections": [
		{"id": "s1", "title": "The hobby years", "importance": "high", "questions": [
			{"id": "s1_q1", "text": "When did you bake your first loaf?", "role": "backbone", "priority": 1}
		]},
		{"id": "s2", "title": "Going commercial", "importance": "high", "questions": [
			{"id": "s2_q1", "text": "What broke first when you scaled up?", "role": "backbone", "priority": 1}
		]}
	]
}`

func (scriptedLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	system := ""
	for _, m := range history {
		if m.Role == "system" {
			system = m.Content
		}
	}
	switch {
	case strings.Contains(system, "design interview plans"):
		return plannerReply, nil
	case strings.Contains(system, "note-taker"):
		return `{"key_ideas": [{"text": "starter hydration is everything"}], "stories": [], "claims": [], "gaps": [], "contradictions": [], "coverage": [], "quotes": [], "essay_titles": []}`, nil
	case strings.Contains(system, "research-worthy"):
		return `{"topics": []}`, nil
	default:
		return `{"phase": "opening", "question_text": "When did you bake your first loaf?", "section_id": "s1", "source": "plan", "source_question_id": "s1_q1", "expected_answer_seconds": 60, "interviewer_brief": "ease in"}`, nil
	}
}

func (s scriptedLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

func newTestService(repo *fakeRepo, pub *fakePublisher) (IInterviewService, *memory.SessionRegistry) {
	registry := memory.NewSessionRegistry()
	svc := NewInterviewService(repo, registry, scriptedLLM{}, pub, nil, nopLogger{}, config.InterviewConfig{
		NoteWindow:               20,
		ResearchWindow:           20,
		OrchestratorWindow:       30,
		DecisionReuseSeconds:     30,
		ResearchFreshnessMinutes: 5,
		ResearchFailureThreshold: 5,
		ResearchCooldownCycles:   3,
	})
	return svc, registry
}

func TestInterviewLifecycle(t *testing.T) {
	repo := newFakeRepo()
	pub := &fakePublisher{}
	svc, registry := newTestService(repo, pub)
	ctx := context.Background()

	created, err := svc.CreateInterview(ctx, &dto.CreateInterviewRequest{
		Topic:         "Sourdough at scale",
		TargetMinutes: 10,
	})
	require.NoError(t, err)
	require.NotNil(t, created.Plan)
	assert.Equal(t, 600, created.TargetSeconds)
	assert.Equal(t, 2, created.Plan.QuestionCount())

	_, live := registry.Get(created.Id)
	require.True(t, live, "session should be registered as live")

	update, err := svc.ProcessLiveUpdate(ctx, created.Id, &dto.LiveUpdateRequest{
		Utterances: []dto.UtteranceDTO{
			{Speaker: "user", Text: "I baked my first loaf in a toaster oven in 2015."},
		},
		ElapsedSeconds: 45,
	})
	require.NoError(t, err)
	assert.Equal(t, "s1_q1", update.Decision.NextQuestion.SourceQuestionId)
	assert.NotEmpty(t, update.Instructions)
	assert.Len(t, pub.messages, 1, "each cycle publishes one instruction message")

	fetched, err := svc.GetInterview(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, constant.SessionStatusLive, fetched.Status)
	assert.Equal(t, []string{"s1_q1"}, fetched.AskedQuestionIds)

	ended, err := svc.EndInterview(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, constant.SessionStatusCompleted, ended.Status)
	assert.NotEmpty(t, ended.FinalNotes.KeyIdeas)

	_, stillLive := registry.Get(created.Id)
	assert.False(t, stillLive, "ended session must leave the registry")

	persisted, err := svc.GetInterview(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, constant.SessionStatusCompleted, persisted.Status)
	assert.Equal(t, []string{"s1_q1"}, persisted.AskedQuestionIds)
}

func TestProcessLiveUpdateUnknownSession(t *testing.T) {
	svc, _ := newTestService(newFakeRepo(), &fakePublisher{})

	_, err := svc.ProcessLiveUpdate(context.Background(), uuid.New(), &dto.LiveUpdateRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not live")
}

func TestEndInterviewUnknownSession(t *testing.T) {
	svc, _ := newTestService(newFakeRepo(), &fakePublisher{})

	_, err := svc.EndInterview(context.Background(), uuid.New())
	require.Error(t, err)
}

func TestGetInterviewNotFoundAnywhere(t *testing.T) {
	svc, _ := newTestService(newFakeRepo(), &fakePublisher{})

	_, err := svc.GetInterview(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
