package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"ai-interviewer-be/internal/config"
	"ai-interviewer-be/internal/constant"
	"ai-interviewer-be/internal/dto"
	"ai-interviewer-be/internal/entity"
	"ai-interviewer-be/internal/pkg/logger"
	"ai-interviewer-be/internal/repository/contract"
	"ai-interviewer-be/internal/repository/memory"
	"ai-interviewer-be/pkg/events"
	"ai-interviewer-be/pkg/interview/agent"
	"ai-interviewer-be/pkg/interview/coordinator"
	"ai-interviewer-be/pkg/interview/notes"
	"ai-interviewer-be/pkg/interview/plan"
	"ai-interviewer-be/pkg/interview/transcript"
	"ai-interviewer-be/pkg/llm"
	pkgNats "ai-interviewer-be/pkg/nats"
)

// IInterviewService defines the interview session lifecycle surface.
type IInterviewService interface {
	CreateInterview(ctx context.Context, request *dto.CreateInterviewRequest) (*dto.CreateInterviewResponse, error)
	ProcessLiveUpdate(ctx context.Context, sessionId uuid.UUID, request *dto.LiveUpdateRequest) (*dto.LiveUpdateResponse, error)
	EndInterview(ctx context.Context, sessionId uuid.UUID) (*dto.EndInterviewResponse, error)
	GetInterview(ctx context.Context, sessionId uuid.UUID) (*dto.InterviewSessionResponse, error)
}

type interviewService struct {
	sessionRepo contract.InterviewSessionRepository
	registry    *memory.SessionRegistry
	llmProvider llm.LLMProvider
	planner     *agent.Planner
	publisher   IPublisherService
	natsPub     *pkgNats.Publisher
	sysLogger   logger.ILogger
	llmLogger   *log.Logger
	cfg         config.InterviewConfig
}

func NewInterviewService(
	sessionRepo contract.InterviewSessionRepository,
	registry *memory.SessionRegistry,
	llmProvider llm.LLMProvider,
	publisher IPublisherService,
	natsPub *pkgNats.Publisher,
	sysLogger logger.ILogger,
	cfg config.InterviewConfig,
) IInterviewService {
	llmLogger := initLLMLogger()

	return &interviewService{
		sessionRepo: sessionRepo,
		registry:    registry,
		llmProvider: llmProvider,
		planner:     agent.NewPlanner(llmProvider, llmLogger),
		publisher:   publisher,
		natsPub:     natsPub,
		sysLogger:   sysLogger,
		llmLogger:   llmLogger,
		cfg:         cfg,
	}
}

func initLLMLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "llm_interview.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[LLM-INTERVIEW] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

// CreateInterview generates the plan and registers a live coordinator.
// This runs pre-live, so failures surface loudly and the caller retries.
func (s *interviewService) CreateInterview(ctx context.Context, request *dto.CreateInterviewRequest) (*dto.CreateInterviewResponse, error) {
	interviewPlan, err := s.planner.Generate(ctx, request.Topic, request.Background, request.TargetMinutes)
	if err != nil {
		return nil, err
	}

	sessionId := uuid.New()
	targetSeconds := request.TargetMinutes * 60
	now := time.Now()

	session := &entity.InterviewSession{
		Id:            sessionId,
		Topic:         request.Topic,
		Background:    request.Background,
		TargetSeconds: targetSeconds,
		Status:        constant.SessionStatusLive,
		Plan:          interviewPlan,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	s.registry.Save(&memory.LiveSession{
		Id:            sessionId,
		Topic:         request.Topic,
		TargetSeconds: targetSeconds,
		StartedAt:     now,
		Coordinator:   s.newCoordinator(interviewPlan),
	})

	s.publishEvent(ctx, events.NewInterviewStartedEvent(sessionId, request.Topic, targetSeconds))
	s.sysLogger.Info("Interview", "Session created", map[string]interface{}{
		"session_id": sessionId,
		"topic":      request.Topic,
		"questions":  interviewPlan.QuestionCount(),
	})

	return &dto.CreateInterviewResponse{
		Id:            sessionId,
		Plan:          interviewPlan,
		TargetSeconds: targetSeconds,
		CreatedAt:     now,
	}, nil
}

// newCoordinator wires a fresh agent trio for one session. The note taker
// and orchestrator are stateless, but the researcher carries per-session
// caches, so every session gets its own.
func (s *interviewService) newCoordinator(interviewPlan *plan.Plan) *coordinator.Coordinator {
	thresholds := notes.DefaultThresholds()

	noteTaker := agent.NewNoteTaker(s.llmProvider, s.llmLogger, thresholds, s.cfg.NoteWindow)
	researcher := agent.NewResearcher(s.llmProvider, s.llmLogger, agent.ResearcherConfig{
		WindowSize:        s.cfg.ResearchWindow,
		MaxTopicsPerCycle: agent.DefaultResearcherConfig().MaxTopicsPerCycle,
		Freshness:         time.Duration(s.cfg.ResearchFreshnessMinutes) * time.Minute,
		FailureThreshold:  s.cfg.ResearchFailureThreshold,
		CooldownCycles:    s.cfg.ResearchCooldownCycles,
	})
	orchestrator := agent.NewOrchestrator(s.llmProvider, s.llmLogger, s.cfg.OrchestratorWindow)

	return coordinator.New(interviewPlan, noteTaker, researcher, orchestrator, thresholds,
		time.Duration(s.cfg.DecisionReuseSeconds)*time.Second)
}

// ProcessLiveUpdate runs one orchestration cycle for a live session. The
// cycle itself never fails; only an unknown session id is an error.
func (s *interviewService) ProcessLiveUpdate(ctx context.Context, sessionId uuid.UUID, request *dto.LiveUpdateRequest) (*dto.LiveUpdateResponse, error) {
	live, found := s.registry.Get(sessionId)
	if !found {
		return nil, fmt.Errorf("session %s is not live", sessionId)
	}

	utterances := make([]transcript.Entry, 0, len(request.Utterances))
	for _, u := range request.Utterances {
		ts := u.Timestamp
		if ts.IsZero() {
			ts = time.Now()
		}
		utterances = append(utterances, transcript.Entry{
			Speaker:   u.Speaker,
			Text:      u.Text,
			Timestamp: ts,
			Final:     u.Final,
		})
	}

	result := live.Coordinator.ProcessLiveUpdate(ctx, utterances, request.ElapsedSeconds, float64(live.TargetSeconds))

	instructions := coordinator.FormatInstructions(result.Decision, result.Notes, result.NewResearch)
	if err := s.publisher.PublishInstruction(&dto.InstructionMessage{
		SessionId:    sessionId,
		Phase:        string(result.Decision.Phase),
		Instructions: instructions,
		At:           time.Now(),
	}); err != nil {
		// The driver keeps its previous instructions; never stall the cycle.
		s.sysLogger.Warn("Interview", "Failed to publish instructions", map[string]interface{}{
			"session_id": sessionId, "error": err.Error(),
		})
	}

	s.saveSnapshot(ctx, live)

	return &dto.LiveUpdateResponse{
		SessionId:    sessionId,
		Decision:     result.Decision,
		NewResearch:  result.NewResearch,
		Notes:        result.Notes,
		Instructions: instructions,
	}, nil
}

// EndInterview freezes the session state, persists the final snapshot,
// and evicts the live coordinator.
func (s *interviewService) EndInterview(ctx context.Context, sessionId uuid.UUID) (*dto.EndInterviewResponse, error) {
	live, found := s.registry.Get(sessionId)
	if !found {
		return nil, fmt.Errorf("session %s is not live", sessionId)
	}

	snap := live.Coordinator.Snapshot()
	now := time.Now()

	session := &entity.InterviewSession{
		Id:               sessionId,
		Topic:            live.Topic,
		TargetSeconds:    live.TargetSeconds,
		Status:           constant.SessionStatusCompleted,
		Plan:             snap.Plan,
		Notes:            snap.Notes,
		Research:         snap.Research,
		AskedQuestionIds: snap.AskedQuestionIds,
		PhaseFloor:       string(snap.PhaseFloor),
		CompletedAt:      &now,
	}
	if err := s.sessionRepo.MarkCompleted(ctx, session); err != nil {
		// Fatal only to this save; the caller decides whether to retry.
		s.sysLogger.Error("Interview", "Failed to persist final snapshot", map[string]interface{}{
			"session_id": sessionId, "error": err.Error(),
		})
		return nil, fmt.Errorf("persist final snapshot: %w", err)
	}

	s.publishEvent(ctx, events.NewInterviewCompletedEvent(sessionId, live.Topic, len(snap.AskedQuestionIds), len(snap.Research)))

	live.Coordinator.Reset()
	s.registry.Delete(sessionId)

	return &dto.EndInterviewResponse{
		Id:          sessionId,
		Status:      constant.SessionStatusCompleted,
		CompletedAt: now,
		FinalNotes:  snap.Notes,
		Research:    snap.Research,
	}, nil
}

func (s *interviewService) GetInterview(ctx context.Context, sessionId uuid.UUID) (*dto.InterviewSessionResponse, error) {
	// Prefer the live view when the session is on air.
	if live, found := s.registry.Get(sessionId); found {
		snap := live.Coordinator.Snapshot()
		return &dto.InterviewSessionResponse{
			Id:               sessionId,
			Topic:            live.Topic,
			Status:           constant.SessionStatusLive,
			TargetSeconds:    live.TargetSeconds,
			Plan:             snap.Plan,
			Notes:            snap.Notes,
			Research:         snap.Research,
			AskedQuestionIds: snap.AskedQuestionIds,
			CreatedAt:        live.StartedAt,
		}, nil
	}

	session, err := s.sessionRepo.FindById(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session not found")
	}

	return &dto.InterviewSessionResponse{
		Id:               session.Id,
		Topic:            session.Topic,
		Status:           session.Status,
		TargetSeconds:    session.TargetSeconds,
		Plan:             session.Plan,
		Notes:            session.Notes,
		Research:         session.Research,
		AskedQuestionIds: session.AskedQuestionIds,
		CreatedAt:        session.CreatedAt,
		CompletedAt:      session.CompletedAt,
	}, nil
}

// saveSnapshot persists the live state best-effort; a failed snapshot
// only costs recovery fidelity, never the cycle.
func (s *interviewService) saveSnapshot(ctx context.Context, live *memory.LiveSession) {
	snap := live.Coordinator.Snapshot()
	session := &entity.InterviewSession{
		Id:               live.Id,
		Notes:            snap.Notes,
		Research:         snap.Research,
		AskedQuestionIds: snap.AskedQuestionIds,
		PhaseFloor:       string(snap.PhaseFloor),
	}
	if err := s.sessionRepo.UpdateSnapshot(ctx, session); err != nil {
		s.sysLogger.Warn("Interview", "Snapshot save failed", map[string]interface{}{
			"session_id": live.Id, "error": err.Error(),
		})
	}
}

func (s *interviewService) publishEvent(ctx context.Context, event events.Event) {
	if s.natsPub == nil {
		return
	}
	if err := s.natsPub.Publish(ctx, event); err != nil {
		s.sysLogger.Warn("Interview", "Failed to publish event", map[string]interface{}{
			"event": event.EventType(), "error": err.Error(),
		})
	}
}
