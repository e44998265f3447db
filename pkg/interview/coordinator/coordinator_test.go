package coordinator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"ai-interviewer-be/pkg/interview/agent"
	"ai-interviewer-be/pkg/interview/decision"
	"ai-interviewer-be/pkg/interview/notes"
	"ai-interviewer-be/pkg/interview/plan"
	"ai-interviewer-be/pkg/interview/transcript"
	"ai-interviewer-be/pkg/llm"
)

type routingProvider struct {
	mu      sync.Mutex
	respond func(system, user string) (string, error)
	calls   int
}

func (p *routingProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	system, user := "", ""
	for _, m := range history {
		switch m.Role {
		case "system":
			system = m.Content
		case "user":
			user = m.Content
		}
	}
	return p.respond(system, user)
}

func (p *routingProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

func (p *routingProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func failingProvider() *routingProvider {
	return &routingProvider{respond: func(system, user string) (string, error) {
		return "", errors.New("model unavailable")
	}}
}

// agentRouter answers each agent with canned but valid JSON.
func agentRouter() *routingProvider {
	return &routingProvider{respond: func(system, user string) (string, error) {
		switch {
		case strings.Contains(system, "note-taker"):
			return `{"key_ideas": [{"text": "the outage rebuilt the team from scratch"}], "stories": [], "claims": [], "gaps": [], "contradictions": [], "coverage": [], "quotes": [], "essay_titles": []}`, nil
		case strings.Contains(system, "research-worthy"):
			return `{"topics": []}`, nil
		case strings.Contains(system, "direct a live"):
			return `{"phase": "deep_dive", "question_text": "Walk me through the nine hour outage step by step.", "section_id": "s2", "source": "plan", "source_question_id": "s2_q1", "expected_answer_seconds": 90, "interviewer_brief": "slow down here"}`, nil
		default:
			return "", fmt.Errorf("unexpected prompt: %s", system)
		}
	}}
}

func testPlan() *plan.Plan {
	return &plan.Plan{
		Topic: "A career in infrastructure engineering",
		Sections: []plan.Section{
			{
				Id: "s1", Title: "Origins", Importance: plan.ImportanceHigh,
				Questions: []plan.Question{
					{Id: "s1_q1", Text: "How did you first get into infrastructure work?", Role: plan.RoleBackbone, Priority: plan.PriorityMustHit},
				},
			},
			{
				Id: "s2", Title: "The outage", Importance: plan.ImportanceHigh,
				Questions: []plan.Question{
					{Id: "s2_q1", Text: "Walk me through the nine hour outage step by step.", Role: plan.RoleBackbone, Priority: plan.PriorityMustHit},
					{Id: "s2_q2", Text: "What changed in the team afterwards?", Role: plan.RoleFollowup, Priority: plan.PriorityImportant},
				},
			},
		},
	}
}

func newCoordinator(provider llm.LLMProvider, reuse time.Duration) *Coordinator {
	th := notes.DefaultThresholds()
	return New(
		testPlan(),
		agent.NewNoteTaker(provider, nil, th, 20),
		agent.NewResearcher(provider, nil, agent.DefaultResearcherConfig()),
		agent.NewOrchestrator(provider, nil, 30),
		th,
		reuse,
	)
}

func utterance(text string) []transcript.Entry {
	return []transcript.Entry{{Speaker: transcript.SpeakerUser, Text: text}}
}

func TestProcessLiveUpdateHappyPath(t *testing.T) {
	c := newCoordinator(agentRouter(), DefaultDecisionReuse)

	result := c.ProcessLiveUpdate(context.Background(), utterance("it started with the 2014 outage"), 200, 600)

	if result.Decision.NextQuestion.SourceQuestionId != "s2_q1" {
		t.Errorf("SourceQuestionId = %q, want s2_q1", result.Decision.NextQuestion.SourceQuestionId)
	}
	if len(result.Notes.KeyIdeas) != 1 {
		t.Errorf("KeyIdeas = %d, want 1", len(result.Notes.KeyIdeas))
	}

	snap := c.Snapshot()
	if len(snap.AskedQuestionIds) != 1 || snap.AskedQuestionIds[0] != "s2_q1" {
		t.Errorf("AskedQuestionIds = %v, want [s2_q1]", snap.AskedQuestionIds)
	}
	if snap.PhaseFloor != decision.PhaseDeepDive {
		t.Errorf("PhaseFloor = %s, want deep_dive", snap.PhaseFloor)
	}
}

func TestProcessLiveUpdateNeverFails(t *testing.T) {
	// Every agent's model call errors; the cycle must still produce a
	// usable decision and intact notes.
	c := newCoordinator(failingProvider(), DefaultDecisionReuse)

	result := c.ProcessLiveUpdate(context.Background(), utterance("hello"), 30, 600)

	if result.Decision.NextQuestion.Text == "" {
		t.Error("expected a fallback question")
	}
	if result.Decision.NextQuestion.SourceQuestionId != "s1_q1" {
		t.Errorf("fallback should pick s1_q1, got %q", result.Decision.NextQuestion.SourceQuestionId)
	}
	if result.Decision.Phase != decision.PhaseOpening {
		t.Errorf("Phase = %s, want opening at 30s/600s", result.Decision.Phase)
	}
}

func TestPhaseAndAskedSetMonotonic(t *testing.T) {
	// Fallback path throughout: phase tracks progress but never regresses,
	// asked set only grows.
	c := newCoordinator(failingProvider(), time.Nanosecond)

	steps := []struct {
		elapsed   float64
		wantPhase decision.Phase
		wantAsked string
	}{
		{30, decision.PhaseOpening, "s1_q1"},
		{320, decision.PhaseDeepDive, "s2_q1"},
		{520, decision.PhaseWrapUp, "s2_q2"},
		// Clock noise: elapsed jumps backwards but wrap_up sticks.
		{400, decision.PhaseWrapUp, ""},
	}

	for i, step := range steps {
		result := c.ProcessLiveUpdate(context.Background(), utterance(fmt.Sprintf("utterance %d", i)), step.elapsed, 600)
		if result.Decision.Phase != step.wantPhase {
			t.Errorf("step %d: Phase = %s, want %s", i, result.Decision.Phase, step.wantPhase)
		}
		if step.wantAsked != "" && result.Decision.NextQuestion.SourceQuestionId != step.wantAsked {
			t.Errorf("step %d: asked %q, want %q", i, result.Decision.NextQuestion.SourceQuestionId, step.wantAsked)
		}
	}

	snap := c.Snapshot()
	if len(snap.AskedQuestionIds) != 3 {
		t.Errorf("AskedQuestionIds = %v, want all three plan questions", snap.AskedQuestionIds)
	}
	if snap.PhaseFloor != decision.PhaseWrapUp {
		t.Errorf("PhaseFloor = %s, want wrap_up", snap.PhaseFloor)
	}
}

func TestSmartSkipReusesRecentDecision(t *testing.T) {
	provider := agentRouter()
	c := newCoordinator(provider, time.Minute)

	first := c.ProcessLiveUpdate(context.Background(), utterance("fresh content"), 200, 600)
	callsAfterFirst := provider.callCount()

	// No new utterances inside the reuse window: decision comes back
	// verbatim without touching any agent.
	second := c.ProcessLiveUpdate(context.Background(), nil, 210, 600)

	if second.Decision != first.Decision {
		t.Errorf("cached decision differs: %+v vs %+v", second.Decision, first.Decision)
	}
	if second.NewResearch != nil {
		t.Errorf("smart-skip must not produce research, got %v", second.NewResearch)
	}
	if provider.callCount() != callsAfterFirst {
		t.Errorf("smart-skip must not call the model, calls went %d -> %d", callsAfterFirst, provider.callCount())
	}
}

func TestNoNewContentPastReuseWindowStillDecides(t *testing.T) {
	provider := agentRouter()
	c := newCoordinator(provider, time.Nanosecond)

	c.ProcessLiveUpdate(context.Background(), utterance("fresh content"), 200, 600)
	callsAfterFirst := provider.callCount()

	time.Sleep(time.Millisecond)
	c.ProcessLiveUpdate(context.Background(), nil, 260, 600)

	if provider.callCount() <= callsAfterFirst {
		t.Error("stale cached decision should trigger a fresh orchestrator call")
	}
}

func TestNotesSurviveRepeatedMerges(t *testing.T) {
	c := newCoordinator(agentRouter(), time.Nanosecond)

	for i := 0; i < 3; i++ {
		c.ProcessLiveUpdate(context.Background(), utterance(fmt.Sprintf("utterance %d", i)), float64(100+i*50), 600)
	}

	snap := c.Snapshot()
	// The note taker emits the same idea every cycle; dedup keeps one.
	if len(snap.Notes.KeyIdeas) != 1 {
		t.Errorf("KeyIdeas = %d, want 1 after dedup", len(snap.Notes.KeyIdeas))
	}
}

func TestResetClearsEverything(t *testing.T) {
	c := newCoordinator(agentRouter(), DefaultDecisionReuse)

	c.ProcessLiveUpdate(context.Background(), utterance("content"), 200, 600)
	c.Reset()

	snap := c.Snapshot()
	if len(snap.Notes.KeyIdeas) != 0 {
		t.Errorf("notes survived reset: %+v", snap.Notes)
	}
	if len(snap.AskedQuestionIds) != 0 {
		t.Errorf("asked set survived reset: %v", snap.AskedQuestionIds)
	}
	if snap.PhaseFloor != decision.PhaseOpening {
		t.Errorf("PhaseFloor = %s, want opening", snap.PhaseFloor)
	}
}

func TestRestoreRehydratesState(t *testing.T) {
	c := newCoordinator(agentRouter(), DefaultDecisionReuse)
	c.ProcessLiveUpdate(context.Background(), utterance("content"), 520, 600)
	snap := c.Snapshot()

	fresh := newCoordinator(agentRouter(), DefaultDecisionReuse)
	fresh.Restore(snap)

	restored := fresh.Snapshot()
	if len(restored.AskedQuestionIds) != len(snap.AskedQuestionIds) {
		t.Errorf("AskedQuestionIds = %v, want %v", restored.AskedQuestionIds, snap.AskedQuestionIds)
	}
	if restored.PhaseFloor != snap.PhaseFloor {
		t.Errorf("PhaseFloor = %s, want %s", restored.PhaseFloor, snap.PhaseFloor)
	}
	if len(restored.Notes.KeyIdeas) != len(snap.Notes.KeyIdeas) {
		t.Errorf("Notes lost in restore")
	}
}

func TestRestoreDropsUnknownQuestionIds(t *testing.T) {
	c := newCoordinator(agentRouter(), DefaultDecisionReuse)
	c.Restore(Snapshot{AskedQuestionIds: []string{"s1_q1", "ghost_q9"}})

	snap := c.Snapshot()
	if len(snap.AskedQuestionIds) != 1 || snap.AskedQuestionIds[0] != "s1_q1" {
		t.Errorf("AskedQuestionIds = %v, want [s1_q1]", snap.AskedQuestionIds)
	}
}

func TestConcurrentUpdatesDoNotRace(t *testing.T) {
	c := newCoordinator(agentRouter(), time.Nanosecond)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.ProcessLiveUpdate(context.Background(), utterance(fmt.Sprintf("parallel %d", i)), float64(100+i*10), 600)
		}(i)
	}
	wg.Wait()

	snap := c.Snapshot()
	// Merges are unions: whatever interleaving happened, dedup holds.
	if len(snap.Notes.KeyIdeas) > 1 {
		t.Errorf("KeyIdeas = %d, want at most 1", len(snap.Notes.KeyIdeas))
	}
}

func TestRestoreDuringUpdatesDoesNotRace(t *testing.T) {
	c := newCoordinator(agentRouter(), time.Nanosecond)
	c.ProcessLiveUpdate(context.Background(), utterance("seed content"), 100, 600)
	snap := c.Snapshot()

	// Restore swaps the plan pointer; cycles and plan reads must always
	// observe either the old or the new plan, never a torn mix.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.ProcessLiveUpdate(context.Background(), utterance(fmt.Sprintf("resumed %d", i)), float64(200+i*10), 600)
		}(i)
	}
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 4; i++ {
			c.Restore(snap)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 4; i++ {
			if c.Plan() == nil {
				t.Error("Plan() returned nil mid-restore")
			}
		}
	}()
	wg.Wait()

	if c.Plan() == nil {
		t.Fatal("plan lost after concurrent restore")
	}
}

func TestActivityStamps(t *testing.T) {
	c := newCoordinator(agentRouter(), DefaultDecisionReuse)
	c.ProcessLiveUpdate(context.Background(), utterance("content"), 200, 600)

	activity := c.Activity()
	for _, key := range []string{ActivityNoteTaker, ActivityResearcher, ActivityOrchestrator} {
		if activity[key].IsZero() {
			t.Errorf("missing activity stamp for %s", key)
		}
	}
}
