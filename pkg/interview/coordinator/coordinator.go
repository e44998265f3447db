// Package coordinator owns all per-session mutable interview state and
// runs the live orchestration cycle: NoteTaker and Researcher fan out in
// parallel over an immutable snapshot, the Orchestrator runs after both,
// and every merge back happens under a single lock. ProcessLiveUpdate
// never returns an error; every internal failure resolves to a fallback
// value first.
package coordinator

import (
	"context"
	"sync"
	"time"

	"ai-interviewer-be/pkg/interview/agent"
	"ai-interviewer-be/pkg/interview/decision"
	"ai-interviewer-be/pkg/interview/notes"
	"ai-interviewer-be/pkg/interview/plan"
	"ai-interviewer-be/pkg/interview/research"
	"ai-interviewer-be/pkg/interview/transcript"
)

// DefaultDecisionReuse is how long a cached decision stays valid for
// smart-skip when nothing new has been said.
const DefaultDecisionReuse = 30 * time.Second

// Activity stamp keys, exposed for UI meters. Not correctness-critical.
const (
	ActivityNoteTaker    = "notetaker"
	ActivityResearcher   = "researcher"
	ActivityOrchestrator = "orchestrator"
)

type Coordinator struct {
	noteTaker    *agent.NoteTaker
	researcher   *agent.Researcher
	orchestrator *agent.Orchestrator
	thresholds   notes.Thresholds

	decisionReuse time.Duration

	mu             sync.Mutex
	plan           *plan.Plan
	transcript     []transcript.Entry
	notes          notes.State
	research       []research.Item
	asked          map[string]struct{}
	phaseFloor     decision.Phase
	lastDecision   *decision.Decision
	lastDecisionAt time.Time
	activity       map[string]time.Time

	// generation advances on every reset so an in-flight cycle from a
	// torn-down session discards its merge instead of corrupting state.
	generation int
}

func New(p *plan.Plan, noteTaker *agent.NoteTaker, researcher *agent.Researcher, orchestrator *agent.Orchestrator, thresholds notes.Thresholds, decisionReuse time.Duration) *Coordinator {
	if decisionReuse <= 0 {
		decisionReuse = DefaultDecisionReuse
	}
	return &Coordinator{
		noteTaker:     noteTaker,
		researcher:    researcher,
		orchestrator:  orchestrator,
		thresholds:    thresholds,
		decisionReuse: decisionReuse,
		plan:          p,
		asked:         make(map[string]struct{}),
		phaseFloor:    decision.PhaseOpening,
		activity:      make(map[string]time.Time),
	}
}

// CycleResult is what one live cycle hands back to the session driver.
type CycleResult struct {
	Notes       notes.State
	NewResearch []research.Item
	Decision    decision.Decision
}

// Snapshot is the persistable view of coordinator state, taken at
// session boundaries.
type Snapshot struct {
	Plan             *plan.Plan
	Notes            notes.State
	Research         []research.Item
	AskedQuestionIds []string
	PhaseFloor       decision.Phase
}

// ProcessLiveUpdate runs one orchestration cycle. It never returns an
// error: agent failures degrade to prior notes, no new research, or the
// deterministic fallback decision.
func (c *Coordinator) ProcessLiveUpdate(ctx context.Context, newUtterances []transcript.Entry, elapsedSeconds, targetSeconds float64) CycleResult {
	c.mu.Lock()
	gen := c.generation
	c.transcript = append(c.transcript, newUtterances...)

	// Restore can swap the plan pointer, so the fan-out works off a
	// snapshot taken under the lock like everything else.
	planSnap := c.plan
	trSnap := append([]transcript.Entry(nil), c.transcript...)
	notesSnap := c.notes
	researchSnap := append([]research.Item(nil), c.research...)
	askedSnap := make(map[string]struct{}, len(c.asked))
	for id := range c.asked {
		askedSnap[id] = struct{}{}
	}
	floor := c.phaseFloor
	hasNew := len(newUtterances) > 0

	// Smart-skip: a recent decision with no new transcript content is
	// returned verbatim. The cached decision is already floor-compliant.
	if !hasNew && c.lastDecision != nil && time.Since(c.lastDecisionAt) < c.decisionReuse {
		cached := *c.lastDecision
		c.mu.Unlock()
		return CycleResult{Notes: notesSnap, NewResearch: nil, Decision: cached}
	}
	c.mu.Unlock()

	// Parallel fan-out over immutable snapshots. Neither agent touches
	// coordinator state during this phase.
	mergedNotes := notesSnap
	var newItems []research.Item

	if hasNew {
		var wg sync.WaitGroup
		wg.Add(2)

		go func() {
			defer wg.Done()
			mergedNotes = c.noteTaker.Update(ctx, planSnap, notesSnap, trSnap)
		}()
		go func() {
			defer wg.Done()
			newItems = c.researcher.Cycle(ctx, planSnap.Topic, researchSnap, trSnap)
		}()

		wg.Wait()
	}

	dec := c.orchestrator.Decide(ctx, agent.OrchestratorInput{
		Plan:           planSnap,
		Asked:          askedSnap,
		Notes:          mergedNotes,
		Research:       research.AppendDeduped(researchSnap, newItems...),
		Transcript:     trSnap,
		ElapsedSeconds: elapsedSeconds,
		TargetSeconds:  targetSeconds,
		PhaseFloor:     floor,
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	// Session reset raced this cycle: report the result but do not merge.
	if gen != c.generation {
		return CycleResult{Notes: mergedNotes, NewResearch: newItems, Decision: dec}
	}

	now := time.Now()
	if hasNew {
		// Re-merging through the union operation keeps state correct even
		// if cycles accidentally overlapped.
		c.notes = notes.Merge(c.notes, mergedNotes, c.thresholds)
		c.research = research.AppendDeduped(c.research, newItems...)
		c.activity[ActivityNoteTaker] = now
		c.activity[ActivityResearcher] = now
	}
	c.activity[ActivityOrchestrator] = now

	// Advance-only updates: phase floor and asked-set only ever grow.
	c.phaseFloor = decision.Max(c.phaseFloor, dec.Phase)
	if id := dec.NextQuestion.SourceQuestionId; id != "" && c.plan.QuestionById(id) != nil {
		c.asked[id] = struct{}{}
	}
	if now.After(c.lastDecisionAt) {
		cached := dec
		c.lastDecision = &cached
		c.lastDecisionAt = now
	}

	return CycleResult{Notes: c.notes, NewResearch: newItems, Decision: dec}
}

// Reset clears all session state, including the Researcher's private
// topic tracking. Must be called before reusing the coordinator for a
// new interview.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	c.generation++
	c.transcript = nil
	c.notes = notes.State{}
	c.research = nil
	c.asked = make(map[string]struct{})
	c.phaseFloor = decision.PhaseOpening
	c.lastDecision = nil
	c.lastDecisionAt = time.Time{}
	c.activity = make(map[string]time.Time)
	c.mu.Unlock()

	c.researcher.Reset()
}

// Snapshot freezes the current session state for persistence.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Collect asked ids in plan order so snapshots are deterministic.
	asked := make([]string, 0, len(c.asked))
	for _, s := range c.plan.Sections {
		for _, q := range s.Questions {
			if _, ok := c.asked[q.Id]; ok {
				asked = append(asked, q.Id)
			}
		}
	}

	return Snapshot{
		Plan:             c.plan,
		Notes:            c.notes,
		Research:         append([]research.Item(nil), c.research...),
		AskedQuestionIds: asked,
		PhaseFloor:       c.phaseFloor,
	}
}

// Restore rehydrates coordinator state from a persisted snapshot, used
// when a live session resumes after a process restart.
func (c *Coordinator) Restore(snap Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if snap.Plan != nil {
		c.plan = snap.Plan
	}
	c.notes = snap.Notes
	c.research = append([]research.Item(nil), snap.Research...)
	c.asked = make(map[string]struct{}, len(snap.AskedQuestionIds))
	for _, id := range snap.AskedQuestionIds {
		if c.plan.QuestionById(id) != nil {
			c.asked[id] = struct{}{}
		}
	}
	c.phaseFloor = decision.Max(decision.PhaseOpening, snap.PhaseFloor)
}

// Activity returns per-agent last-activity timestamps for UI meters.
func (c *Coordinator) Activity() map[string]time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]time.Time, len(c.activity))
	for k, v := range c.activity {
		out[k] = v
	}
	return out
}

// Plan returns the immutable session plan.
func (c *Coordinator) Plan() *plan.Plan {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.plan
}
