package agent

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ai-interviewer-be/pkg/interview/decision"
	"ai-interviewer-be/pkg/interview/notes"
	"ai-interviewer-be/pkg/interview/plan"
	"ai-interviewer-be/pkg/interview/research"
	"ai-interviewer-be/pkg/interview/transcript"
	"ai-interviewer-be/pkg/llm"
	"ai-interviewer-be/pkg/llm/structured"
	"ai-interviewer-be/pkg/utils"
)

// ClosingQuestion is emitted when every plan question has been asked and
// the model path is unavailable.
const ClosingQuestion = "Is there anything else you'd like to add that we haven't covered?"

// FuzzyMatchThreshold is the Jaccard cutoff for tying model-returned
// question text back to an unasked plan question.
const FuzzyMatchThreshold = 0.6

// OrchestratorInput is everything one decision needs: the plan annotated
// via the asked set, accumulated insight, and wall-clock budget state.
type OrchestratorInput struct {
	Plan           *plan.Plan
	Asked          map[string]struct{}
	Notes          notes.State
	Research       []research.Item
	Transcript     []transcript.Entry
	ElapsedSeconds float64
	TargetSeconds  float64
	PhaseFloor     decision.Phase
}

// Orchestrator computes the current phase and the single next question.
// Decide never fails: when the model path errors, a deterministic
// fallback decision is produced instead.
type Orchestrator struct {
	provider   llm.LLMProvider
	llmLogger  *log.Logger
	windowSize int
}

func NewOrchestrator(provider llm.LLMProvider, llmLogger *log.Logger, windowSize int) *Orchestrator {
	if windowSize <= 0 {
		windowSize = 30
	}
	return &Orchestrator{
		provider:   provider,
		llmLogger:  llmLogger,
		windowSize: windowSize,
	}
}

type orchestratorOutput struct {
	Phase                 string `json:"phase" validate:"required,oneof=opening deep_dive wrap_up"`
	QuestionText          string `json:"question_text" validate:"required"`
	SectionId             string `json:"section_id"`
	Source                string `json:"source" validate:"required,oneof=plan gap contradiction research"`
	SourceQuestionId      string `json:"source_question_id"`
	ExpectedAnswerSeconds int    `json:"expected_answer_seconds"`
	InterviewerBrief      string `json:"interviewer_brief"`
}

// Decide returns the decision for this cycle. The returned phase never
// regresses below in.PhaseFloor.
func (o *Orchestrator) Decide(ctx context.Context, in OrchestratorInput) decision.Decision {
	window := transcript.Window(in.Transcript, o.windowSize)

	var out orchestratorOutput
	err := structured.Complete(ctx, o.provider, o.systemPrompt(), o.userPrompt(in, window), &out)
	if err != nil {
		o.logf("orchestrator: using fallback decision: %v", err)
		return o.Fallback(in)
	}

	phase := decision.Phase(out.Phase)
	if !phase.Valid() {
		phase = decision.PhaseFor(in.ElapsedSeconds, in.TargetSeconds)
	}
	phase = decision.Max(in.PhaseFloor, phase)

	next := o.resolveQuestion(in, out)

	return decision.Decision{
		Phase:            phase,
		NextQuestion:     next,
		InterviewerBrief: out.InterviewerBrief,
	}
}

// Fallback deterministically picks the first unasked question, scanning
// priority 1 then 2 then 3 in plan order. Same input, same output.
func (o *Orchestrator) Fallback(in OrchestratorInput) decision.Decision {
	phase := decision.Max(in.PhaseFloor, decision.PhaseFor(in.ElapsedSeconds, in.TargetSeconds))

	if ref := in.Plan.FirstUnasked(in.Asked); ref != nil {
		return decision.Decision{
			Phase: phase,
			NextQuestion: decision.NextQuestion{
				Text:                  ref.Question.Text,
				SectionId:             ref.SectionId,
				Source:                decision.SourcePlan,
				SourceQuestionId:      ref.Question.Id,
				ExpectedAnswerSeconds: 90,
			},
			InterviewerBrief: "Continue with the planned question in a natural, conversational way.",
		}
	}

	return decision.Decision{
		Phase: phase,
		NextQuestion: decision.NextQuestion{
			Text:                  ClosingQuestion,
			Source:                decision.SourceGap,
			ExpectedAnswerSeconds: 60,
		},
		InterviewerBrief: "All planned questions are covered. Invite anything the guest still wants to add, then close warmly.",
	}
}

// resolveQuestion ties the model's question back to the plan: exact id
// first, then fuzzy text match against unasked questions, else the
// question is treated as organic.
func (o *Orchestrator) resolveQuestion(in OrchestratorInput, out orchestratorOutput) decision.NextQuestion {
	next := decision.NextQuestion{
		Text:                  out.QuestionText,
		SectionId:             out.SectionId,
		Source:                out.Source,
		ExpectedAnswerSeconds: out.ExpectedAnswerSeconds,
	}
	if next.ExpectedAnswerSeconds <= 0 {
		next.ExpectedAnswerSeconds = 90
	}

	if out.SourceQuestionId != "" {
		if ref := in.Plan.QuestionById(out.SourceQuestionId); ref != nil {
			if _, asked := in.Asked[out.SourceQuestionId]; !asked {
				next.Source = decision.SourcePlan
				next.SourceQuestionId = out.SourceQuestionId
				next.SectionId = ref.SectionId
				return next
			}
		}
		// Stale or unknown id: fall through to fuzzy matching.
	}

	if ref := bestFuzzyMatch(in.Plan, in.Asked, out.QuestionText); ref != nil {
		next.Source = decision.SourcePlan
		next.SourceQuestionId = ref.Question.Id
		next.SectionId = ref.SectionId
		return next
	}

	// Organic question: must carry a non-plan source.
	if next.Source == decision.SourcePlan || next.Source == "" {
		next.Source = decision.SourceGap
	}
	return next
}

func bestFuzzyMatch(p *plan.Plan, asked map[string]struct{}, text string) *plan.QuestionRef {
	var best *plan.QuestionRef
	bestScore := FuzzyMatchThreshold

	for _, ref := range p.Unasked(asked) {
		score := utils.Jaccard(ref.Question.Text, text)
		if score > bestScore {
			bestScore = score
			matched := ref
			best = &matched
		}
	}
	return best
}

func (o *Orchestrator) systemPrompt() string {
	var prompt strings.Builder

	prompt.WriteString("You direct a live, time-boxed expert interview.\n\n")
	prompt.WriteString("<task>\n")
	prompt.WriteString("Given the plan (with asked/unasked status), coverage, gaps,\n")
	prompt.WriteString("contradictions, research, and timing, pick the SINGLE best next\n")
	prompt.WriteString("question and the current phase.\n")
	prompt.WriteString("</task>\n\n")

	prompt.WriteString("<phase_rules>\n")
	prompt.WriteString("opening: progress < 0.15. wrap_up: progress > 0.85. Otherwise deep_dive.\n")
	prompt.WriteString("Never regress to an earlier phase.\n")
	prompt.WriteString("Prefer priority-1 backbone questions; weave in gaps, contradictions\n")
	prompt.WriteString("and research where they sharpen the conversation.\n")
	prompt.WriteString("</phase_rules>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY valid JSON:\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"phase\": \"opening|deep_dive|wrap_up\",\n")
	prompt.WriteString("  \"question_text\": \"...\",\n")
	prompt.WriteString("  \"section_id\": \"...\",\n")
	prompt.WriteString("  \"source\": \"plan|gap|contradiction|research\",\n")
	prompt.WriteString("  \"source_question_id\": \"q1 when asking a plan question, else empty\",\n")
	prompt.WriteString("  \"expected_answer_seconds\": 90,\n")
	prompt.WriteString("  \"interviewer_brief\": \"tone and framing guidance\"\n")
	prompt.WriteString("}\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}

func (o *Orchestrator) userPrompt(in OrchestratorInput, window []transcript.Entry) string {
	var prompt strings.Builder

	progress := 0.0
	if in.TargetSeconds > 0 {
		progress = in.ElapsedSeconds / in.TargetSeconds
	}
	fmt.Fprintf(&prompt, "<timing>elapsed=%.0fs target=%.0fs progress=%.2f floor=%s</timing>\n\n",
		in.ElapsedSeconds, in.TargetSeconds, progress, in.PhaseFloor)

	prompt.WriteString("<plan>\n")
	fmt.Fprintf(&prompt, "Topic: %s | Angle: %s\n", in.Plan.Topic, in.Plan.Angle)
	for _, s := range in.Plan.Sections {
		cov := in.Notes.CoverageFor(s.Id)
		fmt.Fprintf(&prompt, "Section %s: %s (importance %s, coverage %s)\n", s.Id, s.Title, s.Importance, cov.Quality)
		for _, q := range s.Questions {
			status := "UNASKED"
			if _, ok := in.Asked[q.Id]; ok {
				status = "asked"
			}
			fmt.Fprintf(&prompt, "  [%s] %s (p%d, %s): %s\n", status, q.Id, q.Priority, q.Role, q.Text)
		}
	}
	prompt.WriteString("</plan>\n\n")

	if len(in.Notes.Gaps) > 0 {
		prompt.WriteString("<gaps>\n")
		for _, g := range in.Notes.Gaps {
			fmt.Fprintf(&prompt, "- %s → %s\n", g.Topic, g.SuggestedQuestion)
		}
		prompt.WriteString("</gaps>\n\n")
	}

	if len(in.Notes.Contradictions) > 0 {
		prompt.WriteString("<contradictions>\n")
		for _, c := range in.Notes.Contradictions {
			fmt.Fprintf(&prompt, "- %q vs %q → %s\n", c.First, c.Second, c.SuggestedQuestion)
		}
		prompt.WriteString("</contradictions>\n\n")
	}

	if len(in.Research) > 0 {
		prompt.WriteString("<research>\n")
		for _, item := range in.Research {
			fmt.Fprintf(&prompt, "- [%s] %s: %s\n", item.Kind, item.Topic, item.Summary)
		}
		prompt.WriteString("</research>\n\n")
	}

	prompt.WriteString("<transcript_excerpt>\n")
	writeTranscript(&prompt, window)
	prompt.WriteString("</transcript_excerpt>")

	return prompt.String()
}

func (o *Orchestrator) logf(format string, args ...interface{}) {
	if o.llmLogger != nil {
		o.llmLogger.Printf(format, args...)
	}
}
