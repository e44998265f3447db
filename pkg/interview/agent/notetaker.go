package agent

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ai-interviewer-be/pkg/interview/notes"
	"ai-interviewer-be/pkg/interview/plan"
	"ai-interviewer-be/pkg/interview/transcript"
	"ai-interviewer-be/pkg/llm"
	"ai-interviewer-be/pkg/llm/structured"
)

// NoteTaker incrementally folds new transcript content into the running
// notes state. It never fails: when the model call errors or returns
// garbage, the prior state comes back unchanged and the interview
// continues on stale-but-valid notes.
type NoteTaker struct {
	provider   llm.LLMProvider
	llmLogger  *log.Logger
	thresholds notes.Thresholds
	windowSize int
}

func NewNoteTaker(provider llm.LLMProvider, llmLogger *log.Logger, thresholds notes.Thresholds, windowSize int) *NoteTaker {
	if windowSize <= 0 {
		windowSize = 20
	}
	return &NoteTaker{
		provider:   provider,
		llmLogger:  llmLogger,
		thresholds: thresholds,
		windowSize: windowSize,
	}
}

// Update extracts notes from the windowed transcript and merges them into
// prior. Merge is append/union per category; coverage entries replace by
// section id.
func (n *NoteTaker) Update(ctx context.Context, p *plan.Plan, prior notes.State, entries []transcript.Entry) notes.State {
	window := transcript.Window(entries, n.windowSize)
	if len(window) == 0 {
		return prior
	}

	var delta notes.State
	err := structured.Complete(ctx, n.provider, n.systemPrompt(p), n.userPrompt(p, prior, window), &delta)
	if err != nil {
		n.logf("notetaker: falling back to prior state: %v", err)
		return prior
	}

	return notes.Merge(prior, delta, n.thresholds)
}

func (n *NoteTaker) systemPrompt(p *plan.Plan) string {
	var prompt strings.Builder

	prompt.WriteString("You are the note-taker for a live expert interview.\n\n")
	prompt.WriteString("<task>\n")
	prompt.WriteString("Extract NEW structured insight from the latest transcript excerpt:\n")
	prompt.WriteString("key ideas, stories, factual claims, gaps (topics touched but not\n")
	prompt.WriteString("elaborated, each with a suggested follow-up), contradictions (two\n")
	prompt.WriteString("conflicting statements with a clarifying question), per-section\n")
	prompt.WriteString("coverage ratings, quotable lines, and possible essay titles.\n")
	prompt.WriteString("Do NOT repeat items already captured in the current notes.\n")
	prompt.WriteString("</task>\n\n")

	prompt.WriteString("<coverage_rules>\n")
	prompt.WriteString("Rate every plan section you have evidence for: none|shallow|adequate|deep.\n")
	prompt.WriteString("Ratings are snapshots and may go up or down.\n")
	prompt.WriteString("</coverage_rules>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY valid JSON:\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"key_ideas\": [{\"text\": \"...\"}],\n")
	prompt.WriteString("  \"stories\": [{\"text\": \"...\"}],\n")
	prompt.WriteString("  \"claims\": [{\"text\": \"...\"}],\n")
	prompt.WriteString("  \"gaps\": [{\"topic\": \"...\", \"suggested_question\": \"...\"}],\n")
	prompt.WriteString("  \"contradictions\": [{\"first\": \"...\", \"second\": \"...\", \"suggested_question\": \"...\"}],\n")
	prompt.WriteString("  \"coverage\": [{\"section_id\": \"...\", \"quality\": \"none|shallow|adequate|deep\", \"covered_points\": [], \"missing_aspects\": []}],\n")
	prompt.WriteString("  \"quotes\": [{\"text\": \"...\", \"speaker\": \"user\", \"potential_use\": \"...\", \"topic\": \"...\", \"strength\": 3}],\n")
	prompt.WriteString("  \"essay_titles\": []\n")
	prompt.WriteString("}\n")
	prompt.WriteString("All arrays may be empty. Emit only items grounded in the excerpt.\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}

func (n *NoteTaker) userPrompt(p *plan.Plan, prior notes.State, window []transcript.Entry) string {
	var prompt strings.Builder

	prompt.WriteString("<interview_plan>\n")
	fmt.Fprintf(&prompt, "Topic: %s\nGoal: %s\n", p.Topic, p.ResearchGoal)
	for _, s := range p.Sections {
		fmt.Fprintf(&prompt, "Section %s (%s, importance %s)\n", s.Id, s.Title, s.Importance)
	}
	prompt.WriteString("</interview_plan>\n\n")

	prompt.WriteString("<current_notes>\n")
	fmt.Fprintf(&prompt, "%d ideas, %d stories, %d claims, %d gaps, %d contradictions, %d quotes\n",
		len(prior.KeyIdeas), len(prior.Stories), len(prior.Claims), len(prior.Gaps), len(prior.Contradictions), len(prior.Quotes))
	for _, idea := range prior.KeyIdeas {
		fmt.Fprintf(&prompt, "- idea: %s\n", idea.Text)
	}
	for _, gap := range prior.Gaps {
		fmt.Fprintf(&prompt, "- gap: %s\n", gap.Topic)
	}
	prompt.WriteString("</current_notes>\n\n")

	prompt.WriteString("<transcript_excerpt>\n")
	writeTranscript(&prompt, window)
	prompt.WriteString("</transcript_excerpt>")

	return prompt.String()
}

func (n *NoteTaker) logf(format string, args ...interface{}) {
	if n.llmLogger != nil {
		n.llmLogger.Printf(format, args...)
	}
}

func writeTranscript(prompt *strings.Builder, window []transcript.Entry) {
	for _, e := range window {
		fmt.Fprintf(prompt, "[%s] %s\n", e.Speaker, e.Text)
	}
}
