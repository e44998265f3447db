package agent

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ai-interviewer-be/pkg/interview/plan"
	"ai-interviewer-be/pkg/llm"
	"ai-interviewer-be/pkg/llm/structured"
)

// Planner generates the immutable interview plan before a session goes
// live. Unlike the per-cycle agents it fails loudly: plan generation
// happens pre-live and the caller can simply retry.
type Planner struct {
	provider  llm.LLMProvider
	llmLogger *log.Logger
}

func NewPlanner(provider llm.LLMProvider, llmLogger *log.Logger) *Planner {
	return &Planner{provider: provider, llmLogger: llmLogger}
}

func (pl *Planner) Generate(ctx context.Context, topic, background string, targetMinutes int) (*plan.Plan, error) {
	var p plan.Plan
	err := structured.Complete(ctx, pl.provider, pl.systemPrompt(), pl.userPrompt(topic, background, targetMinutes), &p,
		llm.WithTemperature(0.4))
	if err != nil {
		return nil, fmt.Errorf("generate plan: %w", err)
	}

	normalizeIds(&p)
	return &p, nil
}

// normalizeIds guarantees stable, unique question ids even when the
// model returns duplicates or leaves them blank.
func normalizeIds(p *plan.Plan) {
	seen := make(map[string]struct{})
	for si := range p.Sections {
		s := &p.Sections[si]
		if s.Id == "" {
			s.Id = fmt.Sprintf("s%d", si+1)
		}
		for qi := range s.Questions {
			q := &s.Questions[qi]
			if _, dup := seen[q.Id]; q.Id == "" || dup {
				q.Id = fmt.Sprintf("%s_q%d", s.Id, qi+1)
			}
			seen[q.Id] = struct{}{}
		}
	}
}

func (pl *Planner) systemPrompt() string {
	var prompt strings.Builder

	prompt.WriteString("You design interview plans for timed expert conversations.\n\n")
	prompt.WriteString("<task>\n")
	prompt.WriteString("Produce 2-4 ordered sections, each with backbone questions (the\n")
	prompt.WriteString("must-hit spine) and followups. Priorities: 1 must-hit, 2 important,\n")
	prompt.WriteString("3 nice-to-have. Size the plan to the target duration.\n")
	prompt.WriteString("</task>\n\n")
	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY valid JSON:\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"topic\": \"...\",\n")
	prompt.WriteString("  \"research_goal\": \"...\",\n")
	prompt.WriteString("  \"angle\": \"...\",\n")
	prompt.WriteString("  \"sections\": [{\n")
	prompt.WriteString("    \"id\": \"s1\", \"title\": \"...\", \"importance\": \"high|medium|low\",\n")
	prompt.WriteString("    \"questions\": [{\"id\": \"s1_q1\", \"text\": \"...\", \"role\": \"backbone|followup\", \"priority\": 1}]\n")
	prompt.WriteString("  }]\n")
	prompt.WriteString("}\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}

func (pl *Planner) userPrompt(topic, background string, targetMinutes int) string {
	var prompt strings.Builder

	fmt.Fprintf(&prompt, "<topic>%s</topic>\n", topic)
	fmt.Fprintf(&prompt, "<target_minutes>%d</target_minutes>\n", targetMinutes)
	if background != "" {
		fmt.Fprintf(&prompt, "<background>%s</background>\n", background)
	}

	return prompt.String()
}
