package coordinator

import (
	"fmt"
	"strings"

	"ai-interviewer-be/pkg/interview/decision"
	"ai-interviewer-be/pkg/interview/notes"
	"ai-interviewer-be/pkg/interview/research"
)

// FormatInstructions renders a cycle's decision as the instruction text
// pushed to the live voice channel: phase label, the exact next-question
// text, the interviewer brief, and any research/gap/contradiction
// context the interviewer can lean on.
func FormatInstructions(dec decision.Decision, state notes.State, items []research.Item) string {
	var b strings.Builder

	fmt.Fprintf(&b, "PHASE: %s\n\n", dec.Phase)
	fmt.Fprintf(&b, "NEXT QUESTION: %s\n", dec.NextQuestion.Text)
	if dec.NextQuestion.ExpectedAnswerSeconds > 0 {
		fmt.Fprintf(&b, "(expect roughly %ds of answer)\n", dec.NextQuestion.ExpectedAnswerSeconds)
	}

	if dec.InterviewerBrief != "" {
		fmt.Fprintf(&b, "\nBRIEF: %s\n", dec.InterviewerBrief)
	}

	if len(items) > 0 {
		b.WriteString("\nRESEARCH YOU CAN USE:\n")
		for _, item := range items {
			fmt.Fprintf(&b, "- %s: %s", item.Topic, item.Summary)
			if item.HowToUse != "" {
				fmt.Fprintf(&b, " (%s)", item.HowToUse)
			}
			b.WriteString("\n")
		}
	}

	if len(state.Gaps) > 0 {
		b.WriteString("\nOPEN GAPS:\n")
		for _, g := range state.Gaps {
			fmt.Fprintf(&b, "- %s → %s\n", g.Topic, g.SuggestedQuestion)
		}
	}

	if len(state.Contradictions) > 0 {
		b.WriteString("\nCONTRADICTIONS TO CLARIFY:\n")
		for _, c := range state.Contradictions {
			fmt.Fprintf(&b, "- %q vs %q → %s\n", c.First, c.Second, c.SuggestedQuestion)
		}
	}

	return b.String()
}
