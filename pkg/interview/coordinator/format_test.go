package coordinator

import (
	"strings"
	"testing"

	"ai-interviewer-be/pkg/interview/decision"
	"ai-interviewer-be/pkg/interview/notes"
	"ai-interviewer-be/pkg/interview/research"
)

func TestFormatInstructions(t *testing.T) {
	dec := decision.Decision{
		Phase: decision.PhaseDeepDive,
		NextQuestion: decision.NextQuestion{
			Text:                  "Walk me through the outage.",
			ExpectedAnswerSeconds: 90,
		},
		InterviewerBrief: "Slow down, this is the heart of the story.",
	}
	state := notes.State{
		Gaps: []notes.Gap{{Topic: "runbooks", SuggestedQuestion: "When did runbooks arrive?"}},
		Contradictions: []notes.Contradiction{
			{First: "we had no monitoring", Second: "the alert woke me up", SuggestedQuestion: "Which was it?"},
		},
	}
	items := []research.Item{
		{Topic: "PagerDuty", Summary: "incident response platform", HowToUse: "ask about on-call load"},
	}

	out := FormatInstructions(dec, state, items)

	for _, want := range []string{
		"PHASE: deep_dive",
		"NEXT QUESTION: Walk me through the outage.",
		"roughly 90s",
		"BRIEF: Slow down",
		"RESEARCH YOU CAN USE:",
		"PagerDuty: incident response platform (ask about on-call load)",
		"OPEN GAPS:",
		"runbooks",
		"CONTRADICTIONS TO CLARIFY:",
		"Which was it?",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatInstructionsMinimal(t *testing.T) {
	dec := decision.Decision{
		Phase:        decision.PhaseOpening,
		NextQuestion: decision.NextQuestion{Text: "How did it all start?"},
	}

	out := FormatInstructions(dec, notes.State{}, nil)

	if strings.Contains(out, "RESEARCH") || strings.Contains(out, "GAPS") || strings.Contains(out, "CONTRADICTIONS") {
		t.Errorf("empty sections should be omitted:\n%s", out)
	}
	if !strings.Contains(out, "NEXT QUESTION: How did it all start?") {
		t.Errorf("missing question:\n%s", out)
	}
}
