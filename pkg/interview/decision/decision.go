package decision

// Phase is the interview phase. Phases only ever advance along the
// ordinal opening < deep_dive < wrap_up.
type Phase string

const (
	PhaseOpening  Phase = "opening"
	PhaseDeepDive Phase = "deep_dive"
	PhaseWrapUp   Phase = "wrap_up"
)

// Progress cutoffs for phase computation.
const (
	openingCutoff = 0.15
	wrapUpCutoff  = 0.85
)

func (p Phase) ordinal() int {
	switch p {
	case PhaseDeepDive:
		return 1
	case PhaseWrapUp:
		return 2
	default:
		return 0
	}
}

// Max returns the later of two phases. Used as the advance-only setter
// for the phase floor: floor = Max(floor, computed).
func Max(a, b Phase) Phase {
	if b.ordinal() > a.ordinal() {
		return b
	}
	return a
}

// Valid reports whether p is a known phase label.
func (p Phase) Valid() bool {
	return p == PhaseOpening || p == PhaseDeepDive || p == PhaseWrapUp
}

// PhaseFor computes the instantaneous phase from elapsed/target progress.
// Callers must still clamp against the session's phase floor.
func PhaseFor(elapsedSeconds, targetSeconds float64) Phase {
	if targetSeconds <= 0 {
		return PhaseOpening
	}
	progress := elapsedSeconds / targetSeconds
	switch {
	case progress < openingCutoff:
		return PhaseOpening
	case progress > wrapUpCutoff:
		return PhaseWrapUp
	default:
		return PhaseDeepDive
	}
}

// Question sources.
const (
	SourcePlan          = "plan"
	SourceGap           = "gap"
	SourceContradiction = "contradiction"
	SourceResearch      = "research"
)

// NextQuestion is the single question the interviewer should ask next.
// SourceQuestionId is set only when the question is tied to a plan
// question; organic questions carry a non-plan source instead.
type NextQuestion struct {
	Text                  string `json:"text"`
	SectionId             string `json:"section_id,omitempty"`
	Source                string `json:"source"`
	SourceQuestionId      string `json:"source_question_id,omitempty"`
	ExpectedAnswerSeconds int    `json:"expected_answer_seconds,omitempty"`
}

// Decision is one cycle's orchestration output. Only the latest decision
// matters to the live channel; decisions are not persisted as a sequence.
type Decision struct {
	Phase            Phase        `json:"phase"`
	NextQuestion     NextQuestion `json:"next_question"`
	InterviewerBrief string       `json:"interviewer_brief"`
}
