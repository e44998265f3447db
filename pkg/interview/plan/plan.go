package plan

// Section importance levels.
const (
	ImportanceHigh   = "high"
	ImportanceMedium = "medium"
	ImportanceLow    = "low"
)

// Question roles.
const (
	RoleBackbone = "backbone"
	RoleFollowup = "followup"
)

// Question priorities: 1 = must-hit, 3 = nice-to-have.
const (
	PriorityMustHit    = 1
	PriorityImportant  = 2
	PriorityNiceToHave = 3
)

// Question is a single planned interview question. IDs are stable and
// unique within a plan; "asked" status is tracked outside the plan so the
// plan itself stays immutable for the whole session.
type Question struct {
	Id       string `json:"id" validate:"required"`
	Text     string `json:"text" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=backbone followup"`
	Priority int    `json:"priority" validate:"required,min=1,max=3"`
}

type Section struct {
	Id         string     `json:"id" validate:"required"`
	Title      string     `json:"title" validate:"required"`
	Importance string     `json:"importance" validate:"required,oneof=high medium low"`
	Questions  []Question `json:"questions" validate:"required,min=1,dive"`
}

// Plan is the approved interview plan, immutable once a session goes live.
type Plan struct {
	Topic        string    `json:"topic" validate:"required"`
	ResearchGoal string    `json:"research_goal"`
	Angle        string    `json:"angle"`
	Sections     []Section `json:"sections" validate:"required,min=1,dive"`
}

// QuestionRef pairs a question with the section it belongs to.
type QuestionRef struct {
	SectionId string
	Question  Question
}

// QuestionById resolves a question id, returning nil for unknown ids.
func (p *Plan) QuestionById(id string) *QuestionRef {
	for _, s := range p.Sections {
		for _, q := range s.Questions {
			if q.Id == id {
				return &QuestionRef{SectionId: s.Id, Question: q}
			}
		}
	}
	return nil
}

// Unasked returns all questions whose id is not in the asked set,
// preserving plan order (section order, then question order).
func (p *Plan) Unasked(asked map[string]struct{}) []QuestionRef {
	var refs []QuestionRef
	for _, s := range p.Sections {
		for _, q := range s.Questions {
			if _, ok := asked[q.Id]; !ok {
				refs = append(refs, QuestionRef{SectionId: s.Id, Question: q})
			}
		}
	}
	return refs
}

// FirstUnasked scans priority 1, then 2, then 3, in plan order, and
// returns the first question not yet asked. Returns nil when every plan
// question has been asked.
func (p *Plan) FirstUnasked(asked map[string]struct{}) *QuestionRef {
	for priority := PriorityMustHit; priority <= PriorityNiceToHave; priority++ {
		for _, s := range p.Sections {
			for _, q := range s.Questions {
				if q.Priority != priority {
					continue
				}
				if _, ok := asked[q.Id]; !ok {
					return &QuestionRef{SectionId: s.Id, Question: q}
				}
			}
		}
	}
	return nil
}

// QuestionCount returns the total number of planned questions.
func (p *Plan) QuestionCount() int {
	n := 0
	for _, s := range p.Sections {
		n += len(s.Questions)
	}
	return n
}
