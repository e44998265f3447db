package plan

import "testing"

func testPlan() *Plan {
	return &Plan{
		Topic: "A career in infrastructure engineering",
		Sections: []Section{
			{
				Id: "s1", Title: "Origins", Importance: ImportanceHigh,
				Questions: []Question{
					{Id: "s1_q1", Text: "How did you get started?", Role: RoleBackbone, Priority: PriorityMustHit},
					{Id: "s1_q2", Text: "What was your first team like?", Role: RoleFollowup, Priority: PriorityNiceToHave},
				},
			},
			{
				Id: "s2", Title: "The outage", Importance: ImportanceHigh,
				Questions: []Question{
					{Id: "s2_q1", Text: "Walk me through the outage.", Role: RoleBackbone, Priority: PriorityMustHit},
					{Id: "s2_q2", Text: "What changed afterwards?", Role: RoleBackbone, Priority: PriorityImportant},
				},
			},
		},
	}
}

func asked(ids ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

func TestQuestionById(t *testing.T) {
	p := testPlan()

	ref := p.QuestionById("s2_q2")
	if ref == nil {
		t.Fatal("expected to find s2_q2")
	}
	if ref.SectionId != "s2" {
		t.Errorf("SectionId = %q, want s2", ref.SectionId)
	}
	if ref.Question.Text != "What changed afterwards?" {
		t.Errorf("unexpected question text %q", ref.Question.Text)
	}

	if p.QuestionById("nope") != nil {
		t.Error("unknown id should resolve to nil")
	}
}

func TestFirstUnasked(t *testing.T) {
	tests := []struct {
		name   string
		asked  map[string]struct{}
		wantId string
	}{
		{
			name:   "nothing asked picks first priority-1",
			asked:  asked(),
			wantId: "s1_q1",
		},
		{
			name:   "priority 1 exhausted before priority 2",
			asked:  asked("s1_q1"),
			wantId: "s2_q1",
		},
		{
			name:   "priority order beats plan order",
			asked:  asked("s1_q1", "s2_q1"),
			wantId: "s2_q2",
		},
		{
			name:   "priority 3 last",
			asked:  asked("s1_q1", "s2_q1", "s2_q2"),
			wantId: "s1_q2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := testPlan().FirstUnasked(tt.asked)
			if ref == nil {
				t.Fatal("expected a question, got nil")
			}
			if ref.Question.Id != tt.wantId {
				t.Errorf("FirstUnasked = %s, want %s", ref.Question.Id, tt.wantId)
			}
		})
	}
}

func TestFirstUnaskedExhausted(t *testing.T) {
	if ref := testPlan().FirstUnasked(asked("s1_q1", "s1_q2", "s2_q1", "s2_q2")); ref != nil {
		t.Errorf("all questions asked, want nil, got %s", ref.Question.Id)
	}
}

func TestFirstUnaskedDeterministic(t *testing.T) {
	a := asked("s1_q1")
	first := testPlan().FirstUnasked(a)
	for i := 0; i < 10; i++ {
		again := testPlan().FirstUnasked(a)
		if again.Question.Id != first.Question.Id {
			t.Fatalf("run %d returned %s, first run returned %s", i, again.Question.Id, first.Question.Id)
		}
	}
}

func TestUnaskedPreservesPlanOrder(t *testing.T) {
	refs := testPlan().Unasked(asked("s1_q2"))
	wantIds := []string{"s1_q1", "s2_q1", "s2_q2"}
	if len(refs) != len(wantIds) {
		t.Fatalf("Unasked = %d refs, want %d", len(refs), len(wantIds))
	}
	for i, want := range wantIds {
		if refs[i].Question.Id != want {
			t.Errorf("refs[%d] = %s, want %s", i, refs[i].Question.Id, want)
		}
	}
}

func TestQuestionCount(t *testing.T) {
	if n := testPlan().QuestionCount(); n != 4 {
		t.Errorf("QuestionCount = %d, want 4", n)
	}
}
