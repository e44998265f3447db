package notes

import (
	"ai-interviewer-be/pkg/utils"
)

// Coverage quality ratings for a plan section.
const (
	CoverageNone     = "none"
	CoverageShallow  = "shallow"
	CoverageAdequate = "adequate"
	CoverageDeep     = "deep"
)

type KeyIdea struct {
	Text string `json:"text"`
}

type Story struct {
	Text string `json:"text"`
}

type Claim struct {
	Text string `json:"text"`
}

// Gap is a topic the expert touched on but did not elaborate.
type Gap struct {
	Topic             string `json:"topic"`
	SuggestedQuestion string `json:"suggested_question"`
}

// Contradiction is a pair of conflicting transcript statements.
type Contradiction struct {
	First             string `json:"first"`
	Second            string `json:"second"`
	SuggestedQuestion string `json:"suggested_question"`
}

// SectionCoverage is a snapshot rating for one plan section. Unlike the
// other categories it is replaced on merge, not accumulated, because
// coverage can go up or down as more is learned.
type SectionCoverage struct {
	SectionId         string   `json:"section_id"`
	Quality           string   `json:"quality"`
	CoveredPoints     []string `json:"covered_points,omitempty"`
	MissingAspects    []string `json:"missing_aspects,omitempty"`
	SuggestedFollowup string   `json:"suggested_followup,omitempty"`
}

type QuotableLine struct {
	Text         string `json:"text"`
	Speaker      string `json:"speaker"`
	PotentialUse string `json:"potential_use,omitempty"`
	Topic        string `json:"topic,omitempty"`
	Strength     int    `json:"strength,omitempty"`
}

// State is the running notes accumulator for one session. Created empty
// at session start, grown every cycle, frozen at session end.
type State struct {
	KeyIdeas       []KeyIdea         `json:"key_ideas"`
	Stories        []Story           `json:"stories"`
	Claims         []Claim           `json:"claims"`
	Gaps           []Gap             `json:"gaps"`
	Contradictions []Contradiction   `json:"contradictions"`
	Coverage       []SectionCoverage `json:"coverage"`
	Quotes         []QuotableLine    `json:"quotes"`
	EssayTitles    []string          `json:"essay_titles"`
}

// Thresholds are the per-category Jaccard near-duplicate cutoffs. Quotes
// use a stricter cutoff: a near-miss quote is a different quote.
type Thresholds struct {
	Ideas          float64
	Stories        float64
	Claims         float64
	Gaps           float64
	Contradictions float64
	Quotes         float64
}

// DefaultThresholds returns the tuned production cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Ideas:          0.7,
		Stories:        0.7,
		Claims:         0.7,
		Gaps:           0.7,
		Contradictions: 0.6,
		Quotes:         0.8,
	}
}

// Merge unions delta into prior and returns the result. Every category is
// append-only with near-duplicate suppression; Coverage alone is keyed by
// section id and the latest entry wins. Neither input is mutated.
func Merge(prior, delta State, th Thresholds) State {
	merged := State{
		KeyIdeas:       append([]KeyIdea(nil), prior.KeyIdeas...),
		Stories:        append([]Story(nil), prior.Stories...),
		Claims:         append([]Claim(nil), prior.Claims...),
		Gaps:           append([]Gap(nil), prior.Gaps...),
		Contradictions: append([]Contradiction(nil), prior.Contradictions...),
		Coverage:       append([]SectionCoverage(nil), prior.Coverage...),
		Quotes:         append([]QuotableLine(nil), prior.Quotes...),
		EssayTitles:    append([]string(nil), prior.EssayTitles...),
	}

	for _, idea := range delta.KeyIdeas {
		if !containsSimilar(ideaTexts(merged.KeyIdeas), idea.Text, th.Ideas) {
			merged.KeyIdeas = append(merged.KeyIdeas, idea)
		}
	}
	for _, story := range delta.Stories {
		if !containsSimilar(storyTexts(merged.Stories), story.Text, th.Stories) {
			merged.Stories = append(merged.Stories, story)
		}
	}
	for _, claim := range delta.Claims {
		if !containsSimilar(claimTexts(merged.Claims), claim.Text, th.Claims) {
			merged.Claims = append(merged.Claims, claim)
		}
	}
	for _, gap := range delta.Gaps {
		if !containsSimilar(gapTexts(merged.Gaps), gap.Topic, th.Gaps) {
			merged.Gaps = append(merged.Gaps, gap)
		}
	}
	for _, c := range delta.Contradictions {
		if !containsSimilar(contradictionTexts(merged.Contradictions), c.First+" "+c.Second, th.Contradictions) {
			merged.Contradictions = append(merged.Contradictions, c)
		}
	}
	for _, q := range delta.Quotes {
		if !containsSimilar(quoteTexts(merged.Quotes), q.Text, th.Quotes) {
			merged.Quotes = append(merged.Quotes, q)
		}
	}
	for _, title := range delta.EssayTitles {
		if !containsSimilar(merged.EssayTitles, title, th.Ideas) {
			merged.EssayTitles = append(merged.EssayTitles, title)
		}
	}

	for _, cov := range delta.Coverage {
		merged.Coverage = upsertCoverage(merged.Coverage, cov)
	}

	return merged
}

// CoverageFor returns the coverage snapshot for a section, defaulting to
// quality "none" when the section has not been rated yet.
func (s *State) CoverageFor(sectionId string) SectionCoverage {
	for _, cov := range s.Coverage {
		if cov.SectionId == sectionId {
			return cov
		}
	}
	return SectionCoverage{SectionId: sectionId, Quality: CoverageNone}
}

func upsertCoverage(existing []SectionCoverage, update SectionCoverage) []SectionCoverage {
	for i, cov := range existing {
		if cov.SectionId == update.SectionId {
			existing[i] = update
			return existing
		}
	}
	return append(existing, update)
}

func containsSimilar(existing []string, candidate string, threshold float64) bool {
	for _, text := range existing {
		if utils.Jaccard(text, candidate) >= threshold {
			return true
		}
	}
	return false
}

func ideaTexts(items []KeyIdea) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}

func storyTexts(items []Story) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}

func claimTexts(items []Claim) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}

func gapTexts(items []Gap) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Topic
	}
	return out
}

func contradictionTexts(items []Contradiction) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.First + " " + it.Second
	}
	return out
}

func quoteTexts(items []QuotableLine) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}
