package agent

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"ai-interviewer-be/pkg/interview/research"
	"ai-interviewer-be/pkg/interview/transcript"
	"ai-interviewer-be/pkg/llm"
	"ai-interviewer-be/pkg/llm/structured"
)

// ResearcherConfig carries the tuned cooldown and freshness constants.
// The defaults are empirical production values, kept configurable.
type ResearcherConfig struct {
	WindowSize        int
	MaxTopicsPerCycle int
	Freshness         time.Duration
	FailureThreshold  int
	CooldownCycles    int
}

func DefaultResearcherConfig() ResearcherConfig {
	return ResearcherConfig{
		WindowSize:        20,
		MaxTopicsPerCycle: 3,
		Freshness:         5 * time.Minute,
		FailureThreshold:  5,
		CooldownCycles:    3,
	}
}

// Researcher spots concrete topics worth contextualizing in new
// transcript content and researches each one. Topic tracking is local to
// this component: attempted and succeeded topic keys expire after the
// freshness window, which is what allows a topic to be re-researched once
// enough time has passed.
type Researcher struct {
	provider  llm.LLMProvider
	llmLogger *log.Logger
	cfg       ResearcherConfig

	mu                  sync.Mutex
	attempted           *cache.Cache
	succeeded           *cache.Cache
	consecutiveFailures int
	cooldownSkips       int
	lastWindowHash      string
}

func NewResearcher(provider llm.LLMProvider, llmLogger *log.Logger, cfg ResearcherConfig) *Researcher {
	if cfg.WindowSize <= 0 {
		cfg = DefaultResearcherConfig()
	}
	return &Researcher{
		provider:  provider,
		llmLogger: llmLogger,
		cfg:       cfg,
		attempted: cache.New(cfg.Freshness, time.Minute),
		succeeded: cache.New(cfg.Freshness, time.Minute),
	}
}

type identifiedTopic struct {
	Topic string `json:"topic" validate:"required"`
	Kind  string `json:"kind"`
	Why   string `json:"why"`
}

type topicIdentification struct {
	Topics []identifiedTopic `json:"topics"`
}

// Cycle runs one research pass over the windowed transcript and returns
// only the newly produced items. Individual topic failures are logged
// and skipped, never propagated.
func (r *Researcher) Cycle(ctx context.Context, mainTopic string, existing []research.Item, entries []transcript.Entry) []research.Item {
	r.mu.Lock()
	defer r.mu.Unlock()

	window := transcript.Window(entries, r.cfg.WindowSize)
	if len(window) == 0 {
		return nil
	}

	// No new content since the previous cycle means nothing new to research.
	windowHash := transcript.Hash(window)
	if windowHash == r.lastWindowHash {
		return nil
	}
	r.lastWindowHash = windowHash

	// Cooldown: after too many consecutive failed cycles, skip a few
	// cycles entirely, then reset and try again.
	if r.consecutiveFailures >= r.cfg.FailureThreshold {
		r.cooldownSkips++
		if r.cooldownSkips < r.cfg.CooldownCycles {
			return nil
		}
		r.consecutiveFailures = 0
		r.cooldownSkips = 0
	}

	candidates, err := r.identifyTopics(ctx, mainTopic, existing, window)
	if err != nil {
		r.logf("researcher: topic identification failed: %v", err)
		r.consecutiveFailures++
		return nil
	}
	if len(candidates) == 0 {
		return nil
	}

	var produced []research.Item
	for _, candidate := range candidates {
		key := research.TopicKey(candidate.Topic)

		// Mark attempted before the call so an interrupted cycle cannot
		// re-attempt the same topic.
		r.attempted.Set(key, time.Now(), cache.DefaultExpiration)

		item, err := r.researchTopic(ctx, mainTopic, candidate, window)
		if err != nil {
			r.logf("researcher: topic %q failed: %v", candidate.Topic, err)
			continue
		}

		r.succeeded.Set(key, time.Now(), cache.DefaultExpiration)
		produced = append(produced, *item)
	}

	if len(produced) > 0 {
		r.consecutiveFailures = 0
	} else {
		r.consecutiveFailures++
	}

	return produced
}

// Reset clears all topic-tracking state. Must be called at session reset
// to prevent "already researched" state leaking across interviews.
func (r *Researcher) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.attempted.Flush()
	r.succeeded.Flush()
	r.consecutiveFailures = 0
	r.cooldownSkips = 0
	r.lastWindowHash = ""
}

func (r *Researcher) identifyTopics(ctx context.Context, mainTopic string, existing []research.Item, window []transcript.Entry) ([]identifiedTopic, error) {
	var out topicIdentification
	err := structured.Complete(ctx, r.provider, r.identifySystemPrompt(), r.identifyUserPrompt(mainTopic, existing, window), &out)
	if err != nil {
		return nil, err
	}

	mainKey := research.TopicKey(mainTopic)
	var filtered []identifiedTopic
	for _, candidate := range out.Topics {
		key := research.TopicKey(candidate.Topic)
		if key == "" || key == mainKey {
			continue
		}
		if _, attempted := r.attempted.Get(key); attempted {
			continue
		}
		if _, succeeded := r.succeeded.Get(key); succeeded {
			continue
		}
		filtered = append(filtered, candidate)
		if len(filtered) >= r.cfg.MaxTopicsPerCycle {
			break
		}
	}
	return filtered, nil
}

func (r *Researcher) researchTopic(ctx context.Context, mainTopic string, candidate identifiedTopic, window []transcript.Entry) (*research.Item, error) {
	var item research.Item
	err := structured.Complete(ctx, r.provider, r.researchSystemPrompt(), r.researchUserPrompt(mainTopic, candidate, window), &item)
	if err != nil {
		return nil, err
	}
	if item.Priority == 0 {
		item.Priority = 2
	}
	return &item, nil
}

func (r *Researcher) identifySystemPrompt() string {
	var prompt strings.Builder

	prompt.WriteString("You identify research-worthy topics in a live interview transcript.\n\n")
	prompt.WriteString("<task>\n")
	prompt.WriteString("Pick 1-3 SPECIFIC topics worth contextualizing or fact-checking:\n")
	prompt.WriteString("named entities, technical terms, numeric claims. Never suggest the\n")
	prompt.WriteString("interview's own main topic or anything already researched.\n")
	prompt.WriteString("</task>\n\n")
	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY valid JSON:\n")
	prompt.WriteString("{\"topics\": [{\"topic\": \"...\", \"kind\": \"definition|counterpoint|example|metric|person|company|context|trend|claim_verification\", \"why\": \"...\"}]}\n")
	prompt.WriteString("Return {\"topics\": []} when nothing qualifies.\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}

func (r *Researcher) identifyUserPrompt(mainTopic string, existing []research.Item, window []transcript.Entry) string {
	var prompt strings.Builder

	fmt.Fprintf(&prompt, "<main_topic>%s</main_topic>\n\n", mainTopic)

	prompt.WriteString("<already_researched>\n")
	listed := make(map[string]struct{}, len(existing))
	for _, item := range existing {
		listed[research.TopicKey(item.Topic)] = struct{}{}
		fmt.Fprintf(&prompt, "- %s\n", item.Topic)
	}
	for key := range r.attempted.Items() {
		if _, ok := listed[key]; !ok {
			fmt.Fprintf(&prompt, "- %s\n", key)
		}
	}
	prompt.WriteString("</already_researched>\n\n")

	prompt.WriteString("<transcript_excerpt>\n")
	writeTranscript(&prompt, window)
	prompt.WriteString("</transcript_excerpt>")

	return prompt.String()
}

func (r *Researcher) researchSystemPrompt() string {
	var prompt strings.Builder

	prompt.WriteString("You research one topic so an interviewer can use it in a question.\n\n")
	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY valid JSON:\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"topic\": \"...\",\n")
	prompt.WriteString("  \"kind\": \"definition|counterpoint|example|metric|person|company|context|trend|claim_verification\",\n")
	prompt.WriteString("  \"summary\": \"2-3 sentences of context\",\n")
	prompt.WriteString("  \"how_to_use\": \"how to fold this into a question\",\n")
	prompt.WriteString("  \"priority\": 1,\n")
	prompt.WriteString("  \"verification\": {\"status\": \"verified|contradicted|partially_true|unverifiable\", \"note\": \"...\"}\n")
	prompt.WriteString("}\n")
	prompt.WriteString("Include \"verification\" only for kind claim_verification.\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}

func (r *Researcher) researchUserPrompt(mainTopic string, candidate identifiedTopic, window []transcript.Entry) string {
	var prompt strings.Builder

	fmt.Fprintf(&prompt, "<main_topic>%s</main_topic>\n", mainTopic)
	fmt.Fprintf(&prompt, "<topic kind=%q>%s</topic>\n", candidate.Kind, candidate.Topic)
	if candidate.Why != "" {
		fmt.Fprintf(&prompt, "<why>%s</why>\n", candidate.Why)
	}
	prompt.WriteString("\n<transcript_excerpt>\n")
	writeTranscript(&prompt, window)
	prompt.WriteString("</transcript_excerpt>")

	return prompt.String()
}

func (r *Researcher) logf(format string, args ...interface{}) {
	if r.llmLogger != nil {
		r.llmLogger.Printf(format, args...)
	}
}
