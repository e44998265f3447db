package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"ai-interviewer-be/internal/config"
	"ai-interviewer-be/pkg/interview/agent"
	"ai-interviewer-be/pkg/interview/coordinator"
	"ai-interviewer-be/pkg/interview/notes"
	"ai-interviewer-be/pkg/interview/transcript"
	"ai-interviewer-be/pkg/llm/factory"
)

// Scripted interview segments, fed to the coordinator in order with
// growing elapsed time. Each segment is one "new utterances" batch.
var script = [][]transcript.Entry{
	{
		{Speaker: transcript.SpeakerAssistant, Text: "Thanks for joining. To start, how did you first get into infrastructure work?"},
		{Speaker: transcript.SpeakerUser, Text: "I started as a sysadmin at a small ISP around 2011, mostly racking servers and writing Perl scripts."},
	},
	{
		{Speaker: transcript.SpeakerUser, Text: "The big turning point was the 2014 outage. We lost the primary datacenter for nine hours and I ended up leading the recovery."},
		{Speaker: transcript.SpeakerUser, Text: "After that they put me in charge of the reliability team, which was just me and one other person at first."},
	},
	{
		{Speaker: transcript.SpeakerAssistant, Text: "What did the recovery actually look like hour by hour?"},
		{Speaker: transcript.SpeakerUser, Text: "Honestly a lot of it was guesswork. We had no runbooks. I remember restoring the billing database from a backup that turned out to be three days old."},
	},
	{
		{Speaker: transcript.SpeakerUser, Text: "These days I tell people the outage was the best thing that happened to my career, even though at the time I wanted to quit."},
	},
}

func main() {
	cfg := config.Load()

	provider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.OllamaBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize LLM provider: %v", err)
	}

	llmLogger := log.New(os.Stdout, "[LLM] ", log.LstdFlags)
	thresholds := notes.DefaultThresholds()

	planner := agent.NewPlanner(provider, llmLogger)
	fmt.Println("=== Generating interview plan ===")
	interviewPlan, err := planner.Generate(context.Background(),
		"A career in infrastructure engineering", "Subject has ~15 years of sysadmin and SRE experience.", 10)
	if err != nil {
		log.Fatalf("Plan generation failed: %v", err)
	}
	fmt.Printf("Plan: %d sections, %d questions\n", len(interviewPlan.Sections), interviewPlan.QuestionCount())

	coord := coordinator.New(
		interviewPlan,
		agent.NewNoteTaker(provider, llmLogger, thresholds, cfg.Interview.NoteWindow),
		agent.NewResearcher(provider, llmLogger, agent.DefaultResearcherConfig()),
		agent.NewOrchestrator(provider, llmLogger, cfg.Interview.OrchestratorWindow),
		thresholds,
		time.Duration(cfg.Interview.DecisionReuseSeconds)*time.Second,
	)

	targetSeconds := 600.0
	elapsed := 0.0

	for i, segment := range script {
		elapsed += 75
		fmt.Printf("\n=== Cycle %d (elapsed %.0fs) ===\n", i+1, elapsed)

		result := coord.ProcessLiveUpdate(context.Background(), segment, elapsed, targetSeconds)

		fmt.Printf("Phase: %s\n", result.Decision.Phase)
		fmt.Printf("Next question [%s]: %s\n", result.Decision.NextQuestion.Source, result.Decision.NextQuestion.Text)
		if len(result.NewResearch) > 0 {
			fmt.Printf("New research: %d item(s)\n", len(result.NewResearch))
		}
		fmt.Println("--- Instructions ---")
		fmt.Println(coordinator.FormatInstructions(result.Decision, result.Notes, result.NewResearch))
	}

	snap := coord.Snapshot()
	fmt.Printf("\n=== Final state: %d key ideas, %d research items, %d questions asked ===\n",
		len(snap.Notes.KeyIdeas), len(snap.Research), len(snap.AskedQuestionIds))
}
