// Test program to check every verdict provider that has credentials.
// It requests one INITIAL verdict per provider and prints the split.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ppiankov/puppyjudge/internal/llm"
	"github.com/ppiankov/puppyjudge/internal/model"
	"github.com/ppiankov/puppyjudge/internal/theme"
	"github.com/ppiankov/puppyjudge/internal/verdict"
)

func main() {
	_ = godotenv.Load()
	fmt.Println("=== Verdict Provider Test ===")
	fmt.Println()

	providers := []model.LLMConfig{
		{Provider: "gemini", Model: "gemini-2.5-flash", Timeout: 60, MaxTokens: 2048, Temperature: 0.8},
		{Provider: "openai", Model: "gpt-4o-mini", Timeout: 60, MaxTokens: 2048, Temperature: 0.8},
		{Provider: "anthropic", Model: "claude-3-5-haiku-latest", Timeout: 60, MaxTokens: 2048, Temperature: 0.8},
		{Provider: "ollama", Model: "llama3.2", Timeout: 120, MaxTokens: 2048, Temperature: 0.8},
	}

	sample := model.CaseData{
		Background:  "周末约好一起去看电影，结果对方睡过头，错过了开场。",
		UserSide:    "我提前一周就买好票了，提醒了好几次。",
		PartnerSide: "这周加班太累了，闹钟没听见，不是故意的。",
	}

	failed := 0
	for _, mc := range providers {
		fmt.Printf("Testing: %s (%s)\n", mc.Provider, mc.Model)
		fmt.Println(strings.Repeat("-", 60))

		if err := testProvider(mc, sample); err != nil {
			failed++
			fmt.Printf("  ✗ %v\n\n", err)
			continue
		}
		fmt.Println()
	}

	if failed == len(providers) {
		os.Exit(1)
	}
}

func testProvider(mc model.LLMConfig, sample model.CaseData) error {
	p, err := llm.NewProvider(llm.ConfigFromModel(mc))
	if err != nil {
		return fmt.Errorf("skipped: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(mc.Timeout)*time.Second)
	defer cancel()

	if !p.IsAvailable(ctx) {
		return fmt.Errorf("provider not reachable")
	}

	judge := verdict.New(p, verdict.WithModel(mc.Model, mc.MaxTokens, mc.Temperature))
	for _, persona := range []model.JudgePersona{model.PersonaCute, model.PersonaToxic} {
		start := time.Now()
		v, err := judge.RequestVerdict(ctx, verdict.Request{Case: sample, Persona: persona, Level: model.CourtInitial})
		if err != nil {
			return fmt.Errorf("%s verdict: %w", persona, err)
		}
		t := theme.Lookup(persona)
		fmt.Printf("  ✓ %s %s (%v)\n", t.Emoji, t.JudgeName, time.Since(start).Round(time.Millisecond))
		fmt.Printf("     - Opening: %s\n", v.CuteOpening)
		fmt.Printf("     - Conflict: %s\n", v.CoreConflict)
		fmt.Printf("     - Split: 你 %.0f%% / TA %.0f%%\n", v.UserPercentage, v.PartnerPercentage)
		fmt.Printf("     - Stamp: %s\n", theme.StampFor(persona, *v).Text)
	}
	return nil
}
