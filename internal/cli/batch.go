package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/puppyjudge/internal/render"
	"github.com/ppiankov/puppyjudge/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	saveHistory  bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Judge multiple cases from a YAML file in parallel",
	Long: `Batch judges many cases concurrently:
- Read cases from a YAML case file
- Judge cases in parallel with a configurable worker count
- Verdict requests are rate limited (batch.requests_per_second)
- Write a JSON and Markdown verdict for each case

Case file format:
  cases:
    - id: dishes
      persona: toxic
      background: 周末谁洗碗
      user_side: 轮到你了
      partner_side: 我累了
      images: [chat1.png]

Example:
  puppyjudge batch cases.yaml
  puppyjudge batch cases.yaml --concurrency 2 --output-dir ./verdicts
  puppyjudge batch cases.yaml --save`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./puppyjudge-verdicts", "output directory for verdicts")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&saveHistory, "save", false, "save each verdict to history")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown verdicts")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	workers := concurrency
	if workers <= 0 {
		workers = a.Config.Batch.Workers
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Puppy Judge Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Case file:    %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	if p := a.Provider(); p != nil {
		fmt.Fprintf(os.Stderr, "  Provider:     %s/%s\n", p.Name(), a.Config.LLM.Model)
	}
	fmt.Fprintf(os.Stderr, "\n")

	cases, err := worker.LoadCaseFile(file)
	if err != nil {
		return fmt.Errorf("load cases: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Loaded %d cases\n", len(cases))

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	limiter := worker.NewLimiter(a.Config.Batch.RequestsPerSecond, a.Config.Batch.BurstSize)
	processor := worker.NewBatchProcessor(a.Judge, workers, limiter, a.Logger.Named("batch"))

	fmt.Fprintf(os.Stderr, "⚙️  Judging cases with %d workers...\n\n", workers)
	results := processor.ProcessCases(ctx, cases)

	renderer := render.NewRenderer(!noFooter)
	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.ID, result.Error)
			continue
		}

		id := ""
		if saveHistory {
			item, err := a.History.Add(ctx, result.Case, *result.Verdict, result.Persona)
			if err != nil {
				a.Logger.Warn("Failed to save batch verdict", zap.String("case", result.ID), zap.Error(err))
			} else {
				id = item.ID
			}
		}

		doc := render.NewDocument(id, result.Persona, result.Case, *result.Verdict)
		slug := sanitizeFilename(result.ID)
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.RenderJSON(doc, jsonPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.ID, err)
			continue
		}
		if err := renderer.RenderMarkdown(doc, mdPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", result.ID, err)
			continue
		}

		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s %s (你 %.0f%% / TA %.0f%%, %v)\n",
			result.ID, doc.Stamp, result.Verdict.UserPercentage, result.Verdict.PartnerPercentage,
			result.Duration.Round(time.Millisecond))
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d cases\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if failureCount > 0 && successCount == 0 {
		return fmt.Errorf("all %d cases failed", failureCount)
	}
	return nil
}

// sanitizeFilename turns a case id into a safe file name
func sanitizeFilename(s string) string {
	s = strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	).Replace(strings.TrimSpace(s))
	s = strings.Trim(s, ".")
	if s == "" {
		s = "case"
	}

	// Limit length
	if r := []rune(s); len(r) > 100 {
		s = string(r[:100])
	}
	return s
}
