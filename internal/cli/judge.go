package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/puppyjudge/internal/court"
	"github.com/ppiankov/puppyjudge/internal/model"
	"github.com/ppiankov/puppyjudge/internal/render"
	"github.com/ppiankov/puppyjudge/internal/theme"
	"github.com/ppiankov/puppyjudge/internal/worker"
)

var (
	background   string
	userSide     string
	partnerSide  string
	imagePaths   []string
	personaName  string
	outJSON      string
	outMD        string
	publishAfter bool
	noFooter     bool
	judgeTimeout time.Duration
)

// judgeCmd represents the judge command
var judgeCmd = &cobra.Command{
	Use:   "judge",
	Short: "File a case and get a verdict",
	Long: `Judge files a new case with the initial court:
- Background is required; either side's account is optional
- Attach up to 10 screenshots with --image
- The verdict is saved to history and can be appealed within the appeal window

Example:
  puppyjudge judge --background "周末谁洗碗" --user "轮到你了" --partner "我累了"
  puppyjudge judge --background "..." --persona toxic --image chat1.png --md verdict.md
  puppyjudge judge --background "..." --publish`,
	RunE: runJudge,
}

func init() {
	rootCmd.AddCommand(judgeCmd)

	judgeCmd.Flags().StringVar(&background, "background", "", "what happened (required)")
	judgeCmd.Flags().StringVar(&userSide, "user", "", "your side of the story")
	judgeCmd.Flags().StringVar(&partnerSide, "partner", "", "your partner's side of the story")
	judgeCmd.Flags().StringSliceVar(&imagePaths, "image", nil, "screenshot to attach (repeatable)")
	judgeCmd.Flags().StringVar(&personaName, "persona", "", "judge persona: cute or toxic (default from config)")
	judgeCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	judgeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	judgeCmd.Flags().BoolVar(&publishAfter, "publish", false, "share the verdict to the town square")
	judgeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown output")
	judgeCmd.Flags().DurationVar(&judgeTimeout, "timeout", 3*time.Minute, "timeout for the verdict request")
	_ = judgeCmd.MarkFlagRequired("background")
}

func runJudge(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), judgeTimeout)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	cd := model.CaseData{Background: background, UserSide: userSide, PartnerSide: partnerSide}
	for _, p := range imagePaths {
		img, err := worker.ReadImage(p)
		if err != nil {
			return err
		}
		cd.Images = append(cd.Images, img)
	}

	c := a.NewCourt(court.WithNotifier(stderrNotifier{}))
	if personaName != "" {
		p, ok := model.ParsePersona(personaName)
		if !ok {
			return fmt.Errorf("unknown persona %q (use cute or toxic)", personaName)
		}
		if err := c.SetPersona(p); err != nil {
			return err
		}
	}

	t := theme.Lookup(c.Snapshot().Persona)
	fmt.Fprintf(os.Stderr, "%s %s\n", t.Emoji, t.ProcessingTitle)
	if verbose {
		fmt.Fprintf(os.Stderr, "   %s\n", t.ProcessingDetail)
	}

	if _, err := c.Submit(ctx, cd); err != nil {
		return fmt.Errorf("judge failed: %w", err)
	}

	snap := c.Snapshot()
	return presentVerdict(ctx, c, snap, a.Config.Court.AppealWindow)
}

// presentVerdict prints the verdict on screen, writes the requested files and publishes when asked
func presentVerdict(ctx context.Context, c *court.Court, snap court.Snapshot, window time.Duration) error {
	doc := render.NewDocument(snap.HistoryID, snap.Persona, *snap.Case, *snap.Verdict).WithDeadline(window)
	render.RenderSummary(os.Stdout, doc, time.Now())
	fmt.Println(theme.ClosingMessage(snap.Persona, nil))

	if err := writeOutputs(doc, outJSON, outMD); err != nil {
		return err
	}

	if publishAfter {
		pc, err := c.Publish(ctx)
		if err != nil {
			return fmt.Errorf("publish: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Published to the town square: %s\n", pc.ID)
	}
	return nil
}

func writeOutputs(doc render.Document, jsonPath, mdPath string) error {
	r := render.NewRenderer(!noFooter)
	if jsonPath != "" {
		if err := r.RenderJSON(doc, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
	}
	if mdPath != "" {
		if err := r.RenderMarkdown(doc, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
	}
	return nil
}
