package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/puppyjudge/internal/court"
	"github.com/ppiankov/puppyjudge/internal/model"
	"github.com/ppiankov/puppyjudge/internal/theme"
	"github.com/ppiankov/puppyjudge/internal/worker"
)

var (
	appealReason string
	appealImages []string
)

// appealCmd represents the appeal command
var appealCmd = &cobra.Command{
	Use:   "appeal <history-id>",
	Short: "Appeal a verdict to the next court",
	Long: `Appeal sends a saved verdict to the next court level:
INITIAL → INTERMEDIATE → HIGH. The high court is final.

Appeals are only accepted within the appeal window after the verdict
(15 minutes by default, see court.appeal_window).

Example:
  puppyjudge appeal 3f2a... --reason "我昨天已经洗过了"
  puppyjudge appeal 3f2a... --reason "补充证据" --image receipt.png`,
	Args: cobra.ExactArgs(1),
	RunE: runAppeal,
}

func init() {
	rootCmd.AddCommand(appealCmd)

	appealCmd.Flags().StringVar(&appealReason, "reason", "", "why the verdict is wrong (required)")
	appealCmd.Flags().StringSliceVar(&appealImages, "image", nil, "new evidence screenshot (repeatable, max 5)")
	appealCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	appealCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	appealCmd.Flags().BoolVar(&publishAfter, "publish", false, "share the new verdict to the town square")
	appealCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown output")
	appealCmd.Flags().DurationVar(&judgeTimeout, "timeout", 3*time.Minute, "timeout for the verdict request")
	_ = appealCmd.MarkFlagRequired("reason")
}

func runAppeal(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), judgeTimeout)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	appeal := model.AppealData{Reason: appealReason}
	for _, p := range appealImages {
		img, err := worker.ReadImage(p)
		if err != nil {
			return err
		}
		appeal.Images = append(appeal.Images, img)
	}

	c := a.NewCourt(court.WithNotifier(stderrNotifier{}))
	if _, err := c.LoadHistory(ctx, args[0]); err != nil {
		return err
	}
	if err := c.OpenAppeal(); err != nil {
		return explainAppealError(err, c)
	}

	next, _ := c.Snapshot().Verdict.CourtLevel.Next()
	target := theme.CourtFor(next)
	fmt.Fprintf(os.Stderr, "%s %s\n", target.Icon, target.Title)
	fmt.Fprintf(os.Stderr, "   %s\n", target.Desc)
	if target.Quote != "" {
		fmt.Fprintf(os.Stderr, "   「%s」\n", target.Quote)
	}

	if _, err := c.Appeal(ctx, appeal); err != nil {
		return fmt.Errorf("appeal failed: %w", err)
	}
	return presentVerdict(ctx, c, c.Snapshot(), a.Config.Court.AppealWindow)
}

func explainAppealError(err error, c *court.Court) error {
	switch {
	case errors.Is(err, court.ErrFinalVerdict):
		return fmt.Errorf("the high court's verdict is final: %w", err)
	case errors.Is(err, court.ErrAppealExpired):
		snap := c.Snapshot()
		if snap.AppealDeadline != nil {
			return fmt.Errorf("appeal window closed at %s: %w", snap.AppealDeadline.Local().Format("15:04:05"), err)
		}
	}
	return err
}
