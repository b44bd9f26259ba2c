package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/puppyjudge/internal/court"
	"github.com/ppiankov/puppyjudge/internal/model"
	"github.com/ppiankov/puppyjudge/internal/render"
	"github.com/ppiankov/puppyjudge/internal/square"
)

var (
	squareSort     string
	squarePersona  string
	commentPersona string
)

// squareCmd represents the square command
var squareCmd = &cobra.Command{
	Use:   "square",
	Short: "Browse the town square",
	Long: `The town square is the public feed of shared verdicts.
Readers vote for the side they agree with and leave comments.`,
}

var squareListCmd = &cobra.Command{
	Use:   "list",
	Short: "List public cases",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := square.Filter{Sort: model.ParseSquareSort(squareSort)}
		if squarePersona != "" {
			p, ok := model.ParsePersona(squarePersona)
			if !ok {
				return fmt.Errorf("unknown persona %q (use cute or toxic)", squarePersona)
			}
			f.Persona = p
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		cases, err := a.Square.Cases(cmd.Context(), f)
		if err != nil {
			return err
		}
		render.RenderSquare(os.Stdout, cases)
		return nil
	},
}

var squareShowCmd = &cobra.Command{
	Use:   "show <case-id>",
	Short: "Show a public case (counts as a view)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		c, err := a.Square.View(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		render.RenderPublicCase(os.Stdout, *c, time.Now())
		return nil
	},
}

var squarePublishCmd = &cobra.Command{
	Use:   "publish <history-id>",
	Short: "Share a saved verdict to the town square",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		c := a.NewCourt(court.WithNotifier(stderrNotifier{}))
		if _, err := c.LoadHistory(cmd.Context(), args[0]); err != nil {
			return err
		}
		pc, err := c.Publish(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Published to the town square: %s\n", pc.ID)
		return nil
	},
}

var squareVoteCmd = &cobra.Command{
	Use:   "vote <case-id> <user|partner>",
	Short: "Vote for the side you agree with",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		side, ok := model.ParseSide(args[1])
		if !ok {
			return square.ErrInvalidSide
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		c, err := a.Square.Vote(cmd.Context(), args[0], side)
		if err != nil {
			return err
		}
		fmt.Printf("站你 %d%% (%d) · 站TA %d%% (%d)\n",
			c.Votes.UserShare(), c.Votes.User, 100-c.Votes.UserShare(), c.Votes.Partner)
		return nil
	},
}

var squareCommentCmd = &cobra.Command{
	Use:   "comment <case-id> <text>",
	Short: "Comment on a public case",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		pc, err := a.Square.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		persona := pc.Persona
		if commentPersona != "" {
			p, ok := model.ParsePersona(commentPersona)
			if !ok {
				return fmt.Errorf("unknown persona %q (use cute or toxic)", commentPersona)
			}
			persona = p
		}
		pc, err = a.Square.Comment(cmd.Context(), args[0], args[1], persona)
		if err != nil {
			return err
		}
		cm := pc.Comments[0]
		fmt.Printf("%s %s: %s\n", cm.Avatar, cm.Author, cm.Content)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(squareCmd)
	squareCmd.AddCommand(squareListCmd, squareShowCmd, squarePublishCmd, squareVoteCmd, squareCommentCmd)

	squareListCmd.Flags().StringVar(&squareSort, "sort", "newest", "sort order: newest or hottest")
	squareListCmd.Flags().StringVar(&squarePersona, "persona", "", "only show cases judged by this persona")
	squareCommentCmd.Flags().StringVar(&commentPersona, "persona", "", "comment author style (default: the case's persona)")
}
