package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/puppyjudge/internal/render"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage saved verdicts",
	Long:  `List, show, delete and clear verdicts saved to your private history.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved verdicts, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		items, err := a.History.List(cmd.Context())
		if err != nil {
			return err
		}
		render.RenderHistory(os.Stdout, items)
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a saved verdict",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		item, err := a.History.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		doc := render.FromHistory(*item).WithDeadline(a.Config.Court.AppealWindow)
		render.RenderSummary(os.Stdout, doc, time.Now())
		for i, reason := range doc.Appeals {
			fmt.Printf("上诉 %d: %s\n", i+1, reason)
		}
		return writeOutputs(doc, outJSON, outMD)
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved verdict",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		if err := a.History.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Deleted %s\n", args[0])
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every saved verdict",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		n, err := a.History.Clear(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Cleared %d saved verdicts\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDeleteCmd, historyClearCmd)

	historyShowCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	historyShowCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	historyShowCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown output")
}
