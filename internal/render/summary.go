package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ppiankov/puppyjudge/internal/model"
	"github.com/ppiankov/puppyjudge/internal/theme"
)

const barWidth = 20

// RenderSummary prints a verdict for the terminal
func RenderSummary(w io.Writer, doc Document, now time.Time) {
	t := theme.Lookup(doc.Persona)
	court := theme.CourtFor(doc.Verdict.CourtLevel)
	v := doc.Verdict

	fmt.Fprintf(w, "\n%s %s · %s\n", t.Emoji, t.JudgeName, court.Name)
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	if v.CuteOpening != "" {
		fmt.Fprintf(w, "%s\n\n", v.CuteOpening)
	}
	fmt.Fprintf(w, "【%s】\n\n", doc.Stamp)
	fmt.Fprintf(w, "%s%s\n\n", t.ConflictLabel, v.CoreConflict)
	fmt.Fprintf(w, "%s\n", t.AnalysisLabel)
	fmt.Fprintf(w, "  %s\n", v.EventAnalysis)
	for i, p := range v.AnalysisPoints {
		fmt.Fprintf(w, "  %d. %s\n", i+1, p)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  你 %s %s %s TA\n", percent(v.UserPercentage), Bar(v.UserPercentage), percent(v.PartnerPercentage))
	fmt.Fprintf(w, "  %s: %s\n", t.UserShareLabel, v.UserSideSummary)
	fmt.Fprintf(w, "  %s: %s\n\n", t.PartnerLabel, v.PartnerSideSummary)
	if strings.TrimSpace(v.ShortAdvice) != "" {
		fmt.Fprintf(w, "%s\n  %s\n\n", t.ShortAdviceLabel, v.ShortAdvice)
	}
	fmt.Fprintf(w, "%s\n  %s\n\n", t.LongAdviceLabel, v.LongAdvice)

	switch {
	case v.CourtLevel.IsFinal():
		fmt.Fprintf(w, "⚖️  终审判决，不可再上诉\n")
	case doc.AppealDeadline != nil && now.Before(*doc.AppealDeadline):
		fmt.Fprintf(w, "⏳ 上诉剩余 %s\n", Countdown(doc.AppealDeadline.Sub(now)))
	case doc.AppealDeadline != nil:
		fmt.Fprintf(w, "⌛ 上诉期已过\n")
	}
	if doc.ID != "" {
		fmt.Fprintf(w, "🗂  案卷编号 %s\n", doc.ID)
	}
	fmt.Fprintln(w)
}

// Bar draws the user share as a fixed width bar
func Bar(userPercentage float64) string {
	filled := int(userPercentage/100*barWidth + 0.5)
	if filled < 0 {
		filled = 0
	}
	if filled > barWidth {
		filled = barWidth
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

// Countdown formats a remaining duration as mm:ss
func Countdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// RenderHistory prints a history listing, newest first
func RenderHistory(w io.Writer, items []model.HistoryItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No history yet.")
		return
	}
	for _, item := range items {
		stamp := theme.StampFor(item.Persona, item.Verdict).Text
		fmt.Fprintf(w, "%s  %s  %-5s  %-12s  %s  %s\n",
			item.ID,
			item.Timestamp.Local().Format("2006-01-02 15:04"),
			item.Persona,
			item.Verdict.CourtLevel,
			stamp,
			truncate(item.Case.Background, 30))
	}
}

// RenderSquare prints a public square listing
func RenderSquare(w io.Writer, cases []model.PublicCase) {
	if len(cases) == 0 {
		fmt.Fprintln(w, "The square is empty.")
		return
	}
	for _, c := range cases {
		fmt.Fprintf(w, "%s  %s  👁 %d  💬 %d  🗳 %d  %s\n",
			c.ID,
			theme.Lookup(c.Persona).Emoji,
			c.Views,
			len(c.Comments),
			c.Votes.Total(),
			truncate(c.Verdict.CoreConflict, 40))
	}
}

// RenderPublicCase prints one public case with its votes and comments
func RenderPublicCase(w io.Writer, c model.PublicCase, now time.Time) {
	doc := NewDocument(c.ID, c.Persona, c.Case, c.Verdict)
	RenderSummary(w, doc, now)

	fmt.Fprintf(w, "👁 %d  围观群众投票：站你 %d%% (%d) · 站TA %d%% (%d)\n\n",
		c.Views, c.Votes.UserShare(), c.Votes.User, 100-c.Votes.UserShare(), c.Votes.Partner)
	for _, cm := range c.Comments {
		fmt.Fprintf(w, "%s %s: %s\n", cm.Avatar, cm.Author, cm.Content)
	}
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
