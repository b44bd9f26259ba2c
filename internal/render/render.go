// Package render writes verdicts as JSON files, Markdown verdict documents and
// terminal summaries.
package render

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/puppyjudge/internal/model"
	"github.com/ppiankov/puppyjudge/internal/theme"
)

// Document is one verdict with everything needed to present it
type Document struct {
	ID             string             `json:"id,omitempty"`
	Persona        model.JudgePersona `json:"persona"`
	Case           model.CaseData     `json:"caseData"`
	ImageCount     int                `json:"imageCount"`
	Verdict        model.VerdictData  `json:"verdict"`
	Stamp          string             `json:"stamp"`
	Appeals        []string           `json:"appeals,omitempty"`
	AppealDeadline *time.Time         `json:"appealDeadline,omitempty"`
}

// NewDocument builds a document. Image bytes are dropped, only the count is kept.
func NewDocument(id string, persona model.JudgePersona, c model.CaseData, v model.VerdictData) Document {
	cd := c
	cd.Images = nil
	return Document{
		ID:         id,
		Persona:    persona,
		Case:       cd,
		ImageCount: len(c.Images),
		Verdict:    v.Clone(),
		Stamp:      theme.StampFor(persona, v).Text,
	}
}

// FromHistory builds a document from a stored history item
func FromHistory(item model.HistoryItem) Document {
	doc := NewDocument(item.ID, item.Persona, item.Case, item.Verdict)
	for _, a := range item.Appeals {
		doc.Appeals = append(doc.Appeals, a.Reason)
	}
	return doc
}

// WithDeadline sets the appeal deadline unless the verdict is final
func (d Document) WithDeadline(window time.Duration) Document {
	if d.Verdict.CourtLevel.IsFinal() {
		return d
	}
	deadline := d.Verdict.AppealDeadline(window)
	d.AppealDeadline = &deadline
	return d
}

// Renderer writes documents to files
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes doc as indented JSON
func (r *Renderer) RenderJSON(doc Document, path string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal verdict: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes doc as a Markdown verdict document
func (r *Renderer) RenderMarkdown(doc Document, path string) error {
	return writeFile(path, []byte(r.Markdown(doc)))
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Markdown renders the verdict document
func (r *Renderer) Markdown(doc Document) string {
	t := theme.Lookup(doc.Persona)
	court := theme.CourtFor(doc.Verdict.CourtLevel)
	v := doc.Verdict

	var b strings.Builder
	fmt.Fprintf(&b, "# %s %s · %s判决书\n\n", t.Emoji, t.JudgeName, court.Name)
	if v.CuteOpening != "" {
		fmt.Fprintf(&b, "> %s\n\n", v.CuteOpening)
	}
	fmt.Fprintf(&b, "**判决：%s**\n\n", doc.Stamp)

	b.WriteString("## 案情\n\n")
	b.WriteString(doc.Case.Background + "\n\n")
	if doc.Case.HasUserSide() {
		fmt.Fprintf(&b, "- **我的说法：** %s\n", doc.Case.UserSide)
	}
	if doc.Case.HasPartnerSide() {
		fmt.Fprintf(&b, "- **TA的说法：** %s\n", doc.Case.PartnerSide)
	}
	if doc.ImageCount > 0 {
		fmt.Fprintf(&b, "- 附证据截图 %d 张\n", doc.ImageCount)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## %s\n\n%s\n\n", strings.TrimSuffix(t.ConflictLabel, "："), v.CoreConflict)
	fmt.Fprintf(&b, "## %s\n\n%s\n\n", t.AnalysisLabel, v.EventAnalysis)
	for i, p := range v.AnalysisPoints {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p)
	}
	if len(v.AnalysisPoints) > 0 {
		b.WriteString("\n")
	}

	b.WriteString("## 责任比例\n\n")
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t.UserShareLabel, t.PartnerLabel)
	fmt.Fprintf(&b, "| %s | %s |\n", percent(v.UserPercentage), percent(v.PartnerPercentage))
	fmt.Fprintf(&b, "| %s | %s |\n\n", v.UserSideSummary, v.PartnerSideSummary)
	fmt.Fprintf(&b, "%s\n\n", t.PercentageNote)

	if strings.TrimSpace(v.ShortAdvice) != "" {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", t.ShortAdviceLabel, v.ShortAdvice)
	}
	fmt.Fprintf(&b, "## %s\n\n%s\n\n", t.LongAdviceLabel, v.LongAdvice)

	if len(doc.Appeals) > 0 {
		b.WriteString("## 上诉记录\n\n")
		for i, reason := range doc.Appeals {
			fmt.Fprintf(&b, "%d. %s\n", i+1, reason)
		}
		b.WriteString("\n")
	}

	if !v.Timestamp.IsZero() {
		fmt.Fprintf(&b, "_判决时间：%s_\n\n", v.Timestamp.Local().Format("2006-01-02 15:04"))
	}
	if r.includeFooter {
		fmt.Fprintf(&b, "---\n\n%s\n", t.Footer)
	}
	return b.String()
}

func percent(p float64) string {
	return fmt.Sprintf("%.0f%%", p)
}
