package prompt

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/ppiankov/puppyjudge/internal/model"
)

const (
	// UserSidePlaceholder stands in for an empty user account
	UserSidePlaceholder = "（用户未详细说明，请根据背景推断其心理）"

	// PartnerSidePlaceholder stands in for an empty partner account
	PartnerSidePlaceholder = "（对方未详细说明，请根据背景推断其想法）"
)

// ErrAppealWithoutVerdict is returned when an appeal has no prior ruling to review
var ErrAppealWithoutVerdict = errors.New("appeal requires a previous verdict")

// Request carries everything needed to render one generation prompt
type Request struct {
	Persona  model.JudgePersona
	Level    model.CourtLevel
	Case     model.CaseData
	Appeal   *model.AppealData
	Previous *model.VerdictData
}

// Prompt is the rendered request: instructions, user text and ordered attachments
type Prompt struct {
	System string
	Text   string
	Images []model.Image
}

const inputTemplate = `**输入数据**
- 吵架现场/背景：
{{ fence .Background }}
- 你的观点（用户）：
{{ fence .UserSide }}
- TA的观点（对方）：
{{ fence .PartnerSide }}
{{- if .Appeal }}

**上诉材料**
- 前审核心矛盾：
{{ fence .PreviousConflict }}
- 前审事件分析：
{{ fence .PreviousAnalysis }}
- 上诉理由：
{{ fence .AppealReason }}
{{- if .AppealImages }}
- 上诉人补充了 {{ .AppealImages }} 张新证据图片（附在案情图片之后）。
{{- end }}
{{- end }}
{{- if .CaseImages }}

案情附带 {{ .CaseImages }} 张聊天截图或现场图片，请结合图片内容分析。
{{- end }}

**输出要求**
请严格按照JSON Schema格式返回结果：
- 'cuteOpening': 开场白。{{ if .Toxic }}毒舌开场，用“哼唧～”起手。{{ else }}温暖可爱，用“汪～”起手。{{ end }}
- 'coreConflict': 用一句话概括核心矛盾。
- 'eventAnalysis': 对应分析框架中的第一点（{{ if .Toxic }}事件戳穿{{ else }}心理解析{{ end }}）。
- 'analysisPoints': 请将核心点拆解为3个要点（{{ if .Toxic }}列出3个最扎心的矛盾点/槽点{{ else }}冲突点、你的需求、TA的需求{{ end }}），必须恰好3条。
- 'userPercentage': 用户(你)的【{{ if .Toxic }}槽点占比{{ else }}立场占比{{ end }}】数值 (0-100)。{{ if .Toxic }}**请务必拉开差距，拒绝端水！**{{ end }}
- 'partnerPercentage': 对方(TA)的【{{ if .Toxic }}槽点占比{{ else }}立场占比{{ end }}】数值，与 userPercentage 相加必须等于100。
- 'userSideSummary': 用一句话{{ if .Toxic }}嘲讽{{ else }}概括{{ end }}用户的观点。
- 'partnerSideSummary': 用一句话{{ if .Toxic }}嘲讽{{ else }}概括{{ end }}对方的观点。
{{- if .ShortAdvice }}
- 'shortAdvice': 对应【1-2天内可做的事 / 当下止损招】。
{{- else }}
- 'shortAdvice': **此字段必须返回空字符串 ""，因为不需要给止损招。**
{{- end }}
- 'longAdvice': 对应【长期沟通习惯{{ if .Toxic }} / 别再犯蠢指南{{ end }}】。
`

var inputTmpl = template.Must(template.New("input").Funcs(template.FuncMap{
	"fence": fence,
}).Parse(inputTemplate))

type inputData struct {
	Background       string
	UserSide         string
	PartnerSide      string
	Appeal           bool
	PreviousConflict string
	PreviousAnalysis string
	AppealReason     string
	AppealImages     int
	CaseImages       int
	Toxic            bool
	ShortAdvice      bool
}

// Build renders the prompt for req. It performs no I/O.
func Build(req Request) (*Prompt, error) {
	if req.Appeal != nil && req.Previous == nil {
		return nil, ErrAppealWithoutVerdict
	}

	level := req.Level
	if !level.Valid() {
		level = model.CourtInitial
	}

	data := inputData{
		Background:  req.Case.Background,
		UserSide:    req.Case.UserSide,
		PartnerSide: req.Case.PartnerSide,
		CaseImages:  len(req.Case.Images),
		Toxic:       req.Persona == model.PersonaToxic,
		ShortAdvice: ShortAdviceRequired(req.Persona, level),
	}
	if !req.Case.HasUserSide() {
		data.UserSide = UserSidePlaceholder
	}
	if !req.Case.HasPartnerSide() {
		data.PartnerSide = PartnerSidePlaceholder
	}
	if req.Appeal != nil {
		data.Appeal = true
		data.PreviousConflict = req.Previous.CoreConflict
		data.PreviousAnalysis = req.Previous.EventAnalysis
		data.AppealReason = req.Appeal.Reason
		data.AppealImages = len(req.Appeal.Images)
	}

	var buf bytes.Buffer
	if err := inputTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	images := make([]model.Image, 0, len(req.Case.Images)+appealImageCount(req.Appeal))
	images = append(images, req.Case.Images...)
	if req.Appeal != nil {
		images = append(images, req.Appeal.Images...)
	}

	return &Prompt{
		System: Select(req.Persona, level),
		Text:   buf.String(),
		Images: images,
	}, nil
}

func appealImageCount(a *model.AppealData) int {
	if a == nil {
		return 0
	}
	return len(a.Images)
}

// fence wraps user text in a code fence it cannot close early
func fence(content string) string {
	content = strings.ReplaceAll(strings.TrimSpace(content), "```", "'''")
	return "```\n" + content + "\n```"
}
