// Package theme holds every persona and court-level dependent string shown to users.
package theme

import (
	"fmt"
	"math/rand/v2"

	"github.com/ppiankov/puppyjudge/internal/model"
)

// Theme is the presentation table for one persona
type Theme struct {
	Persona          model.JudgePersona
	JudgeName        string
	Emoji            string
	Headline         string
	Tagline          string
	ProcessingTitle  string
	ProcessingDetail string
	FailureNotice    string
	UserShareLabel   string
	PartnerLabel     string
	ConflictLabel    string
	AnalysisLabel    string
	ShortAdviceLabel string
	LongAdviceLabel  string
	PercentageNote   string
	Footer           string
	CommentAuthor    string // format with a number
	ClosingMessages  []string
}

var themes = map[model.JudgePersona]Theme{
	model.PersonaCute: {
		Persona:          model.PersonaCute,
		JudgeName:        "小狗判官",
		Emoji:            "🐶",
		Headline:         "情侣吵架？让小狗判官来评评理！",
		Tagline:          "100% 中立 · 100% 可爱 · AI 智能分析",
		ProcessingTitle:  "正在研读案卷...",
		ProcessingDetail: "小狗判官正在思考双方的情绪诉求",
		FailureNotice:    "小狗判官去吃骨头了，请检查API Key或稍后再试！(API Error)",
		UserShareLabel:   "你的立场",
		PartnerLabel:     "TA的立场",
		ConflictLabel:    "🔑 核心矛盾：",
		AnalysisLabel:    "事件还原 & 心理解析",
		ShortAdviceLabel: "⚡ 1-2天内行动",
		LongAdviceLabel:  "💬 长期沟通习惯",
		PercentageNote:   "* 依据逻辑、情感需求及沟通方式综合评定",
		Footer:           "结果仅供参考，真爱需要沟通。",
		CommentAuthor:    "热心汪民%d号",
		ClosingMessages: []string{
			"情侣吵架很正常，解决问题才最重要～",
			"赢了道理输了感情，可不划算哦！",
			"抱一下吧，没有什么是一个拥抱解决不了的。",
			"爱情需要磨合，今天的争吵是为了明天的默契。",
			"本汪觉得，你们都很在乎对方呢。",
		},
	},
	model.PersonaToxic: {
		Persona:          model.PersonaToxic,
		JudgeName:        "毒舌判官",
		Emoji:            "😈",
		Headline:         "还在因为那点破事吵？让本判官骂醒你们！",
		Tagline:          "100% 毒舌 · 0% 废话 · 专治恋爱脑",
		ProcessingTitle:  "正在准备审判...",
		ProcessingDetail: "正在寻找你们逻辑里的漏洞",
		FailureNotice:    "本判官懒得理你，网络出问题了，自己检查去！(API Error)",
		UserShareLabel:   "你的槽点",
		PartnerLabel:     "TA的槽点",
		ConflictLabel:    "💣 矛盾根儿：",
		AnalysisLabel:    "事件戳穿 & 遮羞布粉碎",
		ShortAdviceLabel: "⚡ 当下止损招",
		LongAdviceLabel:  "🚫 别再犯蠢指南",
		PercentageNote:   "* 占比越高的不是赢了，是错得更离谱",
		Footer:           "骂归骂，日子还得过，自己看着办。",
		CommentAuthor:    "毒舌路人%d号",
		ClosingMessages: []string{
			"骂醒了吗？没醒我再骂两句。",
			"这点破事也要吵？建议直接去吃顿好的清醒一下。",
			"感情里没有输赢，但有蠢货，别当那个蠢货。",
			"与其内耗，不如直接把话说明白，大家都挺忙的。",
			"下次再因为这种事吵架，本判官拒绝受理，哼！",
		},
	},
}

// Avatars are handed out to commenters at random
var Avatars = []string{"🐶", "🐕", "🐩", "🐺", "🦊"}

// Lookup returns the theme for persona; unknown personas get the CUTE theme
func Lookup(persona model.JudgePersona) Theme {
	if t, ok := themes[persona]; ok {
		return t
	}
	return themes[model.PersonaCute]
}

// Stamp is the verdict seal derived from the percentage gap
type Stamp struct {
	Text string
	Side string // "user", "partner" or "" for a draw
}

// StampFor picks the seal: a gap above 10 points names a side, otherwise a draw
func StampFor(persona model.JudgePersona, v model.VerdictData) Stamp {
	diff := v.UserPercentage - v.PartnerPercentage
	cute := persona != model.PersonaToxic

	switch {
	case diff > 10 && cute:
		return Stamp{Text: "你更有理", Side: string(model.SideUser)}
	case diff < -10 && cute:
		return Stamp{Text: "TA更有理", Side: string(model.SidePartner)}
	case cute:
		return Stamp{Text: "和平调解"}
	case diff > 10:
		return Stamp{Text: "你太作", Side: string(model.SideUser)}
	case diff < -10:
		return Stamp{Text: "TA太蠢", Side: string(model.SidePartner)}
	default:
		return Stamp{Text: "全员笨蛋"}
	}
}

// Court describes the hand-over screen shown while an appeal is pending
type Court struct {
	Name  string
	Title string
	Icon  string
	Desc  string
	Quote string
}

// CourtFor returns the court an appeal is sent to
func CourtFor(level model.CourtLevel) Court {
	switch level {
	case model.CourtIntermediate:
		return Court{
			Name:  "中级狗民法院",
			Title: "正在移交【中级狗民法院】",
			Icon:  "🏠",
			Desc:  "中级法官嗷呜～正在阅读您的上诉材料...",
			Quote: "这家伙可比我难伺候多咯！——初级判官",
		}
	case model.CourtHigh:
		return Court{
			Name:  "最高狗民法院",
			Title: "正在呈递【最高狗民法院】",
			Icon:  "🏛️",
			Desc:  "终审大法官汪呜～正在整理法槌...",
			Quote: "最后一次机会，希望你们能听进去。——中级判官",
		}
	default:
		return Court{Name: "初级狗民法院", Title: "开庭中", Icon: "⚖️", Desc: "..."}
	}
}

// Picker supplies the randomness used for comment authors and closing lines
type Picker interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultPicker uses math/rand/v2
var DefaultPicker Picker = globalRand{}

// CommentAuthor returns a random display name and avatar for a commenter under persona
func CommentAuthor(persona model.JudgePersona, p Picker) (name, avatar string) {
	if p == nil {
		p = DefaultPicker
	}
	name = fmt.Sprintf(Lookup(persona).CommentAuthor, p.IntN(100))
	avatar = Avatars[p.IntN(len(Avatars))]
	return name, avatar
}

// ClosingMessage returns a random sign-off line for persona
func ClosingMessage(persona model.JudgePersona, p Picker) string {
	if p == nil {
		p = DefaultPicker
	}
	msgs := Lookup(persona).ClosingMessages
	return msgs[p.IntN(len(msgs))]
}
