package square

import (
	"time"

	"github.com/ppiankov/puppyjudge/internal/model"
)

// seedCases returns the two example cases shown in an empty square
func seedCases(now time.Time) []model.PublicCase {
	return []model.PublicCase{
		{
			ID:        "mock-1",
			Timestamp: now.Add(-2 * time.Hour),
			Persona:   model.PersonaCute,
			Case: model.CaseData{
				Background:  "男朋友打游戏不回消息，我生气了他还觉得我无理取闹。",
				UserSide:    "我觉得这是态度问题，回个消息只需几秒钟。",
				PartnerSide: "我在打团战，真的切不出来，打完立刻就回了。",
			},
			Verdict: model.VerdictData{
				CuteOpening:        "汪～ 游戏和女朋友确实是历史难题呢！",
				CoreConflict:       "即时回应需求 vs 沉浸式娱乐体验",
				EventAnalysis:      "双方都没有错，只是时间颗粒度认知不同。",
				AnalysisPoints:     []string{"女生需要安全感", "男生需要个人空间", "沟通时机不对"},
				UserPercentage:     60,
				PartnerPercentage:  40,
				UserSideSummary:    "要态度",
				PartnerSideSummary: "要理解",
				ShortAdvice:        "男生设置游戏间隙自动回复",
				LongAdvice:         "约定游戏时间，互不打扰",
				CourtLevel:         model.CourtInitial,
				Timestamp:          now.Add(-2 * time.Hour),
			},
			Votes: model.CommunityVotes{User: 120, Partner: 85},
			Comments: []model.Comment{
				{ID: "c2", Author: "暴躁吉娃娃", Avatar: "🐕", Content: "就是不在乎！分！", Timestamp: now.Add(-30 * time.Minute)},
				{ID: "c1", Author: "路过的小柯基", Avatar: "🐶", Content: "打团确实很难回消息...", Timestamp: now.Add(-time.Hour)},
			},
			Views: 1205,
		},
		{
			ID:        "mock-2",
			Timestamp: now.Add(-24 * time.Hour),
			Persona:   model.PersonaToxic,
			Case: model.CaseData{
				Background:  "因为谁去洗碗吵了一架，明明说好轮流的，他总赖账。",
				UserSide:    "原则问题，说好的事情就要做到。",
				PartnerSide: "我很累，明天洗不行吗？非要逼我现在洗。",
			},
			Verdict: model.VerdictData{
				CuteOpening:        "哼，懒就是懒，借口真多。",
				CoreConflict:       "契约精神 vs 拖延症",
				EventAnalysis:      "典型的试探底线行为。",
				AnalysisPoints:     []string{"承诺了就要做", "累不是借口", "执行力太差"},
				UserPercentage:     10,
				PartnerPercentage:  90,
				UserSideSummary:    "按规矩办事",
				PartnerSideSummary: "想偷懒",
				ShortAdvice:        "",
				LongAdvice:         "买个洗碗机，或者罚款",
				CourtLevel:         model.CourtInitial,
				Timestamp:          now.Add(-24 * time.Hour),
			},
			Votes: model.CommunityVotes{User: 340, Partner: 12},
			Comments: []model.Comment{
				{ID: "c3", Author: "吃瓜哈士奇", Avatar: "🐺", Content: "这种男的留着过年？", Timestamp: now.Add(-80000 * time.Second)},
			},
			Views: 5600,
		},
	}
}
