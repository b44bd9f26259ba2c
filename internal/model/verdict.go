package model

import "time"

// AnalysisPointCount is the number of analysis points every verdict carries
const AnalysisPointCount = 3

// VerdictData is the structured output of one generation call.
// Everything except CourtLevel and Timestamp comes from the generator.
type VerdictData struct {
	CuteOpening        string     `json:"cuteOpening"`
	CoreConflict       string     `json:"coreConflict"`
	EventAnalysis      string     `json:"eventAnalysis"`
	AnalysisPoints     []string   `json:"analysisPoints"`
	UserPercentage     float64    `json:"userPercentage"`
	PartnerPercentage  float64    `json:"partnerPercentage"`
	UserSideSummary    string     `json:"userSideSummary"`
	PartnerSideSummary string     `json:"partnerSideSummary"`
	ShortAdvice        string     `json:"shortAdvice"`
	LongAdvice         string     `json:"longAdvice"`
	CourtLevel         CourtLevel `json:"courtLevel,omitempty"`
	Timestamp          time.Time  `json:"timestamp"`
}

// PercentageSum returns userPercentage + partnerPercentage
func (v VerdictData) PercentageSum() float64 {
	return v.UserPercentage + v.PartnerPercentage
}

// AppealDeadline is the moment after which the verdict can no longer be appealed
func (v VerdictData) AppealDeadline(window time.Duration) time.Time {
	return v.Timestamp.Add(window)
}

// Clone returns a deep copy
func (v VerdictData) Clone() VerdictData {
	out := v
	out.AnalysisPoints = append([]string(nil), v.AnalysisPoints...)
	return out
}
