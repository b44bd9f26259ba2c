package model

import "time"

// HistoryItem is one saved verdict in the private history
type HistoryItem struct {
	ID        string       `json:"id"`
	Timestamp time.Time    `json:"timestamp"`
	Case      CaseData     `json:"caseData"`
	Verdict   VerdictData  `json:"verdict"`
	Persona   JudgePersona `json:"persona"`
	Appeals   []AppealData `json:"appeals,omitempty"`
}
