package model

import "strings"

// CourtLevel is the escalation tier a verdict was issued at
type CourtLevel string

const (
	CourtInitial      CourtLevel = "INITIAL"      // First hearing
	CourtIntermediate CourtLevel = "INTERMEDIATE" // First appeal
	CourtHigh         CourtLevel = "HIGH"         // Final appeal, no further escalation
)

// Valid reports whether l is one of the defined levels
func (l CourtLevel) Valid() bool {
	switch l {
	case CourtInitial, CourtIntermediate, CourtHigh:
		return true
	}
	return false
}

// Next returns the level an appeal from l escalates to.
// The second return value is false at HIGH.
func (l CourtLevel) Next() (CourtLevel, bool) {
	switch l {
	case CourtHigh:
		return CourtHigh, false
	case CourtIntermediate:
		return CourtHigh, true
	default:
		return CourtIntermediate, true
	}
}

// IsFinal reports whether no further appeal exists above l
func (l CourtLevel) IsFinal() bool {
	return l == CourtHigh
}

// Rank orders levels; unknown levels rank as INITIAL
func (l CourtLevel) Rank() int {
	switch l {
	case CourtIntermediate:
		return 1
	case CourtHigh:
		return 2
	default:
		return 0
	}
}

// ParseCourtLevel parses a level name case-insensitively
func ParseCourtLevel(s string) (CourtLevel, bool) {
	l := CourtLevel(strings.ToUpper(strings.TrimSpace(s)))
	return l, l.Valid()
}

// JudgePersona selects the tone of the judge
type JudgePersona string

const (
	PersonaCute  JudgePersona = "CUTE"  // Conciliatory
	PersonaToxic JudgePersona = "TOXIC" // Harsh
)

// Valid reports whether p is a defined persona
func (p JudgePersona) Valid() bool {
	return p == PersonaCute || p == PersonaToxic
}

// ParsePersona parses a persona name case-insensitively
func ParsePersona(s string) (JudgePersona, bool) {
	p := JudgePersona(strings.ToUpper(strings.TrimSpace(s)))
	return p, p.Valid()
}
