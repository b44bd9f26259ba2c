package model

import (
	"strings"
	"time"
)

// PublicCase is a case shared to the town square
type PublicCase struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Persona   JudgePersona   `json:"persona"`
	Case      CaseData       `json:"caseData"`
	Verdict   VerdictData    `json:"verdict"`
	Votes     CommunityVotes `json:"communityVotes"`
	Comments  []Comment      `json:"comments"`
	Views     int            `json:"views"`
}

// HotScore ranks cases for the HOTTEST sort: views + votes + 5 per comment
func (c PublicCase) HotScore() int {
	return c.Views + c.Votes.User + c.Votes.Partner + len(c.Comments)*5
}

// CommunityVotes tallies which side readers agree with
type CommunityVotes struct {
	User    int `json:"user"`
	Partner int `json:"partner"`
}

// Total returns the number of votes cast
func (v CommunityVotes) Total() int {
	return v.User + v.Partner
}

// UserShare returns the user's share in percent (50 with no votes)
func (v CommunityVotes) UserShare() int {
	if v.Total() == 0 {
		return 50
	}
	return int(float64(v.User)/float64(v.Total())*100 + 0.5)
}

// Comment is a reader comment on a public case
type Comment struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Avatar    string    `json:"avatar"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Side identifies one party of the dispute
type Side string

const (
	SideUser    Side = "user"
	SidePartner Side = "partner"
)

// ParseSide parses "user" or "partner"
func ParseSide(s string) (Side, bool) {
	side := Side(strings.ToLower(strings.TrimSpace(s)))
	return side, side == SideUser || side == SidePartner
}

// SquareSort orders the town square feed
type SquareSort string

const (
	SortNewest  SquareSort = "NEWEST"
	SortHottest SquareSort = "HOTTEST"
)

// ParseSquareSort parses a sort name; unknown names sort by NEWEST
func ParseSquareSort(s string) SquareSort {
	if SquareSort(strings.ToUpper(strings.TrimSpace(s))) == SortHottest {
		return SortHottest
	}
	return SortNewest
}
