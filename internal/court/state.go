// Package court sequences user actions into verdict requests and screen changes.
package court

import (
	"errors"
	"time"

	"github.com/ppiankov/puppyjudge/internal/model"
)

// Screen is the main view the user is on
type Screen string

const (
	ScreenInput        Screen = "INPUT"
	ScreenProcessing   Screen = "PROCESSING"
	ScreenResult       Screen = "RESULT"
	ScreenSquare       Screen = "SQUARE"
	ScreenSquareDetail Screen = "SQUARE_DETAIL"
)

// Overlay is a transient layer above the Result screen
type Overlay string

const (
	OverlayNone             Overlay = "NONE"
	OverlayAppeal           Overlay = "APPEAL"
	OverlayAppealTransition Overlay = "APPEAL_TRANSITION"
)

var (
	// ErrBusy is returned while a submission or appeal is in flight
	ErrBusy = errors.New("a verdict request is already in progress")

	// ErrInvalidTransition is returned for events the current state does not accept
	ErrInvalidTransition = errors.New("action not allowed in current state")

	// ErrFinalVerdict is returned when appealing a HIGH court verdict
	ErrFinalVerdict = errors.New("verdict is final, no further appeal")

	// ErrAppealExpired is returned once the appeal window has closed
	ErrAppealExpired = errors.New("appeal window has expired")
)

// DefaultAppealWindow is how long a verdict stays appealable
const DefaultAppealWindow = 15 * time.Minute

// DefaultTransitionDelay is the pause shown while a case moves to a higher court
const DefaultTransitionDelay = 3 * time.Second

// Config holds the state machine timings
type Config struct {
	AppealWindow    time.Duration
	TransitionDelay time.Duration
	DefaultPersona  model.JudgePersona
}

// ConfigFromModel converts the court section of the app config
func ConfigFromModel(c model.CourtConfig) Config {
	return Config{
		AppealWindow:    c.AppealWindow,
		TransitionDelay: c.TransitionDelay,
		DefaultPersona:  c.DefaultPersona,
	}
}

// Notice is the blocking message shown after a failed request
type Notice struct {
	Persona model.JudgePersona `json:"persona"`
	Message string             `json:"message"`
	Err     string             `json:"error,omitempty"`
	At      time.Time          `json:"at"`
}

// Snapshot is an immutable copy of the machine state
type Snapshot struct {
	Screen          Screen             `json:"screen"`
	Overlay         Overlay            `json:"overlay"`
	Persona         model.JudgePersona `json:"persona"`
	Case            *model.CaseData    `json:"caseData,omitempty"`
	Verdict         *model.VerdictData `json:"verdict,omitempty"`
	TargetLevel     model.CourtLevel   `json:"targetLevel,omitempty"`
	AppealDeadline  *time.Time         `json:"appealDeadline,omitempty"`
	AppealRemaining time.Duration      `json:"appealRemainingNanos"`
	CanAppeal       bool               `json:"canAppeal"`
	HistoryID       string             `json:"historyId,omitempty"`
	Selected        *model.PublicCase  `json:"selectedCase,omitempty"`
	Busy            bool               `json:"busy"`
	LastNotice      *Notice            `json:"lastNotice,omitempty"`
}
