// Package verdict turns a case into a structured ruling with exactly one
// generation call.
package verdict

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest marks a request that failed a precondition check
var ErrInvalidRequest = errors.New("invalid verdict request")

// ConfigurationError means no usable generator is configured.
// It is returned before any network I/O.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.Err)
	}
	return "configuration error: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Generation stages
const (
	StagePrompt   = "prompt"
	StageGenerate = "generate"
	StageDecode   = "decode"
	StageValidate = "validate"
)

// GenerationError wraps a failure of the external generator or of its reply
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed at %s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
